// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"github.com/ava-labs/avalanchego/utils/hashing"

	"github.com/ava-labs/vaultvm/consts"
)

// Discriminator tags a persisted record or an instruction payload so that
// values of different types sharing a namespace can never be confused.
type Discriminator [consts.DiscriminatorLen]byte

// AccountDiscriminator returns the tag for a record type named [name].
func AccountDiscriminator(name string) Discriminator {
	return newDiscriminator("account:" + name)
}

// InstructionDiscriminator returns the tag for an instruction named [name].
func InstructionDiscriminator(name string) Discriminator {
	return newDiscriminator("global:" + name)
}

func newDiscriminator(preimage string) Discriminator {
	h := hashing.ComputeHash256([]byte(preimage))
	return Discriminator(h[:consts.DiscriminatorLen])
}
