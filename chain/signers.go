// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"github.com/ava-labs/avalanchego/utils/set"

	"github.com/ava-labs/vaultvm/codec"
)

// Signers is the set of identities whose signatures were verified for the
// current request.
type Signers struct {
	s set.Set[codec.Address]
}

func NewSigners(addrs ...codec.Address) Signers {
	return Signers{s: set.Of(addrs...)}
}

func (s Signers) IsSigner(addr codec.Address) bool {
	return s.s.Contains(addr)
}
