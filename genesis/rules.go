// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package genesis

import (
	"github.com/ava-labs/vaultvm/chain"
	"github.com/ava-labs/vaultvm/codec"
)

var _ chain.Rules = (*Rules)(nil)

const defaultValidityWindow = 60_000 // ms

type Rules struct {
	// ValidityWindow bounds how far (in ms) a transaction timestamp may be
	// from the local clock.
	ValidityWindow int64 `json:"validityWindow"`

	programID codec.Address
}

func NewDefaultRules() *Rules {
	return &Rules{
		ValidityWindow: defaultValidityWindow,
	}
}

func (r *Rules) GetProgramID() codec.Address {
	return r.programID
}

func (r *Rules) GetValidityWindow() int64 {
	return r.ValidityWindow
}
