// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import "errors"

var (
	ErrAccountInUse        = errors.New("account already in use")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrMissingSigner       = errors.New("missing required signature")
	ErrNotSignable         = errors.New("address cannot sign")
	ErrNotProgramAddress   = errors.New("address is not derived by this program")
)
