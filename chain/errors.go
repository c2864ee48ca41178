// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import "errors"

var (
	ErrInvalidObject         = errors.New("invalid object")
	ErrActionNotRegistered   = errors.New("action not registered")
	ErrAuthNotRegistered     = errors.New("auth not registered")
	ErrDuplicateRegistration = errors.New("duplicate registration")
	ErrInvalidSignature      = errors.New("invalid signature")
	ErrDuplicateTx           = errors.New("duplicate transaction")
	ErrTimestampTooLate      = errors.New("timestamp too late")
	ErrTimestampTooEarly     = errors.New("timestamp too early")
	ErrTxTooLarge            = errors.New("transaction too large")
	ErrMisalignedTime        = errors.New("misaligned time")
)
