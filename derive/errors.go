// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package derive

import "errors"

var (
	ErrMaxSeedLengthExceeded = errors.New("max seed length exceeded")
	ErrOnCurve               = errors.New("derived address is on the curve")
	ErrDerivationExhausted   = errors.New("unable to find a viable bump")
	ErrSeedsMismatch         = errors.New("address does not match seeds")
)
