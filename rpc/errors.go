// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import "errors"

var (
	ErrTxNotFound = errors.New("tx not found")
	ErrTxFailed   = errors.New("tx failed")
)
