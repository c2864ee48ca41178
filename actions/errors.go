// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import "errors"

var (
	ErrInvalidAmount      = errors.New("amount must be greater than zero")
	ErrUnauthorized       = errors.New("not authorized to withdraw")
	ErrInsufficientFunds  = errors.New("not enough funds in vault")
	ErrAlreadyInitialized = errors.New("vault already initialized")
	ErrVaultNotFound      = errors.New("vault not found")
)
