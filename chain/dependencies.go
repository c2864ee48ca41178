// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"context"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/state"
)

type Rules interface {
	// GetProgramID returns the identity every program derived address is
	// computed under.
	GetProgramID() codec.Address

	// GetValidityWindow is the number of milliseconds a transaction
	// timestamp may differ from the local clock. 0 disables the check.
	GetValidityWindow() int64
}

type Action interface {
	// GetTypeID uniquely identifies the instruction.
	GetTypeID() codec.Discriminator

	// StateKeys is a full enumeration of all database keys that could be
	// touched during execution. All keys are locked for the duration of the
	// request and any access to a key not listed fails.
	StateKeys(actor codec.Address) state.Keys

	// Execute applies the action to [mu]. If it returns an error, every
	// change it made is discarded.
	Execute(
		ctx context.Context,
		r Rules,
		mu state.Mutable,
		timestamp int64,
		actor codec.Address,
		txID ids.ID,
	) (output []byte, err error)

	Bytes() ([]byte, error)
}

type Auth interface {
	GetTypeID() uint8

	// Actor is the identity that authenticated the transaction.
	Actor() codec.Address

	Verify(ctx context.Context, msg []byte) error

	Bytes() []byte
}

type AuthFactory interface {
	Sign(msg []byte) (Auth, error)
	Address() codec.Address
}

// AuthBatchVerifier checks many signatures of the same type at once.
type AuthBatchVerifier interface {
	Add(msg []byte, auth Auth) error
	Verify() bool
}

type Parser interface {
	ParseAction(id codec.Discriminator, b []byte) (Action, error)
	ParseAuth(typeID uint8, b []byte) (Auth, error)
	NewBatchVerifier(typeID uint8, size int) (AuthBatchVerifier, bool)
}

type Database interface {
	database.KeyValueReader
	database.Batcher
}
