// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import "context"

type Immutable interface {
	GetValue(ctx context.Context, key []byte) (value []byte, err error)
}

type Mutable interface {
	Immutable

	Insert(ctx context.Context, key []byte, value []byte) error
	Remove(ctx context.Context, key []byte) error
}

// View is a [Mutable] whose changes can be undone back to a restore point.
type View interface {
	Mutable

	OpIndex() int
	Rollback(ctx context.Context, restorePoint int)
}
