// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pebble

import (
	"slices"

	"github.com/ava-labs/avalanchego/database"
	"github.com/cockroachdb/pebble"
)

var _ database.Iterator = (*iterator)(nil)

type iterator struct {
	iter    *pebble.Iterator
	started bool
	closed  bool
	err     error

	key   []byte
	value []byte
}

// NewIteratorWithPrefix iterates over every key starting with [prefix] in
// ascending order.
func (db *Database) NewIteratorWithPrefix(prefix []byte) database.Iterator {
	db.l.RLock()
	defer db.l.RUnlock()

	if db.closed {
		return &database.IteratorError{Err: database.ErrClosed}
	}
	iter, err := db.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixBound(prefix),
	})
	if err != nil {
		return &database.IteratorError{Err: err}
	}
	return &iterator{iter: iter}
}

// prefixBound returns the smallest key greater than every key starting
// with [prefix], or nil if there is none.
func prefixBound(prefix []byte) []byte {
	bound := slices.Clone(prefix)
	for i := len(bound) - 1; i >= 0; i-- {
		if bound[i] != 0xff {
			bound[i]++
			return bound[:i+1]
		}
	}
	return nil
}

func (it *iterator) Next() bool {
	if it.closed || it.err != nil {
		return false
	}
	var valid bool
	if !it.started {
		valid = it.iter.First()
		it.started = true
	} else {
		valid = it.iter.Next()
	}
	if !valid {
		it.key, it.value = nil, nil
		it.err = it.iter.Error()
		return false
	}
	it.key = slices.Clone(it.iter.Key())
	it.value = slices.Clone(it.iter.Value())
	return true
}

func (it *iterator) Error() error {
	return it.err
}

func (it *iterator) Key() []byte {
	return it.key
}

func (it *iterator) Value() []byte {
	return it.value
}

func (it *iterator) Release() {
	if it.closed {
		return
	}
	it.closed = true
	_ = it.iter.Close()
}
