// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import "sort"

const (
	Read     Permissions = 1
	Allocate             = 1<<1 | Read
	Write                = 1<<2 | Read

	None Permissions = 0
	All              = Read | Allocate | Write
)

// Keys maps each state key a request touches to the permissions it needs.
// Use [Keys.Add] so that a key named twice keeps the union of both.
type Keys map[string]Permissions

type Permissions byte

func (k Keys) Add(name string, permission Permissions) {
	k[name] |= permission
}

// Sorted returns the keys in a stable order, used to acquire locks without
// deadlocking against a request touching the same keys.
func (k Keys) Sorted() []string {
	names := make([]string, 0, len(k))
	for name := range k {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has returns true if [p] has all the permissions that are contained in require
func (p Permissions) Has(require Permissions) bool {
	return require&^p == 0
}
