// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"fmt"

	"github.com/ava-labs/vaultvm/codec"
)

var _ Parser = (*Registry)(nil)

type (
	ActionUnmarshaler func([]byte) (Action, error)
	AuthUnmarshaler   func([]byte) (Auth, error)
	BatchVerifierFunc func(size int) AuthBatchVerifier
)

type authEntry struct {
	unmarshal AuthUnmarshaler
	batch     BatchVerifierFunc
}

// Registry maps wire type identifiers to their decoders.
type Registry struct {
	actions map[codec.Discriminator]ActionUnmarshaler
	auths   map[uint8]authEntry
}

func NewRegistry() *Registry {
	return &Registry{
		actions: make(map[codec.Discriminator]ActionUnmarshaler),
		auths:   make(map[uint8]authEntry),
	}
}

func (r *Registry) RegisterAction(instance Action, f ActionUnmarshaler) error {
	id := instance.GetTypeID()
	if _, ok := r.actions[id]; ok {
		return fmt.Errorf("%w: action %x", ErrDuplicateRegistration, id[:])
	}
	r.actions[id] = f
	return nil
}

// RegisterAuth registers an auth decoder. [batch] may be nil if the scheme
// has no batch verification.
func (r *Registry) RegisterAuth(instance Auth, f AuthUnmarshaler, batch BatchVerifierFunc) error {
	id := instance.GetTypeID()
	if _, ok := r.auths[id]; ok {
		return fmt.Errorf("%w: auth %d", ErrDuplicateRegistration, id)
	}
	r.auths[id] = authEntry{unmarshal: f, batch: batch}
	return nil
}

func (r *Registry) ParseAction(id codec.Discriminator, b []byte) (Action, error) {
	f, ok := r.actions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %x", ErrActionNotRegistered, id[:])
	}
	return f(b)
}

func (r *Registry) ParseAuth(typeID uint8, b []byte) (Auth, error) {
	e, ok := r.auths[typeID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrAuthNotRegistered, typeID)
	}
	return e.unmarshal(b)
}

func (r *Registry) NewBatchVerifier(typeID uint8, size int) (AuthBatchVerifier, bool) {
	e, ok := r.auths[typeID]
	if !ok || e.batch == nil {
		return nil, false
	}
	return e.batch(size), true
}
