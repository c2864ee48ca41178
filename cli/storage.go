// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cli

import (
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"

	"github.com/ava-labs/vaultvm/auth"
	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/utils"
)

const (
	defaultPrefix = 0x0
	keyPrefix     = 0x1

	defaultKeyKey      = "key"
	defaultEndpointKey = "endpoint"
)

func (h *Handler) StoreDefault(key string, value []byte) error {
	k := make([]byte, 1+len(key))
	k[0] = defaultPrefix
	copy(k[1:], []byte(key))
	return h.db.Put(k, value)
}

func (h *Handler) GetDefault(key string) ([]byte, error) {
	k := make([]byte, 1+len(key))
	k[0] = defaultPrefix
	copy(k[1:], []byte(key))
	v, err := h.db.Get(k)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (h *Handler) StoreEndpoint(uri string) error {
	return h.StoreDefault(defaultEndpointKey, []byte(uri))
}

// GetEndpoint returns the stored endpoint, falling back to the controller's
// default.
func (h *Handler) GetEndpoint() (string, error) {
	v, err := h.GetDefault(defaultEndpointKey)
	if err != nil {
		return "", err
	}
	if len(v) == 0 {
		return h.c.DefaultEndpoint(), nil
	}
	return string(v), nil
}

func keyKey(addr codec.Address) []byte {
	k := make([]byte, 1+codec.AddressLen)
	k[0] = keyPrefix
	copy(k[1:], addr[:])
	return k
}

func (h *Handler) StoreKey(pk *auth.PrivateKey) error {
	k := keyKey(pk.Address)
	has, err := h.db.Has(k)
	if err != nil {
		return err
	}
	if has {
		return fmt.Errorf("%w: %s", ErrDuplicate, pk.Address)
	}
	return h.db.Put(k, pk.Bytes)
}

// GetKey returns the stored key of [addr], or nil if there is none.
func (h *Handler) GetKey(addr codec.Address) (*auth.PrivateKey, error) {
	v, err := h.db.Get(keyKey(addr))
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return auth.LoadPrivateKey(v)
}

func (h *Handler) GetKeys() ([]*auth.PrivateKey, error) {
	iter := h.db.NewIteratorWithPrefix([]byte{keyPrefix})
	defer iter.Release()

	privateKeys := []*auth.PrivateKey{}
	for iter.Next() {
		// It is safe to use these bytes directly because the database copies the
		// iterator value for us.
		pk, err := auth.LoadPrivateKey(iter.Value())
		if err != nil {
			return nil, err
		}
		privateKeys = append(privateKeys, pk)
	}
	return privateKeys, iter.Error()
}

func (h *Handler) StoreDefaultKey(addr codec.Address) error {
	return h.StoreDefault(defaultKeyKey, addr[:])
}

func (h *Handler) GetDefaultKey(log bool) (*auth.PrivateKey, error) {
	v, err := h.GetDefault(defaultKeyKey)
	if err != nil {
		return nil, err
	}
	if len(v) != codec.AddressLen {
		return nil, ErrNoKeys
	}
	addr := codec.Address(v)
	pk, err := h.GetKey(addr)
	if err != nil {
		return nil, err
	}
	if pk == nil {
		return nil, fmt.Errorf("%w: default key %s is missing", ErrNoKeys, addr)
	}
	if log {
		utils.Outf("{{yellow}}address:{{/}} %s\n", addr)
	}
	return pk, nil
}

func (h *Handler) CloseDatabase() error {
	if h.db == nil {
		return nil
	}
	if err := h.db.Close(); err != nil {
		return fmt.Errorf("unable to close database: %w", err)
	}
	// Allow DB to be closed multiple times
	h.db = nil
	return nil
}
