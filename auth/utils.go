// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package auth

import (
	"errors"

	"github.com/ava-labs/vaultvm/chain"
	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/crypto/ed25519"
)

var (
	// ErrInvalidKeyType is returned when an invalid key type is provided
	ErrInvalidKeyType = errors.New("invalid key type")

	ErrInvalidPrivateKeySize = errors.New("invalid private key size")
)

// PrivateKey is a stored signing key and the address it controls.
type PrivateKey struct {
	Address codec.Address
	Bytes   []byte
}

func GeneratePrivateKey() (*PrivateKey, error) {
	p, err := ed25519.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	return &PrivateKey{
		Address: codec.FromPublicKey(p.PublicKey()),
		Bytes:   p[:],
	}, nil
}

func LoadPrivateKey(p []byte) (*PrivateKey, error) {
	if len(p) != ed25519.PrivateKeyLen {
		return nil, ErrInvalidPrivateKeySize
	}
	pk := ed25519.PrivateKey(p)
	return &PrivateKey{
		Address: codec.FromPublicKey(pk.PublicKey()),
		Bytes:   p,
	}, nil
}

// GetFactory returns the [chain.AuthFactory] for a given private key.
func GetFactory(pk *PrivateKey) (chain.AuthFactory, error) {
	if len(pk.Bytes) != ed25519.PrivateKeyLen {
		return nil, ErrInvalidKeyType
	}
	return NewED25519Factory(ed25519.PrivateKey(pk.Bytes)), nil
}

// Register adds every supported auth scheme to [r].
func Register(r *chain.Registry) error {
	return r.RegisterAuth(&ED25519{}, UnmarshalED25519, NewED25519Batch)
}
