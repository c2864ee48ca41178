// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package auth

import (
	"context"
	"fmt"

	"github.com/ava-labs/vaultvm/chain"
	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/crypto"
	"github.com/ava-labs/vaultvm/crypto/ed25519"
)

var _ chain.Auth = (*ED25519)(nil)

const ED25519Size = 1 + ed25519.PublicKeyLen + ed25519.SignatureLen

// ED25519 authenticates the actor whose address is the signer's public key.
type ED25519 struct {
	Signer    ed25519.PublicKey `json:"signer"`
	Signature ed25519.Signature `json:"signature"`
}

func (*ED25519) GetTypeID() uint8 {
	return ED25519ID
}

func (d *ED25519) Verify(_ context.Context, msg []byte) error {
	if !ed25519.Verify(msg, d.Signer, d.Signature) {
		return crypto.ErrInvalidSignature
	}
	return nil
}

func (d *ED25519) Actor() codec.Address {
	return codec.FromPublicKey(d.Signer)
}

func (d *ED25519) Bytes() []byte {
	b := make([]byte, ED25519Size)
	b[0] = ED25519ID
	copy(b[1:], d.Signer[:])
	copy(b[1+ed25519.PublicKeyLen:], d.Signature[:])
	return b
}

func UnmarshalED25519(bytes []byte) (chain.Auth, error) {
	if len(bytes) != ED25519Size {
		return nil, fmt.Errorf("invalid ed25519 auth size %d != %d", len(bytes), ED25519Size)
	}

	if bytes[0] != ED25519ID {
		return nil, fmt.Errorf("unexpected ed25519 typeID: %d != %d", bytes[0], ED25519ID)
	}

	var d ED25519
	copy(d.Signer[:], bytes[1:])
	copy(d.Signature[:], bytes[1+ed25519.PublicKeyLen:])
	return &d, nil
}

var _ chain.AuthFactory = (*ED25519Factory)(nil)

type ED25519Factory struct {
	priv ed25519.PrivateKey
}

func NewED25519Factory(priv ed25519.PrivateKey) *ED25519Factory {
	return &ED25519Factory{priv}
}

func (d *ED25519Factory) Sign(msg []byte) (chain.Auth, error) {
	sig := ed25519.Sign(msg, d.priv)
	return &ED25519{Signer: d.priv.PublicKey(), Signature: sig}, nil
}

func (d *ED25519Factory) Address() codec.Address {
	return codec.FromPublicKey(d.priv.PublicKey())
}

var _ chain.AuthBatchVerifier = (*ED25519Batch)(nil)

type ED25519Batch struct {
	batch *ed25519.Batch
}

func NewED25519Batch(size int) chain.AuthBatchVerifier {
	return &ED25519Batch{batch: ed25519.NewBatch(size)}
}

func (b *ED25519Batch) Add(msg []byte, rauth chain.Auth) error {
	auth, ok := rauth.(*ED25519)
	if !ok {
		return fmt.Errorf("%w: %T", ErrInvalidKeyType, rauth)
	}
	b.batch.Add(msg, auth.Signer, auth.Signature)
	return nil
}

func (b *ED25519Batch) Verify() bool {
	return b.batch.Verify()
}
