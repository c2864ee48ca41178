// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"context"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/hashing"
	"github.com/near/borsh-go"

	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/consts"
	"github.com/ava-labs/vaultvm/state"
)

type Transaction struct {
	Base   *Base  `json:"base"`
	Action Action `json:"action"`
	Auth   Auth   `json:"auth,omitempty"`

	digest []byte
	bytes  []byte
	id     ids.ID
}

// unsignedTx is the signed portion of a transaction.
type unsignedTx struct {
	Timestamp int64
	Nonce     uint64
	ActionID  codec.Discriminator
	Action    []byte
}

type signedTx struct {
	Unsigned unsignedTx
	AuthID   uint8
	Auth     []byte
}

func NewTx(base *Base, action Action) *Transaction {
	return &Transaction{
		Base:   base,
		Action: action,
	}
}

func (t *Transaction) unsigned() (unsignedTx, error) {
	actionBytes, err := t.Action.Bytes()
	if err != nil {
		return unsignedTx{}, err
	}
	return unsignedTx{
		Timestamp: t.Base.Timestamp,
		Nonce:     t.Base.Nonce,
		ActionID:  t.Action.GetTypeID(),
		Action:    actionBytes,
	}, nil
}

// Digest returns the bytes a signer commits to.
func (t *Transaction) Digest() ([]byte, error) {
	if len(t.digest) > 0 {
		return t.digest, nil
	}
	u, err := t.unsigned()
	if err != nil {
		return nil, err
	}
	digest, err := borsh.Serialize(u)
	if err != nil {
		return nil, err
	}
	t.digest = digest
	return digest, nil
}

// Sign authenticates [t] with [factory] and populates its bytes and ID.
func (t *Transaction) Sign(factory AuthFactory) (*Transaction, error) {
	msg, err := t.Digest()
	if err != nil {
		return nil, err
	}
	auth, err := factory.Sign(msg)
	if err != nil {
		return nil, err
	}
	t.Auth = auth
	if err := t.init(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Transaction) init() error {
	u, err := t.unsigned()
	if err != nil {
		return err
	}
	b, err := borsh.Serialize(signedTx{
		Unsigned: u,
		AuthID:   t.Auth.GetTypeID(),
		Auth:     t.Auth.Bytes(),
	})
	if err != nil {
		return err
	}
	t.bytes = b
	t.id = hashing.ComputeHash256Array(b)
	return nil
}

func (t *Transaction) Bytes() []byte { return t.bytes }

func (t *Transaction) ID() ids.ID { return t.id }

// Actor returns the identity that signed [t].
func (t *Transaction) Actor() codec.Address {
	return t.Auth.Actor()
}

// StateKeys returns every key [t] may touch.
func (t *Transaction) StateKeys() state.Keys {
	return t.Action.StateKeys(t.Actor())
}

// Verify checks the signature of [t] on its own.
func (t *Transaction) Verify(ctx context.Context) error {
	msg, err := t.Digest()
	if err != nil {
		return err
	}
	if err := t.Auth.Verify(ctx, msg); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	return nil
}

func UnmarshalTx(b []byte, p Parser) (*Transaction, error) {
	if len(b) > consts.NetworkSizeLimit {
		return nil, fmt.Errorf("%w: %d bytes", ErrTxTooLarge, len(b))
	}
	var stx signedTx
	if err := borsh.Deserialize(&stx, b); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidObject, err)
	}
	action, err := p.ParseAction(stx.Unsigned.ActionID, stx.Unsigned.Action)
	if err != nil {
		return nil, err
	}
	auth, err := p.ParseAuth(stx.AuthID, stx.Auth)
	if err != nil {
		return nil, err
	}
	tx := &Transaction{
		Base: &Base{
			Timestamp: stx.Unsigned.Timestamp,
			Nonce:     stx.Unsigned.Nonce,
		},
		Action: action,
		Auth:   auth,
	}
	if err := tx.init(); err != nil {
		return nil, err
	}
	return tx, nil
}
