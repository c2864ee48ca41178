// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"context"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/near/borsh-go"

	"github.com/ava-labs/vaultvm/chain"
	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/derive"
	"github.com/ava-labs/vaultvm/ledger"
	"github.com/ava-labs/vaultvm/state"
	"github.com/ava-labs/vaultvm/storage"
)

var _ chain.Action = (*Initialize)(nil)

// Initialize registers the actor as the owner of the vault derived from its
// key. It can succeed only once per owner.
type Initialize struct {
	VaultAccounts
}

func (*Initialize) GetTypeID() codec.Discriminator {
	return InitializeID
}

func (i *Initialize) StateKeys(codec.Address) state.Keys {
	return state.Keys{
		string(storage.RecordKey(i.VaultState)): state.All,
	}
}

func (i *Initialize) Execute(
	ctx context.Context,
	r chain.Rules,
	mu state.Mutable,
	_ int64,
	actor codec.Address,
	_ ids.ID,
) ([]byte, error) {
	programID := r.GetProgramID()
	if err := derive.Check(actor, i.VaultState, i.VaultAuth, programID); err != nil {
		return nil, err
	}
	l := ledger.New(programID, mu)
	record, err := l.CreateRecord(ctx, i.VaultState, actor)
	if errors.Is(err, ledger.ErrAccountInUse) {
		return nil, fmt.Errorf("%w: %w", ErrAlreadyInitialized, err)
	}
	if err != nil {
		return nil, err
	}
	return record.Bytes()
}

func (i *Initialize) Bytes() ([]byte, error) {
	return borsh.Serialize(*i)
}

func UnmarshalInitialize(b []byte) (chain.Action, error) {
	var i Initialize
	if err := borsh.Deserialize(&i, b); err != nil {
		return nil, fmt.Errorf("%w: %w", chain.ErrInvalidObject, err)
	}
	return &i, nil
}
