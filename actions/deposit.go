// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"context"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/near/borsh-go"

	"github.com/ava-labs/vaultvm/chain"
	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/ledger"
	"github.com/ava-labs/vaultvm/state"
)

var _ chain.Action = (*Deposit)(nil)

// Deposit moves [Amount] from the actor into the custody address. Anyone may
// deposit into any initialized vault.
type Deposit struct {
	VaultAccounts
	Amount uint64 `json:"amount"`
}

func (*Deposit) GetTypeID() codec.Discriminator {
	return DepositID
}

func (d *Deposit) StateKeys(actor codec.Address) state.Keys {
	return d.fundsKeys(actor)
}

func (d *Deposit) Execute(
	ctx context.Context,
	r chain.Rules,
	mu state.Mutable,
	_ int64,
	actor codec.Address,
	_ ids.ID,
) ([]byte, error) {
	if d.Amount == 0 {
		return nil, ErrInvalidAmount
	}
	l := ledger.New(r.GetProgramID(), mu)
	if _, err := d.load(ctx, l); err != nil {
		return nil, err
	}
	if err := l.SignedTransfer(ctx, chain.NewSigners(actor), actor, d.VaultAuth, d.Amount); err != nil {
		return nil, err
	}
	return nil, nil
}

func (d *Deposit) Bytes() ([]byte, error) {
	return borsh.Serialize(*d)
}

func UnmarshalDeposit(b []byte) (chain.Action, error) {
	var d Deposit
	if err := borsh.Deserialize(&d, b); err != nil {
		return nil, fmt.Errorf("%w: %w", chain.ErrInvalidObject, err)
	}
	return &d, nil
}
