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
	"github.com/ava-labs/vaultvm/derive"
	"github.com/ava-labs/vaultvm/ledger"
	"github.com/ava-labs/vaultvm/state"
)

var _ chain.Action = (*Withdraw)(nil)

// Withdraw returns [Amount] from the custody address to the vault owner.
type Withdraw struct {
	VaultAccounts
	Amount uint64 `json:"amount"`
}

func (*Withdraw) GetTypeID() codec.Discriminator {
	return WithdrawID
}

func (w *Withdraw) StateKeys(actor codec.Address) state.Keys {
	return w.fundsKeys(actor)
}

func (w *Withdraw) Execute(
	ctx context.Context,
	r chain.Rules,
	mu state.Mutable,
	_ int64,
	actor codec.Address,
	_ ids.ID,
) ([]byte, error) {
	l := ledger.New(r.GetProgramID(), mu)
	record, err := w.load(ctx, l)
	if err != nil {
		return nil, err
	}
	if actor != record.Owner {
		return nil, fmt.Errorf("%w: %s is not %s", ErrUnauthorized, actor, record.Owner)
	}
	bal, err := l.Balance(ctx, w.VaultAuth)
	if err != nil {
		return nil, err
	}
	if bal < w.Amount {
		return nil, fmt.Errorf("%w: has %d, requested %d", ErrInsufficientFunds, bal, w.Amount)
	}
	if err := l.PrivilegedAdjust(ctx, w.VaultAuth, derive.AuthSeeds(w.VaultState), actor, w.Amount); err != nil {
		return nil, err
	}
	return nil, nil
}

func (w *Withdraw) Bytes() ([]byte, error) {
	return borsh.Serialize(*w)
}

func UnmarshalWithdraw(b []byte) (chain.Action, error) {
	var w Withdraw
	if err := borsh.Deserialize(&w, b); err != nil {
		return nil, fmt.Errorf("%w: %w", chain.ErrInvalidObject, err)
	}
	return &w, nil
}
