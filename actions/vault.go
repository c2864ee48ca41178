// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"context"
	"errors"
	"fmt"

	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/derive"
	"github.com/ava-labs/vaultvm/ledger"
	"github.com/ava-labs/vaultvm/state"
	"github.com/ava-labs/vaultvm/storage"
)

// VaultAccounts names the two addresses of the vault an instruction
// operates on.
type VaultAccounts struct {
	VaultState codec.Address `json:"vaultState"`
	VaultAuth  codec.Address `json:"vaultAuth"`
}

// fundsKeys are the keys touched by instructions that move value between
// [actor] and the custody address.
func (v *VaultAccounts) fundsKeys(actor codec.Address) state.Keys {
	return state.Keys{
		string(storage.RecordKey(v.VaultState)): state.Read,
		string(storage.BalanceKey(v.VaultAuth)): state.All,
		string(storage.BalanceKey(actor)):       state.All,
	}
}

// load reads the vault record and checks both addresses were derived from
// its owner under [programID].
func (v *VaultAccounts) load(
	ctx context.Context,
	l *ledger.Ledger,
) (*storage.VaultRecord, error) {
	record, err := l.Record(ctx, v.VaultState)
	if errors.Is(err, storage.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrVaultNotFound, v.VaultState)
	}
	if err != nil {
		return nil, err
	}
	if err := derive.Check(record.Owner, v.VaultState, v.VaultAuth, l.ProgramID()); err != nil {
		return nil, err
	}
	return record, nil
}
