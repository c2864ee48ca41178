// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ledger is the account store a program executes against. It keeps
// the two ways value can leave an account apart: a transfer signed by the
// source key, and an adjustment of an address the program itself derived.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/derive"
	"github.com/ava-labs/vaultvm/state"
	"github.com/ava-labs/vaultvm/storage"

	smath "github.com/ava-labs/avalanchego/utils/math"
)

// Signers reports which identities authenticated the current request.
type Signers interface {
	IsSigner(codec.Address) bool
}

type Ledger struct {
	programID codec.Address
	mu        state.Mutable
}

func New(programID codec.Address, mu state.Mutable) *Ledger {
	return &Ledger{
		programID: programID,
		mu:        mu,
	}
}

func (l *Ledger) ProgramID() codec.Address {
	return l.programID
}

// CreateRecord allocates a vault record at [addr]. It fails with
// [ErrAccountInUse] if [addr] is occupied.
func (l *Ledger) CreateRecord(ctx context.Context, addr codec.Address, owner codec.Address) (*storage.VaultRecord, error) {
	r, err := storage.CreateVaultRecord(ctx, l.mu, addr, owner)
	if errors.Is(err, storage.ErrRecordExists) {
		return nil, fmt.Errorf("%w: %w", ErrAccountInUse, err)
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (l *Ledger) Record(ctx context.Context, addr codec.Address) (*storage.VaultRecord, error) {
	return storage.GetVaultRecord(ctx, l.mu, addr)
}

func (l *Ledger) Balance(ctx context.Context, addr codec.Address) (uint64, error) {
	return storage.GetBalance(ctx, l.mu, addr)
}

// SignedTransfer moves [amount] from [from] to [to]. [from] must have signed
// the request, which rules out every program derived address.
func (l *Ledger) SignedTransfer(
	ctx context.Context,
	signers Signers,
	from codec.Address,
	to codec.Address,
	amount uint64,
) error {
	if !from.IsOnCurve() {
		return fmt.Errorf("%w: %s", ErrNotSignable, from)
	}
	if !signers.IsSigner(from) {
		return fmt.Errorf("%w: %s", ErrMissingSigner, from)
	}
	return l.move(ctx, from, to, amount)
}

// PrivilegedAdjust moves [amount] out of [from] without a signature. It is
// only allowed when [from] is the address this program derives from [seeds].
func (l *Ledger) PrivilegedAdjust(
	ctx context.Context,
	from codec.Address,
	seeds [][]byte,
	to codec.Address,
	amount uint64,
) error {
	if _, err := derive.Verify(from, seeds, l.programID); err != nil {
		return fmt.Errorf("%w: %w", ErrNotProgramAddress, err)
	}
	return l.move(ctx, from, to, amount)
}

// move validates both sides before writing either of them.
func (l *Ledger) move(ctx context.Context, from codec.Address, to codec.Address, amount uint64) error {
	fromBal, err := l.Balance(ctx, from)
	if err != nil {
		return err
	}
	newFromBal, err := smath.Sub(fromBal, amount)
	if err != nil {
		return fmt.Errorf("%w: %s has %d, needs %d", ErrInsufficientBalance, from, fromBal, amount)
	}
	if from == to {
		return nil
	}
	toBal, err := l.Balance(ctx, to)
	if err != nil {
		return err
	}
	newToBal, err := smath.Add(toBal, amount)
	if err != nil {
		return fmt.Errorf("%w: %s has %d, receives %d", storage.ErrInvalidBalance, to, toBal, amount)
	}

	if err := storage.SetBalance(ctx, l.mu, from, newFromBal); err != nil {
		return err
	}
	return storage.SetBalance(ctx, l.mu, to, newToBal)
}
