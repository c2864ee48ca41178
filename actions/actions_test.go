// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"context"
	"errors"
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/vaultvm/chaintesting"
	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/consts"
	"github.com/ava-labs/vaultvm/crypto/ed25519"
	"github.com/ava-labs/vaultvm/derive"
	"github.com/ava-labs/vaultvm/ledger"
	"github.com/ava-labs/vaultvm/state"
	"github.com/ava-labs/vaultvm/storage"
)

var (
	testProgramID = mustAddress("BYQXDGdYAR2zZ2u2Nio4eUjBwaVbobMgwhLsB8CZwg8d")
	testOwner     = mustAddress("8kgY5voVgDY8RWQoRue28NhGHRgwft59SDpR7n5EKWCN")
	testState     = mustAddress("2sAs7MGiphU2RmtB3KWquEKSHBhrGSbXx9WnEmB5Y8zq")
	testAuth      = mustAddress("2ywyRYVL52EXKgXmDdR53EPVFpVwYFxZgKN1DVbn6FUe")

	testRules = &chaintesting.Rules{ProgramID: testProgramID}
	accounts  = VaultAccounts{VaultState: testState, VaultAuth: testAuth}

	errInjected = errors.New("injected failure")
)

func mustAddress(s string) codec.Address {
	a, err := codec.StringToAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

func newActor(t testing.TB) codec.Address {
	priv, err := ed25519.GeneratePrivateKey()
	require.NoError(t, err)
	return codec.FromPublicKey(priv.PublicKey())
}

// newVault returns a store holding an initialized vault for [testOwner]
// with [custody] in its custody address.
func newVault(t testing.TB, custody uint64) *chaintesting.InMemoryStore {
	require := require.New(t)
	ctx := context.TODO()
	store := chaintesting.NewInMemoryStore()
	_, err := storage.CreateVaultRecord(ctx, store, testState, testOwner)
	require.NoError(err)
	require.NoError(storage.SetBalance(ctx, store, testAuth, custody))
	return store
}

func requireBalance(ctx context.Context, t testing.TB, im state.Immutable, addr codec.Address, expected uint64) {
	bal, err := storage.GetBalance(ctx, im, addr)
	require.NoError(t, err)
	require.Equal(t, expected, bal)
}

func TestInstructionIDs(t *testing.T) {
	require := require.New(t)
	require.Equal(codec.InstructionDiscriminator("initialize"), (&Initialize{}).GetTypeID())
	require.NotEqual(DepositID, WithdrawID)
	require.NotEqual(InitializeID, DepositID)
}

func TestInitializeAction(t *testing.T) {
	ctx := context.TODO()
	other := newActor(t)
	recordBytes, err := storage.NewVaultRecord(testOwner).Bytes()
	require.NoError(t, err)

	initialized := chaintesting.NewInMemoryStore()
	_, err = storage.CreateVaultRecord(ctx, initialized, testState, testOwner)
	require.NoError(t, err)

	tests := []chaintesting.ActionTest{
		{
			Name:           "CreatesRecord",
			Action:         &Initialize{VaultAccounts: accounts},
			Rules:          testRules,
			State:          chaintesting.NewInMemoryStore(),
			Actor:          testOwner,
			ExpectedOutput: recordBytes,
			Assertion: func(ctx context.Context, t *testing.T, store state.Mutable) {
				require := require.New(t)
				record, err := storage.GetVaultRecord(ctx, store, testState)
				require.NoError(err)
				require.Equal(testOwner, record.Owner)

				// The custody address is not allocated.
				_, err = store.GetValue(ctx, storage.BalanceKey(testAuth))
				require.Error(err)
			},
		},
		{
			Name:        "AlreadyInitialized",
			Action:      &Initialize{VaultAccounts: accounts},
			Rules:       testRules,
			State:       initialized,
			Actor:       testOwner,
			ExpectedErr: ErrAlreadyInitialized,
			Assertion: func(ctx context.Context, t *testing.T, store state.Mutable) {
				record, err := storage.GetVaultRecord(ctx, store, testState)
				require.NoError(t, err)
				require.Equal(t, testOwner, record.Owner)
			},
		},
		{
			Name:        "OtherActorsVault",
			Action:      &Initialize{VaultAccounts: accounts},
			Rules:       testRules,
			State:       chaintesting.NewInMemoryStore(),
			Actor:       other,
			ExpectedErr: derive.ErrSeedsMismatch,
		},
		{
			Name:        "SwappedAddresses",
			Action:      &Initialize{VaultAccounts: VaultAccounts{VaultState: testAuth, VaultAuth: testState}},
			Rules:       testRules,
			State:       chaintesting.NewInMemoryStore(),
			Actor:       testOwner,
			ExpectedErr: derive.ErrSeedsMismatch,
		},
		{
			Name:        "OtherProgram",
			Action:      &Initialize{VaultAccounts: accounts},
			Rules:       &chaintesting.Rules{ProgramID: other},
			State:       chaintesting.NewInMemoryStore(),
			Actor:       testOwner,
			ExpectedErr: derive.ErrSeedsMismatch,
		},
		{
			Name:   "StorageFault",
			Action: &Initialize{VaultAccounts: accounts},
			Rules:  testRules,
			State: &failingState{
				Mutable: chaintesting.NewInMemoryStore(),
				key:     storage.RecordKey(testState),
				reads:   true,
			},
			Actor:       testOwner,
			ExpectedErr: errInjected,
		},
	}

	for _, tt := range tests {
		tt.Run(ctx, t)
	}
}

func TestInitializeStorageFaultIsNotAlreadyInitialized(t *testing.T) {
	require := require.New(t)
	ctx := context.TODO()

	store := &failingState{
		Mutable: chaintesting.NewInMemoryStore(),
		key:     storage.RecordKey(testState),
		reads:   true,
	}
	_, err := (&Initialize{VaultAccounts: accounts}).Execute(ctx, testRules, store, 0, testOwner, ids.Empty)
	require.ErrorIs(err, errInjected)
	require.NotErrorIs(err, ErrAlreadyInitialized)
	require.NotErrorIs(err, ledger.ErrAccountInUse)
}

func TestDepositAction(t *testing.T) {
	ctx := context.TODO()
	depositor := newActor(t)

	funded := func(custody uint64, depositorBal uint64) *chaintesting.InMemoryStore {
		store := newVault(t, custody)
		require.NoError(t, storage.SetBalance(ctx, store, depositor, depositorBal))
		return store
	}

	tests := []chaintesting.ActionTest{
		{
			Name:        "ZeroAmount",
			Action:      &Deposit{VaultAccounts: accounts, Amount: 0},
			Rules:       testRules,
			State:       funded(10, 100),
			Actor:       depositor,
			ExpectedErr: ErrInvalidAmount,
			Assertion: func(ctx context.Context, t *testing.T, store state.Mutable) {
				requireBalance(ctx, t, store, testAuth, 10)
				requireBalance(ctx, t, store, depositor, 100)
			},
		},
		{
			Name:        "VaultNotFound",
			Action:      &Deposit{VaultAccounts: accounts, Amount: 1},
			Rules:       testRules,
			State:       chaintesting.NewInMemoryStore(),
			Actor:       depositor,
			ExpectedErr: ErrVaultNotFound,
		},
		{
			Name:        "WrongCustodyAddress",
			Action:      &Deposit{VaultAccounts: VaultAccounts{VaultState: testState, VaultAuth: depositor}, Amount: 1},
			Rules:       testRules,
			State:       funded(0, 100),
			Actor:       depositor,
			ExpectedErr: derive.ErrSeedsMismatch,
		},
		{
			Name:        "DepositorCannotCover",
			Action:      &Deposit{VaultAccounts: accounts, Amount: 101},
			Rules:       testRules,
			State:       funded(0, 100),
			Actor:       depositor,
			ExpectedErr: ledger.ErrInsufficientBalance,
			Assertion: func(ctx context.Context, t *testing.T, store state.Mutable) {
				requireBalance(ctx, t, store, testAuth, 0)
				requireBalance(ctx, t, store, depositor, 100)
			},
		},
		{
			Name:        "CustodyOverflow",
			Action:      &Deposit{VaultAccounts: accounts, Amount: 1},
			Rules:       testRules,
			State:       funded(consts.MaxUint64, 100),
			Actor:       depositor,
			ExpectedErr: storage.ErrInvalidBalance,
			Assertion: func(ctx context.Context, t *testing.T, store state.Mutable) {
				requireBalance(ctx, t, store, testAuth, consts.MaxUint64)
				requireBalance(ctx, t, store, depositor, 100)
			},
		},
		{
			Name:   "Conserves",
			Action: &Deposit{VaultAccounts: accounts, Amount: 100},
			Rules:  testRules,
			State:  funded(5, 250),
			Actor:  depositor,
			Assertion: func(ctx context.Context, t *testing.T, store state.Mutable) {
				requireBalance(ctx, t, store, testAuth, 105)
				requireBalance(ctx, t, store, depositor, 150)
			},
		},
		{
			Name:   "OwnerMayDeposit",
			Action: &Deposit{VaultAccounts: accounts, Amount: 7},
			Rules:  testRules,
			State: func() *chaintesting.InMemoryStore {
				store := newVault(t, 0)
				require.NoError(t, storage.SetBalance(ctx, store, testOwner, 7))
				return store
			}(),
			Actor: testOwner,
			Assertion: func(ctx context.Context, t *testing.T, store state.Mutable) {
				requireBalance(ctx, t, store, testAuth, 7)
				requireBalance(ctx, t, store, testOwner, 0)
			},
		},
	}

	for _, tt := range tests {
		tt.Run(ctx, t)
	}
}

func TestWithdrawAction(t *testing.T) {
	ctx := context.TODO()
	stranger := newActor(t)

	tests := []chaintesting.ActionTest{
		{
			Name:        "NotOwner",
			Action:      &Withdraw{VaultAccounts: accounts, Amount: 1},
			Rules:       testRules,
			State:       newVault(t, 50),
			Actor:       stranger,
			ExpectedErr: ErrUnauthorized,
			Assertion: func(ctx context.Context, t *testing.T, store state.Mutable) {
				requireBalance(ctx, t, store, testAuth, 50)
				requireBalance(ctx, t, store, stranger, 0)
			},
		},
		{
			// Ownership is checked before funds.
			Name:        "NotOwnerAndInsufficient",
			Action:      &Withdraw{VaultAccounts: accounts, Amount: 51},
			Rules:       testRules,
			State:       newVault(t, 50),
			Actor:       stranger,
			ExpectedErr: ErrUnauthorized,
		},
		{
			Name:        "InsufficientFunds",
			Action:      &Withdraw{VaultAccounts: accounts, Amount: 51},
			Rules:       testRules,
			State:       newVault(t, 50),
			Actor:       testOwner,
			ExpectedErr: ErrInsufficientFunds,
			Assertion: func(ctx context.Context, t *testing.T, store state.Mutable) {
				requireBalance(ctx, t, store, testAuth, 50)
				requireBalance(ctx, t, store, testOwner, 0)
			},
		},
		{
			Name:        "VaultNotFound",
			Action:      &Withdraw{VaultAccounts: accounts, Amount: 1},
			Rules:       testRules,
			State:       chaintesting.NewInMemoryStore(),
			Actor:       testOwner,
			ExpectedErr: ErrVaultNotFound,
		},
		{
			Name:   "Partial",
			Action: &Withdraw{VaultAccounts: accounts, Amount: 20},
			Rules:  testRules,
			State:  newVault(t, 50),
			Actor:  testOwner,
			Assertion: func(ctx context.Context, t *testing.T, store state.Mutable) {
				requireBalance(ctx, t, store, testAuth, 30)
				requireBalance(ctx, t, store, testOwner, 20)
			},
		},
		{
			Name:   "Drain",
			Action: &Withdraw{VaultAccounts: accounts, Amount: 50},
			Rules:  testRules,
			State:  newVault(t, 50),
			Actor:  testOwner,
			Assertion: func(ctx context.Context, t *testing.T, store state.Mutable) {
				requireBalance(ctx, t, store, testAuth, 0)
				requireBalance(ctx, t, store, testOwner, 50)
			},
		},
		{
			Name:   "ZeroAmount",
			Action: &Withdraw{VaultAccounts: accounts, Amount: 0},
			Rules:  testRules,
			State:  newVault(t, 50),
			Actor:  testOwner,
			Assertion: func(ctx context.Context, t *testing.T, store state.Mutable) {
				requireBalance(ctx, t, store, testAuth, 50)
			},
		},
	}

	for _, tt := range tests {
		tt.Run(ctx, t)
	}
}

func TestActionBytes(t *testing.T) {
	require := require.New(t)

	d := &Deposit{VaultAccounts: accounts, Amount: 42}
	b, err := d.Bytes()
	require.NoError(err)
	parsed, err := UnmarshalDeposit(b)
	require.NoError(err)
	require.Equal(d, parsed)

	_, err = UnmarshalWithdraw(b[:10])
	require.Error(err)
}
