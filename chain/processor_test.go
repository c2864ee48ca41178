// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/ava-labs/vaultvm/actions"
	"github.com/ava-labs/vaultvm/auth"
	"github.com/ava-labs/vaultvm/chain"
	"github.com/ava-labs/vaultvm/chaintesting"
	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/derive"
	"github.com/ava-labs/vaultvm/genesis"
	"github.com/ava-labs/vaultvm/state"
	"github.com/ava-labs/vaultvm/storage"
	"github.com/ava-labs/vaultvm/trace"
)

const (
	testNow      int64 = 1_700_000_000_000
	startBalance       = 10_000
)

var errInjected = errors.New("injected failure")

type testEnv struct {
	db        *memdb.Database
	processor *chain.Processor
	programID codec.Address
}

func newTestEnv(t *testing.T, funded ...*auth.PrivateKey) *testEnv {
	t.Helper()
	require := require.New(t)

	programID, err := codec.StringToAddress("BYQXDGdYAR2zZ2u2Nio4eUjBwaVbobMgwhLsB8CZwg8d")
	require.NoError(err)

	db := memdb.New()
	allocs := make([]*genesis.CustomAllocation, len(funded))
	for i, pk := range funded {
		allocs[i] = &genesis.CustomAllocation{Address: pk.Address, Balance: startBalance}
	}
	_, err = genesis.NewDefaultGenesis(allocs).Apply(context.Background(), trace.Noop(), db)
	require.NoError(err)

	registry := chain.NewRegistry()
	require.NoError(actions.Register(registry))
	require.NoError(auth.Register(registry))

	rules := &chaintesting.Rules{ProgramID: programID, ValidityWindow: 60_000}
	p, _, err := chain.NewProcessor(logging.NoLog{}, trace.Noop(), rules, registry, db)
	require.NoError(err)
	p.Clock().Set(time.UnixMilli(testNow))

	return &testEnv{db: db, processor: p, programID: programID}
}

func (e *testEnv) vault(t *testing.T, owner *auth.PrivateKey) actions.VaultAccounts {
	t.Helper()
	v, err := derive.VaultAddresses(owner.Address, e.programID)
	require.NoError(t, err)
	return actions.VaultAccounts{VaultState: v.State, VaultAuth: v.Auth}
}

func (e *testEnv) balance(t *testing.T, addr codec.Address) uint64 {
	t.Helper()
	bal, err := storage.GetBalance(context.Background(), &dbState{e.db}, addr)
	require.NoError(t, err)
	return bal
}

func newKey(t *testing.T) *auth.PrivateKey {
	t.Helper()
	pk, err := auth.GeneratePrivateKey()
	require.NoError(t, err)
	return pk
}

func signTx(t *testing.T, pk *auth.PrivateKey, timestamp int64, nonce uint64, action chain.Action) *chain.Transaction {
	t.Helper()
	require := require.New(t)
	factory, err := auth.GetFactory(pk)
	require.NoError(err)
	tx, err := chain.NewTx(&chain.Base{Timestamp: timestamp, Nonce: nonce}, action).Sign(factory)
	require.NoError(err)
	return tx
}

func TestProcessorVaultLifecycle(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	owner := newKey(t)
	depositor := newKey(t)
	env := newTestEnv(t, owner, depositor)
	vault := env.vault(t, owner)

	txs := []*chain.Transaction{
		signTx(t, owner, testNow, 0, &actions.Initialize{VaultAccounts: vault}),
		signTx(t, owner, testNow, 1, &actions.Deposit{VaultAccounts: vault, Amount: 500}),
		signTx(t, depositor, testNow, 0, &actions.Deposit{VaultAccounts: vault, Amount: 300}),
		signTx(t, owner, testNow, 2, &actions.Withdraw{VaultAccounts: vault, Amount: 600}),
	}
	results, err := env.processor.Execute(ctx, txs)
	require.NoError(err)
	require.Len(results, len(txs))
	for i, r := range results {
		require.True(r.Executed, "tx %d", i)
		require.True(r.Success, "tx %d: %s", i, r.Error)
		require.Equal(txs[i].ID(), r.TxID)
	}
	require.NotEmpty(results[0].Output)

	require.Equal(uint64(200), env.balance(t, vault.VaultAuth))
	require.Equal(uint64(startBalance-500+600), env.balance(t, owner.Address))
	require.Equal(uint64(startBalance-300), env.balance(t, depositor.Address))

	record, err := storage.GetVaultRecord(ctx, &dbState{env.db}, vault.VaultState)
	require.NoError(err)
	require.Equal(owner.Address, record.Owner)

	for _, tx := range txs {
		found, result, err := storage.GetTransaction(ctx, env.db, tx.ID())
		require.NoError(err)
		require.True(found)
		require.True(result.Success)
		require.Equal(testNow, result.Timestamp)
	}
}

func TestProcessorFailedTxLeavesNoChanges(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	owner := newKey(t)
	thief := newKey(t)
	env := newTestEnv(t, owner, thief)
	vault := env.vault(t, owner)

	results, err := env.processor.Execute(ctx, []*chain.Transaction{
		signTx(t, owner, testNow, 0, &actions.Initialize{VaultAccounts: vault}),
		signTx(t, owner, testNow, 1, &actions.Deposit{VaultAccounts: vault, Amount: 400}),
	})
	require.NoError(err)
	require.True(results[1].Success)

	steal := signTx(t, thief, testNow, 0, &actions.Withdraw{VaultAccounts: vault, Amount: 400})
	overdraw := signTx(t, owner, testNow, 2, &actions.Withdraw{VaultAccounts: vault, Amount: 401})
	results, err = env.processor.Execute(ctx, []*chain.Transaction{steal, overdraw})
	require.NoError(err)
	require.True(results[0].Executed)
	require.False(results[0].Success)
	require.Contains(results[0].Error, actions.ErrUnauthorized.Error())
	require.True(results[1].Executed)
	require.False(results[1].Success)
	require.Contains(results[1].Error, actions.ErrInsufficientFunds.Error())

	require.Equal(uint64(400), env.balance(t, vault.VaultAuth))
	require.Equal(uint64(startBalance), env.balance(t, thief.Address))

	// Executed failures are still recorded.
	found, result, err := storage.GetTransaction(ctx, env.db, steal.ID())
	require.NoError(err)
	require.True(found)
	require.False(result.Success)
	require.NotEmpty(result.Error)
}

// failingWithdraw is a withdraw whose credit to the owner fails after the
// custody address was already debited.
type failingWithdraw struct {
	*actions.Withdraw
}

func (f *failingWithdraw) Execute(
	ctx context.Context,
	r chain.Rules,
	mu state.Mutable,
	timestamp int64,
	actor codec.Address,
	txID ids.ID,
) ([]byte, error) {
	return f.Withdraw.Execute(ctx, r, &failingState{Mutable: mu, key: storage.BalanceKey(actor)}, timestamp, actor, txID)
}

// failingState fails every insert of [key].
type failingState struct {
	state.Mutable
	key []byte
}

func (f *failingState) Insert(ctx context.Context, key []byte, value []byte) error {
	if bytes.Equal(key, f.key) {
		return errInjected
	}
	return f.Mutable.Insert(ctx, key, value)
}

func TestProcessorRollsBackPartialWithdraw(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	owner := newKey(t)
	env := newTestEnv(t, owner)
	vault := env.vault(t, owner)

	results, err := env.processor.Execute(ctx, []*chain.Transaction{
		signTx(t, owner, testNow, 0, &actions.Initialize{VaultAccounts: vault}),
		signTx(t, owner, testNow, 1, &actions.Deposit{VaultAccounts: vault, Amount: 400}),
	})
	require.NoError(err)
	require.True(results[1].Success, results[1].Error)

	broken := signTx(t, owner, testNow, 2, &failingWithdraw{
		Withdraw: &actions.Withdraw{VaultAccounts: vault, Amount: 150},
	})
	results, err = env.processor.Execute(ctx, []*chain.Transaction{broken})
	require.NoError(err)
	require.True(results[0].Executed)
	require.False(results[0].Success)
	require.Contains(results[0].Error, errInjected.Error())
	require.Equal(uint64(400), env.balance(t, vault.VaultAuth))
	require.Equal(uint64(startBalance-400), env.balance(t, owner.Address))

	record, err := storage.GetVaultRecord(ctx, &dbState{env.db}, vault.VaultState)
	require.NoError(err)
	require.Equal(owner.Address, record.Owner)

	// The full withdraw after the failed one only succeeds if the custody
	// debit of the failed one was discarded within the batch.
	broken = signTx(t, owner, testNow, 3, &failingWithdraw{
		Withdraw: &actions.Withdraw{VaultAccounts: vault, Amount: 150},
	})
	full := signTx(t, owner, testNow, 4, &actions.Withdraw{VaultAccounts: vault, Amount: 400})
	results, err = env.processor.Execute(ctx, []*chain.Transaction{broken, full})
	require.NoError(err)
	require.False(results[0].Success)
	require.True(results[1].Success, results[1].Error)
	require.Zero(env.balance(t, vault.VaultAuth))
	require.Equal(uint64(startBalance), env.balance(t, owner.Address))
}

func TestProcessorConcurrentDepositsAndWithdrawals(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	const (
		workers  = 16
		deposit  = 100
		withdraw = 150
	)

	owner := newKey(t)
	depositors := make([]*auth.PrivateKey, workers)
	for i := range depositors {
		depositors[i] = newKey(t)
	}
	env := newTestEnv(t, append([]*auth.PrivateKey{owner}, depositors...)...)
	vault := env.vault(t, owner)

	results, err := env.processor.Execute(ctx, []*chain.Transaction{
		signTx(t, owner, testNow, 0, &actions.Initialize{VaultAccounts: vault}),
	})
	require.NoError(err)
	require.True(results[0].Success, results[0].Error)

	// executeAll submits every transaction as its own batch from its own
	// goroutine.
	executeAll := func(txs []*chain.Transaction) []*chain.Result {
		out := make([]*chain.Result, len(txs))
		var g errgroup.Group
		for i, tx := range txs {
			i, tx := i, tx
			g.Go(func() error {
				rs, err := env.processor.Execute(ctx, []*chain.Transaction{tx})
				if err != nil {
					return err
				}
				out[i] = rs[0]
				return nil
			})
		}
		require.NoError(g.Wait())
		return out
	}

	deposits := make([]*chain.Transaction, workers)
	for i, pk := range depositors {
		deposits[i] = signTx(t, pk, testNow, 0, &actions.Deposit{VaultAccounts: vault, Amount: deposit})
	}
	for i, r := range executeAll(deposits) {
		require.True(r.Success, "deposit %d: %s", i, r.Error)
	}
	deposited := uint64(workers * deposit)
	require.Equal(deposited, env.balance(t, vault.VaultAuth))

	withdrawals := make([]*chain.Transaction, workers)
	for i := range withdrawals {
		withdrawals[i] = signTx(t, owner, testNow, uint64(i+1), &actions.Withdraw{VaultAccounts: vault, Amount: withdraw})
	}
	var successes uint64
	for i, r := range executeAll(withdrawals) {
		require.True(r.Executed, "withdraw %d", i)
		if r.Success {
			successes++
			continue
		}
		require.Contains(r.Error, actions.ErrInsufficientFunds.Error())
	}

	custody := env.balance(t, vault.VaultAuth)
	require.Equal(uint64(deposited/withdraw), successes)
	require.Equal(deposited, custody+successes*withdraw)
	require.Equal(uint64(startBalance)+successes*withdraw, env.balance(t, owner.Address))
	for _, pk := range depositors {
		require.Equal(uint64(startBalance-deposit), env.balance(t, pk.Address))
	}
}

func TestProcessorRejectsInvalidSignature(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	owner := newKey(t)
	env := newTestEnv(t, owner)
	vault := env.vault(t, owner)

	tx := signTx(t, owner, testNow, 0, &actions.Initialize{VaultAccounts: vault})
	tx.Auth.(*auth.ED25519).Signature[0] ^= 0xff

	results, err := env.processor.Execute(ctx, []*chain.Transaction{tx})
	require.NoError(err)
	require.False(results[0].Executed)
	require.False(results[0].Success)
	require.Contains(results[0].Error, chain.ErrInvalidSignature.Error())

	found, _, err := storage.GetTransaction(ctx, env.db, tx.ID())
	require.NoError(err)
	require.False(found)
	_, err = storage.GetVaultRecord(ctx, &dbState{env.db}, vault.VaultState)
	require.ErrorIs(err, storage.ErrRecordNotFound)
}

func TestProcessorBatchVerifiesSignatures(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	keys := []*auth.PrivateKey{newKey(t), newKey(t), newKey(t), newKey(t), newKey(t)}
	env := newTestEnv(t, keys...)

	txs := make([]*chain.Transaction, len(keys))
	for i, pk := range keys {
		txs[i] = signTx(t, pk, testNow, 0, &actions.Initialize{VaultAccounts: env.vault(t, pk)})
	}
	txs[2].Auth.(*auth.ED25519).Signature[5] ^= 0x01

	results, err := env.processor.Execute(ctx, txs)
	require.NoError(err)
	for i, r := range results {
		if i == 2 {
			require.False(r.Executed)
			require.Contains(r.Error, chain.ErrInvalidSignature.Error())
			continue
		}
		require.True(r.Success, "tx %d: %s", i, r.Error)
	}
}

func TestProcessorRejectsDuplicates(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	owner := newKey(t)
	env := newTestEnv(t, owner)
	vault := env.vault(t, owner)

	initTx := signTx(t, owner, testNow, 0, &actions.Initialize{VaultAccounts: vault})
	deposit := signTx(t, owner, testNow, 1, &actions.Deposit{VaultAccounts: vault, Amount: 10})

	results, err := env.processor.Execute(ctx, []*chain.Transaction{initTx, deposit, deposit})
	require.NoError(err)
	require.True(results[1].Success)
	require.False(results[2].Executed)
	require.Contains(results[2].Error, chain.ErrDuplicateTx.Error())
	require.Equal(uint64(10), env.balance(t, vault.VaultAuth))

	// Replaying in a later batch is rejected as well.
	results, err = env.processor.Execute(ctx, []*chain.Transaction{deposit})
	require.NoError(err)
	require.False(results[0].Executed)
	require.Contains(results[0].Error, chain.ErrDuplicateTx.Error())
	require.Equal(uint64(10), env.balance(t, vault.VaultAuth))

	// A new nonce yields a new transaction.
	again := signTx(t, owner, testNow, 2, &actions.Deposit{VaultAccounts: vault, Amount: 10})
	results, err = env.processor.Execute(ctx, []*chain.Transaction{again})
	require.NoError(err)
	require.True(results[0].Success)
	require.Equal(uint64(20), env.balance(t, vault.VaultAuth))
}

func TestProcessorTimestampWindow(t *testing.T) {
	owner := newKey(t)

	tests := []struct {
		name      string
		timestamp int64
		err       error
	}{
		{
			name:      "now",
			timestamp: testNow,
		},
		{
			name:      "edge of window",
			timestamp: testNow - 60_000,
		},
		{
			name:      "too late",
			timestamp: testNow - 61_000,
			err:       chain.ErrTimestampTooLate,
		},
		{
			name:      "too early",
			timestamp: testNow + 61_000,
			err:       chain.ErrTimestampTooEarly,
		},
		{
			name:      "misaligned",
			timestamp: testNow + 1,
			err:       chain.ErrMisalignedTime,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			env := newTestEnv(t, owner)
			vault := env.vault(t, owner)

			tx := signTx(t, owner, tt.timestamp, 0, &actions.Initialize{VaultAccounts: vault})
			results, err := env.processor.Execute(context.Background(), []*chain.Transaction{tx})
			require.NoError(err)
			if tt.err == nil {
				require.True(results[0].Success, results[0].Error)
				return
			}
			require.False(results[0].Executed)
			require.Equal(tt.err.Error(), results[0].Error)
		})
	}
}

func TestUnmarshalTx(t *testing.T) {
	require := require.New(t)

	owner := newKey(t)
	env := newTestEnv(t)
	vault := env.vault(t, owner)

	registry := chain.NewRegistry()
	require.NoError(actions.Register(registry))
	require.NoError(auth.Register(registry))

	tx := signTx(t, owner, testNow, 7, &actions.Withdraw{VaultAccounts: vault, Amount: 3})
	parsed, err := chain.UnmarshalTx(tx.Bytes(), registry)
	require.NoError(err)
	require.Equal(tx.ID(), parsed.ID())
	require.Equal(tx.Bytes(), parsed.Bytes())
	require.Equal(owner.Address, parsed.Actor())
	require.Equal(&chain.Base{Timestamp: testNow, Nonce: 7}, parsed.Base)
	require.Equal(&actions.Withdraw{VaultAccounts: vault, Amount: 3}, parsed.Action)
	require.NoError(parsed.Verify(context.Background()))

	_, err = chain.UnmarshalTx(tx.Bytes()[:10], registry)
	require.ErrorIs(err, chain.ErrInvalidObject)

	_, err = chain.UnmarshalTx(tx.Bytes(), chain.NewRegistry())
	require.ErrorIs(err, chain.ErrActionNotRegistered)
}

// dbState exposes a database as [state.Immutable].
type dbState struct {
	db *memdb.Database
}

func (d *dbState) GetValue(_ context.Context, key []byte) ([]byte, error) {
	return d.db.Get(key)
}
