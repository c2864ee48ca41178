// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/utils/set"
	"github.com/ava-labs/avalanchego/utils/timer/mockable"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/ava-labs/vaultvm/lockmap"
	"github.com/ava-labs/vaultvm/state"
	"github.com/ava-labs/vaultvm/storage"
	"github.com/ava-labs/vaultvm/tstate"

	oteltrace "go.opentelemetry.io/otel/trace"
)

const initialLocks = 1_024

// Processor executes batches of transactions against [db]. Batches touching
// disjoint keys run concurrently; overlapping batches are serialized on the
// keys they share.
type Processor struct {
	log     logging.Logger
	tracer  trace.Tracer
	metrics *chainMetrics

	rules  Rules
	parser Parser
	db     Database

	locks *lockmap.Lockmap
	clock *mockable.Clock
}

func NewProcessor(
	log logging.Logger,
	tracer trace.Tracer,
	rules Rules,
	parser Parser,
	db Database,
) (*Processor, *prometheus.Registry, error) {
	registry, metrics, err := newMetrics()
	if err != nil {
		return nil, nil, err
	}
	return &Processor{
		log:     log,
		tracer:  tracer,
		metrics: metrics,
		rules:   rules,
		parser:  parser,
		db:      db,
		locks:   lockmap.New(initialLocks),
		clock:   &mockable.Clock{},
	}, registry, nil
}

// Clock exposes the local clock used for timestamp checks.
func (p *Processor) Clock() *mockable.Clock {
	return p.clock
}

func (p *Processor) Rules() Rules {
	return p.rules
}

// Execute runs [txs] in order. Each transaction either applies all of its
// changes or none of them. Changes and results of the whole batch are
// flushed to [db] in a single write.
//
// The returned error is reserved for failures of the processor itself
// (database errors); per-transaction failures are reported in the results.
func (p *Processor) Execute(ctx context.Context, txs []*Transaction) ([]*Result, error) {
	ctx, span := p.tracer.Start(ctx, "Processor.Execute",
		oteltrace.WithAttributes(
			attribute.Int("txs", len(txs)),
		),
	)
	defer span.End()

	start := time.Now()
	defer func() {
		p.metrics.execute.Observe(float64(time.Since(start)))
	}()

	results := make([]*Result, len(txs))
	for i, tx := range txs {
		results[i] = &Result{TxID: tx.ID()}
	}

	sigStart := time.Now()
	sigErrs, err := verifySignatures(ctx, p.parser, txs)
	if err != nil {
		return nil, err
	}
	p.metrics.waitSignatures.Observe(float64(time.Since(sigStart)))

	// Collect every key the batch may touch, including the result slot of
	// each transaction so concurrent batches cannot replay it.
	var (
		now     = p.clock.Time().UnixMilli()
		runs    = make([]bool, len(txs))
		scope   = make(state.Keys)
		batchID = set.NewSet[ids.ID](len(txs))
	)
	for i, tx := range txs {
		if err := sigErrs[i]; err != nil {
			p.reject(results[i], err)
			continue
		}
		if err := tx.Base.Verify(p.rules, now); err != nil {
			p.reject(results[i], err)
			continue
		}
		if batchID.Contains(tx.ID()) {
			p.reject(results[i], ErrDuplicateTx)
			continue
		}
		batchID.Add(tx.ID())
		runs[i] = true
		for k, perm := range tx.StateKeys() {
			scope.Add(k, perm)
		}
		scope.Add(string(storage.TxKey(tx.ID())), state.All)
	}

	keys := scope.Sorted()
	for _, k := range keys {
		if scope[k].Has(state.Write) || scope[k].Has(state.Allocate) {
			p.locks.Lock(k)
		} else {
			p.locks.RLock(k)
		}
	}
	defer func() {
		for _, k := range keys {
			if scope[k].Has(state.Write) || scope[k].Has(state.Allocate) {
				p.locks.Unlock(k)
			} else {
				p.locks.RUnlock(k)
			}
		}
	}()

	storageValues, err := p.load(keys)
	if err != nil {
		return nil, err
	}

	ts := tstate.New(len(keys))
	for i, tx := range txs {
		if !runs[i] {
			continue
		}
		if _, ok := storageValues[string(storage.TxKey(tx.ID()))]; ok {
			runs[i] = false
			p.reject(results[i], ErrDuplicateTx)
			continue
		}
		p.run(ctx, ts, storageValues, tx, results[i])
	}

	batch := p.db.NewBatch()
	if err := ts.WriteChanges(batch); err != nil {
		return nil, err
	}
	for i, tx := range txs {
		if !runs[i] {
			continue
		}
		r := results[i]
		if err := storage.StoreTransaction(ctx, batch, tx.ID(), &storage.TxResult{
			Timestamp: tx.Base.Timestamp,
			Success:   r.Success,
			Error:     r.Error,
		}); err != nil {
			return nil, err
		}
	}
	if err := batch.Write(); err != nil {
		return nil, fmt.Errorf("%w: unable to write batch", err)
	}
	p.metrics.stateChanges.Add(float64(ts.PendingChanges()))
	p.metrics.stateOperations.Add(float64(ts.OpIndex()))
	return results, nil
}

func (p *Processor) run(
	ctx context.Context,
	ts *tstate.TState,
	storageValues map[string][]byte,
	tx *Transaction,
	r *Result,
) {
	ctx, span := p.tracer.Start(ctx, "Processor.run")
	defer span.End()

	r.Executed = true
	tsv := ts.NewView(tx.StateKeys(), storageValues)
	output, err := tx.Action.Execute(ctx, p.rules, tsv, tx.Base.Timestamp, tx.Actor(), tx.ID())
	if err != nil {
		tsv.Rollback(ctx, 0)
		r.fail(err)
		p.metrics.txsFailed.Inc()
		p.log.Debug("transaction failed",
			zap.Stringer("txID", tx.ID()),
			zap.Stringer("actor", tx.Actor()),
			zap.Error(err),
		)
		return
	}
	tsv.Commit()
	r.Success = true
	r.Output = output
	p.metrics.txsSucceeded.Inc()
	p.log.Debug("transaction executed",
		zap.Stringer("txID", tx.ID()),
		zap.Stringer("actor", tx.Actor()),
	)
}

func (p *Processor) reject(r *Result, err error) {
	r.fail(err)
	p.metrics.txsRejected.Inc()
	p.log.Debug("transaction rejected",
		zap.Stringer("txID", r.TxID),
		zap.Error(err),
	)
}

func (p *Processor) load(keys []string) (map[string][]byte, error) {
	values := make(map[string][]byte, len(keys))
	for _, k := range keys {
		v, err := p.db.Get([]byte(k))
		if errors.Is(err, database.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		values[k] = v
	}
	return values, nil
}
