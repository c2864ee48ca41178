// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/utils/profiler"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ava-labs/vaultvm/actions"
	"github.com/ava-labs/vaultvm/auth"
	"github.com/ava-labs/vaultvm/chain"
	"github.com/ava-labs/vaultvm/config"
	"github.com/ava-labs/vaultvm/genesis"
	"github.com/ava-labs/vaultvm/rpc"
	"github.com/ava-labs/vaultvm/storage"
	"github.com/ava-labs/vaultvm/version"

	avametrics "github.com/ava-labs/avalanchego/api/metrics"
	vtrace "github.com/ava-labs/vaultvm/trace"
)

const MetricsEndpoint = "/metrics"

var _ rpc.VM = (*VM)(nil)

type Handlers map[string]http.Handler

// Database is the store a [VM] keeps balances, vault records and
// transaction results in.
type Database interface {
	chain.Database
	io.Closer
}

// VM wires the vault program to its storage, tracing, metrics and public
// API.
type VM struct {
	config *config.Config
	log    logging.Logger
	tracer trace.Tracer

	db       Database
	genesis  *genesis.Genesis
	registry *chain.Registry

	processor *chain.Processor
	gatherer  avametrics.MultiGatherer
	metrics   *Metrics

	closers []func() error

	shutdownOnce sync.Once
	stop         chan struct{}
}

// New applies the genesis in [genesisBytes] to [db] (if it was not applied
// before) and returns a VM ready to serve requests.
func New(
	ctx context.Context,
	cfg *config.Config,
	log logging.Logger,
	db Database,
	genesisBytes []byte,
) (*VM, error) {
	vm := &VM{
		config:   cfg,
		log:      log,
		db:       db,
		registry: chain.NewRegistry(),
		gatherer: avametrics.NewPrefixGatherer(),
		stop:     make(chan struct{}),
	}

	tracer, err := vtrace.New(cfg.GetTraceConfig())
	if err != nil {
		return nil, err
	}
	vm.tracer = tracer
	vm.closers = append(vm.closers, tracer.Close)
	ctx, span := vm.tracer.Start(ctx, "VM.New")
	defer span.End()

	if pc := cfg.GetProfilerConfig(); pc.Enabled {
		continuousProfiler := profiler.NewContinuous(pc.Dir, pc.Freq, pc.MaxNumFiles)
		vm.closers = append(vm.closers, func() error {
			continuousProfiler.Shutdown()
			return nil
		})
		go continuousProfiler.Dispatch() //nolint:errcheck
	}

	defaultRegistry, metrics, err := newMetrics()
	if err != nil {
		return nil, err
	}
	if err := vm.gatherer.Register("vaultvm", defaultRegistry); err != nil {
		return nil, err
	}
	vm.metrics = metrics

	vm.genesis, err = genesis.Load(genesisBytes, cfg.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("unable to load genesis: %w", err)
	}
	applied, err := vm.genesis.Apply(ctx, vm.tracer, db)
	if err != nil {
		return nil, fmt.Errorf("unable to apply genesis: %w", err)
	}
	if applied {
		vm.log.Info("applied genesis",
			zap.Int("allocations", len(vm.genesis.CustomAllocation)),
		)
	}

	errs := wrappers.Errs{}
	errs.Add(
		actions.Register(vm.registry),
		auth.Register(vm.registry),
	)
	if errs.Errored() {
		return nil, errs.Err
	}

	processor, chainRegistry, err := chain.NewProcessor(vm.log, vm.tracer, vm.genesis.Rules, vm.registry, db)
	if err != nil {
		return nil, err
	}
	if err := vm.gatherer.Register("chain", chainRegistry); err != nil {
		return nil, err
	}
	vm.processor = processor

	vm.log.Info("initialized vm",
		zap.Stringer("version", version.Version),
		zap.Stringer("programID", cfg.ProgramID),
		zap.Int64("validityWindow", vm.genesis.Rules.GetValidityWindow()),
	)
	return vm, nil
}

// RegisterGatherer exposes the metrics of a dependency (such as the
// database) under [name].
func (vm *VM) RegisterGatherer(name string, gatherer prometheus.Gatherer) error {
	return vm.gatherer.Register(name, gatherer)
}

// CreateHandlers returns the HTTP handlers the VM serves, keyed by endpoint.
func (vm *VM) CreateHandlers() (Handlers, error) {
	jsonRPCHandler, err := rpc.NewJSONRPCHandler(rpc.Name, rpc.NewJSONRPCServer(vm))
	if err != nil {
		return nil, err
	}
	handlers := Handlers{
		rpc.JSONRPCEndpoint: jsonRPCHandler,
	}
	if vm.config.MetricsEnabled {
		handlers[MetricsEndpoint] = promhttp.HandlerFor(vm.gatherer, promhttp.HandlerOpts{})
	}
	return handlers, nil
}

func (vm *VM) Logger() logging.Logger {
	return vm.log
}

func (vm *VM) Tracer() trace.Tracer {
	return vm.tracer
}

func (vm *VM) Rules() chain.Rules {
	return vm.genesis.Rules
}

func (vm *VM) Parser() chain.Parser {
	return vm.registry
}

func (vm *VM) Gatherer() prometheus.Gatherer {
	return vm.gatherer
}

// ReadState returns the committed values of [keys]. Missing keys yield
// [database.ErrNotFound].
func (vm *VM) ReadState(ctx context.Context, keys [][]byte) ([][]byte, []error) {
	_, span := vm.tracer.Start(ctx, "VM.ReadState")
	defer span.End()

	vm.metrics.stateReads.Add(float64(len(keys)))
	values := make([][]byte, len(keys))
	errs := make([]error, len(keys))
	for i, k := range keys {
		values[i], errs[i] = vm.db.Get(k)
	}
	return values, errs
}

// Submit executes [txs] as one batch.
func (vm *VM) Submit(ctx context.Context, txs []*chain.Transaction) ([]*chain.Result, error) {
	ctx, span := vm.tracer.Start(ctx, "VM.Submit")
	defer span.End()

	select {
	case <-vm.stop:
		return nil, ErrShutdown
	default:
	}

	start := time.Now()
	vm.metrics.txsSubmitted.Add(float64(len(txs)))
	results, err := vm.processor.Execute(ctx, txs)
	if err != nil {
		vm.log.Error("unable to execute txs",
			zap.Int("txs", len(txs)),
			zap.Error(err),
		)
		return nil, err
	}
	vm.metrics.submit.Observe(float64(time.Since(start)))
	for _, r := range results {
		if !r.Executed {
			vm.metrics.txsRejected.Inc()
		}
	}
	return results, nil
}

func (vm *VM) GetTransaction(ctx context.Context, txID ids.ID) (bool, *storage.TxResult, error) {
	return storage.GetTransaction(ctx, vm.db, txID)
}

// Shutdown stops accepting transactions and releases every resource the VM
// holds, including [db].
func (vm *VM) Shutdown(context.Context) error {
	errs := wrappers.Errs{}
	vm.shutdownOnce.Do(func() {
		close(vm.stop)
		for i := len(vm.closers) - 1; i >= 0; i-- {
			errs.Add(vm.closers[i]())
		}
		if err := vm.db.Close(); err != nil && !errors.Is(err, database.ErrClosed) {
			errs.Add(err)
		}
		vm.log.Info("vm shut down")
	})
	return errs.Err
}
