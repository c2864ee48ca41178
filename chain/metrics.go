// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"github.com/ava-labs/avalanchego/utils/metric"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"
)

type chainMetrics struct {
	txsRejected  prometheus.Counter
	txsSucceeded prometheus.Counter
	txsFailed    prometheus.Counter

	stateChanges    prometheus.Counter
	stateOperations prometheus.Counter

	waitSignatures metric.Averager
	execute        metric.Averager
}

func newMetrics() (*prometheus.Registry, *chainMetrics, error) {
	r := prometheus.NewRegistry()

	waitSignatures, err := metric.NewAverager(
		"chain_wait_signatures",
		"time spent waiting for signature verification",
		r,
	)
	if err != nil {
		return nil, nil, err
	}
	execute, err := metric.NewAverager(
		"chain_execute",
		"time spent executing a batch of transactions",
		r,
	)
	if err != nil {
		return nil, nil, err
	}

	m := &chainMetrics{
		txsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chain",
			Name:      "txs_rejected",
			Help:      "number of txs rejected before execution",
		}),
		txsSucceeded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chain",
			Name:      "txs_succeeded",
			Help:      "number of txs executed successfully",
		}),
		txsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chain",
			Name:      "txs_failed",
			Help:      "number of txs that failed during execution",
		}),
		stateChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chain",
			Name:      "state_changes",
			Help:      "number of state changes",
		}),
		stateOperations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chain",
			Name:      "state_operations",
			Help:      "number of state operations",
		}),
		waitSignatures: waitSignatures,
		execute:        execute,
	}

	errs := wrappers.Errs{}
	errs.Add(
		r.Register(m.txsRejected),
		r.Register(m.txsSucceeded),
		r.Register(m.txsFailed),
		r.Register(m.stateChanges),
		r.Register(m.stateOperations),
	)
	return r, m, errs.Err
}
