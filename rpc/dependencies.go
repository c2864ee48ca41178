// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"context"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"

	"github.com/ava-labs/vaultvm/chain"
	"github.com/ava-labs/vaultvm/storage"
)

type VM interface {
	Logger() logging.Logger
	Tracer() trace.Tracer
	Rules() chain.Rules
	Parser() chain.Parser
	ReadState(ctx context.Context, keys [][]byte) ([][]byte, []error)
	Submit(ctx context.Context, txs []*chain.Transaction) ([]*chain.Result, error)
	GetTransaction(ctx context.Context, txID ids.ID) (bool, *storage.TxResult, error)
}
