// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package genesis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ava-labs/avalanchego/trace"

	"github.com/ava-labs/vaultvm/chain"
	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/state"
	"github.com/ava-labs/vaultvm/storage"
	"github.com/ava-labs/vaultvm/tstate"

	safemath "github.com/ava-labs/avalanchego/utils/math"
)

type CustomAllocation struct {
	Address codec.Address `json:"address"`
	Balance uint64        `json:"balance"`
}

type Genesis struct {
	CustomAllocation []*CustomAllocation `json:"customAllocation"`
	Rules            *Rules              `json:"initialRules"`
}

func NewDefaultGenesis(customAllocations []*CustomAllocation) *Genesis {
	return &Genesis{
		CustomAllocation: customAllocations,
		Rules:            NewDefaultRules(),
	}
}

// Load parses [genesisBytes] and binds its rules to [programID]. Empty input
// yields the default genesis.
func Load(genesisBytes []byte, programID codec.Address) (*Genesis, error) {
	genesis := NewDefaultGenesis(nil)
	if len(genesisBytes) > 0 {
		if err := json.Unmarshal(genesisBytes, genesis); err != nil {
			return nil, err
		}
	}
	if genesis.Rules == nil {
		genesis.Rules = NewDefaultRules()
	}
	genesis.Rules.programID = programID
	return genesis, nil
}

func (g *Genesis) stateKeys() state.Keys {
	keys := make(state.Keys, len(g.CustomAllocation))
	for _, alloc := range g.CustomAllocation {
		keys.Add(string(storage.BalanceKey(alloc.Address)), state.All)
	}
	return keys
}

func (g *Genesis) InitializeState(ctx context.Context, tracer trace.Tracer, mu state.Mutable) error {
	ctx, span := tracer.Start(ctx, "Genesis.InitializeState")
	defer span.End()

	supply := uint64(0)
	for _, alloc := range g.CustomAllocation {
		var err error
		supply, err = safemath.Add(supply, alloc.Balance)
		if err != nil {
			return err
		}
		if _, err := storage.AddBalance(ctx, mu, alloc.Address, alloc.Balance); err != nil {
			return fmt.Errorf("%w: addr=%s, bal=%d", err, alloc.Address, alloc.Balance)
		}
	}
	return nil
}

// Apply writes the allocations to [db] once. Later calls are no-ops.
func (g *Genesis) Apply(ctx context.Context, tracer trace.Tracer, db chain.Database) (bool, error) {
	applied, err := storage.GenesisApplied(db)
	if err != nil || applied {
		return false, err
	}

	ts := tstate.New(len(g.CustomAllocation))
	tsv := ts.NewView(g.stateKeys(), map[string][]byte{})
	if err := g.InitializeState(ctx, tracer, tsv); err != nil {
		return false, err
	}
	tsv.Commit()

	batch := db.NewBatch()
	if err := ts.WriteChanges(batch); err != nil {
		return false, err
	}
	if err := storage.SetGenesisApplied(batch); err != nil {
		return false, err
	}
	return true, batch.Write()
}
