// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// minBatchSize is the smallest group of same-typed signatures worth batch
// verifying.
const minBatchSize = 4

// verifySignatures returns one error slot per transaction. A batch is
// verified at once when the auth type supports it; a failed batch falls back
// to checking each member so only the bad signatures are reported.
func verifySignatures(ctx context.Context, p Parser, txs []*Transaction) ([]error, error) {
	errs := make([]error, len(txs))
	digests := make([][]byte, len(txs))
	byType := make(map[uint8][]int)
	for i, tx := range txs {
		digest, err := tx.Digest()
		if err != nil {
			errs[i] = err
			continue
		}
		digests[i] = digest
		typeID := tx.Auth.GetTypeID()
		byType[typeID] = append(byType[typeID], i)
	}

	var single []int
	for typeID, idxs := range byType {
		if len(idxs) < minBatchSize {
			single = append(single, idxs...)
			continue
		}
		bv, ok := p.NewBatchVerifier(typeID, len(idxs))
		if !ok {
			single = append(single, idxs...)
			continue
		}
		added := true
		for _, i := range idxs {
			if err := bv.Add(digests[i], txs[i].Auth); err != nil {
				added = false
				break
			}
		}
		if added && bv.Verify() {
			continue
		}
		single = append(single, idxs...)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for _, i := range single {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			errs[i] = txs[i].Verify(gctx)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return errs, nil
}
