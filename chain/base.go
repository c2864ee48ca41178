// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import "github.com/ava-labs/vaultvm/consts"

// Base is the metadata every transaction carries besides its action.
type Base struct {
	// Timestamp is the time (in ms) the transaction was created, rounded
	// down to a whole second.
	Timestamp int64 `json:"timestamp"`

	// Nonce lets an identity send the same action twice with distinct IDs.
	Nonce uint64 `json:"nonce"`
}

// Verify checks [b] against the local clock [now] (in ms).
func (b *Base) Verify(r Rules, now int64) error {
	if b.Timestamp%consts.MillisecondsPerSecond != 0 {
		return ErrMisalignedTime
	}
	window := r.GetValidityWindow()
	if window <= 0 {
		return nil
	}
	if b.Timestamp < now-window {
		return ErrTimestampTooLate
	}
	if b.Timestamp > now+window {
		return ErrTimestampTooEarly
	}
	return nil
}
