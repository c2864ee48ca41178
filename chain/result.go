// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import "github.com/ava-labs/avalanchego/ids"

type Result struct {
	TxID ids.ID `json:"txId"`

	// Executed is false when the transaction was rejected before it could
	// touch state (bad signature, stale timestamp, duplicate).
	Executed bool   `json:"executed"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
	Output   []byte `json:"output,omitempty"`
}

func (r *Result) fail(err error) {
	r.Success = false
	r.Error = err.Error()
}
