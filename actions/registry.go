// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import (
	"github.com/ava-labs/avalanchego/utils/wrappers"

	"github.com/ava-labs/vaultvm/chain"
)

// Register adds every vault instruction to [r].
func Register(r *chain.Registry) error {
	errs := wrappers.Errs{}
	errs.Add(
		r.RegisterAction(&Initialize{}, UnmarshalInitialize),
		r.RegisterAction(&Deposit{}, UnmarshalDeposit),
		r.RegisterAction(&Withdraw{}, UnmarshalWithdraw),
	)
	return errs.Err
}
