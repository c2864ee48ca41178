// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package actions

import "github.com/ava-labs/vaultvm/codec"

// Instruction identifiers are the first 8 bytes of sha256("global:<name>").
var (
	InitializeID = codec.InstructionDiscriminator("initialize")
	DepositID    = codec.InstructionDiscriminator("deposit")
	WithdrawID   = codec.InstructionDiscriminator("withdraw")
)
