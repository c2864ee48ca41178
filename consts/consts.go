// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package consts

const (
	Name = "vaultvm"

	ByteLen        = 1
	IDLen          = 32
	MaxUint8       = ^uint8(0)
	MaxUint8Offset = 7
	Uint16Len      = 2
	Uint64Len      = 8
	MaxUint64      = ^uint64(0)

	// DiscriminatorLen is the size of the type tag that prefixes every
	// persisted program record and every instruction payload.
	DiscriminatorLen = 8

	NetworkSizeLimit = 2_044_723 // 1.95 MiB

	MillisecondsPerSecond = 1_000
)
