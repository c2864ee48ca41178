// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package derive computes program derived addresses: deterministic account
// addresses that fall off the ed25519 curve, so no private key can sign for
// them and only the deriving program may move their funds.
package derive

import (
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/utils/hashing"

	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/consts"
)

const (
	MaxSeeds   = 16
	MaxSeedLen = 32
)

// marker separates program derived preimages from every other use of the
// hash function.
var marker = []byte("ProgramDerivedAddress")

// CreateAddress hashes [seeds] with [programID] and returns the result if it
// is off the curve. The last seed is usually a bump.
func CreateAddress(seeds [][]byte, programID codec.Address) (codec.Address, error) {
	if len(seeds) > MaxSeeds {
		return codec.EmptyAddress, fmt.Errorf("%w: %d seeds", ErrMaxSeedLengthExceeded, len(seeds))
	}
	size := codec.AddressLen + len(marker)
	for _, seed := range seeds {
		if len(seed) > MaxSeedLen {
			return codec.EmptyAddress, fmt.Errorf("%w: seed of %d bytes", ErrMaxSeedLengthExceeded, len(seed))
		}
		size += len(seed)
	}

	preimage := make([]byte, 0, size)
	for _, seed := range seeds {
		preimage = append(preimage, seed...)
	}
	preimage = append(preimage, programID[:]...)
	preimage = append(preimage, marker...)

	addr := codec.Address(hashing.ComputeHash256Array(preimage))
	if addr.IsOnCurve() {
		return codec.EmptyAddress, ErrOnCurve
	}
	return addr, nil
}

// FindAddress searches bumps from 255 down to 0 and returns the first off
// curve address for [seeds] together with the bump that produced it.
func FindAddress(seeds [][]byte, programID codec.Address) (codec.Address, uint8, error) {
	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)
	for i := int(consts.MaxUint8); i >= 0; i-- {
		bump := uint8(i)
		withBump[len(seeds)] = []byte{bump}
		addr, err := CreateAddress(withBump, programID)
		if errors.Is(err, ErrOnCurve) {
			continue
		}
		if err != nil {
			return codec.EmptyAddress, 0, err
		}
		return addr, bump, nil
	}
	return codec.EmptyAddress, 0, ErrDerivationExhausted
}

// Verify reports whether [addr] is the canonical address for [seeds].
func Verify(addr codec.Address, seeds [][]byte, programID codec.Address) (uint8, error) {
	expected, bump, err := FindAddress(seeds, programID)
	if err != nil {
		return 0, err
	}
	if expected != addr {
		return 0, fmt.Errorf("%w: expected %s, got %s", ErrSeedsMismatch, expected, addr)
	}
	return bump, nil
}
