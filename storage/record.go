// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"github.com/near/borsh-go"

	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/consts"
	"github.com/ava-labs/vaultvm/state"
)

// VaultRecordLen is the encoded size of a [VaultRecord]: an 8 byte type tag
// followed by the 32 byte owner key.
const VaultRecordLen = consts.DiscriminatorLen + codec.AddressLen

var VaultStateDiscriminator = codec.AccountDiscriminator("VaultState")

// VaultRecord is the registry entry of a vault. It is created once and
// never modified.
type VaultRecord struct {
	Discriminator codec.Discriminator `json:"-"`
	Owner         codec.Address       `json:"owner"`
}

func NewVaultRecord(owner codec.Address) *VaultRecord {
	return &VaultRecord{
		Discriminator: VaultStateDiscriminator,
		Owner:         owner,
	}
}

func (r *VaultRecord) Bytes() ([]byte, error) {
	return borsh.Serialize(*r)
}

func UnmarshalVaultRecord(b []byte) (*VaultRecord, error) {
	if len(b) != VaultRecordLen {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidRecord, VaultRecordLen, len(b))
	}
	var r VaultRecord
	if err := borsh.Deserialize(&r, b); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	if r.Discriminator != VaultStateDiscriminator {
		return nil, fmt.Errorf("%w: unexpected discriminator %x", ErrInvalidRecord, r.Discriminator[:])
	}
	return &r, nil
}

// [recordPrefix] + [address]
func RecordKey(addr codec.Address) []byte {
	k := make([]byte, consts.ByteLen+codec.AddressLen)
	k[0] = recordPrefix
	copy(k[1:], addr[:])
	return k
}

// GetVaultRecord returns the record stored at [addr], or [ErrRecordNotFound].
func GetVaultRecord(
	ctx context.Context,
	im state.Immutable,
	addr codec.Address,
) (*VaultRecord, error) {
	return innerGetVaultRecord(im.GetValue(ctx, RecordKey(addr)))
}

// Used to serve RPC queries
func GetVaultRecordFromState(
	ctx context.Context,
	f ReadState,
	addr codec.Address,
) (*VaultRecord, error) {
	values, errs := f(ctx, [][]byte{RecordKey(addr)})
	return innerGetVaultRecord(values[0], errs[0])
}

func innerGetVaultRecord(v []byte, err error) (*VaultRecord, error) {
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return UnmarshalVaultRecord(v)
}

// CreateVaultRecord stores a new record for [owner] at [addr]. It fails with
// [ErrRecordExists] if anything already occupies [addr].
func CreateVaultRecord(
	ctx context.Context,
	mu state.Mutable,
	addr codec.Address,
	owner codec.Address,
) (*VaultRecord, error) {
	k := RecordKey(addr)
	_, err := mu.GetValue(ctx, k)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%w: %s", ErrRecordExists, addr)
	case !errors.Is(err, database.ErrNotFound):
		return nil, err
	}
	r := NewVaultRecord(owner)
	b, err := r.Bytes()
	if err != nil {
		return nil, err
	}
	return r, mu.Insert(ctx, k, b)
}
