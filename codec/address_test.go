// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"encoding/hex"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/vaultvm/crypto/ed25519"
)

func TestAddressString(t *testing.T) {
	require := require.New(t)
	priv, err := ed25519.GeneratePrivateKey()
	require.NoError(err)
	addr := FromPublicKey(priv.PublicKey())

	parsed, err := StringToAddress(addr.String())
	require.NoError(err)
	require.Equal(addr, parsed)
	require.True(addr.IsOnCurve())
}

func TestAddressJSON(t *testing.T) {
	require := require.New(t)
	priv, err := ed25519.GeneratePrivateKey()
	require.NoError(err)
	addr := FromPublicKey(priv.PublicKey())

	b, err := json.Marshal(addr)
	require.NoError(err)
	require.Equal(`"`+addr.String()+`"`, string(b))

	var parsed Address
	require.NoError(json.Unmarshal(b, &parsed))
	require.Equal(addr, parsed)
}

func TestStringToAddressInvalid(t *testing.T) {
	require := require.New(t)

	_, err := StringToAddress("0OIl")
	require.Error(err)

	// Valid base58, wrong length.
	_, err = StringToAddress("3yZe7d")
	require.ErrorIs(err, ErrInvalidSize)
}

func TestSystemAddressString(t *testing.T) {
	require := require.New(t)
	require.Equal("11111111111111111111111111111111", EmptyAddress.String())
}

func TestDiscriminators(t *testing.T) {
	require := require.New(t)

	// Anchor computes account tags as sha256("account:<Name>")[:8].
	expected, err := hex.DecodeString("e4c452a562d2eb98")
	require.NoError(err)
	d := AccountDiscriminator("VaultState")
	require.Equal(expected, d[:])
	require.NotEqual(d, InstructionDiscriminator("VaultState"))
	require.Equal(InstructionDiscriminator("deposit"), InstructionDiscriminator("deposit"))
}
