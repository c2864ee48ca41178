// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/vaultvm/chain"
	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/crypto"
	"github.com/ava-labs/vaultvm/crypto/ed25519"
)

func TestED25519SignVerify(t *testing.T) {
	require := require.New(t)
	ctx := context.TODO()

	priv, err := ed25519.GeneratePrivateKey()
	require.NoError(err)
	factory := NewED25519Factory(priv)
	require.Equal(codec.FromPublicKey(priv.PublicKey()), factory.Address())

	msg := []byte("msg")
	auth, err := factory.Sign(msg)
	require.NoError(err)
	require.Equal(factory.Address(), auth.Actor())
	require.NoError(auth.Verify(ctx, msg))
	require.ErrorIs(auth.Verify(ctx, []byte("other")), crypto.ErrInvalidSignature)
}

func TestED25519Bytes(t *testing.T) {
	require := require.New(t)

	priv, err := ed25519.GeneratePrivateKey()
	require.NoError(err)
	auth, err := NewED25519Factory(priv).Sign([]byte("msg"))
	require.NoError(err)

	b := auth.Bytes()
	require.Len(b, ED25519Size)
	parsed, err := UnmarshalED25519(b)
	require.NoError(err)
	require.Equal(auth, parsed)

	_, err = UnmarshalED25519(b[1:])
	require.Error(err)

	b[0] = ED25519ID + 1
	_, err = UnmarshalED25519(b)
	require.Error(err)
}

func TestED25519Batch(t *testing.T) {
	require := require.New(t)
	const size = 8

	bv := NewED25519Batch(size)
	for i := 0; i < size; i++ {
		priv, err := ed25519.GeneratePrivateKey()
		require.NoError(err)
		msg := []byte{byte(i)}
		auth, err := NewED25519Factory(priv).Sign(msg)
		require.NoError(err)
		require.NoError(bv.Add(msg, auth))
	}
	require.True(bv.Verify())
}

type otherAuth struct{ chain.Auth }

func TestED25519BatchRejectsOtherAuth(t *testing.T) {
	require := require.New(t)
	bv := NewED25519Batch(1)
	require.ErrorIs(bv.Add(nil, otherAuth{}), ErrInvalidKeyType)
}

func TestPrivateKeys(t *testing.T) {
	require := require.New(t)

	pk, err := GeneratePrivateKey()
	require.NoError(err)
	loaded, err := LoadPrivateKey(pk.Bytes)
	require.NoError(err)
	require.Equal(pk.Address, loaded.Address)

	factory, err := GetFactory(loaded)
	require.NoError(err)
	require.Equal(pk.Address, factory.Address())

	_, err = LoadPrivateKey(pk.Bytes[1:])
	require.ErrorIs(err, ErrInvalidPrivateKeySize)
}

func TestRegister(t *testing.T) {
	require := require.New(t)
	r := chain.NewRegistry()
	require.NoError(Register(r))
	require.ErrorIs(Register(r), chain.ErrDuplicateRegistration)

	bv, ok := r.NewBatchVerifier(ED25519ID, 4)
	require.True(ok)
	require.NotNil(bv)
}
