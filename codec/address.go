// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"github.com/mr-tron/base58"

	"github.com/ava-labs/vaultvm/crypto/ed25519"
)

const AddressLen = 32

// Address is the 32 byte location of an account. It is either an ed25519
// public key (on the curve) or a program derived address (off the curve).
type Address [AddressLen]byte

var EmptyAddress = Address{}

// FromPublicKey returns the account address owned by pk.
func FromPublicKey(pk ed25519.PublicKey) Address {
	return Address(pk)
}

// StringToAddress decodes the base58 form of an address.
func StringToAddress(s string) (Address, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return EmptyAddress, err
	}
	if len(b) != AddressLen {
		return EmptyAddress, ErrInvalidSize
	}
	return Address(b), nil
}

// String implements fmt.Stringer.
func (a Address) String() string {
	return base58.Encode(a[:])
}

// IsOnCurve reports whether a could be an ed25519 public key.
func (a Address) IsOnCurve() bool {
	return ed25519.IsOnCurve(a[:])
}

// MarshalText returns the base58 representation of a.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText parses a base58-encoded address.
func (a *Address) UnmarshalText(input []byte) error {
	parsed, err := StringToAddress(string(input))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
