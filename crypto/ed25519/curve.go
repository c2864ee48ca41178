// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ed25519

import "filippo.io/edwards25519"

// IsOnCurve reports whether b decodes to a point on the edwards25519 curve.
//
// Every ed25519 public key is on the curve, so a 32 byte value for which
// IsOnCurve is false can never verify a signature and has no private key.
func IsOnCurve(b []byte) bool {
	if len(b) != PublicKeyLen {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}
