// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package derive

import "github.com/ava-labs/vaultvm/codec"

var (
	StateSeed = []byte("state")
	AuthSeed  = []byte("auth")
)

// Vault holds the two addresses that make up an owner's vault.
//
// Auth is derived from State rather than from the owner so that the custody
// address is bound to the registry record itself.
type Vault struct {
	State     codec.Address `json:"state"`
	StateBump uint8         `json:"stateBump"`
	Auth      codec.Address `json:"auth"`
	AuthBump  uint8         `json:"authBump"`
}

func StateSeeds(owner codec.Address) [][]byte {
	return [][]byte{StateSeed, owner[:]}
}

func AuthSeeds(state codec.Address) [][]byte {
	return [][]byte{AuthSeed, state[:]}
}

func VaultStateAddress(owner codec.Address, programID codec.Address) (codec.Address, uint8, error) {
	return FindAddress(StateSeeds(owner), programID)
}

func VaultAuthAddress(state codec.Address, programID codec.Address) (codec.Address, uint8, error) {
	return FindAddress(AuthSeeds(state), programID)
}

// VaultAddresses derives both vault addresses for [owner].
func VaultAddresses(owner codec.Address, programID codec.Address) (*Vault, error) {
	state, stateBump, err := VaultStateAddress(owner, programID)
	if err != nil {
		return nil, err
	}
	auth, authBump, err := VaultAuthAddress(state, programID)
	if err != nil {
		return nil, err
	}
	return &Vault{
		State:     state,
		StateBump: stateBump,
		Auth:      auth,
		AuthBump:  authBump,
	}, nil
}

// Check verifies that [state] and [auth] are the vault addresses of [owner].
func Check(owner, state, auth, programID codec.Address) error {
	if _, err := Verify(state, StateSeeds(owner), programID); err != nil {
		return err
	}
	_, err := Verify(auth, AuthSeeds(state), programID)
	return err
}
