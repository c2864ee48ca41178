// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cli

import (
	"bytes"
	"context"

	"github.com/ava-labs/vaultvm/auth"
	"github.com/ava-labs/vaultvm/cli/prompt"
	"github.com/ava-labs/vaultvm/crypto/ed25519"
	"github.com/ava-labs/vaultvm/utils"
)

// GenerateKey creates, stores and selects a new key.
func (h *Handler) GenerateKey() error {
	pk, err := auth.GeneratePrivateKey()
	if err != nil {
		return err
	}
	if err := h.StoreKey(pk); err != nil {
		return err
	}
	if err := h.StoreDefaultKey(pk.Address); err != nil {
		return err
	}
	utils.Outf("{{green}}created address:{{/}} %s\n", pk.Address)
	return nil
}

// ImportKey reads a raw or hex encoded private key from [path] and selects
// it.
func (h *Handler) ImportKey(path string) error {
	b, err := utils.LoadBytes(path, -1)
	if err != nil {
		return err
	}
	if len(b) != ed25519.PrivateKeyLen {
		priv, err := ed25519.HexToKey(string(bytes.TrimSpace(b)))
		if err != nil {
			return err
		}
		b = priv[:]
	}
	pk, err := auth.LoadPrivateKey(b)
	if err != nil {
		return err
	}
	if err := h.StoreKey(pk); err != nil {
		return err
	}
	if err := h.StoreDefaultKey(pk.Address); err != nil {
		return err
	}
	utils.Outf("{{green}}imported address:{{/}} %s\n", pk.Address)
	return nil
}

// ExportKey writes the hex encoding of the default key to [path].
func (h *Handler) ExportKey(path string) error {
	pk, err := h.GetDefaultKey(true)
	if err != nil {
		return err
	}
	if err := utils.SaveBytes(path, []byte(ed25519.PrivateKey(pk.Bytes).ToHex())); err != nil {
		return err
	}
	utils.Outf("{{green}}exported key to:{{/}} %s\n", path)
	return nil
}

// SetKey lists the stored keys with their balances and selects one.
func (h *Handler) SetKey(ctx context.Context) error {
	keys, err := h.GetKeys()
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		utils.Outf("{{red}}no stored keys{{/}}\n")
		return nil
	}
	cli, err := h.Client()
	if err != nil {
		return err
	}
	utils.Outf("{{cyan}}stored keys:{{/}} %d\n", len(keys))
	for i := 0; i < len(keys); i++ {
		balance, err := cli.Balance(ctx, keys[i].Address)
		if err != nil {
			return err
		}
		utils.Outf(
			"%d) {{cyan}}address:{{/}} %s {{cyan}}balance:{{/}} %s\n",
			i,
			keys[i].Address,
			utils.FormatBalance(balance),
		)
	}

	// Select key
	keyIndex, err := prompt.Choice("set default key", len(keys))
	if err != nil {
		return err
	}
	return h.StoreDefaultKey(keys[keyIndex].Address)
}

func (h *Handler) Balance(ctx context.Context) error {
	pk, err := h.GetDefaultKey(true)
	if err != nil {
		return err
	}
	cli, err := h.Client()
	if err != nil {
		return err
	}
	balance, err := cli.Balance(ctx, pk.Address)
	if err != nil {
		return err
	}
	utils.Outf(
		"{{cyan}}address:{{/}} %s {{cyan}}balance:{{/}} %s\n",
		pk.Address,
		utils.FormatBalance(balance),
	)
	return nil
}
