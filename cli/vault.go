// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/ava-labs/vaultvm/actions"
	"github.com/ava-labs/vaultvm/auth"
	"github.com/ava-labs/vaultvm/chain"
	"github.com/ava-labs/vaultvm/cli/prompt"
	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/derive"
	"github.com/ava-labs/vaultvm/rpc"
	"github.com/ava-labs/vaultvm/utils"
)

// Addresses prints the vault addresses of [owner] as derived under the
// program served by the endpoint. An empty owner selects the default key.
func (h *Handler) Addresses(ctx context.Context, owner codec.Address) error {
	owner, err := h.ownerOrDefault(owner)
	if err != nil {
		return err
	}
	cli, err := h.Client()
	if err != nil {
		return err
	}
	programID, _, err := cli.Program(ctx)
	if err != nil {
		return err
	}
	v, err := derive.VaultAddresses(owner, programID)
	if err != nil {
		return err
	}
	printVault(owner, v)
	return nil
}

// Vault prints the addresses, owner and custody balance of [owner]'s vault.
func (h *Handler) Vault(ctx context.Context, owner codec.Address) error {
	owner, err := h.ownerOrDefault(owner)
	if err != nil {
		return err
	}
	cli, err := h.Client()
	if err != nil {
		return err
	}
	reply, err := cli.Vault(ctx, owner)
	if err != nil {
		return err
	}
	printVault(owner, reply.Vault)
	if !reply.Initialized {
		utils.Outf("{{red}}vault is not initialized{{/}}\n")
		return nil
	}
	utils.Outf(
		"{{cyan}}balance:{{/}} %s\n",
		utils.FormatBalance(reply.Balance),
	)
	return nil
}

// Initialize creates the vault of the default key. A vault that already
// exists is reported as success.
func (h *Handler) Initialize(ctx context.Context) error {
	pk, cli, err := h.signer()
	if err != nil {
		return err
	}
	v, err := cli.Addresses(ctx, pk.Address)
	if err != nil {
		return err
	}
	result, err := h.send(ctx, cli, pk, &actions.Initialize{
		VaultAccounts: accounts(v),
	})
	if err != nil && strings.Contains(err.Error(), actions.ErrAlreadyInitialized.Error()) {
		utils.Outf("{{yellow}}vault already initialized{{/}}\n")
		printVault(pk.Address, v)
		return nil
	}
	if err != nil {
		return err
	}
	utils.Outf("{{green}}initialized vault:{{/}} %s\n", result.TxID)
	printVault(pk.Address, v)
	return nil
}

// Deposit moves [amount] from the default key into [owner]'s vault. Zero
// values are prompted for.
func (h *Handler) Deposit(ctx context.Context, owner codec.Address, amount uint64) error {
	pk, cli, err := h.signer()
	if err != nil {
		return err
	}
	if owner == codec.EmptyAddress {
		owner = pk.Address
	}
	if amount == 0 {
		balance, err := cli.Balance(ctx, pk.Address)
		if err != nil {
			return err
		}
		utils.Outf("{{yellow}}balance:{{/}} %s\n", utils.FormatBalance(balance))
		amount, err = prompt.Amount("amount", balance)
		if err != nil {
			return err
		}
	}
	v, err := cli.Addresses(ctx, owner)
	if err != nil {
		return err
	}
	result, err := h.send(ctx, cli, pk, &actions.Deposit{
		VaultAccounts: accounts(v),
		Amount:        amount,
	})
	if err != nil {
		return err
	}
	utils.Outf(
		"{{green}}deposited:{{/}} %s {{green}}into:{{/}} %s {{green}}txID:{{/}} %s\n",
		utils.FormatBalance(amount),
		v.Auth,
		result.TxID,
	)
	return nil
}

// Withdraw moves [amount] out of the default key's vault back to it. Zero
// values are prompted for.
func (h *Handler) Withdraw(ctx context.Context, amount uint64) error {
	pk, cli, err := h.signer()
	if err != nil {
		return err
	}
	reply, err := cli.Vault(ctx, pk.Address)
	if err != nil {
		return err
	}
	if !reply.Initialized {
		return fmt.Errorf("%w: %s", actions.ErrVaultNotFound, reply.Vault.State)
	}
	if amount == 0 {
		utils.Outf("{{yellow}}vault balance:{{/}} %s\n", utils.FormatBalance(reply.Balance))
		amount, err = prompt.Amount("amount", reply.Balance)
		if err != nil {
			return err
		}
	}
	result, err := h.send(ctx, cli, pk, &actions.Withdraw{
		VaultAccounts: accounts(reply.Vault),
		Amount:        amount,
	})
	if err != nil {
		return err
	}
	utils.Outf(
		"{{green}}withdrew:{{/}} %s {{green}}txID:{{/}} %s\n",
		utils.FormatBalance(amount),
		result.TxID,
	)
	return nil
}

func (h *Handler) ownerOrDefault(owner codec.Address) (codec.Address, error) {
	if owner != codec.EmptyAddress {
		return owner, nil
	}
	pk, err := h.GetDefaultKey(false)
	if err != nil {
		return codec.EmptyAddress, err
	}
	return pk.Address, nil
}

func (h *Handler) signer() (*auth.PrivateKey, *rpc.JSONRPCClient, error) {
	pk, err := h.GetDefaultKey(true)
	if err != nil {
		return nil, nil, err
	}
	cli, err := h.Client()
	if err != nil {
		return nil, nil, err
	}
	return pk, cli, nil
}

// send signs and submits [action]. A transaction that executed but failed
// is returned as an error.
func (*Handler) send(
	ctx context.Context,
	cli *rpc.JSONRPCClient,
	pk *auth.PrivateKey,
	action chain.Action,
) (*rpc.SubmitTxReply, error) {
	factory, err := auth.GetFactory(pk)
	if err != nil {
		return nil, err
	}
	submit, _, err := cli.GenerateTransaction(action, factory)
	if err != nil {
		return nil, err
	}
	result, err := submit(ctx)
	if err != nil {
		return nil, err
	}
	if !result.Success {
		return result, fmt.Errorf("%w: %s", ErrTxFailed, result.Error)
	}
	return result, nil
}

func accounts(v *derive.Vault) actions.VaultAccounts {
	return actions.VaultAccounts{
		VaultState: v.State,
		VaultAuth:  v.Auth,
	}
}

func printVault(owner codec.Address, v *derive.Vault) {
	utils.Outf("{{cyan}}owner:{{/}} %s\n", owner)
	utils.Outf("{{cyan}}vault state:{{/}} %s {{cyan}}bump:{{/}} %d\n", v.State, v.StateBump)
	utils.Outf("{{cyan}}vault auth:{{/}} %s {{cyan}}bump:{{/}} %d\n", v.Auth, v.AuthBump)
}
