// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ava-labs/vaultvm/cli/prompt"
	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/utils"
)

var vaultCmd = &cobra.Command{
	Use: "vault",
	RunE: func(*cobra.Command, []string) error {
		return ErrMissingSubcommand
	},
}

var addressesCmd = &cobra.Command{
	Use: "addresses",
	RunE: func(cmd *cobra.Command, _ []string) error {
		addr, err := parseOwner()
		if err != nil {
			return err
		}
		return handler.Addresses(cmd.Context(), addr)
	},
}

var infoCmd = &cobra.Command{
	Use: "info",
	RunE: func(cmd *cobra.Command, _ []string) error {
		addr, err := parseOwner()
		if err != nil {
			return err
		}
		return handler.Vault(cmd.Context(), addr)
	},
}

var initializeCmd = &cobra.Command{
	Use: "initialize",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return handler.Initialize(cmd.Context())
	},
}

var depositCmd = &cobra.Command{
	Use: "deposit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		addr, err := parseOwner()
		if err != nil {
			return err
		}
		amt, err := parseAmount()
		if err != nil {
			return err
		}
		return handler.Deposit(cmd.Context(), addr, amt)
	},
}

var withdrawCmd = &cobra.Command{
	Use: "withdraw",
	RunE: func(cmd *cobra.Command, _ []string) error {
		amt, err := parseAmount()
		if err != nil {
			return err
		}
		return handler.Withdraw(cmd.Context(), amt)
	},
}

// parseOwner returns the empty address when no owner was given.
func parseOwner() (codec.Address, error) {
	if len(owner) == 0 {
		return codec.EmptyAddress, nil
	}
	return prompt.ParseAddress(owner)
}

// parseAmount returns zero when no amount was given so the handler prompts
// for one.
func parseAmount() (uint64, error) {
	if len(amount) == 0 {
		return 0, nil
	}
	amt, err := utils.ParseBalance(amount)
	if err != nil {
		return 0, err
	}
	if amt == 0 {
		return 0, prompt.ErrZeroAmount
	}
	return amt, nil
}
