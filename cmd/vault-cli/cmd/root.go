// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ava-labs/vaultvm/cli"
	"github.com/ava-labs/vaultvm/utils"
)

const (
	defaultDatabase = ".vault-cli"
	defaultEndpoint = "http://127.0.0.1:9650/ext"
)

var (
	handler *cli.Handler

	dbPath   string
	endpoint string
	owner    string
	amount   string

	rootCmd = &cobra.Command{
		Use:        "vault-cli",
		Short:      "Vault program CLI",
		SuggestFor: []string{"vault-cli", "vaultcli"},
	}
)

func init() {
	cobra.EnablePrefixMatching = true
	rootCmd.AddCommand(
		keyCmd,
		endpointCmd,
		vaultCmd,
	)
	rootCmd.PersistentFlags().StringVar(
		&dbPath,
		"database",
		defaultDatabase,
		"path to database (will create it missing)",
	)
	rootCmd.PersistentFlags().StringVar(
		&endpoint,
		"endpoint",
		defaultEndpoint,
		"endpoint used until one is stored",
	)
	rootCmd.PersistentPreRunE = func(*cobra.Command, []string) error {
		utils.Outf("{{yellow}}database:{{/}} %s\n", dbPath)
		h, err := cli.New(NewController(dbPath, endpoint))
		if err != nil {
			return err
		}
		handler = h
		return nil
	}
	rootCmd.PersistentPostRunE = func(*cobra.Command, []string) error {
		return handler.CloseDatabase()
	}
	rootCmd.SilenceErrors = true

	// key
	keyCmd.AddCommand(
		genKeyCmd,
		importKeyCmd,
		exportKeyCmd,
		setKeyCmd,
		balanceKeyCmd,
	)

	// endpoint
	endpointCmd.AddCommand(
		setEndpointCmd,
		showEndpointCmd,
	)

	// vault
	for _, c := range []*cobra.Command{addressesCmd, infoCmd, depositCmd} {
		c.PersistentFlags().StringVar(
			&owner,
			"owner",
			"",
			"vault owner (defaults to the stored key)",
		)
	}
	for _, c := range []*cobra.Command{depositCmd, withdrawCmd} {
		c.PersistentFlags().StringVar(
			&amount,
			"amount",
			"",
			"amount to move (prompted for when empty)",
		)
	}
	vaultCmd.AddCommand(
		addressesCmd,
		infoCmd,
		initializeCmd,
		depositCmd,
		withdrawCmd,
	)
}

func Execute() error {
	return rootCmd.Execute()
}
