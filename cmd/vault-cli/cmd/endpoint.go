// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ava-labs/vaultvm/utils"
)

var endpointCmd = &cobra.Command{
	Use: "endpoint",
	RunE: func(*cobra.Command, []string) error {
		return ErrMissingSubcommand
	},
}

var setEndpointCmd = &cobra.Command{
	Use: "set [uri]",
	PreRunE: func(_ *cobra.Command, args []string) error {
		if len(args) != 1 {
			return ErrInvalidArgs
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := handler.StoreEndpoint(args[0]); err != nil {
			return err
		}
		cli, err := handler.Client()
		if err != nil {
			return err
		}
		if _, err := cli.Ping(cmd.Context()); err != nil {
			utils.Outf("{{yellow}}endpoint stored but unreachable:{{/}} %v\n", err)
			return nil
		}
		utils.Outf("{{green}}stored endpoint:{{/}} %s\n", args[0])
		return nil
	},
}

var showEndpointCmd = &cobra.Command{
	Use: "show",
	RunE: func(cmd *cobra.Command, _ []string) error {
		uri, err := handler.GetEndpoint()
		if err != nil {
			return err
		}
		utils.Outf("{{cyan}}endpoint:{{/}} %s\n", uri)
		cli, err := handler.Client()
		if err != nil {
			return err
		}
		programID, window, err := cli.Program(cmd.Context())
		if err != nil {
			return err
		}
		utils.Outf(
			"{{cyan}}programID:{{/}} %s {{cyan}}validity window:{{/}} %dms\n",
			programID,
			window,
		)
		return nil
	},
}
