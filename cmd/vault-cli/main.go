// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// "vault-cli" manages keys and vaults against a vaultd endpoint.
package main

import (
	"os"

	"github.com/ava-labs/vaultvm/cmd/vault-cli/cmd"
	"github.com/ava-labs/vaultvm/utils"
)

func main() {
	if err := cmd.Execute(); err != nil {
		utils.Outf("{{red}}vault-cli exited with error:{{/}} %+v\n", err)
		os.Exit(1)
	}
	os.Exit(0)
}
