// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import "github.com/ava-labs/vaultvm/cli"

var _ cli.Controller = (*Controller)(nil)

type Controller struct {
	databasePath string
	endpoint     string
}

func NewController(databasePath string, endpoint string) *Controller {
	return &Controller{databasePath, endpoint}
}

func (c *Controller) DatabasePath() string {
	return c.databasePath
}

func (c *Controller) DefaultEndpoint() string {
	return c.endpoint
}
