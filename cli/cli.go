// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cli

import (
	"io"

	"github.com/ava-labs/avalanchego/database"

	"github.com/ava-labs/vaultvm/pebble"
	"github.com/ava-labs/vaultvm/rpc"
)

// Database is the local store of the command line.
type Database interface {
	database.KeyValueReaderWriterDeleter
	NewIteratorWithPrefix(prefix []byte) database.Iterator
	io.Closer
}

// Handler implements the vault command line. Keys and defaults are kept in
// a local database.
type Handler struct {
	c Controller

	db Database
}

func New(c Controller) (*Handler, error) {
	db, _, err := pebble.New(c.DatabasePath(), pebble.NewDefaultConfig())
	if err != nil {
		return nil, err
	}
	return NewWithDatabase(c, db), nil
}

func NewWithDatabase(c Controller, db Database) *Handler {
	return &Handler{c, db}
}

// Client returns a client for the stored endpoint.
func (h *Handler) Client() (*rpc.JSONRPCClient, error) {
	uri, err := h.GetEndpoint()
	if err != nil {
		return nil, err
	}
	return rpc.NewJSONRPCClient(uri), nil
}
