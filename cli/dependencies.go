// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cli

type Controller interface {
	// DatabasePath is where keys and defaults are stored.
	DatabasePath() string

	// DefaultEndpoint is used until an endpoint is stored.
	DefaultEndpoint() string
}
