// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/vaultvm/chain"
	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/derive"
	"github.com/ava-labs/vaultvm/requester"
	"github.com/ava-labs/vaultvm/utils"
)

const waitSleep = 500 * time.Millisecond

type JSONRPCClient struct {
	requester *requester.EndpointRequester

	program *ProgramReply
}

func NewJSONRPCClient(uri string) *JSONRPCClient {
	uri = strings.TrimSuffix(uri, "/")
	uri += JSONRPCEndpoint
	req := requester.New(uri, Name)
	return &JSONRPCClient{requester: req}
}

func (cli *JSONRPCClient) Ping(ctx context.Context) (bool, error) {
	resp := new(PingReply)
	err := cli.requester.SendRequest(ctx,
		"ping",
		nil,
		resp,
	)
	return resp.Success, err
}

// Program returns the program identity and validity window of the server.
// The answer is cached after the first successful call.
func (cli *JSONRPCClient) Program(ctx context.Context) (codec.Address, int64, error) {
	if cli.program != nil {
		return cli.program.ProgramID, cli.program.ValidityWindow, nil
	}
	resp := new(ProgramReply)
	if err := cli.requester.SendRequest(ctx, "program", nil, resp); err != nil {
		return codec.EmptyAddress, 0, err
	}
	cli.program = resp
	return resp.ProgramID, resp.ValidityWindow, nil
}

func (cli *JSONRPCClient) Addresses(ctx context.Context, owner codec.Address) (*derive.Vault, error) {
	resp := new(AddressesReply)
	err := cli.requester.SendRequest(
		ctx,
		"addresses",
		&OwnerArgs{Owner: owner},
		resp,
	)
	return resp.Vault, err
}

func (cli *JSONRPCClient) Vault(ctx context.Context, owner codec.Address) (*VaultReply, error) {
	resp := new(VaultReply)
	err := cli.requester.SendRequest(
		ctx,
		"vault",
		&OwnerArgs{Owner: owner},
		resp,
	)
	return resp, err
}

func (cli *JSONRPCClient) Balance(ctx context.Context, addr codec.Address) (uint64, error) {
	resp := new(BalanceReply)
	err := cli.requester.SendRequest(
		ctx,
		"balance",
		&BalanceArgs{Address: addr},
		resp,
	)
	return resp.Amount, err
}

func (cli *JSONRPCClient) SubmitTx(ctx context.Context, d []byte) (*SubmitTxReply, error) {
	resp := new(SubmitTxReply)
	err := cli.requester.SendRequest(
		ctx,
		"submitTx",
		&SubmitTxArgs{Tx: d},
		resp,
	)
	return resp, err
}

func (cli *JSONRPCClient) Tx(ctx context.Context, txID ids.ID) (*TxReply, error) {
	resp := new(TxReply)
	err := cli.requester.SendRequest(
		ctx,
		"tx",
		&TxArgs{TxID: txID},
		resp,
	)
	return resp, err
}

type Modifier interface {
	Base(*chain.Base)
}

// GenerateTransaction signs [action] with [authFactory] using the current
// time and a random nonce. The returned function submits it.
func (cli *JSONRPCClient) GenerateTransaction(
	action chain.Action,
	authFactory chain.AuthFactory,
	modifiers ...Modifier,
) (func(context.Context) (*SubmitTxReply, error), *chain.Transaction, error) {
	// Not safe to call [rand] concurrently, so we create our own instance
	// for this transaction
	r := rand.New(rand.NewSource(time.Now().UnixMicro())) //nolint:gosec

	base := &chain.Base{
		Timestamp: utils.UnixRMilli(-1, 0),
		Nonce:     r.Uint64(),
	}
	for _, m := range modifiers {
		m.Base(base)
	}

	tx, err := chain.NewTx(base, action).Sign(authFactory)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to sign transaction", err)
	}
	return func(ictx context.Context) (*SubmitTxReply, error) {
		return cli.SubmitTx(ictx, tx.Bytes())
	}, tx, nil
}

// WaitForTransaction blocks until the outcome of [txID] is stored.
func (cli *JSONRPCClient) WaitForTransaction(ctx context.Context, txID ids.ID) (*TxReply, error) {
	var result *TxReply
	if err := Wait(ctx, func(ctx context.Context) (bool, error) {
		r, err := cli.Tx(ctx, txID)
		if IsTxNotFound(err) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		result = r
		return true, nil
	}); err != nil {
		return nil, err
	}
	if !result.Success {
		return result, fmt.Errorf("%w: %s", ErrTxFailed, result.Error)
	}
	return result, nil
}

func Wait(ctx context.Context, check func(ctx context.Context) (bool, error)) error {
	for ctx.Err() == nil {
		exit, err := check(ctx)
		if err != nil {
			return err
		}
		if exit {
			return nil
		}
		time.Sleep(waitSleep)
	}
	return ctx.Err()
}

// IsTxNotFound reports whether the server has no outcome for the requested
// transaction. Errors lose their identity over the wire.
func IsTxNotFound(err error) bool {
	return err != nil && (errors.Is(err, ErrTxNotFound) || strings.Contains(err.Error(), ErrTxNotFound.Error()))
}
