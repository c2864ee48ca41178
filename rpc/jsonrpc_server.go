// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/json"
	"github.com/gorilla/rpc/v2"
	"go.uber.org/zap"

	"github.com/ava-labs/vaultvm/chain"
	"github.com/ava-labs/vaultvm/codec"
	"github.com/ava-labs/vaultvm/derive"
	"github.com/ava-labs/vaultvm/storage"
)

// jsonContentTypes are the request content types the vault service decodes.
var jsonContentTypes = []string{"application/json", "application/json;charset=UTF-8"}

// NewJSONRPCHandler serves [service] under [name] over JSON-RPC.
func NewJSONRPCHandler(name string, service *JSONRPCServer) (http.Handler, error) {
	server := rpc.NewServer()
	for _, contentType := range jsonContentTypes {
		server.RegisterCodec(json.NewCodec(), contentType)
	}
	if err := server.RegisterService(service, name); err != nil {
		return nil, fmt.Errorf("unable to register %s service: %w", name, err)
	}
	return server, nil
}

type JSONRPCServer struct {
	vm VM
}

func NewJSONRPCServer(vm VM) *JSONRPCServer {
	return &JSONRPCServer{vm}
}

type PingReply struct {
	Success bool `json:"success"`
}

func (j *JSONRPCServer) Ping(_ *http.Request, _ *struct{}, reply *PingReply) (err error) {
	j.vm.Logger().Info("ping")
	reply.Success = true
	return nil
}

type ProgramReply struct {
	ProgramID      codec.Address `json:"programId"`
	ValidityWindow int64         `json:"validityWindow"`
}

func (j *JSONRPCServer) Program(_ *http.Request, _ *struct{}, reply *ProgramReply) error {
	r := j.vm.Rules()
	reply.ProgramID = r.GetProgramID()
	reply.ValidityWindow = r.GetValidityWindow()
	return nil
}

type OwnerArgs struct {
	Owner codec.Address `json:"owner"`
}

type AddressesReply struct {
	Vault *derive.Vault `json:"vault"`
}

// Addresses derives the vault addresses of an owner. It does not read state.
func (j *JSONRPCServer) Addresses(req *http.Request, args *OwnerArgs, reply *AddressesReply) error {
	_, span := j.vm.Tracer().Start(req.Context(), "JSONRPCServer.Addresses")
	defer span.End()

	v, err := derive.VaultAddresses(args.Owner, j.vm.Rules().GetProgramID())
	if err != nil {
		return err
	}
	reply.Vault = v
	return nil
}

type VaultReply struct {
	Vault       *derive.Vault `json:"vault"`
	Initialized bool          `json:"initialized"`
	Owner       codec.Address `json:"owner"`
	Balance     uint64        `json:"balance"`
}

func (j *JSONRPCServer) Vault(req *http.Request, args *OwnerArgs, reply *VaultReply) error {
	ctx, span := j.vm.Tracer().Start(req.Context(), "JSONRPCServer.Vault")
	defer span.End()

	v, err := derive.VaultAddresses(args.Owner, j.vm.Rules().GetProgramID())
	if err != nil {
		return err
	}
	reply.Vault = v

	record, err := storage.GetVaultRecordFromState(ctx, j.vm.ReadState, v.State)
	switch {
	case errors.Is(err, storage.ErrRecordNotFound):
		return nil
	case err != nil:
		return err
	}
	balance, err := storage.GetBalanceFromState(ctx, j.vm.ReadState, v.Auth)
	if err != nil {
		return err
	}
	reply.Initialized = true
	reply.Owner = record.Owner
	reply.Balance = balance
	return nil
}

type BalanceArgs struct {
	Address codec.Address `json:"address"`
}

type BalanceReply struct {
	Amount uint64 `json:"amount"`
}

func (j *JSONRPCServer) Balance(req *http.Request, args *BalanceArgs, reply *BalanceReply) error {
	ctx, span := j.vm.Tracer().Start(req.Context(), "JSONRPCServer.Balance")
	defer span.End()

	balance, err := storage.GetBalanceFromState(ctx, j.vm.ReadState, args.Address)
	if err != nil {
		return err
	}
	reply.Amount = balance
	return nil
}

type SubmitTxArgs struct {
	Tx []byte `json:"tx"`
}

type SubmitTxReply struct {
	TxID     ids.ID `json:"txId"`
	Executed bool   `json:"executed"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
	Output   []byte `json:"output,omitempty"`
}

// SubmitTx executes a signed transaction and returns its outcome. A failed
// transaction is not an RPC error.
func (j *JSONRPCServer) SubmitTx(
	req *http.Request,
	args *SubmitTxArgs,
	reply *SubmitTxReply,
) error {
	ctx, span := j.vm.Tracer().Start(req.Context(), "JSONRPCServer.SubmitTx")
	defer span.End()

	tx, err := chain.UnmarshalTx(args.Tx, j.vm.Parser())
	if err != nil {
		return fmt.Errorf("%w: unable to unmarshal on public service", err)
	}
	results, err := j.vm.Submit(ctx, []*chain.Transaction{tx})
	if err != nil {
		j.vm.Logger().Warn("unable to submit tx",
			zap.Stringer("txID", tx.ID()),
			zap.Error(err),
		)
		return err
	}
	r := results[0]
	reply.TxID = r.TxID
	reply.Executed = r.Executed
	reply.Success = r.Success
	reply.Error = r.Error
	reply.Output = r.Output
	return nil
}

type TxArgs struct {
	TxID ids.ID `json:"txId"`
}

type TxReply struct {
	Timestamp int64  `json:"timestamp"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}

func (j *JSONRPCServer) Tx(req *http.Request, args *TxArgs, reply *TxReply) error {
	ctx, span := j.vm.Tracer().Start(req.Context(), "JSONRPCServer.Tx")
	defer span.End()

	found, result, err := j.vm.GetTransaction(ctx, args.TxID)
	if err != nil {
		return err
	}
	if !found {
		return ErrTxNotFound
	}
	reply.Timestamp = result.Timestamp
	reply.Success = result.Success
	reply.Error = result.Error
	return nil
}
