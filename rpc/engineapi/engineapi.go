// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

// Package engineapi implements the engine_* namespace (spec.md §6): the
// consensus-client-facing boundary that drives fork-choice updates and
// delivers execution payloads for validation. As with rpc, this is the
// boundary contract named in spec.md §1's external-collaborator list,
// not a full beacon-consensus client.
package engineapi

import (
	"errors"
	"math/big"
	"net/http"

	"github.com/lumenchain/lumen/common"
	"github.com/lumenchain/lumen/core"
	"github.com/lumenchain/lumen/core/types"
	"github.com/lumenchain/lumen/rlp"
	"github.com/lumenchain/lumen/rpc"
)

var errBlockHashMismatch = errors.New("engineapi: computed block hash does not match payload blockHash")

func bigZero() *big.Int { return new(big.Int) }

func bigFromUint64(v uint64) *big.Int { return new(big.Int).SetUint64(v) }

func decodeTransactions(raw []rpc.Bytes) ([]*types.Transaction, error) {
	txs := make([]*types.Transaction, len(raw))
	for i, enc := range raw {
		var tx types.Transaction
		if err := rlp.DecodeInto(enc, &tx); err != nil {
			return nil, err
		}
		txs[i] = &tx
	}
	return txs, nil
}

// PayloadStatus is the validation outcome engine_newPayload and
// engine_forkchoiceUpdated return (spec.md §6).
type PayloadStatus string

const (
	StatusValid    PayloadStatus = "VALID"
	StatusInvalid  PayloadStatus = "INVALID"
	StatusSyncing  PayloadStatus = "SYNCING"
	StatusAccepted PayloadStatus = "ACCEPTED"
)

// API implements the engine_forkchoiceUpdatedV{1,2,3} and
// engine_newPayloadV{1,2,3,4} methods. Every version shares one
// implementation: this tree does not yet distinguish the optional
// per-version payload-build (PayloadAttributes) path, since no payload
// builder exists (spec.md §1 scopes block *production* to an external
// collaborator too).
type API struct {
	chain *core.BlockChain
}

// New returns an engine API driving chain's fork-choice and block
// acceptance.
func New(chain *core.BlockChain) *API { return &API{chain: chain} }

type ForkchoiceStateV1 struct {
	HeadBlockHash      common.Hash `json:"headBlockHash"`
	SafeBlockHash      common.Hash `json:"safeBlockHash"`
	FinalizedBlockHash common.Hash `json:"finalizedBlockHash"`
}

type ForkchoiceUpdatedArgs struct {
	State ForkchoiceStateV1 `json:"forkchoiceState"`
}

type PayloadStatusReply struct {
	Status          PayloadStatus `json:"status"`
	LatestValidHash *common.Hash  `json:"latestValidHash,omitempty"`
	ValidationError *string       `json:"validationError,omitempty"`
}

type ForkchoiceUpdatedReply struct {
	PayloadStatus PayloadStatusReply `json:"payloadStatus"`
}

func (a *API) forkchoiceUpdated(args *ForkchoiceUpdatedArgs, reply *ForkchoiceUpdatedReply) error {
	st := args.State
	if err := a.chain.ForkChoiceUpdate(st.HeadBlockHash, st.SafeBlockHash, st.FinalizedBlockHash); err != nil {
		msg := err.Error()
		reply.PayloadStatus = PayloadStatusReply{Status: StatusInvalid, ValidationError: &msg}
		return nil
	}
	reply.PayloadStatus = PayloadStatusReply{Status: StatusValid, LatestValidHash: &st.HeadBlockHash}
	return nil
}

func (a *API) ForkchoiceUpdatedV1(r *http.Request, args *ForkchoiceUpdatedArgs, reply *ForkchoiceUpdatedReply) error {
	return a.forkchoiceUpdated(args, reply)
}
func (a *API) ForkchoiceUpdatedV2(r *http.Request, args *ForkchoiceUpdatedArgs, reply *ForkchoiceUpdatedReply) error {
	return a.forkchoiceUpdated(args, reply)
}
func (a *API) ForkchoiceUpdatedV3(r *http.Request, args *ForkchoiceUpdatedArgs, reply *ForkchoiceUpdatedReply) error {
	return a.forkchoiceUpdated(args, reply)
}

// ExecutionPayloadV1 is the payload envelope shared by every
// engine_newPayload version this tree implements; Withdrawals and the
// Cancun+ fields are carried optionally rather than modeled as
// distinct per-version structs, matching the teacher's wide-struct,
// narrow-validity convention used for core/types.Transaction.
type ExecutionPayloadV1 struct {
	ParentHash    common.Hash      `json:"parentHash"`
	FeeRecipient  common.Address   `json:"feeRecipient"`
	StateRoot     common.Hash      `json:"stateRoot"`
	ReceiptsRoot  common.Hash      `json:"receiptsRoot"`
	LogsBloom     rpc.Bytes        `json:"logsBloom"`
	PrevRandao    common.Hash      `json:"prevRandao"`
	BlockNumber   rpc.Uint64       `json:"blockNumber"`
	GasLimit      rpc.Uint64       `json:"gasLimit"`
	GasUsed       rpc.Uint64       `json:"gasUsed"`
	Timestamp     rpc.Uint64       `json:"timestamp"`
	ExtraData     rpc.Bytes        `json:"extraData"`
	BaseFeePerGas *rpc.BigInt      `json:"baseFeePerGas"`
	BlockHash     common.Hash      `json:"blockHash"`
	Transactions  []rpc.Bytes      `json:"transactions"`

	// Shanghai+
	Withdrawals []WithdrawalV1 `json:"withdrawals,omitempty"`

	// Cancun+
	BlobGasUsed   *rpc.Uint64 `json:"blobGasUsed,omitempty"`
	ExcessBlobGas *rpc.Uint64 `json:"excessBlobGas,omitempty"`
}

type WithdrawalV1 struct {
	Index          rpc.Uint64     `json:"index"`
	ValidatorIndex rpc.Uint64     `json:"validatorIndex"`
	Address        common.Address `json:"address"`
	Amount         rpc.Uint64     `json:"amount"`
}

type NewPayloadArgs struct {
	Payload                 ExecutionPayloadV1 `json:"executionPayload"`
	ExpectedBlobVersionedHashes []common.Hash   `json:"expectedBlobVersionedHashes,omitempty"`
	ParentBeaconBlockRoot    *common.Hash       `json:"parentBeaconBlockRoot,omitempty"`
}

type NewPayloadReply struct {
	PayloadStatusReply
}

func (a *API) newPayload(args *NewPayloadArgs, reply *NewPayloadReply) error {
	block, err := decodeBlock(&args.Payload, args.ParentBeaconBlockRoot)
	if err != nil {
		msg := err.Error()
		reply.PayloadStatusReply = PayloadStatusReply{Status: StatusInvalid, ValidationError: &msg}
		return nil
	}

	if _, ok := a.chain.GetHeader(block.ParentHash()); !ok {
		reply.PayloadStatusReply = PayloadStatusReply{Status: StatusSyncing}
		return nil
	}

	outcome, err := a.chain.AddBlock(block)
	hash := block.Hash()
	switch outcome {
	case core.Accepted:
		reply.PayloadStatusReply = PayloadStatusReply{Status: StatusValid, LatestValidHash: &hash}
	case core.Pending:
		reply.PayloadStatusReply = PayloadStatusReply{Status: StatusAccepted}
	default:
		msg := ""
		if err != nil {
			msg = err.Error()
		}
		reply.PayloadStatusReply = PayloadStatusReply{Status: StatusInvalid, ValidationError: &msg}
	}
	return nil
}

func (a *API) NewPayloadV1(r *http.Request, args *NewPayloadArgs, reply *NewPayloadReply) error {
	return a.newPayload(args, reply)
}
func (a *API) NewPayloadV2(r *http.Request, args *NewPayloadArgs, reply *NewPayloadReply) error {
	return a.newPayload(args, reply)
}
func (a *API) NewPayloadV3(r *http.Request, args *NewPayloadArgs, reply *NewPayloadReply) error {
	return a.newPayload(args, reply)
}
func (a *API) NewPayloadV4(r *http.Request, args *NewPayloadArgs, reply *NewPayloadReply) error {
	return a.newPayload(args, reply)
}

func decodeBlock(p *ExecutionPayloadV1, beaconRoot *common.Hash) (*types.Block, error) {
	txs, err := decodeTransactions(p.Transactions)
	if err != nil {
		return nil, err
	}
	header := &types.Header{
		ParentHash:            p.ParentHash,
		Coinbase:              p.FeeRecipient,
		Root:                  p.StateRoot,
		ReceiptHash:           p.ReceiptsRoot,
		Bloom:                 types.BytesToBloom(p.LogsBloom),
		Difficulty:            bigZero(),
		Number:                bigFromUint64(uint64(p.BlockNumber)),
		GasLimit:              uint64(p.GasLimit),
		GasUsed:               uint64(p.GasUsed),
		Time:                  uint64(p.Timestamp),
		Extra:                 p.ExtraData,
		MixDigest:             p.PrevRandao,
		BaseFee:               p.BaseFeePerGas.ToInt(),
		ParentBeaconBlockRoot: beaconRoot,
	}
	if p.BlobGasUsed != nil {
		v := uint64(*p.BlobGasUsed)
		header.BlobGasUsed = &v
	}
	if p.ExcessBlobGas != nil {
		v := uint64(*p.ExcessBlobGas)
		header.ExcessBlobGas = &v
	}
	withdrawals := make(types.Withdrawals, len(p.Withdrawals))
	for i, w := range p.Withdrawals {
		withdrawals[i] = &types.Withdrawal{
			Index:          uint64(w.Index),
			ValidatorIndex: uint64(w.ValidatorIndex),
			Address:        w.Address,
			Amount:         uint64(w.Amount),
		}
	}
	block := types.NewBlock(header, txs, withdrawals, nil)
	if block.Hash() != p.BlockHash {
		return nil, errBlockHashMismatch
	}
	return block, nil
}
