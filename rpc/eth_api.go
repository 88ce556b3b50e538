// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

// Package rpc implements the JSON-RPC boundary named as an external
// collaborator surface in spec.md §1: this package owns the eth_*
// method set's request/reply shapes and their translation to and from
// the core block-processing pipeline, not a full server implementation
// of every method a production node exposes.
package rpc

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/lumenchain/lumen/common"
	"github.com/lumenchain/lumen/core"
	"github.com/lumenchain/lumen/core/state"
	"github.com/lumenchain/lumen/core/txpool"
	"github.com/lumenchain/lumen/core/types"
	"github.com/lumenchain/lumen/lumenerr"
	"github.com/lumenchain/lumen/rlp"
	"github.com/lumenchain/lumen/trie"
)

// EthAPI exposes the eth_* JSON-RPC methods. Each method has the
// func(*http.Request, *Args, *Reply) error signature gorilla/rpc's
// codec requires, with the request parameter unused by every method
// that needs no access to the inbound HTTP request itself.
type EthAPI struct {
	chain  *core.BlockChain
	pool   *txpool.Pool
	signer types.Signer
}

// NewEthAPI returns an EthAPI serving chain and pool, validating raw
// transactions against signer.
func NewEthAPI(chain *core.BlockChain, pool *txpool.Pool, signer types.Signer) *EthAPI {
	return &EthAPI{chain: chain, pool: pool, signer: signer}
}

// resolveBlock maps a JSON-RPC block tag ("latest", "pending", "earliest",
// or a 0x-prefixed number) to a concrete header. "pending" is treated as
// "latest" since this tree has no separate pending-block builder.
func (a *EthAPI) resolveBlock(tag string) (*types.Header, error) {
	var hash common.Hash
	switch strings.ToLower(tag) {
	case "", "latest", "pending":
		hash = a.chain.Head()
	case "earliest":
		h, ok := a.chain.CanonicalHash(0)
		if !ok {
			return nil, lumenerr.InconsistentStore("no genesis block", nil)
		}
		hash = h
	default:
		n, err := parseHexUint64(tag)
		if err != nil {
			return nil, fmt.Errorf("rpc: invalid block tag %q: %w", tag, err)
		}
		h, ok := a.chain.CanonicalHash(n)
		if !ok {
			return nil, fmt.Errorf("rpc: unknown block number %q", tag)
		}
		hash = h
	}
	header, ok := a.chain.GetHeader(hash)
	if !ok {
		return nil, lumenerr.InconsistentStore("canonical hash without header", nil)
	}
	return header, nil
}

func (a *EthAPI) stateAt(header *types.Header) *state.StateDB {
	db := a.chain.Database()
	return state.New(header.Root, db.Reader(headerHash(header)), db)
}

func headerHash(h *types.Header) common.Hash { return h.Hash() }

func trieAt(root common.Hash, reader trie.NodeReader) *trie.Trie { return trie.New(root, reader) }

// ChainIdArgs is an empty argument struct; gorilla/rpc's json codec
// requires every method to declare one even when it reads nothing.
type ChainIdArgs struct{}

type ChainIdReply struct {
	ChainID *BigInt `json:"chainId"`
}

func (a *EthAPI) ChainId(r *http.Request, args *ChainIdArgs, reply *ChainIdReply) error {
	reply.ChainID = FromBigInt(a.chain.Config().ChainID)
	return nil
}

type BlockNumberArgs struct{}

type BlockNumberReply struct {
	Number Uint64 `json:"blockNumber"`
}

func (a *EthAPI) BlockNumber(r *http.Request, args *BlockNumberArgs, reply *BlockNumberReply) error {
	header, ok := a.chain.GetHeader(a.chain.Head())
	if !ok {
		return lumenerr.InconsistentStore("head hash without header", nil)
	}
	reply.Number = Uint64(header.NumberU64())
	return nil
}

type GetBalanceArgs struct {
	Address common.Address `json:"address"`
	Block   string         `json:"block"`
}

type GetBalanceReply struct {
	Balance *BigInt `json:"balance"`
}

func (a *EthAPI) GetBalance(r *http.Request, args *GetBalanceArgs, reply *GetBalanceReply) error {
	header, err := a.resolveBlock(args.Block)
	if err != nil {
		return err
	}
	sdb := a.stateAt(header)
	reply.Balance = FromUint256(sdb.GetBalance(args.Address))
	return nil
}

type GetTransactionCountArgs struct {
	Address common.Address `json:"address"`
	Block   string         `json:"block"`
}

type GetTransactionCountReply struct {
	Nonce Uint64 `json:"nonce"`
}

func (a *EthAPI) GetTransactionCount(r *http.Request, args *GetTransactionCountArgs, reply *GetTransactionCountReply) error {
	header, err := a.resolveBlock(args.Block)
	if err != nil {
		return err
	}
	sdb := a.stateAt(header)
	if strings.EqualFold(args.Block, "pending") {
		if nonce, ok := a.pool.PendingNonce(args.Address); ok {
			reply.Nonce = Uint64(nonce)
			return nil
		}
	}
	reply.Nonce = Uint64(sdb.GetNonce(args.Address))
	return nil
}

type GetCodeArgs struct {
	Address common.Address `json:"address"`
	Block   string         `json:"block"`
}

type GetCodeReply struct {
	Code Bytes `json:"code"`
}

func (a *EthAPI) GetCode(r *http.Request, args *GetCodeArgs, reply *GetCodeReply) error {
	header, err := a.resolveBlock(args.Block)
	if err != nil {
		return err
	}
	sdb := a.stateAt(header)
	reply.Code = sdb.GetCode(args.Address)
	return nil
}

type GetStorageAtArgs struct {
	Address common.Address `json:"address"`
	Key     common.Hash    `json:"key"`
	Block   string         `json:"block"`
}

type GetStorageAtReply struct {
	Value common.Hash `json:"value"`
}

func (a *EthAPI) GetStorageAt(r *http.Request, args *GetStorageAtArgs, reply *GetStorageAtReply) error {
	header, err := a.resolveBlock(args.Block)
	if err != nil {
		return err
	}
	sdb := a.stateAt(header)
	reply.Value = sdb.GetState(args.Address, args.Key)
	return nil
}

type GetProofArgs struct {
	Address common.Address `json:"address"`
	Block   string         `json:"block"`
}

type GetProofReply struct {
	AccountProof []Bytes `json:"accountProof"`
	Balance      *BigInt `json:"balance"`
	Nonce        Uint64  `json:"nonce"`
}

// GetProof returns a Merkle proof of args.Address's account leaf against
// the resolved block's state root (spec.md §4.2, trie.Trie.Prove).
func (a *EthAPI) GetProof(r *http.Request, args *GetProofArgs, reply *GetProofReply) error {
	header, err := a.resolveBlock(args.Block)
	if err != nil {
		return err
	}
	db := a.chain.Database()
	tr := trieAt(header.Root, db.Reader(headerHash(header)))
	proof, err := tr.Prove(args.Address[:])
	if err != nil {
		return fmt.Errorf("rpc: building account proof: %w", err)
	}
	out := make([]Bytes, len(proof))
	for i, p := range proof {
		out[i] = p
	}
	reply.AccountProof = out

	sdb := a.stateAt(header)
	reply.Balance = FromUint256(sdb.GetBalance(args.Address))
	reply.Nonce = Uint64(sdb.GetNonce(args.Address))
	return nil
}

type GetBlockByNumberArgs struct {
	Block            string `json:"block"`
	FullTransactions bool   `json:"fullTransactions"`
}

type BlockReply struct {
	Number       Uint64        `json:"number"`
	Hash         common.Hash   `json:"hash"`
	ParentHash   common.Hash   `json:"parentHash"`
	StateRoot    common.Hash   `json:"stateRoot"`
	GasLimit     Uint64        `json:"gasLimit"`
	GasUsed      Uint64        `json:"gasUsed"`
	Timestamp    Uint64        `json:"timestamp"`
	Transactions []common.Hash `json:"transactions"`
}

func (a *EthAPI) GetBlockByNumber(r *http.Request, args *GetBlockByNumberArgs, reply *BlockReply) error {
	header, err := a.resolveBlock(args.Block)
	if err != nil {
		return err
	}
	return a.fillBlockReply(header, reply)
}

type GetBlockByHashArgs struct {
	Hash             common.Hash `json:"hash"`
	FullTransactions bool        `json:"fullTransactions"`
}

func (a *EthAPI) GetBlockByHash(r *http.Request, args *GetBlockByHashArgs, reply *BlockReply) error {
	header, ok := a.chain.GetHeader(args.Hash)
	if !ok {
		return fmt.Errorf("rpc: unknown block hash %s", args.Hash)
	}
	return a.fillBlockReply(header, reply)
}

func (a *EthAPI) fillBlockReply(header *types.Header, reply *BlockReply) error {
	reply.Number = Uint64(header.NumberU64())
	reply.Hash = header.Hash()
	reply.ParentHash = header.ParentHash
	reply.StateRoot = header.Root
	reply.GasLimit = Uint64(header.GasLimit)
	reply.GasUsed = Uint64(header.GasUsed)
	reply.Timestamp = Uint64(header.Time)

	block, ok := a.chain.GetBlock(reply.Hash)
	if !ok {
		return nil
	}
	txs := block.Transactions()
	hashes := make([]common.Hash, len(txs))
	for i, tx := range txs {
		hashes[i] = tx.Hash()
	}
	reply.Transactions = hashes
	return nil
}

type GetTransactionReceiptArgs struct {
	Hash common.Hash `json:"hash"`
}

type ReceiptReply struct {
	TransactionHash common.Hash   `json:"transactionHash"`
	BlockHash       common.Hash   `json:"blockHash"`
	BlockNumber     *BigInt       `json:"blockNumber"`
	Status          Uint64        `json:"status"`
	GasUsed         Uint64        `json:"gasUsed"`
	ContractAddress common.Address `json:"contractAddress"`
	LogsBloom       Bytes         `json:"logsBloom"`
}

func (a *EthAPI) GetTransactionReceipt(r *http.Request, args *GetTransactionReceiptArgs, reply *ReceiptReply) error {
	head := a.chain.Head()
	receipts, ok := a.chain.GetReceipts(head)
	if ok {
		if rcpt := findReceipt(receipts, args.Hash); rcpt != nil {
			fillReceiptReply(rcpt, reply)
			return nil
		}
	}
	return fmt.Errorf("rpc: transaction %s not found in the head block's receipts", args.Hash)
}

func findReceipt(receipts []*types.Receipt, hash common.Hash) *types.Receipt {
	for _, r := range receipts {
		if r.TxHash == hash {
			return r
		}
	}
	return nil
}

func fillReceiptReply(rcpt *types.Receipt, reply *ReceiptReply) {
	reply.TransactionHash = rcpt.TxHash
	reply.BlockHash = rcpt.BlockHash
	reply.BlockNumber = FromBigInt(rcpt.BlockNumber)
	reply.Status = Uint64(rcpt.Status)
	reply.GasUsed = Uint64(rcpt.GasUsed)
	reply.ContractAddress = rcpt.ContractAddress
	reply.LogsBloom = rcpt.Bloom[:]
}

type SendRawTransactionArgs struct {
	Data Bytes `json:"data"`
}

type SendRawTransactionReply struct {
	Hash common.Hash `json:"hash"`
}

// SendRawTransaction RLP-decodes args.Data and admits it to the
// mempool (spec.md §5, core/txpool.Pool).
func (a *EthAPI) SendRawTransaction(r *http.Request, args *SendRawTransactionArgs, reply *SendRawTransactionReply) error {
	var tx types.Transaction
	if err := rlp.DecodeInto(args.Data, &tx); err != nil {
		return lumenerr.InvalidTransaction("cannot decode raw transaction", err)
	}
	if err := a.pool.Add(&tx); err != nil {
		return err
	}
	reply.Hash = tx.Hash()
	return nil
}
