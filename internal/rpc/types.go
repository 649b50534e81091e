package rpc

import (
	"github.com/Klingon-tech/klingnet-token/config"
	"github.com/Klingon-tech/klingnet-token/internal/registry"
	"github.com/Klingon-tech/klingnet-token/internal/token"
	"github.com/Klingon-tech/klingnet-token/pkg/event"
	"github.com/Klingon-tech/klingnet-token/pkg/types"
)

// JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
	CodeNotFound       = -32000
	CodeExecutionError = -32001
)

// Request is a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
	ID      interface{} `json:"id"`
}

// Response is a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string      `json:"jsonrpc"`
	Result  interface{} `json:"result,omitempty"`
	Error   *Error      `json:"error,omitempty"`
	ID      interface{} `json:"id"`
}

// Error is a JSON-RPC 2.0 error object.
type Error struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ── Backend ─────────────────────────────────────────────────────────────

// Backend is the node surface the RPC server exposes. All mutating calls
// are serialized by the implementation.
type Backend interface {
	Genesis() *config.Genesis

	Register(call token.Call, account types.AccountID) (token.RegisterResult, error)
	Unregister(call token.Call, force bool) (token.UnregisterResult, error)
	Transfer(call token.Call, receiver types.AccountID, amount types.Amount, memo string) (token.TransferResult, error)
	TransferAndNotify(call token.Call, receiver types.AccountID, amount types.Amount, memo string, payload []byte) (token.NotifyResult, error)

	BalanceOf(account types.AccountID) (types.Amount, error)
	TotalSupply() (types.Amount, error)
	StorageBalance(account types.AccountID) (*registry.StorageBalance, error)
	StorageBounds() registry.Bounds
	StorageUsage() uint64
	AccountCount() (int, error)
	Events(from uint64, limit int) ([]event.Record, error)
	EventCount() uint64
}

// ── Param types ─────────────────────────────────────────────────────────

// CallParams carries the caller identity and attached payment present on
// every mutating endpoint.
type CallParams struct {
	Caller  types.AccountID `json:"caller"`
	Deposit types.Amount    `json:"deposit"`
}

// RegisterParams is used by token_register.
type RegisterParams struct {
	CallParams
	// Account is optional; empty registers the caller.
	Account types.AccountID `json:"account,omitempty"`
}

// UnregisterParams is used by token_unregister.
type UnregisterParams struct {
	CallParams
	Force bool `json:"force,omitempty"`
}

// TransferParams is used by token_transfer and token_transferAndNotify.
type TransferParams struct {
	CallParams
	Receiver types.AccountID `json:"receiver"`
	Amount   types.Amount    `json:"amount"`
	Memo     string          `json:"memo,omitempty"`
	// Payload is forwarded opaquely to the receiver hook on
	// token_transferAndNotify.
	Payload string `json:"payload,omitempty"`
}

// AccountParams is used by endpoints that take a single account.
type AccountParams struct {
	Account types.AccountID `json:"account"`
}

// EventsParams is used by token_getEvents.
type EventsParams struct {
	From  uint64 `json:"from"`
	Limit int    `json:"limit,omitempty"`
}

// ── Result types ────────────────────────────────────────────────────────

// RegisterResult is returned by token_register.
type RegisterResult struct {
	Account    string `json:"account"`
	Registered bool   `json:"registered"`
	Refund     string `json:"refund"`
}

// UnregisterResult is returned by token_unregister.
type UnregisterResult struct {
	Account         string `json:"account"`
	Closed          bool   `json:"closed"`
	ReleasedBalance string `json:"released_balance"`
	Refund          string `json:"refund"`
}

// TransferResult is returned by token_transfer.
type TransferResult struct {
	Sender   string `json:"sender"`
	Receiver string `json:"receiver"`
	Amount   string `json:"amount"`
	Refund   string `json:"refund"`
}

// NotifyTransferResult is returned by token_transferAndNotify.
type NotifyTransferResult struct {
	Sender     string `json:"sender"`
	Receiver   string `json:"receiver"`
	Amount     string `json:"amount"`
	UsedAmount string `json:"used_amount"`
	Refund     string `json:"refund"`
}

// BalanceResult is returned by token_balanceOf.
type BalanceResult struct {
	Account string `json:"account"`
	Balance string `json:"balance"`
}

// SupplyResult is returned by token_totalSupply.
type SupplyResult struct {
	TotalSupply string `json:"total_supply"`
}

// StorageBalanceResult is returned by token_storageBalance. A null result
// means the account is not registered.
type StorageBalanceResult struct {
	Account   string `json:"account"`
	Total     string `json:"total"`
	Available string `json:"available"`
}

// StorageBoundsResult is returned by token_storageBounds.
type StorageBoundsResult struct {
	Min string `json:"min"`
	Max string `json:"max"`
}

// MetadataResult is returned by token_getMetadata.
type MetadataResult struct {
	LedgerID            string `json:"ledger_id"`
	Name                string `json:"name"`
	Symbol              string `json:"symbol"`
	Decimals            uint8  `json:"decimals"`
	StoragePricePerByte uint64 `json:"storage_price_per_byte"`
}

// EventsResult is returned by token_getEvents.
type EventsResult struct {
	Events []event.Record `json:"events"`
	Count  uint64         `json:"count"`
}

// NodeInfoResult is returned by node_getInfo.
type NodeInfoResult struct {
	LedgerID    string `json:"ledger_id"`
	GenesisHash string `json:"genesis_hash"`
	TotalSupply string `json:"total_supply"`
	Accounts    int    `json:"accounts"`
	StorageUsed uint64 `json:"storage_used"`
	Events      uint64 `json:"events"`
}
