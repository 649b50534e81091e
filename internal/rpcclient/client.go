// Package rpcclient provides a JSON-RPC 2.0 client for token-ledger nodes.
package rpcclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Klingon-tech/klingnet-token/internal/rpc"
)

// Client is a JSON-RPC 2.0 HTTP client.
type Client struct {
	endpoint string
	http     *http.Client
}

// New creates a new RPC client targeting the given endpoint URL.
func New(endpoint string) *Client {
	return NewWithTimeout(endpoint, 10*time.Second)
}

// NewWithTimeout creates a new RPC client with a custom HTTP timeout.
func NewWithTimeout(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		endpoint: endpoint,
		http: &http.Client{
			Timeout: timeout,
		},
	}
}

// request is a JSON-RPC 2.0 request.
type request struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
	ID      int         `json:"id"`
}

// response is a JSON-RPC 2.0 response.
type response struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
	ID      int             `json:"id"`
}

// rpcError is a JSON-RPC 2.0 error.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// RPCError is returned when the server responds with an error.
type RPCError struct {
	Code    int
	Message string
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Call invokes a JSON-RPC method and unmarshals the result into the provided pointer.
// If result is nil, the response result is discarded.
func (c *Client) Call(method string, params, result interface{}) error {
	req := request{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      1,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	resp, err := c.http.Post(c.endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var rpcResp response
	if err := json.Unmarshal(data, &rpcResp); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	if rpcResp.Error != nil {
		return &RPCError{
			Code:    rpcResp.Error.Code,
			Message: rpcResp.Error.Message,
		}
	}

	if result != nil && rpcResp.Result != nil {
		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			return fmt.Errorf("decode result: %w", err)
		}
	}

	return nil
}

// ── Typed wrappers ──────────────────────────────────────────────────────

// Register calls token_register.
func (c *Client) Register(params rpc.RegisterParams) (*rpc.RegisterResult, error) {
	var res rpc.RegisterResult
	if err := c.Call("token_register", params, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Unregister calls token_unregister.
func (c *Client) Unregister(params rpc.UnregisterParams) (*rpc.UnregisterResult, error) {
	var res rpc.UnregisterResult
	if err := c.Call("token_unregister", params, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Transfer calls token_transfer.
func (c *Client) Transfer(params rpc.TransferParams) (*rpc.TransferResult, error) {
	var res rpc.TransferResult
	if err := c.Call("token_transfer", params, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// TransferAndNotify calls token_transferAndNotify.
func (c *Client) TransferAndNotify(params rpc.TransferParams) (*rpc.NotifyTransferResult, error) {
	var res rpc.NotifyTransferResult
	if err := c.Call("token_transferAndNotify", params, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// BalanceOf calls token_balanceOf.
func (c *Client) BalanceOf(account string) (*rpc.BalanceResult, error) {
	var res rpc.BalanceResult
	if err := c.Call("token_balanceOf", map[string]string{"account": account}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// TotalSupply calls token_totalSupply.
func (c *Client) TotalSupply() (*rpc.SupplyResult, error) {
	var res rpc.SupplyResult
	if err := c.Call("token_totalSupply", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// StorageBalance calls token_storageBalance. A nil result with nil error
// means the account is not registered.
func (c *Client) StorageBalance(account string) (*rpc.StorageBalanceResult, error) {
	var res *rpc.StorageBalanceResult
	if err := c.Call("token_storageBalance", map[string]string{"account": account}, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// StorageBounds calls token_storageBounds.
func (c *Client) StorageBounds() (*rpc.StorageBoundsResult, error) {
	var res rpc.StorageBoundsResult
	if err := c.Call("token_storageBounds", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Metadata calls token_getMetadata.
func (c *Client) Metadata() (*rpc.MetadataResult, error) {
	var res rpc.MetadataResult
	if err := c.Call("token_getMetadata", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Events calls token_getEvents.
func (c *Client) Events(from uint64, limit int) (*rpc.EventsResult, error) {
	var res rpc.EventsResult
	params := rpc.EventsParams{From: from, Limit: limit}
	if err := c.Call("token_getEvents", params, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// NodeInfo calls node_getInfo.
func (c *Client) NodeInfo() (*rpc.NodeInfoResult, error) {
	var res rpc.NodeInfoResult
	if err := c.Call("node_getInfo", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
