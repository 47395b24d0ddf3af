package jito

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"bundler/config"
	"bundler/logger"
	"bundler/utils"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"go.uber.org/atomic"
)

var BlockEngineURL string

func GetBlockEngineURL() string {
	if BlockEngineURL != "" {
		return BlockEngineURL
	}

	BlockEngineURL = viper.GetString("jito.block-engine-url")
	if BlockEngineURL == "" {
		BlockEngineURL = config.DEFAULT_BLOCK_ENGINE_URL
		logger.JitoLogger.Warn("Block engine URL not set in config, using default", "url", BlockEngineURL)
	}

	return BlockEngineURL
}

// Block engine JSON-RPC endpoints
const (
	bundlesPath          = "/api/v1/bundles"
	tipAccountsPath      = "/api/v1/getTipAccounts"
	bundleStatusesPath   = "/api/v1/getBundleStatuses"
	inflightStatusesPath = "/api/v1/getInflightBundleStatuses"
)

// Inflight bundle statuses
const (
	StatusInvalid = "Invalid"
	StatusPending = "Pending"
	StatusFailed  = "Failed"
	StatusLanded  = "Landed"
)

type rpcRequest struct {
	Jsonrpc string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcResponse struct {
	Jsonrpc string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError is a JSON-RPC error object returned by the block engine.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("%s: %d %s", utils.RPCERROR, e.Code, e.Message)
}

type rpcContext struct {
	Slot uint64 `json:"slot"`
}

// InflightBundleStatus is one entry of getInflightBundleStatuses, covering the last 5 minutes.
type InflightBundleStatus struct {
	BundleId   string  `json:"bundle_id"`
	Status     string  `json:"status"`
	LandedSlot *uint64 `json:"landed_slot"`
}

// BundleStatus is one entry of getBundleStatuses, available once the bundle landed.
type BundleStatus struct {
	BundleId           string          `json:"bundle_id"`
	Transactions       []string        `json:"transactions"`
	Slot               uint64          `json:"slot"`
	ConfirmationStatus string          `json:"confirmation_status"`
	Err                json.RawMessage `json:"err"`
}

// Failed reports whether the landed bundle carried an execution error.
func (s *BundleStatus) Failed() bool {
	if len(s.Err) == 0 || string(s.Err) == "null" {
		return false
	}
	var result map[string]json.RawMessage
	if err := json.Unmarshal(s.Err, &result); err != nil {
		return true
	}
	_, ok := result["Ok"]
	return !ok
}

// BlockEngine is a JSON-RPC client for the Jito block engine, the relay that accepts bundles.
type BlockEngine struct {
	url     string
	headers map[string]string
	retry   int
	nextId  atomic.Uint64
}

// NewBlockEngine creates a client for url. authUUID is optional; when set it must be a UUID
// and is sent as the x-jito-auth header.
func NewBlockEngine(url string, authUUID string) (*BlockEngine, error) {
	headers := make(map[string]string)
	if authUUID != "" {
		id, err := uuid.Parse(authUUID)
		if err != nil {
			return nil, fmt.Errorf("invalid jito auth uuid: %w", err)
		}
		headers["x-jito-auth"] = id.String()
	}
	return &BlockEngine{
		url:     url,
		headers: headers,
		retry:   utils.DefaultRetryTimes,
	}, nil
}

func (c *BlockEngine) call(ctx context.Context, path, method string, params []any, result any, retry int) error {
	if params == nil {
		params = []any{}
	}
	req := rpcRequest{
		Jsonrpc: "2.0",
		ID:      c.nextId.Inc(),
		Method:  method,
		Params:  params,
	}

	var resp rpcResponse
	err := utils.PostUrlResponseWithRetry(ctx, c.url+path, c.headers, req, &resp, retry, logger.JitoLogger)
	if err != nil {
		// The block engine answers malformed bundles with HTTP 400 and a JSON-RPC error body
		var statusErr *utils.HTTPStatusError
		if errors.As(err, &statusErr) {
			var body rpcResponse
			if json.Unmarshal([]byte(statusErr.Body), &body) == nil && body.Error != nil {
				return body.Error
			}
		}
		return fmt.Errorf("RPC %s failed: %w", method, err)
	}

	if resp.Error != nil {
		return resp.Error
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Result, result); err != nil {
		return fmt.Errorf("RPC %s returned unexpected result: %w", method, err)
	}
	return nil
}

// GetTipAccounts returns the accounts currently accepted as tip destinations.
func (c *BlockEngine) GetTipAccounts(ctx context.Context) ([]string, error) {
	var accounts []string
	if err := c.call(ctx, tipAccountsPath, "getTipAccounts", nil, &accounts, c.retry); err != nil {
		return nil, err
	}
	return accounts, nil
}

// SendBundle submits base64 encoded transactions as one bundle and returns its bundle id.
// It is never retried: the caller decides whether to rebuild with a fresh blockhash.
func (c *BlockEngine) SendBundle(ctx context.Context, encoded []string) (string, error) {
	params := []any{encoded, map[string]string{"encoding": "base64"}}
	var bundleId string
	if err := c.call(ctx, bundlesPath, "sendBundle", params, &bundleId, 1); err != nil {
		return "", err
	}
	return bundleId, nil
}

func (c *BlockEngine) GetInflightBundleStatuses(ctx context.Context, bundleIds []string) ([]InflightBundleStatus, error) {
	var result struct {
		Context rpcContext              `json:"context"`
		Value   []*InflightBundleStatus `json:"value"`
	}
	if err := c.call(ctx, inflightStatusesPath, "getInflightBundleStatuses", []any{bundleIds}, &result, c.retry); err != nil {
		return nil, err
	}
	statuses := make([]InflightBundleStatus, 0, len(result.Value))
	for _, s := range result.Value {
		if s != nil {
			statuses = append(statuses, *s)
		}
	}
	return statuses, nil
}

func (c *BlockEngine) GetBundleStatuses(ctx context.Context, bundleIds []string) ([]BundleStatus, error) {
	var result struct {
		Context rpcContext      `json:"context"`
		Value   []*BundleStatus `json:"value"`
	}
	if err := c.call(ctx, bundleStatusesPath, "getBundleStatuses", []any{bundleIds}, &result, c.retry); err != nil {
		return nil, err
	}
	statuses := make([]BundleStatus, 0, len(result.Value))
	for _, s := range result.Value {
		if s != nil {
			statuses = append(statuses, *s)
		}
	}
	return statuses, nil
}
