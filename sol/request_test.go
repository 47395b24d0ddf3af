package sol

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"bundler/logger"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.InitLogs("sol_test")
}

type rpcCall struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

// newRPCServer answers JSON-RPC calls with results[method], echoing the request id.
func newRPCServer(t *testing.T, results map[string]any, seen chan<- rpcCall) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var call rpcCall
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&call)) {
			return
		}
		if seen != nil {
			seen <- call
		}
		result, ok := results[call.Method]
		if !assert.True(t, ok, "unexpected method %s", call.Method) {
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      call.ID,
			"result":  result,
		})
	}))
}

func TestLedgerLatestBlockhash(t *testing.T) {
	blockhash := solana.Hash{4, 2}
	seen := make(chan rpcCall, 1)
	ts := newRPCServer(t, map[string]any{
		"getLatestBlockhash": map[string]any{
			"context": map[string]any{"slot": 100},
			"value": map[string]any{
				"blockhash":            blockhash.String(),
				"lastValidBlockHeight": 250,
			},
		},
	}, seen)
	defer ts.Close()

	got, err := NewLedger(ts.URL).LatestBlockhash(context.Background())
	require.NoError(t, err)
	require.Equal(t, blockhash, got)

	call := <-seen
	require.Len(t, call.Params, 1)
	require.JSONEq(t, `{"commitment":"processed"}`, string(call.Params[0]))
}

func TestLedgerSlotAndBalance(t *testing.T) {
	ts := newRPCServer(t, map[string]any{
		"getSlot": 320000000,
		"getBalance": map[string]any{
			"context": map[string]any{"slot": 100},
			"value":   12_345,
		},
	}, nil)
	defer ts.Close()

	ledger := NewLedger(ts.URL)
	slot, err := ledger.CurrentSlot(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 320000000, slot)

	balance, err := ledger.Balance(context.Background(), solana.NewWallet().PublicKey())
	require.NoError(t, err)
	require.EqualValues(t, 12_345, balance)
}

func TestGetSolanaRpcURL(t *testing.T) {
	SolanaRpcURL = "http://localhost:8899"
	defer func() { SolanaRpcURL = "" }()
	require.Equal(t, "http://localhost:8899", GetSolanaRpcURL())
}
