package jito

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"bundler/types"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedCall struct {
	path   string
	auth   string
	method string
	params []json.RawMessage
}

// newBlockEngineServer answers every JSON-RPC call with handle's result or error object.
func newBlockEngineServer(t *testing.T, calls chan<- recordedCall, handle func(method string) (status int, result any, rpcErr *RPCError)) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     uint64            `json:"id"`
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
		}
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) {
			return
		}
		if calls != nil {
			calls <- recordedCall{path: r.URL.Path, auth: r.Header.Get("x-jito-auth"), method: req.Method, params: req.Params}
		}

		status, result, rpcErr := handle(req.Method)
		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		if rpcErr != nil {
			resp["error"] = rpcErr
		} else {
			resp["result"] = result
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestGetTipAccounts(t *testing.T) {
	accounts := tipAccounts(2)
	calls := make(chan recordedCall, 1)
	ts := newBlockEngineServer(t, calls, func(method string) (int, any, *RPCError) {
		return http.StatusOK, accounts, nil
	})
	defer ts.Close()

	auth := uuid.New()
	client, err := NewBlockEngine(ts.URL, auth.String())
	require.NoError(t, err)

	got, err := client.GetTipAccounts(context.Background())
	require.NoError(t, err)
	require.Equal(t, accounts, got)

	call := <-calls
	require.Equal(t, tipAccountsPath, call.path)
	require.Equal(t, "getTipAccounts", call.method)
	require.Equal(t, auth.String(), call.auth)
	require.Empty(t, call.params)
}

func TestNewBlockEngineRejectsBadAuth(t *testing.T) {
	_, err := NewBlockEngine("http://localhost", "not-a-uuid")
	require.Error(t, err)

	client, err := NewBlockEngine("http://localhost", "")
	require.NoError(t, err)
	require.Empty(t, client.headers)
}

func TestSendBundle(t *testing.T) {
	calls := make(chan recordedCall, 1)
	ts := newBlockEngineServer(t, calls, func(method string) (int, any, *RPCError) {
		return http.StatusOK, "2id3YC2jgwVRHwmQ3Rz4CDxtYnQnFhDzAb2mpkXdzhXr", nil
	})
	defer ts.Close()

	client, err := NewBlockEngine(ts.URL, "")
	require.NoError(t, err)

	bundleId, err := client.SendBundle(context.Background(), []string{"tx1", "tx2"})
	require.NoError(t, err)
	require.Equal(t, "2id3YC2jgwVRHwmQ3Rz4CDxtYnQnFhDzAb2mpkXdzhXr", bundleId)

	call := <-calls
	require.Equal(t, bundlesPath, call.path)
	require.Equal(t, "sendBundle", call.method)
	require.Len(t, call.params, 2)
	require.JSONEq(t, `["tx1","tx2"]`, string(call.params[0]))
	require.JSONEq(t, `{"encoding":"base64"}`, string(call.params[1]))
}

func TestSubmitSurfacesRelayErrors(t *testing.T) {
	payer := solana.NewWallet().PrivateKey
	bundle, err := BuildBundle([][]*solana.Transaction{{newSignedTx(t, 1)}}, 1, solana.NewWallet().PublicKey(), payer, testBlockhash, 5)
	require.NoError(t, err)

	cases := []struct {
		name   string
		status int
		rpcErr *RPCError
		stale  bool
	}{
		{name: "envelope error", status: http.StatusOK, rpcErr: &RPCError{Code: -32602, Message: "bundle contains an already processed transaction"}},
		{name: "stale blockhash", status: http.StatusOK, rpcErr: &RPCError{Code: -32602, Message: "Blockhash not found"}, stale: true},
		{name: "bad request body", status: http.StatusBadRequest, rpcErr: &RPCError{Code: -32602, Message: "bundle contains an expired blockhash"}, stale: true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ts := newBlockEngineServer(t, nil, func(method string) (int, any, *RPCError) {
				return c.status, nil, c.rpcErr
			})
			defer ts.Close()

			client, err := NewBlockEngine(ts.URL, "")
			require.NoError(t, err)

			_, err = NewSubmitter(client).Submit(context.Background(), bundle)
			require.ErrorIs(t, err, types.ErrSubmission)

			var subErr *types.SubmissionError
			require.ErrorAs(t, err, &subErr)
			require.Equal(t, c.rpcErr.Code, subErr.Code)
			require.Equal(t, c.rpcErr.Message, subErr.Message)
			if c.stale {
				require.ErrorIs(t, err, types.ErrStaleBlockhash)
			} else {
				require.NotErrorIs(t, err, types.ErrStaleBlockhash)
			}
		})
	}
}

func TestSubmitTransportError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := ts.URL
	ts.Close()

	payer := solana.NewWallet().PrivateKey
	bundle, err := BuildBundle(nil, 1, solana.NewWallet().PublicKey(), payer, testBlockhash, 5)
	require.NoError(t, err)

	client, err := NewBlockEngine(url, "")
	require.NoError(t, err)
	_, err = NewSubmitter(client).Submit(context.Background(), bundle)
	require.ErrorIs(t, err, types.ErrSubmission)

	var subErr *types.SubmissionError
	require.ErrorAs(t, err, &subErr)
	require.Zero(t, subErr.Code)
}

func TestSubmitEmptyBundleId(t *testing.T) {
	payer := solana.NewWallet().PrivateKey
	bundle, err := BuildBundle(nil, 1, solana.NewWallet().PublicKey(), payer, testBlockhash, 5)
	require.NoError(t, err)

	_, err = NewSubmitter(&fakeSender{}).Submit(context.Background(), bundle)
	require.ErrorIs(t, err, types.ErrSubmission)
}

func TestGetInflightBundleStatuses(t *testing.T) {
	calls := make(chan recordedCall, 1)
	ts := newBlockEngineServer(t, calls, func(method string) (int, any, *RPCError) {
		return http.StatusOK, json.RawMessage(`{
			"context": {"slot": 280999028},
			"value": [
				{"bundle_id": "a", "status": "Landed", "landed_slot": 280999000},
				{"bundle_id": "b", "status": "Pending", "landed_slot": null},
				null
			]
		}`), nil
	})
	defer ts.Close()

	client, err := NewBlockEngine(ts.URL, "")
	require.NoError(t, err)

	statuses, err := client.GetInflightBundleStatuses(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	require.Equal(t, StatusLanded, statuses[0].Status)
	require.NotNil(t, statuses[0].LandedSlot)
	require.EqualValues(t, 280999000, *statuses[0].LandedSlot)
	require.Equal(t, StatusPending, statuses[1].Status)
	require.Nil(t, statuses[1].LandedSlot)

	call := <-calls
	require.Equal(t, inflightStatusesPath, call.path)
	require.JSONEq(t, `["a","b","c"]`, string(call.params[0]))
}

func TestGetBundleStatuses(t *testing.T) {
	ts := newBlockEngineServer(t, nil, func(method string) (int, any, *RPCError) {
		return http.StatusOK, json.RawMessage(`{
			"context": {"slot": 242806119},
			"value": [
				{"bundle_id": "a", "transactions": ["s1", "s2"], "slot": 242804011, "confirmation_status": "finalized", "err": {"Ok": null}},
				{"bundle_id": "b", "transactions": ["s3"], "slot": 242804012, "confirmation_status": "confirmed", "err": {"Err": "boom"}},
				null
			]
		}`), nil
	})
	defer ts.Close()

	client, err := NewBlockEngine(ts.URL, "")
	require.NoError(t, err)

	statuses, err := client.GetBundleStatuses(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	require.EqualValues(t, 242804011, statuses[0].Slot)
	require.Equal(t, []string{"s1", "s2"}, statuses[0].Transactions)
	require.False(t, statuses[0].Failed())
	require.True(t, statuses[1].Failed())

	require.False(t, (&BundleStatus{}).Failed())
	require.False(t, (&BundleStatus{Err: json.RawMessage("null")}).Failed())
}
