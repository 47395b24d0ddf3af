package jito

import (
	"context"
	"sync"
	"testing"

	"bundler/logger"
	"bundler/types"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

func init() {
	logger.InitLogs("jito_test")
}

var testBlockhash = solana.Hash{7, 7, 7}

// newSignedTx stands in for a transaction produced by an AMM instruction builder.
func newSignedTx(t *testing.T, lamports uint64) *solana.Transaction {
	t.Helper()
	payer := solana.NewWallet().PrivateKey
	ix := system.NewTransferInstruction(lamports, payer.PublicKey(), solana.NewWallet().PublicKey()).Build()
	tx, err := solana.NewTransaction([]solana.Instruction{ix}, testBlockhash, solana.TransactionPayer(payer.PublicKey()))
	require.NoError(t, err)
	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(payer.PublicKey()) {
			return &payer
		}
		return nil
	})
	require.NoError(t, err)
	return tx
}

type fakeTipSource struct {
	accounts []string
	err      error
	calls    atomic.Int32
}

func (f *fakeTipSource) GetTipAccounts(ctx context.Context) ([]string, error) {
	f.calls.Inc()
	return f.accounts, f.err
}

type fakeBlockhashSource struct {
	hash  solana.Hash
	err   error
	calls atomic.Int32
}

func (f *fakeBlockhashSource) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	f.calls.Inc()
	return f.hash, f.err
}

type fakeSender struct {
	mu       sync.Mutex
	bundleId string
	err      error
	sent     [][]string
}

func (f *fakeSender) SendBundle(ctx context.Context, encoded []string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, encoded)
	return f.bundleId, f.err
}

func (f *fakeSender) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeSubscription struct {
	events chan types.BundleResult
	errs   chan error
	closed atomic.Bool
}

func newFakeSubscription() *fakeSubscription {
	return &fakeSubscription{
		events: make(chan types.BundleResult, 64),
		errs:   make(chan error, 64),
	}
}

func (s *fakeSubscription) Events() <-chan types.BundleResult { return s.events }
func (s *fakeSubscription) Errors() <-chan error              { return s.errs }
func (s *fakeSubscription) Close()                            { s.closed.Store(true) }

// fakeStream hands out one prepared subscription, or onSubscribe's when set.
type fakeStream struct {
	sub         *fakeSubscription
	err         error
	onSubscribe func(bundleId string) *fakeSubscription
	subscribed  atomic.String
}

func (f *fakeStream) Subscribe(bundleId string) (Subscription, error) {
	f.subscribed.Store(bundleId)
	if f.err != nil {
		return nil, f.err
	}
	if f.onSubscribe != nil {
		f.sub = f.onSubscribe(bundleId)
	}
	return f.sub, nil
}

func accepted(bundleId string, slot uint64) types.BundleResult {
	return types.BundleResult{BundleId: bundleId, Accepted: &types.AcceptedResult{Slot: slot}}
}

func rejected(bundleId, reason string) types.BundleResult {
	return types.BundleResult{BundleId: bundleId, Rejected: &types.RejectedResult{Reason: reason}}
}
