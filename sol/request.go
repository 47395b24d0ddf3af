package sol

import (
	"context"
	"fmt"
	"time"

	"bundler/config"
	"bundler/logger"
	"bundler/utils"

	"github.com/cenkalti/backoff/v4"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/spf13/viper"
)

var SolanaRpcURL string

func GetSolanaRpcURL() string {
	if SolanaRpcURL != "" {
		return SolanaRpcURL
	}
	rpcUrl := viper.GetString("sol.rpc")
	if rpcUrl != "" {
		return rpcUrl
	}
	rpcUrl = viper.GetString("sol.rpc-helius")
	if rpcUrl != "" {
		return rpcUrl
	}
	logger.SolLogger.Warn("Solana RPC not set in config, using default", "url", config.DEFAULT_SOL_RPC)
	return config.DEFAULT_SOL_RPC
}

// Ledger reads the chain state a submission needs: the latest blockhash and the fee payer balance.
type Ledger struct {
	client *rpc.Client
	retry  int
}

func NewLedger(endpoint string) *Ledger {
	return &Ledger{
		client: rpc.New(endpoint),
		retry:  utils.DefaultRetryTimes,
	}
}

func (l *Ledger) withRetry(ctx context.Context, method string, op func() error) error {
	attempt := 0
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(utils.DefaultRetryInterval), uint64(l.retry-1)),
		ctx,
	)
	err := backoff.RetryNotify(func() error {
		attempt++
		return op()
	}, policy, func(err error, _ time.Duration) {
		logger.SolLogger.Warn("RPC call failed, retrying...", "method", method, "attempt", attempt, "err", err)
	})
	if err != nil {
		return fmt.Errorf("RPC %s failed: %w", method, err)
	}
	return nil
}

// LatestBlockhash fetches the most recent blockhash at processed commitment, the least
// confirmed and freshest view. Staleness after this call is the caller's concern.
func (l *Ledger) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	var out *rpc.GetLatestBlockhashResult
	err := l.withRetry(ctx, "getLatestBlockhash", func() error {
		var err error
		out, err = l.client.GetLatestBlockhash(ctx, rpc.CommitmentProcessed)
		return err
	})
	if err != nil {
		return solana.Hash{}, err
	}
	if out == nil || out.Value == nil {
		return solana.Hash{}, fmt.Errorf("RPC getLatestBlockhash returned empty result")
	}
	logger.SolLogger.Debug("Fetched latest blockhash", "blockhash", out.Value.Blockhash, "lastValidBlockHeight", out.Value.LastValidBlockHeight)
	return out.Value.Blockhash, nil
}

func (l *Ledger) CurrentSlot(ctx context.Context) (uint64, error) {
	var slot uint64
	err := l.withRetry(ctx, "getSlot", func() error {
		var err error
		slot, err = l.client.GetSlot(ctx, rpc.CommitmentFinalized)
		return err
	})
	return slot, err
}

// Balance returns the lamports held by account.
func (l *Ledger) Balance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	var out *rpc.GetBalanceResult
	err := l.withRetry(ctx, "getBalance", func() error {
		var err error
		out, err = l.client.GetBalance(ctx, account, rpc.CommitmentProcessed)
		return err
	})
	if err != nil {
		return 0, err
	}
	return out.Value, nil
}
