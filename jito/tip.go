package jito

import (
	"context"
	"fmt"

	"bundler/logger"
	"bundler/types"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/atomic"
)

type TipPolicy string

const (
	// TipPolicyFirst always takes the first account the block engine returns
	TipPolicyFirst TipPolicy = "first"
	// TipPolicyRoundRobin rotates through the returned accounts across submissions
	TipPolicyRoundRobin TipPolicy = "round-robin"
)

func ParseTipPolicy(s string) (TipPolicy, error) {
	switch TipPolicy(s) {
	case "", TipPolicyFirst:
		return TipPolicyFirst, nil
	case TipPolicyRoundRobin:
		return TipPolicyRoundRobin, nil
	}
	return "", fmt.Errorf("unknown tip policy %q", s)
}

type TipAccountSource interface {
	GetTipAccounts(ctx context.Context) ([]string, error)
}

// TipSelector picks the tip destination for a submission. Tip accounts are fetched on
// every call and never cached.
type TipSelector struct {
	source TipAccountSource
	policy TipPolicy
	next   atomic.Uint64
}

func NewTipSelector(source TipAccountSource, policy TipPolicy) *TipSelector {
	return &TipSelector{source: source, policy: policy}
}

func (s *TipSelector) Select(ctx context.Context) (solana.PublicKey, error) {
	accounts, err := s.source.GetTipAccounts(ctx)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("get tip accounts failed: %w", err)
	}
	if len(accounts) == 0 {
		return solana.PublicKey{}, types.ErrNoTipAccounts
	}

	idx := 0
	if s.policy == TipPolicyRoundRobin {
		idx = int((s.next.Inc() - 1) % uint64(len(accounts)))
	}

	tipAccount, err := solana.PublicKeyFromBase58(accounts[idx])
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid tip account %q: %w", accounts[idx], err)
	}
	logger.JitoLogger.Info("Selected tip account", "tipAccount", tipAccount, "policy", s.policy, "available", len(accounts))
	return tipAccount, nil
}
