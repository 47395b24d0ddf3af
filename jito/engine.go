package jito

import (
	"context"
	"fmt"
	"time"

	"bundler/logger"
	"bundler/types"

	"github.com/gagliardetto/solana-go"
)

type BlockhashSource interface {
	LatestBlockhash(ctx context.Context) (solana.Hash, error)
}

// SubmissionRecorder persists resolved submissions. See db.Database.
type SubmissionRecorder interface {
	InsertBundleSubmissions(rows types.BundleSubmissions) error
}

// Engine submits transaction groups as one atomic bundle and reports whether it landed.
type Engine struct {
	tips      *TipSelector
	ledger    BlockhashSource
	submitter *Submitter
	awaiter   *ResultAwaiter
	feePayer  solana.PrivateKey
	limit     int
	recorder  SubmissionRecorder
}

func NewEngine(tips *TipSelector, ledger BlockhashSource, submitter *Submitter, awaiter *ResultAwaiter, feePayer solana.PrivateKey, limit int) *Engine {
	return &Engine{
		tips:      tips,
		ledger:    ledger,
		submitter: submitter,
		awaiter:   awaiter,
		feePayer:  feePayer,
		limit:     limit,
	}
}

// WithRecorder stores every resolved submission through r.
func (e *Engine) WithRecorder(r SubmissionRecorder) *Engine {
	e.recorder = r
	return e
}

// SubmitAtomic selects a tip account, fetches a processed blockhash, builds the bundle,
// submits it and waits for the result. Any failure before submission is returned as is.
// Once the relay has the bundle the wait always runs to its own timeout; cancelling ctx
// does not cut it short.
func (e *Engine) SubmitAtomic(ctx context.Context, groups [][]*solana.Transaction, tipLamports uint64) (types.BundleOutcome, error) {
	tipAccount, err := e.tips.Select(ctx)
	if err != nil {
		return types.BundleOutcome{}, fmt.Errorf("select tip account failed: %w", err)
	}

	blockhash, err := e.ledger.LatestBlockhash(ctx)
	if err != nil {
		return types.BundleOutcome{}, fmt.Errorf("get latest blockhash failed: %w", err)
	}

	bundle, err := BuildBundle(groups, tipLamports, tipAccount, e.feePayer, blockhash, e.limit)
	if err != nil {
		return types.BundleOutcome{}, fmt.Errorf("build bundle failed: %w", err)
	}

	bundleId, err := e.submitter.Submit(ctx, bundle)
	if err != nil {
		return types.BundleOutcome{}, err
	}
	submittedAt := time.Now()

	// Await only returns an error when its context ends, which cannot happen here
	outcome, _ := e.awaiter.Await(context.WithoutCancel(ctx), bundleId)
	logger.JitoLogger.Info("Bundle resolved",
		"bundleId", bundleId,
		"status", outcome.Status.String(),
		"slot", outcome.Slot,
		"rejections", len(outcome.Rejections),
		"streamErrors", len(outcome.StreamErrors),
		"waited", outcome.Waited.String(),
	)

	e.record(bundle, tipAccount, tipLamports, submittedAt, outcome)
	return outcome, nil
}

func (e *Engine) record(bundle *types.Bundle, tipAccount solana.PublicKey, tipLamports uint64, submittedAt time.Time, outcome types.BundleOutcome) {
	if e.recorder == nil {
		return
	}
	row := &types.BundleSubmission{
		BundleId:    outcome.BundleId,
		Timestamp:   submittedAt,
		TipAccount:  tipAccount.String(),
		TipLamports: tipLamports,
		TxCount:     uint32(bundle.Len()),
		Signatures:  bundle.Signatures(),
		Status:      outcome.Status.String(),
		Slot:        outcome.Slot,
		Rejections:  uint32(len(outcome.Rejections)),
		WaitMs:      uint64(outcome.Waited.Milliseconds()),
	}
	if err := e.recorder.InsertBundleSubmissions(types.BundleSubmissions{row}); err != nil {
		logger.JitoLogger.Error("Insert bundle submission failed", "bundleId", outcome.BundleId, "err", err)
	}
}
