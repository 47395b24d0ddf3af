package jito

import (
	"context"
	"errors"

	"bundler/logger"
	"bundler/metrics"
	"bundler/types"
	"bundler/utils"
)

type BundleSender interface {
	SendBundle(ctx context.Context, encoded []string) (string, error)
}

// Submitter hands a built bundle to the relay. Acceptance into the ledger is decided
// separately by a ResultAwaiter.
type Submitter struct {
	sender BundleSender
}

func NewSubmitter(sender BundleSender) *Submitter {
	return &Submitter{sender: sender}
}

// Submit returns the bundle id assigned by the relay, or a *types.SubmissionError.
func (s *Submitter) Submit(ctx context.Context, bundle *types.Bundle) (string, error) {
	encoded, err := bundle.EncodeBase64()
	if err != nil {
		return "", &types.SubmissionError{Message: "encode bundle", Err: err}
	}

	bundleId, err := s.sender.SendBundle(ctx, encoded)
	if err != nil {
		metrics.BundleSubmitFailures.Inc()
		subErr := toSubmissionError(err)
		logger.JitoLogger.Error("Send bundle failed", "txCount", bundle.Len(), "staleBlockhash", subErr.Stale, "err", subErr)
		return "", subErr
	}
	if bundleId == "" {
		metrics.BundleSubmitFailures.Inc()
		return "", &types.SubmissionError{Message: "relay returned an empty bundle id"}
	}

	metrics.BundlesSubmitted.Inc()
	logger.JitoLogger.Info("Bundle sent", "bundleId", bundleId, "txCount", bundle.Len(), "signatures", bundle.Signatures())
	return bundleId, nil
}

func toSubmissionError(err error) *types.SubmissionError {
	var rpcErr *RPCError
	if errors.As(err, &rpcErr) {
		return &types.SubmissionError{
			Code:    rpcErr.Code,
			Message: rpcErr.Message,
			Stale:   utils.IsStaleBlockhashMessage(rpcErr.Message),
			Err:     err,
		}
	}
	return &types.SubmissionError{
		Message: err.Error(),
		Stale:   utils.IsStaleBlockhashMessage(err.Error()),
		Err:     err,
	}
}
