package jito

import (
	"context"
	"sync"
	"time"

	"bundler/config"
	"bundler/logger"
	"bundler/metrics"
	"bundler/types"

	"go.uber.org/atomic"
)

// outcomeCell is a single-assignment result. Whoever wins the compare-and-set on
// resolved writes the outcome; everyone else is ignored.
type outcomeCell struct {
	resolved *atomic.Bool
	done     chan struct{}
	outcome  types.BundleOutcome
	err      error
}

func newOutcomeCell() *outcomeCell {
	return &outcomeCell{
		resolved: atomic.NewBool(false),
		done:     make(chan struct{}),
	}
}

func (c *outcomeCell) resolve(outcome types.BundleOutcome, err error) bool {
	if !c.resolved.CompareAndSwap(false, true) {
		return false
	}
	c.outcome = outcome
	c.err = err
	close(c.done)
	return true
}

// ResultAwaiter waits for the relay to report a bundle as accepted, bounded by a timeout.
//
// Rejections do not end the wait: the block engine may retry a bundle in later leader
// slots, so only an acceptance or the timeout resolves it. Stream errors are logged and
// returned as diagnostics on the outcome, never as errors.
type ResultAwaiter struct {
	stream  ResultStream
	timeout time.Duration
}

func NewResultAwaiter(stream ResultStream, timeout time.Duration) *ResultAwaiter {
	if timeout <= 0 {
		timeout = config.BUNDLE_RESULT_TIMEOUT
	}
	return &ResultAwaiter{stream: stream, timeout: timeout}
}

func (a *ResultAwaiter) Timeout() time.Duration {
	return a.timeout
}

// Await resolves to OutcomeAccepted or OutcomeTimedOut. The only error it returns is
// ctx.Err() when ctx ends before either happens.
func (a *ResultAwaiter) Await(ctx context.Context, bundleId string) (types.BundleOutcome, error) {
	start := time.Now()
	cell := newOutcomeCell()

	timer := time.AfterFunc(a.timeout, func() {
		if cell.resolve(types.BundleOutcome{BundleId: bundleId, Status: types.OutcomeTimedOut}, nil) {
			logger.JitoLogger.Warn("No accepted result before timeout", "bundleId", bundleId, "timeout", a.timeout.String())
		}
	})
	defer timer.Stop()

	var (
		wg    sync.WaitGroup
		watch watchResult
	)
	sub, err := a.stream.Subscribe(bundleId)
	if err != nil {
		metrics.ResultStreamErrors.Inc()
		logger.JitoLogger.Error("Subscribe to bundle results failed, waiting for timeout", "bundleId", bundleId, "err", err)
		watch.streamErrors = append(watch.streamErrors, err.Error())
	} else {
		defer sub.Close()
		wg.Add(1)
		go func() {
			defer wg.Done()
			watch = a.watch(bundleId, sub, cell)
		}()
	}

	select {
	case <-cell.done:
	case <-ctx.Done():
		cell.resolve(types.BundleOutcome{BundleId: bundleId, Status: types.OutcomePending}, ctx.Err())
		// The timer may have won the race; wait until its outcome is written
		<-cell.done
	}
	wg.Wait()

	outcome := cell.outcome
	outcome.Rejections = watch.rejections
	outcome.StreamErrors = watch.streamErrors
	outcome.Waited = time.Since(start)
	if cell.err == nil {
		metrics.BundleOutcomes.WithLabelValues(outcome.Status.String()).Inc()
		metrics.BundleAwaitSeconds.Observe(outcome.Waited.Seconds())
	}
	return outcome, cell.err
}

type watchResult struct {
	rejections   []string
	streamErrors []string
}

// watch consumes sub until the cell is resolved, resolving it on the first acceptance.
func (a *ResultAwaiter) watch(bundleId string, sub Subscription, cell *outcomeCell) watchResult {
	var res watchResult
	events, errs := sub.Events(), sub.Errors()

	for {
		select {
		case <-cell.done:
			return res

		case ev, ok := <-events:
			if !ok {
				logger.JitoLogger.Warn("Bundle result stream closed before resolution", "bundleId", bundleId)
				events = nil
				continue
			}
			if ev.BundleId != bundleId {
				continue
			}
			if cell.resolved.Load() {
				return res
			}

			if ev.Accepted != nil {
				accepted := types.BundleOutcome{BundleId: bundleId, Status: types.OutcomeAccepted, Slot: ev.Accepted.Slot}
				if cell.resolve(accepted, nil) {
					logger.JitoLogger.Info("Bundle accepted", "bundleId", bundleId, "slot", ev.Accepted.Slot)
				}
				return res
			}
			if ev.Rejected != nil {
				metrics.BundleRejectionEvents.Inc()
				res.rejections = append(res.rejections, ev.Rejected.Reason)
				logger.JitoLogger.Info("Bundle rejected, still waiting", "bundleId", bundleId, "reason", ev.Rejected.Reason, "rejections", len(res.rejections))
			}

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			metrics.ResultStreamErrors.Inc()
			res.streamErrors = append(res.streamErrors, err.Error())
			logger.JitoLogger.Warn("Bundle result stream error", "bundleId", bundleId, "err", err)
		}
	}
}
