package jito

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"bundler/config"
	"bundler/logger"
	"bundler/types"
	"bundler/utils"

	MapSet "github.com/deckarep/golang-set/v2"
	"golang.org/x/sync/errgroup"
)

var ErrStreamClosed = errors.New("bundle result stream closed")

// Subscription delivers result events for one bundle id until Close is called.
type Subscription interface {
	Events() <-chan types.BundleResult
	// Errors carries transport problems of the underlying stream. They are diagnostics only.
	Errors() <-chan error
	// Close detaches the subscription from the stream. Safe to call more than once.
	Close()
}

// ResultStream is the relay's push-style result stream.
type ResultStream interface {
	Subscribe(bundleId string) (Subscription, error)
}

type StatusSource interface {
	GetInflightBundleStatuses(ctx context.Context, bundleIds []string) ([]InflightBundleStatus, error)
}

// ResultHub turns inflight status polling into a process-wide push stream. One poll loop
// serves every subscription; only bundle ids with at least one live subscription are polled.
type ResultHub struct {
	source    StatusSource
	interval  time.Duration
	batchSize int

	mu     sync.Mutex
	subs   map[string]MapSet.Set[*hubSubscription]
	latest map[string]types.BundleResult
	seen   *utils.BundleCache
	closed bool
	cancel context.CancelFunc
	done   chan struct{}
}

func NewResultHub(source StatusSource, interval time.Duration) *ResultHub {
	if interval <= 0 {
		interval = config.JITO_STATUS_POLL_INTERVAL
	}
	return &ResultHub{
		source:    source,
		interval:  interval,
		batchSize: config.JITO_STATUS_BATCH_SIZE,
		subs:      make(map[string]MapSet.Set[*hubSubscription]),
		latest:    make(map[string]types.BundleResult),
		seen:      utils.NewBundleCache(config.JITO_RESULT_DEDUP_SIZE),
	}
}

// Start runs the poll loop until ctx is done or Stop is called.
func (h *ResultHub) Start(ctx context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancel != nil || h.closed {
		return
	}
	ctx, h.cancel = context.WithCancel(ctx)
	h.done = make(chan struct{})
	go h.run(ctx, h.done)
}

// Stop ends the poll loop and closes every live subscription.
func (h *ResultHub) Stop() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	cancel, done := h.cancel, h.done
	var all []*hubSubscription
	for _, set := range h.subs {
		all = append(all, set.ToSlice()...)
	}
	h.subs = make(map[string]MapSet.Set[*hubSubscription])
	h.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	for _, s := range all {
		s.closeChannels()
	}
}

func (h *ResultHub) Subscribe(bundleId string) (Subscription, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, ErrStreamClosed
	}

	sub := &hubSubscription{
		hub:      h,
		bundleId: bundleId,
		events:   make(chan types.BundleResult, config.JITO_SUBSCRIPTION_BUFFER),
		errs:     make(chan error, config.JITO_SUBSCRIPTION_BUFFER),
	}
	set, ok := h.subs[bundleId]
	if !ok {
		set = MapSet.NewThreadUnsafeSet[*hubSubscription]()
		h.subs[bundleId] = set
		// A bundle id tracked again starts from a clean slate
		for _, status := range []string{StatusLanded, StatusFailed, StatusInvalid} {
			h.seen.Remove(seenKey(bundleId, status))
		}
	}
	set.Add(sub)

	// Late subscribers still learn what was already published for this id
	if ev, ok := h.latest[bundleId]; ok {
		sub.events <- ev
	}
	return sub, nil
}

// TrackedIds returns the bundle ids currently polled, sorted.
func (h *ResultHub) TrackedIds() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	ids := make([]string, 0, len(h.subs))
	for id := range h.subs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (h *ResultHub) detach(sub *hubSubscription) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subs[sub.bundleId]
	if !ok || !set.Contains(sub) {
		return false
	}
	set.Remove(sub)
	if set.Cardinality() == 0 {
		delete(h.subs, sub.bundleId)
		delete(h.latest, sub.bundleId)
	}
	return true
}

func (h *ResultHub) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.poll(ctx)
		}
	}
}

func (h *ResultHub) poll(ctx context.Context) {
	ids := h.TrackedIds()
	if len(ids) == 0 {
		return
	}

	chunks := make([][]string, 0, (len(ids)+h.batchSize-1)/h.batchSize)
	for i := 0; i < len(ids); i += h.batchSize {
		chunks = append(chunks, ids[i:min(i+h.batchSize, len(ids))])
	}

	results := make([][]InflightBundleStatus, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			statuses, err := h.source.GetInflightBundleStatuses(gctx, chunk)
			if err != nil {
				return err
			}
			results[i] = statuses
			return nil
		})
	}
	if err := g.Wait(); err != nil && ctx.Err() == nil {
		logger.JitoLogger.Warn("Poll inflight bundle statuses failed", "tracked", len(ids), "err", err)
		h.publishError(fmt.Errorf("poll inflight bundle statuses failed: %w", err))
	}

	for _, statuses := range results {
		for _, s := range statuses {
			h.publishStatus(s)
		}
	}
}

func seenKey(bundleId, status string) string {
	return bundleId + ":" + status
}

// statusToResult maps an inflight status to a stream event. Pending produces no event.
func statusToResult(s InflightBundleStatus) (types.BundleResult, bool) {
	switch s.Status {
	case StatusLanded:
		var slot uint64
		if s.LandedSlot != nil {
			slot = *s.LandedSlot
		}
		return types.BundleResult{BundleId: s.BundleId, Accepted: &types.AcceptedResult{Slot: slot}}, true
	case StatusFailed:
		return types.BundleResult{BundleId: s.BundleId, Rejected: &types.RejectedResult{Reason: "bundle failed to land"}}, true
	case StatusInvalid:
		return types.BundleResult{BundleId: s.BundleId, Rejected: &types.RejectedResult{Reason: "bundle invalid or unknown to the block engine"}}, true
	}
	return types.BundleResult{}, false
}

func (h *ResultHub) publishStatus(s InflightBundleStatus) {
	ev, ok := statusToResult(s)
	if !ok {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subs[s.BundleId]
	if !ok {
		return
	}
	key := seenKey(s.BundleId, s.Status)
	if !h.seen.Add(key) {
		return
	}
	h.latest[s.BundleId] = ev

	delivered := true
	set.Each(func(sub *hubSubscription) bool {
		select {
		case sub.events <- ev:
		default:
			delivered = false
			logger.JitoLogger.Warn("Subscription buffer full, result will be published again", "bundleId", s.BundleId, "status", s.Status)
		}
		return false
	})
	if !delivered {
		h.seen.Remove(key)
	}
}

func (h *ResultHub) publishError(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, set := range h.subs {
		set.Each(func(sub *hubSubscription) bool {
			select {
			case sub.errs <- err:
			default:
			}
			return false
		})
	}
}

type hubSubscription struct {
	hub      *ResultHub
	bundleId string
	events   chan types.BundleResult
	errs     chan error
	once     sync.Once
}

func (s *hubSubscription) Events() <-chan types.BundleResult {
	return s.events
}

func (s *hubSubscription) Errors() <-chan error {
	return s.errs
}

func (s *hubSubscription) Close() {
	if s.hub.detach(s) {
		s.closeChannels()
	}
}

func (s *hubSubscription) closeChannels() {
	s.once.Do(func() {
		close(s.events)
		close(s.errs)
	})
}
