package types

import "time"

// BundleResult is a single event from the relay's result stream.
// Exactly one of Accepted or Rejected is set.
type BundleResult struct {
	BundleId string
	Accepted *AcceptedResult
	Rejected *RejectedResult
}

type AcceptedResult struct {
	Slot uint64
}

type RejectedResult struct {
	Reason string
}

type OutcomeStatus uint8

const (
	OutcomePending OutcomeStatus = iota
	OutcomeAccepted
	OutcomeRejected
	OutcomeTimedOut
)

func (s OutcomeStatus) String() string {
	switch s {
	case OutcomePending:
		return "pending"
	case OutcomeAccepted:
		return "accepted"
	case OutcomeRejected:
		return "rejected"
	case OutcomeTimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

// BundleOutcome is the resolved result of one submission. Only OutcomeAccepted and
// OutcomeTimedOut are ever returned to callers.
type BundleOutcome struct {
	BundleId string
	Status   OutcomeStatus
	// Slot the bundle landed in, set when Status is OutcomeAccepted
	Slot uint64
	// Rejection reasons observed before resolution, in arrival order
	Rejections []string
	// Result stream errors seen while waiting; they never change the outcome
	StreamErrors []string
	Waited       time.Duration
}

func (o BundleOutcome) IsAccepted() bool {
	return o.Status == OutcomeAccepted
}

// Count is 1 for an accepted bundle and 0 otherwise.
func (o BundleOutcome) Count() int {
	if o.IsAccepted() {
		return 1
	}
	return 0
}
