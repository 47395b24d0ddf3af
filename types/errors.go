package types

import (
	"errors"
	"fmt"
)

var (
	ErrNoTipAccounts  = errors.New("no tip accounts available")
	ErrBundleTooLarge = errors.New("bundle too large")
	ErrSubmission     = errors.New("bundle submission failed")
	ErrStaleBlockhash = errors.New("stale blockhash")
)

// SubmissionError is returned when the relay cannot be reached or refuses the bundle envelope.
// It matches ErrSubmission, and ErrStaleBlockhash when the relay blamed the blockhash.
type SubmissionError struct {
	// JSON-RPC error code, 0 for transport failures
	Code    int
	Message string
	Stale   bool
	Err     error
}

func (e *SubmissionError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("bundle submission failed: %d %s", e.Code, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("bundle submission failed: %v", e.Err)
	}
	return "bundle submission failed: " + e.Message
}

func (e *SubmissionError) Unwrap() []error {
	errs := []error{ErrSubmission}
	if e.Stale {
		errs = append(errs, ErrStaleBlockhash)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}
