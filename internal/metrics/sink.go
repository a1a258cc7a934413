// Package metrics records tracker activity. The tracker depends only on
// Sink; the HTTP server exposes the Prometheus registry when enabled.
package metrics

import "time"

// Sink defines the interface for recording metrics.
// All methods are fire-and-forget: implementations must not block or
// propagate errors.
type Sink interface {
	// CommandCompleted records one dispatched mutation and its outcome.
	CommandCompleted(name, outcome string, duration time.Duration)
	// JobsTotal reports the size of the job list after a commit.
	JobsTotal(n int)
	// AttachmentOp records one blob store operation.
	AttachmentOp(op string, err error)
	// LeasesActive reports the number of unexpired download leases.
	LeasesActive(n int)
}

// Outcome constants for CommandCompleted.
const (
	OutcomeApplied = "applied"
	OutcomeNoop    = "noop"
	OutcomeInvalid = "invalid"
	OutcomeFailed  = "failed"
)
