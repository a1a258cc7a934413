package metrics

import "time"

// NoopSink is used when metrics are disabled to avoid nil checks.
type NoopSink struct{}

// NewNoopSink returns a no-op metrics sink.
func NewNoopSink() *NoopSink {
	return &NoopSink{}
}

func (n *NoopSink) CommandCompleted(name, outcome string, duration time.Duration) {}
func (n *NoopSink) JobsTotal(count int)                                           {}
func (n *NoopSink) AttachmentOp(op string, err error)                             {}
func (n *NoopSink) LeasesActive(count int)                                        {}
