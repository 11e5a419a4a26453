package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

func (n *NoopRecorder) IncTodoCreated() {}
func (n *NoopRecorder) IncTodoUpdated() {}
func (n *NoopRecorder) IncTodoDeleted() {}
func (n *NoopRecorder) IncTaskCreated() {}
func (n *NoopRecorder) IncTaskUpdated() {}
func (n *NoopRecorder) IncTaskDeleted() {}
func (n *NoopRecorder) IncIdentityVerified(string) {}
func (n *NoopRecorder) IncIdentityRejected() {}
func (n *NoopRecorder) IncIdentityCacheHit() {}
func (n *NoopRecorder) IncIdentityCacheMiss() {}
func (n *NoopRecorder) ObserveStoreDuration(time.Duration) {}
