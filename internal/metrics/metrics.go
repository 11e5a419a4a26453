// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Document todo metrics
	IncTodoCreated()
	IncTodoUpdated()
	IncTodoDeleted()

	// Relational todo metrics
	IncTaskCreated()
	IncTaskUpdated()
	IncTaskDeleted()

	// Identity metrics
	IncIdentityVerified(source string)
	IncIdentityRejected()
	IncIdentityCacheHit()
	IncIdentityCacheMiss()

	// Store round trips
	ObserveStoreDuration(duration time.Duration)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
