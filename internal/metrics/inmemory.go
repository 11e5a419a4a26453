package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	TodosCreated uint64
	TodosUpdated uint64
	TodosDeleted uint64

	TasksCreated uint64
	TasksUpdated uint64
	TasksDeleted uint64

	IdentityVerifiedToken   uint64
	IdentityVerifiedSession uint64
	IdentityVerifiedHeader  uint64
	IdentityRejected        uint64
	IdentityCacheHits       uint64
	IdentityCacheMisses     uint64

	StoreDurationCount   uint64
	StoreDurationTotalNs int64
}

// InMemoryRecorder stores metrics in memory. It backs the /metrics
// endpoint and tests.
type InMemoryRecorder struct {
	todosCreated uint64
	todosUpdated uint64
	todosDeleted uint64

	tasksCreated uint64
	tasksUpdated uint64
	tasksDeleted uint64

	verifiedToken   uint64
	verifiedSession uint64
	verifiedHeader  uint64
	rejected        uint64
	cacheHits       uint64
	cacheMisses     uint64

	storeCount   uint64
	storeTotalNs int64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		TodosCreated:            atomic.LoadUint64(&m.todosCreated),
		TodosUpdated:            atomic.LoadUint64(&m.todosUpdated),
		TodosDeleted:            atomic.LoadUint64(&m.todosDeleted),
		TasksCreated:            atomic.LoadUint64(&m.tasksCreated),
		TasksUpdated:            atomic.LoadUint64(&m.tasksUpdated),
		TasksDeleted:            atomic.LoadUint64(&m.tasksDeleted),
		IdentityVerifiedToken:   atomic.LoadUint64(&m.verifiedToken),
		IdentityVerifiedSession: atomic.LoadUint64(&m.verifiedSession),
		IdentityVerifiedHeader:  atomic.LoadUint64(&m.verifiedHeader),
		IdentityRejected:        atomic.LoadUint64(&m.rejected),
		IdentityCacheHits:       atomic.LoadUint64(&m.cacheHits),
		IdentityCacheMisses:     atomic.LoadUint64(&m.cacheMisses),
		StoreDurationCount:      atomic.LoadUint64(&m.storeCount),
		StoreDurationTotalNs:    atomic.LoadInt64(&m.storeTotalNs),
	}
}

// IncTodoCreated increments the document todo created counter.
func (m *InMemoryRecorder) IncTodoCreated() { atomic.AddUint64(&m.todosCreated, 1) }

// IncTodoUpdated increments the document todo updated counter.
func (m *InMemoryRecorder) IncTodoUpdated() { atomic.AddUint64(&m.todosUpdated, 1) }

// IncTodoDeleted increments the document todo deleted counter.
func (m *InMemoryRecorder) IncTodoDeleted() { atomic.AddUint64(&m.todosDeleted, 1) }

// IncTaskCreated increments the relational todo created counter.
func (m *InMemoryRecorder) IncTaskCreated() { atomic.AddUint64(&m.tasksCreated, 1) }

// IncTaskUpdated increments the relational todo updated counter.
func (m *InMemoryRecorder) IncTaskUpdated() { atomic.AddUint64(&m.tasksUpdated, 1) }

// IncTaskDeleted increments the relational todo deleted counter.
func (m *InMemoryRecorder) IncTaskDeleted() { atomic.AddUint64(&m.tasksDeleted, 1) }

// IncIdentityVerified counts a resolved identity by source.
// Unknown sources are ignored.
func (m *InMemoryRecorder) IncIdentityVerified(source string) {
	switch source {
	case "token":
		atomic.AddUint64(&m.verifiedToken, 1)
	case "session":
		atomic.AddUint64(&m.verifiedSession, 1)
	case "header":
		atomic.AddUint64(&m.verifiedHeader, 1)
	}
}

// IncIdentityRejected counts a rejected credential.
func (m *InMemoryRecorder) IncIdentityRejected() { atomic.AddUint64(&m.rejected, 1) }

// IncIdentityCacheHit increments the verified token cache hit counter.
func (m *InMemoryRecorder) IncIdentityCacheHit() { atomic.AddUint64(&m.cacheHits, 1) }

// IncIdentityCacheMiss increments the verified token cache miss counter.
func (m *InMemoryRecorder) IncIdentityCacheMiss() { atomic.AddUint64(&m.cacheMisses, 1) }

// ObserveStoreDuration records one store round trip.
func (m *InMemoryRecorder) ObserveStoreDuration(duration time.Duration) {
	atomic.AddUint64(&m.storeCount, 1)
	atomic.AddInt64(&m.storeTotalNs, duration.Nanoseconds())
}
