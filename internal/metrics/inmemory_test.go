package metrics

import (
	"sync"
	"testing"
	"time"
)

func TestInMemoryRecorder_Counters(t *testing.T) {
	t.Parallel()

	m := NewInMemory()
	m.IncTodoCreated()
	m.IncTodoCreated()
	m.IncTodoDeleted()
	m.IncTaskUpdated()
	m.IncIdentityVerified("token")
	m.IncIdentityVerified("session")
	m.IncIdentityVerified("unknown")
	m.IncIdentityRejected()
	m.ObserveStoreDuration(1500 * time.Millisecond)

	snap := m.Snapshot()
	if snap.TodosCreated != 2 || snap.TodosDeleted != 1 || snap.TasksUpdated != 1 {
		t.Errorf("unexpected todo/task counters: %+v", snap)
	}
	if snap.IdentityVerifiedToken != 1 || snap.IdentityVerifiedSession != 1 || snap.IdentityVerifiedHeader != 0 {
		t.Errorf("unexpected identity counters: %+v", snap)
	}
	if snap.IdentityRejected != 1 {
		t.Errorf("IdentityRejected = %d, want 1", snap.IdentityRejected)
	}
	if snap.StoreDurationCount != 1 || snap.StoreDurationTotalNs != int64(1500*time.Millisecond) {
		t.Errorf("unexpected store duration: %+v", snap)
	}
}

func TestInMemoryRecorder_Concurrent(t *testing.T) {
	t.Parallel()

	m := NewInMemory()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.IncTaskCreated()
			m.IncIdentityCacheHit()
		}()
	}
	wg.Wait()

	snap := m.Snapshot()
	if snap.TasksCreated != 50 || snap.IdentityCacheHits != 50 {
		t.Errorf("lost updates: %+v", snap)
	}
}
