package state

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	apperr "github.com/habitkit/habitkit/internal/errors"
	"github.com/habitkit/habitkit/internal/models"
	"github.com/habitkit/habitkit/internal/storage"
)

// blockingProvider parks completion writes until released, so tests can hold
// an operation in flight deterministically.
type blockingProvider struct {
	storage.Provider
	gate chan struct{}
}

func (p *blockingProvider) AddCompletion(c models.Completion) error {
	<-p.gate
	return p.Provider.AddCompletion(c)
}

// failingProvider rejects completion writes after the optimistic apply.
type failingProvider struct {
	storage.Provider
}

func (p *failingProvider) AddCompletion(c models.Completion) error {
	return errors.New("disk full")
}

func newTestProvider(t *testing.T) storage.Provider {
	provider := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err := provider.Init(); err != nil {
		t.Fatalf("failed to initialize provider: %v", err)
	}
	t.Cleanup(func() { provider.Close() })
	return provider
}

func TestOperationKeyGuardRejectsConcurrentMutation(t *testing.T) {
	blocking := &blockingProvider{Provider: newTestProvider(t), gate: make(chan struct{})}
	st := New(blocking, WithClock(func() time.Time { return testNow }))
	if err := st.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	habit, err := st.AddHabit(draftHabit("Guarded"))
	if err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}

	// First toggle's durable write is parked behind the gate.
	if _, err := st.ToggleCompletion(habit.ID, "2024-06-12"); err != nil {
		t.Fatalf("first toggle failed: %v", err)
	}

	// Same (habit, day) while in flight: rejected without touching state.
	if _, err := st.ToggleCompletion(habit.ID, "2024-06-12"); !errors.Is(err, apperr.ErrOperationInProgress) {
		t.Errorf("expected ErrOperationInProgress, got %v", err)
	}
	if got := len(st.CompletionsOn("2024-06-12")); got != 1 {
		t.Errorf("expected rejected mutation to leave one record, got %d", got)
	}

	close(blocking.gate)
	st.Flush()

	// After settling, the same pair accepts mutations again.
	if _, err := st.ToggleCompletion(habit.ID, "2024-06-12"); err != nil {
		t.Errorf("expected toggle to succeed after flush, got %v", err)
	}
	st.Close()
}

func TestOperationGuardAllowsDistinctKeys(t *testing.T) {
	blocking := &blockingProvider{Provider: newTestProvider(t), gate: make(chan struct{})}
	st := New(blocking, WithClock(func() time.Time { return testNow }))
	if err := st.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	habit, err := st.AddHabit(draftHabit("Busy"))
	if err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}

	if _, err := st.ToggleCompletion(habit.ID, "2024-06-12"); err != nil {
		t.Fatalf("first toggle failed: %v", err)
	}
	// Different day while the first write is parked: distinct key, accepted.
	if _, err := st.ToggleCompletion(habit.ID, "2024-06-11"); err != nil {
		t.Errorf("expected distinct-day toggle to pass the guard, got %v", err)
	}

	close(blocking.gate)
	st.Flush()
	st.Close()
}

func TestPersistenceFailureKeepsOptimisticValue(t *testing.T) {
	failing := &failingProvider{Provider: newTestProvider(t)}
	st := New(failing, WithClock(func() time.Time { return testNow }))
	if err := st.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	habit, err := st.AddHabit(draftHabit("Fragile"))
	if err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}
	st.Flush()

	rec, err := st.ToggleCompletion(habit.ID, "2024-06-12")
	if err != nil {
		t.Fatalf("ToggleCompletion failed: %v", err)
	}
	st.Flush()

	// The optimistic value stays visible and the entity is marked failed.
	if got := len(st.CompletionsOn("2024-06-12")); got != 1 {
		t.Errorf("expected optimistic record to remain, got %d", got)
	}
	if st.EntityStatus(rec.ID) != StatusFailed {
		t.Errorf("expected failed status, got %v", st.EntityStatus(rec.ID))
	}

	// The failure surfaces on the error channel as a PersistenceError.
	select {
	case opErr := <-st.Errors():
		var perr *apperr.PersistenceError
		if !errors.As(opErr, &perr) {
			t.Errorf("expected PersistenceError, got %v", opErr)
		}
	default:
		t.Fatal("expected an error on the channel")
	}

	// Reload reconciles with durable truth: the failed write is retracted.
	if err := st.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if got := len(st.CompletionsOn("2024-06-12")); got != 0 {
		t.Errorf("expected reload to drop the unpersisted record, got %d", got)
	}
	st.Close()
}
