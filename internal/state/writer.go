package state

import (
	"sync"

	apperr "github.com/habitkit/habitkit/internal/errors"
	"github.com/habitkit/habitkit/internal/logger"
)

// Status tracks where an entity's latest optimistic mutation stands with
// respect to the durable store.
type Status int

const (
	// StatusConfirmed means the durable store matches the in-memory value.
	StatusConfirmed Status = iota
	// StatusPending means the optimistic value is visible but the durable
	// write has not settled yet.
	StatusPending
	// StatusFailed means the durable write failed; the optimistic value may
	// diverge from durable truth until the caller reconciles (Reload).
	StatusFailed
)

// OpError reports an asynchronous persistence failure for one operation.
type OpError struct {
	Key string
	Err error
}

func (e OpError) Error() string { return e.Key + ": " + e.Err.Error() }

func (e OpError) Unwrap() error { return e.Err }

// writer serializes durable writes behind the optimistic in-memory state.
// Operation keys guard against duplicate concurrent mutations of the same
// entity: a second enqueue under an in-flight key is rejected outright.
type writer struct {
	mu       sync.Mutex
	inflight map[string]struct{}
	status   map[string]Status

	jobs chan job
	errs chan OpError
	wg   sync.WaitGroup
}

type job struct {
	key      string
	entityID string
	persist  func() error
}

func newWriter() *writer {
	w := &writer{
		inflight: make(map[string]struct{}),
		status:   make(map[string]Status),
		jobs:     make(chan job, 64),
		errs:     make(chan OpError, 64),
	}
	go w.run()
	return w
}

// reserve claims the operation key, or fails when the same operation is
// already in flight. Callers must reserve before touching observable state.
func (w *writer) reserve(key string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, busy := w.inflight[key]; busy {
		return apperr.ErrOperationInProgress
	}
	w.inflight[key] = struct{}{}
	return nil
}

// release drops a reserved key without enqueueing a write. Used when the
// optimistic apply itself fails after reservation.
func (w *writer) release(key string) {
	w.mu.Lock()
	delete(w.inflight, key)
	w.mu.Unlock()
}

// enqueue hands the durable write to the worker. The key must have been
// reserved. entityID may be empty for operations with no single subject.
func (w *writer) enqueue(key, entityID string, persist func() error) {
	w.mu.Lock()
	if entityID != "" {
		w.status[entityID] = StatusPending
	}
	w.mu.Unlock()

	w.wg.Add(1)
	w.jobs <- job{key: key, entityID: entityID, persist: persist}
}

func (w *writer) run() {
	for j := range w.jobs {
		err := j.persist()

		w.mu.Lock()
		delete(w.inflight, j.key)
		if j.entityID != "" {
			if err != nil {
				w.status[j.entityID] = StatusFailed
			} else {
				w.status[j.entityID] = StatusConfirmed
			}
		}
		w.mu.Unlock()

		if err != nil {
			logger.Error("Durable write failed", "op", j.key, "error", err)
			select {
			case w.errs <- OpError{Key: j.key, Err: apperr.Persistence(j.key, err)}:
			default:
				// Nobody is draining the error channel; drop rather than
				// stall the write path.
				logger.Warn("Dropping persistence error, channel full", "op", j.key)
			}
		}
		w.wg.Done()
	}
}

// entityStatus reports the persistence status of the entity's latest
// mutation. Unknown entities are confirmed by definition.
func (w *writer) entityStatus(entityID string) Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status[entityID]
}

// flush blocks until every enqueued durable write has settled.
func (w *writer) flush() {
	w.wg.Wait()
}

// close drains outstanding writes and stops the worker.
func (w *writer) close() {
	w.wg.Wait()
	close(w.jobs)
	close(w.errs)
}
