package auth

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/andhikapraa/google-calendar-tasks-mcp/internal/logging"
)

const defaultShutdownWait = 3 * time.Second

// OperationStatus describes where a tracked operation is in its lifecycle.
type OperationStatus string

const (
	StatusPending    OperationStatus = "pending"
	StatusInProgress OperationStatus = "in-progress"
	StatusCompleted  OperationStatus = "completed"
	StatusFailed     OperationStatus = "failed"
)

// Operation is a tracked in-flight credential operation. It exists purely for
// shutdown coordination and diagnostics; the operation's own result does not
// depend on it.
type Operation struct {
	ID      string
	Started time.Time

	mu        sync.Mutex
	status    OperationStatus
	resources []string
	done      chan struct{}
}

// Status returns the current lifecycle status.
func (o *Operation) Status() OperationStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

// AddResource records a scratch-file path owned by this operation so it can
// be reclaimed if the operation outlives the shutdown deadline.
func (o *Operation) AddResource(path string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.resources = append(o.resources, path)
}

// Registry tracks in-flight credential operations so shutdown can wait for
// them, and refuses new operations once shutdown has begun.
type Registry struct {
	mu     sync.Mutex
	ops    map[string]*Operation
	admit  func() bool
	temps  *TempTracker
	logger logging.Logger
}

// NewRegistry creates a registry. admit is consulted on every Begin; it
// returns false once the owning manager has left the running phase. temps is
// used to force-release scratch files of operations that miss the shutdown
// deadline.
func NewRegistry(admit func() bool, temps *TempTracker, logger logging.Logger) *Registry {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	return &Registry{
		ops:    make(map[string]*Operation),
		admit:  admit,
		temps:  temps,
		logger: logger,
	}
}

// Begin registers a new operation under id. It fails with ErrShuttingDown if
// the manager has begun shutting down.
func (r *Registry) Begin(id string) (*Operation, error) {
	if r.admit != nil && !r.admit() {
		return nil, fmt.Errorf("operation %s rejected: %w", id, ErrShuttingDown)
	}

	op := &Operation{
		ID:      id,
		Started: time.Now(),
		status:  StatusInProgress,
		done:    make(chan struct{}),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops[id] = op
	return op, nil
}

// Finish settles an operation and removes it from the registry. The original
// error, if any, is recorded in the status but never altered; this method is
// for bookkeeping only.
func (r *Registry) Finish(op *Operation, err error) {
	op.mu.Lock()
	if err != nil {
		op.status = StatusFailed
	} else {
		op.status = StatusCompleted
	}
	select {
	case <-op.done:
	default:
		close(op.done)
	}
	op.mu.Unlock()

	r.mu.Lock()
	delete(r.ops, op.ID)
	r.mu.Unlock()
}

// Len returns the number of operations currently in flight.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ops)
}

// WaitForAll blocks until every currently registered operation settles, or
// the timeout elapses. On timeout it does not cancel anything; it
// force-releases the scratch files still owned by unsettled operations
// (best-effort disk cleanup) and returns, bounding shutdown latency even if
// an operation is stuck.
func (r *Registry) WaitForAll(timeout time.Duration) {
	if timeout <= 0 {
		timeout = defaultShutdownWait
	}

	r.mu.Lock()
	pending := make([]*Operation, 0, len(r.ops))
	for _, op := range r.ops {
		pending = append(pending, op)
	}
	r.mu.Unlock()

	deadline := time.After(timeout)
	for _, op := range pending {
		select {
		case <-op.done:
		case <-deadline:
			r.abandonUnsettled()
			return
		}
	}
}

// abandonUnsettled reclaims the temp files of every operation still in the
// registry after the wait deadline.
func (r *Registry) abandonUnsettled() {
	r.mu.Lock()
	stuck := make([]*Operation, 0, len(r.ops))
	for _, op := range r.ops {
		stuck = append(stuck, op)
	}
	r.mu.Unlock()

	for _, op := range stuck {
		r.logger.Warn("operation did not settle before shutdown deadline, reclaiming resources",
			"operation_id", op.ID, "age", time.Since(op.Started).String())

		op.mu.Lock()
		resources := append([]string(nil), op.resources...)
		op.mu.Unlock()

		for _, path := range resources {
			if r.temps != nil {
				r.temps.Release(path)
			}
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				r.logger.Warn("failed to remove abandoned temp file", "path", path, "error", err.Error())
			}
		}
	}
}
