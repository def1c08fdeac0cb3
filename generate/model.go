package generate

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// State is the lifecycle of a Model.
type State int32

const (
	StateUninitialized State = iota
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "uninitialized"
	}
}

const loadTimeout = 5 * time.Minute

// Model is the process-wide handle to a generative backend. It is loaded
// lazily on first use, exactly once; a failed load is never retried.
type Model struct {
	name     string
	backend  string
	b        Backend
	once     sync.Once
	state    atomic.Int32
	err      error
	reported atomic.Bool
}

// NewModel wraps b. backend names the backend kind for status reporting.
func NewModel(name, backend string, b Backend) *Model {
	return &Model{name: name, backend: backend, b: b}
}

// NewFailedModel returns a model that failed before any load was attempted,
// e.g. because the backend could not be configured.
func NewFailedModel(name, backend string, err error) *Model {
	m := &Model{name: name, backend: backend}
	m.fail(err)
	m.once.Do(func() {})
	return m
}

// Name returns the model name.
func (m *Model) Name() string { return m.name }

// Backend returns the backend kind.
func (m *Model) Backend() string { return m.backend }

// State returns the current lifecycle state.
func (m *Model) State() State { return State(m.state.Load()) }

// Err returns the load error, or nil unless the model failed.
func (m *Model) Err() error {
	if m.State() != StateFailed {
		return nil
	}
	return m.err
}

// Ready loads the model on first call and returns the load result. The load
// is not bound to ctx's cancellation so that one abandoned request cannot
// poison the model for the whole process.
func (m *Model) Ready(ctx context.Context) error {
	m.once.Do(func() {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()

		slog.Info("loading model", "model", m.name, "backend", m.backend)
		start := time.Now()
		if err := m.b.Load(loadCtx); err != nil {
			m.fail(err)
			return
		}
		m.state.Store(int32(StateReady))
		slog.Info("model ready", "model", m.name, "elapsed", time.Since(start).Round(time.Millisecond))
	})
	return m.Err()
}

func (m *Model) fail(err error) {
	m.err = fmt.Errorf("%w: %s: %w", ErrModelLoad, m.name, err)
	m.state.Store(int32(StateFailed))
}

// claimReport returns true exactly once for a failed model, so the load
// failure is surfaced a single time.
func (m *Model) claimReport() bool {
	return m.reported.CompareAndSwap(false, true)
}

// Generate forwards to the backend. The model must be ready.
func (m *Model) Generate(ctx context.Context, prompt string, p Params) ([]string, error) {
	if m.State() != StateReady {
		return nil, fmt.Errorf("model %s is %s", m.name, m.State())
	}
	return m.b.Generate(ctx, prompt, p)
}

// Close releases the backend.
func (m *Model) Close() {
	if m.b != nil {
		m.b.Close()
	}
}
