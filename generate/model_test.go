package generate

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestStateString(t *testing.T) {
	tests := []struct {
		state    State
		expected string
	}{
		{StateUninitialized, "uninitialized"},
		{StateReady, "ready"},
		{StateFailed, "failed"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.expected {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.expected)
		}
	}
}

func TestModelLoadsOnceConcurrently(t *testing.T) {
	stub := newStub()
	m := NewModel("test/model", "stub", stub)
	if m.State() != StateUninitialized {
		t.Fatalf("expected uninitialized, got %s", m.State())
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := m.Ready(context.Background()); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if stub.loads != 1 {
		t.Errorf("expected 1 load, got %d", stub.loads)
	}
	if m.State() != StateReady {
		t.Errorf("expected ready, got %s", m.State())
	}
	if m.Err() != nil {
		t.Errorf("expected nil Err for ready model, got %v", m.Err())
	}
}

func TestModelLoadFailureIsPermanent(t *testing.T) {
	stub := newStub()
	stub.loadErr = errors.New("out of memory")
	m := NewModel("test/model", "stub", stub)

	err := m.Ready(context.Background())
	if !errors.Is(err, ErrModelLoad) {
		t.Fatalf("expected ErrModelLoad, got %v", err)
	}

	stub.loadErr = nil
	if err := m.Ready(context.Background()); !errors.Is(err, ErrModelLoad) {
		t.Errorf("expected failure to persist, got %v", err)
	}
	if stub.loads != 1 {
		t.Errorf("expected no retry, got %d loads", stub.loads)
	}
	if _, err := m.Generate(context.Background(), "आज", Params{}); err == nil {
		t.Error("expected Generate on failed model to error")
	}
}

func TestModelClaimReportOnce(t *testing.T) {
	m := NewFailedModel("test/model", "stub", errors.New("boom"))
	if !m.claimReport() {
		t.Fatal("expected first claim to succeed")
	}
	if m.claimReport() {
		t.Error("expected second claim to fail")
	}
	m.Close()
}
