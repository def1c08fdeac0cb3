package generate

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Params are the sampling parameters sent with every generation request.
type Params struct {
	MaxNewTokens int
	NumSequences int
	DoSample     bool
	TopK         int
	TopP         float64
	Temperature  float64
}

// Backend is a generative model service. Generate returns one string per
// sequence, each being the prompt followed by its generated tail.
type Backend interface {
	// Load prepares the model and fails if it cannot serve requests.
	Load(ctx context.Context) error
	Generate(ctx context.Context, prompt string, p Params) ([]string, error)
	// MultiSequence reports whether one call can return several sequences.
	MultiSequence() bool
	Close()
}

// fanoutBackend turns one n-sequence request into n concurrent single
// sequence requests.
type fanoutBackend struct {
	Backend
}

func (f *fanoutBackend) MultiSequence() bool { return true }

func (f *fanoutBackend) Generate(ctx context.Context, prompt string, p Params) ([]string, error) {
	n := p.NumSequences
	if n <= 1 {
		return f.Backend.Generate(ctx, prompt, p)
	}

	results := make([][]string, n)
	g, gCtx := errgroup.WithContext(ctx)
	single := p
	single.NumSequences = 1
	for i := 0; i < n; i++ {
		g.Go(func() error {
			out, err := f.Backend.Generate(gCtx, prompt, single)
			if err != nil {
				return err
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []string
	for _, r := range results {
		out = append(out, r...)
	}
	return out, nil
}

// limitedBackend waits on a token bucket before every call to the wrapped
// backend.
type limitedBackend struct {
	Backend
	limiter *rate.Limiter
}

// newLimitedBackend returns b unchanged when requestsPerMinute is not positive.
func newLimitedBackend(b Backend, requestsPerMinute int) Backend {
	if requestsPerMinute <= 0 {
		return b
	}
	r := rate.Limit(float64(requestsPerMinute) / 60.0)
	return &limitedBackend{Backend: b, limiter: rate.NewLimiter(r, requestsPerMinute)}
}

func (l *limitedBackend) Generate(ctx context.Context, prompt string, p Params) ([]string, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}
	return l.Backend.Generate(ctx, prompt, p)
}

// wrapBackend applies rate limiting and, when needed, fan-out.
func wrapBackend(b Backend, requestsPerMinute int, fanout bool) Backend {
	limited := newLimitedBackend(b, requestsPerMinute)
	if fanout || !b.MultiSequence() {
		return &fanoutBackend{Backend: limited}
	}
	return limited
}
