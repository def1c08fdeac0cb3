// Package generate orchestrates model inference to produce next-word
// suggestions for a Hindi text buffer.
package generate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sujhav "github.com/Paranoid-AF/sujhav"
	"github.com/Paranoid-AF/sujhav/script"
)

// Options are the fixed pipeline parameters.
type Options struct {
	// Suggestions caps the returned list.
	Suggestions int
	// Oversample extra sequences are requested to survive filtering.
	Oversample int
	// ContextWords is the size of the context window in tokens.
	ContextWords int
	// TokensPerSample raw tokens are inspected per continuation.
	TokensPerSample int
	MaxNewTokens    int
	Temperature     float64
	TopK            int
	TopP            float64
}

// DefaultOptions mirrors the embedded default config.
func DefaultOptions() Options {
	return OptionsFromConfig(sujhav.DefaultConfig())
}

// OptionsFromConfig extracts pipeline options from cfg.
func OptionsFromConfig(cfg *sujhav.Config) Options {
	s := cfg.Sampling
	return Options{
		Suggestions:     s.Suggestions,
		Oversample:      s.Oversample,
		ContextWords:    s.ContextWords,
		TokensPerSample: s.TokensPerSample,
		MaxNewTokens:    s.MaxNewTokens,
		Temperature:     s.Temperature,
		TopK:            s.TopK,
		TopP:            s.TopP,
	}
}

func (o Options) params() Params {
	n := o.Suggestions + o.Oversample
	if n < 1 {
		n = 1
	}
	return Params{
		MaxNewTokens: o.MaxNewTokens,
		NumSequences: n,
		DoSample:     true,
		TopK:         o.TopK,
		TopP:         o.TopP,
		Temperature:  o.Temperature,
	}
}

// Result is the outcome of one prediction.
type Result struct {
	// Suggestions is never nil.
	Suggestions []string
	// Context is the window sent to the model, empty when no call was needed.
	Context string
	// Cached is true when candidates came from the cache.
	Cached bool
	// Err wraps ErrGeneration for a failed call, or ErrModelLoad the first
	// time a failed model is asked to predict. Suggestions is empty when set.
	Err error
}

// Engine turns a text buffer into next-word suggestions. It holds no
// per-session state and is safe for concurrent use.
type Engine struct {
	model  *Model
	cache  *CandidateCache
	script *script.Script
	opts   Options
}

// NewEngine creates an engine from config. Backend construction problems
// yield an engine whose model is already failed.
func NewEngine(cfg *sujhav.Config) *Engine {
	if cfg == nil {
		cfg = sujhav.DefaultConfig()
	}

	name := sujhav.ResolveModelName(cfg)
	kind := sujhav.ResolveModelBackend(cfg)

	var model *Model
	b, err := NewBackend(cfg)
	if err != nil {
		slog.Error("model backend unavailable", "backend", kind, "error", err)
		model = NewFailedModel(name, kind, err)
	} else {
		model = NewModel(name, kind, wrapBackend(b, cfg.Model.RequestsPerMinute, sujhav.FanoutEnabled(cfg)))
	}

	var cache *CandidateCache
	if cfg.Cache.TTLSeconds > 0 {
		cache = NewCandidateCache(time.Duration(cfg.Cache.TTLSeconds)*time.Second, cfg.Cache.MaxEntries)
	}

	return NewEngineWithModel(model, OptionsFromConfig(cfg), cache)
}

// NewEngineWithModel assembles an engine from parts. cache may be nil.
func NewEngineWithModel(model *Model, opts Options, cache *CandidateCache) *Engine {
	return &Engine{
		model:  model,
		cache:  cache,
		script: script.Devanagari,
		opts:   opts,
	}
}

// NewBackend builds the backend selected by cfg.
func NewBackend(cfg *sujhav.Config) (Backend, error) {
	baseURL := sujhav.ResolveModelBaseURL(cfg)
	apiKey := sujhav.ResolveModelAPIKey(cfg)
	name := sujhav.ResolveModelName(cfg)
	timeout := sujhav.ModelTimeout(cfg)

	if name == "" {
		return nil, fmt.Errorf("%w: model name is empty", ErrNotConfigured)
	}

	switch kind := sujhav.ResolveModelBackend(cfg); kind {
	case "huggingface":
		if baseURL == "" {
			return nil, fmt.Errorf("%w: huggingface base_url is empty", ErrNotConfigured)
		}
		return NewHFBackend(baseURL, apiKey, name, timeout), nil
	case "openai":
		return NewOpenAIBackend(baseURL, apiKey, name, timeout), nil
	case "anthropic":
		if apiKey == "" {
			return nil, fmt.Errorf("%w: anthropic api key is empty; set SUJHAV_MODEL_API_KEY", ErrNotConfigured)
		}
		return NewAnthropicBackend(baseURL, apiKey, name, timeout), nil
	default:
		return nil, fmt.Errorf("%w: unknown backend %q", ErrNotConfigured, kind)
	}
}

// Model returns the shared model handle.
func (e *Engine) Model() *Model { return e.model }

// Status reports the model lifecycle.
func (e *Engine) Status() sujhav.ModelStatus {
	st := sujhav.ModelStatus{
		Name:    e.model.Name(),
		Backend: e.model.Backend(),
		State:   e.model.State().String(),
	}
	if err := e.model.Err(); err != nil {
		st.Error = err.Error()
	}
	return st
}

// Close releases resources held by the engine.
func (e *Engine) Close() {
	if e.model != nil {
		e.model.Close()
	}
	if e.cache != nil {
		e.cache.Close()
	}
}

// Predict returns suggestions for text, reusing cached candidates for the
// same context window.
func (e *Engine) Predict(ctx context.Context, text string) *Result {
	return e.predict(ctx, text, true)
}

// Resample is Predict without the cache: the model is always sampled again.
func (e *Engine) Resample(ctx context.Context, text string) *Result {
	return e.predict(ctx, text, false)
}

func (e *Engine) predict(ctx context.Context, text string, useCache bool) *Result {
	res := &Result{Suggestions: []string{}}

	if !ShouldPredict(e.script, text) {
		return res
	}

	if err := e.model.Ready(ctx); err != nil {
		if e.model.claimReport() {
			slog.Error("model load failed, prediction disabled", "error", err)
			res.Err = err
		}
		return res
	}

	window := contextWindow(text, e.opts.ContextWords)
	res.Context = window

	var candidates []string
	if useCache && e.cache != nil {
		if cached := e.cache.Get(window); cached != nil {
			candidates = cached
			res.Cached = true
		}
	}

	if !res.Cached {
		// Check for cancellation before expensive inference
		if ctx.Err() != nil {
			return res
		}

		outputs, err := e.model.Generate(ctx, window, e.opts.params())
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return res
			}
			slog.Warn("generation error", "context", window, "error", err)
			res.Err = fmt.Errorf("%w: %w", ErrGeneration, err)
			return res
		}

		perSample := make([][]string, 0, len(outputs))
		for _, out := range outputs {
			perSample = append(perSample, extractTokens(e.script, out, window, e.opts.TokensPerSample, e.opts.Suggestions))
		}
		candidates = aggregate(perSample)
		if e.cache != nil {
			e.cache.Set(window, candidates)
		}
	}

	res.Suggestions = finalFilter(candidates, text, e.opts.Suggestions)
	slog.Debug("prediction", "context", window, "candidates", len(candidates), "suggestions", res.Suggestions, "cached", res.Cached)
	return res
}
