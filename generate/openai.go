package generate

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIBackend samples continuations from an OpenAI-compatible legacy
// completions endpoint (vLLM, llama.cpp server, Ollama).
type OpenAIBackend struct {
	client openai.Client
	model  string
}

// NewOpenAIBackend creates a completions backend. An empty apiKey lets the SDK
// fall back to OPENAI_API_KEY.
func NewOpenAIBackend(baseURL, apiKey, model string, timeout time.Duration) *OpenAIBackend {
	var opts []option.RequestOption
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(timeout))
	}
	opts = append(opts, option.WithMaxRetries(0))

	return &OpenAIBackend{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

// Load sends a one-token completion. Local servers often lack the per-model
// lookup route, so a completion is the only probe they all answer.
func (b *OpenAIBackend) Load(ctx context.Context) error {
	if _, err := b.Generate(ctx, warmupPrompt, Params{MaxNewTokens: 1, NumSequences: 1}); err != nil {
		return fmt.Errorf("openai model %q: %w", b.model, err)
	}
	return nil
}

// MultiSequence is true: the completions API accepts n.
func (b *OpenAIBackend) MultiSequence() bool { return true }

// Generate requests p.NumSequences completions and prefixes each with prompt.
func (b *OpenAIBackend) Generate(ctx context.Context, prompt string, p Params) ([]string, error) {
	params := openai.CompletionNewParams{
		Model: openai.CompletionNewParamsModel(b.model),
		Prompt: openai.CompletionNewParamsPromptUnion{
			OfString: openai.String(prompt),
		},
		MaxTokens: openai.Int(int64(p.MaxNewTokens)),
		N:         openai.Int(int64(p.NumSequences)),
	}

	var reqOpts []option.RequestOption
	if p.DoSample {
		params.Temperature = openai.Float(p.Temperature)
		if p.TopP > 0 {
			params.TopP = openai.Float(p.TopP)
		}
		if p.TopK > 0 {
			// top_k is not part of the OpenAI schema but compatible servers accept it.
			reqOpts = append(reqOpts, option.WithJSONSet("top_k", p.TopK))
		}
	} else {
		params.Temperature = openai.Float(0)
	}

	completion, err := b.client.Completions.New(ctx, params, reqOpts...)
	if err != nil {
		return nil, fmt.Errorf("openai completion: %w", err)
	}

	choices := completion.Choices
	sort.SliceStable(choices, func(i, j int) bool { return choices[i].Index < choices[j].Index })

	out := make([]string, 0, len(choices))
	for _, c := range choices {
		out = append(out, prompt+c.Text)
	}
	return out, nil
}

// Close is a no-op.
func (b *OpenAIBackend) Close() {}
