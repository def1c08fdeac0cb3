package generate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const continueInstruction = "Continue the following Hindi text naturally. Reply with the continuation only."

// AnthropicBackend samples continuations from the Messages API by prefilling
// the assistant turn with the prompt. Each call yields a single sequence.
type AnthropicBackend struct {
	client anthropic.Client
	model  string
}

// NewAnthropicBackend creates a Messages API backend.
func NewAnthropicBackend(baseURL, apiKey, model string, timeout time.Duration) *AnthropicBackend {
	opts := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(timeout))
	}
	return &AnthropicBackend{
		client: anthropic.NewClient(opts...),
		model:  model,
	}
}

// Load sends a one-token request.
func (b *AnthropicBackend) Load(ctx context.Context) error {
	_, err := b.Generate(ctx, warmupPrompt, Params{MaxNewTokens: 1, NumSequences: 1})
	return err
}

// MultiSequence is false: the Messages API returns one message per call.
func (b *AnthropicBackend) MultiSequence() bool { return false }

// Generate returns the prompt followed by the model's continuation.
func (b *AnthropicBackend) Generate(ctx context.Context, prompt string, p Params) ([]string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(b.model),
		MaxTokens: int64(p.MaxNewTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(continueInstruction)),
			anthropic.NewAssistantMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if p.DoSample {
		params.Temperature = anthropic.Float(p.Temperature)
		if p.TopK > 0 {
			params.TopK = anthropic.Int(int64(p.TopK))
		}
	}

	msg, err := b.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic message: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return []string{prompt + sb.String()}, nil
}

// Close is a no-op.
func (b *AnthropicBackend) Close() {}
