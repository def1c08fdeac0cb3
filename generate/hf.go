package generate

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// warmupPrompt is generated once at load time so the hosted model is pulled
// into memory before the first user request.
const warmupPrompt = "नमस्ते"

// HFBackend performs text generation via the Hugging Face text-generation
// task API (Inference API or a text-generation-inference server).
type HFBackend struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewHFBackend creates a Hugging Face backend. baseURL is the models root,
// e.g. https://api-inference.huggingface.co/models.
func NewHFBackend(baseURL, apiKey, model string, timeout time.Duration) *HFBackend {
	return &HFBackend{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
	Options    hfOptions    `json:"options"`
}

type hfParameters struct {
	MaxNewTokens       int     `json:"max_new_tokens"`
	NumReturnSequences int     `json:"num_return_sequences"`
	DoSample           bool    `json:"do_sample"`
	TopK               int     `json:"top_k,omitempty"`
	TopP               float64 `json:"top_p,omitempty"`
	Temperature        float64 `json:"temperature,omitempty"`
	ReturnFullText     bool    `json:"return_full_text"`
}

type hfOptions struct {
	WaitForModel bool `json:"wait_for_model"`
	UseCache     bool `json:"use_cache"`
}

type hfGenerated struct {
	GeneratedText string `json:"generated_text"`
}

type hfError struct {
	Error string `json:"error"`
}

// Load issues a one-token warm-up generation.
func (b *HFBackend) Load(ctx context.Context) error {
	_, err := b.Generate(ctx, warmupPrompt, Params{MaxNewTokens: 1, NumSequences: 1})
	return err
}

// MultiSequence is true: num_return_sequences is honoured by the task API.
func (b *HFBackend) MultiSequence() bool { return true }

// Generate sends a text-generation request and returns the full texts.
func (b *HFBackend) Generate(ctx context.Context, prompt string, p Params) ([]string, error) {
	reqBody := hfRequest{
		Inputs: prompt,
		Parameters: hfParameters{
			MaxNewTokens:       p.MaxNewTokens,
			NumReturnSequences: p.NumSequences,
			DoSample:           p.DoSample,
			TopK:               p.TopK,
			TopP:               p.TopP,
			Temperature:        p.Temperature,
			ReturnFullText:     true,
		},
		Options: hfOptions{WaitForModel: true, UseCache: false},
	}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", b.baseURL+"/"+b.model, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if b.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+b.apiKey)
	}

	resp, err := b.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr hfError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, apiErr.Error)
		}
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result []hfGenerated
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w (body: %s)", err, string(body))
	}

	out := make([]string, 0, len(result))
	for _, r := range result {
		out = append(out, r.GeneratedText)
	}
	return out, nil
}

// Close is a no-op (no subprocess to manage).
func (b *HFBackend) Close() {}
