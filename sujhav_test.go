package sujhav

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPredictResponseSuggestionsEmptyNotNull(t *testing.T) {
	resp := PredictResponse{Suggestions: []string{}}
	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"suggestions":[]`) {
		t.Errorf("expected suggestions:[], got %s", data)
	}
}

func TestPredictResponseErrorOmittedWhenNil(t *testing.T) {
	resp := PredictResponse{Suggestions: []string{}}
	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), `"error"`) {
		t.Errorf("expected no error key, got %s", data)
	}
	if strings.Contains(string(data), `"session"`) {
		t.Errorf("expected no session key, got %s", data)
	}
}

func TestPredictRequestTextNilVersusEmpty(t *testing.T) {
	var req PredictRequest
	if err := json.Unmarshal([]byte(`{"type":"predict","session_id":"s"}`), &req); err != nil {
		t.Fatal(err)
	}
	if req.Text != nil {
		t.Errorf("expected nil Text when omitted, got %q", *req.Text)
	}

	if err := json.Unmarshal([]byte(`{"type":"predict","session_id":"s","text":""}`), &req); err != nil {
		t.Fatal(err)
	}
	if req.Text == nil || *req.Text != "" {
		t.Errorf("expected empty non-nil Text")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Model.Name != "surajp/gpt2-hindi" {
		t.Errorf("expected default model surajp/gpt2-hindi, got %q", cfg.Model.Name)
	}
	s := cfg.Sampling
	if s.MaxNewTokens != 12 || s.TopK != 50 || s.TopP != 0.9 || s.Temperature != 0.8 {
		t.Errorf("unexpected sampling defaults: %+v", s)
	}
	if s.Suggestions != 4 || s.Oversample != 2 || s.ContextWords != 6 {
		t.Errorf("unexpected pipeline defaults: %+v", s)
	}
	if cfg.Cache.TTLSeconds != 0 {
		t.Errorf("expected candidate cache off by default, got ttl %d", cfg.Cache.TTLSeconds)
	}
	if w := ValidateConfig(cfg); len(w) != 0 {
		t.Errorf("expected no warnings for defaults, got %v", w)
	}
}

func TestLoadConfigMissingReturnsDefaults(t *testing.T) {
	t.Setenv("SUJHAV_CONFIG_DIR", t.TempDir())
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Model.Backend != "huggingface" {
		t.Errorf("expected huggingface backend, got %q", cfg.Model.Backend)
	}
}

func TestLoadConfigJSONFillsDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SUJHAV_CONFIG_DIR", dir)
	body := `{"model":{"backend":"openai","base_url":"http://localhost:8000/v1","name":"gpt2-hi"},"sampling":{"temperature":1.1}}`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Model.Backend != "openai" || cfg.Model.Name != "gpt2-hi" {
		t.Errorf("unexpected model config: %+v", cfg.Model)
	}
	if cfg.Model.BaseURL != "http://localhost:8000/v1" {
		t.Errorf("expected custom base url kept, got %q", cfg.Model.BaseURL)
	}
	if cfg.Sampling.Temperature != 1.1 {
		t.Errorf("expected temperature 1.1, got %v", cfg.Sampling.Temperature)
	}
	if cfg.Sampling.TopK != 50 {
		t.Errorf("expected default top_k 50, got %d", cfg.Sampling.TopK)
	}
}

func TestLoadConfigYAML(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SUJHAV_CONFIG_DIR", dir)
	body := "model:\n  name: custom/hindi\nsampling:\n  suggestions: 3\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Model.Name != "custom/hindi" {
		t.Errorf("expected custom/hindi, got %q", cfg.Model.Name)
	}
	if cfg.Sampling.Suggestions != 3 {
		t.Errorf("expected 3 suggestions, got %d", cfg.Sampling.Suggestions)
	}
	if cfg.Model.BaseURL == "" {
		t.Error("expected default base url for default backend")
	}
}

func TestLoadConfigInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SUJHAV_CONFIG_DIR", dir)
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(); err == nil {
		t.Error("expected parse error")
	}
}

func TestResolveModelEnvOverrides(t *testing.T) {
	cfg := DefaultConfig()
	t.Setenv("SUJHAV_MODEL_NAME", "other/model")
	t.Setenv("SUJHAV_MODEL_API_KEY", "hf_secret")
	if got := ResolveModelName(cfg); got != "other/model" {
		t.Errorf("expected env model, got %q", got)
	}
	if got := ResolveModelAPIKey(cfg); got != "hf_secret" {
		t.Errorf("expected env key, got %q", got)
	}
}

func TestLoadEnvDoesNotOverrideSetVars(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SUJHAV_CONFIG_DIR", dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("SUJHAV_MODEL_NAME=from/dotenv\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SUJHAV_MODEL_NAME", "from/env")
	LoadEnv()
	if got := os.Getenv("SUJHAV_MODEL_NAME"); got != "from/env" {
		t.Errorf("expected existing env to win, got %q", got)
	}
}

func TestLoadEnvAppliesEdits(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SUJHAV_CONFIG_DIR", dir)
	t.Setenv("SUJHAV_MODEL_NAME", "")
	envPath := filepath.Join(dir, ".env")

	write := func(content string) {
		t.Helper()
		if err := os.WriteFile(envPath, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	write("SUJHAV_MODEL_NAME=first/model\n")
	LoadEnv()
	if got := ResolveModelName(DefaultConfig()); got != "first/model" {
		t.Fatalf("expected first/model, got %q", got)
	}

	write("SUJHAV_MODEL_NAME=second/model\n")
	LoadEnv()
	if got := ResolveModelName(DefaultConfig()); got != "second/model" {
		t.Errorf("expected edited value second/model, got %q", got)
	}

	write("# empty\n")
	LoadEnv()
	if got := os.Getenv("SUJHAV_MODEL_NAME"); got != "" {
		t.Errorf("expected removed key to be unset, got %q", got)
	}
	if got := ResolveModelName(DefaultConfig()); got != DefaultConfig().Model.Name {
		t.Errorf("expected config model after removal, got %q", got)
	}
}

func TestValidateConfigWarnings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Model.Backend = "llama"
	cfg.Sampling.TopP = 1.5
	w := ValidateConfig(cfg)
	if len(w) != 2 {
		t.Fatalf("expected 2 warnings, got %v", w)
	}
}
