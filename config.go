package sujhav

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	defaults "github.com/Paranoid-AF/sujhav/default"
	json "github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the user's sujhav configuration.
type Config struct {
	Version  int            `json:"version" yaml:"version"`
	Model    ModelConfig    `json:"model" yaml:"model"`
	Sampling SamplingConfig `json:"sampling" yaml:"sampling"`
	Cache    CacheConfig    `json:"cache" yaml:"cache"`
	Server   ServerConfig   `json:"server" yaml:"server"`
}

// ModelConfig selects and reaches the generative model service.
type ModelConfig struct {
	// Backend is "huggingface", "openai", or "anthropic".
	Backend           string `json:"backend" yaml:"backend"`
	BaseURL           string `json:"base_url" yaml:"base_url"`
	APIKey            string `json:"api_key" yaml:"api_key"`
	Name              string `json:"name" yaml:"name"`
	TimeoutSeconds    int    `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty"`
	RequestsPerMinute int    `json:"requests_per_minute,omitempty" yaml:"requests_per_minute,omitempty"`
	// Fanout issues one single-sequence request per sample instead of
	// asking the backend for all sequences at once.
	Fanout *bool `json:"fanout,omitempty" yaml:"fanout,omitempty"`
}

// SamplingConfig holds the fixed sampling parameters of the pipeline.
type SamplingConfig struct {
	MaxNewTokens    int     `json:"max_new_tokens,omitempty" yaml:"max_new_tokens,omitempty"`
	Temperature     float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	TopK            int     `json:"top_k,omitempty" yaml:"top_k,omitempty"`
	TopP            float64 `json:"top_p,omitempty" yaml:"top_p,omitempty"`
	Suggestions     int     `json:"suggestions,omitempty" yaml:"suggestions,omitempty"`
	Oversample      int     `json:"oversample,omitempty" yaml:"oversample,omitempty"`
	ContextWords    int     `json:"context_words,omitempty" yaml:"context_words,omitempty"`
	TokensPerSample int     `json:"tokens_per_sample,omitempty" yaml:"tokens_per_sample,omitempty"`
}

// CacheConfig controls the candidate cache. A zero TTL disables it.
type CacheConfig struct {
	TTLSeconds int `json:"ttl_seconds,omitempty" yaml:"ttl_seconds,omitempty"`
	MaxEntries int `json:"max_entries,omitempty" yaml:"max_entries,omitempty"`
}

// ServerConfig holds daemon settings.
type ServerConfig struct {
	HTTPAddr          string `json:"http_addr,omitempty" yaml:"http_addr,omitempty"`
	SessionTTLMinutes int    `json:"session_ttl_minutes,omitempty" yaml:"session_ttl_minutes,omitempty"`
}

// ConfigDir returns the config directory path.
// Resolution order: $SUJHAV_CONFIG_DIR > $XDG_CONFIG_HOME/sujhav > ~/.config/sujhav
func ConfigDir() string {
	if dir := os.Getenv("SUJHAV_CONFIG_DIR"); dir != "" {
		return dir
	}
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "sujhav")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join("/tmp", "sujhav-config")
	}
	return filepath.Join(home, ".config", "sujhav")
}

// ConfigPath returns the full path to the JSON config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.json")
}

// YAMLConfigPath returns the path of the alternative YAML config file.
func YAMLConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// dotenv records the variables LoadEnv set and the values it set them to, so
// a later call can update or remove them when .env changes.
var (
	dotenvMu sync.Mutex
	dotenv   = map[string]string{}
)

// LoadEnv loads KEY=VALUE pairs from .env in the config dir and the working
// directory; the config dir file wins on duplicate keys. Non-empty variables
// set outside .env always win. Calling it again applies edits to .env,
// including removed keys.
func LoadEnv() {
	paths := []string{filepath.Join(ConfigDir(), ".env")}
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	merged := map[string]string{}
	for _, p := range paths {
		vars, err := godotenv.Read(p)
		if err != nil {
			continue
		}
		for k, v := range vars {
			if _, ok := merged[k]; !ok {
				merged[k] = v
			}
		}
	}

	dotenvMu.Lock()
	defer dotenvMu.Unlock()

	for k, prev := range dotenv {
		if _, ok := merged[k]; ok {
			continue
		}
		if cur, ok := os.LookupEnv(k); ok && cur == prev {
			_ = os.Unsetenv(k)
		}
		delete(dotenv, k)
	}

	for k, v := range merged {
		cur, set := os.LookupEnv(k)
		prev, owned := dotenv[k]
		if set && cur != "" && !(owned && cur == prev) {
			delete(dotenv, k)
			continue
		}
		if err := os.Setenv(k, v); err == nil {
			dotenv[k] = v
		}
	}
}

// DefaultConfig returns the default configuration from the embedded default_config.json.
func DefaultConfig() *Config {
	var cfg Config
	if err := json.Unmarshal(defaults.DefaultConfigJSON, &cfg); err != nil {
		panic("sujhav: invalid embedded default_config.json: " + err.Error())
	}
	return &cfg
}

// LoadConfig loads config from disk or returns defaults if not found.
// config.json takes precedence over config.yaml.
func LoadConfig() (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(ConfigPath())
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", ConfigPath(), err)
		}
	case errors.Is(err, os.ErrNotExist):
		data, err = os.ReadFile(YAMLConfigPath())
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return DefaultConfig(), nil
			}
			return nil, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", YAMLConfigPath(), err)
		}
	default:
		return nil, err
	}

	applyDefaults(&cfg, DefaultConfig())
	return &cfg, nil
}

// applyDefaults fills zero-valued fields of cfg from d.
func applyDefaults(cfg, d *Config) {
	if cfg.Version == 0 {
		cfg.Version = d.Version
	}
	if cfg.Model.Backend == "" {
		cfg.Model.Backend = d.Model.Backend
	}
	if cfg.Model.BaseURL == "" && cfg.Model.Backend == d.Model.Backend {
		cfg.Model.BaseURL = d.Model.BaseURL
	}
	if cfg.Model.Name == "" {
		cfg.Model.Name = d.Model.Name
	}
	if cfg.Model.TimeoutSeconds == 0 {
		cfg.Model.TimeoutSeconds = d.Model.TimeoutSeconds
	}
	if cfg.Model.Fanout == nil {
		cfg.Model.Fanout = d.Model.Fanout
	}

	s, ds := &cfg.Sampling, d.Sampling
	if s.MaxNewTokens == 0 {
		s.MaxNewTokens = ds.MaxNewTokens
	}
	if s.Temperature == 0 {
		s.Temperature = ds.Temperature
	}
	if s.TopK == 0 {
		s.TopK = ds.TopK
	}
	if s.TopP == 0 {
		s.TopP = ds.TopP
	}
	if s.Suggestions == 0 {
		s.Suggestions = ds.Suggestions
	}
	if s.Oversample == 0 {
		s.Oversample = ds.Oversample
	}
	if s.ContextWords == 0 {
		s.ContextWords = ds.ContextWords
	}
	if s.TokensPerSample == 0 {
		s.TokensPerSample = ds.TokensPerSample
	}

	if cfg.Cache.TTLSeconds == 0 {
		cfg.Cache.TTLSeconds = d.Cache.TTLSeconds
	}
	if cfg.Cache.MaxEntries == 0 {
		cfg.Cache.MaxEntries = d.Cache.MaxEntries
	}
	if cfg.Server.HTTPAddr == "" {
		cfg.Server.HTTPAddr = d.Server.HTTPAddr
	}
	if cfg.Server.SessionTTLMinutes == 0 {
		cfg.Server.SessionTTLMinutes = d.Server.SessionTTLMinutes
	}
}

// ValidateConfig checks configuration for potential issues and returns warnings.
func ValidateConfig(cfg *Config) []string {
	var warnings []string
	if cfg == nil {
		return warnings
	}
	switch cfg.Model.Backend {
	case "huggingface", "openai", "anthropic":
	default:
		warnings = append(warnings, fmt.Sprintf("unknown model backend %q", cfg.Model.Backend))
	}
	if cfg.Model.Backend == "anthropic" && ResolveModelAPIKey(cfg) == "" {
		warnings = append(warnings, "anthropic backend requires an API key; set SUJHAV_MODEL_API_KEY")
	}
	if cfg.Sampling.TopP <= 0 || cfg.Sampling.TopP > 1 {
		warnings = append(warnings, fmt.Sprintf("top_p %.2f is outside (0, 1]", cfg.Sampling.TopP))
	}
	if cfg.Sampling.Oversample < 0 {
		warnings = append(warnings, "oversample is negative; fewer samples than suggestions will be requested")
	}
	if cfg.Sampling.ContextWords < 1 {
		warnings = append(warnings, "context_words must be at least 1")
	}
	return warnings
}

// ResolveModelBackend returns the model backend name.
// Priority: $SUJHAV_MODEL_BACKEND env > config value.
func ResolveModelBackend(cfg *Config) string {
	if b := os.Getenv("SUJHAV_MODEL_BACKEND"); b != "" {
		return b
	}
	if cfg != nil {
		return cfg.Model.Backend
	}
	return ""
}

// ResolveModelBaseURL returns the model API base URL.
// Priority: $SUJHAV_MODEL_BASE_URL env > config value.
func ResolveModelBaseURL(cfg *Config) string {
	if url := os.Getenv("SUJHAV_MODEL_BASE_URL"); url != "" {
		return url
	}
	if cfg != nil {
		return cfg.Model.BaseURL
	}
	return ""
}

// ResolveModelAPIKey returns the model API key.
// Priority: $SUJHAV_MODEL_API_KEY env > config value.
func ResolveModelAPIKey(cfg *Config) string {
	if key := os.Getenv("SUJHAV_MODEL_API_KEY"); key != "" {
		return key
	}
	if cfg != nil {
		return cfg.Model.APIKey
	}
	return ""
}

// ResolveModelName returns the model name.
// Priority: $SUJHAV_MODEL_NAME env > config value.
func ResolveModelName(cfg *Config) string {
	if name := os.Getenv("SUJHAV_MODEL_NAME"); name != "" {
		return name
	}
	if cfg != nil {
		return cfg.Model.Name
	}
	return ""
}

// FanoutEnabled reports whether samples are requested one per call.
func FanoutEnabled(cfg *Config) bool {
	if cfg == nil || cfg.Model.Fanout == nil {
		return false
	}
	return *cfg.Model.Fanout
}

// ModelTimeout returns the per-request timeout for the model service.
func ModelTimeout(cfg *Config) time.Duration {
	if cfg == nil || cfg.Model.TimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(cfg.Model.TimeoutSeconds) * time.Second
}
