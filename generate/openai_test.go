package generate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestOpenAIBackendGenerate(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("unexpected auth header %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatal(err)
		}
		w.Header().Set("Content-Type", "application/json")
		// Choices out of order; the backend sorts by index.
		w.Write([]byte(`{"id":"cmpl-1","object":"text_completion","created":1,"model":"hindi-gpt2","choices":[
			{"index":1,"text":" रात","finish_reason":"length","logprobs":null},
			{"index":0,"text":" मौसम अच्छा","finish_reason":"length","logprobs":null}]}`))
	}))
	defer srv.Close()

	b := NewOpenAIBackend(srv.URL+"/v1/", "sk-test", "hindi-gpt2", 5*time.Second)
	out, err := b.Generate(context.Background(), "आज", Params{
		MaxNewTokens: 12, NumSequences: 6, DoSample: true, TopK: 50, TopP: 0.9, Temperature: 0.8,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 || out[0] != "आज मौसम अच्छा" || out[1] != "आज रात" {
		t.Errorf("unexpected output %q", out)
	}

	if got["model"] != "hindi-gpt2" || got["prompt"] != "आज" {
		t.Errorf("unexpected model/prompt in %v", got)
	}
	checks := map[string]float64{"max_tokens": 12, "n": 6, "temperature": 0.8, "top_p": 0.9, "top_k": 50}
	for k, want := range checks {
		if v, ok := got[k].(float64); !ok || v != want {
			t.Errorf("%s = %v, want %v", k, got[k], want)
		}
	}
}

func TestOpenAIBackendLoadWarmsUp(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/completions" {
			t.Errorf("load should use completions, got %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"cmpl-2","object":"text_completion","created":1,"model":"m","choices":[
			{"index":0,"text":" जी","finish_reason":"length","logprobs":null}]}`))
	}))
	defer srv.Close()

	b := NewOpenAIBackend(srv.URL+"/v1/", "sk-test", "m", 5*time.Second)
	if err := b.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got["prompt"] != warmupPrompt || got["max_tokens"] != float64(1) {
		t.Errorf("unexpected warm-up request %v", got)
	}
	if got["temperature"] != float64(0) {
		t.Errorf("expected greedy warm-up, got temperature %v", got["temperature"])
	}
	if _, ok := got["top_k"]; ok {
		t.Error("top_k sent without sampling")
	}
}

func TestOpenAIBackendLoadError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"message":"model not found","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	b := NewOpenAIBackend(srv.URL+"/v1/", "sk-test", "missing", 5*time.Second)
	if err := b.Load(context.Background()); err == nil {
		t.Error("expected load error")
	}
}
