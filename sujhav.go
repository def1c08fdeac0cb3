// Package sujhav defines the request/response types for sujhav IPC.
// Messages are JSON-encoded and sent over a Unix domain socket, one per line.
// The HTTP API reuses the same payloads.
package sujhav

// PredictRequest asks the daemon for next-word suggestions.
type PredictRequest struct {
	// Type is always "predict".
	Type string `json:"type"`
	// RequestID is a per-session incrementing identifier assigned by the client.
	// The daemon echoes it back in the response for ordering.
	RequestID int `json:"request_id"`
	// SessionID identifies the typing session. Empty means stateless: Text is
	// used as the buffer and nothing is remembered.
	SessionID string `json:"session_id,omitempty"`
	// Text replaces the session buffer before predicting when non-nil.
	Text *string `json:"text,omitempty"`
	// Refresh bypasses cached candidates and resamples the model.
	Refresh bool `json:"refresh,omitempty"`
}

// PredictResponse is sent from the daemon back to the client.
type PredictResponse struct {
	// RequestID is echoed from the request for ordering on the client side.
	RequestID int `json:"request_id"`
	// Suggestions holds at most four next-word candidates in first-seen order.
	Suggestions []string `json:"suggestions"`
	// Session is the session state the suggestions were computed against.
	Session *SessionState `json:"session,omitempty"`
	// Error is set when the daemon cannot fulfill the request.
	Error *Error `json:"error,omitempty"`
}

// SessionRequest mutates or reads a typing session.
type SessionRequest struct {
	// Type is always "session".
	Type string `json:"type"`
	// Action is one of "get", "set", "accept", "undo", "terminate", "clear".
	Action string `json:"action"`
	// SessionID identifies the session. An empty ID on "get" creates one.
	SessionID string `json:"session_id"`
	// Suggestion is the accepted word for "accept".
	Suggestion string `json:"suggestion,omitempty"`
	// Text is the full buffer for "set".
	Text string `json:"text,omitempty"`
}

// SessionResponse carries the session state after a SessionRequest.
type SessionResponse struct {
	Session *SessionState `json:"session,omitempty"`
	Error   *Error        `json:"error,omitempty"`
}

// SessionState is a read-only snapshot of one typing session.
type SessionState struct {
	ID string `json:"id"`
	// Text is the in-progress message.
	Text string `json:"text"`
	// History lists accepted suggestions, oldest first.
	History []string `json:"history"`
	// Recent lists the last accepted suggestions, newest first.
	Recent []string `json:"recent,omitempty"`
	Stats  Stats    `json:"stats"`
}

// Stats summarises the buffer.
type Stats struct {
	Words      int `json:"words"`
	Characters int `json:"characters"`
	Sentences  int `json:"sentences"`
	// AvgWordsPerSentence is 0 when there are no sentences.
	AvgWordsPerSentence float64  `json:"avg_words_per_sentence"`
	SentenceList        []string `json:"sentence_list,omitempty"`
}

// ModelStatus reports the lifecycle of the shared model handle.
type ModelStatus struct {
	Name    string `json:"name"`
	Backend string `json:"backend"`
	// State is "uninitialized", "ready", or "failed".
	State string `json:"state"`
	Error string `json:"error,omitempty"`
}

// Error describes a daemon-side error returned to the client.
type Error struct {
	// Code is a machine-readable error identifier (e.g. "generation_failed").
	Code string `json:"code"`
	// Message is a human-readable error description.
	Message string `json:"message"`
}

// ConfigRequest is sent from the client for configuration operations.
type ConfigRequest struct {
	// Action is the config operation: "get", "reload", "defaults", or "validate".
	Action string `json:"action"`
}

// ConfigResponse is sent from the daemon in response to a ConfigRequest.
type ConfigResponse struct {
	// Config is the current configuration (for "get", "reload", and "defaults" actions).
	Config *Config `json:"config,omitempty"`
	// Warnings contains configuration warnings (for "validate" action).
	Warnings []string `json:"warnings,omitempty"`
	// Error is set when the operation fails.
	Error *Error `json:"error,omitempty"`
}
