package session

import (
	"slices"
	"sync"

	sujhav "github.com/Paranoid-AF/sujhav"
	"github.com/Paranoid-AF/sujhav/script"
)

// Session is one user's text buffer and suggestion history. It is safe for
// concurrent use; the prediction pipeline only ever sees snapshots of Text.
type Session struct {
	id     string
	script *script.Script

	mu      sync.Mutex
	text    string
	history []string
}

// New creates an empty session.
func New(id string) *Session {
	return &Session{id: id, script: script.Devanagari}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Text returns the current buffer.
func (s *Session) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text
}

// History returns the accepted suggestions, oldest first.
func (s *Session) History() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.history)
}

// SetText replaces the buffer, as typing does.
func (s *Session) SetText(text string) {
	s.mu.Lock()
	s.text = text
	s.mu.Unlock()
}

// Accept appends suggestion to the buffer and records it in the history.
func (s *Session) Accept(suggestion string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.text = Accept(s.text, suggestion)
	s.history = append(s.history, suggestion)
	return s.text
}

// UndoLastWord removes the last word of the buffer. History is kept.
func (s *Session) UndoLastWord() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.text = UndoLastWord(s.text)
	return s.text
}

// AppendTerminator ends the current sentence.
func (s *Session) AppendTerminator() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.text = AppendTerminator(s.script, s.text)
	return s.text
}

// Clear empties both the buffer and the history.
func (s *Session) Clear() {
	s.mu.Lock()
	s.text = ""
	s.history = nil
	s.mu.Unlock()
}

// Snapshot returns the session state for clients.
func (s *Session) Snapshot() *sujhav.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	history := slices.Clone(s.history)
	if history == nil {
		history = []string{}
	}
	return &sujhav.SessionState{
		ID:      s.id,
		Text:    s.text,
		History: history,
		Recent:  Recent(s.history, RecentLimit),
		Stats:   ComputeStats(s.script, s.text),
	}
}
