package main

import (
	"io"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/Paranoid-AF/sujhav/generate"
)

// entry is one transcript record, written as a [[prediction]] table.
type entry struct {
	Seq         int         `toml:"seq"`
	Timestamp   time.Time   `toml:"timestamp"`
	Text        string      `toml:"text"`
	Context     string      `toml:"context,omitempty"`
	Refresh     bool        `toml:"refresh,omitempty"`
	Cached      bool        `toml:"cached,omitempty"`
	Suggestions []string    `toml:"suggestions"`
	Error       *entryError `toml:"error,omitempty"`
}

type entryError struct {
	Message string `toml:"message"`
}

// writeEntry appends one prediction to the TOML transcript w. Successive
// entries concatenate into a valid array of tables.
func writeEntry(w io.Writer, seq int, text string, refresh bool, res *generate.Result) error {
	e := entry{
		Seq:         seq,
		Timestamp:   time.Now().Truncate(time.Second),
		Text:        text,
		Context:     res.Context,
		Refresh:     refresh,
		Cached:      res.Cached,
		Suggestions: res.Suggestions,
	}
	if e.Suggestions == nil {
		e.Suggestions = []string{}
	}
	if res.Err != nil {
		e.Error = &entryError{Message: res.Err.Error()}
	}

	doc := struct {
		Prediction []entry `toml:"prediction"`
	}{Prediction: []entry{e}}

	if err := toml.NewEncoder(w).Encode(doc); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}
