// Package session holds per-user typing state: the text buffer being
// composed and the suggestions accepted into it.
package session

import (
	"strings"
	"unicode"
	"unicode/utf8"

	sujhav "github.com/Paranoid-AF/sujhav"
	"github.com/Paranoid-AF/sujhav/script"
)

// RecentLimit is the number of accepted suggestions shown as recent.
const RecentLimit = 10

// Accept returns buffer with suggestion appended as the next word.
func Accept(buffer, suggestion string) string {
	if strings.TrimSpace(buffer) == "" {
		return suggestion
	}
	if r, _ := utf8.DecodeLastRuneInString(buffer); unicode.IsSpace(r) {
		return buffer + suggestion
	}
	return strings.TrimSpace(buffer) + " " + suggestion
}

// UndoLastWord drops the last whitespace-separated word. The remaining words
// are joined by single spaces and followed by a space so typing can resume.
func UndoLastWord(buffer string) string {
	words := strings.Fields(buffer)
	if len(words) == 0 {
		return buffer
	}
	words = words[:len(words)-1]
	if len(words) == 0 {
		return ""
	}
	return strings.Join(words, " ") + " "
}

// AppendTerminator ends the current sentence with the script's full stop.
// Empty buffers and buffers already ending in the full stop are unchanged.
func AppendTerminator(s *script.Script, buffer string) string {
	if buffer == "" {
		return buffer
	}
	if r, _ := utf8.DecodeLastRuneInString(buffer); r == s.FullStop {
		return buffer
	}
	return buffer + string(s.FullStop) + " "
}

// ComputeStats counts words, characters and sentences of buffer.
func ComputeStats(s *script.Script, buffer string) sujhav.Stats {
	sentences := s.SplitSentences(buffer)
	st := sujhav.Stats{
		Words:        len(strings.Fields(buffer)),
		Characters:   utf8.RuneCountInString(buffer),
		Sentences:    len(sentences),
		SentenceList: sentences,
	}
	if len(sentences) > 0 {
		total := 0
		for _, sent := range sentences {
			total += len(strings.Fields(sent))
		}
		st.AvgWordsPerSentence = float64(total) / float64(len(sentences))
	}
	return st
}

// Recent returns the last n entries of history, newest first.
func Recent(history []string, n int) []string {
	if len(history) > n {
		history = history[len(history)-n:]
	}
	out := make([]string, len(history))
	for i, h := range history {
		out[len(history)-1-i] = h
	}
	return out
}
