package generate

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/Paranoid-AF/sujhav/script"
)

// ShouldPredict reports whether text warrants a model call: it must hold a
// non-space character and must not end a sentence.
func ShouldPredict(s *script.Script, text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	return !s.EndsSentence(text)
}

// contextWindow returns the last n whitespace tokens of text joined by single
// spaces, or the whole trimmed text when it has n tokens or fewer.
func contextWindow(text string, n int) string {
	words := strings.Fields(text)
	if len(words) > n {
		return strings.Join(words[len(words)-n:], " ")
	}
	return strings.TrimSpace(text)
}

// extractTokens pulls cleaned candidate words out of one continuation.
// The continuation is cut after the prompt's character count; a continuation
// no longer than the prompt yields nothing. At most perSample raw tokens are
// looked at and at most max cleaned tokens are returned, without repeats.
func extractTokens(s *script.Script, generated, prompt string, perSample, max int) []string {
	promptLen := utf8.RuneCountInString(prompt)
	if generated == "" || utf8.RuneCountInString(generated) <= promptLen {
		return nil
	}

	var tail string
	if strings.HasPrefix(generated, prompt) {
		tail = generated[len(prompt):]
	} else {
		tail = string([]rune(generated)[promptLen:])
	}
	tail = strings.TrimSpace(tail)
	if tail == "" {
		return nil
	}

	words := strings.Fields(tail)
	if len(words) > perSample {
		words = words[:perSample]
	}

	var tokens []string
	for _, w := range words {
		cleaned := s.Clean(w)
		if cleaned == "" || slices.Contains(tokens, cleaned) {
			continue
		}
		tokens = append(tokens, cleaned)
	}
	if len(tokens) > max {
		tokens = tokens[:max]
	}
	return tokens
}

// aggregate concatenates per-continuation tokens, keeping the first
// occurrence of each case-insensitive spelling.
func aggregate(perContinuation [][]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, tokens := range perContinuation {
		for _, t := range tokens {
			key := script.Fold(t)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, t)
		}
	}
	return out
}

// finalFilter keeps candidates that are new case-insensitively, do not occur
// anywhere in buffer as a substring, and are at least two characters long.
// It stops after max accepted tokens.
func finalFilter(candidates []string, buffer string, max int) []string {
	out := make([]string, 0, max)
	seen := make(map[string]bool, max)
	for _, c := range candidates {
		if len(out) >= max {
			break
		}
		key := script.Fold(c)
		if c == "" || seen[key] || strings.Contains(buffer, c) || utf8.RuneCountInString(c) < 2 {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}
