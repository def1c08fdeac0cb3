package generate

import (
	"reflect"
	"testing"

	"github.com/Paranoid-AF/sujhav/script"
)

func TestShouldPredict(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"", false},
		{"   ", false},
		{"आज", true},
		{"आज ", true},
		{"आज।", false},
		{"आज। ", false},
		{"hi.", false},
		{"hi!", false},
		{"hi?", false},
		{"hi,", true},
	}
	for _, tt := range tests {
		if got := ShouldPredict(script.Devanagari, tt.input); got != tt.expected {
			t.Errorf("ShouldPredict(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestContextWindow(t *testing.T) {
	tests := []struct {
		input    string
		n        int
		expected string
	}{
		{"एक दो तीन चार पांच छह सात", 6, "दो तीन चार पांच छह सात"},
		{"एक दो तीन चार पांच छह", 6, "एक दो तीन चार पांच छह"},
		{"  एक\tदो  ", 6, "एक\tदो"},
		{"a  b   c d e f g h", 6, "c d e f g h"},
		{"a b c", 2, "b c"},
	}
	for _, tt := range tests {
		if got := contextWindow(tt.input, tt.n); got != tt.expected {
			t.Errorf("contextWindow(%q, %d) = %q, want %q", tt.input, tt.n, got, tt.expected)
		}
	}
}

func TestExtractTokensSkipsShortContinuations(t *testing.T) {
	if got := extractTokens(script.Devanagari, "आज", "आज", 6, 4); got != nil {
		t.Errorf("expected nil for equal-length continuation, got %q", got)
	}
	if got := extractTokens(script.Devanagari, "", "आज", 6, 4); got != nil {
		t.Errorf("expected nil for empty continuation, got %q", got)
	}
	if got := extractTokens(script.Devanagari, "आज   ", "आज", 6, 4); got != nil {
		t.Errorf("expected nil for whitespace-only tail, got %q", got)
	}
}

func TestExtractTokensLimitsRawTokens(t *testing.T) {
	// Only the first 6 raw tokens are considered; "सात" is the seventh.
	got := extractTokens(script.Devanagari, "x 12 !! ab cd .. ef सात", "x", 6, 4)
	want := []string{"ab", "cd", "ef"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("extractTokens = %q, want %q", got, want)
	}
}

func TestExtractTokensCapsAndDeduplicates(t *testing.T) {
	got := extractTokens(script.Devanagari, "p one one two three four five", "p", 6, 4)
	want := []string{"one", "two", "three", "four"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("extractTokens = %q, want %q", got, want)
	}
}

func TestExtractTokensPromptMismatch(t *testing.T) {
	// The model normalised the prompt; the tail is cut by character count.
	got := extractTokens(script.Devanagari, "AAJ mausam", "aaj", 6, 4)
	want := []string{"mausam"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("extractTokens = %q, want %q", got, want)
	}
}

func TestAggregateCaseInsensitive(t *testing.T) {
	got := aggregate([][]string{{"Hello", "दुनिया"}, nil, {"hello", "World", "दुनिया"}, {"WORLD", "new"}})
	want := []string{"Hello", "दुनिया", "World", "new"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("aggregate = %q, want %q", got, want)
	}
}

func TestFinalFilter(t *testing.T) {
	candidates := []string{"आज", "मौसम", "Bahut", "bahut", "अच्छा", "x", "है", "ठंडा"}
	got := finalFilter(candidates, "आजकल का", 4)
	want := []string{"मौसम", "Bahut", "अच्छा", "है"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("finalFilter = %q, want %q", got, want)
	}
	if got := finalFilter(nil, "आज", 4); got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}
