package lexer

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"golang.org/x/text/unicode/norm"
)

// TestBOMStripping verifies that UTF-8 BOM is removed
func TestBOMStripping(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected []byte
	}{
		{
			name:     "with_bom",
			input:    []byte{0xEF, 0xBB, 0xBF, 'h', 'e', 'l', 'l', 'o'},
			expected: []byte("hello"),
		},
		{
			name:     "without_bom",
			input:    []byte("hello"),
			expected: []byte("hello"),
		},
		{
			name:     "empty_with_bom",
			input:    []byte{0xEF, 0xBB, 0xBF},
			expected: []byte{},
		},
		{
			name:     "empty_without_bom",
			input:    []byte{},
			expected: []byte{},
		},
		{
			name:     "partial_bom",
			input:    []byte{0xEF, 0xBB, 'h', 'i'},
			expected: []byte{0xEF, 0xBB, 'h', 'i'}, // Not a valid BOM
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Normalize(tt.input)
			if !bytes.Equal(result, tt.expected) {
				t.Errorf("Expected %q, got %q", tt.expected, result)
			}
		})
	}
}

// TestNFCNormalization verifies Unicode normalization
func TestNFCNormalization(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "already_nfc",
			input:    "café", // U+00E9 (é in NFC)
			expected: "café",
		},
		{
			name:     "nfd_to_nfc",
			input:    "café", // e + combining acute accent (NFD)
			expected: "café",       // Should become é (U+00E9)
		},
		{
			name:     "ascii_unchanged",
			input:    "hello world",
			expected: "hello world",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := string(Normalize([]byte(tt.input)))
			if result != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, result)
			}
			if !norm.NFC.IsNormalString(result) {
				t.Errorf("Result is not in NFC form")
			}
		})
	}
}

// TestCanaryDeterministicParsing ensures lexically equivalent source
// (LF vs CRLF, NFC vs NFD, with/without BOM) produces identical token
// streams once normalized at the lexer boundary.
func TestCanaryDeterministicParsing(t *testing.T) {
	variants := []struct {
		name  string
		input string
	}{
		{name: "lf_nfc", input: "let café = 42;\nlet y = 1;"},
		{name: "crlf_nfc", input: "let café = 42;\nlet y = 1;"},
		{name: "lf_nfd", input: "let café = 42;\nlet y = 1;"},
		{name: "bom_lf_nfc", input: "\xef\xbb\xbflet café = 42;\nlet y = 1;"},
	}
	variants[1].input = strings.ReplaceAll(variants[1].input, "\n", "\r\n")

	var outputs []string
	for _, v := range variants {
		t.Run(v.name, func(t *testing.T) {
			normalized := Normalize([]byte(v.input))
			l := New(string(normalized))
			var tokens []Token
			for {
				tok := l.NextToken()
				tokens = append(tokens, tok)
				if tok.Type == EOF {
					break
				}
			}
			jsonData, err := json.Marshal(tokens)
			if err != nil {
				t.Fatalf("failed to marshal tokens: %v", err)
			}
			outputs = append(outputs, string(jsonData))
		})
	}

	baseline := outputs[0]
	for i, output := range outputs[1:] {
		if output != baseline {
			t.Errorf("variant %d produced a different token stream than baseline", i+1)
		}
	}
}

// TestNormalizeDeterminism verifies Normalize() produces stable output
// across repeated calls on the same input.
func TestNormalizeDeterminism(t *testing.T) {
	input := []byte("\xef\xbb\xbfcafé") // BOM + NFD

	baseline := Normalize(input)
	for i := 0; i < 50; i++ {
		result := Normalize(input)
		if !bytes.Equal(result, baseline) {
			t.Errorf("iteration %d produced different output", i+1)
		}
	}
}
