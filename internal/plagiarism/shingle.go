package plagiarism

import (
	"strings"
	"unicode"
)

// DefaultShingleLength is the number of words per shingle
const DefaultShingleLength = 3

// ShingleSet is a deduplicated set of word n-grams
type ShingleSet map[string]struct{}

// Tokenizer turns raw text into word shingles
type Tokenizer struct {
	shingleLength int
}

// NewTokenizer creates a tokenizer producing shingles of shingleLength words.
// Non-positive lengths fall back to DefaultShingleLength.
func NewTokenizer(shingleLength int) *Tokenizer {
	if shingleLength < 1 {
		shingleLength = DefaultShingleLength
	}
	return &Tokenizer{shingleLength: shingleLength}
}

// ShingleLength returns the configured window size
func (t *Tokenizer) ShingleLength() int {
	return t.shingleLength
}

// Tokenize lowercases text, strips non-word characters and returns the set of
// every contiguous window of ShingleLength words joined by a single space.
// Texts with fewer words than the window produce an empty set.
func (t *Tokenizer) Tokenize(text string) ShingleSet {
	words := Words(text)
	if len(words) < t.shingleLength {
		return ShingleSet{}
	}

	shingles := make(ShingleSet, len(words)-t.shingleLength+1)
	for i := 0; i+t.shingleLength <= len(words); i++ {
		shingles[strings.Join(words[i:i+t.shingleLength], " ")] = struct{}{}
	}

	return shingles
}

// Words normalizes text into its lowercase word list.
// Word characters are Unicode letters, marks, numbers and underscore; anything
// else that is not whitespace is dropped without splitting the word.
func Words(text string) []string {
	if text == "" {
		return nil
	}

	var sb strings.Builder
	sb.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		switch {
		case isWordRune(r):
			sb.WriteRune(r)
		case unicode.IsSpace(r):
			sb.WriteRune(' ')
		}
	}

	return strings.Fields(sb.String())
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsMark(r)
}
