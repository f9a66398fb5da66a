package ingest

import (
	"slices"
	"strings"
)

// Tokenizer splits text into lowercase words made of Latin letters.
// Every character outside a-z/A-Z acts as a separator, so "don't" yields
// "don" and "t", and digits never appear in tokens.
type Tokenizer struct {
	stopwords map[string]struct{}
	minLength int
}

// NewTokenizer creates a new tokenizer with the given stopword list
func NewTokenizer(stopwords []string) *Tokenizer {
	stops := make(map[string]struct{}, len(stopwords))
	for _, w := range stopwords {
		stops[strings.ToLower(w)] = struct{}{}
	}
	return &Tokenizer{stopwords: stops}
}

// SetMinLength drops tokens shorter than n letters. Zero keeps everything.
func (t *Tokenizer) SetMinLength(n int) {
	t.minLength = n
}

// Tokenize splits text into normalized tokens, removing stopwords.
func (t *Tokenizer) Tokenize(text string) []string {
	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		word := current.String()
		current.Reset()
		if t.keep(word) {
			tokens = append(tokens, word)
		}
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case 'a' <= c && c <= 'z':
			current.WriteByte(c)
		case 'A' <= c && c <= 'Z':
			current.WriteByte(c + ('a' - 'A'))
		default:
			flush()
		}
	}
	// Don't forget the last token
	flush()

	return tokens
}

func (t *Tokenizer) keep(word string) bool {
	if len(word) < t.minLength {
		return false
	}
	return !t.isStopword(word)
}

func (t *Tokenizer) isStopword(word string) bool {
	_, ok := t.stopwords[word]
	return ok
}

// AddStopword adds a word to the stopword list
func (t *Tokenizer) AddStopword(word string) {
	t.stopwords[strings.ToLower(word)] = struct{}{}
}

// RemoveStopword removes a word from the stopword list
func (t *Tokenizer) RemoveStopword(word string) {
	delete(t.stopwords, strings.ToLower(word))
}

// Stopwords returns the stopword list in lexical order.
func (t *Tokenizer) Stopwords() []string {
	out := make([]string, 0, len(t.stopwords))
	for w := range t.stopwords {
		out = append(out, w)
	}
	slices.Sort(out)
	return out
}

// MinLength returns the minimum token length, zero when unset.
func (t *Tokenizer) MinLength() int {
	return t.minLength
}
