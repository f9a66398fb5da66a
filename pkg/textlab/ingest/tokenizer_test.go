package ingest

import (
	"reflect"
	"testing"
)

func TestTokenizerBasic(t *testing.T) {
	tokenizer := NewTokenizer([]string{})

	tokens := tokenizer.Tokenize("How many goals did Vancouver score last year?")
	expected := []string{"how", "many", "goals", "did", "vancouver", "score", "last", "year"}

	if !reflect.DeepEqual(tokens, expected) {
		t.Errorf("Expected %v, got %v", expected, tokens)
	}
}

func TestTokenizerNonLettersSeparate(t *testing.T) {
	tokenizer := NewTokenizer([]string{})

	tokens := tokenizer.Tokenize("don't e-mail me@host.com re:GPT-4 x86")
	expected := []string{"don", "t", "e", "mail", "me", "host", "com", "re", "gpt", "x"}

	if !reflect.DeepEqual(tokens, expected) {
		t.Errorf("Expected %v, got %v", expected, tokens)
	}
}

func TestTokenizerDropsNonLatinLetters(t *testing.T) {
	tokenizer := NewTokenizer([]string{})

	// accented letters are outside a-z and split words
	tokens := tokenizer.Tokenize("Café naïve")
	expected := []string{"caf", "na", "ve"}

	if !reflect.DeepEqual(tokens, expected) {
		t.Errorf("Expected %v, got %v", expected, tokens)
	}
}

func TestTokenizerEmpty(t *testing.T) {
	tokenizer := NewTokenizer([]string{})

	if tokens := tokenizer.Tokenize(""); len(tokens) != 0 {
		t.Errorf("Empty text should produce no tokens, got %v", tokens)
	}
	if tokens := tokenizer.Tokenize("  123 !!! 456 "); len(tokens) != 0 {
		t.Errorf("Text without letters should produce no tokens, got %v", tokens)
	}
}

func TestTokenizerMinLength(t *testing.T) {
	tokenizer := NewTokenizer([]string{})
	tokenizer.SetMinLength(2)

	tokens := tokenizer.Tokenize("I am a Go fan")
	expected := []string{"am", "go", "fan"}

	if !reflect.DeepEqual(tokens, expected) {
		t.Errorf("Expected %v, got %v", expected, tokens)
	}
}

func TestAddRemoveStopword(t *testing.T) {
	tokenizer := NewTokenizer([]string{"THE"})

	tokens := tokenizer.Tokenize("the cat")
	if len(tokens) != 1 || tokens[0] != "cat" {
		t.Errorf("Should filter 'the', got %v", tokens)
	}

	tokenizer.RemoveStopword("the")
	if tokens := tokenizer.Tokenize("the cat"); len(tokens) != 2 {
		t.Errorf("'the' should not be filtered after removal, got %v", tokens)
	}

	tokenizer.AddStopword("Cat")
	if tokens := tokenizer.Tokenize("the cat"); len(tokens) != 1 || tokens[0] != "the" {
		t.Errorf("'cat' should be filtered after adding, got %v", tokens)
	}
}
