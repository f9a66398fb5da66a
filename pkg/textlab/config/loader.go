package config

import (
	"fmt"

	"github.com/cognicore/textlab/pkg/textlab/ingest"
)

// Components holds the ingestion pieces built from a Config
type Components struct {
	Tokenizer *ingest.Tokenizer
	Pipeline  *ingest.Pipeline
}

// Components reads the stoplist, if any, and wires the tokenizer into an
// ingestion pipeline
func (c *Config) Components() (*Components, error) {
	comp := &Components{}

	if c.Corpus.StoplistPath != "" {
		stoplist, err := LoadStoplist(c.Corpus.StoplistPath)
		if err != nil {
			return nil, fmt.Errorf("load stoplist: %w", err)
		}
		comp.Tokenizer = ingest.NewTokenizer(stoplist.Terms)
	} else {
		comp.Tokenizer = ingest.NewTokenizer([]string{})
	}
	comp.Tokenizer.SetMinLength(c.Corpus.MinLength)

	comp.Pipeline = ingest.NewPipeline(comp.Tokenizer, c.Corpus.StripMarkup)
	return comp, nil
}
