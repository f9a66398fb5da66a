package ingest

import (
	"context"

	"github.com/cognicore/textlab/pkg/textlab/dataset"
)

// Pipeline orchestrates the ingestion flow:
// raw line → record → markup stripping → tokenization
type Pipeline struct {
	tokenizer   *Tokenizer
	stripMarkup bool
}

// NewPipeline creates an ingestion pipeline with the given components
func NewPipeline(tokenizer *Tokenizer, stripMarkup bool) *Pipeline {
	return &Pipeline{
		tokenizer:   tokenizer,
		stripMarkup: stripMarkup,
	}
}

// Tokenizer returns the tokenizer the pipeline applies.
func (p *Pipeline) Tokenizer() *Tokenizer {
	return p.tokenizer
}

// StripsMarkup reports whether payloads go through StripMarkup.
func (p *Pipeline) StripsMarkup() bool {
	return p.stripMarkup
}

// Tokens is a document reduced to its token stream
type Tokens struct {
	ID    string
	Label string
	Words []string
}

// Process runs a single document through tokenization
func (p *Pipeline) Process(doc Doc) Tokens {
	text := doc.Text
	if p.stripMarkup {
		text = StripMarkup(text)
	}
	label := doc.Label
	if label == "" {
		label = Label(doc.ID)
	}
	return Tokens{
		ID:    doc.ID,
		Label: label,
		Words: p.tokenizer.Tokenize(text),
	}
}

// TokenizeText tokenizes free text, such as a query, the same way corpus
// documents are tokenized.
func (p *Pipeline) TokenizeText(text string) []string {
	return p.Process(Doc{Text: text}).Words
}

type numberedLine struct {
	no   int
	text string
}

// Parse turns raw corpus lines into documents. Lines that cannot hold a
// record are skipped; record lines with missing markers abort the run.
func (p *Pipeline) Parse(ctx context.Context, env *dataset.Env, lines []string) (*dataset.Dataset[Doc], error) {
	numbered := make([]numberedLine, len(lines))
	for i, l := range lines {
		numbered[i] = numberedLine{no: i + 1, text: l}
	}

	valid, err := dataset.Filter(ctx, dataset.Parallelize(env, numbered), func(l numberedLine) bool {
		return IsRecordLine(l.text)
	})
	if err != nil {
		return nil, err
	}
	return dataset.TryMap(ctx, valid, func(l numberedLine) (Doc, error) {
		return ParseRecord(l.text, l.no)
	})
}

// Tokenize processes every document of a dataset.
func (p *Pipeline) Tokenize(ctx context.Context, docs *dataset.Dataset[Doc]) (*dataset.Dataset[Tokens], error) {
	return dataset.Map(ctx, docs, p.Process)
}

// Load parses and tokenizes raw corpus lines.
func (p *Pipeline) Load(ctx context.Context, env *dataset.Env, lines []string) (*dataset.Dataset[Tokens], error) {
	docs, err := p.Parse(ctx, env, lines)
	if err != nil {
		return nil, err
	}
	env.Log().Info("parsed corpus", "lines", len(lines), "documents", docs.Count())
	return p.Tokenize(ctx, docs)
}
