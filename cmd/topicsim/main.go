package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/cognicore/textlab/internal/cli"
	"github.com/cognicore/textlab/pkg/textlab/topicsim"
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "topicsim: %v\n", err)
	}
	os.Exit(code)
}

// simFlags holds the command line overrides of the simulation parameters.
type simFlags struct {
	vocabulary int
	topics     int
	documents  int
	words      int
	wordConc   float64
	topicConc  float64
	seed       uint64
}

func (f *simFlags) register(fs *flag.FlagSet) {
	fs.IntVar(&f.vocabulary, "vocabulary", 0, "Vocabulary size (overrides simulation.vocabulary)")
	fs.IntVar(&f.topics, "topics", 0, "Number of topics (overrides simulation.topics)")
	fs.IntVar(&f.documents, "documents", 0, "Number of documents (overrides simulation.documents)")
	fs.IntVar(&f.words, "words", 0, "Words per document (overrides simulation.words_per_document)")
	fs.Float64Var(&f.wordConc, "word-concentration", 0, "Dirichlet concentration of topic word distributions")
	fs.Float64Var(&f.topicConc, "topic-concentration", 0, "Dirichlet concentration of document topic mixtures")
	fs.Uint64Var(&f.seed, "seed", 0, "Random seed (overrides simulation.seed)")
}

// apply copies every flag given on the command line into p, including
// explicit zeros. Validation happens afterwards.
func (f *simFlags) apply(fs *flag.FlagSet, p topicsim.Params) topicsim.Params {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "vocabulary":
			p.Vocabulary = f.vocabulary
		case "topics":
			p.Topics = f.topics
		case "documents":
			p.Documents = f.documents
		case "words":
			p.WordsPerDocument = f.words
		case "word-concentration":
			p.WordConcentration = f.wordConc
		case "topic-concentration":
			p.TopicConcentration = f.topicConc
		case "seed":
			p.Seed = f.seed
		}
	})
	return p
}

func run() (int, error) {
	var sim simFlags
	var (
		configPath = flag.String("config", "", "YAML configuration file")
		out        = flag.String("out", "", "Output file, stdout when empty")
	)
	sim.register(flag.CommandLine)
	flag.Parse()

	rt, err := cli.Setup(*configPath)
	if err != nil {
		return cli.ExitConfig, err
	}
	p := sim.apply(flag.CommandLine, rt.Config.Simulation)
	if err := p.Validate(); err != nil {
		return cli.ExitConfig, err
	}

	corpus, err := topicsim.Simulate(context.Background(), rt.Env, p)
	if err != nil {
		return cli.ExitRuntime, err
	}

	var w io.Writer = os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			return cli.ExitRuntime, err
		}
		defer f.Close()
		w = f
	}
	if _, err := corpus.WriteTo(w); err != nil {
		return cli.ExitRuntime, fmt.Errorf("write corpus: %w", err)
	}
	rt.Logger.Info("wrote corpus", "documents", len(corpus.Docs), "out", *out)
	return cli.ExitOK, nil
}
