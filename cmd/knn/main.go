package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/cognicore/textlab/internal/cli"
	"github.com/cognicore/textlab/internal/report"
	"github.com/cognicore/textlab/pkg/textlab"
	"github.com/cognicore/textlab/pkg/textlab/knn"
	"github.com/cognicore/textlab/pkg/textlab/stoplist"
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "knn: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	var (
		configPath = flag.String("config", "", "YAML configuration file")
		data       = flag.String("data", "", "Corpus file or directory (overrides corpus.path)")
		query      = flag.String("query", "", "Text to classify (required)")
		k          = flag.Int("k", 0, "Number of neighbors (overrides knn.k)")
		mode       = flag.String("mode", "", "Vector mode: tfidf or counts (overrides knn.mode)")
		similarity = flag.String("similarity", "", "cosine or dot (overrides knn.similarity)")
		db         = flag.String("db", "", "SQLite database to record the run in (overrides store.path)")
		neighbors  = flag.Bool("neighbors", false, "Also print the neighbors")
		stopwords  = flag.Bool("suggest-stopwords", false, "Print stopword candidates and add them to the stored stoplist")
	)
	flag.Parse()

	if *query == "" {
		return cli.ExitConfig, fmt.Errorf("-query required")
	}

	rt, err := cli.Setup(*configPath)
	if err != nil {
		return cli.ExitConfig, err
	}
	cfg := rt.Config
	if *data != "" {
		cfg.Corpus.Path = *data
	}
	if *k > 0 {
		cfg.KNN.K = *k
	}
	if *mode != "" {
		cfg.KNN.Mode = *mode
	}
	if *similarity != "" {
		cfg.KNN.Similarity = *similarity
	}
	if *db != "" {
		cfg.Store.Path = *db
	}
	if err := cfg.Validate(); err != nil {
		return cli.ExitConfig, err
	}

	opts, err := textlab.OptionsFromConfig(cfg)
	if err != nil {
		return cli.ExitConfig, err
	}

	ctx := context.Background()
	st, err := rt.OpenStore(ctx, cfg.Store.Path)
	if err != nil {
		return cli.ExitRuntime, err
	}
	opts.Env = rt.Env
	opts.Store = st
	lab := textlab.New(opts)
	defer func() {
		_ = lab.Close()
	}()

	if n, err := lab.UseStoredStoplist(ctx); err != nil {
		return cli.ExitRuntime, err
	} else if n > 0 {
		rt.Logger.Info("applied stored stoplist", "words", n)
	}

	lines, err := rt.ReadCorpus(cfg.Corpus.Path)
	if err != nil {
		return cli.ExitRuntime, err
	}
	if err := lab.Index(ctx, lines); err != nil {
		return cli.ExitRuntime, err
	}
	if cfg.Store.Path != "" {
		if _, err := lab.SaveIndex(ctx); err != nil {
			return cli.ExitRuntime, err
		}
	}

	if *stopwords {
		candidates, err := lab.SuggestStopwords(ctx, stoplist.DefaultThresholds())
		if err != nil {
			return cli.ExitRuntime, err
		}
		report.Stopwords(os.Stdout, candidates)
		fmt.Println()
		if err := lab.SaveStopwords(ctx, candidates); err != nil {
			return cli.ExitRuntime, err
		}
	}

	found, err := lab.Neighbors(ctx, *query, cfg.KNN.K)
	if err != nil {
		return cli.ExitRuntime, err
	}
	if *neighbors {
		report.Neighbors(os.Stdout, found)
		fmt.Println()
	}
	votes := knn.Tally(found)
	report.Votes(os.Stdout, votes)
	if len(votes) > 0 {
		fmt.Printf("\nPredicted: %s\n", votes[0].Label)
	}
	return cli.ExitOK, nil
}
