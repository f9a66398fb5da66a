package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/cognicore/textlab/internal/cli"
	"github.com/cognicore/textlab/internal/report"
	"github.com/cognicore/textlab/pkg/textlab/vocab"
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "wordcount: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	var (
		configPath = flag.String("config", "", "YAML configuration file")
		path       = flag.String("path", "", "Text file or directory of text files (required)")
		k          = flag.Int("k", 200, "Number of words to report")
		clean      = flag.Bool("clean", false, "Lowercase words and drop single characters")
		minLength  = flag.Int("min-length", -1, "Drop words shorter than this (default 2 with -clean, else 0)")
	)
	flag.Parse()

	if *path == "" {
		return cli.ExitConfig, fmt.Errorf("-path required")
	}
	if *k <= 0 {
		return cli.ExitConfig, fmt.Errorf("-k must be positive, got %d", *k)
	}

	opts := vocab.CountOptions{Lowercase: *clean, MinLength: *minLength}
	if opts.MinLength < 0 {
		opts.MinLength = 0
		if *clean {
			opts.MinLength = 2
		}
	}

	rt, err := cli.Setup(*configPath)
	if err != nil {
		return cli.ExitConfig, err
	}
	lines, err := rt.ReadCorpus(*path)
	if err != nil {
		return cli.ExitRuntime, err
	}

	counts, err := vocab.CountWords(context.Background(), rt.Env, lines, *k, opts)
	if err != nil {
		return cli.ExitRuntime, err
	}

	report.WordCounts(os.Stdout, counts)
	return cli.ExitOK, nil
}
