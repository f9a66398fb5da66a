package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/cognicore/textlab/internal/cli"
	"github.com/cognicore/textlab/internal/report"
	"github.com/cognicore/textlab/pkg/textlab"
	"github.com/cognicore/textlab/pkg/textlab/store"
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "regression: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	var (
		configPath = flag.String("config", "", "YAML configuration file")
		data       = flag.String("data", "", "Corpus file or directory (overrides corpus.path)")
		db         = flag.String("db", "", "SQLite database for trained models (overrides store.path)")
		query      = flag.String("query", "", "Text to score")
		runID      = flag.String("run", "", "Score with a stored run instead of training; \"latest\" for the newest")
		list       = flag.Bool("list", false, "List stored regression runs and exit")
		dimension  = flag.Int("dimension", -1, "Projected dimension, 0 disables projection (overrides regression.dimension)")
		coef       = flag.Int("coef", 0, "Print the first n coefficients")
	)
	flag.Parse()

	rt, err := cli.Setup(*configPath)
	if err != nil {
		return cli.ExitConfig, err
	}
	cfg := rt.Config
	if *data != "" {
		cfg.Corpus.Path = *data
	}
	if *db != "" {
		cfg.Store.Path = *db
	}
	if *dimension >= 0 {
		cfg.Regression.Dimension = *dimension
	}
	if err := cfg.Validate(); err != nil {
		return cli.ExitConfig, err
	}
	if *runID != "" && cfg.Store.Path == "" {
		return cli.ExitConfig, fmt.Errorf("-run needs -db or store.path")
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

	if *list {
		runs, err := st.ListRuns(ctx, store.KindRegression, 0)
		if err != nil {
			return cli.ExitRuntime, err
		}
		report.Runs(os.Stdout, runs)
		return cli.ExitOK, nil
	}

	var model *textlab.Model
	if *runID != "" {
		id := *runID
		if id == "latest" {
			id = ""
		}
		if model, err = lab.LoadModel(ctx, id); err != nil {
			return cli.ExitRuntime, err
		}
		rt.Logger.Info("loaded regression run", "run", model.RunID)
	} else {
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
		if model, err = lab.TrainRegression(ctx); err != nil {
			return cli.ExitRuntime, err
		}
		if _, err := lab.SaveModel(ctx, model); err != nil {
			return cli.ExitRuntime, err
		}
	}

	if *coef > 0 {
		report.Coefficients(os.Stdout, model.Coefficients(), *coef)
	}

	if *query != "" {
		positive, score, err := model.Predict(*query)
		if err != nil {
			return cli.ExitRuntime, err
		}
		fmt.Printf("score=%g positive=%t\n", score, positive)
	}
	return cli.ExitOK, nil
}
