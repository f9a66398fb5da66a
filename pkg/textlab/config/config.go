package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/cognicore/textlab/pkg/textlab/dataset"
	"github.com/cognicore/textlab/pkg/textlab/internalerr"
	"github.com/cognicore/textlab/pkg/textlab/topicsim"
)

// EnvPrefix prefixes every environment override, e.g. TEXTLAB_VOCABULARY_SIZE
// or TEXTLAB_CORPUS_STOPLIST_PATH. Unprefixed variables are never read.
const EnvPrefix = "TEXTLAB"

// Config is the full tool configuration.
type Config struct {
	LogLevel   string          `yaml:"log_level" split_words:"true" validate:"oneof=DEBUG INFO WARN ERROR"`
	Corpus     Corpus          `yaml:"corpus"`
	Vocabulary Vocabulary      `yaml:"vocabulary"`
	Runtime    Runtime         `yaml:"runtime"`
	KNN        KNN             `yaml:"knn"`
	Regression Regression      `yaml:"regression"`
	Store      Store           `yaml:"store"`
	Simulation topicsim.Params `yaml:"simulation"`
}

// Corpus describes where documents come from and how they are tokenized.
type Corpus struct {
	Path         string `yaml:"path"`
	StripMarkup  bool   `yaml:"strip_markup" split_words:"true"`
	StoplistPath string `yaml:"stoplist" split_words:"true"`
	MinLength    int    `yaml:"min_token_length" split_words:"true" validate:"gte=0"`
}

// Vocabulary sizes the dictionary.
type Vocabulary struct {
	Size int `yaml:"size" validate:"gt=0"`
}

// Runtime sizes the execution environment. Zero means one per CPU.
type Runtime struct {
	Parallelism  int           `yaml:"parallelism" validate:"gte=0"`
	Partitions   int           `yaml:"partitions" validate:"gte=0"`
	MaxRetries   uint64        `yaml:"max_retries" split_words:"true"`
	RetryInitial time.Duration `yaml:"retry_initial" split_words:"true" validate:"gte=0"`
}

// KNN configures nearest-neighbor classification.
type KNN struct {
	K          int    `yaml:"k" validate:"gt=0"`
	Similarity string `yaml:"similarity" validate:"oneof=cosine dot"`
	Mode       string `yaml:"mode" validate:"oneof=tfidf counts"`
}

// Regression configures the linear-regression classifier.
type Regression struct {
	Dimension      int      `yaml:"dimension" validate:"gte=0"` // 0 skips projection
	Seed           uint64   `yaml:"seed"`
	Whiten         bool     `yaml:"whiten"`
	WhitenQuery    bool     `yaml:"whiten_query" split_words:"true"`
	PositiveLabels []string `yaml:"positive_labels" split_words:"true" validate:"min=1,dive,required"`
}

// Store selects persistence. An empty path keeps everything in memory.
type Store struct {
	Path string `yaml:"path"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		LogLevel:   "INFO",
		Vocabulary: Vocabulary{Size: 20000},
		Runtime: Runtime{
			MaxRetries:   3,
			RetryInitial: 50 * time.Millisecond,
		},
		KNN: KNN{K: 30, Similarity: "cosine", Mode: "tfidf"},
		Regression: Regression{
			Dimension:      1000,
			Seed:           1,
			Whiten:         true,
			WhitenQuery:    true,
			PositiveLabels: []string{"soc.religion.christian", "alt.atheism", "talk.religion.misc"},
		},
		Simulation: topicsim.DefaultParams(),
	}
}

// Load reads path over the defaults, applies TEXTLAB_* environment
// overrides and validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("%w: environment: %v", internalerr.ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			first := verrs[0]
			return fmt.Errorf("%w: %s fails %q (value %v)",
				internalerr.ErrInvalidConfig, first.Namespace(), first.Tag(), first.Value())
		}
		return fmt.Errorf("%w: %v", internalerr.ErrInvalidConfig, err)
	}
	return nil
}

// Env builds the execution environment.
func (r Runtime) Env(logger *slog.Logger) *dataset.Env {
	opts := []dataset.Option{
		dataset.WithRetry(r.MaxRetries, r.RetryInitial),
		dataset.WithLogger(logger),
	}
	if r.Parallelism > 0 {
		opts = append(opts, dataset.WithParallelism(r.Parallelism))
	}
	if r.Partitions > 0 {
		opts = append(opts, dataset.WithPartitions(r.Partitions))
	}
	return dataset.NewEnv(opts...)
}

// Stoplist represents the stopword list configuration
type Stoplist struct {
	Terms []string `yaml:"terms"`
}

// LoadStoplist loads stopwords from a YAML file
func LoadStoplist(path string) (*Stoplist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sl Stoplist
	if err := yaml.Unmarshal(data, &sl); err != nil {
		return nil, err
	}

	return &sl, nil
}
