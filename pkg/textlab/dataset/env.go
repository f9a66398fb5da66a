package dataset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"
)

// Env is the execution environment handed to every pipeline stage.
// It decides how collections are partitioned, how many partitions run at
// once and how failed partitions are retried.
type Env struct {
	Parallelism  int           // concurrent partitions
	Partitions   int           // default partition count for Parallelize and shuffles
	MaxRetries   uint64        // retries per partition for transient failures
	RetryInitial time.Duration // first backoff interval
	Logger       *slog.Logger
}

// Option mutates an Env during construction.
type Option func(*Env)

// WithParallelism sets the number of partitions processed concurrently.
func WithParallelism(n int) Option {
	return func(e *Env) { e.Parallelism = n }
}

// WithPartitions sets the default partition count.
func WithPartitions(n int) Option {
	return func(e *Env) { e.Partitions = n }
}

// WithRetry configures partition retries.
func WithRetry(max uint64, initial time.Duration) Option {
	return func(e *Env) {
		e.MaxRetries = max
		e.RetryInitial = initial
	}
}

// WithLogger sets the logger used for progress and retry messages.
func WithLogger(l *slog.Logger) Option {
	return func(e *Env) { e.Logger = l }
}

// NewEnv creates an environment sized to the machine, adjusted by opts.
func NewEnv(opts ...Option) *Env {
	cpus := runtime.NumCPU()
	e := &Env{
		Parallelism:  cpus,
		Partitions:   cpus * 2,
		MaxRetries:   3,
		RetryInitial: 50 * time.Millisecond,
		Logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Env) parallelism() int {
	if e == nil || e.Parallelism <= 0 {
		return 1
	}
	return e.Parallelism
}

func (e *Env) partitions() int {
	if e == nil || e.Partitions <= 0 {
		return 1
	}
	return e.Partitions
}

// Log returns the environment logger, falling back to slog.Default.
func (e *Env) Log() *slog.Logger {
	if e == nil || e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}

// run executes task once per partition, at most Parallelism at a time.
// The first permanent failure cancels the remaining partitions.
func (e *Env) run(ctx context.Context, n int, task func(ctx context.Context, part int) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.parallelism())
	for i := 0; i < n; i++ {
		g.Go(func() error {
			return e.attempt(gctx, i, task)
		})
	}
	return g.Wait()
}

func (e *Env) attempt(ctx context.Context, part int, task func(ctx context.Context, part int) error) error {
	var policy backoff.BackOff
	if e == nil || e.MaxRetries == 0 {
		policy = &backoff.StopBackOff{}
	} else {
		exp := backoff.NewExponentialBackOff()
		if e.RetryInitial > 0 {
			exp.InitialInterval = e.RetryInitial
		}
		exp.MaxElapsedTime = 0
		policy = backoff.WithMaxRetries(exp, e.MaxRetries)
	}

	tries := 0
	op := func() error {
		tries++
		err := safeCall(ctx, part, task)
		if err == nil {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return backoff.Permanent(ctxErr)
		}
		if !IsTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		e.Log().Warn("partition failed, retrying",
			"partition", part, "attempt", tries, "wait", wait, "error", err)
	}
	return backoff.RetryNotify(op, backoff.WithContext(policy, ctx), notify)
}

func safeCall(ctx context.Context, part int, task func(ctx context.Context, part int) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = Transient(fmt.Errorf("partition %d panicked: %v", part, r))
		}
	}()
	return task(ctx, part)
}

type transientError struct {
	err error
}

func (t *transientError) Error() string { return t.err.Error() }
func (t *transientError) Unwrap() error { return t.err }

// Transient marks err as retryable. Partitions failing with any other
// error abort the whole operation.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// IsTransient reports whether err was marked with Transient.
func IsTransient(err error) bool {
	var t *transientError
	return errors.As(err, &t)
}
