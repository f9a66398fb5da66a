package dataset

import (
	"context"
	"slices"
)

// ctxCheckEvery bounds how many elements a partition processes between
// cancellation checks.
const ctxCheckEvery = 1024

// Dataset is an immutable, partitioned in-memory collection. Every
// operation produces a new Dataset; partitions are processed concurrently
// by the owning Env.
type Dataset[T any] struct {
	env   *Env
	parts [][]T
}

// Parallelize splits items into the environment's default number of
// contiguous partitions.
func Parallelize[T any](env *Env, items []T) *Dataset[T] {
	return ParallelizeN(env, items, env.partitions())
}

// ParallelizeN splits items into n contiguous partitions.
func ParallelizeN[T any](env *Env, items []T, n int) *Dataset[T] {
	if n <= 0 {
		n = 1
	}
	parts := make([][]T, n)
	size := len(items) / n
	rem := len(items) % n
	start := 0
	for i := 0; i < n; i++ {
		end := start + size
		if i < rem {
			end++
		}
		parts[i] = items[start:end:end]
		start = end
	}
	return &Dataset[T]{env: env, parts: parts}
}

// Env returns the environment the dataset runs in.
func (d *Dataset[T]) Env() *Env { return d.env }

// NumPartitions returns the partition count.
func (d *Dataset[T]) NumPartitions() int { return len(d.parts) }

// Count returns the number of elements.
func (d *Dataset[T]) Count() int {
	n := 0
	for _, p := range d.parts {
		n += len(p)
	}
	return n
}

// Collect returns all elements in partition order.
func (d *Dataset[T]) Collect() []T {
	out := make([]T, 0, d.Count())
	for _, p := range d.parts {
		out = append(out, p...)
	}
	return out
}

// TryMap applies fn to every element. The first error aborts the operation.
func TryMap[T, U any](ctx context.Context, d *Dataset[T], fn func(T) (U, error)) (*Dataset[U], error) {
	out := make([][]U, len(d.parts))
	err := d.env.run(ctx, len(d.parts), func(ctx context.Context, p int) error {
		src := d.parts[p]
		dst := make([]U, 0, len(src))
		for i, item := range src {
			if i%ctxCheckEvery == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			v, err := fn(item)
			if err != nil {
				return err
			}
			dst = append(dst, v)
		}
		out[p] = dst
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &Dataset[U]{env: d.env, parts: out}, nil
}

// Map applies fn to every element.
func Map[T, U any](ctx context.Context, d *Dataset[T], fn func(T) U) (*Dataset[U], error) {
	return TryMap(ctx, d, func(v T) (U, error) { return fn(v), nil })
}

// TryFlatMap applies fn to every element and concatenates the results.
func TryFlatMap[T, U any](ctx context.Context, d *Dataset[T], fn func(T) ([]U, error)) (*Dataset[U], error) {
	out := make([][]U, len(d.parts))
	err := d.env.run(ctx, len(d.parts), func(ctx context.Context, p int) error {
		var dst []U
		for i, item := range d.parts[p] {
			if i%ctxCheckEvery == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			vs, err := fn(item)
			if err != nil {
				return err
			}
			dst = append(dst, vs...)
		}
		out[p] = dst
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &Dataset[U]{env: d.env, parts: out}, nil
}

// FlatMap applies fn to every element and concatenates the results.
func FlatMap[T, U any](ctx context.Context, d *Dataset[T], fn func(T) []U) (*Dataset[U], error) {
	return TryFlatMap(ctx, d, func(v T) ([]U, error) { return fn(v), nil })
}

// Filter keeps the elements for which keep returns true.
func Filter[T any](ctx context.Context, d *Dataset[T], keep func(T) bool) (*Dataset[T], error) {
	return FlatMap(ctx, d, func(v T) []T {
		if keep(v) {
			return []T{v}
		}
		return nil
	})
}

// Aggregate folds every partition with seqOp starting from zero(), then
// merges the partials with combOp. zero is called once per partition so
// accumulators may be mutated in place. For a result independent of the
// partitioning, combOp must be associative and commutative and seqOp must
// agree with it.
func Aggregate[T, A any](ctx context.Context, d *Dataset[T], zero func() A, seqOp func(A, T) A, combOp func(A, A) A) (A, error) {
	partials := make([]A, len(d.parts))
	err := d.env.run(ctx, len(d.parts), func(ctx context.Context, p int) error {
		acc := zero()
		for i, item := range d.parts[p] {
			if i%ctxCheckEvery == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			acc = seqOp(acc, item)
		}
		partials[p] = acc
		return nil
	})
	if err != nil {
		var empty A
		return empty, err
	}

	result := zero()
	for _, partial := range partials {
		result = combOp(result, partial)
	}
	return result, nil
}

// Reduce combines all elements with fn. ok is false for an empty dataset.
func Reduce[T any](ctx context.Context, d *Dataset[T], fn func(T, T) T) (result T, ok bool, err error) {
	type partial struct {
		val T
		ok  bool
	}
	partials, err := Aggregate(ctx, d,
		func() []partial { return nil },
		func(acc []partial, v T) []partial {
			if len(acc) == 0 {
				return []partial{{val: v, ok: true}}
			}
			acc[0].val = fn(acc[0].val, v)
			return acc
		},
		func(a, b []partial) []partial { return append(a, b...) },
	)
	if err != nil {
		return result, false, err
	}
	for _, p := range partials {
		if !ok {
			result, ok = p.val, true
			continue
		}
		result = fn(result, p.val)
	}
	return result, ok, nil
}

// Top returns the first n elements under the ordering cmp (negative when a
// ranks ahead of b). Ties under cmp are resolved by partition order, so
// callers wanting a run-independent answer must make cmp total.
func Top[T any](ctx context.Context, d *Dataset[T], n int, cmp func(a, b T) int) ([]T, error) {
	if n <= 0 {
		return nil, nil
	}
	heads := make([][]T, len(d.parts))
	err := d.env.run(ctx, len(d.parts), func(ctx context.Context, p int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		head := slices.Clone(d.parts[p])
		slices.SortStableFunc(head, cmp)
		if len(head) > n {
			head = head[:n]
		}
		heads[p] = head
		return nil
	})
	if err != nil {
		return nil, err
	}

	var merged []T
	for _, h := range heads {
		merged = append(merged, h...)
	}
	slices.SortStableFunc(merged, cmp)
	if len(merged) > n {
		merged = merged[:n]
	}
	return merged, nil
}
