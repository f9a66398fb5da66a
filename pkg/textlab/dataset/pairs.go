package dataset

import (
	"context"
	"hash/maphash"
)

// KV is a keyed element of a pair dataset.
type KV[K comparable, V any] struct {
	Key   K
	Value V
}

// Pair builds a KV.
func Pair[K comparable, V any](k K, v V) KV[K, V] {
	return KV[K, V]{Key: k, Value: v}
}

// Joined holds the matching values of an inner join.
type Joined[V, W any] struct {
	Left  V
	Right W
}

// combineByKey is the shuffle behind ReduceByKey, GroupByKey and
// AggregateByKey. Each input partition pre-combines its values into one map
// per output bucket; buckets then merge the maps of every input partition in
// partition order.
func combineByKey[K comparable, V, C any](
	ctx context.Context,
	d *Dataset[KV[K, V]],
	create func(V) C,
	merge func(C, V) C,
	mergeCombiners func(C, C) C,
) (*Dataset[KV[K, C]], error) {
	env := d.env
	buckets := env.partitions()
	seed := maphash.MakeSeed()

	local := make([][]map[K]C, len(d.parts))
	err := env.run(ctx, len(d.parts), func(ctx context.Context, p int) error {
		maps := make([]map[K]C, buckets)
		for b := range maps {
			maps[b] = make(map[K]C)
		}
		for i, kv := range d.parts[p] {
			if i%ctxCheckEvery == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			b := int(maphash.Comparable(seed, kv.Key) % uint64(buckets))
			if c, ok := maps[b][kv.Key]; ok {
				maps[b][kv.Key] = merge(c, kv.Value)
			} else {
				maps[b][kv.Key] = create(kv.Value)
			}
		}
		local[p] = maps
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([][]KV[K, C], buckets)
	err = env.run(ctx, buckets, func(ctx context.Context, b int) error {
		merged := make(map[K]C)
		order := make([]K, 0)
		for p := range local {
			for k, c := range local[p][b] {
				if prev, ok := merged[k]; ok {
					merged[k] = mergeCombiners(prev, c)
				} else {
					merged[k] = c
					order = append(order, k)
				}
			}
		}
		part := make([]KV[K, C], 0, len(order))
		for _, k := range order {
			part = append(part, KV[K, C]{Key: k, Value: merged[k]})
		}
		out[b] = part
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &Dataset[KV[K, C]]{env: env, parts: out}, nil
}

// ReduceByKey merges the values of each key with fn, which must be
// associative and commutative.
func ReduceByKey[K comparable, V any](ctx context.Context, d *Dataset[KV[K, V]], fn func(V, V) V) (*Dataset[KV[K, V]], error) {
	return combineByKey(ctx, d, func(v V) V { return v }, fn, fn)
}

// GroupByKey collects the values of each key. Values keep partition order.
func GroupByKey[K comparable, V any](ctx context.Context, d *Dataset[KV[K, V]]) (*Dataset[KV[K, []V]], error) {
	return combineByKey(ctx, d,
		func(v V) []V { return []V{v} },
		func(c []V, v V) []V { return append(c, v) },
		func(a, b []V) []V { return append(a, b...) },
	)
}

// AggregateByKey folds the values of each key into an accumulator created
// by zero, merging per-partition accumulators with combOp.
func AggregateByKey[K comparable, V, A any](
	ctx context.Context,
	d *Dataset[KV[K, V]],
	zero func() A,
	seqOp func(A, V) A,
	combOp func(A, A) A,
) (*Dataset[KV[K, A]], error) {
	return combineByKey(ctx, d,
		func(v V) A { return seqOp(zero(), v) },
		seqOp,
		combOp,
	)
}

// Join is an inner join on key: one output element per matching
// (left, right) value pair.
func Join[K comparable, V, W any](ctx context.Context, left *Dataset[KV[K, V]], right *Dataset[KV[K, W]]) (*Dataset[KV[K, Joined[V, W]]], error) {
	lg, err := GroupByKey(ctx, left)
	if err != nil {
		return nil, err
	}
	rg, err := GroupByKey(ctx, right)
	if err != nil {
		return nil, err
	}

	// right side is broadcast to every left partition
	small := make(map[K][]W, rg.Count())
	for _, kv := range rg.Collect() {
		small[kv.Key] = kv.Value
	}

	return FlatMap(ctx, lg, func(kv KV[K, []V]) []KV[K, Joined[V, W]] {
		rs, ok := small[kv.Key]
		if !ok {
			return nil
		}
		out := make([]KV[K, Joined[V, W]], 0, len(kv.Value)*len(rs))
		for _, l := range kv.Value {
			for _, r := range rs {
				out = append(out, KV[K, Joined[V, W]]{Key: kv.Key, Value: Joined[V, W]{Left: l, Right: r}})
			}
		}
		return out
	})
}
