package injected

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"golang.org/x/sync/singleflight"
)

// AsyncDict is the storage backend a Cache writes through to. The core
// library ships only an in-memory implementation (InMemoryDict);
// persistence-backed backends are an explicit non-goal (spec §9
// Supplemented Feature 4 drops pinjected's file/redis-backed variants,
// keeping only the fingerprinting and at-most-once-build behavior).
type AsyncDict interface {
	Get(ctx context.Context, key string) (value any, ok bool, err error)
	Set(ctx context.Context, key string, value any) error
}

// InMemoryDict is a process-local AsyncDict, sufficient for tests and
// for Cache's own default.
type InMemoryDict struct {
	store map[string]any
}

// NewInMemoryDict creates an empty InMemoryDict.
func NewInMemoryDict() *InMemoryDict {
	return &InMemoryDict{store: map[string]any{}}
}

func (d *InMemoryDict) Get(ctx context.Context, key string) (any, bool, error) {
	v, ok := d.store[key]
	return v, ok, nil
}

func (d *InMemoryDict) Set(ctx context.Context, key string, value any) error {
	d.store[key] = value
	return nil
}

type cacheNode struct {
	ingredients []node
	build       node
	dict        AsyncDict
	group       *singleflight.Group
	origin      Origin
}

func (n *cacheNode) deps() depSet {
	sets := make([]depSet, 0, len(n.ingredients)+1)
	for _, i := range n.ingredients {
		sets = append(sets, i.deps())
	}
	sets = append(sets, n.build.deps())
	return unionDepSets(sets...)
}

func (n *cacheNode) dynDeps() depSet {
	sets := make([]depSet, 0, len(n.ingredients)+1)
	for _, i := range n.ingredients {
		sets = append(sets, i.dynDeps())
	}
	sets = append(sets, n.build.dynDeps())
	return unionDepSets(sets...)
}

func (n *cacheNode) origin() Origin { return n.origin }

func (n *cacheNode) provide(ctx context.Context, env *resolveEnv) (any, error) {
	ingredientVals, err := resolveConcurrently(ctx, env, n.ingredients)
	if err != nil {
		return nil, err
	}

	fp, err := fingerprint(ingredientVals)
	if err != nil {
		return nil, fmt.Errorf("injected: cache fingerprint: %w", err)
	}

	if v, ok, err := n.dict.Get(ctx, fp); err != nil {
		return nil, err
	} else if ok {
		return v, nil
	}

	v, err, _ := n.group.Do(fp, func() (any, error) {
		if v, ok, err := n.dict.Get(ctx, fp); err != nil {
			return nil, err
		} else if ok {
			return v, nil
		}
		built, err := n.build.provide(ctx, env)
		if err != nil {
			return nil, err
		}
		if werr := n.dict.Set(ctx, fp, built); werr != nil {
			// one retry, per spec §9 Supplemented Feature 4's
			// write-through-with-retry behavior
			werr = n.dict.Set(ctx, fp, built)
			if werr != nil {
				return nil, fmt.Errorf("injected: cache write-through failed after retry: %w", werr)
			}
		}
		return built, nil
	})
	return v, err
}

// fingerprint computes a stable SHA-256 digest over ingredients,
// canonically serialized (map keys sorted) so the same logical inputs
// always hash the same way regardless of map iteration order.
func fingerprint(ingredients []any) (string, error) {
	canon := make([]any, len(ingredients))
	for i, v := range ingredients {
		canon[i] = canonicalize(v)
	}
	b, err := json.Marshal(canon)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

func canonicalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]any, 0, len(t)*2)
		for _, k := range keys {
			out = append(out, k, canonicalize(t[k]))
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = canonicalize(e)
		}
		return out
	default:
		return v
	}
}

// Cache builds an Injected[T] by computing build only once per unique
// combination of ingredients' resolved values (the "key ingredients"),
// write-through into dict, and coalescing concurrent requests for the
// same fingerprint via a single singleflight.Group — grounded on the
// same golang.org/x/sync/singleflight usage as Scope's at-most-once
// memoization, applied here to pinjected's async_caching decorators
// (spec §9 Supplemented Feature 4).
func Cache[T any](dict AsyncDict, build Injected[T], ingredients ...AnyInjected) Injected[T] {
	origin := captureOrigin(1)
	nodes := make([]node, len(ingredients))
	for i, ing := range ingredients {
		nodes[i] = ing.anyNode()
	}
	return wrap[T](&cacheNode{
		ingredients: nodes,
		build:       build.n,
		dict:        dict,
		group:       &singleflight.Group{},
		origin:      origin,
	})
}

// AsyncCache is an alias for Cache kept for readers porting code from
// pinjected's async_cache decorator family; Go has no separate
// sync/async provider distinction (spec §4.7 note), so both names
// produce the same node.
func AsyncCache[T any](dict AsyncDict, build Injected[T], ingredients ...AnyInjected) Injected[T] {
	return Cache(dict, build, ingredients...)
}
