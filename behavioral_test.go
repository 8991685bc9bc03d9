package injected

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestS1PureBinding(t *testing.T) {
	d := NewDesign().BindInstance("a", 1)
	r := d.ToResolver()
	v, err := ResolveByName[int](context.Background(), r, "a")
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestS2FunctionBindingWithDep(t *testing.T) {
	d := NewDesign().
		BindInstance("a", 2).
		BindInjected("b", Bind1(ByName[int]("a"), func(ctx context.Context, a int) (int, error) {
			return a + 10, nil
		}))
	r := d.ToResolver()
	v, err := ResolveByName[int](context.Background(), r, "b")
	require.NoError(t, err)
	assert.Equal(t, 12, v)
}

func TestS3DiamondMemoization(t *testing.T) {
	var n int32

	c := FromFunctionN[int](nil, func(ctx context.Context, _ []any) (int, error) {
		return int(atomic.AddInt32(&n, 1)), nil
	})

	d := NewDesign().
		BindInjected("c", c).
		BindInjected("x", Bind1(ByName[int]("c"), func(ctx context.Context, c int) (int, error) { return c, nil })).
		BindInjected("y", Bind1(ByName[int]("c"), func(ctx context.Context, c int) (int, error) { return c, nil })).
		BindInjected("z", Bind2(ByName[int]("x"), ByName[int]("y"), func(ctx context.Context, x, y int) (Pair[int, int], error) {
			return Pair[int, int]{First: x, Second: y}, nil
		}))

	r := d.ToResolver()
	z, err := ResolveByName[Pair[int, int]](context.Background(), r, "z")
	require.NoError(t, err)
	assert.Equal(t, Pair[int, int]{First: 1, Second: 1}, z)
	assert.Equal(t, int32(1), atomic.LoadInt32(&n))
}

func TestS4MissingDependency(t *testing.T) {
	d := NewDesign().
		BindInjected("b", Bind1(ByName[int]("a"), func(ctx context.Context, a int) (int, error) { return a, nil }))
	r := d.ToResolver()
	_, err := ResolveByName[int](context.Background(), r, "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Missing Dependencies")
	assert.Contains(t, err.Error(), "a")

	var dre *DependencyResolutionError
	require.ErrorAs(t, err, &dre)
	require.Len(t, dre.Failures, 1)
	assert.Equal(t, "a", dre.Failures[0].Key)
}

func TestS5CacheHitCoalescesConcurrentMisses(t *testing.T) {
	dict := NewInMemoryDict()
	var counter int32

	program := FromFunctionN[string](nil, func(ctx context.Context, _ []any) (string, error) {
		atomic.AddInt32(&counter, 1)
		return "built", nil
	})

	d := NewDesign().
		BindInjected("prog", Cache(dict, program, Pure("key-ingredient")))

	r := d.ToResolver()

	var wg sync.WaitGroup
	results := make([]string, 10)
	errs := make([]error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := ResolveByName[string](context.Background(), r, "prog")
			results[i] = v
			errs[i] = err
		}(i)
	}
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, "built", results[i])
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&counter))
}

func TestS6ChildOverride(t *testing.T) {
	dp := NewDesign().
		BindInstance("a", 1).
		BindInjected("b", Bind1(ByName[int]("a"), func(ctx context.Context, a int) (int, error) { return a * 10, nil }))

	r := dp.ToResolver()
	rc := r.Child(NewDesign().BindInstance("a", 2))

	b1, err := ResolveByName[int](context.Background(), r, "b")
	require.NoError(t, err)
	assert.Equal(t, 10, b1)

	b2, err := ResolveByName[int](context.Background(), rc, "b")
	require.NoError(t, err)
	assert.Equal(t, 20, b2)

	b3, err := ResolveByName[int](context.Background(), r, "b")
	require.NoError(t, err)
	assert.Equal(t, 10, b3)
}

func TestCyclicDependencyDetected(t *testing.T) {
	d := NewDesign().
		BindInjected("a", Bind1(ByName[int]("b"), func(ctx context.Context, b int) (int, error) { return b, nil })).
		BindInjected("b", Bind1(ByName[int]("a"), func(ctx context.Context, a int) (int, error) { return a, nil }))
	r := d.ToResolver()
	_, err := ResolveByName[int](context.Background(), r, "a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Cyclic Dependency")
}
