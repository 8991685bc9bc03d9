package injected

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapValueTransformsResult(t *testing.T) {
	d := NewDesign().BindInstance("a", 2).
		BindInjected("doubled", MapValue(ByName[int]("a"), func(a int) int { return a * 2 }))
	r := d.ToResolver()
	v, err := ResolveByName[int](context.Background(), r, "doubled")
	require.NoError(t, err)
	assert.Equal(t, 4, v)
}

func TestZip2ResolvesBothConcurrently(t *testing.T) {
	d := NewDesign().BindInstance("a", 1).BindInstance("b", "x").
		BindInjected("pair", Zip2(ByName[int]("a"), ByName[string]("b")))
	r := d.ToResolver()
	v, err := ResolveByName[Pair[int, string]](context.Background(), r, "pair")
	require.NoError(t, err)
	assert.Equal(t, Pair[int, string]{First: 1, Second: "x"}, v)
}

func TestDictResolvesEveryEntry(t *testing.T) {
	d := NewDesign().BindInstance("a", 1).BindInstance("b", 2).
		BindInjected("sums", Dict(map[string]AnyInjected{
			"a": ByName[int]("a"),
			"b": ByName[int]("b"),
		}))
	r := d.ToResolver()
	v, err := ResolveByName[map[string]any](context.Background(), r, "sums")
	require.NoError(t, err)
	assert.Equal(t, 1, v["a"])
	assert.Equal(t, 2, v["b"])
}

func TestConditionalSkipsUntakenBranch(t *testing.T) {
	ranFalse := false
	falseBranch := FromFunctionN[string](nil, func(ctx context.Context, _ []any) (string, error) {
		ranFalse = true
		return "false-branch", nil
	})
	trueBranch := Pure("true-branch")

	d := NewDesign().
		BindInstance("cond", true).
		BindInjected("picked", Conditional(ByName[bool]("cond"), trueBranch, falseBranch))
	r := d.ToResolver()
	v, err := ResolveByName[string](context.Background(), r, "picked")
	require.NoError(t, err)
	assert.Equal(t, "true-branch", v)
	assert.False(t, ranFalse)
}

// TestConditionalSkipsUntakenNamedBranch covers the common DI use of
// Conditional: switching between two *bound* implementations. The
// untaken branch's own named binding must never have its provider
// invoked, even though both branches are Design keys looked up via
// ByName.
func TestConditionalSkipsUntakenNamedBranch(t *testing.T) {
	offRan := false

	d := NewDesign().
		BindInstance("cond", true).
		BindInjected("onKey", Pure("on-impl")).
		BindInjected("offKey", FromFunctionN[string](nil, func(ctx context.Context, _ []any) (string, error) {
			offRan = true
			return "off-impl", nil
		})).
		BindInjected("picked", Conditional(ByName[bool]("cond"), ByName[string]("onKey"), ByName[string]("offKey")))

	r := d.ToResolver()
	v, err := ResolveByName[string](context.Background(), r, "picked")
	require.NoError(t, err)
	assert.Equal(t, "on-impl", v)
	assert.False(t, offRan, "the untaken branch's provider must never run")
}

// TestConditionalTakenBranchMissingBindingFailsAtExecution documents
// the laziness tradeoff: an unbound key in the UNTAKEN branch is never
// even checked, but a cond that ends up picking a branch with a
// missing binding still surfaces as a DependencyResolutionError, just
// discovered when that branch is reached rather than up front.
func TestConditionalTakenBranchMissingBindingFailsAtExecution(t *testing.T) {
	d := NewDesign().
		BindInstance("cond", true).
		BindInjected("picked", Conditional(ByName[bool]("cond"), ByName[string]("onKey"), ByName[string]("offKey")))

	r := d.ToResolver()
	_, err := ResolveByName[string](context.Background(), r, "picked")
	require.Error(t, err)
	var dre *DependencyResolutionError
	require.ErrorAs(t, err, &dre)
}

func TestFromResolverHandleResolvesComputedKey(t *testing.T) {
	d := NewDesign().
		BindInstance("key", "a").
		BindInstance("a", 42).
		BindInjected("dynamic", FromResolverHandle(func(ctx context.Context, h *ResolverHandle) (int, error) {
			key, err := ResolveTyped[string](ctx, h, "key")
			if err != nil {
				return 0, err
			}
			return ResolveTyped[int](ctx, h, key)
		}))
	r := d.ToResolver()
	v, err := ResolveByName[int](context.Background(), r, "dynamic")
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestValidatorRejectsBadValue(t *testing.T) {
	d := NewDesign().
		BindInstance("port", -1).
		WithValidator("port", func(v any) error {
			if v.(int) < 0 {
				return assert.AnError
			}
			return nil
		})
	r := d.ToResolver()
	_, err := ResolveByName[int](context.Background(), r, "port")
	require.Error(t, err)
	var verr *DependencyValidationError
	require.ErrorAs(t, err, &verr)
}
