package injected

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartialBindsLeadingParameters(t *testing.T) {
	add := func(base int, extra int) int { return base + extra }

	d := NewDesign().
		BindInstance("base", 10).
		BindInjected("adder", Partial[func(int, int) int, func(int) int](add, ByName[int]("base")))

	r := d.ToResolver()
	fn, err := ResolveByName[func(int) int](context.Background(), r, "adder")
	require.NoError(t, err)
	assert.Equal(t, 15, fn(5))
}

func TestPartialSignatureMismatch(t *testing.T) {
	add := func(a, b int) int { return a + b }

	d := NewDesign().
		BindInjected("bad", Partial[func(int, int) int, func(int, int) int](add,
			Pure(1), Pure(2), Pure(3)))
	r := d.ToResolver()
	_, err := ResolveByName[func(int, int) int](context.Background(), r, "bad")
	require.Error(t, err)
	var sme *SignatureMismatchError
	require.ErrorAs(t, err, &sme)
}
