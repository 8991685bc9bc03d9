package injected

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVarAddReifiesToSingleInjected(t *testing.T) {
	d := NewDesign().BindInstance("a", 3).BindInstance("b", 4)

	va := ProxyOf(ByName[int]("a"))
	vb := ProxyOf(ByName[int]("b"))
	sum := Add(va, vb, func(a, b int) int { return a + b })

	d = d.BindInjected("sum", sum.Eval())
	r := d.ToResolver()

	v, err := ResolveByName[int](context.Background(), r, "sum")
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestVarNotNegatesBool(t *testing.T) {
	d := NewDesign().BindInstance("flag", true)
	v := Not(ProxyOf(ByName[bool]("flag")))
	d = d.BindInjected("negated", v.Eval())
	r := d.ToResolver()

	got, err := ResolveByName[bool](context.Background(), r, "negated")
	require.NoError(t, err)
	assert.False(t, got)
}
