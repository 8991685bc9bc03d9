package injected

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDesignMergeIsRightBiased(t *testing.T) {
	a := NewDesign().BindInstance("x", 1)
	b := NewDesign().BindInstance("x", 2)
	merged := a.Merge(b)

	bind, ok := merged.lookup("x")
	assert.True(t, ok)
	assert.Equal(t, 2, bind.Value.anyNode().(*pureNode).value)
}

func TestDesignPlusIsAliasForMerge(t *testing.T) {
	a := NewDesign().BindInstance("x", 1)
	b := NewDesign().BindInstance("y", 2)
	combined := a.Plus(b)
	assert.True(t, combined.Has("x"))
	assert.True(t, combined.Has("y"))
}

func TestDesignUnbind(t *testing.T) {
	d := NewDesign().BindInstance("x", 1)
	assert.True(t, d.Has("x"))
	d2 := d.Unbind("x")
	assert.False(t, d2.Has("x"))
	assert.True(t, d.Has("x"), "Unbind must not mutate the receiver")
}

func TestDesignIsImmutable(t *testing.T) {
	base := NewDesign().BindInstance("x", 1)
	_ = base.BindInstance("y", 2)
	assert.False(t, base.Has("y"), "builder methods must not mutate the receiver")
}

func TestDesignTagAndHasTag(t *testing.T) {
	d := NewDesign().
		BindInstance("a", 1).
		BindInstance("b", 2)
	d = d.Tag("a", map[string]any{"tags": []string{"core", "stable"}})

	assert.True(t, d.HasTag("a", "core"))
	assert.False(t, d.HasTag("a", "experimental"))
	assert.False(t, d.HasTag("b", "core"), "tagging one key must not affect another")
	assert.False(t, d.HasTag("missing", "core"))
}

func TestRegistryFromRegistryFiltersByName(t *testing.T) {
	reg := NewRegistry()
	reg.Add("core", NewDesign().BindInstance("a", 1))
	reg.Add("test-only", NewDesign().BindInstance("b", 2))

	d := FromRegistry(reg, func(name string) bool { return name == "core" })
	assert.True(t, d.Has("a"))
	assert.False(t, d.Has("b"))
}
