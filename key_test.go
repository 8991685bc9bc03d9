package injected

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringKeyTag(t *testing.T) {
	k := NewStringKey("greeting")
	assert.Equal(t, "greeting", k.Tag())
	assert.Equal(t, "greeting", k.String())
}

func TestMustKey(t *testing.T) {
	assert.Equal(t, StringKey("a"), mustKey("a"))
	assert.Equal(t, StringKey("b"), mustKey(StringKey("b")))
	assert.Panics(t, func() { mustKey(42) })
}
