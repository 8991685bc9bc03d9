package injected

import "fmt"

// BindKey is the opaque identity used to index bindings in a Design.
// Equality and hashing are by tag+payload; StringKey is the only
// concrete implementation the core ships, but the interface is kept
// small enough that callers can add their own (e.g. a type-based key).
type BindKey interface {
	// Tag returns a stable string representation used as the map key
	// and for trace rendering ("a => b => c").
	Tag() string
}

// StringKey is a BindKey identified by a plain name, matching the
// Injected.by_name("name") lookup form.
type StringKey string

// Tag implements BindKey.
func (k StringKey) Tag() string { return string(k) }

func (k StringKey) String() string { return string(k) }

// NewStringKey constructs a StringKey. It exists alongside the bare
// conversion so call sites that prefer a constructor over a cast have
// one available.
func NewStringKey(name string) StringKey { return StringKey(name) }

func keyTag(k BindKey) string {
	if k == nil {
		return "<nil>"
	}
	return k.Tag()
}

func mustKey(k any) BindKey {
	switch v := k.(type) {
	case BindKey:
		return v
	case string:
		return StringKey(v)
	default:
		panic(fmt.Sprintf("injected: %T is not a valid BindKey (expected BindKey or string)", k))
	}
}
