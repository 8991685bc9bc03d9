package injected

import "github.com/wiredgraph/injected/pkg/meta"

// Design is an immutable BindKey -> Bind mapping. It forms a monoid
// under Merge (right-biased: the argument's bindings win), matching
// spec §3's Design data model. Values are never mutated in place;
// every builder method returns a new Design.
type Design struct {
	bindings map[string]Bind
}

// NewDesign creates an empty Design.
func NewDesign() Design {
	return Design{bindings: map[string]Bind{}}
}

func (d Design) lookup(name string) (Bind, bool) {
	if d.bindings == nil {
		return Bind{}, false
	}
	b, ok := d.bindings[name]
	return b, ok
}

// Has reports whether key is bound in this Design (not considering any
// parent scope).
func (d Design) Has(key string) bool {
	_, ok := d.lookup(key)
	return ok
}

// Keys returns every bound key name.
func (d Design) Keys() []string {
	out := make([]string, 0, len(d.bindings))
	for k := range d.bindings {
		out = append(out, k)
	}
	return out
}

// clone returns a shallow copy of the binding map so callers can add
// entries without mutating the receiver.
func (d Design) clone() map[string]Bind {
	out := make(map[string]Bind, len(d.bindings)+1)
	for k, v := range d.bindings {
		out[k] = v
	}
	return out
}

// BindInjected binds key directly to an already-built Injected
// expression, the general form every other constructor below reduces
// to (spec §6's design.bind_injected). key is normalized through
// mustKey, so a plain string or any BindKey implementation works.
func (d Design) BindInjected(key any, value AnyInjected) Design {
	m := d.clone()
	m[keyTag(mustKey(key))] = Bind{Value: value, Metadata: captureBindMetadata("injected", 1)}
	return Design{bindings: m}
}

// BindInstance binds key to a constant value.
func (d Design) BindInstance(key any, value any) Design {
	m := d.clone()
	m[keyTag(mustKey(key))] = Bind{Value: wrap[any](&pureNode{value: value, origin: captureOrigin(1)}), Metadata: captureBindMetadata("instance", 1)}
	return Design{bindings: m}
}

// AddMetadata replaces the metadata of an existing binding, preserving
// its value and validator.
func (d Design) AddMetadata(key any, meta BindMetadata) Design {
	name := keyTag(mustKey(key))
	b, ok := d.lookup(name)
	if !ok {
		return d
	}
	b.Metadata = meta
	m := d.clone()
	m[name] = b
	return Design{bindings: m}
}

// WithValidator attaches (or replaces) a Validator for an existing
// binding.
func (d Design) WithValidator(key any, v Validator) Design {
	name := keyTag(mustKey(key))
	b, ok := d.lookup(name)
	if !ok {
		return d
	}
	b.Validator = v
	m := d.clone()
	m[name] = b
	return Design{bindings: m}
}

// Tag merges kv into key's metadata side-table (pkg/meta), e.g.
// Tag(key, map[string]any{"tags": []string{"core"}}) for later
// filtering via HasTag. A no-op if key is unbound.
func (d Design) Tag(key any, kv map[string]any) Design {
	name := keyTag(mustKey(key))
	b, ok := d.lookup(name)
	if !ok {
		return d
	}
	merged := make(map[string]any, len(b.Metadata.Meta)+len(kv))
	for k, v := range b.Metadata.Meta {
		merged[k] = v
	}
	for k, v := range kv {
		meta.Set(merged, k, v)
	}
	b.Metadata.Meta = merged
	m := d.clone()
	m[name] = b
	return Design{bindings: m}
}

// HasTag reports whether key's metadata carries tag among its "tags"
// entry (pkg/meta.Tags).
func (d Design) HasTag(key any, tag string) bool {
	name := keyTag(mustKey(key))
	b, ok := d.lookup(name)
	if !ok {
		return false
	}
	for _, t := range meta.Tags(b.Metadata.Meta) {
		if t == tag {
			return true
		}
	}
	return false
}

// Unbind removes key, if present.
func (d Design) Unbind(key any) Design {
	name := keyTag(mustKey(key))
	if !d.Has(name) {
		return d
	}
	m := d.clone()
	delete(m, name)
	return Design{bindings: m}
}

// Merge combines d with other; bindings in other take precedence over
// d's, matching the "+" operator in spec §3 (Design is a monoid, right
// side wins on conflict).
func (d Design) Merge(other Design) Design {
	m := d.clone()
	for k, v := range other.bindings {
		m[k] = v
	}
	return Design{bindings: m}
}

// Plus is an operator-style alias for Merge.
func (d Design) Plus(other Design) Design { return d.Merge(other) }

// ToResolver builds a Resolver rooted at a fresh Root scope over d,
// merged with overrides in order (later overrides winning, same as
// repeated Merge calls) before the scope is constructed. With no
// overrides this is just d itself — most callers pass none and reach
// for Resolver.Child afterward when they need a nested, overridden
// scope instead.
func (d Design) ToResolver(overrides ...Design) *Resolver {
	merged := d
	for _, o := range overrides {
		merged = merged.Merge(o)
	}
	return newResolver(NewRootScope(merged))
}

// BindValue binds key to Pure(value) through BindInjected and also
// returns that Injected[T] handle (so callers that want a typed
// reference without a second ByName lookup can keep one).
func BindValue[T any](d Design, key string, value T) (Design, Injected[T]) {
	i := Pure(value)
	return d.BindInjected(key, i), i
}

// BindKeyed is a generic convenience over BindInjected.
func BindKeyed[T any](d Design, key string, value Injected[T]) Design {
	return d.BindInjected(key, value)
}
