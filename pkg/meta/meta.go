// Package meta holds the free-form side-table attached to a binding
// beyond its BindMetadata (file/line/protocol): tags, ownership labels,
// anything a caller wants to stash alongside an Injected without
// widening the core Bind struct.
package meta

import (
	"errors"
	"reflect"
)

// Meta is one free-form key/value entry.
type Meta struct {
	Key   string
	Value any
}

// New creates a new Meta entry.
func New(key string, value any) *Meta {
	return &Meta{
		Key:   key,
		Value: value,
	}
}

// Get retrieves a metadata value from a source map, converting via
// reflection when the stored type doesn't match T exactly (e.g. a
// viper-decoded config value landing as float64 but wanted as int).
func Get[T any](source map[string]any, key string) (T, error) {
	if source == nil {
		var zero T
		return zero, errors.New("metadata source is nil")
	}

	value, ok := source[key]
	if !ok {
		var zero T
		return zero, errors.New("metadata key not found")
	}

	// Try to convert the value to the requested type
	if result, ok := value.(T); ok {
		return result, nil
	}

	// Try to use reflection to convert the value
	sourceValue := reflect.ValueOf(value)
	targetType := reflect.TypeOf((*T)(nil)).Elem()

	if sourceValue.Type().ConvertibleTo(targetType) {
		convertedValue := sourceValue.Convert(targetType)
		return convertedValue.Interface().(T), nil
	}

	var zero T
	return zero, errors.New("metadata value cannot be converted to requested type")
}

// Set stores a metadata value in source.
func Set(source map[string]any, key string, value any) {
	if source == nil {
		return
	}

	source[key] = value
}

// Find returns every entry in source whose key matches, as a slice of
// one or zero elements (source is a flat map, not multi-valued; Find
// exists so callers migrating from a multi-valued metadata index keep
// the same call shape).
func Find(source map[string]any, key string) []any {
	if source == nil {
		return nil
	}

	value, ok := source[key]
	if !ok {
		return nil
	}

	return []any{value}
}

// Tags extracts the conventional "tags" entry as a []string, used to
// annotate a Design binding for later filtering (e.g. Design.HasTag).
func Tags(source map[string]any) []string {
	v, err := Get[[]string](source, "tags")
	if err != nil {
		return nil
	}
	return v
}

