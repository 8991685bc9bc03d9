package injected

import "runtime"

// Validator checks a resolved value, returning a non-nil error if it is
// unacceptable. A failing Validator surfaces as a DependencyValidationError
// (spec §9 Supplemented Feature: validation).
type Validator func(value any) error

// BindMetadata records where a binding was declared, mirroring
// pinjected's bind_metadata/location_data (spec §9 Supplemented
// Feature 2): useful for error messages and DependencyTree output. Meta
// is the free-form side-table (pkg/meta) a caller can attach alongside
// the captured file/line/protocol, e.g. ownership or tag labels queried
// with Design.HasTag.
type BindMetadata struct {
	File     string
	Line     int
	Protocol string
	Meta     map[string]any
}

func captureBindMetadata(protocol string, skip int) BindMetadata {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return BindMetadata{Protocol: protocol}
	}
	return BindMetadata{File: file, Line: line, Protocol: protocol}
}

// Bind is one entry of a Design: the Injected expression that produces
// the value, plus metadata and an optional validator.
type Bind struct {
	Value     AnyInjected
	Metadata  BindMetadata
	Validator Validator
}
