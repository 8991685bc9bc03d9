package injected

import (
	"fmt"
	"strings"
)

// DependencyResolutionFailure is one missing or cyclic dependency found
// during the analysis phase of a resolution, carrying the path from the
// root of the request down to the offending key.
type DependencyResolutionFailure struct {
	Key   string
	Trace []string
	Cause error
}

func (f *DependencyResolutionFailure) traceStr() string {
	return strings.Join(f.Trace, " => ")
}

func (f *DependencyResolutionFailure) explanationStr() string {
	if f.Cause != nil {
		return fmt.Sprintf("failed to find dependency: %s at %s (cause: %v)", f.Key, f.traceStr(), f.Cause)
	}
	return fmt.Sprintf("failed to find dependency: %s at %s", f.Key, f.traceStr())
}

func (f *DependencyResolutionFailure) String() string {
	return f.explanationStr()
}

// DependencyResolutionError is the single aggregated error the resolver
// raises when analysis finds one or more missing keys or a cycle, or
// when a provider fails during execution. It never silently drops a
// failure: Failures holds every DependencyResolutionFailure found.
type DependencyResolutionError struct {
	msg      string
	Failures []*DependencyResolutionFailure
	cause    error
}

func newDependencyResolutionError(msg string, failures []*DependencyResolutionFailure) *DependencyResolutionError {
	return &DependencyResolutionError{msg: msg, Failures: failures}
}

func (e *DependencyResolutionError) Error() string {
	if len(e.Failures) == 0 {
		return e.msg
	}
	var sb strings.Builder
	sb.WriteString(e.msg)
	for _, f := range e.Failures {
		sb.WriteString("\n  - ")
		sb.WriteString(f.explanationStr())
	}
	return sb.String()
}

func (e *DependencyResolutionError) Unwrap() error {
	return e.cause
}

// missingDependenciesError builds the "Missing Dependencies" aggregate
// described in spec §7/§8 (S4): message contains the literal phrase
// "Missing Dependencies" plus one failure per unreachable key.
func missingDependenciesError(failures []*DependencyResolutionFailure) *DependencyResolutionError {
	return newDependencyResolutionError(
		fmt.Sprintf("Missing Dependencies: %d unresolved key(s)", len(failures)),
		failures,
	)
}

// cyclicDependencyError builds the aggregate for a detected cycle; the
// trace ends back at key, i.e. Trace = [..., key].
func cyclicDependencyError(key string, trace []string) *DependencyResolutionError {
	full := append(append([]string{}, trace...), key)
	f := &DependencyResolutionFailure{
		Key:   key,
		Trace: full,
		Cause: fmt.Errorf("cyclic dependency"),
	}
	e := newDependencyResolutionError(fmt.Sprintf("Cyclic Dependency: %s", strings.Join(full, " -> ")), []*DependencyResolutionFailure{f})
	return e
}

// providerFailureError wraps an error raised by a provider during
// execution, with the trace to the failing node attached.
func providerFailureError(key string, trace []string, cause error) *DependencyResolutionError {
	f := &DependencyResolutionFailure{Key: key, Trace: trace, Cause: cause}
	e := newDependencyResolutionError(fmt.Sprintf("provider for %q failed at %s: %v", key, strings.Join(trace, " => "), cause), []*DependencyResolutionFailure{f})
	e.cause = cause
	return e
}

// SignatureMismatchError is raised when a Partial's args_modifier cannot
// reconcile the arguments supplied at call time with the function's
// reduced signature. It is annotated with the function name and the
// source location of its definition, per spec §4.5.
type SignatureMismatchError struct {
	Function string
	File     string
	Line     int
	Cause    error
}

func (e *SignatureMismatchError) Error() string {
	return fmt.Sprintf("signature mismatch calling %s (defined at %s:%d): %v", e.Function, e.File, e.Line, e.Cause)
}

func (e *SignatureMismatchError) Unwrap() error { return e.Cause }

// DependencyValidationError is raised when a per-binding validator
// rejects a produced value.
type DependencyValidationError struct {
	Key   string
	Cause error
}

func (e *DependencyValidationError) Error() string {
	return fmt.Sprintf("validation failed for %q: %v", e.Key, e.Cause)
}

func (e *DependencyValidationError) Unwrap() error { return e.Cause }
