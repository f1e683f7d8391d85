package container

import (
	"fmt"
	"strings"
)

// ── Error taxonomy ────────────────────────────────────────────────────────────
//
// Lower-level failures (analysis, verification, resolution) are wrapped as
// they propagate up through instantiation, so a failed root resolution
// surfaces the full causal chain:
//
//	construction of [acme.Service] failed: Required property Logger in class
//	acme.Service cannot be resolved. No service found for type: acme.Logger

// SecurityError is a policy-gate denial. It short-circuits the whole
// pipeline and is never retried.
type SecurityError struct {
	ID     string
	Reason string
}

func (e *SecurityError) Error() string {
	return fmt.Sprintf("resolution of [%s] denied: %s", e.ID, e.Reason)
}

// RecursionError reports a resolution cycle. Always fatal.
type RecursionError struct {
	Chain []string
}

func (e *RecursionError) Error() string {
	return "circular dependency detected: " + strings.Join(e.Chain, " -> ")
}

// NotFoundError reports an identifier with no binding, instance, or
// registered type.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no service found for type: %s", e.ID)
}

// ResolutionError reports a parameter or property that no strategy could
// satisfy. Fatal for the current branch; a caller may catch it and retry
// with an explicit override.
type ResolutionError struct {
	Reason string
	Err    error
}

func (e *ResolutionError) Error() string {
	if e.Err != nil {
		return e.Reason + ". " + e.Err.Error()
	}
	return e.Reason
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// ConstructionError wraps any failure during actual instantiation of a
// class, preserving the original cause for diagnostics.
type ConstructionError struct {
	Class string
	Err   error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("construction of [%s] failed: %v", e.Class, e.Err)
}

func (e *ConstructionError) Unwrap() error { return e.Err }
