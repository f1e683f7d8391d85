package prototype

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCacheMiss signals an absent (or unreadable) cache entry. It is normal
// control flow, not a failure: callers fall through to the Analyzer.
var ErrCacheMiss = errors.New("prototype cache: miss")

// AnalysisError is raised by the Analyzer when a class cannot be described:
// it is not instantiable, or an injection point is unusable.
type AnalysisError struct {
	Class  string
	Reason string
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analysis of [%s] failed: %s", e.Class, e.Reason)
}

// VerificationError is raised by the Verifier when a prototype violates the
// architectural rules. Failures lists one reason per offending injection
// point, each naming the class and the member.
type VerificationError struct {
	Class    string
	Failures []string
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("prototype for [%s] is invalid: %s", e.Class, strings.Join(e.Failures, "; "))
}

// CacheWriteError is raised when persisting a prototype fails. Callers may
// degrade to operating without persistence — resolution itself must never
// fail because of it.
type CacheWriteError struct {
	Path string
	Err  error
}

func (e *CacheWriteError) Error() string {
	return fmt.Sprintf("prototype cache: write %s: %v", e.Path, e.Err)
}

func (e *CacheWriteError) Unwrap() error { return e.Err }
