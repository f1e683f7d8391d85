package prototype

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
)

// Verifier judges prototypes after analysis has described them: a prototype
// that passes Validate can be trusted by the resolver without re-checking
// every injection point at construction time.
type Verifier struct{}

// NewVerifier returns a Verifier.
func NewVerifier() *Verifier { return &Verifier{} }

// Validate returns nil when every injection point of the prototype can be
// satisfied by some resolution strategy, or a *VerificationError listing
// each violation.
//
// A parameter or property is acceptable when it has a resolvable type, a
// declared default, or allows null; variadic parameters are always
// satisfiable (by an empty tail).
func (v *Verifier) Validate(p *ServicePrototype) error {
	var failures []string

	if !p.Instantiable {
		failures = append(failures, fmt.Sprintf("class %s is not instantiable", p.Class))
	}

	if p.Constructor != nil {
		failures = append(failures, checkParameters(p.Class, p.Constructor)...)
	}

	for _, prop := range p.Properties {
		if prop.Type == "" && !prop.HasDefault && !prop.AllowsNull {
			failures = append(failures, fmt.Sprintf(
				"injectable property %s in class %s has no declared type", prop.Name, p.Class))
		}
	}

	for i := range p.Methods {
		failures = append(failures, checkParameters(p.Class, &p.Methods[i])...)
	}

	if len(failures) > 0 {
		return &VerificationError{Class: p.Class, Failures: failures}
	}
	return nil
}

func checkParameters(class string, m *MethodPrototype) []string {
	var failures []string
	for _, param := range m.Parameters {
		if param.Variadic {
			continue
		}
		if param.Type == "" && !param.HasDefault && !param.AllowsNull {
			failures = append(failures, fmt.Sprintf(
				"parameter %s of %s.%s has no resolvable type", param.Name, class, m.Name))
		}
	}
	return failures
}

// ── Batch validation ──────────────────────────────────────────────────────────

// BatchReport summarizes a ValidateBatch run. Failures are isolated per
// class: one invalid prototype never hides the verdict on another.
type BatchReport struct {
	Valid   []string
	Invalid map[string]string
	Checked int
}

// Summary renders a one-line human-readable count.
func (r *BatchReport) Summary() string {
	return fmt.Sprintf("%d checked, %d valid, %d invalid", r.Checked, len(r.Valid), len(r.Invalid))
}

// ValidateBatch validates every prototype, fanning the checks out over a
// goroutine pool. It never aborts on first failure.
func (v *Verifier) ValidateBatch(protos []*ServicePrototype) *BatchReport {
	report := &BatchReport{
		Invalid: make(map[string]string),
		Checked: len(protos),
	}
	if len(protos) == 0 {
		return report
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	record := func(p *ServicePrototype) {
		err := v.Validate(p)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			report.Invalid[p.Class] = err.Error()
		} else {
			report.Valid = append(report.Valid, p.Class)
		}
	}

	size := runtime.NumCPU()
	if size > len(protos) {
		size = len(protos)
	}
	pool, err := ants.NewPoolWithFunc(size, func(arg any) {
		defer wg.Done()
		record(arg.(*ServicePrototype))
	})
	if err != nil {
		// No pool, no parallelism — the verdicts are identical.
		for _, p := range protos {
			record(p)
		}
		return report
	}
	defer pool.Release()

	for _, p := range protos {
		wg.Add(1)
		if err := pool.Invoke(p); err != nil {
			wg.Done()
			record(p)
		}
	}
	wg.Wait()
	return report
}
