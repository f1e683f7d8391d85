package prototype

import (
	"log/slog"
	"reflect"
	"sync/atomic"
)

// Factory is the cache-first orchestrator the rest of the container depends
// on: it returns the cached blueprint for a class, or analyzes (and
// optionally verifies) the class and populates the cache.
//
// A Factory is safe for shared use: prototypes are immutable once produced
// and cache backends are safe for concurrent reads.
type Factory struct {
	cache    Cache
	analyzer Analyzer
	verifier *Verifier

	hits   atomic.Uint64
	misses atomic.Uint64
}

// FactoryOption customizes a Factory.
type FactoryOption func(*Factory)

// WithVerifier makes the factory reject freshly analyzed prototypes that
// fail validation before they are cached or returned.
func WithVerifier(v *Verifier) FactoryOption {
	return func(f *Factory) { f.verifier = v }
}

// NewFactory builds a Factory over the given cache and analyzer.
func NewFactory(cache Cache, analyzer Analyzer, opts ...FactoryOption) *Factory {
	f := &Factory{cache: cache, analyzer: analyzer}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateFor returns the prototype for t, from cache when possible.
//
// A failed cache write never fails the call — it only means the analysis is
// repeated next time; the failure is logged and the fresh prototype is
// returned anyway.
func (f *Factory) CreateFor(t reflect.Type) (*ServicePrototype, error) {
	return f.create(TypeKey(t), t)
}

// CreateForClass is CreateFor keyed by class name only. It can serve cached
// entries without a live type, but a cache miss fails: analysis needs the
// reflected type.
func (f *Factory) CreateForClass(class string) (*ServicePrototype, error) {
	return f.create(class, nil)
}

func (f *Factory) create(class string, t reflect.Type) (*ServicePrototype, error) {
	if proto, err := f.cache.Get(class); err == nil {
		f.hits.Add(1)
		return proto, nil
	}
	f.misses.Add(1)

	if t == nil {
		return nil, &AnalysisError{Class: class, Reason: "not cached and no live type to analyze"}
	}

	proto, err := f.analyzer.Analyze(t)
	if err != nil {
		return nil, err
	}
	if f.verifier != nil {
		if err := f.verifier.Validate(proto); err != nil {
			return nil, err
		}
	}

	if err := f.cache.Set(class, proto); err != nil {
		slog.Warn("prototype cache write failed, continuing without persistence",
			"class", class, "error", err)
	}
	return proto, nil
}

// HasPrototype mirrors cache presence without forcing analysis.
func (f *Factory) HasPrototype(class string) bool {
	return f.cache.Has(class)
}

// Cache exposes the backing cache (for tooling and tests).
func (f *Factory) Cache() Cache { return f.cache }

// Stats returns the number of cache hits and misses served so far.
func (f *Factory) Stats() (hits, misses uint64) {
	return f.hits.Load(), f.misses.Load()
}
