package container

import (
	"fmt"
	"sync"
)

// ── Lifetime ──────────────────────────────────────────────────────────────────

// Lifetime is the reuse policy applied to a resolved instance.
type Lifetime int

const (
	// Singleton instances live in a container-wide slot for the
	// container's entire lifetime.
	Singleton Lifetime = iota

	// Scoped instances live in the nearest active Scope. Outside any
	// scope bracket, Scoped silently degrades to Transient — callers who
	// need scoped semantics must open a scope first.
	Scoped

	// Transient never stores; every resolution rebuilds from scratch,
	// including a full constructor and injection pass.
	Transient
)

func (l Lifetime) String() string {
	switch l {
	case Singleton:
		return "Singleton"
	case Scoped:
		return "Scoped"
	case Transient:
		return "Transient"
	default:
		return "Unknown"
	}
}

// ── Scope & registry ──────────────────────────────────────────────────────────

// Scope is a bounded lifetime bracket holding the instances of Scoped
// services resolved while it is active.
type Scope struct {
	handle    uint64
	mu        sync.RWMutex
	instances map[string]any
}

// Handle returns the scope's identifying handle.
func (s *Scope) Handle() uint64 { return s.handle }

// Get returns the instance stored for id in this scope.
func (s *Scope) Get(id string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.instances[id]
	return v, ok
}

// Put stores an instance for id in this scope.
func (s *Scope) Put(id string, instance any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.instances[id] = instance
}

// ScopeRegistry manages the stack of active scopes. Begin/End pairs must
// not interleave for the same handle; nested scopes are allowed and
// retrieval prefers the nearest (innermost) active scope.
type ScopeRegistry struct {
	mu    sync.Mutex
	next  uint64
	stack []*Scope
}

// NewScopeRegistry returns an empty registry.
func NewScopeRegistry() *ScopeRegistry { return &ScopeRegistry{} }

// Begin opens a new innermost scope and returns its handle.
func (r *ScopeRegistry) Begin() *Scope {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	s := &Scope{handle: r.next, instances: make(map[string]any)}
	r.stack = append(r.stack, s)
	return s
}

// End closes the given scope, discarding its instances together with any
// scope nested inside it that was left open.
func (r *ScopeRegistry) End(s *Scope) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.stack) - 1; i >= 0; i-- {
		if r.stack[i] == s {
			r.stack = r.stack[:i]
			return nil
		}
	}
	return fmt.Errorf("scope %d is not active", s.handle)
}

// Nearest returns the innermost active scope, or nil outside any bracket.
func (r *ScopeRegistry) Nearest() *Scope {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.stack) == 0 {
		return nil
	}
	return r.stack[len(r.stack)-1]
}

// Lookup searches for id from the innermost scope outward.
func (r *ScopeRegistry) Lookup(id string) (any, bool) {
	r.mu.Lock()
	scopes := make([]*Scope, len(r.stack))
	copy(scopes, r.stack)
	r.mu.Unlock()

	for i := len(scopes) - 1; i >= 0; i-- {
		if v, ok := scopes[i].Get(id); ok {
			return v, true
		}
	}
	return nil, false
}

// ── Lifecycle strategies ──────────────────────────────────────────────────────

// lifecycleStrategy decides instance reuse versus rebuild for one lifetime.
// lookup answers "is there a stored instance to reuse"; store records a
// freshly built one per policy.
type lifecycleStrategy interface {
	lookup(c *Container, id string) (any, bool)
	store(c *Container, id string, instance any)
}

type singletonStrategy struct{}

func (singletonStrategy) lookup(c *Container, id string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.instances[id]
	return v, ok
}

func (singletonStrategy) store(c *Container, id string, instance any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.instances[id] = instance
}

type scopedStrategy struct{}

func (scopedStrategy) lookup(c *Container, id string) (any, bool) {
	return c.scopes.Lookup(id)
}

func (scopedStrategy) store(c *Container, id string, instance any) {
	if s := c.scopes.Nearest(); s != nil {
		s.Put(id, instance)
	}
	// No active scope: degrade to transient, nothing is stored.
}

type transientStrategy struct{}

func (transientStrategy) lookup(*Container, string) (any, bool) { return nil, false }
func (transientStrategy) store(*Container, string, any)         {}

func strategyFor(l Lifetime) lifecycleStrategy {
	switch l {
	case Singleton:
		return singletonStrategy{}
	case Scoped:
		return scopedStrategy{}
	default:
		return transientStrategy{}
	}
}
