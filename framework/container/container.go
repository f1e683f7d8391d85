package container

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/shomsy/foundation/framework/prototype"
)

// ── Binding types ─────────────────────────────────────────────────────────────

// Factory is a function that builds a concrete value from the container.
type Factory func(c *Container) any

// binding holds a registered factory and its lifetime policy.
type binding struct {
	factory  Factory
	lifetime Lifetime
}

// typeRegistration holds a reflectively registered class: the container
// auto-wires it from its prototype instead of calling a user factory.
type typeRegistration struct {
	ty       reflect.Type
	lifetime Lifetime
}

// extender wraps an already-resolved instance with decorator logic.
type extender func(instance any, c *Container) any

// ── Container ─────────────────────────────────────────────────────────────────

// Container is the IoC container — mirrors Laravel's
// Illuminate\Container\Container, extended with reflective auto-wiring.
//
// It supports:
//   - Bind / Scoped / Singleton / Instance / Alias
//   - RegisterType (auto-wired classes with Singleton/Scoped/Transient lifetimes)
//   - Resolve / Make, with explicit-context and override variants
//   - Tags (group multiple abstractions under one tag)
//   - Extend (decorate / wrap resolved instances)
//   - Contextual binding (when A needs B, give it C)
//   - Rebound and resolved-event callbacks
//   - A policy gate checked before every resolution
//   - Scope brackets for Scoped lifetimes
type Container struct {
	mu *sync.RWMutex

	// abstract → binding
	bindings map[string]*binding

	// class → reflective registration
	types map[string]*typeRegistration

	// abstract → resolved singleton instance (the container-wide slot)
	instances map[string]any

	// alias → abstract (canonical key)
	aliases map[string]string

	// abstract → extender funcs
	extenders map[string][]extender

	// tag → []abstract
	tags map[string][]string

	// contextual: when[concrete][abstract] = factory
	contextual map[string]map[string]Factory

	// per-identifier construction locks: two resolvers racing on the same
	// singleton must not both run its constructor
	locks   map[string]*sync.Mutex
	locksMu *sync.Mutex

	// rebound callbacks: abstract → []func(instance)
	rebound map[string][]func(any)

	// resolved event callbacks: []func(abstract, instance)
	afterResolving []func(string, any)

	scopes     *ScopeRegistry
	guard      Guard
	prototypes *prototype.Factory

	// current is the in-flight resolution node on context views handed to
	// factories; nil on the root handle
	current *Context
}

// Option customizes a new Container.
type Option func(*Container)

// WithGuard installs the policy gate consulted before every resolution.
func WithGuard(g Guard) Option {
	return func(c *Container) { c.guard = g }
}

// WithPrototypes installs the prototype factory backing reflective
// auto-wiring. Without it the container falls back to an in-process
// prototype cache.
func WithPrototypes(f *prototype.Factory) Option {
	return func(c *Container) { c.prototypes = f }
}

// New creates an empty container.
func New(opts ...Option) *Container {
	c := &Container{
		mu:         &sync.RWMutex{},
		bindings:   make(map[string]*binding),
		types:      make(map[string]*typeRegistration),
		instances:  make(map[string]any),
		aliases:    make(map[string]string),
		extenders:  make(map[string][]extender),
		tags:       make(map[string][]string),
		contextual: make(map[string]map[string]Factory),
		locks:      make(map[string]*sync.Mutex),
		locksMu:    &sync.Mutex{},
		rebound:    make(map[string][]func(any)),
		scopes:     NewScopeRegistry(),
		guard:      AllowAll{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.prototypes == nil {
		c.prototypes = prototype.NewFactory(prototype.NewMemoryCache(), prototype.NewAnalyzer())
	}
	// Bind the container to itself — like Laravel's $app->instance()
	c.Instance("container", c)
	return c
}

// Prototypes returns the prototype factory the container auto-wires with.
func (c *Container) Prototypes() *prototype.Factory { return c.prototypes }

// SetPrototypes swaps the prototype factory, e.g. once configuration has
// decided the cache backend. Prototypes already built stay valid.
func (c *Container) SetPrototypes(f *prototype.Factory) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prototypes = f
}

// ── Registration ──────────────────────────────────────────────────────────────

// Bind registers a transient (new instance each resolution) factory.
//
//	// Laravel: $app->bind(UserRepository::class, fn($app) => new EloquentUserRepository($app))
//	c.Bind("UserRepository", func(c *container.Container) any {
//	    return &EloquentUserRepository{}
//	})
func (c *Container) Bind(abstract string, factory Factory) {
	c.bind(abstract, factory, Transient)
}

// Singleton registers a factory whose result is cached after first
// resolution and reused for the container's entire lifetime.
//
//	// Laravel: $app->singleton(Cache::class, fn($app) => new RedisCache($app))
func (c *Container) Singleton(abstract string, factory Factory) {
	c.bind(abstract, factory, Singleton)
}

// Scoped registers a factory whose result is cached in the nearest active
// scope bracket; see Lifetime for the no-scope behaviour.
func (c *Container) Scoped(abstract string, factory Factory) {
	c.bind(abstract, factory, Scoped)
}

// Instance registers a pre-built value as a singleton.
//
//	// Laravel: $app->instance(Config::class, $config)
func (c *Container) Instance(abstract string, instance any) {
	c.mu.Lock()
	key := c.canonicalLocked(abstract)
	delete(c.bindings, key)
	c.instances[key] = instance
	c.mu.Unlock()

	c.fireRebound(key, instance)
}

func (c *Container) bind(abstract string, factory Factory, lifetime Lifetime) {
	c.mu.Lock()
	key := c.canonicalLocked(abstract)

	// Drop an existing singleton instance so it's rebuilt with the new factory
	_, wasResolved := c.instances[key]
	delete(c.instances, key)
	c.bindings[key] = &binding{factory: factory, lifetime: lifetime}
	c.mu.Unlock()

	// A re-bind over an already-resolved abstract rebuilds it through the
	// new factory and informs the rebound listeners.
	if wasResolved {
		if instance, err := c.Resolve(key); err == nil {
			c.fireRebound(key, instance)
		}
	}
}

// RegisterType registers a class for reflective auto-wiring under its
// canonical type key and returns that key. The container derives the class
// prototype (constructor, injectable properties and methods) on first
// resolution and builds instances from it per the given lifetime.
//
//	key := c.RegisterType(reflect.TypeOf((*UserService)(nil)), container.Singleton)
//	svc, err := c.Resolve(key)
func (c *Container) RegisterType(ty reflect.Type, lifetime Lifetime) string {
	key := prototype.TypeKey(ty)
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.instances, key)
	c.types[key] = &typeRegistration{ty: ty, lifetime: lifetime}
	return key
}

// Register is the generic shorthand for RegisterType.
//
//	key := container.Register[*UserService](c, container.Transient)
func Register[T any](c *Container, lifetime Lifetime) string {
	return c.RegisterType(reflect.TypeOf((*T)(nil)).Elem(), lifetime)
}

// Alias registers an alternative name for an abstract.
//
//	// Laravel: $app->alias(Cache::class, 'cache')
func (c *Container) Alias(abstract, alias string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if abstract == alias {
		panic(fmt.Sprintf("container: [%s] is aliased to itself", abstract))
	}
	c.aliases[alias] = c.canonicalLocked(abstract)
}

// ── Contextual Binding ────────────────────────────────────────────────────────

// When starts a contextual binding chain.
//
//	// Laravel: $app->when(PhotoController::class)->needs(Filesystem::class)->give(fn() => new S3)
//	c.When("PhotoController").Needs("Filesystem").Give(func(c *container.Container) any {
//	    return filesystem.NewS3()
//	})
func (c *Container) When(concrete string) *ContextualBuilder {
	return &ContextualBuilder{container: c, concrete: concrete}
}

// getContextual returns the contextual factory for (concrete, abstract), or nil.
func (c *Container) getContextual(concrete, abstract string) Factory {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if m, ok := c.contextual[concrete]; ok {
		if f, ok := m[abstract]; ok {
			return f
		}
	}
	return nil
}

// ── Extend ────────────────────────────────────────────────────────────────────

// Extend decorates the resolved instance of an abstract.
//
//	// Laravel: $app->extend(Logger::class, fn($logger, $app) => new TimestampLogger($logger))
func (c *Container) Extend(abstract string, fn extender) {
	c.mu.Lock()
	key := c.canonicalLocked(abstract)
	c.extenders[key] = append(c.extenders[key], fn)
	inst, resolved := c.instances[key]
	c.mu.Unlock()

	// An already-resolved singleton is re-wrapped in place, which counts as
	// a rebinding event.
	if resolved {
		wrapped := fn(inst, c)
		c.mu.Lock()
		c.instances[key] = wrapped
		c.mu.Unlock()
		c.fireRebound(key, wrapped)
	}
}

func (c *Container) applyExtenders(key string, instance any) any {
	c.mu.RLock()
	exts := c.extenders[key]
	c.mu.RUnlock()
	for _, ext := range exts {
		instance = ext(instance, c)
	}
	return instance
}

// ── Tags ──────────────────────────────────────────────────────────────────────

// Tag associates multiple abstracts under a named group.
//
//	// Laravel: $app->tag([CpuReport::class, MemoryReport::class], 'reports')
func (c *Container) Tag(abstracts []string, tag string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tags[tag] = append(c.tags[tag], abstracts...)
}

// Tagged resolves all abstracts registered under a tag.
//
//	// Laravel: $app->tagged('reports')
func (c *Container) Tagged(tag string) ([]any, error) {
	c.mu.RLock()
	abstracts := c.tags[tag]
	c.mu.RUnlock()

	result := make([]any, 0, len(abstracts))
	for _, abs := range abstracts {
		inst, err := c.Resolve(abs)
		if err != nil {
			return nil, err
		}
		result = append(result, inst)
	}
	return result, nil
}

// ── Introspection & housekeeping ──────────────────────────────────────────────

// Has reports whether an identifier can be resolved: a binding, a pre-built
// instance, or a registered type exists for it.
func (c *Container) Has(abstract string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	key := c.canonicalLocked(abstract)
	if _, ok := c.bindings[key]; ok {
		return true
	}
	if _, ok := c.instances[key]; ok {
		return true
	}
	_, ok := c.types[key]
	return ok
}

// Bound is the Laravel-flavoured alias for Has.
func (c *Container) Bound(abstract string) bool { return c.Has(abstract) }

// Resolved returns true if the abstract holds a resolved singleton instance.
func (c *Container) Resolved(abstract string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.instances[c.canonicalLocked(abstract)]
	return ok
}

// Forget removes all registrations for an abstract.
func (c *Container) Forget(abstract string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := c.canonicalLocked(abstract)
	delete(c.bindings, key)
	delete(c.instances, key)
	delete(c.types, key)
}

// Flush resets the entire container.
func (c *Container) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bindings = make(map[string]*binding)
	c.types = make(map[string]*typeRegistration)
	c.instances = make(map[string]any)
	c.aliases = make(map[string]string)
	c.extenders = make(map[string][]extender)
	c.tags = make(map[string][]string)
	c.contextual = make(map[string]map[string]Factory)
	c.scopes = NewScopeRegistry()
}

// Bindings returns all registered abstract keys (for debugging).
func (c *Container) Bindings() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	seen := make(map[string]bool, len(c.bindings)+len(c.instances)+len(c.types))
	var out []string
	collect := func(keys ...string) {
		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				out = append(out, k)
			}
		}
	}
	for k := range c.bindings {
		collect(k)
	}
	for k := range c.instances {
		collect(k)
	}
	for k := range c.types {
		collect(k)
	}
	return out
}

// ── Callbacks ─────────────────────────────────────────────────────────────────

// Rebinding registers a callback invoked whenever an abstract is re-bound:
// a new Bind/Singleton over a resolved abstract, a replaced Instance, or an
// Extend re-wrapping a resolved singleton.
//
//	// Laravel: $app->rebinding(UserRepository::class, fn($app, $repo) => ...)
//	c.Rebinding("prototype.factory", func(instance any) { ... })
func (c *Container) Rebinding(abstract string, cb func(any)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := c.canonicalLocked(abstract)
	c.rebound[key] = append(c.rebound[key], cb)
}

// AfterResolving registers a callback fired after any abstract is freshly
// constructed (cached singleton reuse does not re-fire it).
//
//	// Laravel: $app->afterResolving(fn($object, $app) => ...)
func (c *Container) AfterResolving(cb func(abstract string, instance any)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.afterResolving = append(c.afterResolving, cb)
}

func (c *Container) fireRebound(key string, instance any) {
	c.mu.RLock()
	cbs := c.rebound[key]
	c.mu.RUnlock()
	for _, cb := range cbs {
		cb(instance)
	}
}

func (c *Container) fireAfterResolving(key string, instance any) {
	c.mu.RLock()
	cbs := c.afterResolving
	c.mu.RUnlock()
	for _, cb := range cbs {
		cb(key, instance)
	}
}

// ── Scopes ────────────────────────────────────────────────────────────────────

// BeginScope opens a scope bracket for Scoped lifetimes.
//
//	s := c.BeginScope()
//	defer c.EndScope(s)
func (c *Container) BeginScope() *Scope { return c.scopes.Begin() }

// EndScope closes a scope bracket, discarding its instances.
func (c *Container) EndScope(s *Scope) error { return c.scopes.End(s) }

// ── Helpers ───────────────────────────────────────────────────────────────────

// canonicalLocked resolves an alias to its canonical key; c.mu must be held.
func (c *Container) canonicalLocked(abstract string) string {
	if target, ok := c.aliases[abstract]; ok {
		return target
	}
	return abstract
}

func (c *Container) canonical(abstract string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.canonicalLocked(abstract)
}

// lockFor returns the construction lock for one identifier.
func (c *Container) lockFor(key string) *sync.Mutex {
	c.locksMu.Lock()
	defer c.locksMu.Unlock()
	if l, ok := c.locks[key]; ok {
		return l
	}
	l := &sync.Mutex{}
	c.locks[key] = l
	return l
}

// withContext returns a view of the container carrying the in-flight
// resolution node, so factories that re-enter the container keep the cycle
// detection chain. All registries are shared with the root handle.
func (c *Container) withContext(ctx *Context) *Container {
	view := *c
	view.current = ctx
	return &view
}

// ── Generics helpers ──────────────────────────────────────────────────────────

// Get resolves an identifier and type-asserts the result.
//
//	repo, err := container.Get[*UserRepository](c, "UserRepository")
func Get[T any](c *Container, abstract string) (T, error) {
	var zero T
	instance, err := c.Resolve(abstract)
	if err != nil {
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("container: Get[%T]: [%s] resolved to %T", zero, abstract, instance)
	}
	return typed, nil
}

// MustGet is Get for bootstrap paths where a failure is fatal.
func MustGet[T any](c *Container, abstract string) T {
	v, err := Get[T](c, abstract)
	if err != nil {
		panic(err)
	}
	return v
}
