package container

import (
	"errors"
)

// ── Resolution pipeline ───────────────────────────────────────────────────────
//
// Every resolution request runs the same sequence:
//
//	Gate → CycleCheck → lifecycle lookup → (hit: reuse)
//	                                    → (miss: instantiate → inject → store)
//
// A failure at Gate or CycleCheck is fatal for the branch: no partial object
// is ever returned. Nested dependency resolutions re-enter this pipeline
// with a child Context so the whole request shares one detection chain.

// Resolve resolves an identifier through the full pipeline, starting a
// fresh resolution context.
//
//	svc, err := c.Resolve("github.com/acme/app.UserService")
func (c *Container) Resolve(abstract string) (any, error) {
	return c.resolve(abstract, c.current, Overrides{})
}

// ResolveWith resolves an identifier with caller-supplied overrides, which
// take priority over every other parameter/property resolution strategy.
func (c *Container) ResolveWith(abstract string, overrides Overrides) (any, error) {
	return c.resolve(abstract, c.current, overrides)
}

// ResolveInContext resolves an identifier inside an existing resolution
// chain. This is the cycle-safe variant nested collaborators must use when
// they hold an explicit Context.
func (c *Container) ResolveInContext(abstract string, ctx *Context) (any, error) {
	return c.resolve(abstract, ctx, Overrides{})
}

// Make resolves an abstract or panics — the Laravel-style surface for
// bootstrap code where a failure is fatal anyway.
//
//	// Laravel: $app->make(UserRepository::class)
//	repo := c.Make("UserRepository")
func (c *Container) Make(abstract string) any {
	instance, err := c.Resolve(abstract)
	if err != nil {
		panic("container: " + err.Error())
	}
	return instance
}

// resolve is the pipeline kernel.
func (c *Container) resolve(abstract string, parent *Context, overrides Overrides) (any, error) {
	key := c.canonical(abstract)

	// Gate: the policy check runs before any other work.
	if c.guard != nil {
		if err := c.guard.CheckAllowed(key, parent); err != nil {
			var sec *SecurityError
			if errors.As(err, &sec) {
				return nil, err
			}
			return nil, &SecurityError{ID: key, Reason: err.Error()}
		}
	}

	// CycleCheck: fail fast, before prototype analysis or instantiation.
	if parent.InChain(key) {
		return nil, &RecursionError{Chain: append(parent.Chain(), key)}
	}
	ctx := parent.Child(key)

	// Container-wide singleton slot.
	if inst, ok := (singletonStrategy{}).lookup(c, key); ok {
		return inst, nil
	}

	// Contextual binding: the requesting service may have its own recipe
	// for this dependency.
	if parent != nil {
		if f := c.getContextual(parent.ID(), key); f != nil {
			instance := c.applyExtenders(key, f(c.withContext(ctx)))
			c.fireAfterResolving(key, instance)
			return instance, nil
		}
	}

	if b, ok := c.bindingFor(key); ok {
		return c.resolveBinding(key, b, ctx)
	}

	if reg, ok := c.typeFor(key); ok {
		return c.resolveType(key, reg, overrides, ctx)
	}

	return nil, &NotFoundError{ID: key}
}

func (c *Container) bindingFor(key string) (*binding, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.bindings[key]
	return b, ok
}

func (c *Container) typeFor(key string) (*typeRegistration, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	reg, ok := c.types[key]
	return reg, ok
}

// resolveBinding runs a user factory under the lifetime policy of its
// binding.
func (c *Container) resolveBinding(key string, b *binding, ctx *Context) (any, error) {
	strategy := strategyFor(b.lifetime)

	if b.lifetime == Singleton {
		// Per-identifier lock: a race between two resolvers must not run
		// the factory twice.
		lock := c.lockFor(key)
		lock.Lock()
		defer lock.Unlock()
	}

	if inst, ok := strategy.lookup(c, key); ok {
		return inst, nil
	}

	instance := c.applyExtenders(key, b.factory(c.withContext(ctx)))
	strategy.store(c, key, instance)
	c.fireAfterResolving(key, instance)
	return instance, nil
}

// resolveType builds a reflectively registered class under its lifetime
// policy: instantiate, inject properties, inject methods, store.
func (c *Container) resolveType(key string, reg *typeRegistration, overrides Overrides, ctx *Context) (any, error) {
	strategy := strategyFor(reg.lifetime)

	if reg.lifetime == Singleton {
		lock := c.lockFor(key)
		lock.Lock()
		defer lock.Unlock()
	}

	if inst, ok := strategy.lookup(c, key); ok {
		return inst, nil
	}

	instance, err := c.build(key, reg.ty, overrides, ctx)
	if err != nil {
		return nil, err
	}
	instance = c.applyExtenders(key, instance)
	strategy.store(c, key, instance)
	c.fireAfterResolving(key, instance)
	return instance, nil
}
