// Package container provides a Laravel-compatible IoC (Inversion of Control)
// container for Go, with reflective auto-wiring, prototype-cached class
// analysis, cycle-safe recursive resolution, and Singleton/Scoped/Transient
// lifetimes.
//
// # Overview
//
// The container manages the instantiation and lifecycle of your
// application's dependencies. Services are registered either as explicit
// factory bindings (the classic Laravel surface) or as plain struct types
// the container wires up by itself: it analyzes the type once — constructor
// parameters, `inject`-tagged fields, Inject* methods — caches the resulting
// blueprint through framework/prototype, and builds instances from it.
//
// # Resolution pipeline
//
// Every resolution runs the same sequence: the policy gate, the cycle
// check, a lifecycle cache lookup, and on miss construct → inject
// properties → invoke injection methods → store per lifetime. Nested
// dependencies recurse into the same pipeline sharing one resolution
// context chain, so a service that (transitively) requires itself fails
// with a RecursionError naming the cycle instead of overflowing the stack.
//
// # Bindings
//
//	// Transient — new instance every resolution
//	// Laravel: $app->bind(Foo::class, fn($app) => new Foo)
//	c.Bind("Foo", func(c *container.Container) any { return &Foo{} })
//
//	// Singleton — created once, reused
//	c.Singleton("cache", func(c *container.Container) any { return cache.New() })
//
//	// Scoped — reused within the nearest scope bracket
//	c.Scoped("tx", func(c *container.Container) any { return db.Begin() })
//
//	// Pre-built value
//	c.Instance("config", cfg)
//
//	// Alias
//	c.Alias("cache", "cacheManager")
//
// # Auto-wired classes
//
//	type ReportService struct {
//	    Logger Logger `inject:""`         // property injection
//	    repo   *ReportRepository          // set by the constructor
//	}
//
//	func (s *ReportService) Construct(repo *ReportRepository) { s.repo = repo }
//	func (s *ReportService) InjectMailer(m *Mailer)           { ... }
//
//	key := container.Register[*ReportService](c, container.Singleton)
//	svc, err := container.Get[*ReportService](c, key)
//
// # Scopes
//
//	s := c.BeginScope()
//	defer c.EndScope(s)
//	tx := c.Make("tx") // same instance for the whole bracket
//
// # Overrides
//
// Caller-supplied values win over every other strategy, then container
// resolution, then declared defaults, then null:
//
//	svc, err := c.ResolveWith(key, container.Overrides{}.WithValue("retries", 5))
//
// # Contextual binding
//
//	c.When("acme.PhotoController").
//	    Needs("acme.Filesystem").
//	    Give(func(c *container.Container) any { return &S3Filesystem{} })
//
// # Service providers
//
//	registry := container.NewProviderRegistry(c)
//	registry.Register(&AppServiceProvider{})
//	registry.Boot()
package container
