package app

import (
	"github.com/shomsy/foundation/framework/config"
	"github.com/shomsy/foundation/framework/container"
	"github.com/shomsy/foundation/framework/prototype"
	"github.com/shomsy/foundation/framework/providers"
)

// Application is the top-level application container.
// It embeds the IoC Container and ProviderRegistry so user code can
// call app.Bind(), app.Singleton(), app.Register() directly —
// exactly like $app in Laravel's bootstrap/app.php.
type Application struct {
	*container.Container
	Providers *container.ProviderRegistry
}

// New creates and bootstraps the application: configuration is loaded,
// the prototype stack is registered per that configuration, and the
// container is rewired to auto-wire through the configured factory.
func New(envFiles ...string) *Application {
	c := container.New()
	registry := container.NewProviderRegistry(c)

	app := &Application{
		Container: c,
		Providers: registry,
	}

	// Register framework core providers (same order as Laravel)
	registry.Register(&providers.ConfigServiceProvider{EnvFiles: envFiles})
	registry.Register(&providers.PrototypeServiceProvider{})

	// A provider that re-binds the prototype factory after boot must also
	// rewire the container's auto-wiring.
	c.Rebinding("prototype.factory", func(instance any) {
		if f, ok := instance.(*prototype.Factory); ok {
			c.SetPrototypes(f)
		}
	})

	return app
}

// Register adds a ServiceProvider to the application.
func (a *Application) Register(provider container.ServiceProvider) {
	a.Providers.Register(provider)
}

// Boot runs the Boot() phase on all providers, then rewires the container
// to auto-wire classes through the configured prototype factory.
func (a *Application) Boot() {
	a.Providers.Boot()
	a.Container.SetPrototypes(a.Prototypes())
}

// Config resolves *config.Config from the container.
func (a *Application) Config() *config.Config {
	return container.MustGet[*config.Config](a.Container, "config")
}

// Prototypes resolves the configured prototype factory.
func (a *Application) Prototypes() *prototype.Factory {
	return container.MustGet[*prototype.Factory](a.Container, "prototype.factory")
}

// Environment returns APP_ENV value.
func (a *Application) Environment() string { return a.Config().App.Env }
func (a *Application) IsLocal() bool       { return a.Environment() == "local" }
func (a *Application) IsProduction() bool  { return a.Environment() == "production" }
func (a *Application) IsTesting() bool     { return a.Environment() == "testing" }
func (a *Application) IsDebug() bool       { return a.Config().App.Debug }
func (a *Application) Version() string     { return "0.1.0" }
