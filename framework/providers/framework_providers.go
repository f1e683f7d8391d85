package providers

import (
	"github.com/shomsy/foundation/framework/config"
	"github.com/shomsy/foundation/framework/container"
	"github.com/shomsy/foundation/framework/prototype"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider loads the application configuration from .env and
// binds it into the container as "config".
//
// Bound abstracts:
//   - "config"  → *config.Config
//
// Laravel equivalent:
//
//	// Illuminate\Foundation\Bootstrap\LoadConfiguration
//	$app->singleton('config', fn() => new Repository($items));
type ConfigServiceProvider struct {
	container.BaseProvider
	EnvFiles []string
}

func (p *ConfigServiceProvider) Register(app *container.Container) {
	envFiles := p.EnvFiles
	app.Singleton("config", func(c *container.Container) any {
		return config.Load(envFiles...)
	})
	app.Alias("config", "configuration")
}

// ── PrototypeServiceProvider ──────────────────────────────────────────────────

// PrototypeServiceProvider registers the class-analysis stack: the cache
// backend chosen by configuration, the reflection analyzer, the verifier,
// and the cache-first factory over them.
//
// Bound abstracts:
//   - "prototype.cache"    → prototype.Cache (file-backed, or no-op when
//     persistence is disabled)
//   - "prototype.analyzer" → prototype.Analyzer
//   - "prototype.verifier" → *prototype.Verifier
//   - "prototype.factory"  → *prototype.Factory
type PrototypeServiceProvider struct {
	container.BaseProvider
}

func (p *PrototypeServiceProvider) Register(app *container.Container) {
	app.Singleton("prototype.cache", func(c *container.Container) any {
		cfg := container.MustGet[*config.Config](c, "config")
		if !cfg.Prototype.CacheEnabled {
			return prototype.Cache(prototype.NewNoopCache())
		}
		return prototype.Cache(prototype.NewFileCache(cfg.Prototype.CacheDir))
	})

	app.Singleton("prototype.analyzer", func(c *container.Container) any {
		return prototype.Analyzer(prototype.NewAnalyzer())
	})

	app.Singleton("prototype.verifier", func(c *container.Container) any {
		return prototype.NewVerifier()
	})

	app.Singleton("prototype.factory", func(c *container.Container) any {
		cfg := container.MustGet[*config.Config](c, "config")
		cache := container.MustGet[prototype.Cache](c, "prototype.cache")
		analyzer := container.MustGet[prototype.Analyzer](c, "prototype.analyzer")

		var opts []prototype.FactoryOption
		if cfg.Prototype.Verify {
			opts = append(opts, prototype.WithVerifier(
				container.MustGet[*prototype.Verifier](c, "prototype.verifier")))
		}
		return prototype.NewFactory(cache, analyzer, opts...)
	})
}
