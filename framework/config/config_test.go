package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"APP_NAME", "APP_ENV", "APP_DEBUG",
		"PROTOTYPE_CACHE_DIR", "PROTOTYPE_CACHE_ENABLED", "PROTOTYPE_VERIFY",
	} {
		t.Setenv(key, "")
	}

	cfg := Load("does-not-exist.env")

	if cfg.App.Name != "Foundation" {
		t.Errorf("App.Name = %q; want Foundation", cfg.App.Name)
	}
	if cfg.App.Env != "local" {
		t.Errorf("App.Env = %q; want local", cfg.App.Env)
	}
	if !cfg.App.Debug {
		t.Error("App.Debug = false; want true")
	}
	if cfg.Prototype.CacheDir != "storage/cache/prototypes" {
		t.Errorf("Prototype.CacheDir = %q", cfg.Prototype.CacheDir)
	}
	if !cfg.Prototype.CacheEnabled {
		t.Error("Prototype.CacheEnabled = false; want true")
	}
	if !cfg.Prototype.Verify {
		t.Error("Prototype.Verify = false; want true")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("APP_NAME", "Billing")
	t.Setenv("APP_ENV", "testing")
	t.Setenv("APP_DEBUG", "false")
	t.Setenv("PROTOTYPE_CACHE_DIR", "/tmp/blueprints")
	t.Setenv("PROTOTYPE_CACHE_ENABLED", "false")
	t.Setenv("PROTOTYPE_VERIFY", "false")

	cfg := Load("does-not-exist.env")

	if cfg.App.Name != "Billing" || cfg.App.Env != "testing" || cfg.App.Debug {
		t.Errorf("unexpected app config: %+v", cfg.App)
	}
	if cfg.Prototype.CacheDir != "/tmp/blueprints" {
		t.Errorf("Prototype.CacheDir = %q", cfg.Prototype.CacheDir)
	}
	if cfg.Prototype.CacheEnabled || cfg.Prototype.Verify {
		t.Errorf("unexpected prototype config: %+v", cfg.Prototype)
	}
}

func TestGetHelpers(t *testing.T) {
	t.Setenv("STR_KEY", "value")
	t.Setenv("INT_KEY", "42")
	t.Setenv("BAD_INT", "nope")
	t.Setenv("BOOL_KEY", "true")
	t.Setenv("BAD_BOOL", "yep")

	if got := Get("STR_KEY", "fallback"); got != "value" {
		t.Errorf("Get = %q", got)
	}
	if got := Get("MISSING_KEY", "fallback"); got != "fallback" {
		t.Errorf("Get fallback = %q", got)
	}
	if got := GetInt("INT_KEY", 1); got != 42 {
		t.Errorf("GetInt = %d", got)
	}
	if got := GetInt("BAD_INT", 1); got != 1 {
		t.Errorf("GetInt bad value = %d", got)
	}
	if got := GetBool("BOOL_KEY", false); !got {
		t.Error("GetBool = false")
	}
	if got := GetBool("BAD_BOOL", false); got {
		t.Error("GetBool bad value = true")
	}
}
