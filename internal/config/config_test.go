package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Concurrency != DefaultConcurrency {
		t.Errorf("Concurrency = %d, want %d", cfg.Concurrency, DefaultConcurrency)
	}
	if cfg.DirStyle != DirStyleFlat {
		t.Errorf("DirStyle = %q, want %q", cfg.DirStyle, DirStyleFlat)
	}
	if cfg.RootContainerID != "root" {
		t.Errorf("RootContainerID = %q, want root", cfg.RootContainerID)
	}
	if cfg.Script != ScriptSync {
		t.Errorf("Script = %q, want %q", cfg.Script, ScriptSync)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()

	if _, err := Load(tmpDir); err == nil {
		t.Error("Expected error for missing config")
	}

	configJSON := `{
  "dirStyle": "nested",
  "concurrency": 4,
  "outDir": "build",
  "critical": {"enabled": true, "maxInlineSize": 2048},
  "dev": {"port": 8080}
}
`
	if err := os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte(configJSON), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.DirStyle != DirStyleNested {
		t.Errorf("DirStyle = %q, want nested", cfg.DirStyle)
	}
	if cfg.Concurrency != 4 {
		t.Errorf("Concurrency = %d, want 4", cfg.Concurrency)
	}
	if !cfg.Critical.Enabled || cfg.Critical.MaxInlineSize != 2048 {
		t.Errorf("Critical = %+v", cfg.Critical)
	}
	if cfg.Dev.Port != 8080 {
		t.Errorf("Dev.Port = %d, want 8080", cfg.Dev.Port)
	}
	// Unset fields keep their defaults.
	if cfg.RootContainerID != DefaultRootContainerID {
		t.Errorf("RootContainerID = %q, want default", cfg.RootContainerID)
	}
	if cfg.Dev.Host != DefaultHost {
		t.Errorf("Dev.Host = %q, want %q", cfg.Dev.Host, DefaultHost)
	}
	if got, want := cfg.OutputPath(), filepath.Join(tmpDir, "build"); got != want {
		t.Errorf("OutputPath() = %q, want %q", got, want)
	}
	if got, want := cfg.ManifestPath(), filepath.Join(tmpDir, "build", ".vite", "manifest.json"); got != want {
		t.Errorf("ManifestPath() = %q, want %q", got, want)
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte("{nope"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(tmpDir); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"async defer", func(c *Config) { c.Script = ScriptAsyncDefer }, false},
		{"bad script", func(c *Config) { c.Script = "lazy" }, true},
		{"bad format", func(c *Config) { c.Format = "umd" }, true},
		{"bad formatting", func(c *Config) { c.Formatting = "minify" }, true},
		{"bad dirStyle", func(c *Config) { c.DirStyle = "deep" }, true},
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }, true},
		{"empty container", func(c *Config) { c.RootContainerID = "" }, true},
		{"bad watchdog", func(c *Config) { c.Watchdog = "soon" }, true},
		{"disabled watchdog", func(c *Config) { c.Watchdog = "0" }, false},
		{"bad port", func(c *Config) { c.Dev.Port = 70000 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestWatchdogDuration(t *testing.T) {
	cfg := New()
	d, err := cfg.WatchdogDuration()
	if err != nil || d != 15*time.Second {
		t.Errorf("WatchdogDuration() = %v, %v; want 15s", d, err)
	}

	cfg.Watchdog = "0"
	if d, _ := cfg.WatchdogDuration(); d != 0 {
		t.Errorf("WatchdogDuration() = %v, want 0", d)
	}
}

func TestFindProjectRoot(t *testing.T) {
	tmpDir := t.TempDir()
	nested := filepath.Join(tmpDir, "src", "pages")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	root, err := FindProjectRoot(nested)
	if err != nil {
		t.Fatalf("FindProjectRoot() error = %v", err)
	}
	want, _ := filepath.Abs(tmpDir)
	if root != want {
		t.Errorf("FindProjectRoot() = %q, want %q", root, want)
	}
}

func TestSave(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, ConfigFileName)

	cfg := New()
	cfg.DirStyle = DirStyleNested
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if loaded.DirStyle != DirStyleNested {
		t.Errorf("DirStyle = %q after round trip", loaded.DirStyle)
	}
}

func TestLoadEnv(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, ConfigFileName)
	if err := os.WriteFile(cfgPath, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}
	write := func(name, body string) {
		if err := os.WriteFile(filepath.Join(tmpDir, name), []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
	}
	write(".env", "SSG_TEST_A=base\nSSG_TEST_B=base\n")
	write(".env.production", "SSG_TEST_A=prod\n")

	t.Setenv("SSG_TEST_A", "")
	os.Unsetenv("SSG_TEST_A")
	t.Setenv("SSG_TEST_B", "")
	os.Unsetenv("SSG_TEST_B")
	t.Setenv("SSG_TEST_C", "process")

	cfg, err := LoadFile(cfgPath)
	if err != nil {
		t.Fatal(err)
	}
	loaded, err := cfg.LoadEnv("production")
	if err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}
	if len(loaded) != 2 {
		t.Errorf("loaded %d files, want 2: %v", len(loaded), loaded)
	}
	if got := os.Getenv("SSG_TEST_A"); got != "prod" {
		t.Errorf("SSG_TEST_A = %q, want prod", got)
	}
	if got := os.Getenv("SSG_TEST_B"); got != "base" {
		t.Errorf("SSG_TEST_B = %q, want base", got)
	}
	if got := os.Getenv("SSG_TEST_C"); got != "process" {
		t.Errorf("SSG_TEST_C = %q, want process", got)
	}
}

func TestResolveMode(t *testing.T) {
	cfg := New()
	t.Setenv("MODE", "")
	t.Setenv("NODE_ENV", "")
	if got := cfg.ResolveMode("production"); got != "production" {
		t.Errorf("ResolveMode() = %q, want production", got)
	}
	cfg.Mode = "staging"
	if got := cfg.ResolveMode("production"); got != "staging" {
		t.Errorf("ResolveMode() = %q, want staging", got)
	}
	t.Setenv("MODE", "preview")
	if got := cfg.ResolveMode("production"); got != "preview" {
		t.Errorf("ResolveMode() = %q, want preview", got)
	}
}
