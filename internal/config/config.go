package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/vango-dev/ssg/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "ssg.json"

	// DefaultPort is the default development server port.
	DefaultPort = 5173

	// DefaultHost is the default development server host.
	DefaultHost = "localhost"

	// DefaultOutDir is the default build output directory.
	DefaultOutDir = "dist"

	// DefaultConcurrency is the default render queue width.
	DefaultConcurrency = 20

	// DefaultRootContainerID is the id of the element the app mounts into.
	DefaultRootContainerID = "root"

	// DefaultEntry is used when the HTML template has no module script.
	DefaultEntry = "src/main.ts"

	// DefaultWatchdog is the grace period after a build before forced exit.
	DefaultWatchdog = "15s"
)

// Script loading modes applied to module script tags.
const (
	ScriptSync       = "sync"
	ScriptAsync      = "async"
	ScriptDefer      = "defer"
	ScriptAsyncDefer = "async defer"
)

// Output directory layouts.
const (
	DirStyleFlat   = "flat"
	DirStyleNested = "nested"
)

// Config represents the complete ssg.json configuration.
type Config struct {
	// Root is the project root, relative to the config file.
	Root string `json:"root,omitempty"`

	// Base is the public base path the site is served under.
	Base string `json:"base,omitempty"`

	// Mode selects environment files and defaults (production, development).
	Mode string `json:"mode,omitempty"`

	// Entry is the client entry module. Detected from htmlEntry when empty.
	Entry string `json:"entry,omitempty"`

	// HTMLEntry is the HTML template, relative to root.
	HTMLEntry string `json:"htmlEntry,omitempty"`

	// OutDir is the client bundle output and page destination.
	OutDir string `json:"outDir,omitempty"`

	// ManifestDir holds manifest.json and ssr-manifest.json inside OutDir.
	ManifestDir string `json:"manifestDir,omitempty"`

	// ServerManifest is the server bundle manifest, relative to root.
	ServerManifest string `json:"serverManifest,omitempty"`

	// Script is the loading mode for module scripts.
	Script string `json:"script,omitempty"`

	// Format is the server bundle module format (esm or cjs).
	Format string `json:"format,omitempty"`

	// Formatting is "none" or "prettify".
	Formatting string `json:"formatting,omitempty"`

	// DirStyle is "flat" (/a -> a.html) or "nested" (/a -> a/index.html).
	DirStyle string `json:"dirStyle,omitempty"`

	// IncludeAllRoutes renders every enumerated path, skipping the default filter.
	IncludeAllRoutes bool `json:"includeAllRoutes,omitempty"`

	// Concurrency is the width of the render queue.
	Concurrency int `json:"concurrency,omitempty"`

	// RootContainerID is the id of the element the app mounts into.
	RootContainerID string `json:"rootContainerId,omitempty"`

	// Critical configures critical CSS inlining.
	Critical CriticalConfig `json:"critical,omitempty"`

	// Watchdog is the grace period before the process is forced to exit
	// after a successful build. "0" disables it.
	Watchdog string `json:"watchdog,omitempty"`

	// Precache writes precache-manifest.json after the build.
	Precache bool `json:"precache,omitempty"`

	// Dev contains development server configuration.
	Dev DevConfig `json:"dev,omitempty"`

	// Publish contains upload settings for the build output.
	Publish PublishConfig `json:"publish,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// CriticalConfig contains critical CSS settings.
type CriticalConfig struct {
	// Enabled turns on the critical CSS queue.
	Enabled bool `json:"enabled,omitempty"`

	// PublicPath is the URL prefix stylesheets are linked with.
	PublicPath string `json:"publicPath,omitempty"`

	// MaxInlineSize skips stylesheets larger than this many bytes. 0 means no limit.
	MaxInlineSize int `json:"maxInlineSize,omitempty"`

	// Minify minifies inlined CSS.
	Minify bool `json:"minify,omitempty"`
}

// DevConfig contains development server settings.
type DevConfig struct {
	// Port is the port to run the dev server on.
	Port int `json:"port,omitempty"`

	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// Bundler is the URL of the bundler dev server that serves modules.
	Bundler string `json:"bundler,omitempty"`

	// Command starts the bundler dev server alongside this one, e.g.
	// ["npx", "vite", "--port", "5173"]. Empty means it is run separately.
	Command []string `json:"command,omitempty"`

	// Public is the directory of static files served as-is.
	Public string `json:"public,omitempty"`

	// Watch contains paths to watch for changes.
	Watch []string `json:"watch,omitempty"`

	// HotReload enables the reload websocket.
	HotReload bool `json:"hotReload,omitempty"`
}

// PublishConfig contains output upload settings.
type PublishConfig struct {
	S3 S3Config `json:"s3,omitempty"`
}

// S3Config describes an S3 or S3-compatible bucket.
type S3Config struct {
	Bucket   string `json:"bucket,omitempty"`
	Prefix   string `json:"prefix,omitempty"`
	Region   string `json:"region,omitempty"`
	Endpoint string `json:"endpoint,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Root:            ".",
		Base:            "/",
		HTMLEntry:       "index.html",
		OutDir:          DefaultOutDir,
		ManifestDir:     ".vite",
		ServerManifest:  ".ssg-temp/.vite/manifest.json",
		Script:          ScriptSync,
		Format:          "esm",
		Formatting:      "none",
		DirStyle:        DirStyleFlat,
		Concurrency:     DefaultConcurrency,
		RootContainerID: DefaultRootContainerID,
		Watchdog:        DefaultWatchdog,
		Dev: DevConfig{
			Port:      DefaultPort,
			Host:      DefaultHost,
			Public:    "public",
			Watch:     []string{"index.html", "public"},
			HotReload: true,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for ssg.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E100").
				WithPath(path).
				WithDetail("No ssg.json found in " + filepath.Dir(path))
		}
		return nil, errors.New("E102").WithPath(path).Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E102").
			WithPath(path).
			Wrap(err).
			WithSuggestion("Check that ssg.json is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// Save writes the configuration to the specified path.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E102").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E600").WithPath(path).Wrap(err)
	}
	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return "."
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	d := New()
	if c.Root == "" {
		c.Root = d.Root
	}
	if c.Base == "" {
		c.Base = d.Base
	}
	if c.HTMLEntry == "" {
		c.HTMLEntry = d.HTMLEntry
	}
	if c.OutDir == "" {
		c.OutDir = d.OutDir
	}
	if c.ManifestDir == "" {
		c.ManifestDir = d.ManifestDir
	}
	if c.ServerManifest == "" {
		c.ServerManifest = d.ServerManifest
	}
	if c.Script == "" {
		c.Script = d.Script
	}
	if c.Format == "" {
		c.Format = d.Format
	}
	if c.Formatting == "" {
		c.Formatting = d.Formatting
	}
	if c.DirStyle == "" {
		c.DirStyle = d.DirStyle
	}
	if c.Concurrency == 0 {
		c.Concurrency = d.Concurrency
	}
	if c.RootContainerID == "" {
		c.RootContainerID = d.RootContainerID
	}
	if c.Watchdog == "" {
		c.Watchdog = d.Watchdog
	}

	if c.Dev.Port == 0 {
		c.Dev.Port = d.Dev.Port
	}
	if c.Dev.Host == "" {
		c.Dev.Host = d.Dev.Host
	}
	if c.Dev.Public == "" {
		c.Dev.Public = d.Dev.Public
	}
	if c.Dev.Watch == nil {
		c.Dev.Watch = d.Dev.Watch
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	invalid := func(detail string) error {
		return errors.New("E101").WithPath(c.configPath).WithDetail(detail)
	}

	switch c.Script {
	case ScriptSync, ScriptAsync, ScriptDefer, ScriptAsyncDefer:
	default:
		return invalid(`script must be one of "sync", "async", "defer", "async defer"; got ` + strconv.Quote(c.Script))
	}
	switch c.Format {
	case "esm", "cjs":
	default:
		return invalid(`format must be "esm" or "cjs"; got ` + strconv.Quote(c.Format))
	}
	switch c.Formatting {
	case "none", "prettify":
	default:
		return invalid(`formatting must be "none" or "prettify"; got ` + strconv.Quote(c.Formatting))
	}
	switch c.DirStyle {
	case DirStyleFlat, DirStyleNested:
	default:
		return invalid(`dirStyle must be "flat" or "nested"; got ` + strconv.Quote(c.DirStyle))
	}
	if c.Concurrency < 1 {
		return invalid("concurrency must be at least 1")
	}
	if c.RootContainerID == "" {
		return invalid("rootContainerId must not be empty")
	}
	if _, err := c.WatchdogDuration(); err != nil {
		return invalid("watchdog is not a valid duration: " + err.Error())
	}
	if c.Critical.MaxInlineSize < 0 {
		return invalid("critical.maxInlineSize must not be negative")
	}
	if c.Dev.Port < 0 || c.Dev.Port > 65535 {
		return invalid("dev.port must be between 0 and 65535")
	}
	return nil
}

// WatchdogDuration parses Watchdog. Zero disables the watchdog.
func (c *Config) WatchdogDuration() (time.Duration, error) {
	if c.Watchdog == "" || c.Watchdog == "0" {
		return 0, nil
	}
	return time.ParseDuration(c.Watchdog)
}

// DevAddress returns the address string for the dev server.
func (c *Config) DevAddress() string {
	return c.Dev.Host + ":" + strconv.Itoa(c.Dev.Port)
}

// DevURL returns the full URL for the dev server.
func (c *Config) DevURL() string {
	return "http://" + c.DevAddress() + c.Base
}

// RootPath returns the absolute project root.
func (c *Config) RootPath() string {
	return c.resolve(c.Dir(), c.Root)
}

// OutputPath returns the absolute path to the build output directory.
func (c *Config) OutputPath() string {
	return c.resolve(c.RootPath(), c.OutDir)
}

// TemplatePath returns the absolute path to the HTML template source.
func (c *Config) TemplatePath() string {
	return c.resolve(c.RootPath(), c.HTMLEntry)
}

// BuiltTemplatePath returns the HTML template as emitted into OutDir.
func (c *Config) BuiltTemplatePath() string {
	return filepath.Join(c.OutputPath(), filepath.Base(c.HTMLEntry))
}

// ManifestPath returns the client manifest path.
func (c *Config) ManifestPath() string {
	return filepath.Join(c.OutputPath(), c.ManifestDir, "manifest.json")
}

// SSRManifestPath returns the client SSR manifest path.
func (c *Config) SSRManifestPath() string {
	return filepath.Join(c.OutputPath(), c.ManifestDir, "ssr-manifest.json")
}

// ServerManifestPath returns the server bundle manifest path.
func (c *Config) ServerManifestPath() string {
	return c.resolve(c.RootPath(), c.ServerManifest)
}

// TempPath returns the server bundle staging directory removed after a build.
func (c *Config) TempPath() string {
	return filepath.Join(c.RootPath(), ".ssg-temp")
}

// PublicPath returns the absolute path to the public directory.
func (c *Config) PublicPath() string {
	return c.resolve(c.RootPath(), c.Dev.Public)
}

// WatchPaths returns the dev watch list as absolute paths.
func (c *Config) WatchPaths() []string {
	paths := make([]string, 0, len(c.Dev.Watch))
	for _, p := range c.Dev.Watch {
		paths = append(paths, c.resolve(c.RootPath(), p))
	}
	return paths
}

func (c *Config) resolve(base, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing ssg.json, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E100").
				WithDetail("No ssg.json found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working directory.
// Without an ssg.json the defaults are returned, rooted at the working directory.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		cfg := New()
		cfg.configPath = filepath.Join(wd, ConfigFileName)
		return cfg, nil
	}
	return Load(root)
}
