package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// ResolveMode picks the active mode: MODE, then NODE_ENV, then the
// configured mode, then fallback.
func (c *Config) ResolveMode(fallback string) string {
	if m := os.Getenv("MODE"); m != "" {
		return m
	}
	if m := os.Getenv("NODE_ENV"); m != "" {
		return m
	}
	if c.Mode != "" {
		return c.Mode
	}
	return fallback
}

// LoadEnv loads .env.<mode>.local, .env.<mode>, .env.local and .env from the
// project root, in that priority order. Missing files are skipped and
// existing process variables are kept.
func (c *Config) LoadEnv(mode string) ([]string, error) {
	root := c.RootPath()
	candidates := []string{
		".env." + mode + ".local",
		".env." + mode,
		".env.local",
		".env",
	}

	var loaded []string
	for _, name := range candidates {
		path := filepath.Join(root, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		// godotenv.Load never overrides variables that are already set, so
		// the first file to define a key wins.
		if err := godotenv.Load(path); err != nil {
			return loaded, err
		}
		loaded = append(loaded, path)
	}
	return loaded, nil
}
