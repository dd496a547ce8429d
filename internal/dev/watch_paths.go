package dev

import (
	"path/filepath"

	"github.com/vango-dev/ssg/internal/config"
)

// CollectWatchPaths returns the template, the public directory and the
// configured watch entries, cleaned and without repeats.
func CollectWatchPaths(cfg *config.Config) []string {
	paths := append([]string{cfg.TemplatePath(), cfg.PublicPath()}, cfg.WatchPaths()...)

	unique := make([]string, 0, len(paths))
	seen := make(map[string]struct{}, len(paths))
	for _, path := range paths {
		if path == "" {
			continue
		}
		clean := filepath.Clean(path)
		if _, ok := seen[clean]; ok {
			continue
		}
		seen[clean] = struct{}{}
		unique = append(unique, clean)
	}
	return unique
}
