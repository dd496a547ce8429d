// Package config loads ssg.json, the project configuration for static
// generation and the development server.
//
// Configuration is resolved in three layers: built-in defaults from New,
// the JSON file, and environment files. Before a command runs, LoadEnv reads
// ".env" and ".env.<mode>" from the project root; variables already present
// in the process environment are never overridden.
//
//	cfg, err := config.LoadFromWorkingDir()
//	if err != nil { ... }
//	if err := cfg.Validate(); err != nil { ... }
package config
