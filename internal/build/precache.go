package build

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// PrecacheFile is the precache manifest written into the output directory.
const PrecacheFile = "precache-manifest.json"

// PrecacheEntry is one file a service worker should precache.
type PrecacheEntry struct {
	URL      string `json:"url"`
	Revision string `json:"revision"`
}

// Precache lists every file under dir with its content hash. Hidden
// directories and the precache manifest itself are skipped.
func Precache(dir string) ([]PrecacheEntry, error) {
	var entries []PrecacheEntry
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() == PrecacheFile {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		sum, err := hashFile(path)
		if err != nil {
			return err
		}
		entries = append(entries, PrecacheEntry{URL: filepath.ToSlash(rel), Revision: sum})
		return nil
	})
	return entries, err
}

// WritePrecache writes the precache manifest for dir and returns its path.
func WritePrecache(dir string) (string, error) {
	path := filepath.Join(dir, PrecacheFile)
	entries, err := Precache(dir)
	if err != nil {
		return path, err
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return path, err
	}
	return path, os.WriteFile(path, data, 0o644)
}
