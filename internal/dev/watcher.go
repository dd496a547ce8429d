package dev

import (
	"context"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// ChangeType is what kind of file changed, which decides how browsers are
// refreshed.
type ChangeType int

const (
	ChangeSource ChangeType = iota
	ChangeCSS
	ChangeAsset
	ChangeTemplate
)

func (t ChangeType) String() string {
	switch t {
	case ChangeSource:
		return "source"
	case ChangeCSS:
		return "css"
	case ChangeTemplate:
		return "template"
	}
	return "asset"
}

// Op is the file operation behind a change.
type Op int

const (
	OpCreate Op = iota
	OpWrite
	OpRemove
)

func (o Op) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpRemove:
		return "remove"
	}
	return "write"
}

// Change is one file that differs between two polls.
type Change struct {
	Path string
	Type ChangeType
	Op   Op
}

// WatcherConfig configures the file watcher.
type WatcherConfig struct {
	// Paths are files or directories to watch.
	Paths []string

	// Ignore holds base-name globs ("*.swp"), directory names
	// ("node_modules") and slash-separated path fragments ("public/tmp").
	Ignore []string

	// Interval between polls. Default 100ms.
	Interval time.Duration
}

// DefaultIgnore skips VCS metadata, dependencies, build output and editor
// scratch files.
var DefaultIgnore = []string{
	".git",
	"node_modules",
	"dist",
	".ssg-temp",
	".vite",
	"*.tmp",
	"*.swp",
	"*~",
}

// snapshot maps a file path to its modification time and size.
type snapshot map[string]fileStamp

type fileStamp struct {
	mod  time.Time
	size int64
}

// Watcher polls the watched paths and reports every change found in a poll
// as one batch.
type Watcher struct {
	config   WatcherConfig
	mu       sync.Mutex
	onChange func([]Change)
	running  bool
	stopCh   chan struct{}
	last     snapshot
}

// NewWatcher creates a file watcher.
func NewWatcher(config WatcherConfig) *Watcher {
	if config.Interval <= 0 {
		config.Interval = 100 * time.Millisecond
	}
	if config.Ignore == nil {
		config.Ignore = DefaultIgnore
	}
	return &Watcher{config: config}
}

// OnChange sets the callback that receives each non-empty batch.
func (w *Watcher) OnChange(fn func([]Change)) {
	w.mu.Lock()
	w.onChange = fn
	w.mu.Unlock()
}

// Start polls until ctx is done or Stop is called. Files present at start
// are the baseline and are not reported.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	stop := w.stopCh
	w.mu.Unlock()

	w.last = w.scan()

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return ctx.Err()
		case <-stop:
			return nil
		case <-ticker.C:
			w.poll()
		}
	}
}

// Stop ends polling.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		close(w.stopCh)
		w.running = false
	}
}

// IsRunning reports whether the watcher is polling.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *Watcher) poll() {
	next := w.scan()
	changes := diff(w.last, next)
	w.last = next
	if len(changes) == 0 {
		return
	}

	w.mu.Lock()
	fn := w.onChange
	w.mu.Unlock()
	if fn != nil {
		fn(changes)
	}
}

// scan stats every non-ignored file below the watched paths. Unreadable
// entries are skipped.
func (w *Watcher) scan() snapshot {
	snap := make(snapshot)
	for _, root := range w.config.Paths {
		_ = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if w.shouldIgnore(p) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return nil
			}
			snap[p] = fileStamp{mod: info.ModTime(), size: info.Size()}
			return nil
		})
	}
	return snap
}

// diff lists the changes from prev to next, sorted by path.
func diff(prev, next snapshot) []Change {
	var changes []Change
	for p, stamp := range next {
		old, ok := prev[p]
		switch {
		case !ok:
			changes = append(changes, Change{Path: p, Type: classifyChange(p), Op: OpCreate})
		case !stamp.mod.Equal(old.mod) || stamp.size != old.size:
			changes = append(changes, Change{Path: p, Type: classifyChange(p), Op: OpWrite})
		}
	}
	for p := range prev {
		if _, ok := next[p]; !ok {
			changes = append(changes, Change{Path: p, Type: classifyChange(p), Op: OpRemove})
		}
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })
	return changes
}

func (w *Watcher) shouldIgnore(p string) bool {
	slashed := filepath.ToSlash(p)
	segments := strings.Split(slashed, "/")
	name := segments[len(segments)-1]

	for _, rule := range w.config.Ignore {
		rule = strings.TrimSpace(filepath.ToSlash(rule))
		switch {
		case rule == "":
		case strings.ContainsAny(rule, "*?["):
			if ok, _ := path.Match(rule, name); ok {
				return true
			}
		case strings.Contains(rule, "/"):
			if containsRun(segments, strings.Split(strings.Trim(rule, "/"), "/")) {
				return true
			}
		default:
			if containsRun(segments, []string{rule}) {
				return true
			}
		}
	}
	return false
}

// containsRun reports whether run appears as consecutive elements of segs.
func containsRun(segs, run []string) bool {
	for i := 0; i+len(run) <= len(segs); i++ {
		match := true
		for j, r := range run {
			if segs[i+j] != r {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// classifyChange maps a file extension to how browsers should refresh.
func classifyChange(p string) ChangeType {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".ts", ".tsx", ".js", ".jsx", ".mjs", ".vue", ".svelte":
		return ChangeSource
	case ".css", ".scss", ".sass", ".less":
		return ChangeCSS
	case ".html":
		return ChangeTemplate
	}
	return ChangeAsset
}
