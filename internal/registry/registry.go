// Package registry implements the Task Registry (§4.G): multi-root
// discovery of task JSON documents, a debounced filesystem watch grounded
// on the teacher's git.FileWatcher, and an atomic, idempotent reload cycle.
package registry

import (
	"errors"
	"path/filepath"
	"sort"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tootal/tasksh/internal/logging"
	"github.com/tootal/tasksh/internal/safego"
	"github.com/tootal/tasksh/internal/task"
	"github.com/tootal/tasksh/internal/taskloader"
)

// ErrWatchLimit mirrors the teacher's git.FileWatcher: once the OS inotify
// limit is hit, the watcher disables itself instead of repeatedly failing.
var ErrWatchLimit = errors.New("registry: file watcher limit reached")

// Registry holds the task tree (§4.G "State"). Mutation happens only inside
// Reload; reads of Tasks are safe to call concurrently with a Reload in
// flight, since the tasks slice is swapped atomically under the mutex.
type Registry struct {
	mu sync.Mutex

	locale      string
	searchRoots []string
	files       map[string]bool
	tasks       []*task.Task

	watcher    *fsnotify.Watcher
	debounce   time.Duration
	lastChange time.Time
	disabled   bool

	onChanged func()
	closeOnce sync.Once
}

// New creates a Registry. onChanged is invoked once per completed reload
// (the tasks_changed signal of §4.G); it may be nil.
func New(locale string, debounce time.Duration, onChanged func()) (*Registry, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Registry{
		locale:    locale,
		files:     make(map[string]bool),
		watcher:   watcher,
		debounce:  debounce,
		onChanged: onChanged,
	}, nil
}

// AddSearchPath appends a root; it does not reload (§4.G).
func (r *Registry) AddSearchPath(p string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.searchRoots {
		if existing == p {
			return
		}
	}
	r.searchRoots = append(r.searchRoots, p)
}

// Init loads tasks from the current search roots and installs watches
// (§4.G "init()"). Call AddSearchPath for every root before calling Init.
func (r *Registry) Init() error {
	return r.Reload()
}

// Tasks returns the current top-level task list. Callers must re-read after
// an onChanged notification rather than caching the slice across a reload.
func (r *Registry) Tasks() []*task.Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*task.Task, len(r.tasks))
	copy(out, r.tasks)
	return out
}

// Reload rescans every search root recursively for *.json files, parses
// each, replaces the task list atomically, and re-arms watches (§4.G). A
// failed parse of one file never prevents others from loading. Reload is
// synchronous and idempotent.
func (r *Registry) Reload() error {
	r.mu.Lock()
	roots := append([]string(nil), r.searchRoots...)
	r.mu.Unlock()

	files := make([]string, 0, 32)
	for _, root := range roots {
		found, err := discoverTaskFiles(root)
		if err != nil {
			logging.Warn("registry: scanning %s: %v", root, err)
			continue
		}
		files = append(files, found...)
	}

	tasks := make([]*task.Task, 0, len(files))
	for _, path := range files {
		tk, err := taskloader.Load(path, r.locale)
		if err != nil {
			logging.Warn("registry: skipping %s: %v", path, err)
			continue
		}
		tasks = append(tasks, tk)
	}

	newFileSet := make(map[string]bool, len(files))
	for _, f := range files {
		newFileSet[f] = true
	}

	r.mu.Lock()
	r.tasks = tasks
	r.files = newFileSet
	r.mu.Unlock()

	r.rearmWatches(roots, files)

	if r.onChanged != nil {
		r.onChanged()
	}
	return nil
}

// Delete removes a task's backing file, then drops it from the list (§4.G).
func (r *Registry) Delete(t *task.Task) error {
	if err := removeFile(t.File); err != nil {
		return err
	}
	return r.Reload()
}

// discoverTaskFiles walks root recursively, returning every *.json file in
// deterministic (sorted) order.
func discoverTaskFiles(root string) ([]string, error) {
	var found []string
	err := walkDir(root, func(path string, isDir bool) {
		if !isDir && filepath.Ext(path) == ".json" {
			found = append(found, path)
		}
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(found)
	return found, nil
}

// Close stops the underlying watcher.
func (r *Registry) Close() error {
	var err error
	r.closeOnce.Do(func() {
		err = r.watcher.Close()
	})
	return err
}

// Run processes filesystem events until stop is closed, debouncing bursts
// (directory + file events from a single edit) into a single Reload, per
// the design note in §9 ("Watcher storm").
func (r *Registry) Run(stop <-chan struct{}) {
	safego.Go("registry-watch", func() {
		for {
			select {
			case <-stop:
				return
			case event, ok := <-r.watcher.Events:
				if !ok {
					return
				}
				r.handleEvent(event)
			case err, ok := <-r.watcher.Errors:
				if !ok {
					return
				}
				if err != nil {
					logging.Warn("registry: watcher error: %v", err)
				}
			}
		}
	})
}

func (r *Registry) handleEvent(event fsnotify.Event) {
	if filepath.Ext(event.Name) != ".json" && event.Op&(fsnotify.Create|fsnotify.Remove) == 0 {
		// Ignore writes to non-JSON files; directory create/remove events
		// still matter since a new subdirectory may later hold tasks.
		return
	}

	r.mu.Lock()
	sinceLast := time.Since(r.lastChange)
	if sinceLast < r.debounce {
		r.mu.Unlock()
		return
	}
	r.lastChange = time.Now()
	r.mu.Unlock()

	if err := r.Reload(); err != nil {
		logging.Warn("registry: reload after watch event: %v", err)
	}
}

// rearmWatches installs a watch on every directory reachable by recursion
// from each root, plus every discovered task file, matching §4.G's
// "watching both directories and individual task files".
func (r *Registry) rearmWatches(roots, files []string) {
	r.mu.Lock()
	disabled := r.disabled
	r.mu.Unlock()
	if disabled {
		return
	}

	seen := make(map[string]bool)
	for _, root := range roots {
		_ = walkDir(root, func(path string, isDir bool) {
			if !isDir {
				return
			}
			if seen[path] {
				return
			}
			seen[path] = true
			r.addWatch(path)
		})
	}
	for _, f := range files {
		if seen[f] {
			continue
		}
		seen[f] = true
		r.addWatch(f)
	}
}

func (r *Registry) addWatch(path string) {
	if err := r.watcher.Add(path); err != nil {
		if isWatchLimitError(err) {
			r.mu.Lock()
			if !r.disabled {
				r.disabled = true
				logging.Warn("registry: file watcher limit reached; disabling further watches: %v", err)
			}
			r.mu.Unlock()
			return
		}
		logging.Warn("registry: failed to watch %s: %v", path, err)
	}
}

func isWatchLimitError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, syscall.ENOSPC) || errors.Is(err, syscall.EMFILE) || errors.Is(err, syscall.ENFILE)
}
