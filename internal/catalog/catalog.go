// Package catalog indexes pattern and agent definitions from a directory of
// YAML files. One document per file; the filename stem is the fallback
// identifier when the document carries no id field.
package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/aetherlight/readygate/internal/logging"
)

// Entry is a single catalog definition.
type Entry struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Tags        []string `yaml:"tags"`
}

// Catalog is an in-memory index over a definition directory. Satisfies both
// engine.PatternCatalog and engine.AgentCatalog.
type Catalog struct {
	mu      sync.RWMutex
	dir     string
	entries map[string]Entry
	log     *logging.Logger
}

// New loads the catalog from dir. A missing directory yields an empty
// catalog rather than an error; definitions may arrive later.
func New(dir string, log *logging.Logger) (*Catalog, error) {
	if log == nil {
		log = logging.NewNop()
	}
	c := &Catalog{
		dir:     dir,
		entries: make(map[string]Entry),
		log:     log.Named("catalog"),
	}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload re-indexes the directory. Unparseable files are skipped with a
// warning so one bad definition cannot empty the catalog.
func (c *Catalog) Reload() error {
	entries := make(map[string]Entry)

	files, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			c.mu.Lock()
			c.entries = entries
			c.mu.Unlock()
			return nil
		}
		return fmt.Errorf("failed to read catalog directory %s: %w", c.dir, err)
	}

	for _, f := range files {
		if f.IsDir() {
			continue
		}
		ext := filepath.Ext(f.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		data, err := os.ReadFile(filepath.Join(c.dir, f.Name()))
		if err != nil {
			c.log.Warn("skipping unreadable catalog file",
				zap.String("file", f.Name()), zap.Error(err))
			continue
		}

		var entry Entry
		if err := yaml.Unmarshal(data, &entry); err != nil {
			c.log.Warn("skipping malformed catalog file",
				zap.String("file", f.Name()), zap.Error(err))
			continue
		}
		if entry.ID == "" {
			entry.ID = strings.TrimSuffix(f.Name(), ext)
		}
		entries[entry.ID] = entry
	}

	c.mu.Lock()
	c.entries = entries
	c.mu.Unlock()

	c.log.Debug("catalog indexed",
		zap.String("dir", c.dir), zap.Int("entries", len(entries)))
	return nil
}

// Exists reports whether id resolves in the catalog.
func (c *Catalog) Exists(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[id]
	return ok
}

// Get returns the entry for id.
func (c *Catalog) Get(id string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[id]
	return e, ok
}

// Len returns the number of indexed entries.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Watch re-indexes the catalog whenever the directory changes, until ctx is
// cancelled. Blocks; run it on its own goroutine.
func (c *Catalog) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(c.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", c.dir, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if err := c.Reload(); err != nil {
				c.log.Warn("catalog reload failed", zap.Error(err))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			c.log.Warn("catalog watcher error", zap.Error(err))
		}
	}
}
