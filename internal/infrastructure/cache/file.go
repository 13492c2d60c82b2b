package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"gopkg.in/yaml.v3"
)

// FileCache is an image cache persisted as a single human-readable document.
// Every Store rewrites the whole file, so a crash loses at most the entry in flight.
type FileCache struct {
	fs     billy.Filesystem
	name   string
	yaml   bool
	logger *slog.Logger

	data  map[string]*string
	mutex sync.RWMutex
}

// OpenFileCache opens (or starts) the cache file at path on the local filesystem
func OpenFileCache(path string, logger *slog.Logger) (*FileCache, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve cache path %s: %w", path, err)
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory %s: %w", dir, err)
	}
	return NewFileCache(osfs.New(dir), filepath.Base(abs), logger), nil
}

// NewFileCache loads the cache document name from fs. A missing or unreadable
// document yields an empty cache; the problem is logged, not returned.
// Files ending in .yaml or .yml are stored as YAML, anything else as JSON.
func NewFileCache(fs billy.Filesystem, name string, logger *slog.Logger) *FileCache {
	ext := strings.ToLower(filepath.Ext(name))
	c := &FileCache{
		fs:     fs,
		name:   name,
		yaml:   ext == ".yaml" || ext == ".yml",
		logger: logger,
		data:   make(map[string]*string),
	}
	c.load()
	return c
}

func (c *FileCache) load() {
	f, err := c.fs.Open(c.name)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			c.logger.Warn("image cache unreadable, starting empty", "file", c.name, "error", err)
		}
		return
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		c.logger.Warn("image cache unreadable, starting empty", "file", c.name, "error", err)
		return
	}

	data := make(map[string]*string)
	if c.yaml {
		err = yaml.Unmarshal(raw, &data)
	} else {
		err = json.Unmarshal(raw, &data)
	}
	if err != nil {
		c.logger.Warn("image cache corrupt, starting empty", "file", c.name, "error", err)
		return
	}
	if data == nil {
		data = make(map[string]*string)
	}

	c.data = data
	c.logger.Info("image cache loaded", "file", c.name, "entries", len(data))
}

// Lookup returns the cached reference for key; hit is false on a miss
func (c *FileCache) Lookup(ctx context.Context, key string) (*string, bool, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	ref, exists := c.data[key]
	if !exists {
		return nil, false, nil
	}
	return copyRef(ref), true, nil
}

// Store records ref under key and rewrites the cache document.
// The entry stays in memory even when the write fails.
func (c *FileCache) Store(ctx context.Context, key string, ref *string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data[key] = copyRef(ref)
	return c.persist()
}

// Len returns the number of entries, negative ones included
func (c *FileCache) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.data)
}

func (c *FileCache) encode() ([]byte, error) {
	if c.yaml {
		return yaml.Marshal(c.data)
	}
	return json.MarshalIndent(c.data, "", "  ")
}

// persist writes to a temp file next to the document and renames it into place
func (c *FileCache) persist() error {
	raw, err := c.encode()
	if err != nil {
		return fmt.Errorf("failed to encode image cache: %w", err)
	}

	tmp, err := c.fs.TempFile(filepath.Dir(c.name), ".image-cache-")
	if err != nil {
		return fmt.Errorf("failed to create temp cache file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		c.fs.Remove(tmpName)
		return fmt.Errorf("failed to write image cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		c.fs.Remove(tmpName)
		return fmt.Errorf("failed to write image cache: %w", err)
	}
	if err := c.fs.Rename(tmpName, c.name); err != nil {
		c.fs.Remove(tmpName)
		return fmt.Errorf("failed to replace image cache %s: %w", c.name, err)
	}
	return nil
}
