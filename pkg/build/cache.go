// Package build implements buildus's hash-gated incremental compile
// cache, the external-compiler invocation, and the link decision
// engine.
package build

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shawnvosburg/DeployUS/pkg/errs"
	"github.com/shawnvosburg/DeployUS/pkg/object"
)

const (
	cacheDirName     = ".buildus_cache"
	compileCacheName = "compile.cache"
	projectCacheName = "project.cache"
)

// CompileCacheEntry records the source digest last seen for one
// (output, source) compile unit.
type CompileCacheEntry struct {
	OutputPath string
	SourcePath string
	Digest     object.Digest
}

// ProjectCacheRecord is the single-line record of the executable path
// and config digest that the previous successful link produced.
type ProjectCacheRecord struct {
	ExecutablePath string
	ConfigDigest   object.Digest
}

// Cache is the on-disk state in <root>/.buildus_cache that makes
// recompilation and relinking incremental.
type Cache struct {
	root    string
	entries []CompileCacheEntry
}

// CacheDir returns the intermediate-object directory beneath root.
func CacheDir(root string) string { return filepath.Join(root, cacheDirName) }

func compileCachePath(root string) string { return filepath.Join(CacheDir(root), compileCacheName) }
func projectCachePath(root string) string { return filepath.Join(CacheDir(root), projectCacheName) }

// Load reads the compile cache from disk if the intermediate folder
// exists; a missing cache file or folder is not an error — it reads as
// empty, matching BuildUSCache's constructor behavior.
func Load(root string) (*Cache, error) {
	c := &Cache{root: root}
	data, err := os.ReadFile(compileCachePath(root))
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, errs.Wrap(errs.IOError, "build: read compile cache", err)
	}
	c.entries = parseCompileCache(data)
	return c, nil
}

func parseCompileCache(data []byte) []CompileCacheEntry {
	text := strings.TrimRight(string(data), "\n")
	if text == "" {
		return nil
	}
	var entries []CompileCacheEntry
	for _, line := range strings.Split(text, "\n") {
		parts := strings.SplitN(line, "\x00", 3)
		if len(parts) != 3 {
			continue
		}
		entries = append(entries, CompileCacheEntry{
			OutputPath: parts[0],
			SourcePath: parts[1],
			Digest:     object.Digest(parts[2]),
		})
	}
	return entries
}

func serializeCompileCache(entries []CompileCacheEntry) []byte {
	var buf strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&buf, "%s\x00%s\x00%s\n", e.OutputPath, e.SourcePath, e.Digest)
	}
	return []byte(buf.String())
}

// persist flushes the in-memory entry list to disk, creating the
// intermediate folder if needed.
func (c *Cache) persist() error {
	if err := os.MkdirAll(CacheDir(c.root), 0o755); err != nil {
		return errs.Wrap(errs.IOError, "build: create cache dir", err)
	}
	if err := os.WriteFile(compileCachePath(c.root), serializeCompileCache(c.entries), 0o644); err != nil {
		return errs.Wrap(errs.IOError, "build: write compile cache", err)
	}
	return nil
}

// Has reports whether entry (output, source, digest) is already
// recorded, meaning the source has not changed since its last
// successful compile.
func (c *Cache) Has(outputPath, sourcePath string, digest object.Digest) bool {
	for _, e := range c.entries {
		if e.OutputPath == outputPath && e.SourcePath == sourcePath && e.Digest == digest {
			return true
		}
	}
	return false
}

// Record appends a freshly compiled unit's cache entry and persists
// the cache to disk immediately, so a later compile failure in the
// same batch does not lose already-recorded successes.
func (c *Cache) Record(outputPath, sourcePath string, digest object.Digest) error {
	c.entries = append(c.entries, CompileCacheEntry{OutputPath: outputPath, SourcePath: sourcePath, Digest: digest})
	return c.persist()
}

// ProjectRecord reads the project cache's single line, returning a
// zero-value record if the file is absent.
func (c *Cache) ProjectRecord() (ProjectCacheRecord, error) {
	data, err := os.ReadFile(projectCachePath(c.root))
	if err != nil {
		if os.IsNotExist(err) {
			return ProjectCacheRecord{}, nil
		}
		return ProjectCacheRecord{}, errs.Wrap(errs.IOError, "build: read project cache", err)
	}
	path, digest, _ := strings.Cut(strings.TrimRight(string(data), "\n"), "\x00")
	return ProjectCacheRecord{ExecutablePath: path, ConfigDigest: object.Digest(digest)}, nil
}

// WriteProjectRecord persists the executable path and config digest
// produced by a successful link.
func (c *Cache) WriteProjectRecord(rec ProjectCacheRecord) error {
	if err := os.MkdirAll(CacheDir(c.root), 0o755); err != nil {
		return errs.Wrap(errs.IOError, "build: create cache dir", err)
	}
	line := fmt.Sprintf("%s\x00%s", rec.ExecutablePath, rec.ConfigDigest)
	if err := os.WriteFile(projectCachePath(c.root), []byte(line), 0o644); err != nil {
		return errs.Wrap(errs.IOError, "build: write project cache", err)
	}
	return nil
}
