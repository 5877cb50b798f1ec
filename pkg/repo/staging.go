package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shawnvosburg/DeployUS/pkg/errs"
	"github.com/shawnvosburg/DeployUS/pkg/object"
)

// IndexEntry is one staged (working path, blob digest) record.
type IndexEntry struct {
	Path   string
	Digest object.Digest
}

// readIndex loads and parses the index file. A missing index reads as
// empty, matching the spec's "internal recoverable conditions are
// mapped to empty state, not errors" rule.
func (r *Repo) readIndex() ([]IndexEntry, error) {
	data, err := os.ReadFile(r.indexPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errs.Wrap(errs.IOError, "read index", err)
	}
	return parseIndex(data), nil
}

// parseIndex splits the index's on-disk bytes into entries: records
// separated by \n, with path and digest inside a record separated by
// \0.
func parseIndex(data []byte) []IndexEntry {
	text := strings.TrimRight(string(data), "\n")
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	entries := make([]IndexEntry, 0, len(lines))
	for _, line := range lines {
		path, digest, ok := strings.Cut(line, "\x00")
		if !ok {
			continue
		}
		entries = append(entries, IndexEntry{Path: path, Digest: object.Digest(digest)})
	}
	return entries
}

// serializeIndex renders entries back to the on-disk format.
func serializeIndex(entries []IndexEntry) []byte {
	var buf strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&buf, "%s\x00%s\n", e.Path, e.Digest)
	}
	return []byte(buf.String())
}

func (r *Repo) writeIndex(entries []IndexEntry) error {
	if err := os.WriteFile(r.indexPath(), serializeIndex(entries), 0o644); err != nil {
		return errs.Wrap(errs.IOError, "write index", err)
	}
	return nil
}

// clearIndex truncates the index to zero bytes.
func (r *Repo) clearIndex() error {
	if err := os.WriteFile(r.indexPath(), nil, 0o644); err != nil {
		return errs.Wrap(errs.IOError, "clear index", err)
	}
	return nil
}

// Add stages path: it must exist, be a regular file, and not already
// be staged. The file's contents are hashed and stored as a blob
// before the index entry is appended. path may be absolute or relative
// to the current directory; the index always records it relative to
// the repository root (forward-slash separated), since that relative
// form is also the tree path Commit and Checkout build and flatten.
func (r *Repo) Add(path string) error {
	if err := mustExist(r); err != nil {
		return err
	}

	relPath, absPath, err := r.relativize(path)
	if err != nil {
		return err
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return errs.Wrap(errs.MissingPath, fmt.Sprintf("add: %s does not exist", path), err)
	}
	if info.IsDir() {
		return errs.New(errs.MissingPath, fmt.Sprintf("add: %s is a directory, not a file", path))
	}

	entries, err := r.readIndex()
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.Path == relPath {
			return errs.New(errs.DuplicateStage, fmt.Sprintf("add: %s is already staged", path))
		}
	}

	blob, err := object.FromWorkingFile(absPath)
	if err != nil {
		return errs.Wrap(errs.IOError, fmt.Sprintf("add: read %s", path), err)
	}
	digest, err := blob.Store(r.Store)
	if err != nil {
		return errs.Wrap(errs.IOError, fmt.Sprintf("add: store blob for %s", path), err)
	}

	entries = append(entries, IndexEntry{Path: relPath, Digest: digest})
	return r.writeIndex(entries)
}

// relativize resolves path (absolute or relative to the process's
// working directory) against the repository root, returning both the
// forward-slash path relative to RootDir and the absolute path on disk.
func (r *Repo) relativize(path string) (relPath, absPath string, err error) {
	absPath, err = filepath.Abs(path)
	if err != nil {
		return "", "", errs.Wrap(errs.IOError, fmt.Sprintf("add: resolve %s", path), err)
	}
	absRoot, err := filepath.Abs(r.RootDir)
	if err != nil {
		return "", "", errs.Wrap(errs.IOError, fmt.Sprintf("add: resolve repository root %s", r.RootDir), err)
	}
	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", "", errs.New(errs.MissingPath, fmt.Sprintf("add: %s is outside the repository", path))
	}
	return filepath.ToSlash(rel), absPath, nil
}
