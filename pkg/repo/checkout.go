package repo

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/shawnvosburg/DeployUS/pkg/errs"
	"github.com/shawnvosburg/DeployUS/pkg/object"
)

// Checkout moves the working tree from the commit at HEAD to the
// commit named by target. Rather than the original engine's
// remove-everything-then-restore-everything order, it computes the set
// difference between the two commits' flattened trees first: paths
// only the old tree tracks are removed, paths the new tree tracks with
// a different (or absent) digest are (re)written, and paths unchanged
// between the two commits are left untouched. This removes the
// crash-between-steps data-loss window the original has while
// preserving its observable behavior.
func (r *Repo) Checkout(target object.Digest) error {
	if err := mustExist(r); err != nil {
		return err
	}
	if !target.Valid() {
		return errs.New(errs.BadDigestFormat, fmt.Sprintf("checkout: %q is not a 40-char hex digest", target))
	}

	head, err := r.head()
	if err != nil {
		return err
	}
	if head.Empty() {
		return errs.New(errs.BadArgs, "checkout: HEAD is empty, nothing to check out from")
	}

	currentCommit, err := object.LoadCommit(r.Store, head)
	if err != nil {
		return errs.Wrap(errs.UnknownObject, fmt.Sprintf("checkout: load current commit %s", head), err)
	}
	targetCommit, err := object.LoadCommit(r.Store, target)
	if err != nil {
		return errs.Wrap(errs.UnknownObject, fmt.Sprintf("checkout: load target commit %s", target), err)
	}

	currentTree, err := object.LoadTree(r.Store, currentCommit.RootTreeDigest)
	if err != nil {
		return errs.Wrap(errs.UnknownObject, "checkout: load current tree", err)
	}
	targetTree, err := object.LoadTree(r.Store, targetCommit.RootTreeDigest)
	if err != nil {
		return errs.Wrap(errs.UnknownObject, "checkout: load target tree", err)
	}

	currentFiles := currentTree.Flatten()
	targetFiles := targetTree.Flatten()

	for path := range currentFiles {
		if _, stillTracked := targetFiles[path]; !stillTracked {
			abs := filepath.Join(r.RootDir, filepath.FromSlash(path))
			if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
				return errs.Wrap(errs.IOError, fmt.Sprintf("checkout: remove %s", path), err)
			}
			removeEmptyParents(r.RootDir, filepath.Dir(abs))
		}
	}

	for path, digest := range targetFiles {
		if oldDigest, ok := currentFiles[path]; ok && oldDigest == digest {
			continue
		}
		abs := filepath.Join(r.RootDir, filepath.FromSlash(path))
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			return errs.Wrap(errs.IOError, fmt.Sprintf("checkout: mkdir for %s", path), err)
		}
		blob, err := object.LoadBlob(r.Store, digest)
		if err != nil {
			return errs.Wrap(errs.UnknownObject, fmt.Sprintf("checkout: load blob for %s", path), err)
		}
		if err := blob.Restore(abs); err != nil {
			return errs.Wrap(errs.IOError, fmt.Sprintf("checkout: restore %s", path), err)
		}
	}

	indexEntries := make([]IndexEntry, 0, len(targetFiles))
	for path, digest := range targetFiles {
		indexEntries = append(indexEntries, IndexEntry{Path: path, Digest: digest})
	}
	if err := r.writeIndex(indexEntries); err != nil {
		return err
	}

	if err := r.setHead(target); err != nil {
		return err
	}

	latest, err := r.latest()
	if err != nil {
		return err
	}
	if target == latest {
		if err := r.clearTopCommit(); err != nil {
			return err
		}
	} else {
		if err := r.setTopCommit(latest); err != nil {
			return err
		}
	}

	return nil
}

// removeEmptyParents removes dir and any now-empty ancestors, stopping
// at (and never removing) root.
func removeEmptyParents(root, dir string) {
	for {
		if dir == root || len(dir) <= len(root) {
			return
		}
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			return
		}
		if os.Remove(dir) != nil {
			return
		}
		dir = filepath.Dir(dir)
	}
}
