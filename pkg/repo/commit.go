package repo

import (
	"fmt"
	"os"
	"strings"

	"github.com/shawnvosburg/DeployUS/pkg/errs"
	"github.com/shawnvosburg/DeployUS/pkg/object"
)

// readDigestFile reads a file holding a bare digest (no trailing
// newline), returning object.Digest("") if the file is absent or
// empty.
func readDigestFile(path string) (object.Digest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", errs.Wrap(errs.IOError, fmt.Sprintf("read %s", path), err)
	}
	return object.Digest(strings.TrimSpace(string(data))), nil
}

// writeDigestFile writes d as the file's entire contents with no
// trailing newline, matching the original engine's raw 40-byte HEAD
// write. An empty d truncates the file to zero bytes.
func writeDigestFile(path string, d object.Digest) error {
	if err := os.WriteFile(path, []byte(d), 0o644); err != nil {
		return errs.Wrap(errs.IOError, fmt.Sprintf("write %s", path), err)
	}
	return nil
}

func (r *Repo) head() (object.Digest, error) { return readDigestFile(r.headPath()) }
func (r *Repo) setHead(d object.Digest) error { return writeDigestFile(r.headPath(), d) }

func (r *Repo) latest() (object.Digest, error) { return readDigestFile(r.latestPath()) }
func (r *Repo) setLatest(d object.Digest) error { return writeDigestFile(r.latestPath(), d) }

func (r *Repo) topCommit() (object.Digest, error) { return readDigestFile(r.topPath()) }

func (r *Repo) clearTopCommit() error {
	if err := os.Remove(r.topPath()); err != nil && !os.IsNotExist(err) {
		return errs.Wrap(errs.IOError, "clear TOPCOMMIT", err)
	}
	return nil
}

func (r *Repo) setTopCommit(d object.Digest) error { return writeDigestFile(r.topPath(), d) }

// Commit builds a commit from the current staging index: the parent's
// root tree (or an empty tree on the first commit) is loaded, every
// staged entry is inserted into it, and the result is stored alongside
// a new Commit object referencing it and the prior HEAD. The index is
// cleared and HEAD advances to the new commit. A non-empty TOPCOMMIT
// (a detached historical checkout) locks out new commits.
func (r *Repo) Commit(message, author string) (object.Digest, error) {
	if err := mustExist(r); err != nil {
		return "", err
	}

	top, err := r.topCommit()
	if err != nil {
		return "", err
	}
	if !top.Empty() {
		return "", errs.New(errs.BadArgs, "commit: HEAD is detached (TOPCOMMIT set); checkout the latest commit before committing")
	}

	entries, err := r.readIndex()
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", errs.New(errs.EmptyIndex, "commit: nothing staged")
	}

	parent, err := r.head()
	if err != nil {
		return "", err
	}

	var tree *object.Tree
	if parent.Empty() {
		tree = object.NewTree()
	} else {
		parentCommit, err := object.LoadCommit(r.Store, parent)
		if err != nil {
			return "", errs.Wrap(errs.UnknownObject, fmt.Sprintf("commit: load parent %s", parent), err)
		}
		tree, err = object.LoadTree(r.Store, parentCommit.RootTreeDigest)
		if err != nil {
			return "", errs.Wrap(errs.UnknownObject, "commit: load parent tree", err)
		}
	}

	for _, e := range entries {
		tree.AddBlob(e.Path, e.Digest)
	}
	tree.Sort()

	rootDigest, err := tree.WriteAllToObjectStore(r.Store)
	if err != nil {
		return "", errs.Wrap(errs.IOError, "commit: write tree", err)
	}

	c := object.NewCommit(rootDigest, author, message, parent)
	commitDigest, err := c.Store(r.Store)
	if err != nil {
		return "", errs.Wrap(errs.IOError, "commit: write commit object", err)
	}

	if err := r.clearIndex(); err != nil {
		return "", err
	}
	if err := r.setHead(commitDigest); err != nil {
		return "", err
	}
	if err := r.setLatest(commitDigest); err != nil {
		return "", err
	}
	if err := r.clearTopCommit(); err != nil {
		return "", err
	}

	return commitDigest, nil
}
