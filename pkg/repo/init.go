package repo

import (
	"fmt"
	"os"

	"github.com/shawnvosburg/DeployUS/pkg/errs"
)

// Init creates a new gitus repository rooted at dir: the .git
// directory, its objects/ sub-directory, an empty index, and an empty
// HEAD file. It fails with errs.AlreadyInitialized if dir/.git exists.
func Init(dir string) (*Repo, error) {
	r := Open(dir)

	if _, err := os.Stat(r.GitDir); err == nil {
		return nil, errs.New(errs.AlreadyInitialized, fmt.Sprintf("repository already initialized at %s", r.GitDir))
	}

	if err := os.MkdirAll(r.Store.Root(), 0o755); err != nil {
		return nil, errs.Wrap(errs.IOError, "init: create object store", err)
	}
	if err := os.WriteFile(r.indexPath(), nil, 0o644); err != nil {
		return nil, errs.Wrap(errs.IOError, "init: create index", err)
	}
	if err := os.WriteFile(r.headPath(), nil, 0o644); err != nil {
		return nil, errs.Wrap(errs.IOError, "init: create HEAD", err)
	}
	return r, nil
}

// mustExist returns errs.NotInitialized if dir/.git is absent.
func mustExist(r *Repo) error {
	if _, err := os.Stat(r.GitDir); err != nil {
		return errs.New(errs.NotInitialized, fmt.Sprintf("no gitus repository at %s", r.GitDir))
	}
	return nil
}
