// Package repo implements gitus's repository operations: init, add,
// commit, and checkout, layered over the content-addressed object
// store and tree/commit model in pkg/object.
package repo

import (
	"path/filepath"

	"github.com/shawnvosburg/DeployUS/pkg/object"
)

// Layout of files inside a repository's .git directory.
const (
	gitDirName     = ".git"
	objectsDirName = "objects"
	indexFileName  = "index"
	headFileName   = "HEAD"
	latestFileName = "LATEST"
	topCommitName  = "TOPCOMMIT"
)

// Repo is an opened gitus repository rooted at RootDir.
type Repo struct {
	RootDir string
	GitDir  string
	Store   *object.Store
}

// Open returns a Repo rooted at dir, assuming dir/.git already exists.
// It does not search parent directories — the spec's Design Notes call
// for the repo root to be passed in explicitly rather than discovered
// from a process-wide working directory.
func Open(dir string) *Repo {
	gitDir := filepath.Join(dir, gitDirName)
	return &Repo{
		RootDir: dir,
		GitDir:  gitDir,
		Store:   object.NewStore(filepath.Join(gitDir, objectsDirName)),
	}
}

func (r *Repo) indexPath() string  { return filepath.Join(r.GitDir, indexFileName) }
func (r *Repo) headPath() string   { return filepath.Join(r.GitDir, headFileName) }
func (r *Repo) latestPath() string { return filepath.Join(r.GitDir, latestFileName) }
func (r *Repo) topPath() string    { return filepath.Join(r.GitDir, topCommitName) }
