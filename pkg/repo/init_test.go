package repo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shawnvosburg/DeployUS/pkg/errs"
)

func TestInit_CreatesStructure(t *testing.T) {
	dir := t.TempDir()

	r, err := Init(dir)
	if err != nil {
		t.Fatalf("Init(%q): %v", dir, err)
	}
	if r.RootDir != dir {
		t.Errorf("RootDir = %q, want %q", r.RootDir, dir)
	}

	assertDir(t, r.GitDir)
	assertFile(t, filepath.Join(r.GitDir, "HEAD"))
	assertFile(t, filepath.Join(r.GitDir, "index"))
	assertDir(t, r.Store.Root())

	if r.Store == nil {
		t.Error("Store is nil after Init")
	}
}

func TestInit_ExistingRepo_Error(t *testing.T) {
	dir := t.TempDir()

	if _, err := Init(dir); err != nil {
		t.Fatalf("first Init: %v", err)
	}

	_, err := Init(dir)
	if err == nil {
		t.Fatal("second Init should fail on existing repo, got nil error")
	}
	if kind, ok := errs.KindOf(err); !ok || kind != errs.AlreadyInitialized {
		t.Errorf("Init on existing repo: kind = %v, want %v", kind, errs.AlreadyInitialized)
	}
}

func TestInit_HeadStartsEmpty(t *testing.T) {
	dir := t.TempDir()

	r, err := Init(dir)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	head, err := r.head()
	if err != nil {
		t.Fatalf("head(): %v", err)
	}
	if head != "" {
		t.Errorf("head() = %q, want empty", head)
	}
}

func TestAdd_NotInitialized_Error(t *testing.T) {
	dir := t.TempDir()
	r := Open(dir)

	if err := os.WriteFile(filepath.Join(dir, "x.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	err := r.Add(filepath.Join(dir, "x.txt"))
	if err == nil {
		t.Fatal("Add on uninitialized repo should fail")
	}
	if kind, ok := errs.KindOf(err); !ok || kind != errs.NotInitialized {
		t.Errorf("Add on uninitialized repo: kind = %v, want %v", kind, errs.NotInitialized)
	}
}

func assertDir(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Errorf("expected directory %q to exist: %v", path, err)
		return
	}
	if !info.IsDir() {
		t.Errorf("%q exists but is not a directory", path)
	}
}

func assertFile(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Errorf("expected file %q to exist: %v", path, err)
		return
	}
	if info.IsDir() {
		t.Errorf("%q exists but is a directory, expected file", path)
	}
}
