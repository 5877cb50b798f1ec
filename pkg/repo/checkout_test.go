package repo

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCheckout_OlderCommit_RemovesNewerFiles(t *testing.T) {
	r, main := initRepoWithFile(t, "testfolder1/letters.txt", []byte("abcdef\n"))

	c1, err := r.Commit("first", "author")
	if err != nil {
		t.Fatalf("Commit c1: %v", err)
	}

	other := filepath.Join(r.RootDir, "testfolder1", "testfolder2", "a.txt")
	if err := os.MkdirAll(filepath.Dir(other), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(other, []byte("a\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := r.Add(other); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := r.Commit("second", "author"); err != nil {
		t.Fatalf("Commit c2: %v", err)
	}

	if err := r.Checkout(c1); err != nil {
		t.Fatalf("Checkout(c1): %v", err)
	}

	if _, err := os.Stat(main); err != nil {
		t.Errorf("expected %s to remain after checkout: %v", main, err)
	}
	if _, err := os.Stat(other); !os.IsNotExist(err) {
		t.Errorf("expected %s to be removed after checkout, stat err=%v", other, err)
	}

	top, err := r.topCommit()
	if err != nil {
		t.Fatalf("topCommit: %v", err)
	}
	if top.Empty() {
		t.Error("TOPCOMMIT should be set after checking out a non-latest commit")
	}
}

func TestCheckout_BackToLatest_ClearsTopCommit(t *testing.T) {
	r, main := initRepoWithFile(t, "main.go", []byte("package main\n"))

	c1, err := r.Commit("first", "author")
	if err != nil {
		t.Fatalf("Commit c1: %v", err)
	}

	if err := os.WriteFile(main, []byte("package main\n\nfunc f() {}\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := r.Add(main); err != nil {
		t.Fatalf("Add: %v", err)
	}
	c2, err := r.Commit("second", "author")
	if err != nil {
		t.Fatalf("Commit c2: %v", err)
	}

	if err := r.Checkout(c1); err != nil {
		t.Fatalf("Checkout(c1): %v", err)
	}
	if err := r.Checkout(c2); err != nil {
		t.Fatalf("Checkout(c2): %v", err)
	}

	top, err := r.topCommit()
	if err != nil {
		t.Fatalf("topCommit: %v", err)
	}
	if !top.Empty() {
		t.Errorf("TOPCOMMIT = %q, want empty after checking out the latest commit", top)
	}
}

func TestCheckout_UnchangedFileLeftUntouched(t *testing.T) {
	r, shared := initRepoWithFile(t, "shared.txt", []byte("shared\n"))

	c1, err := r.Commit("first", "author")
	if err != nil {
		t.Fatalf("Commit c1: %v", err)
	}

	other := filepath.Join(r.RootDir, "other.txt")
	if err := os.WriteFile(other, []byte("other\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := r.Add(other); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := r.Commit("second", "author"); err != nil {
		t.Fatalf("Commit c2: %v", err)
	}

	before, err := os.Stat(shared)
	if err != nil {
		t.Fatalf("stat shared: %v", err)
	}

	if err := r.Checkout(c1); err != nil {
		t.Fatalf("Checkout(c1): %v", err)
	}

	after, err := os.Stat(shared)
	if err != nil {
		t.Fatalf("stat shared after checkout: %v", err)
	}
	if before.ModTime() != after.ModTime() {
		t.Error("unchanged file should not be rewritten by checkout")
	}
}

func TestCheckout_BadDigest_Error(t *testing.T) {
	r, _ := initRepoWithFile(t, "main.go", []byte("package main\n"))
	if _, err := r.Commit("first", "author"); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if err := r.Checkout("not-a-digest"); err == nil {
		t.Fatal("Checkout with malformed digest should fail")
	}
}
