package object

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LeafEntry is a tracked file directly under a Tree: a (filename, blob
// digest) pair.
type LeafEntry struct {
	Name string
	Blob Digest
}

// Tree is an ordered directory node: named sub-trees plus a sorted list
// of blob leaves. The zero value is an empty tree.
type Tree struct {
	branches map[string]*Tree
	leaves   []LeafEntry
}

// NewTree returns an empty Tree.
func NewTree() *Tree {
	return &Tree{branches: make(map[string]*Tree)}
}

// sortedBranchNames returns the branch map's keys in lexicographic
// order — branches are "already sorted" per spec because the
// container is logically keyed, so callers always walk it this way.
func (t *Tree) sortedBranchNames() []string {
	names := make([]string, 0, len(t.branches))
	for name := range t.branches {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AddBlob stages a (path, blob digest) pair into the tree, creating
// intermediate sub-trees as needed. path uses forward slashes.
func (t *Tree) AddBlob(path string, blob Digest) {
	if t.branches == nil {
		t.branches = make(map[string]*Tree)
	}
	first, rest, nested := strings.Cut(path, "/")
	if !nested {
		t.leaves = append(t.leaves, LeafEntry{Name: first, Blob: blob})
		return
	}
	sub, ok := t.branches[first]
	if !ok {
		sub = NewTree()
		t.branches[first] = sub
	}
	sub.AddBlob(rest, blob)
}

// Sort orders leaves lexicographically by name. Branches need no
// sorting: sortedBranchNames always walks the map in key order.
func (t *Tree) Sort() {
	sort.Slice(t.leaves, func(i, j int) bool { return t.leaves[i].Name < t.leaves[j].Name })
	for _, name := range t.sortedBranchNames() {
		t.branches[name].Sort()
	}
}

// Digest recursively computes sub-tree digests first, then hashes the
// concatenation (in sorted-branch-then-sorted-leaf order) of
// "name || digest" for every child. This mirrors the original engine's
// GitTree::generateHash exactly: the hash input is the bare
// concatenation, not the record-format bytes Serialize produces.
func (t *Tree) Digest() Digest {
	var buf strings.Builder
	for _, name := range t.sortedBranchNames() {
		sub := t.branches[name]
		buf.WriteString(name)
		buf.WriteString(string(sub.Digest()))
	}
	for _, leaf := range t.leaves {
		buf.WriteString(leaf.Name)
		buf.WriteString(string(leaf.Blob))
	}
	return HashBytes([]byte(buf.String()))
}

// Serialize renders the on-disk record format: one line per child,
// "kind\0digest\0name\n", branches first then leaves, both in sorted
// order.
func (t *Tree) Serialize() []byte {
	var buf strings.Builder
	for _, name := range t.sortedBranchNames() {
		sub := t.branches[name]
		fmt.Fprintf(&buf, "%s\x00%s\x00%s\n", KindTree, sub.Digest(), name)
	}
	for _, leaf := range t.leaves {
		fmt.Fprintf(&buf, "%s\x00%s\x00%s\n", KindBlob, leaf.Blob, leaf.Name)
	}
	return []byte(buf.String())
}

// WriteAllToObjectStore recursively stores every sub-tree, then stores
// this tree's own serialized record, returning its digest.
func (t *Tree) WriteAllToObjectStore(store *Store) (Digest, error) {
	for _, name := range t.sortedBranchNames() {
		if _, err := t.branches[name].WriteAllToObjectStore(store); err != nil {
			return "", fmt.Errorf("tree: write subtree %q: %w", name, err)
		}
	}
	d := t.Digest()
	if err := store.Put(d, t.Serialize()); err != nil {
		return "", fmt.Errorf("tree: write: %w", err)
	}
	return d, nil
}

// LoadTree reads and recursively parses the tree stored at digest d.
func LoadTree(store *Store, d Digest) (*Tree, error) {
	if d.Empty() {
		return NewTree(), nil
	}
	raw, err := store.Get(d)
	if err != nil {
		return nil, fmt.Errorf("tree: load %s: %w", d, err)
	}
	t := NewTree()
	text := strings.TrimRight(string(raw), "\n")
	if text == "" {
		return t, nil
	}
	for _, line := range strings.Split(text, "\n") {
		parts := strings.SplitN(line, "\x00", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("tree: %s: malformed record %q", d, line)
		}
		kind, digest, name := parts[0], Digest(parts[1]), parts[2]
		switch Kind(kind) {
		case KindBlob:
			t.leaves = append(t.leaves, LeafEntry{Name: name, Blob: digest})
		case KindTree:
			sub, err := LoadTree(store, digest)
			if err != nil {
				return nil, fmt.Errorf("tree: %s: load subtree %q: %w", d, name, err)
			}
			t.branches[name] = sub
		default:
			return nil, fmt.Errorf("tree: %s: unknown record kind %q", d, kind)
		}
	}
	return t, nil
}

// RemoveTracked deletes every file this tree (and its sub-trees) track
// under parentDir. Sub-directories that become empty are removed;
// directories still holding untracked files are left alone.
func (t *Tree) RemoveTracked(parentDir string) error {
	for _, name := range t.sortedBranchNames() {
		childDir := filepath.Join(parentDir, name)
		if err := t.branches[name].RemoveTracked(childDir); err != nil {
			return err
		}
		entries, err := os.ReadDir(childDir)
		if err == nil && len(entries) == 0 {
			if err := os.Remove(childDir); err != nil {
				return fmt.Errorf("tree: remove empty dir %s: %w", childDir, err)
			}
		}
	}
	for _, leaf := range t.leaves {
		path := filepath.Join(parentDir, leaf.Name)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("tree: remove %s: %w", path, err)
		}
	}
	return nil
}

// RestoreTracked writes every file this tree (and its sub-trees) track
// into parentDir, creating directories as needed and loading each
// leaf's blob from store.
func (t *Tree) RestoreTracked(store *Store, parentDir string) error {
	for _, name := range t.sortedBranchNames() {
		childDir := filepath.Join(parentDir, name)
		if err := os.MkdirAll(childDir, 0o755); err != nil {
			return fmt.Errorf("tree: mkdir %s: %w", childDir, err)
		}
		if err := t.branches[name].RestoreTracked(store, childDir); err != nil {
			return err
		}
	}
	for _, leaf := range t.leaves {
		blob, err := LoadBlob(store, leaf.Blob)
		if err != nil {
			return fmt.Errorf("tree: restore %s: %w", leaf.Name, err)
		}
		if err := blob.Restore(filepath.Join(parentDir, leaf.Name)); err != nil {
			return err
		}
	}
	return nil
}

// Flatten returns every tracked file under this tree as a map from
// forward-slash working path (relative to the tree root) to blob
// digest. Used by checkout to compute safe set differences between two
// commits' trees.
func (t *Tree) Flatten() map[string]Digest {
	out := make(map[string]Digest)
	t.flattenInto(out, "")
	return out
}

func (t *Tree) flattenInto(out map[string]Digest, prefix string) {
	for _, leaf := range t.leaves {
		out[joinTreePath(prefix, leaf.Name)] = leaf.Blob
	}
	for _, name := range t.sortedBranchNames() {
		t.branches[name].flattenInto(out, joinTreePath(prefix, name))
	}
}

func joinTreePath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}
