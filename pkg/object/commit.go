package object

import (
	"fmt"
	"strings"
	"time"
)

// Commit references one root tree, zero or one parent commit, plus
// authorship metadata. Instances are immutable once created.
type Commit struct {
	RootTreeDigest Digest
	ParentDigest   Digest // empty if this is the first commit
	Author         string
	Message        string
	Timestamp      string

	digest Digest
	store  *Store // set once loaded/stored, lets RootTree() lazy-load
}

// NewCommit captures the current wall-clock time as the commit's
// timestamp and computes its digest. parent may be empty.
func NewCommit(rootTree Digest, author, message string, parent Digest) *Commit {
	c := &Commit{
		RootTreeDigest: rootTree,
		ParentDigest:   parent,
		Author:         author,
		Message:        message,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
	}
	c.digest = HashBytes(c.serialize())
	return c
}

// serialize renders the fixed-field-order record:
//
//	tree <d>
//	parent <d>
//	author <s>
//	time <s>
//
//	<message>
func (c *Commit) serialize() []byte {
	var buf strings.Builder
	fmt.Fprintf(&buf, "tree %s\n", c.RootTreeDigest)
	fmt.Fprintf(&buf, "parent %s\n", c.ParentDigest)
	fmt.Fprintf(&buf, "author %s\n", c.Author)
	fmt.Fprintf(&buf, "time %s\n", c.Timestamp)
	buf.WriteByte('\n')
	buf.WriteString(c.Message)
	return []byte(buf.String())
}

// Digest returns the commit's content digest.
func (c *Commit) Digest() Digest {
	if c.digest.Empty() {
		c.digest = HashBytes(c.serialize())
	}
	return c.digest
}

// Store puts the commit's serialized record into the object store.
func (c *Commit) Store(store *Store) (Digest, error) {
	d := c.Digest()
	if err := store.Put(d, c.serialize()); err != nil {
		return "", fmt.Errorf("commit: store: %w", err)
	}
	c.store = store
	return d, nil
}

// LoadCommit reads and parses the commit stored at digest d.
func LoadCommit(store *Store, d Digest) (*Commit, error) {
	raw, err := store.Get(d)
	if err != nil {
		return nil, fmt.Errorf("commit: load %s: %w", d, err)
	}
	idx := strings.Index(string(raw), "\n\n")
	if idx < 0 {
		return nil, fmt.Errorf("commit: %s: missing header/message separator", d)
	}
	header := string(raw[:idx])
	message := string(raw[idx+2:])

	c := &Commit{Message: message, digest: d, store: store}
	for _, line := range strings.Split(header, "\n") {
		key, val, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("commit: %s: malformed header line %q", d, line)
		}
		switch key {
		case "tree":
			c.RootTreeDigest = Digest(val)
		case "parent":
			c.ParentDigest = Digest(val)
		case "author":
			c.Author = val
		case "time":
			c.Timestamp = val
		default:
			return nil, fmt.Errorf("commit: %s: unknown header key %q", d, key)
		}
	}
	return c, nil
}

// RootTree lazily loads and returns the commit's root tree.
func (c *Commit) RootTree() (*Tree, error) {
	if c.store == nil {
		return nil, fmt.Errorf("commit: root tree: not bound to a store")
	}
	return LoadTree(c.store, c.RootTreeDigest)
}
