package object

// Kind names what an object's serialized record claims to be: the blob
// envelope's type word, and the tree record format's per-line tag.
type Kind string

const (
	KindBlob   Kind = "blob"
	KindTree   Kind = "tree"
	KindCommit Kind = "commit"
)
