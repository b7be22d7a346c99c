/*
	Package objstore declares the object-store contract that the rest of
	gitjfs treats as an opaque collaborator (spec §6). It knows nothing about
	logical paths, follow policies, or file-system semantics: it is exactly
	the set of primitive, ID-addressed reads a Git object database offers.

	The only implementation shipped in this module is `objstore/gogit`, built
	on `gopkg.in/src-d/go-git.v4`. Tests may supply a fake that satisfies
	`Store` directly.
*/
package objstore

import (
	"io"
	"time"
)

// ID is a 20-byte SHA-1 object id: a commit, tree, or blob.
type ID [20]byte

// ZeroID is the all-zero id, never a valid object.
var ZeroID ID

func (id ID) String() string {
	const hex = "0123456789abcdef"
	buf := make([]byte, 40)
	for i, b := range id {
		buf[i*2] = hex[b>>4]
		buf[i*2+1] = hex[b&0xf]
	}
	return string(buf)
}

func (id ID) IsZero() bool {
	return id == ZeroID
}

// Mode is the kind of a tree entry, collapsing Git's file-mode bits down to
// the five kinds spec §3 cares about.
type Mode int

const (
	ModeTree Mode = iota
	ModeRegularFile
	ModeExecutable
	ModeSymlink
	ModeGitlink
)

func (m Mode) String() string {
	switch m {
	case ModeTree:
		return "tree"
	case ModeRegularFile:
		return "regular_file"
	case ModeExecutable:
		return "executable"
	case ModeSymlink:
		return "symlink"
	case ModeGitlink:
		return "gitlink"
	default:
		return "unknown"
	}
}

// Entry is one direct child of a tree, as yielded by TreeIterator.
type Entry struct {
	Name string
	ID   ID
	Mode Mode
}

// Signature is a commit's author or committer stamp. When carries its
// original UTC offset (see SPEC_FULL.md §12.5): do not normalize it to UTC
// when threading it through to commitgraph.Node.
type Signature struct {
	Name  string
	Email string
	When  time.Time
}

// CommitInfo is the parsed form of a commit object.
type CommitInfo struct {
	ID        ID
	TreeID    ID
	Parents   []ID
	Author    Signature
	Committer Signature
}

// ChangeType is the kind of a single tree-diff entry, per spec §6.
type ChangeType int

const (
	ChangeAdd ChangeType = iota
	ChangeDelete
	ChangeModify
	ChangeRename
	ChangeCopy
)

func (c ChangeType) String() string {
	switch c {
	case ChangeAdd:
		return "add"
	case ChangeDelete:
		return "delete"
	case ChangeModify:
		return "modify"
	case ChangeRename:
		return "rename"
	case ChangeCopy:
		return "copy"
	default:
		return "unknown"
	}
}

// Change is one entry of a tree-to-tree diff.
type Change struct {
	Type    ChangeType
	OldPath string // empty unless Type is Delete, Modify, Rename, or Copy
	NewPath string // empty unless Type is Add, Modify, Rename, or Copy
}

// TreeIterator yields the direct children of a single tree, in the tree's
// native (name-sorted) order. Next returns io.EOF once exhausted. A
// TreeIterator must be closed after use.
type TreeIterator interface {
	Next() (Entry, error)
	Close() error
}

// Store is the full set of primitive operations gitjfs needs from a Git
// object database. Every method may be called concurrently from multiple
// goroutines for read operations; implementations must serialize access to
// any single underlying handle that is not inherently concurrency-safe.
type Store interface {
	// OpenBlob streams a blob's bytes. The caller must close the reader.
	OpenBlob(id ID) (io.ReadCloser, error)
	// BlobSize returns a blob's length without reading its bytes.
	BlobSize(id ID) (int64, error)
	// Commit parses a commit object.
	Commit(id ID) (CommitInfo, error)
	// TreeEntries opens an iterator over a tree's direct children.
	TreeEntries(id ID) (TreeIterator, error)
	// ResolveRef looks up a ref's current target commit id. The second
	// return is false if no such ref exists; symbolic refs (HEAD) are
	// explicitly out of scope and are reported as not found.
	ResolveRef(name string) (ID, bool, error)
	// ListRefs enumerates every direct (non-symbolic) ref name under the
	// given prefix, e.g. "refs/".
	ListRefs(prefix string) ([]string, error)
	// Diff computes the ordered set of changes between two commits' trees.
	Diff(a, b ID) ([]Change, error)
	// Close releases any resources (file handles, caches) held by the
	// store. It must be safe to call even if other methods are still
	// in-flight on other goroutines only in the sense that it will not
	// corrupt store state; callers are responsible for not racing reads
	// against Close on the same instance.
	Close() error
}
