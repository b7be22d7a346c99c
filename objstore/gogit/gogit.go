/*
	Package gogit implements objstore.Store on top of
	gopkg.in/src-d/go-git.v4, the object-database library the teacher repo
	(go.polydawn.net/rio) already depends on for its git warehouse and
	transmat (see rio/warehouse/impl/git and rio/transmat/git).

	Two constructors cover the two registry authorities of spec §4.8:
	NewOnDisk for a FILE-backed instance, NewFromStorer for a DFS-backed one
	(typically a storage/memory.Storage populated by test fixtures or by an
	embedder that already holds a storage.Storer).
*/
package gogit

import (
	"io"

	"github.com/warpfork/go-errcat"
	"gopkg.in/src-d/go-billy.v4/osfs"
	"gopkg.in/src-d/go-git.v4/plumbing"
	"gopkg.in/src-d/go-git.v4/plumbing/cache"
	"gopkg.in/src-d/go-git.v4/plumbing/filemode"
	"gopkg.in/src-d/go-git.v4/plumbing/object"
	"gopkg.in/src-d/go-git.v4/storage"
	"gopkg.in/src-d/go-git.v4/storage/filesystem"
	"gopkg.in/src-d/go-git.v4/utils/merkletrie"

	"go.polydawn.net/gitjfs/gerr"
	"go.polydawn.net/gitjfs/objstore"
)

type store struct {
	storer storage.Storer
}

// NewOnDisk opens the repository rooted at gitDir (a ".git" directory, or a
// bare repository directory) and returns a Store backed by it. It does not
// clone or fetch; the directory must already contain the objects of
// interest, exactly like the teacher's SetCacheStorage opening a local
// repository directly ("if we are pulling from a local repository then no
// cache is needed at all! Just use the repo itself.").
func NewOnDisk(gitDir string) (objstore.Store, error) {
	fs := osfs.New(gitDir)
	st := filesystem.NewStorage(fs, cache.NewObjectLRUDefault())
	return &store{storer: st}, nil
}

// NewFromStorer wraps an already-open go-git storer (e.g. storage/memory's,
// populated by an embedder or test fixture) as a Store.
func NewFromStorer(st storage.Storer) objstore.Store {
	return &store{storer: st}
}

func (s *store) OpenBlob(id objstore.ID) (io.ReadCloser, error) {
	blob, err := object.GetBlob(s.storer, plumbing.Hash(id))
	if err != nil {
		return nil, translate(err, id)
	}
	r, err := blob.Reader()
	if err != nil {
		return nil, errcat.Errorf(gerr.IO, "gitjfs: could not read blob %s: %s", id, err)
	}
	return r, nil
}

func (s *store) BlobSize(id objstore.ID) (int64, error) {
	blob, err := object.GetBlob(s.storer, plumbing.Hash(id))
	if err != nil {
		return 0, translate(err, id)
	}
	return blob.Size, nil
}

func (s *store) Commit(id objstore.ID) (objstore.CommitInfo, error) {
	commit, err := object.GetCommit(s.storer, plumbing.Hash(id))
	if err != nil {
		return objstore.CommitInfo{}, translate(err, id)
	}
	parents := make([]objstore.ID, len(commit.ParentHashes))
	for i, h := range commit.ParentHashes {
		parents[i] = objstore.ID(h)
	}
	return objstore.CommitInfo{
		ID:      objstore.ID(commit.Hash),
		TreeID:  objstore.ID(commit.TreeHash),
		Parents: parents,
		Author: objstore.Signature{
			Name: commit.Author.Name, Email: commit.Author.Email, When: commit.Author.When,
		},
		Committer: objstore.Signature{
			Name: commit.Committer.Name, Email: commit.Committer.Email, When: commit.Committer.When,
		},
	}, nil
}

func (s *store) TreeEntries(id objstore.ID) (objstore.TreeIterator, error) {
	tree, err := object.GetTree(s.storer, plumbing.Hash(id))
	if err != nil {
		return nil, translate(err, id)
	}
	return &treeIterator{entries: tree.Entries}, nil
}

type treeIterator struct {
	entries []object.TreeEntry
	pos     int
}

func (it *treeIterator) Next() (objstore.Entry, error) {
	if it.pos >= len(it.entries) {
		return objstore.Entry{}, io.EOF
	}
	e := it.entries[it.pos]
	it.pos++
	return objstore.Entry{Name: e.Name, ID: objstore.ID(e.Hash), Mode: convertMode(e.Mode)}, nil
}

func (it *treeIterator) Close() error {
	it.entries = nil
	return nil
}

func convertMode(m filemode.FileMode) objstore.Mode {
	switch m {
	case filemode.Dir:
		return objstore.ModeTree
	case filemode.Executable:
		return objstore.ModeExecutable
	case filemode.Symlink:
		return objstore.ModeSymlink
	case filemode.Submodule:
		return objstore.ModeGitlink
	default:
		// filemode.Regular and the deprecated/empty modes alike: treat as
		// a plain file rather than panicking, since a corrupt or unusual
		// tree entry shouldn't take the whole walk down.
		return objstore.ModeRegularFile
	}
}

func (s *store) ResolveRef(name string) (objstore.ID, bool, error) {
	ref, err := s.storer.Reference(plumbing.ReferenceName(name))
	if err == plumbing.ErrReferenceNotFound {
		return objstore.ID{}, false, nil
	}
	if err != nil {
		return objstore.ID{}, false, errcat.Errorf(gerr.IO, "gitjfs: could not resolve ref %q: %s", name, err)
	}
	if ref.Type() != plumbing.HashReference {
		// Symbolic refs (HEAD and the like) are out of scope, per spec §1.
		return objstore.ID{}, false, nil
	}
	return objstore.ID(ref.Hash()), true, nil
}

func (s *store) ListRefs(prefix string) ([]string, error) {
	iter, err := s.storer.IterReferences()
	if err != nil {
		return nil, errcat.Errorf(gerr.IO, "gitjfs: could not list refs: %s", err)
	}
	defer iter.Close()

	var names []string
	for {
		ref, err := iter.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errcat.Errorf(gerr.IO, "gitjfs: could not list refs: %s", err)
		}
		if ref.Type() != plumbing.HashReference {
			continue
		}
		name := ref.Name().String()
		if len(name) >= len(prefix) && name[:len(prefix)] == prefix {
			names = append(names, name)
		}
	}
	return names, nil
}

func (s *store) Diff(a, b objstore.ID) ([]objstore.Change, error) {
	treeA, err := s.treeOf(a)
	if err != nil {
		return nil, err
	}
	treeB, err := s.treeOf(b)
	if err != nil {
		return nil, err
	}

	changes, err := treeA.Diff(treeB)
	if err != nil {
		return nil, errcat.Errorf(gerr.IO, "gitjfs: could not diff %s..%s: %s", a, b, err)
	}

	out := make([]objstore.Change, 0, len(changes))
	for _, c := range changes {
		action, err := c.Action()
		if err != nil {
			return nil, errcat.Errorf(gerr.IO, "gitjfs: could not classify diff entry: %s", err)
		}
		switch action {
		case merkletrie.Insert:
			out = append(out, objstore.Change{Type: objstore.ChangeAdd, NewPath: c.To.Name})
		case merkletrie.Delete:
			out = append(out, objstore.Change{Type: objstore.ChangeDelete, OldPath: c.From.Name})
		default:
			out = append(out, objstore.Change{Type: objstore.ChangeModify, OldPath: c.From.Name, NewPath: c.To.Name})
		}
	}
	// go-git's plain tree diff does not perform rename/copy detection, so
	// ChangeRename and ChangeCopy never appear here. A renamed file surfaces
	// as a delete-then-add pair, same as `git diff --no-renames`.
	return out, nil
}

func (s *store) treeOf(commitID objstore.ID) (*object.Tree, error) {
	commit, err := object.GetCommit(s.storer, plumbing.Hash(commitID))
	if err != nil {
		return nil, translate(err, commitID)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, errcat.Errorf(gerr.IO, "gitjfs: commit %s has no tree: %s", commitID, err)
	}
	return tree, nil
}

func (s *store) Close() error {
	return nil
}

func translate(err error, id objstore.ID) error {
	if err == plumbing.ErrObjectNotFound {
		return errcat.Errorf(gerr.NoSuchFile, "gitjfs: object %s not found", id)
	}
	return errcat.Errorf(gerr.IO, "gitjfs: could not read object %s: %s", id, err)
}
