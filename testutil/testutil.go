/*
	Package testutil collects the fixture builder shared by this module's
	tests, adapted from the teacher's package of the same name
	(go.polydawn.net/rio/testutil), which provided ShouldStat and the
	Requires/ConveyRequirement family for gating tests on host capabilities.
	Here there is no host file system to probe, so the helper instead builds
	small in-memory git repositories with go-git's high-level porcelain — the
	same library rio/warehouse/impl/git and rio/transmat/git use for the real
	thing, just pointed at Init instead of Clone.
*/
package testutil

import (
	"os"
	"time"

	"gopkg.in/src-d/go-billy.v4"
	"gopkg.in/src-d/go-billy.v4/memfs"
	git "gopkg.in/src-d/go-git.v4"
	"gopkg.in/src-d/go-git.v4/plumbing"
	"gopkg.in/src-d/go-git.v4/plumbing/object"
	"gopkg.in/src-d/go-git.v4/storage"
	"gopkg.in/src-d/go-git.v4/storage/memory"

	"go.polydawn.net/gitjfs/objstore"
	"go.polydawn.net/gitjfs/objstore/gogit"
)

// Sig is a stand-in author/committer signature for fixture commits: fixed in
// time so that fixture-derived expectations (commit ids, graph shapes) are
// deterministic across runs.
func Sig(name string) *object.Signature {
	return &object.Signature{
		Name:  name,
		Email: name + "@example.test",
		When:  time.Date(2020, time.January, 1, 12, 0, 0, 0, time.UTC),
	}
}

// Repo is a throwaway git repository built directly in memory for tests. It
// exposes both the go-git porcelain (to keep building commits) and an
// objstore.Store view (what production code actually consumes).
type Repo struct {
	Storer storage.Storer
	FS     billy.Filesystem
	Git    *git.Repository
	wt     *git.Worktree
}

// NewRepo initializes an empty in-memory repository.
func NewRepo() *Repo {
	storer := memory.NewStorage()
	fs := memfs.New()
	repo, err := git.Init(storer, fs)
	if err != nil {
		panic(err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		panic(err)
	}
	return &Repo{Storer: storer, FS: fs, Git: repo, wt: wt}
}

// WriteFile creates or overwrites a file at path with the given content.
func (r *Repo) WriteFile(path string, content string) {
	f, err := r.FS.Create(path)
	if err != nil {
		panic(err)
	}
	if _, err := f.Write([]byte(content)); err != nil {
		panic(err)
	}
	if err := f.Close(); err != nil {
		panic(err)
	}
}

// WriteExecutable is WriteFile plus the executable bit, set at creation time
// via OpenFile (the in-memory filesystem used by these fixtures has no
// separate Chmod operation).
func (r *Repo) WriteExecutable(path string, content string) {
	f, err := r.FS.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0755)
	if err != nil {
		panic(err)
	}
	if _, err := f.Write([]byte(content)); err != nil {
		panic(err)
	}
	if err := f.Close(); err != nil {
		panic(err)
	}
}

// WriteSymlink creates a symlink at path pointing at target (target is
// stored verbatim as the link's blob content, exactly as git would).
func (r *Repo) WriteSymlink(path string, target string) {
	if err := r.FS.Symlink(target, path); err != nil {
		panic(err)
	}
}

// Commit stages every given path and commits, returning the new commit id.
// The branch HEAD names is left as it was before the call, so a fixture's
// refs are exactly the ones set with SetRef; while that branch does not
// exist, a commit given no parents is a root commit.
func (r *Repo) Commit(message string, parents []plumbing.Hash, paths ...string) objstore.ID {
	for _, p := range paths {
		if _, err := r.wt.Add(p); err != nil {
			panic(err)
		}
	}
	opts := &git.CommitOptions{Author: Sig("author"), Committer: Sig("committer")}
	if len(parents) > 0 {
		opts.Parents = parents
	}
	head, err := r.Storer.Reference(plumbing.HEAD)
	if err != nil {
		panic(err)
	}
	prev, prevErr := r.Storer.Reference(head.Target())
	hash, err := r.wt.Commit(message, opts)
	if err != nil {
		panic(err)
	}
	// Worktree.Commit also moves the branch HEAD names; put it back as it was.
	if prevErr == nil {
		err = r.Storer.SetReference(prev)
	} else {
		err = r.Storer.RemoveReference(head.Target())
	}
	if err != nil {
		panic(err)
	}
	return objstore.ID(hash)
}

// SetRef points a ref directly at a commit, bypassing branch checkout
// machinery — useful for building a multi-branch fixture without juggling
// worktree state.
func (r *Repo) SetRef(name string, commit objstore.ID) {
	ref := plumbing.NewHashReference(plumbing.ReferenceName(name), plumbing.Hash(commit))
	if err := r.Storer.SetReference(ref); err != nil {
		panic(err)
	}
}

// Store returns the objstore.Store view of this fixture.
func (r *Repo) Store() objstore.Store {
	return gogit.NewFromStorer(r.Storer)
}
