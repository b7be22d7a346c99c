/*
	Package gitjfs implements FileSystemInstance and the URI-keyed registry
	(spec §4.7/§4.8, components C7/C8): the read-only logical file system a
	caller actually opens, built on top of rev (C1), ipath (C2), gpath (C3),
	resolver (C4), commitgraph (C5), and pathcache (C6).

	The original implementation splits this across a java.nio.file
	FileSystemProvider SPI (GitFileSystemProvider), a FileSystem
	(GitFileSystemImpl), and a pair of Forwarding* decorators that exist only
	to satisfy that SPI's abstract classes. Go has no analogous SPI to
	implement, so this package collapses all of that into one concrete
	Instance type with plain methods — the redesign the REDESIGN FLAGS
	section calls for, not a dropped feature.
*/
package gitjfs

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/warpfork/go-errcat"

	"go.polydawn.net/gitjfs/commitgraph"
	"go.polydawn.net/gitjfs/gerr"
	"go.polydawn.net/gitjfs/ipath"
	"go.polydawn.net/gitjfs/objstore"
	"go.polydawn.net/gitjfs/objstore/gogit"
	"go.polydawn.net/gitjfs/resolver"
	"go.polydawn.net/gitjfs/rev"
)

// Instance is a FileSystemInstance: one open view over a single repository's
// object store, reachable through exactly one registry key (spec §4.8).
type Instance struct {
	store     objstore.Store
	ownsStore bool
	graph     *commitgraph.Cache

	authority string // "FILE" or "DFS"
	location  string // absolute on-disk dir (FILE) or descriptive name (DFS)

	mu      sync.Mutex
	open    bool
	streams map[*DirStream]struct{}
}

func newInstance(store objstore.Store, ownsStore bool, authority, location string) *Instance {
	return &Instance{
		store:     store,
		ownsStore: ownsStore,
		graph:     commitgraph.NewCache(store),
		authority: authority,
		location:  location,
		open:      true,
		streams:   map[*DirStream]struct{}{},
	}
}

// Open opens a FILE-backed instance rooted at the git directory dir (a
// ".git" directory, or a bare repository), registering it under dir's
// absolute form (spec §4.8's FILE authority).
func Open(dir string) (*Instance, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errcat.Errorf(gerr.InvalidPath, "gitjfs: %q: %s", dir, err)
	}
	if !strings.HasSuffix(abs, "/") {
		abs += "/"
	}
	store, err := gogit.NewOnDisk(abs)
	if err != nil {
		return nil, err
	}
	inst := newInstance(store, true, "FILE", abs)
	if err := defaultRegistry.addDir(abs, inst); err != nil {
		store.Close()
		return nil, err
	}
	logrus.WithField("dir", abs).Info("gitjfs: opened file system")
	return inst, nil
}

// OpenDFS registers an already-open store (typically backed by
// storage/memory, populated by an embedder or test fixture) under a
// descriptive name, the DFS authority of spec §4.8. The instance does not
// own store: Close will not close it.
func OpenDFS(name string, store objstore.Store) (*Instance, error) {
	inst := newInstance(store, false, "DFS", name)
	if err := defaultRegistry.addName(name, inst); err != nil {
		return nil, err
	}
	logrus.WithField("name", name).Info("gitjfs: opened in-memory file system")
	return inst, nil
}

func (inst *Instance) checkOpen() error {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	if !inst.open {
		return errcat.Errorf(gerr.ClosedFS, "gitjfs: file system is closed")
	}
	return nil
}

// Close releases this instance's object store (if owned), every directory
// stream still open against it, and its registry entry. Close is
// idempotent: a second call is a no-op returning nil. Per spec §7, failures
// across these sub-steps are collected: the first is returned, the rest are
// logged.
func (inst *Instance) Close() error {
	inst.mu.Lock()
	if !inst.open {
		inst.mu.Unlock()
		return nil
	}
	inst.open = false
	streams := make([]*DirStream, 0, len(inst.streams))
	for s := range inst.streams {
		streams = append(streams, s)
	}
	inst.streams = nil
	inst.mu.Unlock()

	var firstErr error
	note := func(err error) {
		if err == nil {
			return
		}
		if firstErr == nil {
			firstErr = err
		} else {
			logrus.WithError(err).Warn("gitjfs: error during close, after an earlier failure")
		}
	}

	for _, s := range streams {
		note(s.Close())
	}
	if inst.ownsStore {
		note(inst.store.Close())
	}
	defaultRegistry.remove(inst)
	logrus.WithField("authority", inst.authority).Info("gitjfs: closed file system")
	return firstErr
}

func (inst *Instance) registerStream(s *DirStream) {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	inst.streams[s] = struct{}{}
}

func (inst *Instance) unregisterStream(s *DirStream) {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	delete(inst.streams, s)
}

// resolveRootCommit resolves a revision token to the commit id it currently
// names: a direct id is returned as-is, a ref is looked up live so that a
// moving branch always reflects its current tip (spec §4.1).
func (inst *Instance) resolveRootCommit(tok rev.Token) (objstore.ID, error) {
	if !tok.IsRef() {
		return tok.CommitIDValue(), nil
	}
	id, ok, err := inst.store.ResolveRef(tok.RefValue())
	if err != nil {
		return objstore.ID{}, err
	}
	if !ok {
		return objstore.ID{}, errcat.Errorf(gerr.NoSuchFile, "gitjfs: ref %q does not exist", tok.RefValue())
	}
	return id, nil
}

// resolveObject resolves p under policy, returning the found object
// together with its root commit's full metadata (needed by callers for
// attribute queries without a second lookup). The two cacheable policies
// consult and populate p's pathcache.Slot; NoFollow bypasses it, since
// spec §4.6 only names the "real" and "link" slots.
func (inst *Instance) resolveObject(p Path, policy resolver.FollowPolicy) (resolver.Object, objstore.CommitInfo, error) {
	abs := p.gp.ToAbsolutePath()
	rootCommitID, err := inst.resolveRootCommit(abs.Token())
	if err != nil {
		return resolver.Object{}, objstore.CommitInfo{}, err
	}
	info, err := inst.store.Commit(rootCommitID)
	if err != nil {
		return resolver.Object{}, objstore.CommitInfo{}, err
	}
	relInternal, err := ipath.New(false, abs.Internal().Names()...)
	if err != nil {
		return resolver.Object{}, objstore.CommitInfo{}, err
	}
	compute := func() (resolver.Object, error) {
		return resolver.Resolve(inst.store, info.TreeID, relInternal, policy)
	}

	var obj resolver.Object
	switch policy {
	case resolver.FollowExceptFinal:
		obj, err = p.cache.GetOrResolveReal(rootCommitID, compute)
	case resolver.FollowAll:
		obj, err = p.cache.GetOrResolveLink(rootCommitID, compute)
	default:
		obj, err = compute()
	}
	return obj, info, err
}
