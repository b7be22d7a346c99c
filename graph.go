package gitjfs

import (
	"github.com/warpfork/go-errcat"

	"go.polydawn.net/gitjfs/commitgraph"
	"go.polydawn.net/gitjfs/gerr"
	"go.polydawn.net/gitjfs/gpath"
	"go.polydawn.net/gitjfs/ipath"
	"go.polydawn.net/gitjfs/objstore"
	"go.polydawn.net/gitjfs/rev"
)

// Graph returns the commit graph over every commit reachable from a ref,
// built on first call and memoized for the life of the instance (spec
// §4.5).
func (inst *Instance) Graph() (*commitgraph.Graph, error) {
	if err := inst.checkOpen(); err != nil {
		return nil, err
	}
	return inst.graph.Graph()
}

// Refs returns a path-root for every direct ref under "refs/" (spec §4.7's
// refs()).
func (inst *Instance) Refs() ([]Path, error) {
	if err := inst.checkOpen(); err != nil {
		return nil, err
	}
	names, err := inst.store.ListRefs("refs/")
	if err != nil {
		return nil, err
	}
	out := make([]Path, 0, len(names))
	for _, name := range names {
		p, err := inst.getPathRootRef(name)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// RootDirectories enumerates a path-root per commit reachable from any ref
// (spec §12.2), distinct from Refs: a commit with two refs pointing at it
// appears once here but contributes two entries to Refs.
func (inst *Instance) RootDirectories() ([]Path, error) {
	if err := inst.checkOpen(); err != nil {
		return nil, err
	}
	g, err := inst.graph.Graph()
	if err != nil {
		return nil, err
	}
	out := make([]Path, 0, g.Len())
	for _, n := range g.Nodes() {
		gp, err := gpath.Absolute(rev.CommitID(n.Commit.ID), ipath.Root())
		if err != nil {
			return nil, err
		}
		out = append(out, inst.wrap(gp))
	}
	return out, nil
}

// Diff computes the ordered set of changes between the trees a and b's
// path-roots resolve to (spec §4.7/§6). Both paths must belong to this
// instance.
func (inst *Instance) Diff(a, b Path) ([]objstore.Change, error) {
	if err := inst.checkOpen(); err != nil {
		return nil, err
	}
	if err := sameInstance(a, b); err != nil {
		return nil, err
	}
	if a.inst != inst {
		return nil, errcat.Errorf(gerr.IllegalArgument, "gitjfs: diff requires paths belonging to this instance")
	}
	aRoot, err := inst.resolveRootCommit(a.gp.ToAbsolutePath().Token())
	if err != nil {
		return nil, err
	}
	bRoot, err := inst.resolveRootCommit(b.gp.ToAbsolutePath().Token())
	if err != nil {
		return nil, err
	}
	return inst.store.Diff(aRoot, bRoot)
}
