package gitjfs

import (
	"sync"

	"github.com/warpfork/go-errcat"

	"go.polydawn.net/gitjfs/gerr"
)

// registry implements spec §4.8's two disjoint key spaces: on-disk
// directory (FILE authority) and descriptive name (DFS authority), each
// guarded by its own lock.
type registry struct {
	dirMu  sync.Mutex
	byDir  map[string]*Instance
	nameMu sync.Mutex
	byName map[string]*Instance
}

var defaultRegistry = &registry{
	byDir:  map[string]*Instance{},
	byName: map[string]*Instance{},
}

func (r *registry) addDir(dir string, inst *Instance) error {
	r.dirMu.Lock()
	defer r.dirMu.Unlock()
	if _, exists := r.byDir[dir]; exists {
		return errcat.Errorf(gerr.AlreadyExists, "gitjfs: an instance is already open at %q", dir)
	}
	r.byDir[dir] = inst
	return nil
}

func (r *registry) addName(name string, inst *Instance) error {
	r.nameMu.Lock()
	defer r.nameMu.Unlock()
	if _, exists := r.byName[name]; exists {
		return errcat.Errorf(gerr.AlreadyExists, "gitjfs: an instance is already open under the name %q", name)
	}
	r.byName[name] = inst
	return nil
}

func (r *registry) lookupDir(dir string) (*Instance, error) {
	r.dirMu.Lock()
	defer r.dirMu.Unlock()
	inst, ok := r.byDir[dir]
	if !ok {
		return nil, errcat.Errorf(gerr.NotFound, "gitjfs: no instance open at %q", dir)
	}
	return inst, nil
}

func (r *registry) lookupName(name string) (*Instance, error) {
	r.nameMu.Lock()
	defer r.nameMu.Unlock()
	inst, ok := r.byName[name]
	if !ok {
		return nil, errcat.Errorf(gerr.NotFound, "gitjfs: no instance open under the name %q", name)
	}
	return inst, nil
}

// remove drops inst's registry entry, whichever key space it lives in.
// Close calls this after the instance is already marked closed, so at most
// one of the two maps can hold it.
func (r *registry) remove(inst *Instance) {
	r.dirMu.Lock()
	for k, v := range r.byDir {
		if v == inst {
			delete(r.byDir, k)
			r.dirMu.Unlock()
			return
		}
	}
	r.dirMu.Unlock()

	r.nameMu.Lock()
	defer r.nameMu.Unlock()
	for k, v := range r.byName {
		if v == inst {
			delete(r.byName, k)
			return
		}
	}
}
