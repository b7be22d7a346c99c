package gitjfs

import (
	"io"
	"sync"

	"github.com/warpfork/go-errcat"

	"go.polydawn.net/gitjfs/gerr"
	"go.polydawn.net/gitjfs/objstore"
	"go.polydawn.net/gitjfs/resolver"
)

// DirEntry is one child yielded by a DirStream.
type DirEntry struct {
	Path Path
	Mode objstore.Mode
}

// DirStream is a DirectoryStream (spec §4.7): a one-shot, single-use
// iterator over a tree's direct children, with a one-element read-ahead so
// HasNext never has to be called twice in a row to learn the same thing.
// Iterator may be taken at most once; a second call fails with
// illegal-state, mirroring java.nio.file.DirectoryStream's own contract
// that the original inherits unchanged.
type DirStream struct {
	mu        sync.Mutex
	it        objstore.TreeIterator
	inst      *Instance
	dir       Path
	filter    func(DirEntry) bool
	next      *DirEntry
	exhausted bool
	closed    bool
	taken     bool
}

// NewDirectoryStream opens an iterator over dir's direct children. filter
// may be nil to accept every entry.
func (inst *Instance) NewDirectoryStream(dir Path, filter func(DirEntry) bool) (*DirStream, error) {
	if err := inst.checkOpen(); err != nil {
		return nil, err
	}
	obj, _, err := inst.resolveObject(dir, resolver.FollowExceptFinal)
	if err != nil {
		return nil, err
	}
	if obj.Mode != objstore.ModeTree {
		return nil, errcat.Errorf(gerr.NotADirectory, "gitjfs: %q is not a directory", dir)
	}
	it, err := inst.store.TreeEntries(obj.ID)
	if err != nil {
		return nil, err
	}
	ds := &DirStream{it: it, inst: inst, dir: dir, filter: filter}
	inst.registerStream(ds)
	return ds, nil
}

// DirIterator is the single-use cursor DirStream.Iterator hands out.
type DirIterator struct {
	ds *DirStream
}

// Iterator returns this stream's cursor. Calling it a second time fails.
func (ds *DirStream) Iterator() (*DirIterator, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if ds.taken {
		return nil, errcat.Errorf(gerr.IllegalState, "gitjfs: directory stream iterator already taken")
	}
	ds.taken = true
	return &DirIterator{ds: ds}, nil
}

// HasNext reports whether Next would yield another entry, performing the
// one-element read-ahead if one is not already buffered.
func (di *DirIterator) HasNext() (bool, error) {
	return di.ds.fill()
}

// Next returns the buffered entry (filling it first if needed) and
// consumes it, or fails with NoSuchFile once the stream is exhausted.
func (di *DirIterator) Next() (DirEntry, error) {
	has, err := di.ds.fill()
	if err != nil {
		return DirEntry{}, err
	}
	if !has {
		return DirEntry{}, errcat.Errorf(gerr.NoSuchFile, "gitjfs: directory stream is exhausted")
	}
	ds := di.ds
	ds.mu.Lock()
	defer ds.mu.Unlock()
	e := *ds.next
	ds.next = nil
	return e, nil
}

func (ds *DirStream) fill() (bool, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if ds.closed {
		return false, errcat.Errorf(gerr.ClosedFS, "gitjfs: directory stream is closed")
	}
	if ds.next != nil {
		return true, nil
	}
	if ds.exhausted {
		return false, nil
	}
	for {
		entry, err := ds.it.Next()
		if err == io.EOF {
			ds.exhausted = true
			return false, nil
		}
		if err != nil {
			return false, err
		}
		childPath, err := ds.dir.resolveChild(entry.Name)
		if err != nil {
			return false, err
		}
		de := DirEntry{Path: childPath, Mode: entry.Mode}
		if ds.filter != nil && !ds.filter(de) {
			continue
		}
		ds.next = &de
		return true, nil
	}
}

// Close ends the stream, releasing its underlying tree iterator and
// deregistering it from the owning instance. Close is idempotent.
func (ds *DirStream) Close() error {
	ds.mu.Lock()
	if ds.closed {
		ds.mu.Unlock()
		return nil
	}
	ds.closed = true
	err := ds.it.Close()
	ds.mu.Unlock()

	ds.inst.unregisterStream(ds)
	return err
}
