package gitjfs

import (
	"time"

	"github.com/warpfork/go-errcat"

	"go.polydawn.net/gitjfs/gerr"
	"go.polydawn.net/gitjfs/objstore"
	"go.polydawn.net/gitjfs/resolver"
)

// LinkOption selects whether a trailing symlink is followed. The zero value
// (FollowLinks) is the usual default; most operations below instead default
// to resolver.FollowExceptFinal directly and only consult LinkOption for the
// no-follow override, matching the original's narrower LinkOption.NOFOLLOW_LINKS.
type LinkOption int

const (
	FollowLinks LinkOption = iota
	NoFollowLinks
)

func hasNoFollow(opts []LinkOption) bool {
	for _, o := range opts {
		if o == NoFollowLinks {
			return true
		}
	}
	return false
}

// Attrs is the basic file attribute view of spec §4.7: size, commit-derived
// timestamps, and the kind flags.
type Attrs struct {
	Size           int64
	LastModified   time.Time
	CreationTime   time.Time
	IsRegularFile  bool
	IsDirectory    bool
	IsSymbolicLink bool
	IsOther        bool
}

// ReadAttributes reads p's basic attributes. Size is 0 for anything other
// than a regular file or executable; LastModified and CreationTime are both
// the owning commit's committer timestamp, since Git has no independent
// per-blob modification time and no creation time distinct from the commit
// that introduced the current content (spec §4.7/§12.5).
func (inst *Instance) ReadAttributes(p Path, opts ...LinkOption) (Attrs, error) {
	if err := inst.checkOpen(); err != nil {
		return Attrs{}, err
	}
	policy := resolver.FollowExceptFinal
	if hasNoFollow(opts) {
		policy = resolver.NoFollow
	}
	obj, info, err := inst.resolveObject(p, policy)
	if err != nil {
		return Attrs{}, err
	}

	var size int64
	if obj.Mode == objstore.ModeRegularFile || obj.Mode == objstore.ModeExecutable {
		size, err = inst.store.BlobSize(obj.ID)
		if err != nil {
			return Attrs{}, err
		}
	}

	when := info.Committer.When
	return Attrs{
		Size:           size,
		LastModified:   when,
		CreationTime:   when,
		IsRegularFile:  obj.Mode == objstore.ModeRegularFile || obj.Mode == objstore.ModeExecutable,
		IsDirectory:    obj.Mode == objstore.ModeTree,
		IsSymbolicLink: obj.Mode == objstore.ModeSymlink,
		IsOther:        false,
	}, nil
}

// AccessMode is one of the three POSIX-style access checks CheckAccess
// accepts; per spec §4.7 only Read and Execute can ever succeed, since the
// file system is read-only.
type AccessMode int

const (
	Read AccessMode = iota
	Write
	Execute
)

// CheckAccess succeeds iff p exists and every requested mode is granted:
// Read always (existence was the only question), Execute only if p's mode
// is executable, Write never.
func (inst *Instance) CheckAccess(p Path, modes ...AccessMode) error {
	if err := inst.checkOpen(); err != nil {
		return err
	}
	obj, _, err := inst.resolveObject(p, resolver.FollowExceptFinal)
	if err != nil {
		return err
	}
	for _, m := range modes {
		switch m {
		case Write:
			return errcat.Errorf(gerr.ReadOnlyFS, "gitjfs: %q is read-only", p)
		case Execute:
			if obj.Mode != objstore.ModeExecutable {
				return errcat.Errorf(gerr.AccessDenied, "gitjfs: %q is not executable", p)
			}
		case Read:
			// Existence was already confirmed above.
		}
	}
	return nil
}
