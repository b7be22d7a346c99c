package gitjfs

import (
	"io"
	"strings"

	"github.com/warpfork/go-errcat"

	"go.polydawn.net/gitjfs/gerr"
	"go.polydawn.net/gitjfs/gpath"
	"go.polydawn.net/gitjfs/objstore"
	"go.polydawn.net/gitjfs/resolver"
)

// ReadSymbolicLink returns p's raw link target string. A relative target is
// the normal case; an absolute target fails with AbsoluteLink, still
// exposing the raw string it read (spec §4.4/§4.7 — "exposing the raw
// target string" is deliberate: a caller diagnosing a bad link needs to see
// what it actually said).
func (inst *Instance) ReadSymbolicLink(p Path) (string, error) {
	if err := inst.checkOpen(); err != nil {
		return "", err
	}
	obj, _, err := inst.resolveObject(p, resolver.NoFollow)
	if err != nil {
		return "", err
	}
	if obj.Mode != objstore.ModeSymlink {
		return "", errcat.Errorf(gerr.NotALink, "gitjfs: %q is not a symbolic link", p)
	}
	rc, err := inst.store.OpenBlob(obj.ID)
	if err != nil {
		return "", err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return "", errcat.Errorf(gerr.IO, "gitjfs: could not read the target of %q: %s", p, err)
	}
	target := string(data)
	if strings.HasPrefix(target, "/") {
		return target, errcat.Errorf(gerr.AbsoluteLink, "gitjfs: %q has an absolute target %q", p, target)
	}
	return target, nil
}

// ToRealPath resolves p to its canonical absolute form with every symlink
// along the way followed. With NoFollowLinks, symlinks other than a
// trailing one are still followed (there is no other way to keep
// descending), but a path ending in an unresolved symlink fails, since the
// result would not actually be "real" (spec §12.4).
func (inst *Instance) ToRealPath(p Path, opts ...LinkOption) (Path, error) {
	if err := inst.checkOpen(); err != nil {
		return Path{}, err
	}
	policy := resolver.FollowAll
	if hasNoFollow(opts) {
		policy = resolver.FollowExceptFinal
	}
	obj, _, err := inst.resolveObject(p, policy)
	if err != nil {
		return Path{}, err
	}
	if policy == resolver.FollowExceptFinal && obj.Mode == objstore.ModeSymlink {
		return Path{}, errcat.Errorf(gerr.PathCouldNotBeFound, "gitjfs: %q ends in an unresolved link under no-follow", p)
	}
	full, err := gpath.Absolute(p.gp.ToAbsolutePath().Token(), obj.RealPath)
	if err != nil {
		return Path{}, err
	}
	return inst.wrap(full), nil
}
