package gitjfs

import (
	"strings"

	"github.com/warpfork/go-errcat"

	"go.polydawn.net/gitjfs/gerr"
	"go.polydawn.net/gitjfs/gpath"
	"go.polydawn.net/gitjfs/ipath"
	"go.polydawn.net/gitjfs/objstore"
	"go.polydawn.net/gitjfs/pathcache"
	"go.polydawn.net/gitjfs/rev"
)

// Path is a GitPath: a gpath.Path bound to the Instance it was constructed
// from, carrying its own pathcache.Slot. Two Paths are Equal only if they
// share an Instance and an equal logical-path string form (spec §3).
type Path struct {
	inst  *Instance
	gp    gpath.Path
	cache *pathcache.Slot
}

func (inst *Instance) wrap(gp gpath.Path) Path {
	return Path{inst: inst, gp: gp, cache: &pathcache.Slot{}}
}

// GetPath builds a GitPath the way Instance.GetPath(first, more...) does in
// the original (GitFileSystemImpl.getPath): if the first non-empty piece
// starts with "/", the whole call is delegated to GetAbsolutePath; otherwise the
// pieces are joined into a relative internal path.
func (inst *Instance) GetPath(first string, more ...string) (Path, error) {
	all := append([]string{first}, more...)
	for _, n := range all {
		if n == "" {
			continue
		}
		if n[0] == '/' {
			return inst.GetAbsolutePath(first, more...)
		}
		break
	}
	internal, err := ipath.Join(first, more...)
	if err != nil {
		return Path{}, err
	}
	rel, err := gpath.Relative(internal)
	if err != nil {
		return Path{}, err
	}
	return inst.wrap(rel), nil
}

// GetAbsolutePath builds an absolute GitPath from its string form, ported
// from GitFileSystemImpl.getAbsolutePath: first (its leading "/" stripped)
// may itself already contain the root/internal-path "//" separator, in
// which case more is appended after the internal-path half it yields;
// otherwise first is taken whole as the bare root token and more supplies
// the internal path pieces, defaulting to the path-root "/" when empty.
func (inst *Instance) GetAbsolutePath(first string, more ...string) (Path, error) {
	trimmed := strings.TrimPrefix(first, "/")

	var rootStr string
	var pieces []string
	if idx := indexDoubleSlash(trimmed); idx >= 0 {
		rootStr = trimmed[:idx]
		pieces = append([]string{trimmed[idx+1:]}, more...)
	} else {
		rootStr = trimmed
		rest := append([]string{}, more...)
		if len(rest) == 0 {
			rest = []string{"/"}
		} else if len(rest[0]) == 0 || rest[0][0] != '/' {
			rest[0] = "/" + rest[0]
		}
		pieces = rest
	}

	tok, err := rev.ParseRoot(rootStr)
	if err != nil {
		return Path{}, err
	}
	internal, err := ipath.Join(pieces[0], pieces[1:]...)
	if err != nil {
		return Path{}, err
	}
	if !internal.IsAbsolute() {
		return Path{}, errcat.Errorf(gerr.InvalidPath, "gitjfs: %q does not yield an absolute internal path", first)
	}
	gp, err := gpath.Absolute(tok, internal)
	if err != nil {
		return Path{}, err
	}
	return inst.wrap(gp), nil
}

func indexDoubleSlash(s string) int {
	for i := 0; i+1 < len(s); i++ {
		if s[i] == '/' && s[i+1] == '/' {
			return i
		}
	}
	return -1
}

// GetPathRoot builds the path-root naming a commit directly by id.
func (inst *Instance) GetPathRoot(id objstore.ID) Path {
	gp, err := gpath.Absolute(rev.CommitID(id), ipath.Root())
	if err != nil {
		panic(err) // ipath.Root() is always absolute; Absolute cannot reject it.
	}
	return inst.wrap(gp)
}

// getPathRootRef builds the path-root naming a ref.
func (inst *Instance) getPathRootRef(name string) (Path, error) {
	tok, err := rev.ParseRef(name)
	if err != nil {
		return Path{}, err
	}
	gp, err := gpath.Absolute(tok, ipath.Root())
	if err != nil {
		return Path{}, err
	}
	return inst.wrap(gp), nil
}

func (p Path) String() string { return p.gp.String() }

// Equal compares by owning instance and logical-path equality (spec §3).
func (p Path) Equal(other Path) bool {
	return p.inst == other.inst && p.gp.Equal(other.gp)
}

func (p Path) Compare(other Path) int { return p.gp.Compare(other.gp) }

func (p Path) IsAbsolute() bool { return p.gp.IsAbsolute() }

func (p Path) ToAbsolutePath() Path { return p.inst.wrap(p.gp.ToAbsolutePath()) }

func (p Path) Root() (Path, bool) {
	r, ok := p.gp.Root()
	if !ok {
		return Path{}, false
	}
	return p.inst.wrap(r), true
}

func (p Path) FileName() (Path, bool) {
	fn, ok := p.gp.FileName()
	if !ok {
		return Path{}, false
	}
	return p.inst.wrap(fn), true
}

func (p Path) Parent() (Path, bool) {
	parent, ok := p.gp.Parent()
	if !ok {
		return Path{}, false
	}
	return p.inst.wrap(parent), true
}

func (p Path) GetName(i int) (Path, error) {
	n, err := p.gp.GetName(i)
	if err != nil {
		return Path{}, err
	}
	return p.inst.wrap(n), nil
}

func (p Path) Subpath(a, b int) (Path, error) {
	s, err := p.gp.Subpath(a, b)
	if err != nil {
		return Path{}, err
	}
	return p.inst.wrap(s), nil
}

func (p Path) Normalize() Path { return p.inst.wrap(p.gp.Normalize()) }

// Resolve requires other to belong to the same Instance.
func (p Path) Resolve(other Path) (Path, error) {
	if err := sameInstance(p, other); err != nil {
		return Path{}, err
	}
	return p.inst.wrap(p.gp.Resolve(other.gp)), nil
}

func (p Path) Relativize(other Path) (Path, error) {
	if err := sameInstance(p, other); err != nil {
		return Path{}, err
	}
	r, err := p.gp.Relativize(other.gp)
	if err != nil {
		return Path{}, err
	}
	return p.inst.wrap(r), nil
}

func (p Path) StartsWith(other Path) bool {
	return p.inst == other.inst && p.gp.StartsWith(other.gp)
}

func (p Path) EndsWith(other Path) bool {
	return p.inst == other.inst && p.gp.EndsWith(other.gp)
}

func sameInstance(a, b Path) error {
	if a.inst != b.inst {
		return errcat.Errorf(gerr.IllegalArgument, "gitjfs: paths %q and %q belong to different file system instances", a, b)
	}
	return nil
}

func (p Path) resolveChild(name string) (Path, error) {
	rel, err := ipath.New(false, name)
	if err != nil {
		return Path{}, err
	}
	relGP, err := gpath.Relative(rel)
	if err != nil {
		return Path{}, err
	}
	return p.inst.wrap(p.gp.Resolve(relGP)), nil
}
