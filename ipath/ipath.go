/*
	Package ipath implements the internal path engine (spec §3/§4.2,
	component C2): a POSIX-like path algebra over an in-memory sequence of
	name strings plus an absolute flag.

	This is the same shape of problem the teacher solves with
	go.polydawn.net/rio/fs's RelPath and AbsolutePath — "yep, these *are
	not* interchangeable" — except gitjfs needs a single type that can be
	either, because a GitPath's internal-path half is absolute exactly when
	the whole GitPath is absolute, and most of the algebra (join, resolve,
	normalize, relativize, compare) has to work uniformly across both. So
	where the teacher keeps RelPath and AbsolutePath as two structs sharing
	no code, Path here is the tagged union of the two, and the places where
	behavior really does differ (Parent's "none" case, Resolve's
	short-circuits) are written as explicit branches rather than separate
	types.
*/
package ipath

import (
	"strings"

	"github.com/warpfork/go-errcat"

	"go.polydawn.net/gitjfs/gerr"
)

// Path is an InternalPath: either absolute (a root plus zero or more
// names) or relative (one or more names — with the sole exception of the
// empty path, the unique relative path with a single empty name).
type Path struct {
	absolute bool
	names    []string
}

// Root is the absolute path with zero names (the "path-root").
func Root() Path {
	return Path{absolute: true}
}

// Empty is the unique relative path containing a single empty name.
func Empty() Path {
	return Path{absolute: false, names: []string{""}}
}

// New builds a Path from an absolute flag and a list of names, validating
// spec §3's invariants. Calling New(false) with no names returns Empty(),
// since a relative path with zero given names denotes the empty path.
func New(absolute bool, names ...string) (Path, error) {
	if len(names) == 0 {
		if absolute {
			return Root(), nil
		}
		return Empty(), nil
	}
	soleElement := !absolute && len(names) == 1
	for _, n := range names {
		if strings.Contains(n, "/") {
			return Path{}, errcat.Errorf(gerr.InvalidPath, "gitjfs: name %q must not contain %q", n, "/")
		}
		if n == "" && !soleElement {
			return Path{}, errcat.Errorf(gerr.InvalidPath, "gitjfs: an empty name is only valid as the sole element of a relative path")
		}
	}
	out := make([]string, len(names))
	copy(out, names)
	return Path{absolute: absolute, names: out}, nil
}

func mustNew(absolute bool, names ...string) Path {
	p, err := New(absolute, names...)
	if err != nil {
		panic(err)
	}
	return p
}

// Parse reads the string grammar of spec §6: a leading "/" marks an
// absolute path; "" denotes the relative empty path; "/" denotes the
// absolute path-root; everything else is "/"-joined names. Parse does not
// normalize — "." and ".." segments are preserved as literal names,
// exactly as written, for Normalize to later collapse.
func Parse(s string) (Path, error) {
	if s == "" {
		return Empty(), nil
	}
	absolute := strings.HasPrefix(s, "/")
	rest := s
	if absolute {
		rest = s[1:]
	}
	if rest == "" {
		if absolute {
			return Root(), nil
		}
		return Empty(), nil
	}
	parts := strings.Split(rest, "/")
	for _, p := range parts {
		if p == "" {
			return Path{}, errcat.Errorf(gerr.InvalidPath, "gitjfs: %q contains an empty path segment", s)
		}
	}
	return New(absolute, parts...)
}

// Join builds a Path the way a file-system's getPath(first, more...) does:
// the pieces are concatenated with "/" separators, empty pieces are
// dropped, and a leading "/" on the first piece marks the whole result
// absolute (spec §4.2).
func Join(first string, more ...string) (Path, error) {
	pieces := append([]string{first}, more...)
	absolute := false
	var names []string
	for i, piece := range pieces {
		if i == 0 && strings.HasPrefix(piece, "/") {
			absolute = true
			piece = piece[1:]
		}
		if piece == "" {
			continue
		}
		for _, seg := range strings.Split(piece, "/") {
			if seg != "" {
				names = append(names, seg)
			}
		}
	}
	return New(absolute, names...)
}

// IsAbsolute reports whether this path is rooted.
func (p Path) IsAbsolute() bool {
	return p.absolute
}

// IsEmpty reports whether this is the empty path.
func (p Path) IsEmpty() bool {
	return !p.absolute && len(p.names) == 1 && p.names[0] == ""
}

// Names returns the path's names. For the empty path this is an empty
// slice (the placeholder internal name is not a "real" name).
func (p Path) Names() []string {
	return append([]string{}, p.realNames()...)
}

func (p Path) realNames() []string {
	if p.IsEmpty() {
		return nil
	}
	return p.names
}

// NameCount returns the number of real names.
func (p Path) NameCount() int {
	return len(p.realNames())
}

// GetName returns the i'th name as a single-element relative path.
func (p Path) GetName(i int) (Path, error) {
	names := p.realNames()
	if i < 0 || i >= len(names) {
		return Path{}, errcat.Errorf(gerr.IllegalArgument, "gitjfs: name index %d out of range (have %d)", i, len(names))
	}
	return mustNew(false, names[i]), nil
}

// Subpath returns names [a,b) as a relative path.
func (p Path) Subpath(a, b int) (Path, error) {
	names := p.realNames()
	if a < 0 || b > len(names) || a > b {
		return Path{}, errcat.Errorf(gerr.IllegalArgument, "gitjfs: subpath [%d,%d) out of range (have %d names)", a, b, len(names))
	}
	if a == b {
		return Empty(), nil
	}
	return mustNew(false, names[a:b]...), nil
}

// FileName returns the last name as a relative path, or false if this path
// is root-only-absolute (has no names at all to take the last of).
func (p Path) FileName() (Path, bool) {
	names := p.realNames()
	if p.absolute && len(names) == 0 {
		return Path{}, false
	}
	if len(names) == 0 {
		// The empty path: its "file name" is itself.
		return Empty(), true
	}
	return mustNew(false, names[len(names)-1]), true
}

// Parent drops the last name; if no names remain and the path is not
// absolute, there is no parent.
func (p Path) Parent() (Path, bool) {
	names := p.realNames()
	if len(names) == 0 {
		return Path{}, false
	}
	parentNames := names[:len(names)-1]
	if len(parentNames) == 0 {
		if p.absolute {
			return Root(), true
		}
		return Path{}, false
	}
	return mustNew(p.absolute, parentNames...), true
}

// Normalize removes "." segments and cancels "foo/.." pairs, never
// ascending above an absolute root. It may reduce a fully-cancelling
// relative path down to the empty path.
func (p Path) Normalize() Path {
	var out []string
	for _, n := range p.realNames() {
		switch n {
		case ".":
			continue
		case "..":
			if len(out) > 0 && out[len(out)-1] != ".." {
				out = out[:len(out)-1]
				continue
			}
			if p.absolute {
				continue
			}
			out = append(out, "..")
		default:
			out = append(out, n)
		}
	}
	return mustNew(p.absolute, out...)
}

// Resolve implements the usual POSIX resolve: an absolute other is
// returned verbatim; an empty other returns this path; otherwise other's
// names are appended to this path's names.
func (p Path) Resolve(other Path) Path {
	if other.absolute {
		return other
	}
	if other.IsEmpty() {
		return p
	}
	if p.IsEmpty() {
		return other
	}
	names := make([]string, 0, len(p.names)+len(other.names))
	names = append(names, p.names...)
	names = append(names, other.names...)
	return mustNew(p.absolute, names...)
}

// Relativize requires same root-ness between the two paths. If this path's
// names are a prefix of other's, it returns other's suffix as a relative
// path (the empty path if they are exactly equal); otherwise it fails.
func (p Path) Relativize(other Path) (Path, error) {
	if p.absolute != other.absolute {
		return Path{}, errcat.Errorf(gerr.IllegalArgument, "gitjfs: cannot relativize %q against %q: different root-ness", p, other)
	}
	pn, on := p.realNames(), other.realNames()
	if len(pn) > len(on) {
		return Path{}, errcat.Errorf(gerr.IllegalArgument, "gitjfs: %q is not a prefix of %q", p, other)
	}
	for i := range pn {
		if pn[i] != on[i] {
			return Path{}, errcat.Errorf(gerr.IllegalArgument, "gitjfs: %q is not a prefix of %q", p, other)
		}
	}
	suffix := on[len(pn):]
	if len(suffix) == 0 {
		return Empty(), nil
	}
	return mustNew(false, suffix...), nil
}

// StartsWith reports whether other is a prefix of this path in the usual
// POSIX sense (both must share the same root-ness).
func (p Path) StartsWith(other Path) bool {
	if p.absolute != other.absolute {
		return false
	}
	pn, on := p.realNames(), other.realNames()
	if len(on) > len(pn) {
		return false
	}
	for i := range on {
		if pn[i] != on[i] {
			return false
		}
	}
	return true
}

// EndsWith reports whether other is a suffix of this path. An absolute
// other can only be a suffix of an absolute path equal to it in full,
// since no proper suffix of a path is itself rooted.
func (p Path) EndsWith(other Path) bool {
	if other.absolute {
		return p.absolute && sliceEqual(p.realNames(), other.realNames())
	}
	pn, on := p.realNames(), other.realNames()
	if len(on) > len(pn) {
		return false
	}
	offset := len(pn) - len(on)
	for i := range on {
		if pn[offset+i] != on[i] {
			return false
		}
	}
	return true
}

// Compare defines a total order over the canonical string form. The
// ordering beyond "total" is deliberately unspecified (spec §4.2).
func (p Path) Compare(other Path) int {
	return strings.Compare(p.String(), other.String())
}

// Equal compares by (absolute flag, name sequence), case-sensitive.
func (p Path) Equal(other Path) bool {
	return p.absolute == other.absolute && sliceEqual(p.names, other.names)
}

// String renders the canonical form: absolute paths as "/" plus
// slash-joined names (or just "/" for the root), relative paths as
// slash-joined names, and the empty path as "".
func (p Path) String() string {
	if p.IsEmpty() {
		return ""
	}
	if p.absolute {
		if len(p.names) == 0 {
			return "/"
		}
		return "/" + strings.Join(p.names, "/")
	}
	return strings.Join(p.names, "/")
}

func sliceEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
