/*
	Package gpath implements LogicalPath (spec §3/§4.3, component C3): the
	pair of an optional revision token and an internal path that a gitjfs
	path is made of. It composes rev.Token (C1) with ipath.Path (C2) the
	same way the teacher's fs package keeps RelPath and AbsolutePath as
	thin wrappers with almost all of their logic delegated to shared
	path.Clean-based helpers — here the delegate is ipath, and gpath's own
	code is mostly the bookkeeping of "is there a root attached, and does
	it match."
*/
package gpath

import (
	"strings"

	"github.com/warpfork/go-errcat"

	"go.polydawn.net/gitjfs/gerr"
	"go.polydawn.net/gitjfs/ipath"
	"go.polydawn.net/gitjfs/rev"
)

// Path is a LogicalPath: absolute (a RevisionToken plus an absolute
// internal path, possibly the path-root) or relative (just an internal
// path, with no token attached).
type Path struct {
	absolute bool
	token    rev.Token
	internal ipath.Path
}

// Absolute builds an absolute LogicalPath from a token and an absolute
// internal path.
func Absolute(tok rev.Token, internal ipath.Path) (Path, error) {
	if !internal.IsAbsolute() {
		return Path{}, errcat.Errorf(gerr.InvalidPath, "gitjfs: internal path %q is not absolute", internal)
	}
	return Path{absolute: true, token: tok, internal: internal}, nil
}

// Relative builds a relative LogicalPath from a relative internal path.
func Relative(internal ipath.Path) (Path, error) {
	if internal.IsAbsolute() {
		return Path{}, errcat.Errorf(gerr.InvalidPath, "gitjfs: internal path %q is not relative", internal)
	}
	return Path{absolute: false, internal: internal}, nil
}

// Parse reads the logical-path string grammar of spec §6:
//
//	path     := absolute | relative
//	absolute := root "/" internal-absolute     ; yielding the "//" marker
//	root     := "/" ( 40-hex | "refs/..." ) "/"
//	relative := names | ""
//
// Since a ref's own grammar forbids "//", the first "//" occurring after
// the leading "/" unambiguously marks the boundary between the root and
// the internal path.
func Parse(s string) (Path, error) {
	if !strings.HasPrefix(s, "/") {
		internal, err := ipath.Parse(s)
		if err != nil {
			return Path{}, err
		}
		if internal.IsAbsolute() {
			return Path{}, errcat.Errorf(gerr.InvalidPath, "gitjfs: %q looks relative but parses as absolute", s)
		}
		return Path{absolute: false, internal: internal}, nil
	}
	rest := s[1:]
	idx := strings.Index(rest, "//")
	if idx < 0 {
		return Path{}, errcat.Errorf(gerr.InvalidPath, "gitjfs: %q is missing the root/internal-path separator", s)
	}
	tok, err := rev.ParseRoot(rest[:idx])
	if err != nil {
		return Path{}, err
	}
	internal, err := ipath.Parse(rest[idx+1:])
	if err != nil {
		return Path{}, err
	}
	if !internal.IsAbsolute() {
		return Path{}, errcat.Errorf(gerr.InvalidPath, "gitjfs: %q has a non-absolute internal path after its root", s)
	}
	return Path{absolute: true, token: tok, internal: internal}, nil
}

// String renders the canonical form: "/" + root + "/" + internal-path for
// absolute paths (which, since the internal path's own String already
// carries a leading "/", yields the "//" marker between root and names),
// or just the internal path's string for relative ones.
func (p Path) String() string {
	if p.absolute {
		return "/" + p.token.String() + "/" + p.internal.String()
	}
	return p.internal.String()
}

// IsAbsolute reports whether this path carries a revision token.
func (p Path) IsAbsolute() bool {
	return p.absolute
}

// Token returns the revision token, valid only when IsAbsolute().
func (p Path) Token() rev.Token {
	return p.token
}

// Internal returns the internal-path half.
func (p Path) Internal() ipath.Path {
	return p.internal
}

// ToAbsolutePath is identity if already absolute; otherwise it substitutes
// the default token (rev.DefaultToken) and promotes the internal path to
// absolute, keeping the same names. Idempotent: ToAbsolutePath is a
// retract, so calling it twice is the same as calling it once.
func (p Path) ToAbsolutePath() Path {
	if p.absolute {
		return p
	}
	absInternal, err := ipath.New(true, p.internal.Names()...)
	if err != nil {
		panic(err) // names were already validated by the relative path.
	}
	return Path{absolute: true, token: rev.DefaultToken(), internal: absInternal}
}

// Root returns the path-root (this path's token with a zero-name absolute
// internal path) if this path is absolute, or none otherwise.
func (p Path) Root() (Path, bool) {
	if !p.absolute {
		return Path{}, false
	}
	return Path{absolute: true, token: p.token, internal: ipath.Root()}, true
}

// FileName lifts ipath.Path.FileName: always a relative single-name path,
// regardless of this path's own root.
func (p Path) FileName() (Path, bool) {
	fn, ok := p.internal.FileName()
	if !ok {
		return Path{}, false
	}
	return Path{absolute: false, internal: fn}, true
}

// Parent lifts ipath.Path.Parent, preserving this path's token.
func (p Path) Parent() (Path, bool) {
	parent, ok := p.internal.Parent()
	if !ok {
		return Path{}, false
	}
	return Path{absolute: p.absolute, token: p.token, internal: parent}, true
}

// GetName lifts ipath.Path.GetName: always a relative single-name path.
func (p Path) GetName(i int) (Path, error) {
	n, err := p.internal.GetName(i)
	if err != nil {
		return Path{}, err
	}
	return Path{absolute: false, internal: n}, nil
}

// Subpath lifts ipath.Path.Subpath: always a relative path.
func (p Path) Subpath(a, b int) (Path, error) {
	s, err := p.internal.Subpath(a, b)
	if err != nil {
		return Path{}, err
	}
	return Path{absolute: false, internal: s}, nil
}

// Normalize lifts ipath.Path.Normalize, preserving this path's token.
func (p Path) Normalize() Path {
	return Path{absolute: p.absolute, token: p.token, internal: p.internal.Normalize()}
}

// Resolve lifts ipath.Path.Resolve. If other is absolute it is returned
// verbatim (its own token and all); otherwise other's internal path is
// resolved against this one's, keeping this path's token.
func (p Path) Resolve(other Path) Path {
	if other.absolute {
		return other
	}
	return Path{absolute: p.absolute, token: p.token, internal: p.internal.Resolve(other.internal)}
}

// Relativize lifts ipath.Path.Relativize. Both paths must share root-ness,
// and if both are absolute, the same token — relativizing across two
// different commits is not meaningful.
func (p Path) Relativize(other Path) (Path, error) {
	if p.absolute != other.absolute {
		return Path{}, errcat.Errorf(gerr.IllegalArgument, "gitjfs: cannot relativize %q against %q: different root-ness", p, other)
	}
	if p.absolute && !p.token.Equal(other.token) {
		return Path{}, errcat.Errorf(gerr.IllegalArgument, "gitjfs: cannot relativize %q against %q: different roots", p, other)
	}
	rel, err := p.internal.Relativize(other.internal)
	if err != nil {
		return Path{}, err
	}
	return Path{absolute: false, internal: rel}, nil
}

// StartsWith reports whether other is a prefix of this path. A path only
// starts with an absolute path sharing a different token trivially
// returns false (spec §8, invariant 6: startsWith(p, root(p)) == true iff
// p is absolute — which holds here since root(p) shares p's own token).
func (p Path) StartsWith(other Path) bool {
	if p.absolute != other.absolute {
		return false
	}
	if p.absolute && !p.token.Equal(other.token) {
		return false
	}
	return p.internal.StartsWith(other.internal)
}

// EndsWith lifts ipath.Path.EndsWith. An absolute other can only end a
// path that is itself absolute with a matching token.
func (p Path) EndsWith(other Path) bool {
	if other.absolute {
		return p.absolute && p.token.Equal(other.token) && p.internal.EndsWith(other.internal)
	}
	return p.internal.EndsWith(other.internal)
}

// Equal compares by root-ness, token (if absolute), and internal path.
func (p Path) Equal(other Path) bool {
	if p.absolute != other.absolute {
		return false
	}
	if p.absolute && !p.token.Equal(other.token) {
		return false
	}
	return p.internal.Equal(other.internal)
}

// Compare defines a total order over the canonical string form.
func (p Path) Compare(other Path) int {
	return strings.Compare(p.String(), other.String())
}
