/*
	Package rev implements the revision token (spec §3/§4.1, component C1):
	the root component of a gitjfs path, naming a commit either directly by
	its 40-hex id or indirectly through a ref string.
*/
package rev

import (
	"strings"

	"github.com/warpfork/go-errcat"

	"go.polydawn.net/gitjfs/gerr"
	"go.polydawn.net/gitjfs/objstore"
)

// Default is the ref substituted for relative paths when they are promoted
// to absolute (spec §3, LogicalPath.toAbsolutePath; §6 Defaults).
const Default = "refs/heads/main"

// Token is a RevisionToken: either a concrete commit id or a ref name. The
// zero Token is not valid; always construct through CommitID or ParseRef.
type Token struct {
	id    objstore.ID
	ref   string
	isRef bool
}

// CommitID builds a token naming a commit directly.
func CommitID(id objstore.ID) Token {
	return Token{id: id}
}

// ParseRef validates and wraps a ref string. The string must begin with
// "refs/", contain neither "//" nor "\\", not end with "/", and be
// nonempty beyond the "refs/" prefix (spec §4.1).
func ParseRef(s string) (Token, error) {
	if !strings.HasPrefix(s, "refs/") {
		return Token{}, errcat.Errorf(gerr.InvalidPath, "gitjfs: ref %q does not start with %q", s, "refs/")
	}
	if len(s) == len("refs/") {
		return Token{}, errcat.Errorf(gerr.InvalidPath, "gitjfs: ref %q is empty beyond its prefix", s)
	}
	if strings.Contains(s, "//") {
		return Token{}, errcat.Errorf(gerr.InvalidPath, "gitjfs: ref %q contains %q", s, "//")
	}
	if strings.Contains(s, "\\") {
		return Token{}, errcat.Errorf(gerr.InvalidPath, "gitjfs: ref %q contains a backslash", s)
	}
	if strings.HasSuffix(s, "/") {
		return Token{}, errcat.Errorf(gerr.InvalidPath, "gitjfs: ref %q ends with %q", s, "/")
	}
	return Token{ref: s, isRef: true}, nil
}

// DefaultToken is the token substituted for relative paths.
func DefaultToken() Token {
	t, err := ParseRef(Default)
	if err != nil {
		panic(err) // Default is a compile-time constant; this cannot fail.
	}
	return t
}

// ParseRoot parses the leading root component of a logical-path or URI
// string: either "<40-hex>" or "refs/...x" (without surrounding slashes —
// callers strip those as part of the outer grammar, spec §4.1/§6).
func ParseRoot(s string) (Token, error) {
	if looksLikeHex40(s) {
		id, err := parseHexID(s)
		if err != nil {
			return Token{}, err
		}
		return CommitID(id), nil
	}
	return ParseRef(s)
}

func looksLikeHex40(s string) bool {
	if len(s) != 40 {
		return false
	}
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
			return false
		}
	}
	return true
}

func parseHexID(s string) (objstore.ID, error) {
	var id objstore.ID
	for i := 0; i < 20; i++ {
		hi, ok1 := hexVal(s[i*2])
		lo, ok2 := hexVal(s[i*2+1])
		if !ok1 || !ok2 {
			return objstore.ID{}, errcat.Errorf(gerr.InvalidPath, "gitjfs: %q is not a valid commit id", s)
		}
		id[i] = hi<<4 | lo
	}
	return id, nil
}

func hexVal(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	default:
		return 0, false
	}
}

// IsRef reports whether this token names a ref (as opposed to a bare commit
// id).
func (t Token) IsRef() bool {
	return t.isRef
}

// CommitIDValue returns the commit id, valid only when !IsRef().
func (t Token) CommitIDValue() objstore.ID {
	return t.id
}

// RefValue returns the ref string, valid only when IsRef().
func (t Token) RefValue() string {
	return t.ref
}

// String returns the token's content without surrounding slashes (spec
// §4.1: "toString() returns the content without surrounding slashes").
func (t Token) String() string {
	if t.isRef {
		return t.ref
	}
	return t.id.String()
}

// Equal compares by tag and content.
func (t Token) Equal(o Token) bool {
	if t.isRef != o.isRef {
		return false
	}
	if t.isRef {
		return t.ref == o.ref
	}
	return t.id == o.id
}
