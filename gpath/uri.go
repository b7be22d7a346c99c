package gpath

import (
	"strings"

	"github.com/warpfork/go-errcat"

	"go.polydawn.net/gitjfs/gerr"
	"go.polydawn.net/gitjfs/ipath"
	"go.polydawn.net/gitjfs/rev"
)

// EncodeQuery renders this path's URI query suffix per spec §6:
//
//	query := [ "root=" enc(revtoken) "&" ] "internal-path=" enc(path)
//	enc   := percent-escape {'&','=','?','%'} leave '/' literal
//
// The "root=" pair is present only for absolute paths; "internal-path="
// is always present. Pairing this with a file-system's own
// "gitjfs://<authority><path>?" prefix is the registry's job (C8), since
// EncodeQuery has no notion of which instance a path belongs to.
func (p Path) EncodeQuery() string {
	var b strings.Builder
	if p.absolute {
		b.WriteString("root=")
		b.WriteString(percentEscape(p.token.String()))
		b.WriteString("&")
	}
	b.WriteString("internal-path=")
	b.WriteString(percentEscape(p.internal.String()))
	return b.String()
}

// DecodeQuery is EncodeQuery's inverse: given just the query string (no
// leading "?"), it reconstructs the Path. A query with no "root=" pair
// decodes to a relative path.
func DecodeQuery(query string) (Path, error) {
	var rootStr, internalStr string
	haveRoot, haveInternal := false, false
	for _, pair := range strings.Split(query, "&") {
		if pair == "" {
			continue
		}
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 {
			return Path{}, errcat.Errorf(gerr.InvalidPath, "gitjfs: malformed query fragment %q", pair)
		}
		val, err := percentUnescape(kv[1])
		if err != nil {
			return Path{}, err
		}
		switch kv[0] {
		case "root":
			rootStr, haveRoot = val, true
		case "internal-path":
			internalStr, haveInternal = val, true
		default:
			return Path{}, errcat.Errorf(gerr.InvalidPath, "gitjfs: unknown query key %q", kv[0])
		}
	}
	if !haveInternal {
		return Path{}, errcat.Errorf(gerr.InvalidPath, "gitjfs: query %q is missing internal-path", query)
	}
	internal, err := ipath.Parse(internalStr)
	if err != nil {
		return Path{}, err
	}
	if !haveRoot {
		return Relative(internal)
	}
	tok, err := rev.ParseRoot(rootStr)
	if err != nil {
		return Path{}, err
	}
	return Absolute(tok, internal)
}

// PercentEscape escapes '&', '=', '?', and '%' with %XX, leaving '/' and
// everything else literal — the "enc" rule of spec §6, also used by the
// registry (C8) to encode a DFS instance's descriptive name.
func PercentEscape(s string) string {
	return percentEscape(s)
}

// PercentUnescape is PercentEscape's inverse.
func PercentUnescape(s string) (string, error) {
	return percentUnescape(s)
}

func percentEscape(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '&', '=', '?', '%':
			b.WriteByte('%')
			b.WriteByte(hexDigit(c >> 4))
			b.WriteByte(hexDigit(c & 0xf))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func percentUnescape(s string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(s); {
		if s[i] != '%' {
			b.WriteByte(s[i])
			i++
			continue
		}
		if i+2 >= len(s) {
			return "", errcat.Errorf(gerr.InvalidPath, "gitjfs: truncated percent-escape in %q", s)
		}
		hi, ok1 := hexVal(s[i+1])
		lo, ok2 := hexVal(s[i+2])
		if !ok1 || !ok2 {
			return "", errcat.Errorf(gerr.InvalidPath, "gitjfs: invalid percent-escape in %q", s)
		}
		b.WriteByte(hi<<4 | lo)
		i += 3
	}
	return b.String(), nil
}

func hexDigit(n byte) byte {
	if n < 10 {
		return '0' + n
	}
	return 'A' + (n - 10)
}

func hexVal(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}
