package gitjfs

import (
	"strings"

	"github.com/warpfork/go-errcat"

	"go.polydawn.net/gitjfs/gerr"
	"go.polydawn.net/gitjfs/gpath"
)

const scheme = "gitjfs://"

// BaseURI returns this instance's own authority-and-path prefix (spec §6):
// "gitjfs://FILE<absolute-dir>/" for a FILE instance, "gitjfs://DFS/<name>"
// (name percent-escaped) for a DFS one.
func (inst *Instance) BaseURI() string {
	switch inst.authority {
	case "FILE":
		return scheme + "FILE" + inst.location
	case "DFS":
		return scheme + "DFS/" + gpath.PercentEscape(inst.location)
	default:
		panic("gitjfs: instance has no authority")
	}
}

// ToURI renders the full URI for p: its instance's BaseURI plus a "?"
// separator and the logical path's encoded query (spec §6).
func (p Path) ToURI() string {
	return p.inst.BaseURI() + "?" + p.gp.EncodeQuery()
}

// FromURI is ToURI's inverse: it looks up the named instance in the
// default registry and decodes the query back into a Path bound to it.
// The instance must already be open; FromURI never opens one itself.
func FromURI(uri string) (Path, error) {
	if !strings.HasPrefix(uri, scheme) {
		return Path{}, errcat.Errorf(gerr.InvalidPath, "gitjfs: %q does not have the %q scheme", uri, scheme)
	}
	rest := uri[len(scheme):]
	pathPart, queryPart := rest, ""
	if idx := strings.IndexByte(rest, '?'); idx >= 0 {
		pathPart, queryPart = rest[:idx], rest[idx+1:]
	}

	var inst *Instance
	var err error
	switch {
	case strings.HasPrefix(pathPart, "FILE"):
		inst, err = defaultRegistry.lookupDir(pathPart[len("FILE"):])
	case strings.HasPrefix(pathPart, "DFS/"):
		var name string
		name, err = gpath.PercentUnescape(pathPart[len("DFS/"):])
		if err == nil {
			inst, err = defaultRegistry.lookupName(name)
		}
	default:
		err = errcat.Errorf(gerr.InvalidPath, "gitjfs: %q has an unrecognized authority", uri)
	}
	if err != nil {
		return Path{}, err
	}

	gp, err := gpath.DecodeQuery(queryPart)
	if err != nil {
		return Path{}, err
	}
	return inst.wrap(gp), nil
}
