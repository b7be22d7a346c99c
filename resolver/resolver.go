/*
	Package resolver implements the tree resolver (spec §4.4, component
	C4): walking a commit's root tree along a relative internal path,
	honoring "." and "..", following symlinks under one of three policies,
	and detecting cycles.

	The algorithm is ported directly from the original implementation's
	GitFileSystemImpl.getGitObject: a stack of tree ids standing in for the
	directories on the path so far, a deque of "remaining names" that link
	targets get spliced into, and a visited set of (top-of-stack tree,
	remaining names) pairs that catches link cycles the same way a
	depth-first search catches a back edge. JGit's TreeWalk cursor is
	replaced by direct, one-shot lookups against objstore.Store, since
	gitjfs has no equivalent reusable cursor object to carry across loop
	iterations.
*/
package resolver

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/warpfork/go-errcat"

	"go.polydawn.net/gitjfs/gerr"
	"go.polydawn.net/gitjfs/ipath"
	"go.polydawn.net/gitjfs/objstore"
)

// FollowPolicy selects how symlinks are treated during resolution.
type FollowPolicy int

const (
	// NoFollow never follows a symlink. A link at a non-final position
	// fails with path-could-not-be-found, since its target is needed to
	// keep descending but the caller asked not to read it.
	NoFollow FollowPolicy = iota
	// FollowExceptFinal follows every symlink except one that is the last
	// element of the path (the default of ReadAttributes, CheckAccess,
	// NewByteChannel and NewDirectoryStream).
	FollowExceptFinal
	// FollowAll follows every symlink encountered, including the last.
	FollowAll
)

func (b FollowPolicy) String() string {
	switch b {
	case NoFollow:
		return "no-follow"
	case FollowExceptFinal:
		return "follow-except-final"
	case FollowAll:
		return "follow-all"
	default:
		return "unknown"
	}
}

// Object is a GitObject: a path verified to exist in a commit's tree,
// together with the id and mode found there.
type Object struct {
	RealPath ipath.Path // absolute
	ID       objstore.ID
	Mode     objstore.Mode
}

type visitKey struct {
	tree      objstore.ID
	remaining string
}

// Resolve walks rootTree along relativePath (a relative internal path;
// "." and ".." segments are honored literally, so pass an
// un-normalized path) and returns the Object found.
func Resolve(store objstore.Store, rootTree objstore.ID, relativePath ipath.Path, policy FollowPolicy) (Object, error) {
	if relativePath.IsAbsolute() {
		return Object{}, errcat.Errorf(gerr.IllegalArgument, "gitjfs: resolver needs a relative path, got %q", relativePath)
	}

	trees := []objstore.ID{rootTree}
	visited := make(map[visitKey]bool)
	remaining := relativePath.Names()

	currentPath := ipath.Root()
	current := Object{RealPath: currentPath, ID: rootTree, Mode: objstore.ModeTree}

	logrus.WithFields(logrus.Fields{"path": relativePath, "policy": policy}).Debug("resolver: starting search")

	for len(remaining) > 0 {
		key := visitKey{tree: trees[len(trees)-1], remaining: strings.Join(remaining, "\x00")}
		if visited[key] {
			return Object{}, errcat.Errorf(gerr.NoSuchFile, "gitjfs: cycle detected at %v", remaining)
		}
		visited[key] = true

		name := remaining[0]
		remaining = remaining[1:]
		logrus.WithField("name", name).Debug("resolver: considering name")

		switch name {
		case ".", "":
			// Do nothing.

		case "..":
			if len(trees) <= 1 {
				return Object{}, errcat.Errorf(gerr.NoSuchFile, "gitjfs: attempt to move to parent of root")
			}
			trees = trees[:len(trees)-1]
			parent, ok := currentPath.Parent()
			if !ok {
				return Object{}, errcat.Errorf(gerr.NoSuchFile, "gitjfs: attempt to move to parent of root")
			}
			currentPath = parent
			current = Object{RealPath: currentPath, ID: trees[len(trees)-1], Mode: objstore.ModeTree}

		default:
			childPath := joinName(currentPath, name)
			entry, found, err := lookupChild(store, trees[len(trees)-1], name)
			if err != nil {
				return Object{}, err
			}
			if !found {
				return Object{}, errcat.Errorf(gerr.NoSuchFile, "gitjfs: could not find %q", childPath)
			}
			currentPath = childPath
			current = Object{RealPath: currentPath, ID: entry.ID, Mode: entry.Mode}

			switch entry.Mode {
			case objstore.ModeRegularFile, objstore.ModeExecutable:
				if len(remaining) > 0 {
					return Object{}, errcat.Errorf(gerr.NotADirectory, "gitjfs: %q is a file, but remaining path is %v", childPath, remaining)
				}

			case objstore.ModeGitlink:
				if len(remaining) > 0 {
					return Object{}, errcat.Errorf(gerr.NotADirectory, "gitjfs: %q is a gitlink, but remaining path is %v", childPath, remaining)
				}

			case objstore.ModeSymlink:
				var followThisLink bool
				switch policy {
				case NoFollow:
					if len(remaining) > 0 {
						return Object{}, errcat.Errorf(gerr.PathCouldNotBeFound, "gitjfs: %q is a link, but links may not be followed, and remaining path is %v", childPath, remaining)
					}
					followThisLink = false
				case FollowAll:
					followThisLink = true
				case FollowExceptFinal:
					followThisLink = len(remaining) > 0
				}
				if followThisLink {
					target, err := readLinkTarget(store, entry.ID)
					if err != nil {
						return Object{}, err
					}
					if target.IsAbsolute() {
						return Object{}, errcat.Errorf(gerr.PathCouldNotBeFound, "gitjfs: symlink %q has absolute target %q", childPath, target)
					}
					logrus.WithFields(logrus.Fields{"link": childPath, "target": target}).Debug("resolver: following link")
					parent, ok := currentPath.Parent()
					if !ok {
						return Object{}, errcat.Errorf(gerr.NoSuchFile, "gitjfs: link %q has no parent", childPath)
					}
					currentPath = parent
					remaining = append(append([]string{}, target.Names()...), remaining...)
				}

			case objstore.ModeTree:
				logrus.WithField("path", childPath).Debug("resolver: entering tree")
				trees = append(trees, entry.ID)

			default:
				return Object{}, errcat.Errorf(gerr.Unsupported, "gitjfs: unknown object mode %v at %q", entry.Mode, childPath)
			}
		}
	}
	return current, nil
}

func joinName(base ipath.Path, name string) ipath.Path {
	rel, err := ipath.New(false, name)
	if err != nil {
		panic(err) // name came from a tree entry or an already-validated path; cannot be malformed.
	}
	return base.Resolve(rel)
}

func lookupChild(store objstore.Store, treeID objstore.ID, name string) (objstore.Entry, bool, error) {
	it, err := store.TreeEntries(treeID)
	if err != nil {
		return objstore.Entry{}, false, err
	}
	defer it.Close()
	for {
		e, err := it.Next()
		if err == io.EOF {
			return objstore.Entry{}, false, nil
		}
		if err != nil {
			return objstore.Entry{}, false, err
		}
		if e.Name == name {
			return e, true, nil
		}
	}
}

// readLinkTarget reads a symlink blob's content as a relative internal
// path (spec §4.4: the blob bytes are the link's target, UTF-8 encoded).
func readLinkTarget(store objstore.Store, id objstore.ID) (ipath.Path, error) {
	r, err := store.OpenBlob(id)
	if err != nil {
		return ipath.Path{}, err
	}
	defer r.Close()
	content, err := io.ReadAll(r)
	if err != nil {
		return ipath.Path{}, errcat.Errorf(gerr.IO, "gitjfs: could not read symlink target: %s", err)
	}
	return ipath.Parse(string(content))
}
