/*
	Error category vocabulary for gitjfs.

	Every surfaced error in this module is built with `errcat.Errorf` or
	`errcat.ErrorDetailed` using one of the categories declared here. Callers
	recover the category with `errcat.Category(err)` and switch on it; they
	should never need to match on error string contents or do a type
	assertion to a concrete error struct.
*/
package gerr

// Category is the closed vocabulary of failure kinds a gitjfs operation can
// surface, per spec §7. It is a plain string so that it satisfies
// `errcat.Category` (an empty interface) while still being comparable and
// printable.
type Category string

const (
	// InvalidPath: syntactic parse failure of a path or URI string.
	InvalidPath Category = "invalid-path"
	// NoSuchFile: a named path does not exist in a commit tree.
	NoSuchFile Category = "no-such-file"
	// NotADirectory: attempted to descend into a non-tree object.
	NotADirectory Category = "not-a-directory"
	// NotALink: attempted to read the link target of a non-symlink.
	NotALink Category = "not-a-link"
	// AbsoluteLink: a symlink's target begins with "/".
	AbsoluteLink Category = "absolute-link"
	// PathCouldNotBeFound: existence is ambiguous because a symlink was
	// crossed under the no-follow policy, or its target was absolute.
	PathCouldNotBeFound Category = "path-could-not-be-found"
	// ReadOnlyFS: any write-shaped operation was attempted.
	ReadOnlyFS Category = "read-only-fs"
	// ClosedFS: an operation was attempted on a closed instance.
	ClosedFS Category = "closed-fs"
	// AlreadyExists: a registry key already maps to a live instance.
	AlreadyExists Category = "already-exists"
	// NotFound: a registry or URI lookup had no live match.
	NotFound Category = "not-found"
	// Unsupported: the operation has no meaning for a git-backed read-only
	// file system (hidden-file detection, file stores, watch services, ...).
	Unsupported Category = "unsupported"
	// IO: failure attributable to the underlying object store.
	IO Category = "io"
	// AccessDenied: checkAccess was asked about a mode the path does not
	// grant (e.g. execute on a non-executable file).
	AccessDenied Category = "access-denied"
	// IsADirectory: an operation that needs a non-tree object (opening a
	// byte channel) was given a directory instead.
	IsADirectory Category = "is-a-directory"
	// IllegalArgument: a caller-supplied combination of arguments is
	// self-contradictory (e.g. relativize() against an unrelated root).
	IllegalArgument Category = "illegal-argument"
	// IllegalState: an API was used outside of its documented single-use or
	// ordering contract (e.g. a second call to DirectoryStream.Iterator).
	IllegalState Category = "illegal-state"
)
