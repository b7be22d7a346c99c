package gitjfs

import (
	"github.com/warpfork/go-errcat"

	"go.polydawn.net/gitjfs/gerr"
)

// The methods below cover spec §1's "mutating operations unconditionally
// fail with read-only-fs; unsupported read operations fail with
// unsupported" contract. None of them has any real body: the category is
// the whole answer, and every one of them checks Instance.checkOpen first
// only so a closed instance reports ClosedFS rather than pretending the
// write would otherwise have succeeded.

// CreateDirectory always fails: the file system is read-only.
func (inst *Instance) CreateDirectory(p Path) error {
	if err := inst.checkOpen(); err != nil {
		return err
	}
	return errcat.Errorf(gerr.ReadOnlyFS, "gitjfs: %q: file system is read-only", p)
}

// CreateLink always fails: the file system is read-only.
func (inst *Instance) CreateLink(link, target Path) error {
	if err := inst.checkOpen(); err != nil {
		return err
	}
	return errcat.Errorf(gerr.ReadOnlyFS, "gitjfs: %q: file system is read-only", link)
}

// CreateSymbolicLink always fails: the file system is read-only.
func (inst *Instance) CreateSymbolicLink(link Path, target string) error {
	if err := inst.checkOpen(); err != nil {
		return err
	}
	return errcat.Errorf(gerr.ReadOnlyFS, "gitjfs: %q: file system is read-only", link)
}

// Delete always fails: the file system is read-only.
func (inst *Instance) Delete(p Path) error {
	if err := inst.checkOpen(); err != nil {
		return err
	}
	return errcat.Errorf(gerr.ReadOnlyFS, "gitjfs: %q: file system is read-only", p)
}

// DeleteIfExists always fails: the file system is read-only, regardless of
// whether p exists.
func (inst *Instance) DeleteIfExists(p Path) error {
	if err := inst.checkOpen(); err != nil {
		return err
	}
	return errcat.Errorf(gerr.ReadOnlyFS, "gitjfs: %q: file system is read-only", p)
}

// Copy always fails: the file system is read-only.
func (inst *Instance) Copy(src, dst Path) error {
	if err := inst.checkOpen(); err != nil {
		return err
	}
	return errcat.Errorf(gerr.ReadOnlyFS, "gitjfs: %q: file system is read-only", dst)
}

// Move always fails: the file system is read-only.
func (inst *Instance) Move(src, dst Path) error {
	if err := inst.checkOpen(); err != nil {
		return err
	}
	return errcat.Errorf(gerr.ReadOnlyFS, "gitjfs: %q: file system is read-only", dst)
}

// SetAttribute always fails: the file system is read-only.
func (inst *Instance) SetAttribute(p Path, name string, value interface{}) error {
	if err := inst.checkOpen(); err != nil {
		return err
	}
	return errcat.Errorf(gerr.ReadOnlyFS, "gitjfs: %q: file system is read-only", p)
}

// FileStores always fails: a git object store has no notion of the
// underlying host file stores java.nio.file.FileSystem.getFileStores
// enumerates.
func (inst *Instance) FileStores() error {
	if err := inst.checkOpen(); err != nil {
		return err
	}
	return errcat.Errorf(gerr.Unsupported, "gitjfs: file stores are not applicable to a git object store")
}

// NewWatchService always fails: a git object store has nothing analogous to
// a host file system's change-notification API, and this file system is
// read-only besides.
func (inst *Instance) NewWatchService() error {
	if err := inst.checkOpen(); err != nil {
		return err
	}
	return errcat.Errorf(gerr.Unsupported, "gitjfs: watch services are not applicable to a read-only git object store")
}

// UserPrincipalLookupService always fails: git objects carry no owner/group
// principal to look up.
func (inst *Instance) UserPrincipalLookupService() error {
	if err := inst.checkOpen(); err != nil {
		return err
	}
	return errcat.Errorf(gerr.Unsupported, "gitjfs: user principal lookup is not applicable to a git object store")
}

// PathMatcher always fails: this file system defines no glob/regex matcher
// syntax of its own.
func (inst *Instance) PathMatcher(syntaxAndPattern string) error {
	if err := inst.checkOpen(); err != nil {
		return err
	}
	return errcat.Errorf(gerr.Unsupported, "gitjfs: %q: no path matcher syntax is supported", syntaxAndPattern)
}

// IsHidden always fails: git has no per-entry hidden flag independent of
// the entry's name (a leading "." is just a name, not a mode bit).
func (inst *Instance) IsHidden(p Path) (bool, error) {
	if err := inst.checkOpen(); err != nil {
		return false, err
	}
	return false, errcat.Errorf(gerr.Unsupported, "gitjfs: %q: hidden-file detection is not supported", p)
}

// IsSameFile always fails: spec §1 lists it among the unsupported read
// operations rather than defining it in terms of Path.Equal.
func (inst *Instance) IsSameFile(a, b Path) (bool, error) {
	if err := inst.checkOpen(); err != nil {
		return false, err
	}
	return false, errcat.Errorf(gerr.Unsupported, "gitjfs: %q, %q: isSameFile is not supported", a, b)
}

// FileStore always fails, for the same reason FileStores does.
func (inst *Instance) FileStore(p Path) error {
	if err := inst.checkOpen(); err != nil {
		return err
	}
	return errcat.Errorf(gerr.Unsupported, "gitjfs: %q: file stores are not applicable to a git object store", p)
}

// FileAttributeView always fails, whatever the view name, "basic" included;
// no attribute view object is returned. Basic attributes are read with
// ReadAttributes instead.
func (inst *Instance) FileAttributeView(p Path, name string) error {
	if err := inst.checkOpen(); err != nil {
		return err
	}
	return errcat.Errorf(gerr.Unsupported, "gitjfs: %q: attribute view %q is not supported", p, name)
}
