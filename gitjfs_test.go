package gitjfs

import (
	"io"
	"testing"

	"github.com/warpfork/go-errcat"
	"gopkg.in/src-d/go-git.v4/plumbing"

	"go.polydawn.net/gitjfs/gerr"
	"go.polydawn.net/gitjfs/objstore"
	"go.polydawn.net/gitjfs/testutil"
)

func openFixture(t *testing.T, name string) (*Instance, *testutil.Repo) {
	t.Helper()
	r := testutil.NewRepo()
	r.WriteFile("dir/file.txt", "hello")
	r.WriteExecutable("run.sh", "#!/bin/sh\n")
	r.WriteSymlink("link.txt", "dir/file.txt")
	commit := r.Commit("init", nil, "dir/file.txt", "run.sh", "link.txt")
	r.SetRef("refs/heads/main", commit)

	inst, err := OpenDFS(name, r.Store())
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	t.Cleanup(func() { inst.Close() })
	return inst, r
}

func TestOpenDFSRejectsDuplicateName(t *testing.T) {
	openFixture(t, "dup-name")
	r := testutil.NewRepo()
	r.WriteFile("f", "x")
	r.Commit("c", nil, "f")
	_, err := OpenDFS("dup-name", r.Store())
	if errcat.Category(err) != gerr.AlreadyExists {
		t.Fatalf("expected AlreadyExists, got %v", err)
	}
}

func TestGetPathRootAndReadAttributes(t *testing.T) {
	inst, r := openFixture(t, "attrs-test")
	commit := mustHead(t, r)

	root := inst.GetPathRoot(commit)
	p, err := root.Resolve(relPath(t, inst, "dir/file.txt"))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	attrs, err := inst.ReadAttributes(p)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !attrs.IsRegularFile || attrs.Size != int64(len("hello")) {
		t.Fatalf("unexpected attrs: %+v", attrs)
	}
}

func TestCheckAccessAllowsExecuteOnExecutable(t *testing.T) {
	inst, r := openFixture(t, "attrs-exec")
	commit := mustHead(t, r)
	p, err := inst.GetPathRoot(commit).Resolve(relPath(t, inst, "run.sh"))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if err := inst.CheckAccess(p, Read, Execute); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
}

func TestCheckAccessDeniesExecuteOnPlainFile(t *testing.T) {
	inst, r := openFixture(t, "access-test")
	commit := mustHead(t, r)
	p, err := inst.GetPathRoot(commit).Resolve(relPath(t, inst, "dir/file.txt"))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if err := inst.CheckAccess(p, Execute); errcat.Category(err) != gerr.AccessDenied {
		t.Fatalf("expected AccessDenied, got %v", err)
	}
}

func TestCheckAccessDeniesWrite(t *testing.T) {
	inst, r := openFixture(t, "access-write")
	commit := mustHead(t, r)
	p, err := inst.GetPathRoot(commit).Resolve(relPath(t, inst, "dir/file.txt"))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if err := inst.CheckAccess(p, Write); errcat.Category(err) != gerr.ReadOnlyFS {
		t.Fatalf("expected ReadOnlyFS, got %v", err)
	}
}

func TestMutatingOperationsFailReadOnly(t *testing.T) {
	inst, r := openFixture(t, "mutating-ops")
	commit := mustHead(t, r)
	p, err := inst.GetPathRoot(commit).Resolve(relPath(t, inst, "dir/file.txt"))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	other, err := inst.GetPathRoot(commit).Resolve(relPath(t, inst, "run.sh"))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	checks := []struct {
		name string
		err  error
	}{
		{"CreateDirectory", inst.CreateDirectory(p)},
		{"CreateLink", inst.CreateLink(p, other)},
		{"CreateSymbolicLink", inst.CreateSymbolicLink(p, "dir/file.txt")},
		{"Delete", inst.Delete(p)},
		{"DeleteIfExists", inst.DeleteIfExists(p)},
		{"Copy", inst.Copy(p, other)},
		{"Move", inst.Move(p, other)},
		{"SetAttribute", inst.SetAttribute(p, "owner", "nobody")},
	}
	for _, c := range checks {
		if errcat.Category(c.err) != gerr.ReadOnlyFS {
			t.Fatalf("%s: expected ReadOnlyFS, got %v", c.name, c.err)
		}
	}
}

func TestUnsupportedOperationsFail(t *testing.T) {
	inst, r := openFixture(t, "unsupported-ops")
	commit := mustHead(t, r)
	p, err := inst.GetPathRoot(commit).Resolve(relPath(t, inst, "dir/file.txt"))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	other, err := inst.GetPathRoot(commit).Resolve(relPath(t, inst, "run.sh"))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if errcat.Category(inst.FileStores()) != gerr.Unsupported {
		t.Fatalf("FileStores: expected Unsupported")
	}
	if errcat.Category(inst.NewWatchService()) != gerr.Unsupported {
		t.Fatalf("NewWatchService: expected Unsupported")
	}
	if errcat.Category(inst.UserPrincipalLookupService()) != gerr.Unsupported {
		t.Fatalf("UserPrincipalLookupService: expected Unsupported")
	}
	if errcat.Category(inst.PathMatcher("glob:*.txt")) != gerr.Unsupported {
		t.Fatalf("PathMatcher: expected Unsupported")
	}
	if _, err := inst.IsHidden(p); errcat.Category(err) != gerr.Unsupported {
		t.Fatalf("IsHidden: expected Unsupported, got %v", err)
	}
	if _, err := inst.IsSameFile(p, other); errcat.Category(err) != gerr.Unsupported {
		t.Fatalf("IsSameFile: expected Unsupported, got %v", err)
	}
	if errcat.Category(inst.FileStore(p)) != gerr.Unsupported {
		t.Fatalf("FileStore: expected Unsupported")
	}
	if errcat.Category(inst.FileAttributeView(p, "posix")) != gerr.Unsupported {
		t.Fatalf("FileAttributeView: expected Unsupported")
	}
}

func TestNewByteChannelReadsContent(t *testing.T) {
	inst, r := openFixture(t, "bytechannel-test")
	commit := mustHead(t, r)
	p, err := inst.GetPathRoot(commit).Resolve(relPath(t, inst, "dir/file.txt"))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	ch, err := inst.NewByteChannel(p)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	defer ch.Close()
	data, err := io.ReadAll(ch)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if string(data) != "hello" {
		t.Fatalf("unexpected content: %q", data)
	}
	if ch.Size() != 5 {
		t.Fatalf("unexpected size: %d", ch.Size())
	}
}

func TestNewByteChannelFailsOnDirectory(t *testing.T) {
	inst, r := openFixture(t, "bytechannel-dir")
	commit := mustHead(t, r)
	p, err := inst.GetPathRoot(commit).Resolve(relPath(t, inst, "dir"))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	_, err = inst.NewByteChannel(p)
	if errcat.Category(err) != gerr.IsADirectory {
		t.Fatalf("expected IsADirectory, got %v", err)
	}
}

func TestReadSymbolicLink(t *testing.T) {
	inst, r := openFixture(t, "link-test")
	commit := mustHead(t, r)
	p, err := inst.GetPathRoot(commit).Resolve(relPath(t, inst, "link.txt"))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	target, err := inst.ReadSymbolicLink(p)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if target != "dir/file.txt" {
		t.Fatalf("unexpected target: %q", target)
	}
}

func TestToRealPathFollowsLink(t *testing.T) {
	inst, r := openFixture(t, "realpath-test")
	commit := mustHead(t, r)
	linkPath, err := inst.GetPathRoot(commit).Resolve(relPath(t, inst, "link.txt"))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	want, err := inst.GetPathRoot(commit).Resolve(relPath(t, inst, "dir/file.txt"))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	real, err := inst.ToRealPath(linkPath)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !real.Equal(want) {
		t.Fatalf("unexpected real path: %q, want %q", real, want)
	}
}

func TestDirectoryStreamListsChildren(t *testing.T) {
	inst, r := openFixture(t, "dirstream-test")
	commit := mustHead(t, r)
	root := inst.GetPathRoot(commit)

	ds, err := inst.NewDirectoryStream(root, nil)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	defer ds.Close()
	it, err := ds.Iterator()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	var names []string
	for {
		has, err := it.HasNext()
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if !has {
			break
		}
		e, err := it.Next()
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		fn, _ := e.Path.FileName()
		names = append(names, fn.String())
	}
	if len(names) != 3 {
		t.Fatalf("expected 3 entries, got %v", names)
	}
}

func TestDirectoryStreamSecondIteratorFails(t *testing.T) {
	inst, r := openFixture(t, "dirstream-second")
	commit := mustHead(t, r)
	ds, err := inst.NewDirectoryStream(inst.GetPathRoot(commit), nil)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	defer ds.Close()
	if _, err := ds.Iterator(); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if _, err := ds.Iterator(); errcat.Category(err) != gerr.IllegalState {
		t.Fatalf("expected IllegalState, got %v", err)
	}
}

func TestCloseClosesOutstandingStreams(t *testing.T) {
	inst, r := openFixture(t, "close-streams")
	commit := mustHead(t, r)
	ds, err := inst.NewDirectoryStream(inst.GetPathRoot(commit), nil)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if err := inst.Close(); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if _, err := ds.fill(); errcat.Category(err) != gerr.ClosedFS {
		t.Fatalf("expected the stream to already be closed, got %v", err)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	inst, _ := openFixture(t, "close-idempotent")
	if err := inst.Close(); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if err := inst.Close(); err != nil {
		t.Fatalf("second close should be a no-op, got %s", err)
	}
}

func TestOperationsFailOnClosedInstance(t *testing.T) {
	inst, r := openFixture(t, "closed-ops")
	commit := mustHead(t, r)
	p := inst.GetPathRoot(commit)
	inst.Close()
	if _, err := inst.ReadAttributes(p); errcat.Category(err) != gerr.ClosedFS {
		t.Fatalf("expected ClosedFS, got %v", err)
	}
}

func TestRefsAndRootDirectories(t *testing.T) {
	inst, r := openFixture(t, "refs-test")
	_ = mustHead(t, r)
	refs, err := inst.Refs()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(refs) != 1 {
		t.Fatalf("expected exactly one ref, got %v", refs)
	}

	roots, err := inst.RootDirectories()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(roots) != 1 {
		t.Fatalf("expected exactly one root directory, got %v", roots)
	}
}

func TestDiffBetweenCommits(t *testing.T) {
	inst, r := openFixture(t, "diff-test")
	c1 := mustHead(t, r)
	r.WriteFile("dir/file.txt", "goodbye")
	c2 := r.Commit("second", []plumbing.Hash{plumbing.Hash(c1)}, "dir/file.txt")
	r.SetRef("refs/heads/main", c2)

	changes, err := inst.Diff(inst.GetPathRoot(c1), inst.GetPathRoot(c2))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(changes) != 1 || changes[0].Type != objstore.ChangeModify {
		t.Fatalf("unexpected changes: %+v", changes)
	}
}

func TestURIRoundTrip(t *testing.T) {
	inst, r := openFixture(t, "uri-roundtrip")
	commit := mustHead(t, r)
	p, err := inst.GetPathRoot(commit).Resolve(relPath(t, inst, "dir/file.txt"))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	uri := p.ToURI()
	back, err := FromURI(uri)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !back.Equal(p) {
		t.Fatalf("round trip mismatch: %q != %q", back, p)
	}
}

func TestGetPathDispatchesOnLeadingSlash(t *testing.T) {
	inst, _ := openFixture(t, "getpath-test")
	rel, err := inst.GetPath("a", "b")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if rel.IsAbsolute() {
		t.Fatalf("expected a relative path, got %q", rel)
	}

	abs, err := inst.GetPath("/refs/heads/main", "/a/b")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !abs.IsAbsolute() {
		t.Fatalf("expected an absolute path, got %q", abs)
	}
}

func mustHead(t *testing.T, r *testutil.Repo) objstore.ID {
	t.Helper()
	id, ok, err := r.Store().ResolveRef("refs/heads/main")
	if err != nil || !ok {
		t.Fatalf("could not resolve refs/heads/main: ok=%v err=%v", ok, err)
	}
	return id
}

func relPath(t *testing.T, inst *Instance, s string) Path {
	t.Helper()
	p, err := inst.GetPath(s)
	if err != nil {
		t.Fatalf("GetPath(%q): %s", s, err)
	}
	return p
}

