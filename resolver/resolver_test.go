package resolver

import (
	"testing"

	"github.com/warpfork/go-errcat"

	"go.polydawn.net/gitjfs/gerr"
	"go.polydawn.net/gitjfs/ipath"
	"go.polydawn.net/gitjfs/objstore"
	"go.polydawn.net/gitjfs/testutil"
)

func treeOf(t *testing.T, store objstore.Store, commit objstore.ID) objstore.ID {
	t.Helper()
	info, err := store.Commit(commit)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	return info.TreeID
}

func mustRel(t *testing.T, s string) ipath.Path {
	t.Helper()
	p, err := ipath.Parse(s)
	if err != nil {
		t.Fatalf("Parse(%q): %s", s, err)
	}
	return p
}

func TestResolveDescendsDirectories(t *testing.T) {
	r := testutil.NewRepo()
	r.WriteFile("dir/file.txt", "hello")
	commit := r.Commit("init", nil, "dir/file.txt")
	store := r.Store()

	obj, err := Resolve(store, treeOf(t, store, commit), mustRel(t, "dir/file.txt"), FollowExceptFinal)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if obj.Mode != objstore.ModeRegularFile {
		t.Fatalf("expected a regular file, got mode %v", obj.Mode)
	}
	if obj.RealPath.String() != "/dir/file.txt" {
		t.Fatalf("unexpected real path: %q", obj.RealPath)
	}
}

func TestResolveDotDot(t *testing.T) {
	r := testutil.NewRepo()
	r.WriteFile("a/b/file.txt", "x")
	r.WriteFile("a/sibling.txt", "y")
	commit := r.Commit("init", nil, "a/b/file.txt", "a/sibling.txt")
	store := r.Store()

	obj, err := Resolve(store, treeOf(t, store, commit), mustRel(t, "a/b/../sibling.txt"), FollowExceptFinal)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if obj.RealPath.String() != "/a/sibling.txt" {
		t.Fatalf("unexpected real path: %q", obj.RealPath)
	}
}

func TestResolveDotDotAboveRootFails(t *testing.T) {
	r := testutil.NewRepo()
	r.WriteFile("file.txt", "x")
	commit := r.Commit("init", nil, "file.txt")
	store := r.Store()

	_, err := Resolve(store, treeOf(t, store, commit), mustRel(t, "../file.txt"), FollowExceptFinal)
	if errcat.Category(err) != gerr.NoSuchFile {
		t.Fatalf("expected NoSuchFile, got %v", err)
	}
}

func TestResolveSymlinkFollowedMidPath(t *testing.T) {
	r := testutil.NewRepo()
	r.WriteFile("real/file.txt", "x")
	r.WriteSymlink("link", "real")
	commit := r.Commit("init", nil, "real/file.txt", "link")
	store := r.Store()

	obj, err := Resolve(store, treeOf(t, store, commit), mustRel(t, "link/file.txt"), FollowExceptFinal)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if obj.Mode != objstore.ModeRegularFile || obj.RealPath.String() != "/real/file.txt" {
		t.Fatalf("unexpected result: %+v", obj)
	}
}

func TestResolveSymlinkAtEndNotFollowedByDefault(t *testing.T) {
	r := testutil.NewRepo()
	r.WriteFile("real.txt", "x")
	r.WriteSymlink("link.txt", "real.txt")
	commit := r.Commit("init", nil, "real.txt", "link.txt")
	store := r.Store()

	obj, err := Resolve(store, treeOf(t, store, commit), mustRel(t, "link.txt"), FollowExceptFinal)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if obj.Mode != objstore.ModeSymlink {
		t.Fatalf("expected the symlink itself, got mode %v", obj.Mode)
	}

	followed, err := Resolve(store, treeOf(t, store, commit), mustRel(t, "link.txt"), FollowAll)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if followed.Mode != objstore.ModeRegularFile {
		t.Fatalf("expected FollowAll to follow the final link, got mode %v", followed.Mode)
	}
}

func TestResolveNoFollowFailsMidPath(t *testing.T) {
	r := testutil.NewRepo()
	r.WriteFile("real/file.txt", "x")
	r.WriteSymlink("link", "real")
	commit := r.Commit("init", nil, "real/file.txt", "link")
	store := r.Store()

	_, err := Resolve(store, treeOf(t, store, commit), mustRel(t, "link/file.txt"), NoFollow)
	if errcat.Category(err) != gerr.PathCouldNotBeFound {
		t.Fatalf("expected PathCouldNotBeFound, got %v", err)
	}
}

func TestResolveAbsoluteLinkTargetFails(t *testing.T) {
	r := testutil.NewRepo()
	r.WriteSymlink("link", "/etc/passwd")
	commit := r.Commit("init", nil, "link")
	store := r.Store()

	_, err := Resolve(store, treeOf(t, store, commit), mustRel(t, "link"), FollowAll)
	if errcat.Category(err) != gerr.PathCouldNotBeFound {
		t.Fatalf("expected PathCouldNotBeFound, got %v", err)
	}
}

func TestResolveCycleDetected(t *testing.T) {
	r := testutil.NewRepo()
	r.WriteSymlink("a", "b")
	r.WriteSymlink("b", "a")
	commit := r.Commit("init", nil, "a", "b")
	store := r.Store()

	_, err := Resolve(store, treeOf(t, store, commit), mustRel(t, "a"), FollowAll)
	if errcat.Category(err) != gerr.NoSuchFile {
		t.Fatalf("expected NoSuchFile (cycle), got %v", err)
	}
}

func TestResolveFileWithTrailingNamesFails(t *testing.T) {
	r := testutil.NewRepo()
	r.WriteFile("file.txt", "x")
	commit := r.Commit("init", nil, "file.txt")
	store := r.Store()

	_, err := Resolve(store, treeOf(t, store, commit), mustRel(t, "file.txt/more"), FollowExceptFinal)
	if errcat.Category(err) != gerr.NotADirectory {
		t.Fatalf("expected NotADirectory, got %v", err)
	}
}
