package pathcache

import (
	"testing"

	"go.polydawn.net/gitjfs/objstore"
	"go.polydawn.net/gitjfs/resolver"
)

func TestStoreRealFillsLinkForNonSymlink(t *testing.T) {
	var s Slot
	var sha objstore.ID
	sha[0] = 1

	s.StoreReal(sha, resolver.Object{Mode: objstore.ModeRegularFile})

	if _, ok := s.Real(sha); !ok {
		t.Fatal("expected real slot to be valid")
	}
	if _, ok := s.Link(sha); !ok {
		t.Fatal("expected link slot to be filled for a non-symlink real result")
	}
}

func TestStoreRealClearsLinkForSymlink(t *testing.T) {
	var s Slot
	var sha objstore.ID
	sha[0] = 1

	s.StoreReal(sha, resolver.Object{Mode: objstore.ModeSymlink})

	if _, ok := s.Real(sha); !ok {
		t.Fatal("expected real slot to be valid")
	}
	if _, ok := s.Link(sha); ok {
		t.Fatal("expected link slot to be cleared for a symlink real result")
	}

	s.StoreLink(sha, resolver.Object{Mode: objstore.ModeRegularFile})
	if _, ok := s.Link(sha); !ok {
		t.Fatal("expected link slot to be valid after StoreLink")
	}
}

func TestCacheInvalidatesOnRootChange(t *testing.T) {
	var s Slot
	var shaA, shaB objstore.ID
	shaA[0] = 1
	shaB[0] = 2

	s.StoreReal(shaA, resolver.Object{Mode: objstore.ModeRegularFile})
	if _, ok := s.Real(shaB); ok {
		t.Fatal("expected cache to be invalid against a different root sha")
	}

	s.StoreReal(shaB, resolver.Object{Mode: objstore.ModeRegularFile})
	if _, ok := s.Real(shaA); ok {
		t.Fatal("expected the stale root's entry to be gone after a fresh root is stored")
	}
	if _, ok := s.Real(shaB); !ok {
		t.Fatal("expected the fresh root's entry to be valid")
	}
}

func TestGetOrResolveOnlyComputesOnce(t *testing.T) {
	var s Slot
	var sha objstore.ID
	sha[0] = 1
	calls := 0
	compute := func() (resolver.Object, error) {
		calls++
		return resolver.Object{Mode: objstore.ModeRegularFile}, nil
	}

	if _, err := s.GetOrResolveReal(sha, compute); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if _, err := s.GetOrResolveReal(sha, compute); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if calls != 1 {
		t.Fatalf("expected compute to run once, ran %d times", calls)
	}
}
