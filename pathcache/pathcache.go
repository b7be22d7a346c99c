/*
	Package pathcache implements the path cache (spec §4.6, component C6):
	the two resolver-result slots an absolute logical path carries to
	amortize repeated resolution — `real` (the follow-except-final result)
	and `link` (the follow-all result) — invalidated together whenever the
	path's root no longer resolves to the sha they were computed against.

	In the original implementation these fields live directly on the
	GitAbsolutePath object, since object identity there is already
	per-path. gitjfs's path values are plain structs copied by value, so
	the root package attaches one *Slot per constructed path the same way
	it would hold any other identity-bearing resource — analogous to how
	the teacher's fs package keeps path values cheap and immutable while
	pushing anything stateful into a side channel.
*/
package pathcache

import (
	"sync"

	"go.polydawn.net/gitjfs/objstore"
	"go.polydawn.net/gitjfs/resolver"
)

// Slot is the per-path cache record.
type Slot struct {
	mu       sync.Mutex
	haveRoot bool
	rootSha  objstore.ID
	real     *resolver.Object
	link     *resolver.Object
}

// Real returns the cached follow-except-final result if it is still valid
// against currentRootSha.
func (s *Slot) Real(currentRootSha objstore.ID) (resolver.Object, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.valid(currentRootSha) || s.real == nil {
		return resolver.Object{}, false
	}
	return *s.real, true
}

// Link returns the cached follow-all result if it is still valid against
// currentRootSha.
func (s *Slot) Link(currentRootSha objstore.ID) (resolver.Object, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.valid(currentRootSha) || s.link == nil {
		return resolver.Object{}, false
	}
	return *s.link, true
}

// StoreReal records a fresh follow-except-final result against rootSha.
// When obj is not a symlink, both follow policies necessarily agree, so
// the link slot is filled with the same value; otherwise it is cleared
// until a follow-all pass fills it in.
func (s *Slot) StoreReal(rootSha objstore.ID, obj resolver.Object) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetIfStale(rootSha)
	v := obj
	s.real = &v
	if obj.Mode == objstore.ModeSymlink {
		s.link = nil
	} else {
		link := obj
		s.link = &link
	}
}

// StoreLink records a fresh follow-all result against rootSha.
func (s *Slot) StoreLink(rootSha objstore.ID, obj resolver.Object) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetIfStale(rootSha)
	v := obj
	s.link = &v
}

// GetOrResolveReal returns the cached real object if valid, else runs
// compute and caches its result.
func (s *Slot) GetOrResolveReal(rootSha objstore.ID, compute func() (resolver.Object, error)) (resolver.Object, error) {
	if obj, ok := s.Real(rootSha); ok {
		return obj, nil
	}
	obj, err := compute()
	if err != nil {
		return resolver.Object{}, err
	}
	s.StoreReal(rootSha, obj)
	return obj, nil
}

// GetOrResolveLink returns the cached link object if valid, else runs
// compute and caches its result.
func (s *Slot) GetOrResolveLink(rootSha objstore.ID, compute func() (resolver.Object, error)) (resolver.Object, error) {
	if obj, ok := s.Link(rootSha); ok {
		return obj, nil
	}
	obj, err := compute()
	if err != nil {
		return resolver.Object{}, err
	}
	s.StoreLink(rootSha, obj)
	return obj, nil
}

func (s *Slot) valid(rootSha objstore.ID) bool {
	return s.haveRoot && s.rootSha == rootSha
}

func (s *Slot) resetIfStale(rootSha objstore.ID) {
	if !s.valid(rootSha) {
		s.rootSha = rootSha
		s.haveRoot = true
		s.real = nil
		s.link = nil
	}
}
