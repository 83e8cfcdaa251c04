// Package registry holds the process-wide collaborators populated by the
// start-up route walk: the version registry, which answers which API
// versions a route prefix exposes, and the overload registries, which
// enforce admission-control limits per versioned path.
//
// All registries are safe for concurrent use: they are written by the route
// walk at start-up and read by request goroutines afterwards.
package registry

import (
	"sort"
	"sync"
)

// Versions is an in-memory version registry keyed by route prefix.
// Duplicate registrations are ignored.
type Versions struct {
	mu       sync.RWMutex
	versions map[string]map[int]struct{}
}

// NewVersions returns an empty registry.
func NewVersions() *Versions {
	return &Versions{versions: make(map[string]map[int]struct{})}
}

// Register records that prefix exposes version.
func (v *Versions) Register(prefix string, version int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	set, ok := v.versions[prefix]
	if !ok {
		set = make(map[int]struct{})
		v.versions[prefix] = set
	}
	set[version] = struct{}{}
}

// List returns the versions registered for prefix in ascending order.
func (v *Versions) List(prefix string) []int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	set := v.versions[prefix]
	out := make([]int, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// Latest returns the highest version registered for prefix; ok is false when
// the prefix is unknown.
func (v *Versions) Latest(prefix string) (version int, ok bool) {
	list := v.List(prefix)
	if len(list) == 0 {
		return 0, false
	}
	return list[len(list)-1], true
}

// Snapshot returns a copy of every prefix with its sorted versions.
func (v *Versions) Snapshot() map[string][]int {
	v.mu.RLock()
	prefixes := make([]string, 0, len(v.versions))
	for p := range v.versions {
		prefixes = append(prefixes, p)
	}
	v.mu.RUnlock()

	out := make(map[string][]int, len(prefixes))
	for _, p := range prefixes {
		out[p] = v.List(p)
	}
	return out
}
