package model

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
)

// MaxCollisionSuffix bounds the numeric suffix search in NameRegistry.Reserve.
const MaxCollisionSuffix = 10000

// NameRegistry tracks identifiers already handed out, case-insensitively.
//
// One registry holds the table names of a single import run; BuildTableSpec
// also uses a throwaway registry per dataset for its column names.
// A NameRegistry is safe for concurrent use.
type NameRegistry struct {
	mu    sync.Mutex
	names map[string]struct{}
}

// NewNameRegistry creates a registry pre-populated with names.
func NewNameRegistry(names ...string) *NameRegistry {
	r := &NameRegistry{names: make(map[string]struct{}, len(names))}
	for _, name := range names {
		r.names[registryKey(name)] = struct{}{}
	}
	return r
}

// Reserve registers candidate, or candidate_2, candidate_3, ... when the name
// is taken, and returns the registered name. Checking and registering happen
// under one lock, so two callers never receive the same name.
func (r *NameRegistry) Reserve(candidate string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.names == nil {
		r.names = make(map[string]struct{})
	}

	if !r.containsLocked(candidate) {
		r.names[registryKey(candidate)] = struct{}{}
		return candidate, nil
	}

	for n := 2; n <= MaxCollisionSuffix; n++ {
		name := WithNumericSuffix(candidate, n)
		if !r.containsLocked(name) {
			r.names[registryKey(name)] = struct{}{}
			return name, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrNameCollisionExhausted, candidate)
}

// Release removes name from the registry. Releasing an unknown name is a no-op.
func (r *NameRegistry) Release(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.names, registryKey(name))
}

// Contains reports whether name is registered.
func (r *NameRegistry) Contains(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.containsLocked(name)
}

// Len returns the number of registered names.
func (r *NameRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.names)
}

// Names returns the registered names in sorted order.
func (r *NameRegistry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.names))
	for name := range r.names {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (r *NameRegistry) containsLocked(name string) bool {
	_, ok := r.names[registryKey(name)]
	return ok
}

func registryKey(name string) string {
	return strings.ToLower(name)
}

// WithNumericSuffix appends "_n" to name, shortening name first when the
// result would exceed MaxIdentifierLength.
func WithNumericSuffix(name string, n int) string {
	suffix := "_" + strconv.Itoa(n)
	return truncateIdentifier(name, MaxIdentifierLength-len(suffix)) + suffix
}
