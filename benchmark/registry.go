package benchmark

import (
	"sync"

	"github.com/pkg/errors"
)

// Registry holds the benchmark targets known to the process.
type Registry struct {
	mu      sync.RWMutex
	targets []Target
	byOwner map[string]Target
}

// DefaultRegistry is the registry package-level Register adds to, typically
// from init functions.
var DefaultRegistry = NewRegistry()

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		targets: make([]Target, 0),
		byOwner: make(map[string]Target),
	}
}

// Register adds targets to the default registry.
func Register(targets ...Target) error {
	return DefaultRegistry.Register(targets...)
}

// Register adds targets in order. Registering two targets with the same owner
// name fails with ErrConfiguration and leaves the registry unchanged.
func (r *Registry) Register(targets ...Target) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	pending := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		if t == nil {
			return configErrorf("nil benchmark target")
		}
		owner := t.Owner()
		if owner == "" {
			return configErrorf("benchmark target without owner name")
		}
		if _, exists := r.byOwner[owner]; exists {
			return configErrorf("benchmark target %s already registered", owner)
		}
		if _, exists := pending[owner]; exists {
			return configErrorf("benchmark target %s registered twice", owner)
		}
		pending[owner] = struct{}{}
	}

	for _, t := range targets {
		r.targets = append(r.targets, t)
		r.byOwner[t.Owner()] = t
	}
	return nil
}

// MustRegister is Register that panics on error.
func (r *Registry) MustRegister(targets ...Target) {
	if err := r.Register(targets...); err != nil {
		panic(err)
	}
}

// Targets returns every registered target in registration order.
func (r *Registry) Targets() []Target {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Target, len(r.targets))
	copy(out, r.targets)
	return out
}

// Discover selects the targets to benchmark.
//
// With explicit owners, exactly those targets are returned in the requested
// order; an unknown owner fails with ErrNotFound. Without owners every
// registered target exposing at least one operation is returned, restricted
// to the focused ones when any target is focused.
func (r *Registry) Discover(owners ...string) ([]Target, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(owners) > 0 {
		out := make([]Target, 0, len(owners))
		seen := make(map[string]struct{}, len(owners))
		for _, owner := range owners {
			t, ok := r.byOwner[owner]
			if !ok {
				return nil, errors.Wrapf(ErrNotFound, "benchmark target %s", owner)
			}
			if _, dup := seen[owner]; dup {
				continue
			}
			seen[owner] = struct{}{}
			if len(t.Operations()) > 0 {
				out = append(out, t)
			}
		}
		return out, nil
	}

	focused := false
	for _, t := range r.targets {
		if t.Focused() {
			focused = true
			break
		}
	}

	out := make([]Target, 0, len(r.targets))
	for _, t := range r.targets {
		if len(t.Operations()) == 0 {
			continue
		}
		if focused && !t.Focused() {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// Cases discovers the targets for owners and expands them into cases in
// discovery order.
func (r *Registry) Cases(batchSize int, owners ...string) ([]Case, error) {
	targets, err := r.Discover(owners...)
	if err != nil {
		return nil, err
	}

	cases := make([]Case, 0)
	for _, t := range targets {
		expanded, err := t.Cases(batchSize)
		if err != nil {
			return nil, err
		}
		cases = append(cases, expanded...)
	}
	return cases, nil
}
