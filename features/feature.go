package features

import (
	"context"
	"fmt"
	"sync/atomic"

	"alphatron/actions"
	"alphatron/models"
)

// Feature is an independent unit of bot behaviour that reacts to events.
//
// OnEvent must eventually call actions.Ready exactly once on every
// invocation, including when the feature decides not to act, and may only
// call actions.Add before that. The work after OnEvent returns may continue
// on another goroutine.
type Feature interface {
	Name() string
	OnEvent(ctx context.Context, event models.Event, actions *actions.ActionSet)
}

// Registry holds the set of loaded features. The set is replaced as a
// whole, so readers always see a consistent snapshot.
type Registry struct {
	features atomic.Pointer[[]Feature]
}

func NewRegistry(features ...Feature) *Registry {
	r := &Registry{}
	r.Replace(features...)
	return r
}

// Replace swaps the registered features. Duplicate names panic.
func (r *Registry) Replace(features ...Feature) {
	seen := make(map[string]bool, len(features))
	for _, f := range features {
		if seen[f.Name()] {
			panic(fmt.Sprintf("feature %q registered twice", f.Name()))
		}
		seen[f.Name()] = true
	}

	snapshot := make([]Feature, len(features))
	copy(snapshot, features)
	r.features.Store(&snapshot)
}

// Snapshot returns the features loaded at the time of the call.
func (r *Registry) Snapshot() []Feature {
	return *r.features.Load()
}

func (r *Registry) Len() int {
	return len(r.Snapshot())
}

func (r *Registry) Names() []string {
	snapshot := r.Snapshot()
	names := make([]string, 0, len(snapshot))
	for _, f := range snapshot {
		names = append(names, f.Name())
	}
	return names
}
