// Package registry maps canonical team and venue identifiers to stable
// integer handles so aggregator state can be indexed by slot instead of by
// string key.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Handle is a stable index for one canonical identifier. Handles are dense
// and start at 0 in registration order.
type Handle int

// None marks a missing handle.
const None Handle = -1

// Kind names the entity namespace a registry holds.
type Kind string

const (
	KindTeam  Kind = "team"
	KindVenue Kind = "venue"
)

// ErrUnknownEntity is matched by errors.Is for every *UnknownEntityError.
var ErrUnknownEntity = errors.New("unknown entity")

// UnknownEntityError is returned when a query names a team or venue that the
// canonical mapping does not contain.
type UnknownEntityError struct {
	Kind Kind
	Name string
}

func (e *UnknownEntityError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Kind, e.Name)
}

func (e *UnknownEntityError) Is(target error) bool { return target == ErrUnknownEntity }

// Registry is safe for concurrent use. Interning is expected at load time;
// query paths only call Lookup.
type Registry struct {
	kind  Kind
	mu    sync.RWMutex
	ids   map[string]Handle
	names []string
}

// New creates an empty registry for one namespace.
func New(kind Kind) *Registry {
	return &Registry{kind: kind, ids: make(map[string]Handle)}
}

// Intern returns the handle for name, registering it if needed.
func (r *Registry) Intern(name string) Handle {
	r.mu.RLock()
	h, ok := r.ids[name]
	r.mu.RUnlock()
	if ok {
		return h
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.ids[name]; ok {
		return h
	}
	h = Handle(len(r.names))
	r.ids[name] = h
	r.names = append(r.names, name)
	return h
}

// Lookup returns the handle for name without registering it.
func (r *Registry) Lookup(name string) (Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.ids[name]
	return h, ok
}

// Resolve is Lookup that reports a miss as *UnknownEntityError.
func (r *Registry) Resolve(name string) (Handle, error) {
	if h, ok := r.Lookup(name); ok {
		return h, nil
	}
	return None, &UnknownEntityError{Kind: r.kind, Name: name}
}

// Names returns all identifiers sorted alphabetically.
func (r *Registry) Names() []string {
	r.mu.RLock()
	out := make([]string, len(r.names))
	copy(out, r.names)
	r.mu.RUnlock()
	sort.Strings(out)
	return out
}
