package interaction

import (
	"fmt"

	"github.com/jwebster45206/quest-engine/pkg/world"
)

// Resolver finds the Action behind a world object.
type Resolver interface {
	Resolve(id world.ObjectID) (Action, bool)
}

// Registry binds world objects to their interactables. Bindings are made
// once when the scene is built.
type Registry struct {
	entries map[world.ObjectID]Interactable
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[world.ObjectID]Interactable)}
}

func (r *Registry) Register(id world.ObjectID, it Interactable) error {
	if it == nil {
		return fmt.Errorf("nil interactable for %q", id)
	}
	if _, exists := r.entries[id]; exists {
		return fmt.Errorf("object %q already has an interactable", id)
	}
	r.entries[id] = it
	return nil
}

func (r *Registry) Unregister(id world.ObjectID) {
	delete(r.entries, id)
}

func (r *Registry) Resolve(id world.ObjectID) (Action, bool) {
	it, ok := r.entries[id]
	if !ok {
		return nil, false
	}
	return it, true
}

// Lookup returns the registered interactable with its kind.
func (r *Registry) Lookup(id world.ObjectID) (Interactable, bool) {
	it, ok := r.entries[id]
	return it, ok
}

func (r *Registry) Len() int { return len(r.entries) }
