package world

import (
	"fmt"
	"log/slog"
	"sort"
)

// ObjectID identifies a world object for the lifetime of a scene.
type ObjectID string

// Object is a scene object the core can see or toggle.
type Object struct {
	ID     ObjectID
	Name   string
	Tag    string
	Active bool
}

// Scene is the registry of world objects for one loaded scene.
type Scene struct {
	Name    string
	objects map[ObjectID]*Object
	order   []ObjectID
}

func NewScene(name string) *Scene {
	return &Scene{
		Name:    name,
		objects: make(map[ObjectID]*Object),
	}
}

// Add registers obj. IDs must be unique within the scene.
func (s *Scene) Add(obj *Object) error {
	if obj.ID == "" {
		return fmt.Errorf("object %q has no id", obj.Name)
	}
	if _, exists := s.objects[obj.ID]; exists {
		return fmt.Errorf("object id %q already in scene %q", obj.ID, s.Name)
	}
	s.objects[obj.ID] = obj
	s.order = append(s.order, obj.ID)
	return nil
}

// Object returns nil when id is unknown.
func (s *Scene) Object(id ObjectID) *Object { return s.objects[id] }

// Objects returns all objects in insertion order.
func (s *Scene) Objects() []*Object {
	out := make([]*Object, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.objects[id])
	}
	return out
}

// FindByTag returns the objects carrying tag, in insertion order.
func (s *Scene) FindByTag(tag string) []*Object {
	var out []*Object
	for _, id := range s.order {
		if obj := s.objects[id]; obj.Tag == tag {
			out = append(out, obj)
		}
	}
	return out
}

// Markers indexes activity marker objects by name.
type Markers struct {
	byName map[string]*Object
	logger *slog.Logger
}

// DiscoverMarkers collects every object tagged tag. Markers start hidden.
func DiscoverMarkers(scene *Scene, tag string, logger *slog.Logger) *Markers {
	m := &Markers{
		byName: make(map[string]*Object),
		logger: logger,
	}
	for _, obj := range scene.FindByTag(tag) {
		if _, dup := m.byName[obj.Name]; dup {
			logger.Warn("Duplicate activity marker name", "name", obj.Name, "id", obj.ID)
			continue
		}
		obj.Active = false
		m.byName[obj.Name] = obj
	}
	logger.Debug("Activity markers discovered", "scene", scene.Name, "tag", tag, "count", len(m.byName))
	return m
}

// SetMarkerActive shows or hides the named marker. Unknown names are ignored.
func (m *Markers) SetMarkerActive(name string, active bool) {
	obj, ok := m.byName[name]
	if !ok {
		m.logger.Debug("No activity marker for name", "name", name)
		return
	}
	obj.Active = active
}

// Active returns the names of visible markers, sorted.
func (m *Markers) Active() []string {
	var names []string
	for name, obj := range m.byName {
		if obj.Active {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func (m *Markers) Len() int { return len(m.byName) }
