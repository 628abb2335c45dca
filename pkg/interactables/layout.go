package interactables

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jwebster45206/quest-engine/pkg/interaction"
	"github.com/jwebster45206/quest-engine/pkg/world"
)

// Layout is the authored object list of a scene.
type Layout struct {
	Objects []ObjectSpec `yaml:"objects"`
}

// ObjectSpec describes one scene object. Objects without a kind are plain
// world objects such as activity markers.
type ObjectSpec struct {
	ID       string   `yaml:"id"`
	Name     string   `yaml:"name"`
	Tag      string   `yaml:"tag,omitempty"`
	Kind     string   `yaml:"kind,omitempty"`
	Event    string   `yaml:"event,omitempty"`
	Locked   bool     `yaml:"locked,omitempty"`
	Code     string   `yaml:"code,omitempty"`
	Door     string   `yaml:"door,omitempty"`
	Cooldown string   `yaml:"cooldown,omitempty"`
	Lines    []string `yaml:"lines,omitempty"`
	Text     string   `yaml:"text,omitempty"`
	Handoff  bool     `yaml:"handoff_pda,omitempty"`
	Position float64  `yaml:"position,omitempty"`
}

func DecodeLayout(data []byte) (*Layout, error) {
	var l Layout
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scene layout: %w", err)
	}
	return &l, nil
}

// Build adds every object to scene and registers the interactable ones.
func (l *Layout) Build(env Env, scene *world.Scene, reg *interaction.Registry) error {
	for _, entry := range l.Objects {
		obj := &world.Object{
			ID:     world.ObjectID(entry.ID),
			Name:   entry.Name,
			Tag:    entry.Tag,
			Active: true,
		}
		if obj.Name == "" {
			obj.Name = entry.ID
		}
		if err := scene.Add(obj); err != nil {
			return err
		}
	}

	// Doors first so keypads can link to them.
	doors := make(map[string]*Door)
	for _, entry := range l.Objects {
		if entry.Kind != interaction.KindDoor.String() {
			continue
		}
		d := NewDoor(env, scene.Object(world.ObjectID(entry.ID)).Name, entry.Event, entry.Locked)
		doors[entry.ID] = d
		if err := reg.Register(world.ObjectID(entry.ID), d); err != nil {
			return err
		}
	}

	for _, entry := range l.Objects {
		if entry.Kind == "" || entry.Kind == interaction.KindDoor.String() {
			continue
		}
		kind, ok := interaction.ParseKind(entry.Kind)
		if !ok {
			return fmt.Errorf("object %q: unknown kind %q", entry.ID, entry.Kind)
		}
		obj := scene.Object(world.ObjectID(entry.ID))

		var it interaction.Interactable
		switch kind {
		case interaction.KindKeypad:
			var door *Door
			if entry.Door != "" {
				door, ok = doors[entry.Door]
				if !ok {
					return fmt.Errorf("keypad %q: unknown door %q", entry.ID, entry.Door)
				}
			}
			cooldown := 3 * time.Second
			if entry.Cooldown != "" {
				d, err := time.ParseDuration(entry.Cooldown)
				if err != nil {
					return fmt.Errorf("keypad %q: invalid cooldown: %w", entry.ID, err)
				}
				cooldown = d
			}
			it = NewKeypad(env, obj.Name, entry.Code, entry.Event, door, cooldown)
		case interaction.KindScreen:
			it = NewScreen(env, obj.Name, entry.Lines, entry.Event, entry.Handoff)
		case interaction.KindDatabrick:
			it = NewDatabrick(env, obj.Name, entry.Event, obj)
		case interaction.KindWhiteboard:
			it = NewWhiteboard(env, entry.Text, entry.Event)
		}
		if err := reg.Register(obj.ID, it); err != nil {
			return err
		}
	}
	return nil
}
