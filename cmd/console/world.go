package main

import (
	"math"
	"sort"

	"github.com/jwebster45206/quest-engine/pkg/interaction"
	"github.com/jwebster45206/quest-engine/pkg/world"
)

const stepSize = 0.5

// corridor is a one-dimensional scene: objects sit at fixed positions and
// the player looks either left or right along the line.
type corridor struct {
	scene     *world.Scene
	markerTag string
	positions map[world.ObjectID]float64
	player    float64
	facing    float64 // +1 right, -1 left
	length    float64
}

func newCorridor(scene *world.Scene, markerTag string, positions map[world.ObjectID]float64) *corridor {
	c := &corridor{scene: scene, markerTag: markerTag, positions: positions, facing: 1}
	for _, p := range positions {
		c.length = math.Max(c.length, p)
	}
	c.length++
	return c
}

func (c *corridor) move(dir float64) {
	c.facing = dir
	c.player = math.Min(math.Max(c.player+dir*stepSize, 0), c.length)
}

// Raycast returns the nearest active, non-marker object ahead of the player.
func (c *corridor) Raycast(mask interaction.LayerMask, maxDistance float64) (interaction.Hit, bool) {
	if mask == 0 {
		return interaction.Hit{}, false
	}
	var (
		best  interaction.Hit
		found bool
	)
	for _, obj := range c.scene.Objects() {
		if !obj.Active || obj.Tag == c.markerTag {
			continue
		}
		pos, ok := c.positions[obj.ID]
		if !ok {
			continue
		}
		d := (pos - c.player) * c.facing
		if d < 0 || d > maxDistance {
			continue
		}
		if !found || d < best.Distance {
			best = interaction.Hit{Object: obj.ID, Distance: d}
			found = true
		}
	}
	return best, found
}

// cell is one rendered corridor slot.
type cell struct {
	pos   float64
	label string
	kind  cellKind
}

type cellKind int

const (
	cellObject cellKind = iota
	cellMarker
	cellPlayer
)

// cells lists what to draw, left to right. Inactive objects and hidden
// markers are left out.
func (c *corridor) cells() []cell {
	var out []cell
	for _, obj := range c.scene.Objects() {
		pos, ok := c.positions[obj.ID]
		if !ok || !obj.Active {
			continue
		}
		kind := cellObject
		if obj.Tag == c.markerTag {
			kind = cellMarker
		}
		out = append(out, cell{pos: pos, label: obj.Name, kind: kind})
	}
	arrow := "@>"
	if c.facing < 0 {
		arrow = "<@"
	}
	out = append(out, cell{pos: c.player, label: arrow, kind: cellPlayer})
	sort.SliceStable(out, func(i, j int) bool { return out[i].pos < out[j].pos })
	return out
}

// consoleHUD records the affordances the controller asks for.
type consoleHUD struct {
	icon interaction.Icon
	hint string
}

func (h *consoleHUD) ShowActionIcon(icon interaction.Icon) { h.icon = icon }

func (h *consoleHUD) SetHint(text string) { h.hint = text }

func (h *consoleHUD) HideAffordances() {
	h.icon = interaction.IconNone
	h.hint = ""
}

type consolePlayer struct {
	inputEnabled bool
}

func (p *consolePlayer) SetInputEnabled(enabled bool) { p.inputEnabled = enabled }

type consolePDA struct {
	homeOpen bool
}

func (p *consolePDA) ShowHomeScreen() { p.homeOpen = true }

// eventQueue collects events raised during a frame so the UI can post them
// to the API outside the tick.
type eventQueue struct {
	pending []string
}

func (q *eventQueue) HandleSignificantEvent(tag string) {
	q.pending = append(q.pending, tag)
}

func (q *eventQueue) drain() []string {
	out := q.pending
	q.pending = nil
	return out
}
