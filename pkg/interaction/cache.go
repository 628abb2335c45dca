package interaction

import (
	"time"

	"github.com/jwebster45206/quest-engine/pkg/world"
)

type cachedAction struct {
	action     Action
	insertedAt time.Time
}

// ActionCache remembers resolved actions by object identity for a bounded
// residency, so objects that are destroyed or never looked at again do not
// pin memory.
type ActionCache struct {
	entries   map[world.ObjectID]cachedAction
	residency time.Duration
}

func NewActionCache(residency time.Duration) *ActionCache {
	return &ActionCache{
		entries:   make(map[world.ObjectID]cachedAction),
		residency: residency,
	}
}

func (c *ActionCache) Get(id world.ObjectID) (Action, bool) {
	e, ok := c.entries[id]
	if !ok {
		return nil, false
	}
	return e.action, true
}

// Put inserts or replaces the entry for id, stamped with now.
func (c *ActionCache) Put(id world.ObjectID, a Action, now time.Time) {
	c.entries[id] = cachedAction{action: a, insertedAt: now}
}

// Sweep evicts entries whose age at now has reached the residency and
// returns how many were removed.
func (c *ActionCache) Sweep(now time.Time) int {
	evicted := 0
	for id, e := range c.entries {
		if now.Sub(e.insertedAt) >= c.residency {
			delete(c.entries, id)
			evicted++
		}
	}
	return evicted
}

func (c *ActionCache) Len() int { return len(c.entries) }
