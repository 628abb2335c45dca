package interaction

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jwebster45206/quest-engine/pkg/world"
)

// LayerMask selects which world layers a raycast can hit.
type LayerMask uint32

// Hit is the result of a successful raycast.
type Hit struct {
	Object   world.ObjectID
	Distance float64
	UV       [2]float64
}

// Raycaster casts from the cursor into the world.
type Raycaster interface {
	Raycast(mask LayerMask, maxDistance float64) (Hit, bool)
}

// Icon is the affordance shown for the looked-at object.
type Icon int

const (
	IconNone Icon = iota
	IconInteract
	IconUnknown
)

// HUD is the affordance UI.
type HUD interface {
	ShowActionIcon(icon Icon)
	SetHint(text string)
	HideAffordances()
}

// Player is the player controller whose input is suspended during a
// continued interaction.
type Player interface {
	SetInputEnabled(enabled bool)
}

// PDA is the in-game device.
type PDA interface {
	ShowHomeScreen()
}

// State is the controller's dispatch state.
type State int

const (
	StateIdle State = iota
	StateContinuing
)

func (s State) String() string {
	if s == StateContinuing {
		return "continuing"
	}
	return "idle"
}

type ControllerConfig struct {
	LayerMask      LayerMask
	RayDistance    float64
	CacheResidency time.Duration
	SweepInterval  time.Duration
}

// Dependencies are the scene collaborators of a Controller.
type Dependencies struct {
	Raycaster Raycaster
	Resolver  Resolver
	HUD       HUD
	Player    Player
	PDA       PDA
}

// Controller discovers the looked-at object every frame and dispatches
// interactions to it.
type Controller struct {
	cfg       ControllerConfig
	raycaster Raycaster
	resolver  Resolver
	hud       HUD
	player    Player
	pda       PDA
	cache     *ActionCache
	logger    *slog.Logger

	state     State
	current   Action
	lastHit   world.ObjectID
	hasLast   bool
	nextSweep time.Time
	configErr error
}

// NewController builds a controller. Missing collaborators are logged and
// replaced by no-ops; the controller keeps running in a degraded mode and
// reports the problem through Err.
func NewController(cfg ControllerConfig, deps Dependencies, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Controller{
		cfg:       cfg,
		raycaster: deps.Raycaster,
		resolver:  deps.Resolver,
		hud:       deps.HUD,
		player:    deps.Player,
		pda:       deps.PDA,
		logger:    logger,
	}

	var errs []error
	if c.raycaster == nil {
		errs = append(errs, errors.New("raycaster is required"))
	}
	if c.resolver == nil {
		errs = append(errs, errors.New("resolver is required"))
		c.resolver = NewRegistry()
	}
	if c.hud == nil {
		errs = append(errs, errors.New("hud is required"))
		c.hud = nopHUD{}
	}
	if c.player == nil {
		errs = append(errs, errors.New("player is required"))
		c.player = nopPlayer{}
	}
	if c.pda == nil {
		logger.Warn("No PDA configured; PDA hand-offs will be ignored")
		c.pda = nopPDA{}
	}
	if cfg.RayDistance <= 0 {
		errs = append(errs, fmt.Errorf("ray distance must be positive, got %v", cfg.RayDistance))
	}
	if cfg.CacheResidency <= 0 {
		errs = append(errs, fmt.Errorf("cache residency must be positive, got %v", cfg.CacheResidency))
	}
	if cfg.SweepInterval <= 0 {
		errs = append(errs, fmt.Errorf("sweep interval must be positive, got %v", cfg.SweepInterval))
	}
	c.configErr = errors.Join(errs...)
	if c.configErr != nil {
		logger.Error("Interaction controller misconfigured, running degraded", "error", c.configErr)
	}

	c.cache = NewActionCache(cfg.CacheResidency)
	return c
}

// Err returns the configuration problems found at construction.
func (c *Controller) Err() error { return c.configErr }

func (c *Controller) State() State { return c.state }

func (c *Controller) Cache() *ActionCache { return c.cache }

// Current returns the object of the continued interaction in progress.
func (c *Controller) Current() (world.ObjectID, bool) {
	if c.state != StateContinuing {
		return "", false
	}
	return c.lastHit, true
}

// Tick runs one frame of the dispatch state machine.
func (c *Controller) Tick(f Frame) {
	c.sweepIfDue(f.Now)

	if c.state == StateContinuing {
		c.continueInteraction(f)
		return
	}

	if c.raycaster == nil {
		return
	}
	hit, ok := c.raycaster.Raycast(c.cfg.LayerMask, c.cfg.RayDistance)
	if !ok {
		c.hud.HideAffordances()
		c.hasLast = false
		return
	}

	action, ok := c.resolve(hit.Object, f.Now)
	if !ok {
		c.hud.ShowActionIcon(IconUnknown)
		c.hasLast = false
		return
	}
	if isSpent(action) {
		c.hud.HideAffordances()
		c.hasLast = false
		return
	}

	if !c.hasLast || c.lastHit != hit.Object {
		c.lastHit = hit.Object
		c.hasLast = true
		c.hud.ShowActionIcon(IconInteract)
		c.guard(hit.Object, "advertise", func() { action.AdvertiseInteraction() })
	}

	if !f.PrimaryDown {
		return
	}
	var continued bool
	c.guard(hit.Object, "perform", func() { continued = action.PerformInteraction() })
	if continued {
		c.player.SetInputEnabled(false)
		c.current = action
		c.state = StateContinuing
		c.logger.Debug("Continued interaction started", "object", hit.Object)
	}
}

func (c *Controller) resolve(id world.ObjectID, now time.Time) (Action, bool) {
	if action, ok := c.cache.Get(id); ok {
		return action, true
	}
	action, ok := c.resolver.Resolve(id)
	if !ok {
		c.logger.Debug("Object has no interaction", "object", id)
		return nil, false
	}
	c.cache.Put(id, action, now)
	return action, true
}

func (c *Controller) continueInteraction(f Frame) {
	result := Completed
	c.guard(c.lastHit, "continue", func() { result = c.current.ContinueInteraction(f) })

	switch result {
	case Continuing:
		return
	case ShowPdaHomeScreen:
		c.pda.ShowHomeScreen()
	default:
		c.player.SetInputEnabled(true)
	}
	c.logger.Debug("Continued interaction ended", "result", result.String())
	c.current = nil
	c.state = StateIdle
	c.hasLast = false
}

// Abort force-ends a continued interaction, calling CompleteInteraction on
// it and returning control to the player.
func (c *Controller) Abort() {
	if c.state != StateContinuing {
		return
	}
	c.guard(c.lastHit, "complete", func() { c.current.CompleteInteraction() })
	c.player.SetInputEnabled(true)
	c.current = nil
	c.state = StateIdle
	c.hasLast = false
}

func (c *Controller) sweepIfDue(now time.Time) {
	if c.cfg.SweepInterval <= 0 {
		return
	}
	if c.nextSweep.IsZero() {
		c.nextSweep = now.Add(c.cfg.SweepInterval)
		return
	}
	if now.Before(c.nextSweep) {
		return
	}
	if n := c.cache.Sweep(now); n > 0 {
		c.logger.Debug("Evicted cached actions", "count", n, "remaining", c.cache.Len())
	}
	c.nextSweep = now.Add(c.cfg.SweepInterval)
}

// guard runs an interactable callback, logging a panic instead of letting
// it take down the frame loop.
func (c *Controller) guard(id world.ObjectID, op string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Interaction panicked", "object", id, "op", op, "panic", r)
		}
	}()
	fn()
}

type nopHUD struct{}

func (nopHUD) ShowActionIcon(Icon) {}
func (nopHUD) SetHint(string)      {}
func (nopHUD) HideAffordances()    {}

type nopPlayer struct{}

func (nopPlayer) SetInputEnabled(bool) {}

type nopPDA struct{}

func (nopPDA) ShowHomeScreen() {}
