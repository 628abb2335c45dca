package quest

import (
	"context"
	"log/slog"
)

// GraphStore is the persistence the Helper loads from and saves to.
type GraphStore interface {
	LoadStoryGraph(ctx context.Context, scene string) (*Graph, error)
	SaveStoryGraph(ctx context.Context, scene string, g *Graph) error
}

// Helper is the load/save boundary for a scene's quest graph. Failures are
// logged and reported as false; they never propagate as errors.
type Helper struct {
	store  GraphStore
	logger *slog.Logger
	scene  string
	graph  *Graph
}

func NewHelper(store GraphStore, logger *slog.Logger) *Helper {
	return &Helper{
		store:  store,
		logger: logger,
		graph:  NewGraph(),
	}
}

// LoadStoryGraph replaces the current graph with the scene's persisted one.
// On failure the helper holds an empty graph for the scene.
func (h *Helper) LoadStoryGraph(ctx context.Context, scene string) bool {
	h.scene = scene
	g, err := h.store.LoadStoryGraph(ctx, scene)
	if err != nil {
		h.logger.Error("Failed to load story graph", "scene", scene, "error", err)
		h.graph = NewGraph()
		return false
	}
	if g == nil {
		h.logger.Warn("Story graph not found", "scene", scene)
		h.graph = NewGraph()
		return false
	}
	h.graph = g
	h.logger.Info("Story graph loaded",
		"scene", scene,
		"story", g.Story.Title,
		"quests", g.QuestCount(),
		"tasks", g.TaskCount())
	return true
}

// SaveStoryGraph writes the graph for the active scene, overwriting any
// previous save.
func (h *Helper) SaveStoryGraph(ctx context.Context) bool {
	if h.scene == "" {
		h.logger.Error("Cannot save story graph without an active scene")
		return false
	}
	if err := h.store.SaveStoryGraph(ctx, h.scene, h.graph); err != nil {
		h.logger.Error("Failed to save story graph", "scene", h.scene, "error", err)
		return false
	}
	h.logger.Info("Story graph saved", "scene", h.scene)
	return true
}

func (h *Helper) Scene() string { return h.scene }

// SetScene sets the active scene used by SaveStoryGraph without loading.
func (h *Helper) SetScene(scene string) { h.scene = scene }

func (h *Helper) Graph() *Graph { return h.graph }

func (h *Helper) SceneStory() *Story { return &h.graph.Story }

// QuestDictionary returns the quests keyed by title.
func (h *Helper) QuestDictionary() map[string]*Quest {
	out := make(map[string]*Quest, h.graph.QuestCount())
	for _, q := range h.graph.Quests() {
		out[q.Title] = q
	}
	return out
}

// TaskDictionary returns the tasks keyed by title.
func (h *Helper) TaskDictionary() map[string]*Task {
	out := make(map[string]*Task, h.graph.TaskCount())
	for _, t := range h.graph.Tasks() {
		out[t.Title] = t
	}
	return out
}

func (h *Helper) CompletionEvents() []string { return h.graph.CompletionEvents }

func (h *Helper) SetCompletionEvents(events []string) { h.graph.CompletionEvents = events }

func (h *Helper) GameStates() []string { return h.graph.GameStates }

func (h *Helper) SetGameStates(states []string) { h.graph.GameStates = states }
