package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jwebster45206/quest-engine/pkg/progress"
	"github.com/jwebster45206/quest-engine/pkg/quest"
)

var ErrSceneNotFound = errors.New("scene not found")

// Storage defines a unified interface for all storage operations
// This interface combines scene resources (filesystem) with session progress (Redis)
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// Quest graph operations (filesystem-backed)
	// LoadStoryGraph returns ErrSceneNotFound when the scene has no quest bundle
	LoadStoryGraph(ctx context.Context, scene string) (*quest.Graph, error)
	SaveStoryGraph(ctx context.Context, scene string, g *quest.Graph) error
	ListScenes(ctx context.Context) ([]string, error)

	// Narrative content (filesystem-backed), keyed by asset name
	LoadMessages(ctx context.Context, scene string) (map[string]string, error)
	LoadBooks(ctx context.Context, scene string) (map[string]string, error)
	LoadLayout(ctx context.Context, scene string) ([]byte, error)

	// Session progress (Redis-backed)
	SaveProgress(ctx context.Context, id uuid.UUID, s *progress.Snapshot) error
	// LoadProgress returns nil if no progress exists for the session
	LoadProgress(ctx context.Context, id uuid.UUID) (*progress.Snapshot, error)
	DeleteProgress(ctx context.Context, id uuid.UUID) error
}

// Ensure Storage can back a quest.Helper
var _ quest.GraphStore = (Storage)(nil)
