package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/jwebster45206/quest-engine/pkg/progress"
	"github.com/jwebster45206/quest-engine/pkg/quest"
)

// MockStorage is a mock implementation of Storage for testing.
// Graphs are kept encoded so loads never alias a saved graph.
type MockStorage struct {
	mu        sync.RWMutex
	graphs    map[string][]byte
	messages  map[string]map[string]string
	books     map[string]map[string]string
	layouts   map[string][]byte
	snapshots map[uuid.UUID]*progress.Snapshot
	pingError error
	saveError error
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates a new mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		graphs:    make(map[string][]byte),
		messages:  make(map[string]map[string]string),
		books:     make(map[string]map[string]string),
		layouts:   make(map[string][]byte),
		snapshots: make(map[uuid.UUID]*progress.Snapshot),
	}
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// SetSaveError configures the mock to fail graph and progress saves
func (m *MockStorage) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveError = err
}

// Ping mocks storage ping
func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

// Close mocks storage close
func (m *MockStorage) Close() error {
	return nil
}

// LoadStoryGraph mocks loading a scene's quest graph
func (m *MockStorage) LoadStoryGraph(ctx context.Context, scene string) (*quest.Graph, error) {
	m.mu.RLock()
	data, exists := m.graphs[scene]
	m.mu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("scene %q: %w", scene, ErrSceneNotFound)
	}
	return quest.Decode(data, quest.FormatJSON)
}

// SaveStoryGraph mocks saving a scene's quest graph
func (m *MockStorage) SaveStoryGraph(ctx context.Context, scene string, g *quest.Graph) error {
	if g == nil {
		return errors.New("graph cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveError != nil {
		return m.saveError
	}
	data, err := quest.Encode(g, quest.FormatJSON)
	if err != nil {
		return err
	}
	m.graphs[scene] = data
	return nil
}

// AddSceneBundle stores raw bundle JSON for a scene (for testing)
func (m *MockStorage) AddSceneBundle(scene string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.graphs[scene] = data
}

// ListScenes mocks listing scenes
func (m *MockStorage) ListScenes(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	scenes := make([]string, 0, len(m.graphs))
	for scene := range m.graphs {
		scenes = append(scenes, scene)
	}
	sort.Strings(scenes)
	return scenes, nil
}

// LoadMessages mocks loading message assets
func (m *MockStorage) LoadMessages(ctx context.Context, scene string) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copyAssets(m.messages[scene]), nil
}

// AddMessage adds a message asset (for testing)
func (m *MockStorage) AddMessage(scene, title, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.messages[scene] == nil {
		m.messages[scene] = make(map[string]string)
	}
	m.messages[scene][title] = body
}

// LoadBooks mocks loading book page assets
func (m *MockStorage) LoadBooks(ctx context.Context, scene string) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copyAssets(m.books[scene]), nil
}

// AddBookPage adds a book page asset (for testing)
func (m *MockStorage) AddBookPage(scene, name, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.books[scene] == nil {
		m.books[scene] = make(map[string]string)
	}
	m.books[scene][name] = text
}

// LoadLayout mocks loading a scene layout
func (m *MockStorage) LoadLayout(ctx context.Context, scene string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, exists := m.layouts[scene]
	if !exists {
		return nil, fmt.Errorf("layout for scene %q: %w", scene, ErrSceneNotFound)
	}
	return data, nil
}

// AddLayout adds a scene layout (for testing)
func (m *MockStorage) AddLayout(scene string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.layouts[scene] = data
}

// SaveProgress mocks saving session progress
func (m *MockStorage) SaveProgress(ctx context.Context, id uuid.UUID, s *progress.Snapshot) error {
	if s == nil {
		return errors.New("snapshot cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveError != nil {
		return m.saveError
	}
	m.snapshots[id] = s
	return nil
}

// LoadProgress mocks loading session progress
func (m *MockStorage) LoadProgress(ctx context.Context, id uuid.UUID) (*progress.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, exists := m.snapshots[id]
	if !exists {
		return nil, nil // Return nil for not found
	}
	return s, nil
}

// DeleteProgress mocks deleting session progress
func (m *MockStorage) DeleteProgress(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snapshots, id)
	return nil
}

func copyAssets(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
