package session

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/quest-engine/pkg/content"
	"github.com/jwebster45206/quest-engine/pkg/progress"
	"github.com/jwebster45206/quest-engine/pkg/quest"
	"github.com/jwebster45206/quest-engine/pkg/storage"
)

// Session is one player's run through a scene. The progression engine is
// single-threaded, so every call takes the session lock.
type Session struct {
	mu       sync.Mutex
	id       uuid.UUID
	helper   *quest.Helper
	engine   *progress.Engine
	storage  storage.Storage
	messages *content.Messages
	books    map[string]*content.GameBook
	logger   *slog.Logger
	now      func() time.Time
}

// Options tune how a session is opened.
type Options struct {
	Notifier progress.Notifier
	Markers  progress.MarkerSet
	Clock    func() time.Time
}

// Open loads the scene's quest graph, narrative content and any saved
// progress for id. A missing or broken quest graph leaves the session with
// an empty graph rather than failing.
func Open(ctx context.Context, st storage.Storage, scene string, id uuid.UUID, opts Options, logger *slog.Logger) (*Session, error) {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	helper := quest.NewHelper(st, logger)
	if !helper.LoadStoryGraph(ctx, scene) {
		logger.Warn("Starting session with an empty quest graph", "scene", scene)
	}

	engine := progress.NewEngine(helper.Graph(), logger).
		WithClock(opts.Clock).
		WithNotifier(opts.Notifier)
	if opts.Markers != nil {
		engine.WithMarkers(opts.Markers)
	}

	snapshot, err := st.LoadProgress(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}
	if snapshot != nil {
		if snapshot.Scene != scene {
			logger.Warn("Ignoring progress saved for another scene", "saved_scene", snapshot.Scene, "scene", scene)
		} else {
			engine.Restore(snapshot)
		}
	}

	s := &Session{
		id:      id,
		helper:  helper,
		engine:  engine,
		storage: st,
		logger:  logger,
		now:     opts.Clock,
	}
	s.loadContent(ctx, scene)
	return s, nil
}

func (s *Session) loadContent(ctx context.Context, scene string) {
	msgs, err := s.storage.LoadMessages(ctx, scene)
	if err != nil {
		s.logger.Error("Failed to load game messages", "scene", scene, "error", err)
		msgs = map[string]string{}
	}
	s.messages = content.NewMessages(msgs)

	pages, err := s.storage.LoadBooks(ctx, scene)
	if err != nil {
		s.logger.Error("Failed to load game books", "scene", scene, "error", err)
		pages = map[string]string{}
	}
	books, skipped := content.GroupBooks(pages)
	for _, name := range skipped {
		s.logger.Warn("Skipping malformed book page asset", "asset", name)
	}
	s.books = books
}

func (s *Session) ID() uuid.UUID { return s.id }

func (s *Session) Scene() string { return s.helper.Scene() }

// RaiseEvent feeds a significant event to the engine and persists progress.
// The event is applied even when saving fails.
func (s *Session) RaiseEvent(ctx context.Context, tag string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.HandleSignificantEvent(tag)
	return s.saveProgressLocked(ctx)
}

// HandleSignificantEvent applies an event without persisting.
func (s *Session) HandleSignificantEvent(tag string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.HandleSignificantEvent(tag)
}

// SetCurrentQuest makes a quest current. Unknown titles return false.
func (s *Session) SetCurrentQuest(ctx context.Context, title string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.engine.SetCurrentQuestName(title) {
		return false, nil
	}
	return true, s.saveProgressLocked(ctx)
}

func (s *Session) saveProgressLocked(ctx context.Context) error {
	if err := s.storage.SaveProgress(ctx, s.id, s.engine.Snapshot(s.helper.Scene())); err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	return nil
}

// SaveGraph writes the quest graph back to the scene bundle.
func (s *Session) SaveGraph(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.helper.SaveStoryGraph(ctx)
}

// Reset discards saved progress for this session.
func (s *Session) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storage.DeleteProgress(ctx, s.id)
}

// Status summarizes the session for the PDA home screen.
type Status struct {
	SessionID      string   `json:"session_id"`
	Scene          string   `json:"scene"`
	Story          string   `json:"story"`
	CurrentQuest   string   `json:"current_quest,omitempty"`
	CurrentTask    string   `json:"current_task,omitempty"`
	Outstanding    []string `json:"outstanding"`
	StoryCompleted bool     `json:"story_completed"`
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	outstanding := s.engine.OutstandingQuests()
	if outstanding == nil {
		outstanding = []string{}
	}
	return Status{
		SessionID:      s.id.String(),
		Scene:          s.helper.Scene(),
		Story:          s.helper.SceneStory().Title,
		CurrentQuest:   s.engine.CurrentQuestName(),
		CurrentTask:    s.engine.CurrentTaskName(),
		Outstanding:    outstanding,
		StoryCompleted: s.engine.StoryCompleted(),
	}
}

func (s *Session) Quests() []progress.QuestView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.QuestViews()
}

func (s *Session) Quest(title string) (progress.QuestView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.QuestView(title)
}

func (s *Session) Events() []progress.EventView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.EventViews()
}

// MessageTitles returns every message title, sorted.
func (s *Session) MessageTitles() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.messages.Titles()
}

// ShowMessage marks a message shown and returns a copy of it.
func (s *Session) ShowMessage(title string) (content.GameMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg, ok := s.messages.Show(title, s.now())
	if !ok {
		return content.GameMessage{}, false
	}
	return *msg, true
}

// BookNames returns every book name, sorted.
func (s *Session) BookNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.books))
	for name := range s.books {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Session) Book(name string) (*content.GameBook, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.books[name]
	return b, ok
}
