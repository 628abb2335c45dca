package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jwebster45206/quest-engine/internal/session"
)

const questsPrefix = "/v1/quests"

type SetCurrentQuestRequest struct {
	Title string `json:"title"`
}

// QuestHandler serves the PDA quest list.
//
//	GET /v1/quests
//	GET /v1/quests/{title}
//	PUT /v1/quests/current
type QuestHandler struct {
	session *session.Session
	logger  *slog.Logger
}

func NewQuestHandler(s *session.Session, logger *slog.Logger) *QuestHandler {
	return &QuestHandler{
		session: s,
		logger:  logger,
	}
}

func (h *QuestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	title := strings.Trim(strings.TrimPrefix(r.URL.Path, questsPrefix), "/")

	switch {
	case r.Method == http.MethodGet && title == "":
		writeJSON(w, h.logger, http.StatusOK, h.session.Quests())
	case r.Method == http.MethodGet:
		h.handleGetQuest(w, title)
	case r.Method == http.MethodPut && title == "current":
		h.handleSetCurrent(w, r)
	default:
		h.logger.Warn("Method not allowed for quests endpoint",
			"method", r.Method,
			"path", r.URL.Path)
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *QuestHandler) handleGetQuest(w http.ResponseWriter, title string) {
	view, ok := h.session.Quest(title)
	if !ok {
		writeError(w, h.logger, http.StatusNotFound, "Quest not found")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, view)
}

func (h *QuestHandler) handleSetCurrent(w http.ResponseWriter, r *http.Request) {
	var req SetCurrentQuestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid set current quest request", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeError(w, h.logger, http.StatusBadRequest, "title is required")
		return
	}

	ok, err := h.session.SetCurrentQuest(r.Context(), req.Title)
	if !ok {
		writeError(w, h.logger, http.StatusNotFound, "Quest not found")
		return
	}
	if err != nil {
		h.logger.Error("Failed to persist current quest", "error", err, "title", req.Title)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save progress")
		return
	}

	view, _ := h.session.Quest(req.Title)
	writeJSON(w, h.logger, http.StatusOK, view)
}
