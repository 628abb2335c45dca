package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/jwebster45206/quest-engine/internal/session"
)

// StatusHandler serves the PDA home screen summary.
//
//	GET /v1/status
type StatusHandler struct {
	session *session.Session
	logger  *slog.Logger
}

func NewStatusHandler(s *session.Session, logger *slog.Logger) *StatusHandler {
	return &StatusHandler{session: s, logger: logger}
}

func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, h.session.Status())
}

// SaveHandler writes the quest graph back to the scene bundle.
//
//	POST /v1/save
type SaveHandler struct {
	session *session.Session
	logger  *slog.Logger
}

func NewSaveHandler(s *session.Session, logger *slog.Logger) *SaveHandler {
	return &SaveHandler{session: s, logger: logger}
}

func (h *SaveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if !h.session.SaveGraph(r.Context()) {
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save quest graph")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, map[string]string{"scene": h.session.Scene(), "status": "saved"})
}

// MessageHandler lists game messages and shows one by title.
//
//	GET /v1/messages
//	GET /v1/messages/{title}
type MessageHandler struct {
	session *session.Session
	logger  *slog.Logger
}

func NewMessageHandler(s *session.Session, logger *slog.Logger) *MessageHandler {
	return &MessageHandler{session: s, logger: logger}
}

func (h *MessageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	title := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/messages"), "/")
	if title == "" {
		writeJSON(w, h.logger, http.StatusOK, h.session.MessageTitles())
		return
	}
	msg, ok := h.session.ShowMessage(title)
	if !ok {
		writeError(w, h.logger, http.StatusNotFound, "Message not found")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, msg)
}
