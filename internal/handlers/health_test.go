package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/jwebster45206/quest-engine/pkg/storage"
)

func TestHealthHandler_ServeHTTP(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Reduce noise in tests
	}))

	tests := []struct {
		name             string
		setupStorage     func() *storage.MockStorage
		expectedStatus   int
		expectedHealth   string
		expectedStorages string
	}{
		{
			name: "all healthy",
			setupStorage: func() *storage.MockStorage {
				return storage.NewMockStorage()
			},
			expectedStatus:   http.StatusOK,
			expectedHealth:   "healthy",
			expectedStorages: "healthy",
		},
		{
			name: "unhealthy storage",
			setupStorage: func() *storage.MockStorage {
				mockStorage := storage.NewMockStorage()
				mockStorage.SetPingError(errors.New("connection failed"))
				return mockStorage
			},
			expectedStatus:   http.StatusServiceUnavailable,
			expectedHealth:   "degraded",
			expectedStorages: "unhealthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(tt.setupStorage(), logger)

			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			w := httptest.NewRecorder()

			before := time.Now()
			handler.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Expected Content-Type application/json, got %s", ct)
			}

			var response HealthResponse
			if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}

			if response.Status != tt.expectedHealth {
				t.Errorf("Expected health status %s, got %s", tt.expectedHealth, response.Status)
			}
			if response.Service != "quest-engine" {
				t.Errorf("Expected service quest-engine, got %s", response.Service)
			}
			if response.Components["storage"] != tt.expectedStorages {
				t.Errorf("Expected storage status %s, got %s", tt.expectedStorages, response.Components["storage"])
			}
			if response.Timestamp.Before(before.Add(-time.Second)) {
				t.Errorf("Timestamp %v is older than the request", response.Timestamp)
			}
		})
	}
}

func TestHealthHandler_ExtraChecks(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	tests := []struct {
		name           string
		check          HealthCheck
		expectedStatus int
		expectedScene  string
	}{
		{
			name:           "scene loaded",
			check:          func(context.Context) error { return nil },
			expectedStatus: http.StatusOK,
			expectedScene:  "healthy",
		},
		{
			name:           "scene missing",
			check:          func(context.Context) error { return errors.New("no story loaded") },
			expectedStatus: http.StatusServiceUnavailable,
			expectedScene:  "unhealthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(storage.NewMockStorage(), logger).WithCheck("scene", tt.check)

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			var response HealthResponse
			if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if response.Components["scene"] != tt.expectedScene {
				t.Errorf("Expected scene %q, got %q", tt.expectedScene, response.Components["scene"])
			}
			if response.Components["storage"] != "healthy" {
				t.Errorf("Expected healthy storage, got %q", response.Components["storage"])
			}
		})
	}
}
