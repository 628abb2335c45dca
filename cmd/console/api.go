package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/jwebster45206/quest-engine/internal/handlers"
	"github.com/jwebster45206/quest-engine/internal/session"
	"github.com/jwebster45206/quest-engine/pkg/progress"
)

func testConnection(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

// doJSON sends a request and decodes a JSON response into out. Non-2xx
// responses are turned into errors using the API's ErrorResponse body.
func doJSON(client *http.Client, method, url string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errorResp handlers.ErrorResponse
		if err := json.Unmarshal(respBody, &errorResp); err != nil || errorResp.Error == "" {
			return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(respBody))
		}
		return fmt.Errorf("request failed: %s", errorResp.Error)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func getQuests(client *http.Client, baseURL string) ([]progress.QuestView, error) {
	var quests []progress.QuestView
	if err := doJSON(client, http.MethodGet, baseURL+"/v1/quests", nil, &quests); err != nil {
		return nil, err
	}
	return quests, nil
}

func getStatus(client *http.Client, baseURL string) (*session.Status, error) {
	var status session.Status
	if err := doJSON(client, http.MethodGet, baseURL+"/v1/status", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func raiseEvent(client *http.Client, baseURL, tag string) (*handlers.RaiseEventResponse, error) {
	var resp handlers.RaiseEventResponse
	req := handlers.RaiseEventRequest{Event: tag}
	if err := doJSON(client, http.MethodPost, baseURL+"/v1/events", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func setCurrentQuest(client *http.Client, baseURL, title string) (*progress.QuestView, error) {
	var view progress.QuestView
	req := handlers.SetCurrentQuestRequest{Title: title}
	if err := doJSON(client, http.MethodPut, baseURL+"/v1/quests/current", req, &view); err != nil {
		return nil, err
	}
	return &view, nil
}
