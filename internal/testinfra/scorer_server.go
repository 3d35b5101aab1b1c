// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package testinfra

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

// ScorerCapture is one captured ranking request.
type ScorerCapture struct {
	Method  string
	Path    string
	Headers http.Header
	Body    []byte
}

// ScoredItem is one entry in a mock ranking response.
type ScoredItem struct {
	RestaurantID string   `json:"restaurant_id"`
	Score        float64  `json:"score"`
	Reasons      []string `json:"reasons,omitempty"`
}

// MockScorerServer is a fake external ranking service.
type MockScorerServer struct {
	Server *httptest.Server

	mu       sync.Mutex
	captures []ScorerCapture
	status   int
	items    []ScoredItem
	delay    time.Duration
	handler  http.HandlerFunc
}

// NewMockScorerServer starts a server that answers 200 with an empty ranking.
// It is closed when the test ends.
func NewMockScorerServer(t *testing.T) *MockScorerServer {
	t.Helper()

	m := &MockScorerServer{status: http.StatusOK}
	m.Server = httptest.NewServer(http.HandlerFunc(m.serve))
	t.Cleanup(m.Server.Close)
	return m
}

func (m *MockScorerServer) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	_ = r.Body.Close()

	m.mu.Lock()
	m.captures = append(m.captures, ScorerCapture{
		Method:  r.Method,
		Path:    r.URL.Path,
		Headers: r.Header.Clone(),
		Body:    body,
	})
	status, items, delay, handler := m.status, m.items, m.delay, m.handler
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}
	if handler != nil {
		handler(w, r)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if status == http.StatusOK {
		if items == nil {
			items = []ScoredItem{}
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"items": items})
	}
}

// URL returns the server URL.
func (m *MockScorerServer) URL() string {
	return m.Server.URL
}

// SetRanking sets the items returned by successful responses.
func (m *MockScorerServer) SetRanking(items ...ScoredItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = items
}

// SetStatus sets the response status code.
func (m *MockScorerServer) SetStatus(status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = status
}

// SetDelay delays every response.
func (m *MockScorerServer) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// SetHandler replaces the default response entirely.
func (m *MockScorerServer) SetHandler(h http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handler = h
}

// Captures returns all captured requests.
func (m *MockScorerServer) Captures() []ScorerCapture {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ScorerCapture, len(m.captures))
	copy(out, m.captures)
	return out
}

// Requests returns the number of captured requests.
func (m *MockScorerServer) Requests() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.captures)
}
