// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/platewise/internal/recommend"
	ws "github.com/tomtom215/platewise/internal/websocket"
)

func wsURL(server *httptest.Server, userID string) string {
	return "ws" + strings.TrimPrefix(server.URL, "http") + "/api/v1/users/" + userID + "/recommendations/ws"
}

func TestRecommendationsWebSocket(t *testing.T) {
	t.Parallel()

	s := setupTestServer(t)
	s.seed(t)
	server := httptest.NewServer(s.router)
	defer server.Close()

	header := http.Header{}
	header.Set("Origin", allowedOrigin)
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(server, "u1"), header)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()
	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Errorf("status = %d, want 101", resp.StatusCode)
	}

	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		var msg struct {
			Type string           `json:"type"`
			Data recommend.Result `json:"data"`
		}
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("ReadMessage() error = %v", err)
		}
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("decode message: %v", err)
		}
		if msg.Type != ws.MessageTypeRecommendations {
			continue
		}
		if msg.Data.UserID != "u1" || len(msg.Data.Items) != 3 {
			t.Errorf("pushed result = %s with %d items, want u1 with 3", msg.Data.UserID, len(msg.Data.Items))
		}
		break
	}

	waitFor(t, func() bool { return s.wsHub.ClientCount() == 1 })
}

func TestRecommendationsWebSocket_RejectsOrigin(t *testing.T) {
	t.Parallel()

	s := setupTestServer(t)
	server := httptest.NewServer(s.router)
	defer server.Close()

	tests := []struct {
		name   string
		origin string
	}{
		{"foreign origin", "http://evil.test"},
		{"missing origin", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := http.Header{}
			if tt.origin != "" {
				header.Set("Origin", tt.origin)
			}
			conn, resp, err := websocket.DefaultDialer.Dial(wsURL(server, "u1"), header)
			if err == nil {
				conn.Close()
				t.Fatal("Dial() succeeded, want handshake failure")
			}
			if resp == nil || resp.StatusCode != http.StatusForbidden {
				t.Errorf("response = %v, want 403", resp)
			}
		})
	}
}
