// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package websocket

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tomtom215/platewise/internal/metrics"
	"github.com/tomtom215/platewise/internal/recommend"
)

// ShutdownReason represents why the hub stopped.
type ShutdownReason string

const (
	// ShutdownReasonContextCanceled indicates the context was explicitly canceled.
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"

	// ShutdownReasonContextDeadline indicates the context deadline was exceeded.
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// Message types.
const (
	MessageTypeRecommendations = "recommendations"
	MessageTypePing            = "ping"
	MessageTypePong            = "pong"
	MessageTypeRefresh         = "refresh"
)

// Message is the envelope for every frame.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// FeedSource returns a user's recommendation feed, or nil when feeds are no
// longer available. *recommend.Hub satisfies it.
type FeedSource interface {
	Feed(userID string) *recommend.Feed
}

type delivery struct {
	userID string
	msg    Message
}

type subscription struct {
	feed        *recommend.Feed
	unsubscribe func()
}

// Hub tracks connected clients per user and fans published lists out to them.
type Hub struct {
	source FeedSource
	logger zerolog.Logger

	register   chan *Client
	unregister chan *Client
	deliver    chan delivery
	done       chan struct{}
	doneOnce   sync.Once

	mu      sync.RWMutex
	clients map[string]map[*Client]bool
	subs    map[string]subscription
}

// NewHub creates a hub fed by source.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHub(source FeedSource, logger zerolog.Logger) *Hub {
	return &Hub{
		source:     source,
		logger:     logger.With().Str("component", "websocket-hub").Logger(),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		deliver:    make(chan delivery, 256),
		done:       make(chan struct{}),
		clients:    make(map[string]map[*Client]bool),
		subs:       make(map[string]subscription),
	}
}

// Register hands a client to the hub. It returns false once the hub stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client. It is safe to call after the hub stopped.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// RunWithContext runs the hub until ctx ends, then closes every client.
func (h *Hub) RunWithContext(ctx context.Context) error {
	defer h.doneOnce.Do(func() { close(h.done) })

	for {
		// Membership changes go first so a delivery never races a registration.
		select {
		case c := <-h.register:
			h.addClient(c)
			continue
		case c := <-h.unregister:
			h.removeClient(c)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		case c := <-h.register:
			h.addClient(c)
		case c := <-h.unregister:
			h.removeClient(c)
		case d := <-h.deliver:
			h.sendToUser(d.userID, d.msg)
		}
	}
}

func (h *Hub) addClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[c.userID]
	if !ok {
		set = make(map[*Client]bool)
		h.clients[c.userID] = set
	}
	set[c] = true
	metrics.TrackWebSocketConnection(true)

	sub, subscribed := h.subs[c.userID]
	if !subscribed {
		f := h.source.Feed(c.userID)
		if f == nil {
			h.logger.Warn().Str("user_id", c.userID).Msg("no feed available for websocket client")
			return
		}
		userID := c.userID
		sub = subscription{
			feed:        f,
			unsubscribe: f.Subscribe(func(res *recommend.Result) { h.publish(userID, res) }),
		}
		h.subs[userID] = sub
	}

	if latest := sub.feed.Latest(); latest != nil {
		h.trySend(c, Message{Type: MessageTypeRecommendations, Data: latest})
	}

	h.logger.Debug().
		Str("user_id", c.userID).
		Int("user_clients", len(set)).
		Msg("websocket client connected")
}

func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(c)
}

// dropLocked removes c and releases the user's feed subscription with the
// last client. Callers hold h.mu.
func (h *Hub) dropLocked(c *Client) {
	set, ok := h.clients[c.userID]
	if !ok || !set[c] {
		return
	}
	delete(set, c)
	close(c.send)
	metrics.TrackWebSocketConnection(false)

	if len(set) == 0 {
		delete(h.clients, c.userID)
		if sub, ok := h.subs[c.userID]; ok {
			sub.unsubscribe()
			delete(h.subs, c.userID)
		}
	}
	h.logger.Debug().Str("user_id", c.userID).Msg("websocket client disconnected")
}

// publish runs on the feed's publishing goroutine and must not block.
func (h *Hub) publish(userID string, res *recommend.Result) {
	select {
	case h.deliver <- delivery{userID: userID, msg: Message{Type: MessageTypeRecommendations, Data: res}}:
	default:
		metrics.RecordWebSocketMessage(false)
		h.logger.Warn().Str("user_id", userID).Msg("delivery queue full, dropping recommendations")
	}
}

// sendToUser delivers msg to every client of userID in connection order.
func (h *Hub) sendToUser(userID string, msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, c := range sortedClients(h.clients[userID]) {
		h.trySend(c, msg)
	}
}

// trySend queues msg for c and disconnects c if its buffer is full.
// Callers hold h.mu.
func (h *Hub) trySend(c *Client, msg Message) {
	select {
	case c.send <- msg:
		metrics.RecordWebSocketMessage(true)
	default:
		metrics.RecordWebSocketMessage(false)
		h.logger.Warn().Str("user_id", c.userID).Uint64("client_id", c.id).Msg("client send buffer full, disconnecting")
		h.dropLocked(c)
	}
}

// reply queues msg for c alone if c is still registered. A full buffer
// drops the reply instead of the client.
func (h *Hub) reply(c *Client, msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.clients[c.userID][c] {
		return
	}
	select {
	case c.send <- msg:
	default:
	}
}

// requestRefresh schedules a pass for userID if the hub follows its feed.
func (h *Hub) requestRefresh(userID string) {
	h.mu.RLock()
	sub, ok := h.subs[userID]
	h.mu.RUnlock()
	if ok {
		sub.feed.Trigger(recommend.TriggerManual)
	}
}

func (h *Hub) shutdown(ctx context.Context) {
	h.mu.Lock()
	closed := 0
	for _, set := range h.clients {
		for _, c := range sortedClients(set) {
			h.dropLocked(c)
			closed++
		}
	}
	h.mu.Unlock()

	reason := ShutdownReasonContextCanceled
	if ctx.Err() == context.DeadlineExceeded {
		reason = ShutdownReasonContextDeadline
	}
	h.logger.Info().
		Str("reason", string(reason)).
		Int("clients_closed", closed).
		Msg("websocket hub stopped")
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

// UserCount returns the number of users with at least one client.
func (h *Hub) UserCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func sortedClients(set map[*Client]bool) []*Client {
	out := make([]*Client, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}
