// Reelcast - Feed Composition and Playback Continuation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelcast

package websocket

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelcast/internal/feed"
	"github.com/tomtom215/reelcast/internal/metrics"
)

// Message types sent to clients.
const (
	MessageTypeFeedPublished = "feed_published"
	MessageTypeExclusion     = "exclusion_added"
	MessageTypePing          = "ping"
	MessageTypePong          = "pong"
)

// broadcastBuffer is the number of queued broadcasts before new ones are dropped.
const broadcastBuffer = 64

// Message is the envelope of every frame.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// FeedPublishedData announces a new composition. Clients re-fetch the
// layout when the generation moves.
type FeedPublishedData struct {
	CompositionID string       `json:"compositionId"`
	Generation    uint64       `json:"generation"`
	Trigger       feed.Trigger `json:"trigger"`
	Items         int          `json:"items"`
	Outcome       feed.Outcome `json:"outcome"`
	ComposedAt    time.Time    `json:"composedAt"`
}

// Hub fans messages out to connected clients.
type Hub struct {
	clients    map[*Client]struct{}
	broadcast  chan Message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once
	mu         sync.RWMutex
	logger     zerolog.Logger
}

// NewHub creates a hub. It does nothing until RunWithContext is called.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan Message, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger.With().Str("component", "websocket-hub").Logger(),
	}
}

// RunWithContext processes registrations and broadcasts until ctx ends,
// then closes every client and returns ctx.Err(). Lifecycle events are
// drained before broadcasts so a client registered before a broadcast
// always receives it.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		case c := <-h.register:
			h.add(c)
			continue
		case c := <-h.unregister:
			h.remove(c)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		case c := <-h.register:
			h.add(c)
		case c := <-h.unregister:
			h.remove(c)
		case msg := <-h.broadcast:
			h.fanOut(msg)
		}
	}
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()

	metrics.WSConnections.Set(float64(n))
	h.logger.Debug().Uint64("client_id", c.id).Int("total_clients", n).Msg("Client connected")
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()

	metrics.WSConnections.Set(float64(n))
	h.logger.Debug().Uint64("client_id", c.id).Int("total_clients", n).Msg("Client disconnected")
}

// fanOut delivers msg in client id order. Clients whose buffer is full are
// dropped; they reconnect and re-fetch.
func (h *Hub) fanOut(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, c := range h.sortedLocked() {
		select {
		case c.send <- msg:
			metrics.WSMessagesSent.Inc()
		default:
			close(c.send)
			delete(h.clients, c)
			h.logger.Warn().Uint64("client_id", c.id).Msg("Client too slow, disconnected")
		}
	}
	metrics.WSConnections.Set(float64(len(h.clients)))
}

func (h *Hub) sortedLocked() []*Client {
	out := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

func (h *Hub) shutdown(ctx context.Context) {
	h.stopOnce.Do(func() { close(h.done) })

	h.mu.Lock()
	clients := h.sortedLocked()
	for _, c := range clients {
		close(c.send)
		delete(h.clients, c)
	}
	h.mu.Unlock()

	metrics.WSConnections.Set(0)

	reason := "context_canceled"
	if ctx.Err() == context.DeadlineExceeded {
		reason = "context_deadline"
	}
	h.logger.Info().Str("reason", reason).Int("clients_closed", len(clients)).Msg("Websocket hub stopped")
}

// Broadcast queues a message for every client. It never blocks; when the
// queue is full the message is dropped.
func (h *Hub) Broadcast(msgType string, data interface{}) bool {
	select {
	case h.broadcast <- Message{Type: msgType, Data: data}:
		return true
	default:
		h.logger.Warn().Str("message_type", msgType).Msg("Broadcast queue full, dropping message")
		return false
	}
}

// AnnounceComposition broadcasts a feed_published message for comp. It is
// registered with the feed engine's publish hook.
func (h *Hub) AnnounceComposition(comp *feed.Composition) {
	if comp == nil {
		return
	}
	data := FeedPublishedData{
		CompositionID: comp.ID,
		Generation:    comp.Generation,
		Trigger:       comp.Trigger,
		Outcome:       comp.Outcome,
		ComposedAt:    comp.ComposedAt,
	}
	if comp.Feed != nil {
		data.Items = comp.Feed.Len()
	}
	h.Broadcast(MessageTypeFeedPublished, data)
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
