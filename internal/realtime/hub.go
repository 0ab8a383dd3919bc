// Package realtime pushes vote and session events to websocket subscribers.
// Events go through Redis pubsub so every instance of the service sees
// writes committed by any other instance.
package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
)

const channelPrefix = "codema:events:"

// Publisher is the engine-facing side of the notifier: one publish per
// vote write and per session transition.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

type Hub struct {
	// registered clients
	clients map[*Client]bool

	// clients by subscribed session id
	sessionClients map[string]map[*Client]bool

	register    chan *Client
	unregister  chan *Client
	subscribe   chan subscription
	unsubscribe chan subscription
	broadcast   chan Event

	rdb    *redis.Client
	pubsub *redis.PubSub

	ctx    context.Context
	cancel context.CancelFunc

	mu sync.RWMutex
}

type subscription struct {
	client    *Client
	sessionID string
}

func NewHub(rdb *redis.Client) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:        make(map[*Client]bool),
		sessionClients: make(map[string]map[*Client]bool),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		subscribe:      make(chan subscription),
		unsubscribe:    make(chan subscription),
		broadcast:      make(chan Event, 64),
		rdb:            rdb,
		ctx:            ctx,
		cancel:         cancel,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		h.pubsub = h.rdb.PSubscribe(h.ctx, channelPrefix+"*")
		go h.consumePubSub()
	}

	for {
		select {
		case client := <-h.register:
			h.addClient(client)

		case client := <-h.unregister:
			h.removeClient(client)

		case sub := <-h.subscribe:
			h.addSubscription(sub)

		case sub := <-h.unsubscribe:
			h.removeSubscription(sub)

		case event := <-h.broadcast:
			h.deliver(event)

		case <-h.ctx.Done():
			slog.Info("Realtime hub shutting down")
			return
		}
	}
}

func (h *Hub) Stop() {
	h.cancel()
	if h.pubsub != nil {
		h.pubsub.Close()
	}
}

// Publish sends the event through Redis so all instances deliver it. With
// no Redis client configured the event is delivered locally only.
func (h *Hub) Publish(ctx context.Context, event Event) {
	if h.rdb == nil {
		select {
		case h.broadcast <- event:
		case <-h.ctx.Done():
		}
		return
	}

	raw, err := json.Marshal(event)
	if err != nil {
		slog.Error("realtime: failed to marshal event", "type", event.Type, "error", err)
		return
	}
	if err := h.rdb.Publish(ctx, channelPrefix+event.SessionID, raw).Err(); err != nil {
		slog.Error("realtime: failed to publish event", "type", event.Type, "sessionID", event.SessionID, "error", err)
	}
}

func (h *Hub) consumePubSub() {
	for msg := range h.pubsub.Channel() {
		var event Event
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			slog.Error("realtime: dropping malformed pubsub payload", "channel", msg.Channel, "error", err)
			continue
		}
		if event.SessionID == "" {
			event.SessionID = strings.TrimPrefix(msg.Channel, channelPrefix)
		}
		select {
		case h.broadcast <- event:
		case <-h.ctx.Done():
			return
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = true
	slog.Info("Realtime client registered", "userID", client.userID)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	for sessionID, clients := range h.sessionClients {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.sessionClients, sessionID)
		}
	}
	close(client.send)
	slog.Info("Realtime client unregistered", "userID", client.userID)
}

func (h *Hub) addSubscription(sub subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sessionClients[sub.sessionID] == nil {
		h.sessionClients[sub.sessionID] = make(map[*Client]bool)
	}
	h.sessionClients[sub.sessionID][sub.client] = true
}

func (h *Hub) removeSubscription(sub subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients := h.sessionClients[sub.sessionID]; clients != nil {
		delete(clients, sub.client)
		if len(clients) == 0 {
			delete(h.sessionClients, sub.sessionID)
		}
	}
}

func (h *Hub) deliver(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.sessionClients[event.SessionID] {
		select {
		case client.send <- event:
		default:
			// slow consumer; drop the event rather than block the hub
			slog.Warn("realtime: dropping event for slow client", "userID", client.userID)
		}
	}
}

// SubscriberCount reports how many clients follow a session.
func (h *Hub) SubscriberCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessionClients[sessionID])
}
