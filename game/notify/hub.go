package notify

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/wricardo/mcp-training/game2048/game/engine"
)

const (
	// EventStateUpdate is sent after every change to a session's board
	EventStateUpdate = "state_update"

	// Pending broadcasts held while the run loop is busy
	broadcastBuffer = 256

	// Default per-subscriber queue length
	DefaultSubscriberBuffer = 16
)

// Message is delivered to every subscriber of a session
type Message struct {
	SessionID string            `json:"session_id"`
	GameState *engine.GameState `json:"game_state,omitempty"`
	Event     string            `json:"event,omitempty"`
	Data      interface{}       `json:"data,omitempty"`
}

// Subscription receives messages for one session until closed
type Subscription struct {
	hub       *Hub
	send      chan *Message
	sessionID string
	once      sync.Once
}

// C returns the delivery channel. It is closed when the subscription is
// closed, when the subscriber falls too far behind, or when the hub stops.
func (s *Subscription) C() <-chan *Message {
	return s.send
}

// SessionID returns the session this subscription follows
func (s *Subscription) SessionID() string {
	return s.sessionID
}

// Close unregisters the subscription
func (s *Subscription) Close() {
	s.once.Do(func() {
		select {
		case s.hub.unregister <- s:
		case <-s.hub.stopped:
		}
	})
}

// Hub maintains the set of active subscribers and broadcasts messages
type Hub struct {
	// Registered subscribers by session ID
	sessions map[string]map[*Subscription]bool

	broadcast  chan *Message
	register   chan *Subscription
	unregister chan *Subscription

	// Closed when Run returns
	stopped chan struct{}

	logger zerolog.Logger
}

// Option configures a Hub
type Option func(*Hub)

// WithLogger sets the hub's logger
func WithLogger(logger zerolog.Logger) Option {
	return func(h *Hub) {
		h.logger = logger
	}
}

// NewHub creates a new notification hub. Nothing is delivered until Run is called,
// and Subscribe blocks until the run loop accepts the registration.
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		sessions:   make(map[string]map[*Subscription]bool),
		broadcast:  make(chan *Message, broadcastBuffer),
		register:   make(chan *Subscription),
		unregister: make(chan *Subscription),
		stopped:    make(chan struct{}),
		logger:     log.With().Str("component", "notify").Logger(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run starts the hub's event loop and blocks until ctx is cancelled.
// On return every open subscription channel is closed.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.stopped)
	defer h.closeAll()

	for {
		select {
		case <-ctx.Done():
			return

		case sub := <-h.register:
			h.registerSubscriber(sub)

		case sub := <-h.unregister:
			h.unregisterSubscriber(sub)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

// Subscribe registers a subscriber for sessionID. buffer <= 0 uses
// DefaultSubscriberBuffer. It blocks until Run picks up the registration, so
// call it after Run has started (or from another goroutine). Every broadcast
// enqueued after Subscribe returns reaches the new subscriber.
// Subscribing to a stopped hub returns a closed subscription.
func (h *Hub) Subscribe(sessionID string, buffer int) *Subscription {
	if buffer <= 0 {
		buffer = DefaultSubscriberBuffer
	}
	sub := &Subscription{
		hub:       h,
		send:      make(chan *Message, buffer),
		sessionID: sessionID,
	}

	select {
	case h.register <- sub:
	case <-h.stopped:
		close(sub.send)
	}
	return sub
}

// BroadcastToSession sends a game state update to all subscribers of a session.
// It never blocks: updates are dropped when the hub is stopped or saturated.
func (h *Hub) BroadcastToSession(sessionID string, state *engine.GameState) {
	h.enqueue(&Message{
		SessionID: sessionID,
		GameState: state,
		Event:     EventStateUpdate,
	})
}

// BroadcastEvent sends a custom event to all subscribers of a session
func (h *Hub) BroadcastEvent(sessionID string, event string, data interface{}) {
	h.enqueue(&Message{
		SessionID: sessionID,
		Event:     event,
		Data:      data,
	})
}

func (h *Hub) enqueue(message *Message) {
	select {
	case <-h.stopped:
		return
	default:
	}

	select {
	case h.broadcast <- message:
	default:
		h.logger.Warn().Str("session", message.SessionID).Str("event", message.Event).
			Msg("broadcast queue full, dropping message")
	}
}

// registerSubscriber adds a subscriber to a session
func (h *Hub) registerSubscriber(sub *Subscription) {
	if h.sessions[sub.sessionID] == nil {
		h.sessions[sub.sessionID] = make(map[*Subscription]bool)
	}
	h.sessions[sub.sessionID][sub] = true

	h.logger.Debug().Str("session", sub.sessionID).Int("subscribers", len(h.sessions[sub.sessionID])).
		Msg("subscriber registered")
}

// unregisterSubscriber removes a subscriber from a session
func (h *Hub) unregisterSubscriber(sub *Subscription) {
	if subs, ok := h.sessions[sub.sessionID]; ok {
		if _, ok := subs[sub]; ok {
			delete(subs, sub)
			close(sub.send)

			// Clean up empty sessions
			if len(subs) == 0 {
				delete(h.sessions, sub.sessionID)
			}

			h.logger.Debug().Str("session", sub.sessionID).Int("subscribers", len(subs)).
				Msg("subscriber unregistered")
		}
	}
}

// broadcastMessage sends a message to all subscribers in a session
func (h *Hub) broadcastMessage(message *Message) {
	if subs, ok := h.sessions[message.SessionID]; ok {
		for sub := range subs {
			select {
			case sub.send <- message:
			default:
				// Subscriber's queue is full, drop it
				h.logger.Warn().Str("session", sub.sessionID).Msg("slow subscriber dropped")
				h.unregisterSubscriber(sub)
			}
		}
	}
}

func (h *Hub) closeAll() {
	for _, subs := range h.sessions {
		for sub := range subs {
			close(sub.send)
		}
	}
	h.sessions = make(map[string]map[*Subscription]bool)
}
