// Package ws serves the live question topic of a conference over WebSocket.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"conferenceqa/internal/delivery/http/helpers"
	"conferenceqa/internal/delivery/http/middleware"
	"conferenceqa/internal/domain"
	"conferenceqa/internal/realtime"
)

const (
	// writeTimeout is the deadline for a single write to a client.
	writeTimeout = 10 * time.Second

	// pongWait is how long to wait for a pong before treating the connection as dead.
	pongWait = 60 * time.Second

	// pingPeriod must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// sendBufSize is the per-client outgoing message buffer depth.
	sendBufSize = 16

	maxReadSize = 512
)

// ConferenceFinder resolves a conference by slug. domain.ConferenceService implements it.
type ConferenceFinder interface {
	GetConferenceBySlug(ctx context.Context, slug string) (*domain.ConferenceDetail, error)
}

// LiveHandler bridges broker topics to WebSocket viewers of GET /conferences/{slug}/live.
type LiveHandler struct {
	conferences ConferenceFinder
	source      domain.EventSource
	logger      *slog.Logger
	upgrader    websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
}

// client is one connected viewer.
type client struct {
	id     string
	topic  string
	conn   *websocket.Conn
	send   chan []byte
	cancel context.CancelFunc
}

// NewLiveHandler returns a handler. allowedOrigins restricts browser origins; empty allows all.
func NewLiveHandler(conferences ConferenceFinder, source domain.EventSource, allowedOrigins []string, logger *slog.Logger) *LiveHandler {
	allowed := middleware.NormalizeOrigins(allowedOrigins)
	return &LiveHandler{
		conferences: conferences,
		source:      source,
		logger:      logger,
		clients:     make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if len(allowed) == 0 || origin == "" {
					return true
				}
				_, ok := allowed[origin]
				return ok
			},
		},
	}
}

// ServeLive godoc
// @Summary Live question notifications
// @Description WebSocket. Each new question on the conference produces a text frame {"conference_key":"<slug>","event":"new-question"}. Clients re-fetch GET /questions on every frame.
// @Tags conferences
// @Param slug path string true "Conference slug"
// @Success 101 "Switching Protocols"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 503 {object} helpers.APIResponse "error.code: service_unavailable"
// @Router /conferences/{slug}/live [get]
func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	detail, err := h.conferences.GetConferenceBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, domain.ErrConferenceNotFound.Error())
			return
		}
		h.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal server error")
		return
	}
	topic := realtime.Topic(detail.Conference.TopicKey())

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	events, unsubscribe, err := h.source.Subscribe(ctx, topic)
	if err != nil {
		h.logger.WarnContext(r.Context(), "live subscribe failed", "topic", topic, "err", err)
		helpers.WriteJSONError(w, http.StatusServiceUnavailable, helpers.ErrCodeServiceUnavailable, "live updates unavailable")
		return
	}
	defer unsubscribe()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader has already written the error response.
		return
	}

	c := &client{
		id:     uuid.NewString(),
		topic:  topic,
		conn:   conn,
		send:   make(chan []byte, sendBufSize),
		cancel: cancel,
	}
	h.register(c)
	defer h.unregister(c)
	h.logger.DebugContext(r.Context(), "live client connected", "conn_id", c.id, "topic", topic)

	go h.forward(ctx, c, events)
	go c.writePump()
	c.readPump() // blocks until the connection closes
	h.logger.DebugContext(r.Context(), "live client disconnected", "conn_id", c.id, "topic", topic)
}

// Count returns the number of connected viewers.
func (h *LiveHandler) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every viewer. Hijacked connections are not closed by http.Server.Shutdown.
func (h *LiveHandler) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.cancel()
	}
}

func (h *LiveHandler) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *LiveHandler) unregister(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

// forward copies topic events into the client's send buffer. It owns c.send and closes it
// when the subscription ends or the viewer falls too far behind.
func (h *LiveHandler) forward(ctx context.Context, c *client, events <-chan domain.NotificationEvent) {
	defer close(c.send)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				h.logger.Error("encode live event", "conn_id", c.id, "err", err)
				continue
			}
			select {
			case c.send <- data:
			default:
				h.logger.Warn("live client too slow, disconnecting", "conn_id", c.id, "topic", c.topic)
				return
			}
		}
	}
}

// writePump drains the send channel to the connection and sends periodic pings.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "")) //nolint:errcheck
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump processes control frames and detects disconnects. Viewers never send data.
func (c *client) readPump() {
	defer c.cancel()
	c.conn.SetReadLimit(maxReadSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
