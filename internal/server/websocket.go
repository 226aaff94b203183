package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/FocuswithJustin/JuniperStudy/core/library"
	"github.com/FocuswithJustin/JuniperStudy/internal/logging"
	"github.com/FocuswithJustin/JuniperStudy/internal/services"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
	sendBuffer     = 64
	// messagesPerSecond is the sustained request rate per client; bursts
	// of twice that are allowed.
	messagesPerSecond = 5
)

// Message types sent to websocket clients.
const (
	MessageStatus   = "status"
	MessagePage     = "page"
	MessageComplete = "complete"
	MessageError    = "error"
)

// Message is one server-to-client websocket frame.
type Message struct {
	Type      string                   `json:"type"`
	ID        string                   `json:"id,omitempty"`
	Status    *library.Status          `json:"status,omitempty"`
	Result    *services.SearchResponse `json:"result,omitempty"`
	Pages     int                      `json:"pages,omitempty"`
	Error     *ErrorResponse           `json:"error,omitempty"`
	Timestamp string                   `json:"timestamp"`
}

// SearchMessage is a client search request. ID is echoed on every reply.
type SearchMessage struct {
	ID string `json:"id"`
	services.SearchRequest
}

// Client is one websocket connection.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	quit    chan struct{}
	once    sync.Once
	limiter *rateBucket
}

func (c *Client) close() {
	c.once.Do(func() { close(c.quit) })
}

// enqueue blocks until msg is queued or the client has gone.
func (c *Client) enqueue(msg Message) bool {
	data, err := encodeMessage(msg)
	if err != nil {
		logging.Error("failed to marshal websocket message", "error", err)
		return false
	}
	select {
	case c.send <- data:
		return true
	case <-c.quit:
		return false
	}
}

// Hub tracks websocket clients and broadcasts library status changes.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
}

// NewHub creates a new WebSocket hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run handles registration and broadcasting until ctx ends, then closes
// every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			n := len(h.clients)
			h.mu.Unlock()
			logging.WebSocketEvent("client_connected", n)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.close()
			}
			n := len(h.clients)
			h.mu.Unlock()
			logging.WebSocketEvent("client_disconnected", n)

		case message := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					logging.Warn("websocket client too slow, dropping broadcast")
				}
			}
			h.mu.RUnlock()

		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				client.close()
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return
		}
	}
}

func (h *Hub) add(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) remove(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
		c.close()
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast queues msg for every connected client.
func (h *Hub) Broadcast(msg Message) {
	data, err := encodeMessage(msg)
	if err != nil {
		logging.Error("failed to marshal websocket message", "error", err)
		return
	}
	select {
	case h.broadcast <- data:
	default:
		logging.Warn("broadcast channel full, dropping message")
	}
}

func encodeMessage(msg Message) ([]byte, error) {
	if msg.Timestamp == "" {
		msg.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	return json.Marshal(msg)
}

// rateBucket is a token bucket limiting client requests.
type rateBucket struct {
	tokens     float64
	capacity   float64
	refillRate float64
	last       time.Time
	now        func() time.Time
}

func newRateBucket(perSecond int) *rateBucket {
	capacity := float64(perSecond) * 2
	return &rateBucket{tokens: capacity, capacity: capacity, refillRate: float64(perSecond), last: time.Now(), now: time.Now}
}

// allow is only called from the client's read loop.
func (b *rateBucket) allow() bool {
	now := b.now()
	b.tokens = min(b.capacity, b.tokens+now.Sub(b.last).Seconds()*b.refillRate)
	b.last = now
	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// SearchStream upgrades GET /ws/search. Every text message from the client
// is a SearchMessage; the server answers with one "page" message per page
// of hits and a closing "complete", or a single "error".
type SearchStream struct {
	svc            *services.StudyService
	hub            *Hub
	allowedOrigins []string
	upgrader       websocket.Upgrader
}

// NewSearchStream creates the websocket handler.
func NewSearchStream(svc *services.StudyService, hub *Hub, allowedOrigins []string) *SearchStream {
	s := &SearchStream{svc: svc, hub: hub, allowedOrigins: allowedOrigins}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

// checkOrigin admits requests without an Origin header (non-browser
// clients) and browser origins on the allowed list.
func (s *SearchStream) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(s.allowedOrigins) == 0 || isOriginAllowed(origin, s.allowedOrigins) {
		return true
	}
	logging.SecurityEvent("websocket_origin_rejected", "server", "origin", origin)
	return false
}

// Handle is the echo handler.
func (s *SearchStream) Handle(c echo.Context) error {
	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// The upgrader has already written the error response.
		logging.WarnContext(c.Request().Context(), "websocket upgrade failed", "error", err)
		return nil
	}
	client := &Client{
		hub:     s.hub,
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		quit:    make(chan struct{}),
		limiter: newRateBucket(messagesPerSecond),
	}
	if !s.hub.add(client) {
		conn.Close()
		return nil
	}

	status := s.svc.Status()
	client.enqueue(Message{Type: MessageStatus, Status: &status})

	go client.writePump()
	s.readPump(c.Request().Context(), client)
	return nil
}

func (s *SearchStream) readPump(ctx context.Context, c *Client) {
	ctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	defer func() {
		cancel()
		c.hub.remove(c)
		c.conn.Close()
	}()
	go func() {
		select {
		case <-c.quit:
			cancel()
		case <-ctx.Done():
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Warn("websocket unexpected close", "error", err)
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))

		var req SearchMessage
		if err := json.Unmarshal(data, &req); err != nil {
			c.enqueue(Message{Type: MessageError, Error: &ErrorResponse{Error: "invalid search message: " + err.Error(), Field: "body"}})
			continue
		}
		if !c.limiter.allow() {
			c.enqueue(Message{Type: MessageError, ID: req.ID, Error: &ErrorResponse{Error: "rate limit exceeded"}})
			continue
		}
		if !s.stream(ctx, c, &req) {
			return
		}
	}
}

// stream runs one search; it reports false once the client has gone.
func (s *SearchStream) stream(ctx context.Context, c *Client, req *SearchMessage) bool {
	if err := cleanRequest(&req.SearchRequest); err != nil {
		return c.enqueue(errorMessage(req.ID, err))
	}
	pages := 0
	err := s.svc.SearchPages(ctx, &req.SearchRequest, func(resp *services.SearchResponse) error {
		if !c.enqueue(Message{Type: MessagePage, ID: req.ID, Result: resp}) {
			return context.Canceled
		}
		pages++
		return nil
	})
	if err != nil {
		return c.enqueue(errorMessage(req.ID, err))
	}
	return c.enqueue(Message{Type: MessageComplete, ID: req.ID, Pages: pages})
}

func errorMessage(id string, err error) Message {
	body := errorBody(err)
	return Message{Type: MessageError, ID: id, Error: &body}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.close()
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}

		case <-c.quit:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
