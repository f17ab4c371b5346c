package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/yungbote/transfermarket-backend/internal/observability"
	"github.com/yungbote/transfermarket-backend/internal/platform/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
	sendBufferSize = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type Client struct {
	ID       uuid.UUID
	Outbound chan FeedMessage
	done     chan struct{}
	once     sync.Once
}

// Hub fans committed transfer events out to connected feed clients.
// Slow clients drop messages instead of blocking publishers.
type Hub struct {
	mu      sync.RWMutex
	log     *logger.Logger
	metrics *observability.Metrics
	clients map[*Client]bool
}

func NewHub(log *logger.Logger, metrics *observability.Metrics) *Hub {
	if log == nil {
		log = logger.Nop()
	}
	return &Hub{
		log:     log.With("component", "FeedHub"),
		metrics: metrics,
		clients: make(map[*Client]bool),
	}
}

func (hub *Hub) NewClient() *Client {
	c := &Client{
		ID:       uuid.New(),
		Outbound: make(chan FeedMessage, sendBufferSize),
		done:     make(chan struct{}),
	}
	hub.mu.Lock()
	hub.clients[c] = true
	n := len(hub.clients)
	hub.mu.Unlock()
	hub.metrics.SetFeedClients(n)
	hub.log.Debug("Feed client connected", "clientID", c.ID, "total_clients", n)
	return c
}

func (hub *Hub) CloseClient(c *Client) {
	if c == nil {
		return
	}
	c.once.Do(func() {
		hub.mu.Lock()
		delete(hub.clients, c)
		n := len(hub.clients)
		close(c.done)
		close(c.Outbound)
		hub.mu.Unlock()
		hub.metrics.SetFeedClients(n)
		hub.log.Debug("Feed client disconnected", "clientID", c.ID, "total_clients", n)
	})
}

func (hub *Hub) ClientCount() int {
	hub.mu.RLock()
	defer hub.mu.RUnlock()
	return len(hub.clients)
}

func (hub *Hub) Broadcast(msg FeedMessage) {
	hub.mu.RLock()
	defer hub.mu.RUnlock()
	for c := range hub.clients {
		select {
		case c.Outbound <- msg:
		default:
			hub.log.Warn("Dropping feed message; outbound buffer full", "clientID", c.ID, "event", msg.Event)
		}
	}
}

// Publish broadcasts msg to local clients. It lets the hub stand in for the
// redis bus in single-process deployments.
func (hub *Hub) Publish(ctx context.Context, msg FeedMessage) error {
	if ctx != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	hub.Broadcast(msg)
	return nil
}

// ServeWS upgrades the request and streams feed messages until either side
// goes away.
func (hub *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		hub.log.Warn("Feed websocket upgrade failed", "error", err)
		return
	}
	c := hub.NewClient()
	go hub.readPump(conn, c)
	hub.writePump(r.Context(), conn, c)
}

// readPump discards client frames; it exists to process pongs and notice
// disconnects.
func (hub *Hub) readPump(conn *websocket.Conn, c *Client) {
	defer hub.CloseClient(c)
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				hub.log.Warn("Feed websocket closed unexpectedly", "clientID", c.ID, "error", err)
			}
			return
		}
	}
}

func (hub *Hub) writePump(ctx context.Context, conn *websocket.Conn, c *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		hub.CloseClient(c)
		_ = conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case msg, ok := <-c.Outbound:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			raw, err := json.Marshal(msg)
			if err != nil {
				hub.log.Warn("Failed to marshal feed message", "error", err)
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, raw); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
