package services

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	keyOnlineAdmins = "livro:admin:online"

	// MessageRevalidation is the hub message type for refreshed pages.
	MessageRevalidation = "revalidacao"
)

// HubMessage is what admin clients receive over the socket.
type HubMessage struct {
	Type      string          `json:"type"`
	Content   json.RawMessage `json:"content"`
	Timestamp time.Time       `json:"timestamp"`
}

// Hub keeps the connected admin clients and fans notices out to them.
type Hub struct {
	clients map[*Client]bool
	mu      sync.RWMutex

	// rdb tracks connected admin emails across instances; may be nil
	rdb *redis.Client

	connectionCount int32
	maxConnections  int32

	stopCh   chan struct{}
	stopOnce sync.Once
	log      *zap.Logger
}

// NewHub creates a Hub accepting up to maxConnections clients.
func NewHub(rdb *redis.Client, maxConnections int, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:        make(map[*Client]bool),
		rdb:            rdb,
		maxConnections: int32(maxConnections),
		stopCh:         make(chan struct{}),
		log:            logger,
	}
}

// Run pings clients periodically and drops dead ones until Stop.
func (h *Hub) Run() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.cleanupExpiredConnections()
		case <-h.stopCh:
			return
		}
	}
}

// Stop ends Run and disconnects every client.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.stopCh)
		h.mu.Lock()
		defer h.mu.Unlock()
		for c := range h.clients {
			h.drop(c)
		}
	})
}

// Register adds a client. It refuses when the hub is full or stopped.
func (h *Hub) Register(c *Client) bool {
	h.mu.Lock()
	select {
	case <-h.stopCh:
		h.mu.Unlock()
		h.log.Warn("admin socket refused: hub stopped", zap.String("client", c.ID))
		return false
	default:
	}
	if atomic.LoadInt32(&h.connectionCount) >= h.maxConnections {
		h.mu.Unlock()
		h.log.Warn("admin socket refused: connection limit reached", zap.Int32("max", h.maxConnections))
		return false
	}
	h.clients[c] = true
	atomic.AddInt32(&h.connectionCount, 1)
	h.mu.Unlock()

	if h.rdb != nil && c.Email != "" {
		if err := h.rdb.SAdd(context.Background(), keyOnlineAdmins, c.Email).Err(); err != nil {
			h.log.Warn("online admin not recorded", zap.Error(err))
		}
	}
	h.log.Info("admin socket connected", zap.String("client", c.ID), zap.Int32("connections", h.ConnectionCount()))
	return true
}

// Unregister removes a client and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		h.drop(c)
	}
	h.mu.Unlock()

	if ok && h.rdb != nil && c.Email != "" {
		if err := h.rdb.SRem(context.Background(), keyOnlineAdmins, c.Email).Err(); err != nil {
			h.log.Warn("online admin not cleared", zap.Error(err))
		}
	}
}

// drop must be called with mu held.
func (h *Hub) drop(c *Client) {
	delete(h.clients, c)
	close(c.Send)
	atomic.AddInt32(&h.connectionCount, -1)
}

// Broadcast queues message for every client. Clients whose buffer is full
// miss it.
func (h *Hub) Broadcast(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.Send <- message:
		default:
			h.log.Debug("admin socket buffer full, notice skipped", zap.String("client", c.ID))
		}
	}
}

// BroadcastNotice wraps a raw revalidation notice, as read from Kafka, and
// broadcasts it.
func (h *Hub) BroadcastNotice(raw []byte) {
	msg, err := json.Marshal(HubMessage{Type: MessageRevalidation, Content: raw, Timestamp: time.Now().UTC()})
	if err != nil {
		h.log.Warn("revalidation notice dropped", zap.Error(err))
		return
	}
	h.Broadcast(msg)
}

// PublishRevalidation delivers notice straight to the local clients. It is
// the publisher used when Kafka is disabled.
func (h *Hub) PublishRevalidation(_ context.Context, notice RevalidationNotice) error {
	raw, err := json.Marshal(notice)
	if err != nil {
		return err
	}
	h.BroadcastNotice(raw)
	return nil
}

// OnlineAdmins lists the emails of connected admins across instances.
func (h *Hub) OnlineAdmins(ctx context.Context) ([]string, error) {
	if h.rdb == nil {
		return nil, nil
	}
	return h.rdb.SMembers(ctx, keyOnlineAdmins).Result()
}

// ConnectionCount is the number of registered clients.
func (h *Hub) ConnectionCount() int32 {
	return atomic.LoadInt32(&h.connectionCount)
}

func (h *Hub) cleanupExpiredConnections() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		if c.Conn == nil {
			continue
		}
		if err := c.Conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(time.Second)); err != nil {
			h.log.Info("dropping stale admin socket", zap.String("client", c.ID), zap.Error(err))
			h.drop(c)
		}
	}
}
