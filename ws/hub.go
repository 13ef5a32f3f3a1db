package ws

import (
	"context"
	"sync"
	"time"

	"go-cubirds/dto"
	"go-cubirds/repository"
	"go-cubirds/service"
	"go-cubirds/utils"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeWait = 10 * time.Second

// Client is one websocket connection bound to a seat.
type Client struct {
	Seat     int
	PlayerID string

	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *Client) send(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

type roomConns struct {
	clients map[*Client]struct{}
	cancel  context.CancelFunc
}

// Hub tracks the connections of every room and fans out the snapshots the
// room service publishes. A room is subscribed while it has at least one
// connection.
type Hub struct {
	svc    *service.RoomService
	tokens *utils.TokenIssuer
	logger *zap.Logger

	mu    sync.Mutex
	rooms map[string]*roomConns
}

func NewHub(svc *service.RoomService, tokens *utils.TokenIssuer, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		svc:    svc,
		tokens: tokens,
		logger: logger,
		rooms:  make(map[string]*roomConns),
	}
}

func (h *Hub) join(roomID string, c *Client) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if rc, ok := h.rooms[roomID]; ok {
		rc.clients[c] = struct{}{}
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	updates, err := h.svc.Subscribe(ctx, roomID)
	if err != nil {
		cancel()
		return err
	}
	h.rooms[roomID] = &roomConns{
		clients: map[*Client]struct{}{c: {}},
		cancel:  cancel,
	}
	go func() {
		for snap := range updates {
			h.broadcast(snap)
		}
	}()
	return nil
}

func (h *Hub) leave(roomID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	rc, ok := h.rooms[roomID]
	if !ok {
		return
	}
	delete(rc.clients, c)
	if len(rc.clients) == 0 {
		rc.cancel()
		delete(h.rooms, roomID)
	}
}

func (h *Hub) clients(roomID string) []*Client {
	h.mu.Lock()
	defer h.mu.Unlock()

	rc, ok := h.rooms[roomID]
	if !ok {
		return nil
	}
	out := make([]*Client, 0, len(rc.clients))
	for c := range rc.clients {
		out = append(out, c)
	}
	return out
}

// broadcast sends snap to every connection in its room. Connections that
// fail to take the write are closed; their read loop then leaves the room.
func (h *Hub) broadcast(snap repository.Snapshot) {
	for _, c := range h.clients(snap.RoomID) {
		msg := dto.SyncMessage{
			Type:    "sync",
			RoomID:  snap.RoomID,
			Seat:    c.Seat,
			Version: snap.Version,
			State:   dto.Redact(snap.State),
		}
		if err := c.send(msg); err != nil {
			h.logger.Info("broadcast failed, dropping connection",
				zap.String("room", snap.RoomID),
				zap.Int("seat", c.Seat),
				zap.Error(err),
			)
			c.conn.Close()
		}
	}
}

// ConnectionCount reports how many connections roomID has.
func (h *Hub) ConnectionCount(roomID string) int {
	return len(h.clients(roomID))
}

// Close drops every subscription and connection.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for roomID, rc := range h.rooms {
		rc.cancel()
		for c := range rc.clients {
			c.conn.Close()
		}
		delete(h.rooms, roomID)
	}
}
