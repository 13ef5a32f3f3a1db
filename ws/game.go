package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go-cubirds/dto"
	"go-cubirds/engine"
	"go-cubirds/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type messageHandler func(h *Hub, ctx context.Context, c *Client, roomID string, payload map[string]interface{}) error

var messageHandlers = map[string]messageHandler{
	"play":      moveHandler(engine.KindPlay),
	"draw":      moveHandler(engine.KindDrawCards),
	"skip_draw": moveHandler(engine.KindSkipDraw),
	"flock":     moveHandler(engine.KindFlock),
	"pass":      moveHandler(engine.KindPass),
	"sync":      handleSyncMessage,
}

// moveHandler decodes the payload as a move of the given kind and submits it
// for the connection's seat. The resulting snapshot reaches every client
// through the room subscription.
func moveHandler(kind engine.MoveKind) messageHandler {
	return func(h *Hub, ctx context.Context, c *Client, roomID string, payload map[string]interface{}) error {
		var req dto.MoveRequest
		if err := decodePayload(payload, &req); err != nil {
			return fmt.Errorf("%w: %v", dto.ErrBadMove, err)
		}
		req.Type = string(kind)
		move, err := req.ToMove()
		if err != nil {
			return err
		}
		out, err := h.svc.SubmitMove(ctx, roomID, c.Seat, move)
		if errors.Is(err, service.ErrInvalidMove) {
			return errors.New(out.Message)
		}
		return err
	}
}

func handleSyncMessage(h *Hub, ctx context.Context, c *Client, roomID string, _ map[string]interface{}) error {
	return h.syncClient(ctx, c, roomID)
}

func (h *Hub) syncClient(ctx context.Context, c *Client, roomID string) error {
	detail, err := h.svc.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}
	return c.send(dto.SyncMessage{
		Type:    "sync",
		RoomID:  roomID,
		Seat:    c.Seat,
		Version: detail.Version,
		State:   detail.State,
	})
}

// ServeWS authenticates ?roomID=&token= and upgrades the request. The
// connection gets a sync of the current snapshot, then every later one.
func (h *Hub) ServeWS(c *gin.Context) {
	roomID := c.Query("roomID")
	token := c.Query("token")
	if roomID == "" || token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"status_code": http.StatusBadRequest, "msg": "roomID and token are required"})
		return
	}
	claims, err := h.tokens.Parse(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"status_code": http.StatusUnauthorized, "msg": err.Error()})
		return
	}
	if claims.RoomID != roomID {
		c.JSON(http.StatusForbidden, gin.H{"status_code": http.StatusForbidden, "msg": "token is for another room"})
		return
	}
	if _, err := h.svc.GetRoom(c.Request.Context(), roomID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrRoomNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"status_code": status, "msg": err.Error()})
		return
	}

	conn, err := upgradeConnection(c)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	client := &Client{Seat: claims.Seat, PlayerID: claims.PlayerID, conn: conn}
	log := h.logger.With(zap.String("room", roomID), zap.Int("seat", client.Seat))

	if err := h.join(roomID, client); err != nil {
		log.Error("join room", zap.Error(err))
		client.send(dto.ErrorMessage{Type: "error", Message: "room unavailable"})
		return
	}
	defer h.leave(roomID, client)
	log.Info("player connected")

	ctx := context.Background()
	if err := h.syncClient(ctx, client, roomID); err != nil {
		log.Warn("initial sync failed", zap.Error(err))
		return
	}
	h.listen(ctx, client, roomID, log)
	log.Info("player disconnected")
}

func (h *Hub) listen(ctx context.Context, c *Client, roomID string, log *zap.Logger) {
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg dto.WSMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.send(dto.ErrorMessage{Type: "error", Message: "malformed message"})
			continue
		}
		handler, found := messageHandlers[msg.Type]
		if !found {
			c.send(dto.ErrorMessage{Type: "error", Message: fmt.Sprintf("unknown message type %q", msg.Type)})
			continue
		}
		if err := handler(h, ctx, c, roomID, msg.Payload); err != nil {
			log.Debug("message rejected", zap.String("type", msg.Type), zap.Error(err))
			c.send(dto.ErrorMessage{Type: "error", Message: err.Error()})
		}
	}
}
