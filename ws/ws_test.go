package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-cubirds/dto"
	"go-cubirds/engine"
	"go-cubirds/oracle"
	"go-cubirds/repository"
	"go-cubirds/service"
	"go-cubirds/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

type fixture struct {
	svc    *service.RoomService
	hub    *Hub
	server *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	tokens := utils.NewTokenIssuer("secret", time.Hour)
	svc := service.NewRoomService(
		repository.NewStore(rdb, time.Hour, nil),
		engine.New(engine.WithSeed(5)),
		oracle.NewPolicy(nil, rand.New(rand.NewSource(5)), nil),
		tokens, 0, nil,
	)
	hub := NewHub(svc, tokens, nil)

	r := gin.New()
	r.GET("/ws", hub.ServeWS)
	server := httptest.NewServer(r)
	t.Cleanup(func() {
		hub.Close()
		server.Close()
		svc.Close()
	})
	return &fixture{svc: svc, hub: hub, server: server}
}

func (f *fixture) dial(t *testing.T, roomID, token string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws?roomID=" + roomID + "&token=" + token
	return websocket.DefaultDialer.Dial(url, nil)
}

func readSync(t *testing.T, conn *websocket.Conn) dto.SyncMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var msg dto.SyncMessage
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, "sync", msg.Type)
	return msg
}

func readError(t *testing.T, conn *websocket.Conn) dto.ErrorMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var msg dto.ErrorMessage
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, "error", msg.Type)
	return msg
}

func TestServeWSRejectsBadTokens(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	host, err := f.svc.CreateRoom(ctx, dto.CreateRoomRequest{Name: "Ada"})
	require.NoError(t, err)
	other, err := f.svc.CreateRoom(ctx, dto.CreateRoomRequest{Name: "Grace"})
	require.NoError(t, err)

	tests := []struct {
		name   string
		roomID string
		token  string
		want   int
	}{
		{"missing token", host.RoomID, "", http.StatusBadRequest},
		{"garbage token", host.RoomID, "garbage", http.StatusUnauthorized},
		{"token for other room", host.RoomID, other.Token, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, resp, err := f.dial(t, tt.roomID, tt.token)
			require.Error(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestServeWSBroadcastsMoves(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	host, err := f.svc.CreateRoom(ctx, dto.CreateRoomRequest{Name: "Ada"})
	require.NoError(t, err)
	guest, err := f.svc.JoinRoom(ctx, host.RoomID, "Grace")
	require.NoError(t, err)

	hostConn, _, err := f.dial(t, host.RoomID, host.Token)
	require.NoError(t, err)
	defer hostConn.Close()
	guestConn, _, err := f.dial(t, guest.RoomID, guest.Token)
	require.NoError(t, err)
	defer guestConn.Close()

	first := readSync(t, hostConn)
	assert.Equal(t, 0, first.Seat)
	assert.Equal(t, int64(2), first.Version)
	assert.Equal(t, "Grace", first.State.Players[1].Name)
	assert.Equal(t, 1, readSync(t, guestConn).Seat)
	assert.Eventually(t, func() bool { return f.hub.ConnectionCount(host.RoomID) == 2 },
		time.Second, 10*time.Millisecond)

	card := first.State.Players[0].Hand[0]
	require.NoError(t, hostConn.WriteJSON(map[string]interface{}{
		"type": "play",
		"payload": map[string]interface{}{
			"species":  card.String(),
			"rowIndex": "1",
			"side":     "left",
		},
	}))

	for _, conn := range []*websocket.Conn{hostConn, guestConn} {
		msg := readSync(t, conn)
		assert.Equal(t, int64(3), msg.Version)
		assert.NotEqual(t, engine.PhasePlay, msg.State.Phase)
	}
}

func TestServeWSErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	host, err := f.svc.CreateRoom(ctx, dto.CreateRoomRequest{Name: "Ada"})
	require.NoError(t, err)
	guest, err := f.svc.JoinRoom(ctx, host.RoomID, "Grace")
	require.NoError(t, err)

	conn, _, err := f.dial(t, guest.RoomID, guest.Token)
	require.NoError(t, err)
	defer conn.Close()
	readSync(t, conn)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	assert.Equal(t, "malformed message", readError(t, conn).Message)

	require.NoError(t, conn.WriteJSON(map[string]interface{}{"type": "dance"}))
	assert.Contains(t, readError(t, conn).Message, "unknown message type")

	require.NoError(t, conn.WriteJSON(map[string]interface{}{"type": "pass"}))
	assert.Contains(t, readError(t, conn).Message, service.ErrNotYourTurn.Error())

	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"type":    "play",
		"payload": map[string]interface{}{"species": "Dodo", "rowIndex": 0, "side": "LEFT"},
	}))
	assert.Contains(t, readError(t, conn).Message, dto.ErrBadMove.Error())

	require.NoError(t, conn.WriteJSON(map[string]interface{}{"type": "sync"}))
	assert.Equal(t, int64(2), readSync(t, conn).Version)
}
