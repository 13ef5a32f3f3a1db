package controller

import (
	"net/http"

	"go-cubirds/dto"
	"go-cubirds/middleware"
	"go-cubirds/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RoomController struct {
	svc    *service.RoomService
	logger *zap.Logger
}

func NewRoomController(svc *service.RoomService, logger *zap.Logger) *RoomController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoomController{svc: svc, logger: logger}
}

func (rc *RoomController) CreateRoom(c *gin.Context) {
	var req dto.CreateRoomRequest
	// an empty body creates a room with default names
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, "invalid request body", nil)
			return
		}
	}

	seat, err := rc.svc.CreateRoom(c.Request.Context(), req)
	if err != nil {
		failErr(c, rc.logger, err)
		return
	}
	ok(c, "room created", seat)
}

func (rc *RoomController) JoinRoom(c *gin.Context) {
	var req dto.JoinRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "name is required", nil)
		return
	}

	seat, err := rc.svc.JoinRoom(c.Request.Context(), c.Param("roomID"), req.Name)
	if err != nil {
		failErr(c, rc.logger, err)
		return
	}
	ok(c, "joined room", seat)
}

func (rc *RoomController) GetRoomList(c *gin.Context) {
	rooms, err := rc.svc.ListRooms(c.Request.Context())
	if err != nil {
		failErr(c, rc.logger, err)
		return
	}
	ok(c, "ok", dto.GetRoomList{Rooms: rooms})
}

func (rc *RoomController) GetRoomInfo(c *gin.Context) {
	detail, err := rc.svc.GetRoom(c.Request.Context(), c.Param("roomID"))
	if err != nil {
		failErr(c, rc.logger, err)
		return
	}
	ok(c, "ok", detail)
}

func (rc *RoomController) DeleteRoom(c *gin.Context) {
	claims, found := middleware.ClaimsFrom(c)
	if !found {
		fail(c, http.StatusUnauthorized, "missing seat token", nil)
		return
	}
	if err := rc.svc.DeleteRoom(c.Request.Context(), c.Param("roomID"), claims.Seat); err != nil {
		failErr(c, rc.logger, err)
		return
	}
	ok(c, "room deleted", nil)
}
