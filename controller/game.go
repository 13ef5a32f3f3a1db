package controller

import (
	"errors"
	"net/http"

	"go-cubirds/dto"
	"go-cubirds/engine"
	"go-cubirds/middleware"
	"go-cubirds/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type GameController struct {
	svc    *service.RoomService
	logger *zap.Logger
}

func NewGameController(svc *service.RoomService, logger *zap.Logger) *GameController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GameController{svc: svc, logger: logger}
}

// Move applies one move for the seat named in the caller's token. A rejected
// move answers 422 with the engine's message and the unchanged state.
func (gc *GameController) Move(c *gin.Context) {
	claims, found := middleware.ClaimsFrom(c)
	if !found {
		fail(c, http.StatusUnauthorized, "missing seat token", nil)
		return
	}
	var req dto.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	move, err := req.ToMove()
	if err != nil {
		failErr(c, gc.logger, err)
		return
	}

	out, err := gc.svc.SubmitMove(c.Request.Context(), c.Param("roomID"), claims.Seat, move)
	if errors.Is(err, service.ErrInvalidMove) {
		fail(c, http.StatusUnprocessableEntity, out.Message, dto.NewMoveResult(out))
		return
	}
	if err != nil {
		failErr(c, gc.logger, err)
		return
	}
	ok(c, out.Message, dto.NewMoveResult(out))
}

// Species lists the static species table.
func (gc *GameController) Species(c *gin.Context) {
	all := engine.AllSpecies()
	infos := make([]engine.SpeciesInfo, 0, len(all))
	for _, s := range all {
		infos = append(infos, s.Info())
	}
	ok(c, "ok", infos)
}

func Health(c *gin.Context) {
	ok(c, "ok", nil)
}
