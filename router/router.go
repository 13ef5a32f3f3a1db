package router

import (
	"go-cubirds/controller"
	"go-cubirds/middleware"
	"go-cubirds/utils"
	"go-cubirds/ws"

	"github.com/gin-gonic/gin"
)

func InitRouter(r *gin.Engine, rooms *controller.RoomController, games *controller.GameController,
	hub *ws.Hub, tokens *utils.TokenIssuer) {
	auth := middleware.SeatAuth(tokens)

	api := r.Group("/room")
	{
		api.POST("/create", rooms.CreateRoom)
		api.GET("/list", rooms.GetRoomList)
		api.GET("/:roomID", rooms.GetRoomInfo)
		api.POST("/:roomID/join", rooms.JoinRoom)
		api.DELETE("/:roomID", auth, rooms.DeleteRoom)
		api.POST("/:roomID/move", auth, games.Move)
	}

	r.GET("/species", games.Species)
	r.GET("/health", controller.Health)

	r.GET("/ws", hub.ServeWS)
}
