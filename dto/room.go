package dto

import "go-cubirds/engine"

type CreateRoomRequest struct {
	Name string `json:"name"`
	AI   bool   `json:"ai"`
}

type JoinRoomRequest struct {
	Name string `json:"name" binding:"required"`
}

// SeatResponse is returned to whoever takes a seat. Token authorises moves
// and the websocket for that seat only.
type SeatResponse struct {
	RoomID   string `json:"room_id"`
	Seat     int    `json:"seat"`
	PlayerID string `json:"player_id"`
	Token    string `json:"token"`
}

type RoomInfo struct {
	RoomID     string        `json:"roomID"`
	HostName   string        `json:"hostName"`
	GuestName  string        `json:"guestName"`
	AI         bool          `json:"ai"`
	Full       bool          `json:"full"`
	Status     engine.Status `json:"status"`
	Round      int           `json:"round"`
	LastAction []string      `json:"lastAction"`
}

type GetRoomList struct {
	Rooms []RoomInfo `json:"rooms"`
}

type RoomDetail struct {
	Info    RoomInfo `json:"info"`
	Version int64    `json:"version"`
	State   GameView `json:"state"`
}
