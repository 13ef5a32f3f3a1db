package entities

// RoomInfo is the seating record of a room, kept as a Redis hash next to the
// game snapshot. Field tags double as hash field names.
type RoomInfo struct {
	RoomID      string `json:"roomID"`
	HostName    string `json:"hostName"`
	HostID      string `json:"hostID"`
	GuestName   string `json:"guestName"`
	GuestID     string `json:"guestID"`
	AI          bool   `json:"ai"`
	GuestJoined bool   `json:"guestJoined"`
	CreatedAt   int64  `json:"createdAt"`
}

// Full reports whether seat 1 is taken, by a person or by the computer.
func (r RoomInfo) Full() bool {
	return r.AI || r.GuestJoined
}

// Fields flattens r for HSET.
func (r RoomInfo) Fields() map[string]interface{} {
	return map[string]interface{}{
		"roomID":      r.RoomID,
		"hostName":    r.HostName,
		"hostID":      r.HostID,
		"guestName":   r.GuestName,
		"guestID":     r.GuestID,
		"ai":          r.AI,
		"guestJoined": r.GuestJoined,
		"createdAt":   r.CreatedAt,
	}
}
