package models

// Principal is the caller identity supplied by the transport layer.
// The core trusts it and only checks that it is consistent with the room.
type Principal struct {
	RoomID   string
	PlayerID string
	Seat     int
	IsHost   bool
}

// HostPrincipal returns a host principal for the room
func HostPrincipal(roomID, playerID string) Principal {
	return Principal{RoomID: roomID, PlayerID: playerID, IsHost: true}
}

// Role returns "host" or "player"
func (p Principal) Role() string {
	if p.IsHost {
		return "host"
	}
	return "player"
}
