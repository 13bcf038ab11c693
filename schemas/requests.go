package schemas

type CreateRoomRequest struct {
	RaceType   string `json:"raceType,omitempty"`
	MaxPlayers int    `json:"maxPlayers,omitempty"`
}

type CreateRoomResponse struct {
	RoomId string `json:"roomId"`
}

type RoomSummary struct {
	Id             string `json:"id"`
	PlayerCount    int    `json:"playerCount"`
	SpectatorCount int    `json:"spectatorCount"`
	MaxPlayers     int    `json:"maxPlayers"`
	IsStarted      bool   `json:"isStarted"`
	State          string `json:"state"`
	OwnerName      string `json:"ownerName,omitempty"`
	RaceType       string `json:"raceType"`
	CreatedAt      int64  `json:"createdAt"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}
