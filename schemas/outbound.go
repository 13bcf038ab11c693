package schemas

import "encoding/json"

const (
	ConnectedEvent            = "connected"
	ErrorEvent                = "error"
	JoinedRoomEvent           = "joined-room"
	PlayerJoinedEvent         = "player-joined"
	PlayerLeftEvent           = "player-left"
	PlayerDisconnectedEvent   = "player-disconnected"
	PlayerReconnectedEvent    = "player-reconnected"
	ReconnectedEvent          = "reconnected"
	OwnershipTransferredEvent = "ownership-transferred"
	OwnerLeftDuringGameEvent  = "owner-left-during-game"
	GameStartedEvent          = "game-started"
	GameStateUpdateEvent      = "game-state-update"
	GameFinishedEvent         = "game-finished"
	GameEndedEvent            = "game-ended"
)

// Envelope wraps every websocket frame in both directions.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func Encode(eventType string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return json.Marshal(Envelope{Type: eventType, Payload: body})
}

type Connected struct {
	ConnectionId string `json:"connectionId"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

type ParticipantSummary struct {
	Id          string `json:"id"`
	Name        string `json:"name"`
	Color       string `json:"color"`
	IsConnected bool   `json:"isConnected"`
	IsOwner     bool   `json:"isOwner"`
	IsSpectator bool   `json:"isSpectator"`
	IsBot       bool   `json:"isBot"`
}

type JoinedRoom struct {
	PlayerId    string               `json:"playerId"`
	PlayerToken string               `json:"playerToken"`
	RoomId      string               `json:"roomId"`
	IsOwner     bool                 `json:"isOwner"`
	OwnerName   string               `json:"ownerName,omitempty"`
	IsSpectator bool                 `json:"isSpectator"`
	State       string               `json:"state"`
	GameState   *GameState           `json:"gameState,omitempty"`
	Players     []ParticipantSummary `json:"players"`
	Reconnected bool                 `json:"reconnected"`
}

type PlayerJoined struct {
	Id          string `json:"id"`
	Name        string `json:"name"`
	Color       string `json:"color"`
	IsOwner     bool   `json:"isOwner"`
	IsSpectator bool   `json:"isSpectator"`
	IsBot       bool   `json:"isBot"`
}

// PlayerDeparted is sent for both voluntary leaves and lost connections.
type PlayerDeparted struct {
	PlayerId   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	WasOwner   bool   `json:"wasOwner"`
	NewOwner   string `json:"newOwner,omitempty"`
}

type PlayerReconnected struct {
	Id   string `json:"id"`
	Name string `json:"name"`
}

type Reconnected struct {
	PlayerId    string     `json:"playerId"`
	PlayerToken string     `json:"playerToken"`
	RoomId      string     `json:"roomId"`
	IsOwner     bool       `json:"isOwner"`
	IsSpectator bool       `json:"isSpectator"`
	State       string     `json:"state"`
	GameState   *GameState `json:"gameState"`
}

type OwnershipTransferred struct {
	NewOwnerId   string `json:"newOwnerId,omitempty"`
	NewOwnerName string `json:"newOwnerName,omitempty"`
	Reason       string `json:"reason"`
}

type OwnerLeftDuringGame struct {
	Message     string `json:"message"`
	NewOwner    string `json:"newOwner,omitempty"`
	CanContinue bool   `json:"canContinue"`
}

type GameStarted struct {
	RoomId       string  `json:"roomId"`
	RaceType     string  `json:"raceType"`
	RaceDistance float64 `json:"raceDistance"`
}

type GameFinished struct {
	Winner  string        `json:"winner"`
	Results []FinalResult `json:"results"`
}

type GameEnded struct {
	Reason  string `json:"reason"`
	Message string `json:"message"`
}
