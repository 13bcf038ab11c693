package schemas

import (
	"encoding/json"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/baksohyeon/bycle-console-game/entities"
)

const (
	JoinRoomType         = "join-room"
	ReconnectAttemptType = "reconnect-attempt"
	PlayerActionType     = "player-action"
	UsePowerUpType       = "use-power-up"
	StartGameType        = "start-game"
	AddBotType           = "add-bot"
	LeaveRoomType        = "leave-room"
)

const maxNameLength = 24

var (
	InvalidMessage = errors.New("invalid message")
	UnknownMessage = errors.New("unknown message type")
	MissingRoomId  = errors.New("room id is required")
	MissingName    = errors.New("player name is required")
	NameTooLong    = errors.New("player name is too long")
	InvalidAction  = errors.New("invalid action")
	MissingPowerUp = errors.New("power-up id is required")
)

// Inbound is a decoded and validated client message.
type Inbound interface {
	Room() string
	Validate() error
}

type JoinRoom struct {
	RoomId      string `json:"roomId"`
	PlayerName  string `json:"playerName"`
	PlayerColor string `json:"playerColor"`
	PlayerToken string `json:"playerToken,omitempty"`
}

func (message *JoinRoom) Room() string { return message.RoomId }

func (message *JoinRoom) Validate() error {
	message.PlayerName = strings.TrimSpace(message.PlayerName)
	if message.RoomId == "" {
		return MissingRoomId
	}
	return validateName(message.PlayerName)
}

type ReconnectAttempt struct {
	RoomId      string `json:"roomId"`
	PlayerName  string `json:"playerName"`
	PlayerToken string `json:"playerToken,omitempty"`
}

func (message *ReconnectAttempt) Room() string { return message.RoomId }

func (message *ReconnectAttempt) Validate() error {
	message.PlayerName = strings.TrimSpace(message.PlayerName)
	if message.RoomId == "" {
		return MissingRoomId
	}
	if message.PlayerToken != "" {
		return nil
	}
	return validateName(message.PlayerName)
}

type PlayerAction struct {
	RoomId string          `json:"roomId"`
	Action entities.Action `json:"action"`
}

func (message *PlayerAction) Room() string { return message.RoomId }

func (message *PlayerAction) Validate() error {
	if message.RoomId == "" {
		return MissingRoomId
	}
	if !message.Action.Valid() {
		return InvalidAction
	}
	return nil
}

type UsePowerUp struct {
	RoomId    string `json:"roomId"`
	PowerUpId string `json:"powerUpId"`
}

func (message *UsePowerUp) Room() string { return message.RoomId }

func (message *UsePowerUp) Validate() error {
	if message.RoomId == "" {
		return MissingRoomId
	}
	if message.PowerUpId == "" {
		return MissingPowerUp
	}
	return nil
}

type StartGame struct {
	RoomId string `json:"roomId"`
}

func (message *StartGame) Room() string { return message.RoomId }

func (message *StartGame) Validate() error {
	if message.RoomId == "" {
		return MissingRoomId
	}
	return nil
}

type AddBot struct {
	RoomId     string `json:"roomId"`
	Difficulty string `json:"difficulty"`
}

func (message *AddBot) Room() string { return message.RoomId }

func (message *AddBot) Validate() error {
	if message.RoomId == "" {
		return MissingRoomId
	}
	return nil
}

type LeaveRoom struct {
	RoomId string `json:"roomId"`
}

func (message *LeaveRoom) Room() string { return message.RoomId }

func (message *LeaveRoom) Validate() error {
	if message.RoomId == "" {
		return MissingRoomId
	}
	return nil
}

// DecodeInbound parses an envelope into its typed variant and validates it.
func DecodeInbound(data []byte) (Inbound, error) {
	var envelope Envelope

	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, InvalidMessage
	}

	var message Inbound

	switch envelope.Type {
	case JoinRoomType:
		message = &JoinRoom{}
	case ReconnectAttemptType:
		message = &ReconnectAttempt{}
	case PlayerActionType:
		message = &PlayerAction{}
	case UsePowerUpType:
		message = &UsePowerUp{}
	case StartGameType:
		message = &StartGame{}
	case AddBotType:
		message = &AddBot{}
	case LeaveRoomType:
		message = &LeaveRoom{}
	default:
		return nil, UnknownMessage
	}

	if len(envelope.Payload) == 0 {
		return nil, InvalidMessage
	}

	if err := json.Unmarshal(envelope.Payload, message); err != nil {
		return nil, InvalidMessage
	}

	if err := message.Validate(); err != nil {
		return nil, err
	}

	return message, nil
}

func validateName(name string) error {
	if name == "" {
		return MissingName
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return NameTooLong
	}
	return nil
}
