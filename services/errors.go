package services

import "errors"

// Client request errors. The message is sent back to the originating
// connection as is.
var (
	RoomNotFound        = errors.New("room not found")
	RoomFull            = errors.New("room full")
	AlreadyStarted      = errors.New("already started")
	NotRoomOwner        = errors.New("only the room owner can do that")
	NotEnoughPlayers    = errors.New("need at least 1 player to start")
	SpectatorAction     = errors.New("spectators cannot race")
	ParticipantNotFound = errors.New("player not found or already connected")
	PowerUpUnavailable  = errors.New("power-up is not available")
	InvalidDifficulty   = errors.New("unknown bot difficulty")
	AlreadySeated       = errors.New("connection already has a seat in this room")
)
