package entities

import (
	"time"

	"github.com/baksohyeon/bycle-console-game/pkg/logx"
)

// Conn is the outbound half of a client connection.
type Conn interface {
	Send(message []byte) error
	Close() error
}

// Participant is a room member that survives reconnects. Players own a
// Bicycle, spectators do not.
type Participant struct {
	// Id is the current connection id and changes on reconnect.
	Id string
	// Token is the persistent identity handed back to the client. Bots have none.
	Token string
	Name  string
	Color string

	Bicycle    *Bicycle
	IsBot      bool
	Difficulty string

	IsConnected    bool
	JoinedAt       time.Time
	LastSeen       time.Time
	DisconnectedAt time.Time
	ReconnectCount int

	Conn Conn
}

func (participant *Participant) IsSpectator() bool {
	return participant.Bicycle == nil
}

func (participant *Participant) Send(message []byte) {
	if !participant.IsConnected || participant.Conn == nil {
		return
	}

	err := participant.Conn.Send(message)

	if err != nil {
		logx.Logger.Errorw(
			err.Error(),
			"desc", "could not send participant message",
			"participantId", participant.Id,
		)
	}
}

// Kick closes the connection and marks the participant disconnected.
// Calling it again is harmless.
func (participant *Participant) Kick() {
	if participant.Conn != nil {
		err := participant.Conn.Close()

		if err != nil {
			logx.Logger.Errorw(
				err.Error(),
				"desc", "could not close participant connection",
				"participantId", participant.Id,
			)
		}
	}

	if !participant.IsBot {
		participant.IsConnected = false
	}
}
