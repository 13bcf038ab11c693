package handlers

import (
	"errors"
	"sync"
	"time"

	"github.com/baksohyeon/bycle-console-game/pkg/logx"
	"github.com/baksohyeon/bycle-console-game/schemas"
	"github.com/baksohyeon/bycle-console-game/services"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 4096
	messageBuffer  = 64
)

var ClientClosed = errors.New("client connection is closed")

// Client is one websocket connection. It is the Conn a room member sends
// through; the member outlives it across reconnects.
type Client struct {
	Id     string
	RoomId string
	// To keep track of closed channel
	IsClosed   bool
	Connection *websocket.Conn
	Message    chan []byte
	mutex      sync.Mutex

	limiter  *rate.Limiter
	sessions *services.SessionService
	races    *services.RaceService
}

func newClient(
	id string,
	connection *websocket.Conn,
	limiter *rate.Limiter,
	sessions *services.SessionService,
	races *services.RaceService,
) *Client {
	return &Client{
		Id:         id,
		Connection: connection,
		Message:    make(chan []byte, messageBuffer),
		limiter:    limiter,
		sessions:   sessions,
		races:      races,
	}
}

// Send queues a frame without blocking. A client that cannot keep up
// loses frames; the next state update supersedes them.
func (client *Client) Send(message []byte) error {
	client.mutex.Lock()
	defer client.mutex.Unlock()

	if client.IsClosed {
		return ClientClosed
	}

	select {
	case client.Message <- message:
	default:
		logx.Logger.Warnw(
			"client buffer is full, dropping frame",
			"clientId", client.Id,
		)
	}

	return nil
}

// Close may be called from the room (takeover, reaper, shutdown) and from
// the pumps; only the first call does anything.
func (client *Client) Close() error {
	// https://go101.org/article/channel-closing.html
	client.mutex.Lock()
	defer client.mutex.Unlock()

	if client.IsClosed {
		return nil
	}

	close(client.Message)
	client.IsClosed = true

	return client.Connection.Close()
}

func (client *Client) Write() {
	defer client.Close()

	for {
		message, ok := <-client.Message

		if !ok {
			logx.Logger.Debugw(
				"client channel is closed!",
				"clientId", client.Id,
			)
			break
		}

		_ = client.Connection.SetWriteDeadline(time.Now().Add(writeWait))

		err := client.Connection.WriteMessage(websocket.TextMessage, message)

		if err != nil {
			logx.Logger.Errorw(
				err.Error(),
				"desc", "could not write client message",
				"clientId", client.Id,
			)
			break
		}
	}
}

// Read blocks until the connection drops, then releases the room seat
// for reconnection.
func (client *Client) Read() {
	defer func() {
		client.Close()

		if client.RoomId != "" {
			client.sessions.Disconnect(client.RoomId, client.Id)
		}
	}()

	client.Connection.SetReadLimit(maxMessageSize)

	for {
		_, message, err := client.Connection.ReadMessage()

		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logx.Logger.Errorw(
					err.Error(),
					"desc", "could not read client message",
					"clientId", client.Id,
				)
			}
			break
		}

		client.react(message)
	}
}

func (client *Client) react(data []byte) {
	message, err := schemas.DecodeInbound(data)

	if err != nil {
		client.reject(err)
		return
	}

	switch message := message.(type) {
	case *schemas.JoinRoom:
		err = client.sessions.Join(client.Id, client, message)
		if err == nil {
			client.switchRoom(message.RoomId)
		}
	case *schemas.ReconnectAttempt:
		err = client.sessions.Reconnect(client.Id, client, message)
		if err == nil {
			client.switchRoom(message.RoomId)
		}
	case *schemas.PlayerAction:
		if !client.limiter.Allow() {
			return
		}
		err = client.races.Act(message.RoomId, client.Id, message.Action)
	case *schemas.UsePowerUp:
		if !client.limiter.Allow() {
			return
		}
		err = client.races.UsePowerUp(message.RoomId, client.Id, message.PowerUpId)
	case *schemas.StartGame:
		err = client.races.Start(message.RoomId, client.Id)
	case *schemas.AddBot:
		err = client.races.AddBot(message.RoomId, client.Id, message.Difficulty)
	case *schemas.LeaveRoom:
		err = client.sessions.Leave(message.RoomId, client.Id)
		if message.RoomId == client.RoomId {
			client.RoomId = ""
		}
	}

	if err != nil {
		client.reject(err)
	}
}

// switchRoom records the room the client just entered and leaves the
// previous one. It runs only after the new room accepted the client.
func (client *Client) switchRoom(roomId string) {
	if client.RoomId != "" && client.RoomId != roomId {
		_ = client.sessions.Leave(client.RoomId, client.Id)
	}

	client.RoomId = roomId
}

// reject reports a client request error to this connection only.
func (client *Client) reject(err error) {
	logx.Logger.Debugw(
		"client request rejected",
		"clientId", client.Id,
		"roomId", client.RoomId,
		"reason", err.Error(),
	)

	body, encodeErr := schemas.Encode(schemas.ErrorEvent, schemas.ErrorPayload{Message: err.Error()})
	if encodeErr != nil {
		return
	}

	_ = client.Send(body)
}
