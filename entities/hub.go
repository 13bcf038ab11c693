package entities

import (
	"context"
	"crypto/rand"
	"io"
	"math/big"
	mathrand "math/rand"
	"time"

	"github.com/baksohyeon/bycle-console-game/pkg/logx"
	"github.com/baksohyeon/bycle-console-game/pkg/syncx"
)

// Message is a frame addressed to some members of one room.
type Message struct {
	RoomId      string
	ReceiverIds []string
	Body        []byte
}

// Hub is the room registry. Rooms are created on request and removed by
// the reaper; Run delivers queued messages to room members.
type Hub struct {
	Rooms syncx.Map[string, *Room]

	Context context.Context

	Dispatch chan *Message

	// NewRand seeds the random source of every new room.
	NewRand func() *mathrand.Rand
}

// NewHub creates a new hub with context for lifecycle management.
// The context controls when the hub should shut down.
func NewHub(ctx context.Context, dispatchBufferSize int) *Hub {
	// Zero or negative values could cause unbuffered channels or panics
	bufferSize := dispatchBufferSize

	if bufferSize <= 0 {
		bufferSize = 500
	}

	return &Hub{
		Context:  ctx,
		Dispatch: make(chan *Message, bufferSize),
		NewRand:  timeSeededRand,
	}
}

func timeSeededRand() *mathrand.Rand {
	return mathrand.New(mathrand.NewSource(time.Now().UnixNano()))
}

// Run delivers dispatched messages until the context is cancelled, then
// closes every member connection.
func (hub *Hub) Run() {
	for {
		select {
		case <-hub.Context.Done():
			hub.Rooms.Range(func(roomId string, room *Room) bool {
				room.Lock()
				room.StopTicker()
				for _, participant := range room.order {
					participant.Kick()
				}
				room.Unlock()
				return true
			})
			return
		case message := <-hub.Dispatch:
			hub.deliver(message)
		}
	}
}

func (hub *Hub) deliver(message *Message) {
	room := hub.FindRoom(message.RoomId)

	if room == nil {
		return
	}

	room.Lock()
	defer room.Unlock()

	for _, receiverId := range message.ReceiverIds {
		if participant, ok := room.participants[receiverId]; ok {
			participant.Send(message.Body)
		}
	}
}

// Send queues a message for delivery. Never call it while holding a room
// lock: Run takes the same lock to deliver.
func (hub *Hub) Send(roomId string, receiverIds []string, body []byte) {
	if len(receiverIds) == 0 || body == nil {
		return
	}

	select {
	case hub.Dispatch <- &Message{RoomId: roomId, ReceiverIds: receiverIds, Body: body}:
	case <-hub.Context.Done():
	}
}

func (hub *Hub) FindRoom(id string) *Room {
	room, exists := hub.Rooms.Load(id)

	if !exists {
		return nil
	}

	return room
}

// CreateRoom registers a room under a fresh short code.
func (hub *Hub) CreateRoom(raceType RaceType, maxPlayers int, now time.Time) *Room {
	for {
		rng := hub.NewRand()
		room := NewRoom(generateCode(6, rng), raceType, maxPlayers, now, rng)

		if _, loaded := hub.Rooms.LoadOrStore(room.Id, room); loaded {
			continue
		}

		logx.Logger.Infow(
			"room created",
			"roomId", room.Id,
			"raceType", raceType.Name,
		)

		return room
	}
}

// RemoveRoom removes a room from the hub to prevent memory leaks.
// The room's ticker must already be stopped.
func (hub *Hub) RemoveRoom(roomId string) bool {
	_, removed := hub.Rooms.LoadAndDelete(roomId)
	return removed
}

const codeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

var codeReader io.Reader = rand.Reader

// generateCode falls back to rng when the system source fails.
func generateCode(n int, rng *mathrand.Rand) string {
	b := make([]byte, n)
	max := big.NewInt(int64(len(codeChars)))
	for i := range b {
		idx, err := rand.Int(codeReader, max)
		if err != nil {
			b[i] = codeChars[rng.Intn(len(codeChars))]
			continue
		}
		b[i] = codeChars[idx.Int64()]
	}
	return string(b)
}
