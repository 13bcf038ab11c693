package entities

import (
	"math/rand"
	"sort"
	"sync"
	"time"
)

type RoomState string

const (
	RoomWaiting  RoomState = "waiting"
	RoomActive   RoomState = "active"
	RoomFinished RoomState = "finished"
	RoomEmpty    RoomState = "empty"
)

// Room is one race. Every field is guarded by the embedded mutex: event
// handlers and the room's own ticker lock it, nothing else touches it.
type Room struct {
	sync.Mutex

	Id         string
	RaceType   RaceType
	MaxPlayers int
	State      RoomState
	IsStarted  bool
	// OwnerId is a connection id, empty when nobody owns the room.
	OwnerId string

	CreatedAt    time.Time
	LastActivity time.Time
	EndedAt      time.Time

	Weather   Weather
	PowerUps  []PowerUp
	TurnCount int

	// Removed is set when the room is dropped from the hub. Handlers that
	// looked the room up before that must treat it as gone.
	Removed bool

	// I used map[] in order to easily remove participant and load it in O(1)
	participants map[string]*Participant
	order        []*Participant

	ticker         *tickHandle
	tickGeneration uint64

	Rand *rand.Rand
}

type tickHandle struct {
	stop chan struct{}
}

func NewRoom(id string, raceType RaceType, maxPlayers int, now time.Time, rng *rand.Rand) *Room {
	return &Room{
		Id:           id,
		RaceType:     raceType,
		MaxPlayers:   maxPlayers,
		State:        RoomWaiting,
		CreatedAt:    now,
		LastActivity: now,
		Weather:      Sunny(),
		participants: make(map[string]*Participant),
		Rand:         rng,
	}
}

func (room *Room) Participant(id string) (*Participant, bool) {
	participant, ok := room.participants[id]
	return participant, ok
}

// Participants returns members in join order.
func (room *Room) Participants() []*Participant {
	out := make([]*Participant, len(room.order))
	copy(out, room.order)
	return out
}

// Racers returns members owning a bicycle, in join order.
func (room *Room) Racers() []*Participant {
	out := make([]*Participant, 0, len(room.order))
	for _, participant := range room.order {
		if !participant.IsSpectator() {
			out = append(out, participant)
		}
	}
	return out
}

func (room *Room) Add(participant *Participant) {
	room.participants[participant.Id] = participant
	room.order = append(room.order, participant)
}

// Rekey moves a participant under a new connection id. It refuses an id
// already held by another member.
func (room *Room) Rekey(participant *Participant, id string) bool {
	if existing, ok := room.participants[id]; ok && existing != participant {
		return false
	}

	delete(room.participants, participant.Id)
	if room.OwnerId == participant.Id {
		room.OwnerId = id
	}
	participant.Id = id
	room.participants[id] = participant
	return true
}

func (room *Room) Remove(id string) (*Participant, bool) {
	participant, ok := room.participants[id]
	if !ok {
		return nil, false
	}

	delete(room.participants, id)
	for i, p := range room.order {
		if p == participant {
			room.order = append(room.order[:i], room.order[i+1:]...)
			break
		}
	}

	return participant, true
}

// FindByToken returns the human participant holding a persistent identity.
func (room *Room) FindByToken(token string) (*Participant, bool) {
	if token == "" {
		return nil, false
	}

	for _, participant := range room.order {
		if participant.Token == token && !participant.IsBot {
			return participant, true
		}
	}

	return nil, false
}

// FindDisconnectedByName is the fallback identification for clients that
// lost their token.
func (room *Room) FindDisconnectedByName(name string) (*Participant, bool) {
	if name == "" {
		return nil, false
	}

	for _, participant := range room.order {
		if participant.Name == name && !participant.IsConnected && !participant.IsBot {
			return participant, true
		}
	}

	return nil, false
}

// Seats counts members holding a bicycle, connected or not.
func (room *Room) Seats() int {
	return len(room.Racers())
}

func (room *Room) ConnectedPlayers() int {
	n := 0
	for _, participant := range room.order {
		if participant.IsConnected && !participant.IsSpectator() {
			n++
		}
	}
	return n
}

func (room *Room) ConnectedSpectators() int {
	n := 0
	for _, participant := range room.order {
		if participant.IsConnected && participant.IsSpectator() {
			n++
		}
	}
	return n
}

// ConnectedHumans ignores bots.
func (room *Room) ConnectedHumans() []*Participant {
	out := make([]*Participant, 0, len(room.order))
	for _, participant := range room.order {
		if participant.IsConnected && !participant.IsBot {
			out = append(out, participant)
		}
	}
	return out
}

func (room *Room) HasMembers() bool {
	return len(room.order) > 0
}

func (room *Room) Owner() (*Participant, bool) {
	if room.OwnerId == "" {
		return nil, false
	}
	return room.Participant(room.OwnerId)
}

// ReceiverIds lists the connection ids of every connected human.
func (room *Room) ReceiverIds() []string {
	humans := room.ConnectedHumans()
	ids := make([]string, 0, len(humans))
	for _, participant := range humans {
		ids = append(ids, participant.Id)
	}
	return ids
}

// Standings sorts racers by descending position; ties keep join order.
func (room *Room) Standings() []*Participant {
	racers := room.Racers()
	sort.SliceStable(racers, func(i, j int) bool {
		return racers[i].Bicycle.Position() > racers[j].Bicycle.Position()
	})
	return racers
}

// UpdateState derives waiting/active/empty from membership. Finished rooms
// stay finished.
func (room *Room) UpdateState() {
	if len(room.ConnectedHumans()) == 0 {
		if room.State != RoomFinished && room.HasMembers() {
			room.State = RoomEmpty
		}
		return
	}

	if room.State == RoomEmpty {
		if room.IsStarted {
			room.State = RoomActive
		} else {
			room.State = RoomWaiting
		}
	}
}

// StartTicker runs tick on its own goroutine every interval until
// StopTicker. tick receives the generation it was started with so a tick
// that was already waiting for the lock can recognise it is stale.
func (room *Room) StartTicker(interval time.Duration, tick func(generation uint64)) bool {
	if room.ticker != nil {
		return false
	}

	room.tickGeneration++
	generation := room.tickGeneration
	handle := &tickHandle{stop: make(chan struct{})}
	room.ticker = handle

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-handle.stop:
				return
			case <-ticker.C:
				tick(generation)
			}
		}
	}()

	return true
}

// StopTicker cancels the ticker synchronously with respect to room state:
// once it returns, IsCurrentTick is false for every earlier generation.
func (room *Room) StopTicker() {
	if room.ticker == nil {
		return
	}

	close(room.ticker.stop)
	room.ticker = nil
	room.tickGeneration++
}

func (room *Room) Ticking() bool {
	return room.ticker != nil
}

func (room *Room) IsCurrentTick(generation uint64) bool {
	return room.ticker != nil && room.tickGeneration == generation
}
