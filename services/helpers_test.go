package services

import (
	"context"
	"encoding/json"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/baksohyeon/bycle-console-game/entities"
	"github.com/baksohyeon/bycle-console-game/schemas"
)

type fakeConn struct {
	sendCh chan []byte
	mutex  sync.Mutex
	closed bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{sendCh: make(chan []byte, 512)}
}

// Send never blocks: the hub delivers while holding the room lock.
func (f *fakeConn) Send(b []byte) error {
	cp := make([]byte, len(b))
	copy(cp, b)
	select {
	case f.sendCh <- cp:
	default:
	}
	return nil
}

func (f *fakeConn) Close() error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) isClosed() bool {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.closed
}

// expect skips frames until one of the given type arrives and decodes its
// payload into out.
func (f *fakeConn) expect(t *testing.T, eventType string, out any) {
	t.Helper()

	timeout := time.After(time.Second)
	for {
		select {
		case b := <-f.sendCh:
			var envelope schemas.Envelope
			if err := json.Unmarshal(b, &envelope); err != nil {
				t.Fatalf("decode envelope: %v", err)
			}
			if envelope.Type != eventType {
				continue
			}
			if out != nil {
				if err := json.Unmarshal(envelope.Payload, out); err != nil {
					t.Fatalf("decode %s payload: %v", eventType, err)
				}
			}
			return
		case <-timeout:
			t.Fatalf("timed out waiting for %s", eventType)
		}
	}
}

// none fails if a frame of the given type arrives within a short window.
func (f *fakeConn) none(t *testing.T, eventType string) {
	t.Helper()

	timeout := time.After(50 * time.Millisecond)
	for {
		select {
		case b := <-f.sendCh:
			var envelope schemas.Envelope
			if err := json.Unmarshal(b, &envelope); err == nil && envelope.Type == eventType {
				t.Fatalf("unexpected %s frame: %s", eventType, b)
			}
		case <-timeout:
			return
		}
	}
}

type fakeClock struct {
	mutex sync.Mutex
	now   time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.now = c.now.Add(d)
}

type fakePublisher struct {
	mutex    sync.Mutex
	messages []string
}

func (p *fakePublisher) Publish(message string) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.messages = append(p.messages, message)
	return nil
}

func (p *fakePublisher) count(eventType string) int {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	n := 0
	for _, message := range p.messages {
		if strings.Contains(message, `"type":"`+eventType+`"`) {
			n++
		}
	}
	return n
}

type fakeResults struct {
	mutex   sync.Mutex
	results []RaceResult
}

func (r *fakeResults) Save(_ context.Context, result RaceResult) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.results = append(r.results, result)
	return nil
}

func (r *fakeResults) Recent(_ context.Context, limit int64) ([]RaceResult, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	out := make([]RaceResult, 0)
	for i := len(r.results) - 1; i >= 0 && int64(len(out)) < limit; i-- {
		out = append(out, r.results[i])
	}
	return out, nil
}

func (r *fakeResults) all() []RaceResult {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return append([]RaceResult(nil), r.results...)
}

type testEnv struct {
	hub       *entities.Hub
	clock     *fakeClock
	settings  Settings
	publisher *fakePublisher
	results   *fakeResults
	races     *RaceService
	sessions  *SessionService
	rooms     *RoomService
	reaper    *ReaperService
}

func newTestEnv(t *testing.T, configure ...func(*Settings)) *testEnv {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}

	settings := DefaultSettings()
	settings.TickInterval = time.Hour
	settings.WeatherChangeChance = 0
	settings.PowerUpSpawnChance = 0
	settings.Now = clock.Now
	for _, apply := range configure {
		apply(&settings)
	}

	hub := entities.NewHub(ctx, 0)
	hub.NewRand = func() *rand.Rand { return rand.New(rand.NewSource(1)) }
	go hub.Run()

	publisher := &fakePublisher{}
	results := &fakeResults{}

	races := NewRaceService(hub, settings, publisher, results)

	env := &testEnv{
		hub:       hub,
		clock:     clock,
		settings:  settings,
		publisher: publisher,
		results:   results,
		races:     races,
		sessions:  NewSessionService(settings, races),
		rooms:     NewRoomService(settings, races),
		reaper:    NewReaperService(settings, races),
	}

	t.Cleanup(func() {
		hub.Rooms.Range(func(_ string, room *entities.Room) bool {
			room.Lock()
			room.StopTicker()
			room.Unlock()
			return true
		})
	})

	return env
}

func (env *testEnv) createRoom(t *testing.T, maxPlayers int) *entities.Room {
	t.Helper()

	response := env.rooms.Create(schemas.CreateRoomRequest{MaxPlayers: maxPlayers})
	room := env.hub.FindRoom(response.RoomId)
	if room == nil {
		t.Fatalf("room %s not registered", response.RoomId)
	}
	return room
}

func (env *testEnv) join(t *testing.T, room *entities.Room, connectionId, name string) *fakeConn {
	t.Helper()

	conn := newFakeConn()
	err := env.sessions.Join(connectionId, conn, &schemas.JoinRoom{
		RoomId:      room.Id,
		PlayerName:  name,
		PlayerColor: "red",
	})
	if err != nil {
		t.Fatalf("join %s: %v", name, err)
	}
	return conn
}

// tick advances the room once, ignoring the ticker generation.
func (env *testEnv) tick(room *entities.Room) {
	out := newOutbox(room.Id)

	room.Lock()
	if room.State == entities.RoomActive {
		env.races.advanceLocked(room, out)
	}
	room.Unlock()

	env.races.flush(out)
}

func inspect[T any](room *entities.Room, read func() T) T {
	room.Lock()
	defer room.Unlock()
	return read()
}

func participant(t *testing.T, room *entities.Room, id string) *entities.Participant {
	t.Helper()

	room.Lock()
	p, ok := room.Participant(id)
	room.Unlock()

	if !ok {
		t.Fatalf("participant %s not found", id)
	}
	return p
}
