package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/baksohyeon/bycle-console-game/entities"
	"github.com/baksohyeon/bycle-console-game/schemas"
)

func TestReaperCriteria(t *testing.T) {
	cases := []struct {
		name    string
		prepare func(t *testing.T, env *testEnv, room *entities.Room)
		advance time.Duration
		removed bool
	}{
		{
			name:    "fresh waiting room survives",
			prepare: func(t *testing.T, env *testEnv, room *entities.Room) { env.join(t, room, "a", "A") },
			advance: time.Minute,
			removed: false,
		},
		{
			name:    "abandoned room past reconnect window",
			prepare: func(t *testing.T, env *testEnv, room *entities.Room) {},
			advance: 5*time.Minute + time.Second,
			removed: true,
		},
		{
			name: "disconnected players inside reconnect window",
			prepare: func(t *testing.T, env *testEnv, room *entities.Room) {
				env.join(t, room, "a", "A")
				env.sessions.Disconnect(room.Id, "a")
			},
			advance: 4 * time.Minute,
			removed: false,
		},
		{
			name:    "connected but idle past room timeout",
			prepare: func(t *testing.T, env *testEnv, room *entities.Room) { env.join(t, room, "a", "A") },
			advance: 30*time.Minute + time.Second,
			removed: true,
		},
		{
			name: "finished past grace window with players connected",
			prepare: func(t *testing.T, env *testEnv, room *entities.Room) {
				env.join(t, room, "a", "A")
				room.Lock()
				room.State = entities.RoomFinished
				room.EndedAt = env.clock.Now()
				room.Unlock()
			},
			advance: 5*time.Minute + time.Second,
			removed: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)
			room := env.createRoom(t, 4)
			tc.prepare(t, env, room)

			env.clock.Advance(tc.advance)
			removed := env.reaper.Sweep(env.clock.Now())

			if (len(removed) == 1) != tc.removed {
				t.Fatalf("removed=%v want removal=%v", removed, tc.removed)
			}
			if (env.hub.FindRoom(room.Id) == nil) != tc.removed {
				t.Fatalf("registry does not match sweep result")
			}
		})
	}
}

func TestReaperSkipsTickingRooms(t *testing.T) {
	env := newTestEnv(t)
	room := env.createRoom(t, 4)
	env.join(t, room, "a", "A")

	if err := env.races.Start(room.Id, "a"); err != nil {
		t.Fatalf("start: %v", err)
	}

	env.clock.Advance(time.Hour)

	if removed := env.reaper.Sweep(env.clock.Now()); len(removed) != 0 {
		t.Fatalf("ticking room must not be reaped: %v", removed)
	}
}

func TestReapedRoomRejectsLateEvents(t *testing.T) {
	env := newTestEnv(t)
	room := env.createRoom(t, 4)
	conn := env.join(t, room, "a", "A")

	env.clock.Advance(time.Hour)
	env.reaper.Sweep(env.clock.Now())

	if !conn.isClosed() {
		t.Fatalf("connected members of a reaped room must be kicked")
	}

	err := env.sessions.Join("b", newFakeConn(), &schemas.JoinRoom{RoomId: room.Id, PlayerName: "B"})
	if !errors.Is(err, RoomNotFound) {
		t.Fatalf("got=%v want=%v", err, RoomNotFound)
	}
	if err := env.sessions.Leave(room.Id, "a"); err != nil {
		t.Fatalf("leave on a reaped room: %v", err)
	}
	env.sessions.Disconnect(room.Id, "a")
}

func TestScheduledCleanupRemovesFinishedRoom(t *testing.T) {
	env := newTestEnv(t, func(settings *Settings) {
		settings.FinishedTimeout = 0
	})
	room := env.createRoom(t, 4)
	env.join(t, room, "a", "A")

	if err := env.races.Start(room.Id, "a"); err != nil {
		t.Fatalf("start: %v", err)
	}

	env.sessions.Disconnect(room.Id, "a")
	env.clock.Advance(time.Second)

	env.reaper.Schedule(room.Id, time.Millisecond)

	deadline := time.Now().Add(time.Second)
	for env.hub.FindRoom(room.Id) != nil {
		if time.Now().After(deadline) {
			t.Fatalf("scheduled cleanup did not remove the room")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestReaperRunStopsWithContext(t *testing.T) {
	env := newTestEnv(t, func(settings *Settings) {
		settings.ReaperInterval = time.Millisecond
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		env.reaper.Run(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("reaper did not stop")
	}
}
