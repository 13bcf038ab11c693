package services

import (
	"context"
	"errors"
	"testing"

	"github.com/baksohyeon/bycle-console-game/entities"
	"github.com/baksohyeon/bycle-console-game/schemas"
)

func TestCreateRoomAppliesDefaults(t *testing.T) {
	env := newTestEnv(t)

	response := env.rooms.Create(schemas.CreateRoomRequest{RaceType: "endurance", MaxPlayers: 99})
	room := env.hub.FindRoom(response.RoomId)

	if room == nil {
		t.Fatalf("room not registered")
	}
	if room.RaceType.Name != "endurance" || room.RaceType.Distance != 200 {
		t.Fatalf("unexpected race type: %+v", room.RaceType)
	}
	if room.MaxPlayers != env.settings.MaxPlayers {
		t.Fatalf("capacity got=%d want=%d", room.MaxPlayers, env.settings.MaxPlayers)
	}

	fallback := env.hub.FindRoom(env.rooms.Create(schemas.CreateRoomRequest{RaceType: "marathon"}).RoomId)
	if fallback.RaceType.Name != "sprint" {
		t.Fatalf("unknown race type must fall back to sprint, got %q", fallback.RaceType.Name)
	}

	if env.publisher.count("RoomCreated") != 2 {
		t.Fatalf("expected two RoomCreated events")
	}
}

func TestListSkipsEmptyAndFinishedRooms(t *testing.T) {
	env := newTestEnv(t)

	waiting := env.createRoom(t, 4)
	env.join(t, waiting, "a", "A")

	empty := env.createRoom(t, 4)
	env.join(t, empty, "b", "B")
	env.sessions.Disconnect(empty.Id, "b")

	finished := env.createRoom(t, 4)
	env.join(t, finished, "c", "C")
	finished.Lock()
	finished.State = entities.RoomFinished
	finished.Unlock()

	rooms := env.rooms.List()

	if len(rooms) != 1 || rooms[0].Id != waiting.Id {
		t.Fatalf("unexpected listing: %+v", rooms)
	}
	if rooms[0].PlayerCount != 1 || rooms[0].OwnerName != "A" || rooms[0].State != "waiting" {
		t.Fatalf("unexpected summary: %+v", rooms[0])
	}
}

func TestFindRoomAndRecentResults(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.rooms.Find("NOPE"); !errors.Is(err, RoomNotFound) {
		t.Fatalf("got=%v want=%v", err, RoomNotFound)
	}

	room := env.createRoom(t, 4)
	env.join(t, room, "a", "A")

	if err := env.races.Start(room.Id, "a"); err != nil {
		t.Fatalf("start: %v", err)
	}
	env.sessions.Disconnect(room.Id, "a")

	summary, err := env.rooms.Find(room.Id)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if summary.State != "finished" {
		t.Fatalf("state got=%s want=finished", summary.State)
	}

	results, err := env.rooms.RecentResults(context.Background(), 0)
	if err != nil {
		t.Fatalf("recent results: %v", err)
	}
	if len(results) != 1 || results[0].RoomId != room.Id {
		t.Fatalf("unexpected results: %+v", results)
	}
}
