package services

import (
	"context"
	"sort"

	"github.com/baksohyeon/bycle-console-game/entities"
	"github.com/baksohyeon/bycle-console-game/schemas"
)

// RoomService creates and lists rooms for the HTTP API.
type RoomService struct {
	*dependencies
	settings Settings
}

func NewRoomService(settings Settings, race *RaceService) *RoomService {
	return &RoomService{
		dependencies: race.dependencies,
		settings:     settings,
	}
}

func (roomService *RoomService) Create(request schemas.CreateRoomRequest) schemas.CreateRoomResponse {
	raceType, _ := entities.FindRaceType(request.RaceType)

	maxPlayers := request.MaxPlayers
	if maxPlayers <= 0 || maxPlayers > roomService.settings.MaxPlayers {
		maxPlayers = roomService.settings.MaxPlayers
	}

	room := roomService.hub.CreateRoom(raceType, maxPlayers, roomService.settings.now())

	out := newOutbox(room.Id)
	out.publish(schemas.RoomCreatedEvent(room.Id, raceType.Name, maxPlayers))
	roomService.flush(out)

	return schemas.CreateRoomResponse{RoomId: room.Id}
}

// List returns rooms that are waiting or racing, oldest first.
func (roomService *RoomService) List() []schemas.RoomSummary {
	rooms := make([]schemas.RoomSummary, 0)

	roomService.hub.Rooms.Range(func(_ string, room *entities.Room) bool {
		room.Lock()
		defer room.Unlock()

		if room.Removed || room.State == entities.RoomEmpty || room.State == entities.RoomFinished {
			return true
		}

		rooms = append(rooms, summary(room))
		return true
	})

	sort.Slice(rooms, func(i, j int) bool {
		return rooms[i].CreatedAt < rooms[j].CreatedAt
	})

	return rooms
}

func (roomService *RoomService) Find(roomId string) (schemas.RoomSummary, error) {
	room := lockRoom(roomService.hub, roomId)

	if room == nil {
		return schemas.RoomSummary{}, RoomNotFound
	}

	defer room.Unlock()

	return summary(room), nil
}

// RecentResults reads archived races, newest first.
func (roomService *RoomService) RecentResults(ctx context.Context, limit int64) ([]RaceResult, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	return roomService.results.Recent(ctx, limit)
}

func summary(room *entities.Room) schemas.RoomSummary {
	return schemas.RoomSummary{
		Id:             room.Id,
		PlayerCount:    room.ConnectedPlayers(),
		SpectatorCount: room.ConnectedSpectators(),
		MaxPlayers:     room.MaxPlayers,
		IsStarted:      room.IsStarted,
		State:          string(room.State),
		OwnerName:      ownerName(room),
		RaceType:       room.RaceType.Name,
		CreatedAt:      room.CreatedAt.UnixMilli(),
	}
}
