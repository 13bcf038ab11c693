package services

import (
	"context"
	"time"

	"github.com/baksohyeon/bycle-console-game/entities"
	"github.com/baksohyeon/bycle-console-game/pkg/logx"
	"github.com/baksohyeon/bycle-console-game/schemas"
)

// ReaperService deletes rooms that are abandoned, long finished or idle.
type ReaperService struct {
	*dependencies
	settings Settings
}

func NewReaperService(settings Settings, race *RaceService) *ReaperService {
	reaperService := &ReaperService{
		dependencies: race.dependencies,
		settings:     settings,
	}

	race.SetCleanupScheduler(reaperService)

	return reaperService
}

// Run sweeps every ReaperInterval until ctx is cancelled.
func (reaperService *ReaperService) Run(ctx context.Context) {
	ticker := time.NewTicker(reaperService.settings.ReaperInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			reaperService.Sweep(reaperService.settings.now())
		}
	}
}

// Sweep removes every eligible room and returns their ids.
func (reaperService *ReaperService) Sweep(now time.Time) []string {
	removed := make([]string, 0)

	reaperService.hub.Rooms.Range(func(roomId string, room *entities.Room) bool {
		if reaperService.reap(room, now) {
			removed = append(removed, roomId)
		}
		return true
	})

	if len(removed) > 0 {
		logx.Logger.Infow("rooms reaped", "roomIds", removed)
	}

	return removed
}

// Schedule re-checks one room once the delay has passed.
func (reaperService *ReaperService) Schedule(roomId string, after time.Duration) {
	time.AfterFunc(after, func() {
		room := reaperService.hub.FindRoom(roomId)
		if room == nil {
			return
		}
		reaperService.reap(room, reaperService.settings.now())
	})
}

func (reaperService *ReaperService) reap(room *entities.Room, now time.Time) bool {
	room.Lock()

	if room.Removed || room.Ticking() || !reaperService.expired(room, now) {
		room.Unlock()
		return false
	}

	room.Removed = true
	reaperService.hub.RemoveRoom(room.Id)

	for _, participant := range room.ConnectedHumans() {
		participant.Kick()
	}

	out := newOutbox(room.Id)
	out.publish(schemas.RoomRemovedEvent(room.Id, string(room.State)))
	room.Unlock()

	reaperService.flush(out)

	return true
}

// expired reports whether any cleanup rule matches. Caller holds the lock.
func (reaperService *ReaperService) expired(room *entities.Room, now time.Time) bool {
	idle := now.Sub(room.LastActivity)

	if len(room.ConnectedHumans()) == 0 && idle > reaperService.settings.ReconnectTimeout {
		return true
	}

	if room.State == entities.RoomFinished && !room.EndedAt.IsZero() &&
		now.Sub(room.EndedAt) > reaperService.settings.FinishedTimeout {
		return true
	}

	return idle > reaperService.settings.RoomTimeout
}
