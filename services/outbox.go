package services

import (
	"context"
	"time"

	"github.com/baksohyeon/bycle-console-game/entities"
	"github.com/baksohyeon/bycle-console-game/pkg/logx"
	"github.com/baksohyeon/bycle-console-game/schemas"
)

// outbox collects everything a room operation wants to emit while the room
// is locked. flush runs after the lock is released.
type outbox struct {
	roomId   string
	frames   []frame
	events   []string
	archives []RaceResult
	cleanups []time.Duration
}

type frame struct {
	receiverIds []string
	body        []byte
}

func newOutbox(roomId string) *outbox {
	return &outbox{roomId: roomId}
}

func (out *outbox) to(receiverIds []string, eventType string, payload any) {
	if len(receiverIds) == 0 {
		return
	}

	body, err := schemas.Encode(eventType, payload)
	if err != nil {
		logx.Logger.Errorw(
			err.Error(),
			"desc", "could not encode event",
			"event", eventType,
			"roomId", out.roomId,
		)
		return
	}

	out.frames = append(out.frames, frame{receiverIds: receiverIds, body: body})
}

func (out *outbox) broadcast(room *entities.Room, eventType string, payload any) {
	out.to(room.ReceiverIds(), eventType, payload)
}

func (out *outbox) broadcastExcept(room *entities.Room, excludedId string, eventType string, payload any) {
	receiverIds := make([]string, 0)
	for _, id := range room.ReceiverIds() {
		if id != excludedId {
			receiverIds = append(receiverIds, id)
		}
	}
	out.to(receiverIds, eventType, payload)
}

func (out *outbox) publish(message string, err error) {
	if err != nil {
		logx.Logger.Errorw(
			err.Error(),
			"desc", "could not create publisher event",
			"roomId", out.roomId,
		)
		return
	}
	out.events = append(out.events, message)
}

func (out *outbox) archive(result RaceResult) {
	out.archives = append(out.archives, result)
}

func (out *outbox) scheduleCleanup(after time.Duration) {
	out.cleanups = append(out.cleanups, after)
}

// CleanupScheduler re-checks a room after a delay.
type CleanupScheduler interface {
	Schedule(roomId string, after time.Duration)
}

type dependencies struct {
	hub       *entities.Hub
	publisher Publisher
	results   ResultRepository
	cleanup   CleanupScheduler
}

func (deps *dependencies) flush(out *outbox) {
	for _, f := range out.frames {
		deps.hub.Send(out.roomId, f.receiverIds, f.body)
	}

	for _, event := range out.events {
		// errors are logged by the publisher
		_ = deps.publisher.Publish(event)
	}

	for _, result := range out.archives {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := deps.results.Save(ctx, result)
		cancel()

		if err != nil {
			logx.Logger.Errorw(
				err.Error(),
				"desc", "could not archive race result",
				"roomId", result.RoomId,
			)
		}
	}

	if deps.cleanup != nil {
		for _, after := range out.cleanups {
			deps.cleanup.Schedule(out.roomId, after)
		}
	}
}
