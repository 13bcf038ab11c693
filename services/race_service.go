package services

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/baksohyeon/bycle-console-game/ai"
	"github.com/baksohyeon/bycle-console-game/entities"
	"github.com/baksohyeon/bycle-console-game/pkg/logx"
	"github.com/baksohyeon/bycle-console-game/schemas"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	FinishReasonWinner      = "winner"
	FinishReasonNoPlayers   = "no-players"
	FinishReasonIdleTimeout = "idle-timeout"
)

var botColors = []string{"red", "blue", "green", "yellow", "magenta", "cyan"}

// RaceService runs races: start, player actions and the per-room ticker.
type RaceService struct {
	*dependencies
	settings Settings
	// NewSelector builds the bot brain for a tick from the room's random source.
	NewSelector func(rng *rand.Rand) ai.ActionSelector
}

func NewRaceService(
	hub *entities.Hub,
	settings Settings,
	publisher Publisher,
	results ResultRepository,
) *RaceService {
	return &RaceService{
		dependencies: &dependencies{
			hub:       hub,
			publisher: publisher,
			results:   results,
		},
		settings:    settings,
		NewSelector: ai.NewHeuristic,
	}
}

// SetCleanupScheduler registers who re-checks rooms after a race ends.
func (raceService *RaceService) SetCleanupScheduler(scheduler CleanupScheduler) {
	raceService.cleanup = scheduler
}

// lockRoom returns the room locked, or nil if it is gone.
func lockRoom(hub *entities.Hub, roomId string) *entities.Room {
	room := hub.FindRoom(roomId)

	if room == nil {
		return nil
	}

	room.Lock()

	if room.Removed {
		room.Unlock()
		return nil
	}

	return room
}

// Start is owner-only. A finished room is reset and raced again.
func (raceService *RaceService) Start(roomId, participantId string) error {
	room := lockRoom(raceService.hub, roomId)

	if room == nil {
		return RoomNotFound
	}

	out := newOutbox(roomId)
	err := raceService.startLocked(room, participantId, out)
	room.Unlock()

	raceService.flush(out)

	return err
}

func (raceService *RaceService) startLocked(room *entities.Room, participantId string, out *outbox) error {
	if room.State == entities.RoomActive {
		return AlreadyStarted
	}

	if room.OwnerId != participantId {
		return NotRoomOwner
	}

	racers := 0
	for _, participant := range room.Racers() {
		if participant.IsConnected {
			racers++
		}
	}

	if racers < 1 {
		return NotEnoughPlayers
	}

	if room.State == entities.RoomFinished {
		for _, participant := range room.Racers() {
			participant.Bicycle.Reset()
		}
		room.TurnCount = 0
		room.Weather = entities.Sunny()
		room.PowerUps = nil
		room.EndedAt = time.Time{}
	}

	now := raceService.settings.now()

	room.IsStarted = true
	room.State = entities.RoomActive
	room.LastActivity = now

	room.StartTicker(raceService.settings.TickInterval, func(generation uint64) {
		raceService.Tick(room, generation)
	})

	logx.Logger.Infow(
		"race started",
		"roomId", room.Id,
		"owner", ownerName(room),
		"racers", racers,
	)

	out.broadcast(room, schemas.GameStartedEvent, schemas.GameStarted{
		RoomId:       room.Id,
		RaceType:     room.RaceType.Name,
		RaceDistance: room.RaceType.Distance,
	})
	out.broadcast(room, schemas.GameStateUpdateEvent, snapshot(room))
	out.publish(schemas.RaceStartedEvent(room.Id, len(room.Racers())))

	return nil
}

// Act applies a player action. Missing rooms, inactive races and unknown or
// disconnected participants are ignored; spectators get an explicit error.
func (raceService *RaceService) Act(roomId, participantId string, action entities.Action) error {
	if !action.Valid() {
		return schemas.InvalidAction
	}

	return raceService.withRacer(roomId, participantId, func(room *entities.Room, participant *entities.Participant) error {
		action.Apply(participant.Bicycle)
		return nil
	})
}

// UsePowerUp claims an available power-up for the participant.
func (raceService *RaceService) UsePowerUp(roomId, participantId, powerUpId string) error {
	return raceService.withRacer(roomId, participantId, func(room *entities.Room, participant *entities.Participant) error {
		powerUp, ok := takePowerUp(room, powerUpId)
		if !ok {
			return PowerUpUnavailable
		}
		participant.Bicycle.ApplyPowerUp(powerUp)
		return nil
	})
}

func (raceService *RaceService) withRacer(
	roomId, participantId string,
	apply func(room *entities.Room, participant *entities.Participant) error,
) error {
	room := lockRoom(raceService.hub, roomId)

	if room == nil {
		return nil
	}

	out := newOutbox(roomId)

	err := func() error {
		defer room.Unlock()

		if room.State != entities.RoomActive {
			return nil
		}

		participant, ok := room.Participant(participantId)
		if !ok || !participant.IsConnected {
			return nil
		}

		if participant.IsSpectator() {
			return SpectatorAction
		}

		if err := apply(room, participant); err != nil {
			return err
		}

		now := raceService.settings.now()
		participant.LastSeen = now
		room.LastActivity = now

		out.broadcast(room, schemas.GameStateUpdateEvent, snapshot(room))

		return nil
	}()

	raceService.flush(out)

	return err
}

func takePowerUp(room *entities.Room, powerUpId string) (entities.PowerUp, bool) {
	for i, powerUp := range room.PowerUps {
		if powerUp.Id == powerUpId {
			room.PowerUps = append(room.PowerUps[:i], room.PowerUps[i+1:]...)
			return powerUp, true
		}
	}
	return entities.PowerUp{}, false
}

// AddBot seats a computer-controlled racer. Owner only, before the start.
func (raceService *RaceService) AddBot(roomId, participantId, difficulty string) error {
	room := lockRoom(raceService.hub, roomId)

	if room == nil {
		return RoomNotFound
	}

	out := newOutbox(roomId)

	err := func() error {
		defer room.Unlock()

		if room.OwnerId != participantId {
			return NotRoomOwner
		}

		if room.State == entities.RoomActive {
			return AlreadyStarted
		}

		if room.Seats() >= room.MaxPlayers {
			return RoomFull
		}

		if difficulty == "" {
			difficulty = "medium"
		}

		profile, ok := ai.FindProfile(difficulty)
		if !ok {
			return InvalidDifficulty
		}

		now := raceService.settings.now()
		bots := 0
		for _, participant := range room.Participants() {
			if participant.IsBot {
				bots++
			}
		}

		name := fmt.Sprintf("%s Bot %d", strings.ToUpper(profile.Name[:1])+profile.Name[1:], bots+1)
		color := botColors[bots%len(botColors)]

		bot := &entities.Participant{
			Id:          "bot-" + bson.NewObjectID().Hex(),
			Name:        name,
			Color:       color,
			Bicycle:     entities.NewBicycle(name, color, raceService.settings.Bicycle, room.Rand),
			IsBot:       true,
			Difficulty:  profile.Name,
			IsConnected: true,
			JoinedAt:    now,
			LastSeen:    now,
		}
		bot.Bicycle.SetWeather(room.Weather)

		room.Add(bot)
		room.LastActivity = now

		out.broadcast(room, schemas.PlayerJoinedEvent, schemas.PlayerJoined{
			Id:    bot.Id,
			Name:  bot.Name,
			Color: bot.Color,
			IsBot: true,
		})

		return nil
	}()

	raceService.flush(out)

	return err
}

// Tick advances one room by one step. It runs on the room's ticker
// goroutine; a tick from a cancelled ticker is a no-op.
func (raceService *RaceService) Tick(room *entities.Room, generation uint64) {
	room.Lock()

	if room.Removed || !room.IsCurrentTick(generation) || room.State != entities.RoomActive {
		room.Unlock()
		return
	}

	out := newOutbox(room.Id)
	raceService.advanceLocked(room, out)
	room.Unlock()

	raceService.flush(out)
}

func (raceService *RaceService) advanceLocked(room *entities.Room, out *outbox) {
	now := raceService.settings.now()

	if raceService.settings.RoomTimeout > 0 && now.Sub(room.LastActivity) > raceService.settings.RoomTimeout {
		raceService.forceFinishLocked(room, now, FinishReasonIdleTimeout, out)
		return
	}

	room.TurnCount++

	raceService.changeWeather(room)
	raceService.spawnPowerUp(room)
	raceService.driveBots(room)

	for _, participant := range room.Racers() {
		participant.Bicycle.Move()
	}

	out.broadcast(room, schemas.GameStateUpdateEvent, snapshot(room))

	if winner, ok := leaderAcross(room); ok {
		raceService.finishLocked(room, winner, now, out)
	}
}

func (raceService *RaceService) changeWeather(room *entities.Room) {
	if room.Rand.Float64() >= raceService.settings.WeatherChangeChance {
		return
	}

	room.Weather = entities.RandomWeather(room.Rand)
	for _, participant := range room.Racers() {
		participant.Bicycle.SetWeather(room.Weather)
	}
}

func (raceService *RaceService) spawnPowerUp(room *entities.Room) {
	if len(room.PowerUps) >= raceService.settings.MaxAvailablePowerUps {
		return
	}

	if room.Rand.Float64() >= raceService.settings.PowerUpSpawnChance {
		return
	}

	room.PowerUps = append(room.PowerUps, entities.RandomPowerUp(room.Rand))
}

func (raceService *RaceService) driveBots(room *entities.Room) {
	selector := raceService.NewSelector(room.Rand)

	for _, participant := range room.Racers() {
		if !participant.IsBot {
			continue
		}

		profile, _ := ai.FindProfile(participant.Difficulty)

		if selector.WantsPowerUp(profile, len(room.PowerUps)) {
			participant.Bicycle.ApplyPowerUp(room.PowerUps[0])
			room.PowerUps = room.PowerUps[1:]
			continue
		}

		progress := 0.0
		if room.RaceType.Distance > 0 {
			progress = participant.Bicycle.Position() / room.RaceType.Distance
		}

		action := selector.Select(participant.Bicycle.Stats(), progress, profile)
		action.Apply(participant.Bicycle)
	}
}

// leaderAcross returns the winner if anyone crossed the line: the highest
// position, ties going to the earliest joiner.
func leaderAcross(room *entities.Room) (*entities.Participant, bool) {
	standings := room.Standings()

	if len(standings) == 0 {
		return nil, false
	}

	if standings[0].Bicycle.Position() < room.RaceType.Distance {
		return nil, false
	}

	return standings[0], true
}

func (raceService *RaceService) finishLocked(room *entities.Room, winner *entities.Participant, now time.Time, out *outbox) {
	raceService.endLocked(room, now)

	standings := room.Standings()
	results := finalResults(standings)

	for i, participant := range standings {
		points := 10
		switch {
		case i == 0:
			points += 30
		case i < 3:
			points += 15
		}
		participant.Bicycle.GainExperience(int(float64(points) * room.RaceType.Multiplier))
	}

	logx.Logger.Infow(
		"race finished",
		"roomId", room.Id,
		"winner", winner.Name,
		"turns", room.TurnCount,
	)

	out.broadcast(room, schemas.GameFinishedEvent, schemas.GameFinished{
		Winner:  winner.Name,
		Results: results,
	})

	raceService.recordLocked(room, winner.Name, FinishReasonWinner, results, now, out)
}

// forceFinishLocked ends a race nobody can win any more.
func (raceService *RaceService) forceFinishLocked(room *entities.Room, now time.Time, reason string, out *outbox) {
	if room.State != entities.RoomActive {
		return
	}

	raceService.endLocked(room, now)

	message := "Game ended: all players left"
	if reason == FinishReasonIdleTimeout {
		message = "Game ended: room was idle for too long"
	}

	logx.Logger.Infow(
		"race ended",
		"roomId", room.Id,
		"reason", reason,
	)

	out.broadcast(room, schemas.GameEndedEvent, schemas.GameEnded{
		Reason:  reason,
		Message: message,
	})

	raceService.recordLocked(room, "", reason, finalResults(room.Standings()), now, out)
}

// endLocked stops the ticker before anything else looks at the state.
func (raceService *RaceService) endLocked(room *entities.Room, now time.Time) {
	room.StopTicker()
	room.IsStarted = false
	room.State = entities.RoomFinished
	room.EndedAt = now
	room.LastActivity = now
}

func (raceService *RaceService) recordLocked(
	room *entities.Room,
	winner, reason string,
	results []schemas.FinalResult,
	now time.Time,
	out *outbox,
) {
	out.publish(schemas.RaceFinishedEvent(room.Id, winner, reason, room.TurnCount))
	out.archive(RaceResult{
		Id:        bson.NewObjectID(),
		RoomId:    room.Id,
		RaceType:  room.RaceType.Name,
		Distance:  room.RaceType.Distance,
		Winner:    winner,
		Reason:    reason,
		Turns:     room.TurnCount,
		Standings: results,
		EndedAt:   now,
	})
	out.scheduleCleanup(raceService.settings.FinishedTimeout + time.Second)
}
