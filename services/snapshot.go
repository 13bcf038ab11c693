package services

import (
	"math"

	"github.com/baksohyeon/bycle-console-game/entities"
	"github.com/baksohyeon/bycle-console-game/schemas"
)

// snapshot assembles the broadcast view of a room. Caller holds the lock.
func snapshot(room *entities.Room) schemas.GameState {
	racers := room.Racers()
	standings := room.Standings()

	ranks := make(map[*entities.Participant]int, len(standings))
	for i, participant := range standings {
		ranks[participant] = i + 1
	}

	leader := 0.0
	if len(standings) > 0 {
		leader = standings[0].Bicycle.Position()
	}

	players := make([]schemas.PlayerSnapshot, 0, len(racers))
	totalSpeed := 0.0

	for _, participant := range racers {
		bicycle := participant.Bicycle
		totalSpeed += bicycle.Speed()

		players = append(players, schemas.PlayerSnapshot{
			Id:                 participant.Id,
			Name:               participant.Name,
			Color:              participant.Color,
			Position:           bicycle.Position(),
			Speed:              bicycle.Speed(),
			Energy:             bicycle.Energy(),
			MaxSpeed:           bicycle.MaxSpeed(),
			MaxEnergy:          bicycle.MaxEnergy(),
			Level:              bicycle.Level(),
			ActivePowerUps:     bicycle.Modifiers(),
			IsHuman:            !participant.IsBot,
			IsConnected:        participant.IsConnected,
			Rank:               ranks[participant],
			DistanceFromLeader: leader - bicycle.Position(),
		})
	}

	distance := room.RaceType.Distance
	progress := 0.0
	if distance > 0 {
		progress = math.Min(leader/distance, 1)
	}

	averageSpeed := 0.0
	if len(racers) > 0 {
		averageSpeed = totalSpeed / float64(len(racers))
	}

	leaderboard := make([]schemas.LeaderboardEntry, 0, 3)
	for i, participant := range standings {
		if i == 3 {
			break
		}
		leaderboard = append(leaderboard, schemas.LeaderboardEntry{
			Position: i + 1,
			Name:     participant.Name,
			Distance: int(math.Floor(participant.Bicycle.Position())),
			Speed:    int(math.Floor(participant.Bicycle.Speed())),
		})
	}

	powerUps := make([]entities.PowerUp, len(room.PowerUps))
	copy(powerUps, room.PowerUps)

	return schemas.GameState{
		RoomId:         room.Id,
		State:          string(room.State),
		Players:        players,
		RaceDistance:   distance,
		RaceType:       room.RaceType.Name,
		CurrentWeather: room.Weather,
		PowerUps:       powerUps,
		TurnCount:      room.TurnCount,
		IsRaceActive:   room.State == entities.RoomActive,
		RaceProgress:   progress,
		GamePhase:      phase(progress),
		Leaderboard:    leaderboard,
		Statistics: schemas.Statistics{
			TotalTurns:    room.TurnCount,
			AverageSpeed:  averageSpeed,
			TotalDistance: distance,
		},
	}
}

func phase(progress float64) string {
	switch {
	case progress < 0.25:
		return "early"
	case progress < 0.75:
		return "middle"
	case progress < 0.9:
		return "final"
	default:
		return "sprint"
	}
}

func finalResults(standings []*entities.Participant) []schemas.FinalResult {
	results := make([]schemas.FinalResult, 0, len(standings))
	for i, participant := range standings {
		results = append(results, schemas.FinalResult{
			Position:      i + 1,
			Name:          participant.Name,
			FinalPosition: participant.Bicycle.Position(),
			Stats:         participant.Bicycle.RaceStats(),
			Lifetime:      participant.Bicycle.LifetimeStats(),
		})
	}
	return results
}

func participantSummaries(room *entities.Room) []schemas.ParticipantSummary {
	participants := room.Participants()
	summaries := make([]schemas.ParticipantSummary, 0, len(participants))
	for _, participant := range participants {
		summaries = append(summaries, schemas.ParticipantSummary{
			Id:          participant.Id,
			Name:        participant.Name,
			Color:       participant.Color,
			IsConnected: participant.IsConnected,
			IsOwner:     participant.Id == room.OwnerId,
			IsSpectator: participant.IsSpectator(),
			IsBot:       participant.IsBot,
		})
	}
	return summaries
}

func ownerName(room *entities.Room) string {
	if owner, ok := room.Owner(); ok {
		return owner.Name
	}
	return ""
}
