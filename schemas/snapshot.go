package schemas

import "github.com/baksohyeon/bycle-console-game/entities"

type PlayerSnapshot struct {
	Id                 string              `json:"id"`
	Name               string              `json:"name"`
	Color              string              `json:"color"`
	Position           float64             `json:"position"`
	Speed              float64             `json:"speed"`
	Energy             float64             `json:"energy"`
	MaxSpeed           float64             `json:"maxSpeed"`
	MaxEnergy          float64             `json:"maxEnergy"`
	Level              int                 `json:"level"`
	ActivePowerUps     []entities.Modifier `json:"activePowerUps"`
	IsHuman            bool                `json:"isHuman"`
	IsConnected        bool                `json:"isConnected"`
	Rank               int                 `json:"rank"`
	DistanceFromLeader float64             `json:"distanceFromLeader"`
}

type LeaderboardEntry struct {
	Position int    `json:"position"`
	Name     string `json:"name"`
	Distance int    `json:"distance"`
	Speed    int    `json:"speed"`
}

type Statistics struct {
	TotalTurns    int     `json:"totalTurns"`
	AverageSpeed  float64 `json:"averageSpeed"`
	TotalDistance float64 `json:"totalDistance"`
}

// GameState is the full snapshot broadcast on every tick and action.
type GameState struct {
	RoomId         string             `json:"roomId"`
	State          string             `json:"state"`
	Players        []PlayerSnapshot   `json:"players"`
	RaceDistance   float64            `json:"raceDistance"`
	RaceType       string             `json:"raceType"`
	CurrentWeather entities.Weather   `json:"currentWeather"`
	PowerUps       []entities.PowerUp `json:"powerUps"`
	TurnCount      int                `json:"turnCount"`
	IsRaceActive   bool               `json:"isRaceActive"`
	RaceProgress   float64            `json:"raceProgress"`
	GamePhase      string             `json:"gamePhase"`
	Leaderboard    []LeaderboardEntry `json:"leaderboard"`
	Statistics     Statistics         `json:"statistics"`
}

type FinalResult struct {
	Position      int                `json:"position"`
	Name          string             `json:"name"`
	FinalPosition float64            `json:"finalPosition"`
	Stats         entities.RaceStats `json:"stats"`
	Lifetime      entities.RaceStats `json:"lifetime"`
}
