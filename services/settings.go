package services

import (
	"time"

	"github.com/baksohyeon/bycle-console-game/entities"
)

// Settings tunes rooms, ticks and cleanup.
type Settings struct {
	TickInterval    time.Duration
	MaxPlayers      int
	AllowSpectators bool

	// ReconnectTimeout is how long a room with nobody connected survives.
	ReconnectTimeout time.Duration
	// FinishedTimeout is how long a finished room survives its race.
	FinishedTimeout time.Duration
	// RoomTimeout is the absolute idle limit.
	RoomTimeout    time.Duration
	ReaperInterval time.Duration

	WeatherChangeChance  float64
	PowerUpSpawnChance   float64
	MaxAvailablePowerUps int

	Bicycle entities.BicycleConfig

	Now func() time.Time
}

func DefaultSettings() Settings {
	return Settings{
		TickInterval:         time.Second,
		MaxPlayers:           4,
		AllowSpectators:      true,
		ReconnectTimeout:     5 * time.Minute,
		FinishedTimeout:      5 * time.Minute,
		RoomTimeout:          30 * time.Minute,
		ReaperInterval:       5 * time.Minute,
		WeatherChangeChance:  0.05,
		PowerUpSpawnChance:   0.15,
		MaxAvailablePowerUps: 5,
		Bicycle:              entities.DefaultBicycleConfig(),
		Now:                  time.Now,
	}
}

func (settings Settings) now() time.Time {
	if settings.Now == nil {
		return time.Now()
	}
	return settings.Now()
}
