// Package ai picks actions for seats that no human controls.
package ai

import (
	"math/rand"

	"github.com/baksohyeon/bycle-console-game/entities"
)

type Profile struct {
	Name string `json:"name"`
	// Aggressiveness is how often the bot accelerates, 0..1.
	Aggressiveness float64 `json:"aggressiveness"`
	// EnergyManagement is how reliably it recovers when running low, 0..1.
	EnergyManagement float64 `json:"energyManagement"`
	PowerUpUsage     float64 `json:"powerUpUsage"`
	RiskTaking       float64 `json:"riskTaking"`
}

var profiles = []Profile{
	{Name: "easy", Aggressiveness: 0.3, EnergyManagement: 0.4, PowerUpUsage: 0.2, RiskTaking: 0.3},
	{Name: "medium", Aggressiveness: 0.5, EnergyManagement: 0.6, PowerUpUsage: 0.5, RiskTaking: 0.5},
	{Name: "hard", Aggressiveness: 0.7, EnergyManagement: 0.8, PowerUpUsage: 0.7, RiskTaking: 0.6},
	{Name: "expert", Aggressiveness: 0.8, EnergyManagement: 0.9, PowerUpUsage: 0.9, RiskTaking: 0.7},
}

// FindProfile returns the medium profile for unknown names.
func FindProfile(name string) (Profile, bool) {
	for _, profile := range profiles {
		if profile.Name == name {
			return profile, true
		}
	}
	return profiles[1], false
}

// ActionSelector decides what a bot does this tick.
type ActionSelector interface {
	Select(stats entities.Stats, progress float64, profile Profile) entities.Action
	// WantsPowerUp reports whether the bot grabs one of the available power-ups.
	WantsPowerUp(profile Profile, available int) bool
}

// Heuristic is the default selector. It shares the room's random source and
// must only be used under the room lock.
type Heuristic struct {
	rng *rand.Rand
}

func NewHeuristic(rng *rand.Rand) ActionSelector {
	return Heuristic{rng: rng}
}

func (heuristic Heuristic) Select(stats entities.Stats, progress float64, profile Profile) entities.Action {
	energy := 0.0
	if stats.MaxEnergy > 0 {
		energy = stats.Energy / stats.MaxEnergy
	}

	if energy < 0.3 && profile.EnergyManagement > heuristic.rng.Float64() {
		if stats.Speed > 3 && heuristic.rng.Float64() > 0.5 {
			return entities.ActionBrake
		}
		return entities.ActionCoast
	}

	// final stretch
	if progress > 0.7 && profile.RiskTaking > heuristic.rng.Float64() {
		if progress > 0.9 && energy > 0.5 {
			return entities.ActionBurst
		}
		return entities.ActionAccelerate
	}

	roll := heuristic.rng.Float64()
	switch {
	case roll < profile.Aggressiveness && energy > 0.2:
		return entities.ActionAccelerate
	case roll < profile.Aggressiveness+0.3:
		return entities.ActionCoast
	default:
		return entities.ActionBrake
	}
}

func (heuristic Heuristic) WantsPowerUp(profile Profile, available int) bool {
	return available > 0 && heuristic.rng.Float64() < profile.PowerUpUsage
}
