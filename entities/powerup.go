package entities

import "math/rand"

// EffectKind identifies how a power-up changes a bicycle. Effects are data,
// the bicycle interprets them.
type EffectKind string

const (
	EffectInstantRefill   EffectKind = "instant-refill"
	EffectTimedMultiplier EffectKind = "timed-multiplier"
	EffectTimedFlag       EffectKind = "timed-modifier-flag"
)

const (
	PowerUpSpeedBoost       = "speed_boost"
	PowerUpEnergyRefill     = "energy_refill"
	PowerUpEnergyEfficiency = "energy_efficiency"
	PowerUpSteadyPace       = "steady_pace"
	PowerUpEnergyRecovery   = "energy_recovery"
)

type PowerUp struct {
	Id          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Icon        string     `json:"icon"`
	Effect      EffectKind `json:"effect"`
	// Amount is the instant delta for refills and the factor for multipliers.
	Amount   float64 `json:"amount,omitempty"`
	Duration int     `json:"duration,omitempty"`
}

var catalog = []PowerUp{
	{
		Id:          PowerUpSpeedBoost,
		Name:        "Speed Boost",
		Description: "50% speed increase for 3 turns",
		Icon:        "🚀",
		Effect:      EffectTimedMultiplier,
		Amount:      1.5,
		Duration:    3,
	},
	{
		Id:          PowerUpEnergyRefill,
		Name:        "Energy Drink",
		Description: "Restore 30 energy instantly",
		Icon:        "⚡",
		Effect:      EffectInstantRefill,
		Amount:      30,
	},
	{
		Id:          PowerUpEnergyEfficiency,
		Name:        "Efficiency Mode",
		Description: "Half energy consumption for 5 turns",
		Icon:        "🔋",
		Effect:      EffectTimedMultiplier,
		Amount:      0.5,
		Duration:    5,
	},
	{
		Id:          PowerUpSteadyPace,
		Name:        "Steady Pace",
		Description: "Removes speed randomness for 4 turns",
		Icon:        "🎯",
		Effect:      EffectTimedFlag,
		Duration:    4,
	},
	{
		Id:          PowerUpEnergyRecovery,
		Name:        "Recovery Boost",
		Description: "50% faster energy recovery for 6 turns",
		Icon:        "💚",
		Effect:      EffectTimedMultiplier,
		Amount:      1.5,
		Duration:    6,
	},
}

func FindPowerUp(id string) (PowerUp, bool) {
	for _, powerUp := range catalog {
		if powerUp.Id == id {
			return powerUp, true
		}
	}
	return PowerUp{}, false
}

func RandomPowerUp(rng *rand.Rand) PowerUp {
	return catalog[rng.Intn(len(catalog))]
}

// Modifier is a power-up that is still counting down on a bicycle.
type Modifier struct {
	Id        string  `json:"id"`
	Name      string  `json:"name"`
	Icon      string  `json:"icon"`
	Factor    float64 `json:"factor,omitempty"`
	Remaining int     `json:"remaining"`
}
