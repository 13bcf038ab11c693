package entities

import "math/rand"

// BicycleConfig holds the tuning constants of the speed/energy model.
type BicycleConfig struct {
	MaxSpeed           float64
	MaxEnergy          float64
	AccelerateCost     float64
	AccelerateMin      float64
	AccelerateMax      float64
	ExhaustionPenalty  float64
	CoastDrag          float64
	CoastRecovery      float64
	BrakeDrag          float64
	BrakeRecovery      float64
	BurstCost          float64
	BurstSpeed         float64
	JitterMin          float64
	JitterMax          float64
	ExperiencePerLevel int
	LevelSpeedBonus    float64
	LevelEnergyBonus   float64
}

func DefaultBicycleConfig() BicycleConfig {
	return BicycleConfig{
		MaxSpeed:           10,
		MaxEnergy:          100,
		AccelerateCost:     5,
		AccelerateMin:      1,
		AccelerateMax:      4,
		ExhaustionPenalty:  1,
		CoastDrag:          0.5,
		CoastRecovery:      2,
		BrakeDrag:          2,
		BrakeRecovery:      1,
		BurstCost:          20,
		BurstSpeed:         3,
		JitterMin:          0.6,
		JitterMax:          1.4,
		ExperiencePerLevel: 100,
		LevelSpeedBonus:    1,
		LevelEnergyBonus:   5,
	}
}

// Stats is the read-only view of a bicycle handed to snapshots and AI.
type Stats struct {
	Name       string
	Color      string
	Position   float64
	Speed      float64
	Energy     float64
	MaxSpeed   float64
	MaxEnergy  float64
	Level      int
	Experience int
}

type RaceStats struct {
	Distance     float64 `json:"distance"`
	Time         int     `json:"time"`
	AverageSpeed float64 `json:"averageSpeed"`
}

// Bicycle is one racer. It is not safe for concurrent use; the owning room's
// lock serialises every call, including the shared random source.
type Bicycle struct {
	Name  string
	Color string

	position   float64
	speed      float64
	energy     float64
	maxSpeed   float64
	maxEnergy  float64
	level      int
	experience int
	modifiers  []Modifier
	weather    Weather

	raceDistance     float64
	raceTicks        int
	lifetimeDistance float64
	lifetimeTicks    int

	config BicycleConfig
	rng    *rand.Rand
}

func NewBicycle(name, color string, config BicycleConfig, rng *rand.Rand) *Bicycle {
	return &Bicycle{
		Name:      name,
		Color:     color,
		energy:    config.MaxEnergy,
		maxSpeed:  config.MaxSpeed,
		maxEnergy: config.MaxEnergy,
		level:     1,
		weather:   Sunny(),
		config:    config,
		rng:       rng,
	}
}

func (b *Bicycle) Position() float64 { return b.position }
func (b *Bicycle) Speed() float64 { return b.speed }
func (b *Bicycle) Energy() float64 { return b.energy }
func (b *Bicycle) MaxSpeed() float64 { return b.maxSpeed }
func (b *Bicycle) MaxEnergy() float64 { return b.maxEnergy }
func (b *Bicycle) Level() int { return b.level }

// Modifiers returns a copy of the active timed modifiers in application order.
func (b *Bicycle) Modifiers() []Modifier {
	out := make([]Modifier, len(b.modifiers))
	copy(out, b.modifiers)
	return out
}

func (b *Bicycle) Stats() Stats {
	return Stats{
		Name:       b.Name,
		Color:      b.Color,
		Position:   b.position,
		Speed:      b.speed,
		Energy:     b.energy,
		MaxSpeed:   b.maxSpeed,
		MaxEnergy:  b.maxEnergy,
		Level:      b.level,
		Experience: b.experience,
	}
}

func (b *Bicycle) RaceStats() RaceStats {
	stats := RaceStats{Distance: b.raceDistance, Time: b.raceTicks}
	if b.raceTicks > 0 {
		stats.AverageSpeed = b.raceDistance / float64(b.raceTicks)
	}
	return stats
}

// LifetimeStats covers every race this bicycle has ridden in the room.
func (b *Bicycle) LifetimeStats() RaceStats {
	stats := RaceStats{Distance: b.lifetimeDistance, Time: b.lifetimeTicks}
	if b.lifetimeTicks > 0 {
		stats.AverageSpeed = b.lifetimeDistance / float64(b.lifetimeTicks)
	}
	return stats
}

func (b *Bicycle) SetWeather(weather Weather) {
	b.weather = weather
}

func (b *Bicycle) Accelerate() {
	cost := b.config.AccelerateCost * b.weather.EnergyModifier
	if modifier, ok := b.modifier(PowerUpEnergyEfficiency); ok {
		cost *= modifier.Factor
	}
	cost = max(cost, 0)

	if b.energy < cost {
		b.speed = max(b.speed-b.config.ExhaustionPenalty, 0)
		return
	}

	scale := b.weather.SpeedModifier
	if modifier, ok := b.modifier(PowerUpSpeedBoost); ok {
		scale *= modifier.Factor
	}
	spread := b.config.AccelerateMax - b.config.AccelerateMin
	increase := (b.config.AccelerateMin + b.rng.Float64()*spread) * scale

	b.speed = min(b.speed+increase, b.maxSpeed)
	b.energy -= cost
}

func (b *Bicycle) Coast() {
	b.speed = max(b.speed-b.config.CoastDrag, 0)
	b.recover(b.config.CoastRecovery)
}

func (b *Bicycle) Brake() {
	b.speed = max(b.speed-b.config.BrakeDrag, 0)
	b.recover(b.config.BrakeRecovery)
}

// Burst reports whether there was enough energy to fire.
func (b *Bicycle) Burst() bool {
	if b.energy < b.config.BurstCost {
		return false
	}

	b.speed = min(b.speed+b.config.BurstSpeed, b.maxSpeed)
	b.energy -= b.config.BurstCost
	return true
}

// Move advances the bicycle by one tick.
func (b *Bicycle) Move() {
	active := b.modifiers[:0]
	for _, modifier := range b.modifiers {
		modifier.Remaining--
		if modifier.Remaining > 0 {
			active = append(active, modifier)
		}
	}
	b.modifiers = active

	jitter := 1.0
	if _, steady := b.modifier(PowerUpSteadyPace); !steady {
		jitter = b.config.JitterMin + b.rng.Float64()*(b.config.JitterMax-b.config.JitterMin)
	}
	jitter *= b.weather.SpeedModifier

	delta := b.speed * jitter
	b.position += delta

	b.raceDistance += delta
	b.raceTicks++
	b.lifetimeDistance += delta
	b.lifetimeTicks++
}

// ApplyPowerUp applies the instant part once and, for timed power-ups,
// (re)starts the countdown. Re-applying an active power-up refreshes it.
func (b *Bicycle) ApplyPowerUp(powerUp PowerUp) {
	if powerUp.Effect == EffectInstantRefill {
		b.energy = min(b.energy+powerUp.Amount, b.maxEnergy)
	}

	if powerUp.Duration <= 0 {
		return
	}

	for i := range b.modifiers {
		if b.modifiers[i].Id == powerUp.Id {
			b.modifiers[i].Remaining = powerUp.Duration
			b.modifiers[i].Factor = powerUp.Amount
			return
		}
	}

	b.modifiers = append(b.modifiers, Modifier{
		Id:        powerUp.Id,
		Name:      powerUp.Name,
		Icon:      powerUp.Icon,
		Factor:    powerUp.Amount,
		Remaining: powerUp.Duration,
	})
}

// Upgrade raises the speed and energy ceilings. Negative bonuses are ignored.
func (b *Bicycle) Upgrade(speedBonus, energyBonus float64) {
	if speedBonus > 0 {
		b.maxSpeed += speedBonus
	}
	if energyBonus > 0 {
		b.maxEnergy += energyBonus
	}
}

// GainExperience returns the number of levels gained.
func (b *Bicycle) GainExperience(points int) int {
	if points <= 0 || b.config.ExperiencePerLevel <= 0 {
		return 0
	}

	b.experience += points
	target := 1 + b.experience/b.config.ExperiencePerLevel

	gained := 0
	for b.level < target {
		b.level++
		gained++
		b.Upgrade(b.config.LevelSpeedBonus, b.config.LevelEnergyBonus)
	}

	return gained
}

// Reset prepares the bicycle for a new race. Level and ceilings survive.
func (b *Bicycle) Reset() {
	b.position = 0
	b.speed = 0
	b.energy = b.maxEnergy
	b.modifiers = nil
	b.weather = Sunny()
	b.raceDistance = 0
	b.raceTicks = 0
}

func (b *Bicycle) modifier(id string) (Modifier, bool) {
	for _, modifier := range b.modifiers {
		if modifier.Id == id {
			return modifier, true
		}
	}
	return Modifier{}, false
}

func (b *Bicycle) recover(base float64) {
	amount := base
	if b.weather.EnergyModifier > 0 {
		amount /= b.weather.EnergyModifier
	}
	if modifier, ok := b.modifier(PowerUpEnergyRecovery); ok {
		amount *= modifier.Factor
	}
	b.energy = min(b.energy+amount, b.maxEnergy)
}
