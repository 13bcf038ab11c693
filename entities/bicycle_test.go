package entities

import (
	"math"
	"math/rand"
	"testing"
)

func newTestBicycle(seed int64) *Bicycle {
	return NewBicycle("A", "red", DefaultBicycleConfig(), rand.New(rand.NewSource(seed)))
}

func TestAccelerateConsumesCostAndBoundsSpeed(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		b := newTestBicycle(seed)

		b.Accelerate()

		if b.Energy() != 95 {
			t.Fatalf("seed %d: energy got=%v want=95", seed, b.Energy())
		}
		if b.Speed() < 1 || b.Speed() > 4 {
			t.Fatalf("seed %d: speed %v outside [1,4]", seed, b.Speed())
		}
	}
}

func TestAccelerateClampsToMaxSpeed(t *testing.T) {
	b := newTestBicycle(1)

	for i := 0; i < 10; i++ {
		b.Accelerate()
	}

	if b.Speed() != b.MaxSpeed() {
		t.Fatalf("speed got=%v want=%v", b.Speed(), b.MaxSpeed())
	}
	if b.Energy() != 50 {
		t.Fatalf("energy got=%v want=50", b.Energy())
	}
}

func TestAccelerateWhenExhaustedSlowsDown(t *testing.T) {
	b := newTestBicycle(2)
	b.speed = 3
	b.energy = 4

	b.Accelerate()

	if b.Speed() != 2 {
		t.Fatalf("speed got=%v want=2", b.Speed())
	}
	if b.Energy() != 4 {
		t.Fatalf("energy must not change, got=%v", b.Energy())
	}

	b.speed = 0.5
	b.Accelerate()
	if b.Speed() != 0 {
		t.Fatalf("speed must floor at 0, got=%v", b.Speed())
	}
}

func TestEnergyEfficiencyHalvesCost(t *testing.T) {
	b := newTestBicycle(3)
	efficiency, _ := FindPowerUp(PowerUpEnergyEfficiency)

	b.ApplyPowerUp(efficiency)
	b.Accelerate()

	if b.Energy() != 97.5 {
		t.Fatalf("energy got=%v want=97.5", b.Energy())
	}
}

func TestCoastAndBrakeRecoverEnergy(t *testing.T) {
	b := newTestBicycle(4)
	b.speed = 5
	b.energy = 50

	b.Coast()
	if b.Speed() != 4.5 || b.Energy() != 52 {
		t.Fatalf("coast: speed=%v energy=%v", b.Speed(), b.Energy())
	}

	b.Brake()
	if b.Speed() != 2.5 || b.Energy() != 53 {
		t.Fatalf("brake: speed=%v energy=%v", b.Speed(), b.Energy())
	}

	b.energy = b.MaxEnergy()
	b.Coast()
	if b.Energy() != b.MaxEnergy() {
		t.Fatalf("energy must clamp to max, got=%v", b.Energy())
	}
}

func TestBurstReportsWhetherItFired(t *testing.T) {
	b := newTestBicycle(5)
	b.energy = 25

	if !b.Burst() {
		t.Fatalf("expected burst to fire")
	}
	if b.Speed() != 3 || b.Energy() != 5 {
		t.Fatalf("after burst: speed=%v energy=%v", b.Speed(), b.Energy())
	}

	if b.Burst() {
		t.Fatalf("expected burst to fail without energy")
	}
	if b.Speed() != 3 || b.Energy() != 5 {
		t.Fatalf("failed burst must not mutate: speed=%v energy=%v", b.Speed(), b.Energy())
	}
}

func TestFailedBurstActionCoasts(t *testing.T) {
	b := newTestBicycle(6)
	b.speed = 2
	b.energy = 10

	ActionBurst.Apply(b)

	if b.Speed() != 1.5 || b.Energy() != 12 {
		t.Fatalf("expected coast: speed=%v energy=%v", b.Speed(), b.Energy())
	}
}

func TestMoveIsMonotonicAndCountsStats(t *testing.T) {
	b := newTestBicycle(7)
	previous := 0.0

	for i := 0; i < 30; i++ {
		if i%3 == 0 {
			b.Accelerate()
		} else {
			b.Brake()
		}
		b.Move()

		if b.Position() < previous {
			t.Fatalf("tick %d: position went back from %v to %v", i, previous, b.Position())
		}
		previous = b.Position()
	}

	stats := b.RaceStats()
	if stats.Time != 30 {
		t.Fatalf("race ticks got=%d want=30", stats.Time)
	}
	if stats.Distance != b.Position() {
		t.Fatalf("race distance got=%v want=%v", stats.Distance, b.Position())
	}
}

func TestSteadyPaceRemovesJitter(t *testing.T) {
	b := newTestBicycle(8)
	steady, _ := FindPowerUp(PowerUpSteadyPace)
	b.speed = 4

	b.ApplyPowerUp(steady)
	b.Move()

	if b.Position() != 4 {
		t.Fatalf("position got=%v want=4", b.Position())
	}
}

func TestModifiersExpireAndDoNotStack(t *testing.T) {
	b := newTestBicycle(9)
	boost, _ := FindPowerUp(PowerUpSpeedBoost)

	b.ApplyPowerUp(boost)
	b.Move()
	b.ApplyPowerUp(boost)

	modifiers := b.Modifiers()
	if len(modifiers) != 1 {
		t.Fatalf("expected one modifier, got %d", len(modifiers))
	}
	if modifiers[0].Remaining != boost.Duration {
		t.Fatalf("expected refreshed duration %d, got %d", boost.Duration, modifiers[0].Remaining)
	}

	for i := 0; i < boost.Duration; i++ {
		b.Move()
	}

	if len(b.Modifiers()) != 0 {
		t.Fatalf("expected modifier to expire, got %+v", b.Modifiers())
	}
}

func TestEnergyRefillIsInstant(t *testing.T) {
	b := newTestBicycle(10)
	refill, _ := FindPowerUp(PowerUpEnergyRefill)
	b.energy = 20

	b.ApplyPowerUp(refill)

	if b.Energy() != 50 {
		t.Fatalf("energy got=%v want=50", b.Energy())
	}
	if len(b.Modifiers()) != 0 {
		t.Fatalf("instant power-up must not register a modifier")
	}
}

func TestGainExperienceLevelsUpAndResetKeepsCeilings(t *testing.T) {
	b := newTestBicycle(11)

	if gained := b.GainExperience(250); gained != 2 {
		t.Fatalf("levels gained got=%d want=2", gained)
	}
	if b.Level() != 3 || b.MaxSpeed() != 12 || b.MaxEnergy() != 110 {
		t.Fatalf("level=%d maxSpeed=%v maxEnergy=%v", b.Level(), b.MaxSpeed(), b.MaxEnergy())
	}

	b.Accelerate()
	b.Move()
	b.Reset()

	if b.Position() != 0 || b.Speed() != 0 || b.Energy() != 110 {
		t.Fatalf("reset: position=%v speed=%v energy=%v", b.Position(), b.Speed(), b.Energy())
	}
	if b.MaxSpeed() != 12 || b.Level() != 3 {
		t.Fatalf("reset must keep progression")
	}

	b.Upgrade(-5, -5)
	if b.MaxSpeed() != 12 || b.MaxEnergy() != 110 {
		t.Fatalf("negative upgrades must be ignored")
	}
}

func TestWeatherScalesCostAndRecovery(t *testing.T) {
	b := newTestBicycle(12)
	b.SetWeather(weathers[3])

	b.Accelerate()
	if b.Energy() != 92.5 {
		t.Fatalf("stormy accelerate energy got=%v want=92.5", b.Energy())
	}

	b.energy = 50
	b.Brake()
	want := 50 + 1/1.5
	if math.Abs(b.Energy()-want) > 1e-9 {
		t.Fatalf("stormy brake energy got=%v want=%v", b.Energy(), want)
	}
}
