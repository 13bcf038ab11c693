package entities

type RaceType struct {
	Name        string  `json:"type"`
	Distance    float64 `json:"distance"`
	Description string  `json:"description"`
	// Multiplier scales the experience awarded at the finish.
	Multiplier float64 `json:"pointMultiplier"`
}

var raceTypes = []RaceType{
	{Name: "sprint", Distance: 100, Description: "Quick 100m race", Multiplier: 1.0},
	{Name: "endurance", Distance: 200, Description: "Endurance 200m race", Multiplier: 1.5},
	{Name: "time_trial", Distance: 150, Description: "Time trial 150m race", Multiplier: 1.2},
	{Name: "elimination", Distance: 120, Description: "High-stakes 120m race", Multiplier: 1.3},
}

func Sprint() RaceType {
	return raceTypes[0]
}

// FindRaceType falls back to a sprint for unknown names.
func FindRaceType(name string) (RaceType, bool) {
	for _, raceType := range raceTypes {
		if raceType.Name == name {
			return raceType, true
		}
	}
	return Sprint(), false
}
