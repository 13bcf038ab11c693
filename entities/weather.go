package entities

import "math/rand"

type Weather struct {
	Type           string  `json:"type"`
	Icon           string  `json:"icon"`
	Description    string  `json:"description"`
	SpeedModifier  float64 `json:"speedModifier"`
	EnergyModifier float64 `json:"energyModifier"`
}

var weathers = []Weather{
	{Type: "sunny", Icon: "☀️", Description: "Perfect racing conditions", SpeedModifier: 1.0, EnergyModifier: 1.0},
	{Type: "rainy", Icon: "🌧️", Description: "Slippery roads, slower speeds", SpeedModifier: 0.8, EnergyModifier: 1.2},
	{Type: "windy", Icon: "💨", Description: "Strong headwinds affect speed", SpeedModifier: 0.9, EnergyModifier: 1.3},
	{Type: "stormy", Icon: "⛈️", Description: "Dangerous conditions!", SpeedModifier: 0.7, EnergyModifier: 1.5},
}

func Sunny() Weather {
	return weathers[0]
}

func RandomWeather(rng *rand.Rand) Weather {
	return weathers[rng.Intn(len(weathers))]
}
