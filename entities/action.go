package entities

type Action string

const (
	ActionAccelerate Action = "accelerate"
	ActionCoast      Action = "coast"
	ActionBrake      Action = "brake"
	ActionBurst      Action = "energy-burst"
)

func (action Action) Valid() bool {
	switch action {
	case ActionAccelerate, ActionCoast, ActionBrake, ActionBurst:
		return true
	}
	return false
}

// Apply runs the action on a bicycle. A burst without enough energy
// becomes a coast.
func (action Action) Apply(bicycle *Bicycle) bool {
	switch action {
	case ActionAccelerate:
		bicycle.Accelerate()
	case ActionCoast:
		bicycle.Coast()
	case ActionBrake:
		bicycle.Brake()
	case ActionBurst:
		if !bicycle.Burst() {
			bicycle.Coast()
		}
	default:
		return false
	}
	return true
}
