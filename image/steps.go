package image

import (
	"math"
)

// Detail steps are exposed to the client on a single fixed scale and mapped
// linearly onto whatever range each engine model actually accepts.
var (
	clientStepRange = stepRange{1, 7}

	modelToStepRange = map[Model]stepRange{
		ModelDreamshaper: {6, 12},
		ModelProteus:     {6, 12},
		ModelPlayground:  {25, 51},
	}
)

type stepRange struct {
	min int
	max int
}

// ToEngineRange maps a client-scale step value onto the model's engine range.
// Out-of-range values are clamped, never rejected.
func ToEngineRange(value int, model Model) int {
	engineRange, ok := modelToStepRange[model]
	if !ok {
		return clamp(value, clientStepRange)
	}
	return interpolate(value, clientStepRange, engineRange)
}

// ToClientRange maps an engine-scale step value back onto the client range.
// Inverse of ToEngineRange up to rounding.
func ToClientRange(value int, model Model) int {
	engineRange, ok := modelToStepRange[model]
	if !ok {
		return clamp(value, clientStepRange)
	}
	return interpolate(value, engineRange, clientStepRange)
}

func interpolate(value int, from, to stepRange) int {
	value = clamp(value, from)
	position := float64(value-from.min) / float64(from.max-from.min)
	mapped := float64(to.min) + position*float64(to.max-to.min)
	return int(math.Round(mapped))
}

func clamp(value int, r stepRange) int {
	if value < r.min {
		return r.min
	}
	if value > r.max {
		return r.max
	}
	return value
}
