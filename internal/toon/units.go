package toon

import "math"

// TemperatureState is a thermostat preset name.
type TemperatureState string

const (
	StateComfort TemperatureState = "comfort"
	StateHome    TemperatureState = "home"
	StateSleep   TemperatureState = "sleep"
	StateAway    TemperatureState = "away"
	StateNone    TemperatureState = "none"
)

// EnumEntry pairs an enum name with its device code.
type EnumEntry struct {
	Name string
	Code int
}

// TemperatureStates lists the preset names and their active state codes in
// lookup order.
var TemperatureStates = []EnumEntry{
	{string(StateComfort), 0},
	{string(StateHome), 1},
	{string(StateSleep), 2},
	{string(StateAway), 3},
	{string(StateNone), -1},
}

// WattHoursToKwh converts Wh to kWh.
func WattHoursToKwh(wh float64) float64 {
	return wh / 1000
}

// TariffMeterValue picks fallback when primary is the NaN sentinel and returns
// the reading in whole kWh, truncated toward zero.
func TariffMeterValue(primary, fallback Reading) float64 {
	v := primary
	if primary.IsNaN() {
		v = fallback
	}
	return math.Trunc(WattHoursToKwh(v.Float64()))
}

// CentiDegToDecimal converts centi-degrees to degrees rounded to one decimal.
func CentiDegToDecimal(v float64) float64 {
	return math.Round(v/100*10) / 10
}

// RoundToHalfDegree rounds to the nearest 0.5 degree.
func RoundToHalfDegree(v float64) float64 {
	return math.Round(v*2) / 2
}

// DecimalToCentiDeg converts degrees to the integer centi-degrees the device expects.
func DecimalToCentiDeg(v float64) int {
	return int(math.Round(v * 100))
}

// EnumNameForCode returns the name of the first entry mapped to code.
// ok is false for unknown codes.
func EnumNameForCode(enum []EnumEntry, code int) (name string, ok bool) {
	for _, e := range enum {
		if e.Code == code {
			return e.Name, true
		}
	}
	return "", false
}

// CodeForTemperatureState resolves a preset name to its device code.
func CodeForTemperatureState(name string) (int, error) {
	for _, e := range TemperatureStates {
		if e.Name == name {
			return e.Code, nil
		}
	}
	return 0, invalidArgument("unknown temperature state %q", name)
}
