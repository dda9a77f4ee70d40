package models

import "time"

// Capability names reported for a thermostat device.
const (
	CapMeasureTemperature = "measure_temperature"
	CapTargetTemperature  = "target_temperature"
	CapTemperatureState   = "temperature_state"
	CapMeasurePower       = "measure_power"
	CapMeterPower         = "meter_power"
	CapMeterPowerPeak     = "meter_power.peak"
	CapMeterPowerOffPeak  = "meter_power.offPeak"
	CapMeterGas           = "meter_gas"
	CapMeasureWater       = "measure_water"
	CapMeterWater         = "meter_water"
)

// Capabilities lists every capability a device exposes.
var Capabilities = []string{
	CapMeasureTemperature,
	CapTargetTemperature,
	CapTemperatureState,
	CapMeasurePower,
	CapMeterPower,
	CapMeterPowerPeak,
	CapMeterPowerOffPeak,
	CapMeterGas,
	CapMeasureWater,
	CapMeterWater,
}

// CapabilityAssignment is a single value to report for a capability.
// Value may be nil when the device reported something that has no mapping.
type CapabilityAssignment struct {
	Capability string `json:"capability"`
	Value      any    `json:"value"`
}

// CapabilityValue is a persisted capability reading.
type CapabilityValue struct {
	DeviceID   string    `json:"device_id"`
	Capability string    `json:"capability"`
	Value      any       `json:"value"`
	UpdatedAt  time.Time `json:"updated_at"`
}
