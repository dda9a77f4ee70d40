package models

import "time"

// ThermostatInfo is the last-known raw thermostat block in device units.
type ThermostatInfo struct {
	CurrentTemperatureCentiDeg int `json:"current_temperature_centi_deg"`
	TargetTemperatureCentiDeg  int `json:"target_temperature_centi_deg"`
	// ActiveStateCode is nil when the device did not report a parsable state.
	ActiveStateCode *int `json:"active_state_code,omitempty"`
}

// PowerUsage holds electricity readings. Nil fields were not reported.
type PowerUsage struct {
	InstantaneousWatts *float64 `json:"instantaneous_watts,omitempty"`
	DayUsageWh         *float64 `json:"day_usage_wh,omitempty"`
	DayLowUsageWh      *float64 `json:"day_low_usage_wh,omitempty"`
	PeakMeterWh        *float64 `json:"peak_meter_wh,omitempty"`
	OffPeakMeterWh     *float64 `json:"off_peak_meter_wh,omitempty"`
}

// GasUsage holds the gas meter register.
type GasUsage struct {
	MeterLiters float64 `json:"meter_liters"`
}

// Water holds water flow and meter readings. Nil fields were not reported.
type Water struct {
	FlowLitersPerMin *float64 `json:"flow_liters_per_min,omitempty"`
	MeterLiters      *float64 `json:"meter_liters,omitempty"`
}

// DeviceStateSnapshot is the in-memory record of one paired device.
// Sub-records are replaced wholesale and never mutated in place.
type DeviceStateSnapshot struct {
	ThermostatInfo *ThermostatInfo `json:"thermostat_info,omitempty"`
	PowerUsage     *PowerUsage     `json:"power_usage,omitempty"`
	GasUsage       *GasUsage       `json:"gas_usage,omitempty"`
	Water          *Water          `json:"water,omitempty"`

	UnavailableStreak uint      `json:"unavailable_streak"`
	Available         bool      `json:"available"`
	UpdatedAt         time.Time `json:"updated_at,omitempty"`
}
