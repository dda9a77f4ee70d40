package service

import (
	"time"

	"toon_bridge/internal/models"
)

// LogFilter supports history filtering by time range, type and device.
type LogFilter struct {
	From     time.Time // inclusive; zero means no lower bound
	To       time.Time // inclusive; zero means no upper bound
	Type     string    // "", "AVAILABLE", "UNAVAILABLE", "COMMAND", "COMMAND_FAILED", "PAIRED", "UNPAIRED"
	DeviceID string
}

// AddDeviceParams describes a device to pair.
type AddDeviceParams struct {
	Name    string
	Address string
}

// FlowArgs carries the arguments of a flow action.
type FlowArgs struct {
	State         string // set_temperature_state
	ResumeProgram bool   // set_temperature_state
}

// ProbeResult is what a reachable device reported during a connection test.
type ProbeResult struct {
	Address      string                        `json:"address"`
	Thermostat   *models.ThermostatInfo        `json:"thermostat"`
	Capabilities []models.CapabilityAssignment `json:"capabilities"`
}

// DeviceState is the live view of one paired device.
type DeviceState struct {
	Device       models.Device              `json:"device"`
	Snapshot     models.DeviceStateSnapshot `json:"snapshot"`
	Capabilities []models.CapabilityValue   `json:"capabilities"`
}
