package models

import "time"

// Device is a paired thermostat and its persisted settings.
type Device struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"` // host or host:port on the LAN
	Available bool      `json:"available"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Device event types.
const (
	EventAvailable     = "AVAILABLE"
	EventUnavailable   = "UNAVAILABLE"
	EventCommand       = "COMMAND"
	EventCommandFailed = "COMMAND_FAILED"
	EventPaired        = "PAIRED"
	EventUnpaired      = "UNPAIRED"
)

// DeviceEvent is a single device log entry.
type DeviceEvent struct {
	EventID     string    `json:"event_id"`
	DeviceID    string    `json:"device_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // AVAILABLE | UNAVAILABLE | COMMAND | COMMAND_FAILED | PAIRED | UNPAIRED
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}
