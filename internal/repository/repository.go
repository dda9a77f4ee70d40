package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"toon_bridge/internal/models"
)

// ErrNotFound is returned when a row addressed by id does not exist.
var ErrNotFound = errors.New("not found")

type Authorization interface {
	Create(ctx context.Context, username, hash string) (int, error)
	GetByUsername(ctx context.Context, username string) (models.User, error)
}

type DeviceRepo interface {
	Create(ctx context.Context, d models.Device) error
	Get(ctx context.Context, id string) (models.Device, error)
	List(ctx context.Context) ([]models.Device, error)
	Address(ctx context.Context, id string) (string, error)
	UpdateAddress(ctx context.Context, id, address string) error
	SetAvailable(ctx context.Context, id string, available bool) error
	Delete(ctx context.Context, id string) error
}

type CapabilityRepo interface {
	Upsert(ctx context.Context, v models.CapabilityValue) error
	List(ctx context.Context, deviceID string) ([]models.CapabilityValue, error)
}

// EventFilter narrows an event listing. Zero fields are not applied.
type EventFilter struct {
	From     time.Time
	To       time.Time
	Type     string
	DeviceID string
}

type EventRepo interface {
	Append(ctx context.Context, e models.DeviceEvent) error
	List(ctx context.Context, f EventFilter) ([]models.DeviceEvent, error)
}

type Repository struct {
	Devices      DeviceRepo
	Capabilities CapabilityRepo
	Events       EventRepo
	Auth         Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Devices:      NewDeviceSQLite(db),
		Capabilities: NewCapabilitySQLite(db),
		Events:       NewEventSQLite(db),
		Auth:         NewUserSQLite(db),
	}
}
