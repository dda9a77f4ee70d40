package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"toon_bridge/internal/models"
)

type DeviceSQLite struct {
	db *sql.DB
}

func NewDeviceSQLite(db *sql.DB) *DeviceSQLite { return &DeviceSQLite{db: db} }

var _ DeviceRepo = (*DeviceSQLite)(nil)

const (
	insertDeviceSQL = `INSERT INTO devices (id, name, address, available, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`

	selectDeviceSQL   = `SELECT id, name, address, available, created_at, updated_at FROM devices WHERE id = ?`
	selectDevicesSQL  = `SELECT id, name, address, available, created_at, updated_at FROM devices ORDER BY created_at ASC`
	selectAddressSQL  = `SELECT address FROM devices WHERE id = ?`
	updateAddressSQL  = `UPDATE devices SET address = ?, updated_at = ? WHERE id = ?`
	updateAvailSQL    = `UPDATE devices SET available = ?, updated_at = ? WHERE id = ?`
	deleteDeviceSQL   = `DELETE FROM devices WHERE id = ?`
	deleteDevCapsSQL  = `DELETE FROM capability_values WHERE device_id = ?`
	deleteDevEventSQL = `DELETE FROM device_events WHERE device_id = ?`
)

// Create inserts a device. Timestamps default to now (UTC).
func (r *DeviceSQLite) Create(ctx context.Context, d models.Device) error {
	now := time.Now().UTC()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	if d.UpdatedAt.IsZero() {
		d.UpdatedAt = d.CreatedAt
	}
	_, err := r.db.ExecContext(ctx, insertDeviceSQL,
		d.ID, d.Name, d.Address, d.Available, d.CreatedAt.UTC(), d.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert device %q: %w", d.ID, err)
	}
	return nil
}

func (r *DeviceSQLite) Get(ctx context.Context, id string) (models.Device, error) {
	d, err := scanDevice(r.db.QueryRowContext(ctx, selectDeviceSQL, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Device{}, fmt.Errorf("device %q: %w", id, ErrNotFound)
		}
		return models.Device{}, fmt.Errorf("select device %q: %w", id, err)
	}
	return d, nil
}

func (r *DeviceSQLite) List(ctx context.Context) ([]models.Device, error) {
	rows, err := r.db.QueryContext(ctx, selectDevicesSQL)
	if err != nil {
		return nil, fmt.Errorf("select devices: %w", err)
	}
	defer rows.Close()

	out := make([]models.Device, 0, 4)
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan device: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Address returns the persisted network address. It is read on every device
// request.
func (r *DeviceSQLite) Address(ctx context.Context, id string) (string, error) {
	var addr string
	if err := r.db.QueryRowContext(ctx, selectAddressSQL, id).Scan(&addr); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("device %q: %w", id, ErrNotFound)
		}
		return "", fmt.Errorf("select address of %q: %w", id, err)
	}
	return addr, nil
}

func (r *DeviceSQLite) UpdateAddress(ctx context.Context, id, address string) error {
	return r.update(ctx, updateAddressSQL, id, address, time.Now().UTC(), id)
}

func (r *DeviceSQLite) SetAvailable(ctx context.Context, id string, available bool) error {
	return r.update(ctx, updateAvailSQL, id, available, time.Now().UTC(), id)
}

func (r *DeviceSQLite) update(ctx context.Context, query, id string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update device %q: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for %q: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("device %q: %w", id, ErrNotFound)
	}
	return nil
}

// Delete removes the device together with its capability values and events.
func (r *DeviceSQLite) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete of %q: %w", id, err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, q := range []string{deleteDevCapsSQL, deleteDevEventSQL} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return fmt.Errorf("delete rows of %q: %w", id, err)
		}
	}
	res, err := tx.ExecContext(ctx, deleteDeviceSQL, id)
	if err != nil {
		return fmt.Errorf("delete device %q: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("device %q: %w", id, ErrNotFound)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete of %q: %w", id, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDevice(row rowScanner) (models.Device, error) {
	var d models.Device
	if err := row.Scan(&d.ID, &d.Name, &d.Address, &d.Available, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return models.Device{}, err
	}
	d.CreatedAt = d.CreatedAt.UTC()
	d.UpdatedAt = d.UpdatedAt.UTC()
	return d, nil
}
