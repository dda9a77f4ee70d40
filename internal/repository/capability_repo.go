package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"toon_bridge/internal/models"
)

// CapabilitySQLite keeps the latest value per (device, capability).
type CapabilitySQLite struct {
	db *sql.DB
}

func NewCapabilitySQLite(db *sql.DB) *CapabilitySQLite { return &CapabilitySQLite{db: db} }

var _ CapabilityRepo = (*CapabilitySQLite)(nil)

const (
	upsertCapabilitySQL = `
		INSERT INTO capability_values (device_id, capability, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(device_id, capability) DO UPDATE SET
			value=excluded.value,
			updated_at=excluded.updated_at
	`

	selectCapabilitiesSQL = `
		SELECT device_id, capability, value, updated_at
		FROM capability_values WHERE device_id = ? ORDER BY capability ASC
	`
)

// Upsert stores v as JSON. A nil value is stored as NULL.
func (r *CapabilitySQLite) Upsert(ctx context.Context, v models.CapabilityValue) error {
	var valuePtr *string
	if v.Value != nil {
		b, err := json.Marshal(v.Value)
		if err != nil {
			return fmt.Errorf("marshal %s value: %w", v.Capability, err)
		}
		s := string(b)
		valuePtr = &s
	}

	ts := v.UpdatedAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	} else {
		ts = ts.UTC()
	}

	if _, err := r.db.ExecContext(ctx, upsertCapabilitySQL, v.DeviceID, v.Capability, valuePtr, ts); err != nil {
		return fmt.Errorf("upsert %s for %q: %w", v.Capability, v.DeviceID, err)
	}
	return nil
}

func (r *CapabilitySQLite) List(ctx context.Context, deviceID string) ([]models.CapabilityValue, error) {
	rows, err := r.db.QueryContext(ctx, selectCapabilitiesSQL, deviceID)
	if err != nil {
		return nil, fmt.Errorf("select capabilities of %q: %w", deviceID, err)
	}
	defer rows.Close()

	out := make([]models.CapabilityValue, 0, len(models.Capabilities))
	for rows.Next() {
		var (
			v   models.CapabilityValue
			raw sql.NullString
		)
		if err := rows.Scan(&v.DeviceID, &v.Capability, &raw, &v.UpdatedAt); err != nil {
			return nil, err
		}
		v.UpdatedAt = v.UpdatedAt.UTC()
		if raw.Valid && raw.String != "" {
			var val any
			if err := json.Unmarshal([]byte(raw.String), &val); err == nil {
				v.Value = val
			} else {
				v.Value = raw.String
			}
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
