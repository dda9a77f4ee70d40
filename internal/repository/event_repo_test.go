package repository

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"toon_bridge/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
)

func ctx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	t.Cleanup(cancel)
	return c
}

const selectEventsSQL = `SELECT id, device_id, occurred_at, type, message, meta FROM device_events`

var eventColumns = []string{"id", "device_id", "occurred_at", "type", "message", "meta"}

func TestEventAppend_Success_WithDefaults(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	repo := NewEventSQLite(db)

	mock.ExpectExec(regexp.QuoteMeta(insertEventSQL)).
		WithArgs(sqlmock.AnyArg(), "dev-1", sqlmock.AnyArg(),
			"UNAVAILABLE", "device unreachable",
			`{"reason":"timeout"}`,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Append(ctx(t), models.DeviceEvent{
		DeviceID:    "dev-1",
		Type:        "  unavailable ",
		Description: "device unreachable",
		Metadata:    map[string]any{"reason": "timeout"},
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestEventAppend_NilMetadataIsNull(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	at := time.Date(2025, 1, 1, 10, 0, 0, 0, time.FixedZone("CET", 3600))
	mock.ExpectExec("INSERT INTO device_events").
		WithArgs("ev-1", "dev-1", "2025-01-01 09:00:00", "PAIRED", "paired", nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = NewEventSQLite(db).Append(ctx(t), models.DeviceEvent{
		EventID:     "ev-1",
		DeviceID:    "dev-1",
		OccurredAt:  at,
		Type:        models.EventPaired,
		Description: "paired",
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestEventAppend_DBError(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO device_events").
		WillReturnError(errors.New("down"))

	err = NewEventSQLite(db).Append(ctx(t), models.DeviceEvent{
		DeviceID:    "dev-1",
		Type:        "command",
		Description: "x",
	})
	if err == nil || !strings.Contains(err.Error(), "down") {
		t.Fatalf("expected error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestEventList_NoFilters_And_MetadataParsing(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	js, _ := json.Marshal(map[string]any{"a": "b"})

	rows := sqlmock.NewRows(eventColumns).
		AddRow("1", "dev-1", now, "COMMAND", "m1", string(js)).
		AddRow("2", "dev-2", now.Add(time.Hour), "AVAILABLE", "m2", nil).
		AddRow("3", "dev-2", now.Add(2*time.Hour), "AVAILABLE", "m3", "{broken")

	mock.ExpectQuery(regexp.QuoteMeta(selectEventsSQL + ` ORDER BY occurred_at ASC`)).
		WillReturnRows(rows)

	got, err := NewEventSQLite(db).List(ctx(t), EventFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("want 3, got %d", len(got))
	}
	if got[0].EventID != "1" || got[1].DeviceID != "dev-2" {
		t.Fatalf("unexpected rows: %+v", got)
	}
	b1, _ := json.Marshal(got[0].Metadata)
	if string(b1) != string(js) {
		t.Fatalf("metadata mismatch: %s vs %s", string(b1), string(js))
	}
	if got[1].Metadata != nil {
		t.Fatalf("expected nil meta, got %#v", got[1].Metadata)
	}
	if got[2].Metadata != "{broken" {
		t.Fatalf("malformed meta should be kept raw, got %#v", got[2].Metadata)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestEventList_WithFilters_OrderAndArgs(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	from := time.Date(2025, 1, 1, 11, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	query := selectEventsSQL + ` WHERE occurred_at >= ? AND occurred_at <= ? AND type = ? AND device_id = ? ORDER BY occurred_at ASC`

	rows := sqlmock.NewRows(eventColumns).
		AddRow("2", "dev-1", from, "COMMAND_FAILED", "b", nil).
		AddRow("3", "dev-1", to, "COMMAND_FAILED", "c", nil)

	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WithArgs(from, to, "COMMAND_FAILED", "dev-1").
		WillReturnRows(rows)

	got, err := NewEventSQLite(db).List(ctx(t), EventFilter{
		From:     from,
		To:       to,
		Type:     " command_failed ",
		DeviceID: "dev-1",
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[0].EventID != "2" || got[1].EventID != "3" {
		t.Fatalf("unexpected results: %+v", got)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestEventList_ScanError(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	rows := sqlmock.NewRows(eventColumns).
		// occurred_at wrong type to force scan error
		AddRow("x", "dev-1", 123, "COMMAND", "msg", nil)

	mock.ExpectQuery(regexp.QuoteMeta(selectEventsSQL)).
		WillReturnRows(rows)

	if _, err := NewEventSQLite(db).List(ctx(t), EventFilter{}); err == nil {
		t.Fatalf("expected scan error, got nil")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}
