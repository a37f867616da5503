package device

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Store persists devices. Implementations must be safe for concurrent use.
type Store interface {
	// Create inserts an unsaved device and returns the id assigned to it.
	// Returns ErrDeviceExists if the owner already has a device with that name.
	Create(ctx context.Context, d Device) (int64, error)

	// GetByID returns ErrDeviceNotFound if the id does not exist.
	GetByID(ctx context.Context, id int64) (Device, error)

	// List returns every device ordered by id.
	List(ctx context.Context) ([]Device, error)

	// ListByOwner returns the owner's devices ordered by id.
	ListByOwner(ctx context.Context, ownerID string) ([]Device, error)

	// GetByOwnerAndName returns ErrDeviceNotFound if there is no match.
	GetByOwnerAndName(ctx context.Context, ownerID, name string) (Device, error)

	// Update writes the mutable state (status, setting, last updated).
	// Returns ErrDeviceNotFound if the device does not exist.
	Update(ctx context.Context, d Device) error

	// Delete removes a device. Returns ErrDeviceNotFound if it does not exist.
	Delete(ctx context.Context, id int64) error
}

// SQLiteRepository implements Store on the devices table.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed store.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const selectDevice = `
	SELECT id, owner_id, name, kind, status, setting_value, last_updated, created_at
	FROM devices`

func (r *SQLiteRepository) Create(ctx context.Context, d Device) (int64, error) {
	if d == nil {
		return 0, ErrInvalidDevice
	}
	rec := d.Record()
	if rec.ID != 0 {
		return 0, fmt.Errorf("%w: device already has id %d", ErrInvalidDevice, rec.ID)
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO devices (owner_id, name, kind, status, setting_value, last_updated, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.OwnerID, rec.Name, string(rec.Kind), rec.Status, rec.SettingValue,
		formatTime(rec.LastUpdated), formatTime(rec.CreatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return 0, fmt.Errorf("%w: %s/%s", ErrDeviceExists, rec.OwnerID, rec.Name)
		}
		return 0, fmt.Errorf("inserting device: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading device id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (Device, error) {
	d, err := scanDevice(r.db.QueryRowContext(ctx, selectDevice+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrDeviceNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying device %d: %w", id, err)
	}
	return d, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]Device, error) {
	return r.queryDevices(ctx, selectDevice+` ORDER BY id`)
}

func (r *SQLiteRepository) ListByOwner(ctx context.Context, ownerID string) ([]Device, error) {
	return r.queryDevices(ctx, selectDevice+` WHERE owner_id = ? ORDER BY id`, ownerID)
}

func (r *SQLiteRepository) GetByOwnerAndName(ctx context.Context, ownerID, name string) (Device, error) {
	d, err := scanDevice(r.db.QueryRowContext(ctx, selectDevice+` WHERE owner_id = ? AND name = ?`, ownerID, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s/%s", ErrDeviceNotFound, ownerID, name)
	}
	if err != nil {
		return nil, fmt.Errorf("querying device %s/%s: %w", ownerID, name, err)
	}
	return d, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, d Device) error {
	if d == nil {
		return ErrInvalidDevice
	}
	rec := d.Record()

	res, err := r.db.ExecContext(ctx, `
		UPDATE devices SET status = ?, setting_value = ?, last_updated = ?
		WHERE id = ?`,
		rec.Status, rec.SettingValue, formatTime(rec.LastUpdated), rec.ID,
	)
	if err != nil {
		return fmt.Errorf("updating device %d: %w", rec.ID, err)
	}
	return requireAffected(res, rec.ID)
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM devices WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting device %d: %w", id, err)
	}
	return requireAffected(res, id)
}

func (r *SQLiteRepository) queryDevices(ctx context.Context, query string, args ...any) ([]Device, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying devices: %w", err)
	}
	defer rows.Close()

	var devices []Device
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, err
		}
		devices = append(devices, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating devices: %w", err)
	}
	return devices, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDevice(row rowScanner) (Device, error) {
	var rec Record
	var kind, lastUpdated, createdAt string

	if err := row.Scan(&rec.ID, &rec.OwnerID, &rec.Name, &kind, &rec.Status,
		&rec.SettingValue, &lastUpdated, &createdAt); err != nil {
		return nil, err
	}
	rec.Kind = Kind(kind)

	var err error
	if rec.LastUpdated, err = parseTime(lastUpdated); err != nil {
		return nil, fmt.Errorf("device %d last_updated: %w", rec.ID, err)
	}
	if rec.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("device %d created_at: %w", rec.ID, err)
	}
	return Hydrate(rec)
}

func requireAffected(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", ErrDeviceNotFound, id)
	}
	return nil
}

// Timestamps keep nanoseconds so lastUpdated ordering survives a round trip.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// isUniqueConstraintError checks if an error is a SQLite unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
