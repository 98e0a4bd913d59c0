package device

//go:generate mockgen -destination=mock_repository.go -package=device github.com/borncrazy123/CamLink/internal/device Repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
)

// List limits.
const (
	DefaultListLimit = 100
	MaxListLimit     = 1000
)

// Repository is the device half of the store.
type Repository interface {
	// Create registers a new device.
	// Returns ErrDeviceExists if the hardware or client ID is taken.
	Create(ctx context.Context, d *Device) error

	// GetByHardwareID returns one device or ErrDeviceNotFound.
	GetByHardwareID(ctx context.Context, hardwareID string) (*Device, error)

	// TransportID resolves a stable (hardware) ID to the MQTT client ID.
	TransportID(ctx context.Context, hardwareID string) (string, error)

	// StableID resolves an MQTT client ID to the hardware ID.
	StableID(ctx context.Context, clientID string) (string, error)

	// UpdateStatus writes the fields set in f and stamps last_online with
	// seen. It returns the number of rows affected; 0 means no such device.
	UpdateStatus(ctx context.Context, hardwareID string, f StatusFields, seen time.Time) (int64, error)

	// List returns up to limit devices ordered by hardware ID.
	List(ctx context.Context, limit int) ([]Device, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const deviceColumns = `hardware_id, client_id, hotel, location, wifi_name, firmware_version,
	status, run_state, left_storage, electric_percent, network_signal_strength,
	last_online, created_at, updated_at, id`

// Create inserts d. CreatedAt/UpdatedAt are stamped when zero and the
// status defaults to offline.
func (r *SQLiteRepository) Create(ctx context.Context, d *Device) error {
	if err := ValidateDevice(d); err != nil {
		return err
	}
	now := time.Now().UTC()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	d.UpdatedAt = d.CreatedAt
	if d.Status == "" {
		d.Status = StatusOffline
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO devices (hardware_id, client_id, hotel, location, wifi_name, firmware_version,
			status, run_state, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.HardwareID, d.ClientID,
		nullableString(d.Hotel), nullableString(d.Location),
		nullableString(d.WiFiName), nullableString(d.FirmwareVersion),
		d.Status, nullableString(d.RunState),
		formatTime(d.CreatedAt), formatTime(d.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrDeviceExists, d.HardwareID)
		}
		return fmt.Errorf("inserting device: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		d.ID = id
	}
	return nil
}

// GetByHardwareID retrieves a device by its stable ID.
func (r *SQLiteRepository) GetByHardwareID(ctx context.Context, hardwareID string) (*Device, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+deviceColumns+" FROM devices WHERE hardware_id = ?", hardwareID)
	d, err := scanDevice(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, hardwareID)
		}
		return nil, fmt.Errorf("querying device: %w", err)
	}
	return d, nil
}

// TransportID resolves hardwareID to its client ID.
func (r *SQLiteRepository) TransportID(ctx context.Context, hardwareID string) (string, error) {
	var clientID string
	err := r.db.QueryRowContext(ctx, "SELECT client_id FROM devices WHERE hardware_id = ?", hardwareID).Scan(&clientID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%w: hardware_id %s", ErrDeviceNotFound, hardwareID)
		}
		return "", fmt.Errorf("resolving client_id: %w", err)
	}
	return clientID, nil
}

// StableID resolves clientID to its hardware ID.
func (r *SQLiteRepository) StableID(ctx context.Context, clientID string) (string, error) {
	var hardwareID string
	err := r.db.QueryRowContext(ctx, "SELECT hardware_id FROM devices WHERE client_id = ?", clientID).Scan(&hardwareID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%w: client_id %s", ErrDeviceNotFound, clientID)
		}
		return "", fmt.Errorf("resolving hardware_id: %w", err)
	}
	return hardwareID, nil
}

// UpdateStatus writes the set fields of f. Battery is stored as an integer
// percent.
func (r *SQLiteRepository) UpdateStatus(ctx context.Context, hardwareID string, f StatusFields, seen time.Time) (int64, error) {
	stamp := formatTime(seen.UTC())
	sets := []string{"last_online = ?", "updated_at = ?"}
	args := []any{stamp, stamp}

	if f.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *f.Status)
	}
	if f.RunState != nil {
		sets = append(sets, "run_state = ?")
		args = append(args, *f.RunState)
	}
	if f.LeftStorage != nil {
		sets = append(sets, "left_storage = ?")
		args = append(args, *f.LeftStorage)
	}
	if f.Battery != nil {
		sets = append(sets, "electric_percent = ?")
		args = append(args, BatteryPercent(*f.Battery))
	}
	if f.Signal != nil {
		sets = append(sets, "network_signal_strength = ?")
		args = append(args, *f.Signal)
	}
	args = append(args, hardwareID)

	// SET clause is assembled from fixed column names only.
	query := "UPDATE devices SET " + strings.Join(sets, ", ") + " WHERE hardware_id = ?" //nolint:gosec // fixed column names
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("updating device status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading rows affected: %w", err)
	}
	return n, nil
}

// List returns devices ordered by hardware ID. limit is clamped to
// [1, MaxListLimit]; non-positive means DefaultListLimit.
func (r *SQLiteRepository) List(ctx context.Context, limit int) ([]Device, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	rows, err := r.db.QueryContext(ctx, "SELECT "+deviceColumns+" FROM devices ORDER BY hardware_id LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("querying devices: %w", err)
	}
	defer rows.Close()

	devices := []Device{}
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning device: %w", err)
		}
		devices = append(devices, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating devices: %w", err)
	}
	return devices, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDevice(scanner rowScanner) (*Device, error) {
	var d Device
	var hotel, location, wifi, firmware, runState, lastOnline sql.NullString
	var leftStorage, battery, signal sql.NullInt64
	var createdAt, updatedAt string

	if err := scanner.Scan(
		&d.HardwareID, &d.ClientID,
		&hotel, &location, &wifi, &firmware,
		&d.Status, &runState,
		&leftStorage, &battery, &signal,
		&lastOnline, &createdAt, &updatedAt, &d.ID,
	); err != nil {
		return nil, err
	}

	d.Hotel = hotel.String
	d.Location = location.String
	d.WiFiName = wifi.String
	d.FirmwareVersion = firmware.String
	d.RunState = runState.String

	if leftStorage.Valid {
		d.LeftStorage = Ptr(leftStorage.Int64)
	}
	if battery.Valid {
		d.BatteryPercent = Ptr(int(battery.Int64))
	}
	if signal.Valid {
		d.SignalStrength = Ptr(signal.Int64)
	}
	if lastOnline.Valid {
		if t, err := parseTime(lastOnline.String); err == nil {
			d.LastOnline = &t
		}
	}

	var err error
	if d.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if d.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &d, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

// nullableString returns nil for empty strings so TEXT columns stay NULL.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// timeLayout is fixed width so text ordering in SQL matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
