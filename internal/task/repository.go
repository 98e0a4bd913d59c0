package task

//go:generate mockgen -destination=mock_repository.go -package=task github.com/borncrazy123/CamLink/internal/task Repository

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

// Repository is the task half of the store.
type Repository interface {
	// Create inserts t and returns its row id.
	Create(ctx context.Context, t *Task) (int64, error)

	// Update moves a calling task to state with a new description.
	// Rows already in a terminal state are not touched; the returned
	// count is 0 for them and for unknown correlation ids.
	Update(ctx context.Context, correlationID, state, description string) (int64, error)

	// UpdateDescription rewrites the description regardless of state.
	UpdateDescription(ctx context.Context, correlationID, description string) (int64, error)

	// Delete removes a task row. The count is 0 for unknown ids.
	Delete(ctx context.Context, correlationID string) (int64, error)

	// GetByCorrelationID returns one task or ErrTaskNotFound.
	GetByCorrelationID(ctx context.Context, correlationID string) (*Task, error)

	// List returns tasks matching f, newest first.
	List(ctx context.Context, f Filter) ([]Task, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const taskColumns = "id, client_id, request_id, kind, state, description, created_at, updated_at"

// Create inserts t, stamping timestamps and defaulting the state to calling.
func (r *SQLiteRepository) Create(ctx context.Context, t *Task) (int64, error) {
	if t.CorrelationID == "" || t.ClientID == "" || t.Kind == "" {
		return 0, fmt.Errorf("%w: client_id, request_id and kind are required", ErrInvalidTask)
	}
	if t.State == "" {
		t.State = StateCalling
	}
	if !ValidState(t.State) {
		return 0, fmt.Errorf("%w: state %q", ErrInvalidTask, t.State)
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	t.UpdatedAt = t.CreatedAt

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (client_id, request_id, kind, state, description, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ClientID, t.CorrelationID, t.Kind, t.State, t.Description,
		formatTime(t.CreatedAt), formatTime(t.UpdatedAt),
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return 0, fmt.Errorf("%w: %s", ErrTaskExists, t.CorrelationID)
		}
		return 0, fmt.Errorf("inserting task: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading task id: %w", err)
	}
	t.ID = id
	return id, nil
}

// Update applies a terminal transition, guarded by state = 'calling'.
func (r *SQLiteRepository) Update(ctx context.Context, correlationID, state, description string) (int64, error) {
	if !ValidState(state) {
		return 0, fmt.Errorf("%w: state %q", ErrInvalidTask, state)
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET state = ?, description = ?, updated_at = ?
		 WHERE request_id = ? AND state = ?`,
		state, description, formatTime(time.Now()), correlationID, StateCalling,
	)
	if err != nil {
		return 0, fmt.Errorf("updating task: %w", err)
	}
	return res.RowsAffected()
}

// UpdateDescription rewrites the description only.
func (r *SQLiteRepository) UpdateDescription(ctx context.Context, correlationID, description string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET description = ?, updated_at = ? WHERE request_id = ?`,
		description, formatTime(time.Now()), correlationID,
	)
	if err != nil {
		return 0, fmt.Errorf("updating task description: %w", err)
	}
	return res.RowsAffected()
}

// Delete removes the task with correlationID.
func (r *SQLiteRepository) Delete(ctx context.Context, correlationID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM tasks WHERE request_id = ?", correlationID)
	if err != nil {
		return 0, fmt.Errorf("deleting task: %w", err)
	}
	return res.RowsAffected()
}

// GetByCorrelationID retrieves a task by its request id.
func (r *SQLiteRepository) GetByCorrelationID(ctx context.Context, correlationID string) (*Task, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM tasks WHERE request_id = ?", correlationID)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, correlationID)
		}
		return nil, fmt.Errorf("querying task: %w", err)
	}
	return t, nil
}

// List returns tasks matching f ordered by creation time, newest first.
func (r *SQLiteRepository) List(ctx context.Context, f Filter) ([]Task, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	var where []string
	var args []any
	if f.ClientID != "" {
		where = append(where, "client_id = ?")
		args = append(args, f.ClientID)
	}
	if f.State != "" {
		where = append(where, "state = ?")
		args = append(args, f.State)
	}
	if f.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, f.Kind)
	}
	if !f.CreatedBefore.IsZero() {
		where = append(where, "created_at < ?")
		args = append(args, formatTime(f.CreatedBefore))
	}

	query := "SELECT " + taskColumns + " FROM tasks"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()

	tasks := []Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tasks: %w", err)
	}
	return tasks, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(scanner rowScanner) (*Task, error) {
	var t Task
	var description sql.NullString
	var createdAt, updatedAt string
	if err := scanner.Scan(&t.ID, &t.ClientID, &t.CorrelationID, &t.Kind, &t.State,
		&description, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	t.Description = description.String

	var err error
	if t.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if t.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &t, nil
}

// timeLayout is fixed width so text ordering in SQL matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
