package task

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/borncrazy123/CamLink/internal/infrastructure/database"
	"github.com/borncrazy123/CamLink/migrations"
)

func setupTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	ctx := context.Background()

	db, err := database.OpenMemory(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup

	require.NoError(t, db.Migrate(ctx, migrations.Source()))
	return NewSQLiteRepository(db.DB)
}

func seedTask(t *testing.T, repo *SQLiteRepository, clientID, corr, kind string, created time.Time) {
	t.Helper()
	_, err := repo.Create(context.Background(), &Task{
		ClientID: clientID, CorrelationID: corr, Kind: kind, CreatedAt: created,
	})
	require.NoError(t, err)
}

func TestSQLiteRepository_CreateAndGet(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	tk := &Task{ClientID: "client-001", CorrelationID: "req_1", Kind: "get_status", Description: "query status"}
	id, err := repo.Create(ctx, tk)
	require.NoError(t, err)
	assert.NotZero(t, id)
	assert.Equal(t, id, tk.ID)
	assert.Equal(t, StateCalling, tk.State)

	got, err := repo.GetByCorrelationID(ctx, "req_1")
	require.NoError(t, err)
	assert.Equal(t, "client-001", got.ClientID)
	assert.Equal(t, "get_status", got.Kind)
	assert.Equal(t, StateCalling, got.State)
	assert.Equal(t, "query status", got.Description)

	_, err = repo.GetByCorrelationID(ctx, "req_missing")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestSQLiteRepository_CreateDuplicateAndInvalid(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	seedTask(t, repo, "c1", "req_1", "get_status", time.Now())

	_, err := repo.Create(ctx, &Task{ClientID: "c2", CorrelationID: "req_1", Kind: "stop_record"})
	assert.ErrorIs(t, err, ErrTaskExists)

	_, err = repo.Create(ctx, &Task{ClientID: "c2", Kind: "stop_record"})
	assert.ErrorIs(t, err, ErrInvalidTask)

	_, err = repo.Create(ctx, &Task{ClientID: "c2", CorrelationID: "req_2", Kind: "stop_record", State: "lost"})
	assert.ErrorIs(t, err, ErrInvalidTask)
}

func TestSQLiteRepository_UpdateGuardsTerminalRows(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	seedTask(t, repo, "c1", "req_1", "start_record", time.Now())

	n, err := repo.Update(ctx, "req_1", StateFailed, "failed (error code 500): device offline")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.Update(ctx, "req_1", StateSuccess, "too late")
	require.NoError(t, err)
	assert.Zero(t, n)

	got, err := repo.GetByCorrelationID(ctx, "req_1")
	require.NoError(t, err)
	assert.Equal(t, StateFailed, got.State)
	assert.Contains(t, got.Description, "500")

	n, err = repo.Update(ctx, "req_unknown", StateSuccess, "")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSQLiteRepository_UpdateDescriptionAnyState(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	seedTask(t, repo, "c1", "req_1", "get_status", time.Now())

	_, err := repo.Update(ctx, "req_1", StateSuccess, "done")
	require.NoError(t, err)

	n, err := repo.UpdateDescription(ctx, "req_1", "done, annotated")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := repo.GetByCorrelationID(ctx, "req_1")
	require.NoError(t, err)
	assert.Equal(t, StateSuccess, got.State)
	assert.Equal(t, "done, annotated", got.Description)
}

func TestSQLiteRepository_ListFilters(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	seedTask(t, repo, "c1", "req_1", "get_status", base)
	seedTask(t, repo, "c1", "req_2", "start_record", base.Add(time.Minute))
	seedTask(t, repo, "c2", "req_3", "get_status", base.Add(2*time.Minute))
	_, err := repo.Update(ctx, "req_2", StateSuccess, "ok")
	require.NoError(t, err)

	all, err := repo.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "req_3", all[0].CorrelationID, "newest first")

	byClient, err := repo.List(ctx, Filter{ClientID: "c1"})
	require.NoError(t, err)
	assert.Len(t, byClient, 2)

	calling, err := repo.List(ctx, Filter{State: StateCalling, Kind: "get_status"})
	require.NoError(t, err)
	assert.Len(t, calling, 2)

	limited, err := repo.List(ctx, Filter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSQLiteRepository_ListOrdersSubSecond(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	seedTask(t, repo, "c1", "req_whole", "get_status", base)
	seedTask(t, repo, "c1", "req_half", "get_status", base.Add(500*time.Millisecond))
	seedTask(t, repo, "c1", "req_tenth", "get_status", base.Add(1100*time.Millisecond))
	seedTask(t, repo, "c1", "req_twelve", "get_status", base.Add(1120*time.Millisecond))
	// Inserted last but oldest, so id order cannot mask the timestamp order.
	seedTask(t, repo, "c1", "req_early", "get_status", base.Add(-time.Millisecond))

	tasks, err := repo.List(ctx, Filter{})
	require.NoError(t, err)

	var order []string
	for _, tk := range tasks {
		order = append(order, tk.CorrelationID)
	}
	assert.Equal(t, []string{"req_twelve", "req_tenth", "req_half", "req_whole", "req_early"}, order)
	assert.True(t, tasks[2].CreatedAt.Equal(base.Add(500*time.Millisecond)))
}

func TestSQLiteRepository_DeleteAndCreatedBefore(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	seedTask(t, repo, "c1", "req_old", "get_status", base)
	seedTask(t, repo, "c1", "req_new", "get_status", base.Add(2*time.Hour))

	old, err := repo.List(ctx, Filter{State: StateCalling, CreatedBefore: base.Add(time.Hour)})
	require.NoError(t, err)
	require.Len(t, old, 1)
	assert.Equal(t, "req_old", old[0].CorrelationID)

	n, err := repo.Delete(ctx, "req_old")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.Delete(ctx, "req_old")
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = repo.GetByCorrelationID(ctx, "req_old")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}
