package rowstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwhitfield/tripatlas/backend/internal/domain"
	"github.com/mwhitfield/tripatlas/backend/internal/rowstore"
	"github.com/mwhitfield/tripatlas/backend/testutil"
)

// newTestStore opens a transaction against the test database and returns a
// Postgres store backed by it. The transaction is rolled back when the test
// finishes, giving free per-test isolation.
//
// Requires TEST_DATABASE_URL to be set; skipped otherwise.
func newTestStore(t *testing.T) *rowstore.Postgres {
	t.Helper()
	pool := testutil.NewPool(t)

	tx, err := pool.Begin(context.Background())
	require.NoError(t, err, "begin transaction")

	t.Cleanup(func() {
		_ = tx.Rollback(context.Background())
	})

	return rowstore.NewPostgres(tx)
}

func TestPostgres_HeadersSeeded(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, rowstore.CheckSheets(context.Background(), s))
}

func TestPostgres_AppendFindGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AppendRow(ctx, rowstore.SheetTrips, []string{"t1", "Trip One", "2026-01-01", "2026-01-05"}))
	require.NoError(t, s.AppendRow(ctx, rowstore.SheetTrips, []string{"t2", "Trip Two", "2026-02-01", "2026-02-05"}))

	pos, err := s.FindExactMatch(ctx, rowstore.SheetTrips, "t2", rowstore.TripColID)
	require.NoError(t, err)
	assert.Equal(t, 3, pos)

	row, err := s.GetRow(ctx, rowstore.SheetTrips, pos)
	require.NoError(t, err)
	assert.Equal(t, []string{"t2", "Trip Two", "2026-02-01", "2026-02-05"}, row)
}

func TestPostgres_DeleteRow_ShiftsPositions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.AppendRow(ctx, rowstore.SheetTrips, []string{id, id, "2026-01-01", "2026-01-02"}))
	}

	require.NoError(t, s.DeleteRow(ctx, rowstore.SheetTrips, 3))

	pos, err := s.FindExactMatch(ctx, rowstore.SheetTrips, "c", rowstore.TripColID)
	require.NoError(t, err)
	assert.Equal(t, 3, pos)

	_, err = s.FindExactMatch(ctx, rowstore.SheetTrips, "b", rowstore.TripColID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPostgres_UpdateCell(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.AppendRow(ctx, rowstore.SheetTrips, []string{"t1", "Old", "2026-01-01", "2026-01-05"}))

	require.NoError(t, s.UpdateCell(ctx, rowstore.SheetTrips, 2, rowstore.TripColName, "New"))

	row, err := s.GetRow(ctx, rowstore.SheetTrips, 2)
	require.NoError(t, err)
	assert.Equal(t, "New", row[rowstore.TripColName-1])

	err = s.UpdateCell(ctx, rowstore.SheetTrips, 99, 1, "x")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPostgres_DeleteRow_NotFound(t *testing.T) {
	s := newTestStore(t)

	err := s.DeleteRow(context.Background(), rowstore.SheetTrips, 99)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
