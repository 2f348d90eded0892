package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"grimoire/internal/models"
	"grimoire/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrimorioRepository_CreateBatchAndList(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewGrimorioRepository(db)
	ctx := context.Background()

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	catalog := testutil.GrimorioCatalog()
	// Insert out of tier order; List must still return tiers ascending.
	catalog[0], catalog[4] = catalog[4], catalog[0]
	require.NoError(t, repo.CreateBatch(ctx, catalog))

	count, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 5, count)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 5)
	for i, g := range list {
		assert.Equal(t, i+1, g.TipoTrebol)
		assert.NotEmpty(t, g.ID)
	}
}

func TestGrimorioRepository_CreateBatch_Duplicate(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewGrimorioRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.CreateBatch(ctx, testutil.GrimorioCatalog()))
	err := repo.CreateBatch(ctx, testutil.GrimorioCatalog())
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestGrimorioRepository_CreateBatch_Empty(t *testing.T) {
	repo := NewGrimorioRepository(testutil.NewDB(t))
	assert.NoError(t, repo.CreateBatch(context.Background(), nil))
}

func TestGrimorioRepository_ListWithRequests(t *testing.T) {
	db := testutil.NewDB(t)
	grimorios := testutil.SeedGrimorios(t, db)
	requests := NewRequestRepository(db)
	repo := NewGrimorioRepository(db)
	ctx := context.Background()

	for _, name := range []string{"Juan", "Ana"} {
		req := newRequest(name, models.AffinityWind)
		require.NoError(t, requests.Create(ctx, req))
		_, err := requests.Transition(ctx, req.ID, models.RequestStatusApproved, func() (models.Grimorio, error) {
			return grimorios[1], nil
		})
		require.NoError(t, err)
	}

	list, err := repo.ListWithRequests(ctx)
	require.NoError(t, err)
	require.Len(t, list, 5)
	assert.Empty(t, list[0].Requests)
	assert.Len(t, list[1].Requests, 2)
	for _, req := range list[1].Requests {
		require.NotNil(t, req.GrimorioID)
		assert.Equal(t, grimorios[1].ID, *req.GrimorioID)
	}
}

func TestGrimorioRepository_Count_Postgres(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewGrimorioRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "grimorios"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 5, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsUniqueConstraintError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "postgres unique violation", err: &pgconn.PgError{Code: "23505"}, want: true},
		{name: "postgres other code", err: &pgconn.PgError{Code: "23503"}, want: false},
		{name: "sqlite", err: errors.New("UNIQUE constraint failed: grimorios.tipo_trebol"), want: true},
		{name: "other", err: errors.New("connection reset"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isUniqueConstraintError(tt.err))
		})
	}
}
