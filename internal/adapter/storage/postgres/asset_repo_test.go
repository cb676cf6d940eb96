package postgres

import (
	"context"
	"testing"
	"time"

	"tokenized-asset-ledger/internal/core/domain"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testOwner = domain.Principal("ldg1ownerownerownerownerowner")
	testAlice = domain.Principal("ldg1alicealicealicealicealice")
)

func newTestAsset() *domain.Asset {
	return &domain.Asset{
		ID:          1,
		Owner:       testOwner,
		Kind:        "real-estate",
		MetadataURI: "ipfs://QmAsset1",
		TotalSupply: 1000,
		Frozen:      false,
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}
}

func assetRow(a *domain.Asset) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "owner", "kind", "metadata_uri", "total_supply", "frozen", "created_at"}).
		AddRow(a.ID, a.Owner, a.Kind, a.MetadataURI, a.TotalSupply, a.Frozen, a.CreatedAt)
}

func TestAssetRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAssetRepo(mock)
	a := newTestAsset()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO assets").
		WithArgs(a.ID, a.Owner, a.Kind, a.MetadataURI, a.TotalSupply, a.Frozen, a.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), tx, a)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssetRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAssetRepo(mock)
	a := newTestAsset()

	mock.ExpectQuery("SELECT .+ FROM assets WHERE id").
		WithArgs(a.ID).
		WillReturnRows(assetRow(a))

	result, err := repo.GetByID(context.Background(), a.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, a.ID, result.ID)
	assert.Equal(t, a.TotalSupply, result.TotalSupply)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssetRepo_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAssetRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM assets WHERE id").
		WithArgs(uint64(99)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "owner", "kind", "metadata_uri", "total_supply", "frozen", "created_at"}))

	result, err := repo.GetByID(context.Background(), 99)
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssetRepo_GetByIDForUpdate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAssetRepo(mock)
	a := newTestAsset()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM assets WHERE id .+ FOR UPDATE").
		WithArgs(a.ID).
		WillReturnRows(assetRow(a))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	result, err := repo.GetByIDForUpdate(context.Background(), tx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, a.Owner, result.Owner)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssetRepo_UpdateSupply(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAssetRepo(mock)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE assets SET total_supply").
		WithArgs(uint64(1500), uint64(1)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.UpdateSupply(context.Background(), tx, 1, 1500)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssetRepo_UpdateSupply_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAssetRepo(mock)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE assets SET total_supply").
		WithArgs(uint64(1500), uint64(99)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.UpdateSupply(context.Background(), tx, 99, 1500)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
