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

func newTestListing() *domain.Listing {
	return &domain.Listing{
		AssetID:   1,
		Seller:    testAlice,
		Price:     10,
		Quantity:  100,
		Expiry:    600,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

func listingRow(l *domain.Listing) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"asset_id", "seller", "price", "quantity", "expiry", "created_at"}).
		AddRow(l.AssetID, l.Seller, l.Price, l.Quantity, l.Expiry, l.CreatedAt)
}

func TestListingRepo_Put(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewListingRepo(mock)
	l := newTestListing()

	mock.ExpectExec("INSERT INTO listings").
		WithArgs(l.AssetID, l.Seller, l.Price, l.Quantity, l.Expiry, l.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Put(context.Background(), l)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingRepo_GetForUpdate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewListingRepo(mock)
	l := newTestListing()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM listings .+ FOR UPDATE").
		WithArgs(l.AssetID, l.Seller).
		WillReturnRows(listingRow(l))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	result, err := repo.GetForUpdate(context.Background(), tx, l.AssetID, l.Seller)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, l.Price, result.Price)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingRepo_Get_AbsentIsNil(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewListingRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM listings").
		WithArgs(uint64(1), testAlice).
		WillReturnRows(pgxmock.NewRows([]string{"asset_id", "seller", "price", "quantity", "expiry", "created_at"}))

	result, err := repo.Get(context.Background(), 1, testAlice)
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingRepo_UpdateQuantity(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewListingRepo(mock)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE listings SET quantity").
		WithArgs(uint64(60), uint64(1), testAlice).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.UpdateQuantity(context.Background(), tx, 1, testAlice, 60)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingRepo_Delete(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewListingRepo(mock)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM listings").
		WithArgs(uint64(1), testAlice).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Delete(context.Background(), tx, 1, testAlice)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
