package postgres

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBalanceRepo_Get(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewBalanceRepo(mock)

	mock.ExpectQuery("SELECT amount FROM balances").
		WithArgs(uint64(1), testAlice).
		WillReturnRows(pgxmock.NewRows([]string{"amount"}).AddRow(uint64(40)))

	amount, err := repo.Get(context.Background(), 1, testAlice)
	require.NoError(t, err)
	assert.Equal(t, uint64(40), amount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBalanceRepo_Get_AbsentReadsZero(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewBalanceRepo(mock)

	mock.ExpectQuery("SELECT amount FROM balances").
		WithArgs(uint64(1), testAlice).
		WillReturnRows(pgxmock.NewRows([]string{"amount"}))

	amount, err := repo.Get(context.Background(), 1, testAlice)
	require.NoError(t, err)
	assert.Zero(t, amount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBalanceRepo_GetForUpdate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewBalanceRepo(mock)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT amount FROM balances .+ FOR UPDATE").
		WithArgs(uint64(1), testAlice).
		WillReturnRows(pgxmock.NewRows([]string{"amount"}).AddRow(uint64(960)))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	amount, err := repo.GetForUpdate(context.Background(), tx, 1, testAlice)
	require.NoError(t, err)
	assert.Equal(t, uint64(960), amount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBalanceRepo_Set(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewBalanceRepo(mock)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO balances").
		WithArgs(uint64(1), testAlice, uint64(540)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Set(context.Background(), tx, 1, testAlice, 540)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
