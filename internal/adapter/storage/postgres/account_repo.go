package postgres

import (
	"context"
	"errors"
	"fmt"

	"tokenized-asset-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// AccountRepo implements ports.AccountRepository.
type AccountRepo struct {
	pool Pool
}

// NewAccountRepo creates a new AccountRepo.
func NewAccountRepo(pool Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

const accountColumns = `address, name, password_hash, access_key, secret_key_enc, created_at`

func scanAccount(row pgx.Row) (*domain.Account, error) {
	a := &domain.Account{}
	err := row.Scan(
		&a.Address, &a.Name, &a.PasswordHash,
		&a.AccessKey, &a.SecretKeyEnc, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}

// Create inserts a new account.
func (r *AccountRepo) Create(ctx context.Context, account *domain.Account) error {
	query := `INSERT INTO accounts (address, name, password_hash, access_key, secret_key_enc, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query,
		account.Address, account.Name, account.PasswordHash,
		account.AccessKey, account.SecretKeyEnc, account.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// GetByAddress fetches an account by its principal address.
func (r *AccountRepo) GetByAddress(ctx context.Context, address domain.Principal) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE address = $1`

	account, err := scanAccount(r.pool.QueryRow(ctx, query, address))
	if err != nil {
		return nil, fmt.Errorf("get account by address: %w", err)
	}
	return account, nil
}

// GetByAccessKey fetches an account by its HMAC access key.
func (r *AccountRepo) GetByAccessKey(ctx context.Context, accessKey string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE access_key = $1`

	account, err := scanAccount(r.pool.QueryRow(ctx, query, accessKey))
	if err != nil {
		return nil, fmt.Errorf("get account by access key: %w", err)
	}
	return account, nil
}

// GetByName fetches an account by its unique name.
func (r *AccountRepo) GetByName(ctx context.Context, name string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE name = $1`

	account, err := scanAccount(r.pool.QueryRow(ctx, query, name))
	if err != nil {
		return nil, fmt.Errorf("get account by name: %w", err)
	}
	return account, nil
}
