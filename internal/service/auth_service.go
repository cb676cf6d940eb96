package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"tokenized-asset-ledger/internal/core/domain"
	"tokenized-asset-ledger/internal/core/ports"
	"tokenized-asset-ledger/pkg/apperror"
)

// AuthServiceImpl implements ports.AuthService: principal onboarding and
// session issuance for the host adapter. The engine itself never sees
// accounts, only the principal addresses they resolve to.
type AuthServiceImpl struct {
	accountRepo ports.AccountRepository
	hashSvc     ports.HashService
	encSvc      ports.EncryptionService
	tokenSvc    ports.TokenService
}

// NewAuthService creates a new AuthServiceImpl.
func NewAuthService(
	accountRepo ports.AccountRepository,
	hashSvc ports.HashService,
	encSvc ports.EncryptionService,
	tokenSvc ports.TokenService,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		accountRepo: accountRepo,
		hashSvc:     hashSvc,
		encSvc:      encSvc,
		tokenSvc:    tokenSvc,
	}
}

// Register onboards a principal: generates a ledger address plus an HMAC key
// pair. The secret key is returned in plaintext exactly once.
func (s *AuthServiceImpl) Register(ctx context.Context, req ports.RegisterAccountRequest) (*ports.RegisterAccountResponse, error) {
	existing, err := s.accountRepo.GetByName(ctx, req.Name)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check name: %w", err))
	}
	if existing != nil {
		return nil, apperror.Validation("account name already exists")
	}

	address, err := domain.NewPrincipalAddress()
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generate address: %w", err))
	}
	accessKey, err := generateRandomHex(32)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generate access key: %w", err))
	}
	secretKey, err := generateRandomHex(32)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generate secret key: %w", err))
	}

	passwordHash, err := s.hashSvc.Hash(req.Password)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("hash password: %w", err))
	}
	secretKeyEnc, err := s.encSvc.Encrypt(secretKey)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("encrypt secret key: %w", err))
	}

	account := &domain.Account{
		Address:      address,
		Name:         req.Name,
		PasswordHash: passwordHash,
		AccessKey:    accessKey,
		SecretKeyEnc: secretKeyEnc,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create account: %w", err))
	}

	return &ports.RegisterAccountResponse{
		Address:   address,
		AccessKey: accessKey,
		SecretKey: secretKey,
	}, nil
}

// Login verifies the passphrase and issues a session token for read-only
// query routes.
func (s *AuthServiceImpl) Login(ctx context.Context, name, password string) (string, time.Time, error) {
	account, err := s.accountRepo.GetByName(ctx, name)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("get account: %w", err))
	}
	if account == nil {
		return "", time.Time{}, apperror.ErrInvalidCredentials()
	}

	ok, err := s.hashSvc.Verify(password, account.PasswordHash)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("verify password: %w", err))
	}
	if !ok {
		return "", time.Time{}, apperror.ErrInvalidCredentials()
	}

	token, expiry, err := s.tokenSvc.Generate(account.Address, account.AccessKey)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("generate token: %w", err))
	}
	return token, expiry, nil
}

// generateRandomHex returns n random bytes hex-encoded (2n characters).
func generateRandomHex(n int) (string, error) {
	raw := make([]byte, n)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}
