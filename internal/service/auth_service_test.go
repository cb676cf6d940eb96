package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"tokenized-asset-ledger/internal/core/domain"
	"tokenized-asset-ledger/internal/core/ports"
	"tokenized-asset-ledger/internal/core/ports/mocks"
	"tokenized-asset-ledger/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type authTestDeps struct {
	svc         *AuthServiceImpl
	accountRepo *mocks.MockAccountRepository
	hashSvc     *mocks.MockHashService
	encSvc      *mocks.MockEncryptionService
	tokenSvc    *mocks.MockTokenService
	ctrl        *gomock.Controller
}

func setupAuthService(t *testing.T) *authTestDeps {
	ctrl := gomock.NewController(t)
	d := &authTestDeps{
		accountRepo: mocks.NewMockAccountRepository(ctrl),
		hashSvc:     mocks.NewMockHashService(ctrl),
		encSvc:      mocks.NewMockEncryptionService(ctrl),
		tokenSvc:    mocks.NewMockTokenService(ctrl),
		ctrl:        ctrl,
	}
	d.svc = NewAuthService(d.accountRepo, d.hashSvc, d.encSvc, d.tokenSvc)
	return d
}

func TestAuthService_Register_Success(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()

	d.accountRepo.EXPECT().GetByName(ctx, "alice").Return(nil, nil)
	d.hashSvc.EXPECT().Hash("s3cret-pass").Return("$argon2id$hash", nil)
	d.encSvc.EXPECT().Encrypt(gomock.Any()).Return("enc_secret", nil)
	d.accountRepo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, a *domain.Account) error {
			assert.Equal(t, "alice", a.Name)
			assert.Equal(t, "$argon2id$hash", a.PasswordHash)
			assert.Equal(t, "enc_secret", a.SecretKeyEnc)
			assert.True(t, strings.HasPrefix(string(a.Address), domain.AddressPrefix))
			return nil
		})

	resp, err := d.svc.Register(ctx, ports.RegisterAccountRequest{Name: "alice", Password: "s3cret-pass"})
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.True(t, strings.HasPrefix(string(resp.Address), domain.AddressPrefix))
	assert.Len(t, resp.AccessKey, 64)
	assert.Len(t, resp.SecretKey, 64)
}

func TestAuthService_Register_DuplicateName(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.accountRepo.EXPECT().GetByName(ctx, "alice").Return(&domain.Account{Name: "alice"}, nil)

	_, err := d.svc.Register(ctx, ports.RegisterAccountRequest{Name: "alice", Password: "x"})
	assertCode(t, err, apperror.CodeInvalidRequest)
}

func TestAuthService_Login_Success(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	expiry := time.Now().Add(time.Hour)
	account := &domain.Account{
		Address:      testAlice,
		Name:         "alice",
		PasswordHash: "$argon2id$hash",
		AccessKey:    "ak_alice",
	}

	d.accountRepo.EXPECT().GetByName(ctx, "alice").Return(account, nil)
	d.hashSvc.EXPECT().Verify("s3cret-pass", "$argon2id$hash").Return(true, nil)
	d.tokenSvc.EXPECT().Generate(testAlice, "ak_alice").Return("jwt_token", expiry, nil)

	token, exp, err := d.svc.Login(ctx, "alice", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, "jwt_token", token)
	assert.Equal(t, expiry, exp)
}

func TestAuthService_Login_UnknownAccount(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.accountRepo.EXPECT().GetByName(ctx, "ghost").Return(nil, nil)

	_, _, err := d.svc.Login(ctx, "ghost", "x")
	assertCode(t, err, apperror.CodeUnauthorized)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	account := &domain.Account{Address: testAlice, Name: "alice", PasswordHash: "$argon2id$hash"}

	d.accountRepo.EXPECT().GetByName(ctx, "alice").Return(account, nil)
	d.hashSvc.EXPECT().Verify("wrong", "$argon2id$hash").Return(false, nil)

	_, _, err := d.svc.Login(ctx, "alice", "wrong")
	assertCode(t, err, apperror.CodeUnauthorized)
}
