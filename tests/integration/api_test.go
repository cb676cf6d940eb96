package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpHandler "tokenized-asset-ledger/internal/adapter/http/handler"
	redisStorage "tokenized-asset-ledger/internal/adapter/storage/redis"
	"tokenized-asset-ledger/internal/core/domain"
	"tokenized-asset-ledger/internal/core/ports"
	"tokenized-asset-ledger/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAESKey   = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"
	testPassword = "StrongPass123!"
	contractAddr = domain.Principal("ldg1contractcontractcontract")
)

// testApp wires the full stack: real HTTP layer, middleware, services, and
// Redis stores over miniredis, with the in-memory ledger store standing in
// for postgres.
type testApp struct {
	server  *httptest.Server
	redis   *miniredis.Miniredis
	store   *ledgerStore
	heights *stubHeights
	authSvc ports.AuthService
	sigSvc  ports.SignatureService
	token   ports.TokenService
	owner   account
}

// account holds the onboarding credentials a caller signs with.
type account struct {
	address   domain.Principal
	accessKey string
	secretKey string
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	assetCache := redisStorage.NewAssetCache(rdb)
	nonceStore := redisStorage.NewNonceStore(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	encSvc, err := service.NewAESEncryptionService(testAESKey)
	require.NoError(t, err)
	sigSvc := service.NewHMACSignatureService()
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService("test-jwt-secret-key-32bytes!!", 24*time.Hour, "test-issuer")

	store := newLedgerStore()
	assetRepo := &memAssetRepo{store}
	balanceRepo := &memBalanceRepo{store}
	listingRepo := &memListingRepo{store}
	complianceRepo := &memComplianceRepo{store}
	stateRepo := &memStateRepo{store}
	nativeRepo := &memNativeRepo{store}
	accountRepo := &memAccountRepo{store}
	auditRepo := &memAuditRepo{store}
	transactor := newMemTransactor(store)

	log := zerolog.Nop()
	authSvc := service.NewAuthService(accountRepo, hashSvc, encSvc, tokenSvc)

	app := &testApp{
		redis:   mr,
		store:   store,
		heights: &stubHeights{h: 100},
		authSvc: authSvc,
		sigSvc:  sigSvc,
		token:   tokenSvc,
	}

	// The deploying identity is just another onboarded principal.
	app.owner = app.newAccount(t, "ledger-owner")

	params := ports.EngineParams{Contract: contractAddr, Owner: app.owner.address}
	require.NoError(t, stateRepo.Init(t.Context(), app.owner.address))

	registrySvc := service.NewRegistryService(params, assetRepo, balanceRepo, stateRepo, assetCache, transactor, log)
	ledgerSvc := service.NewLedgerService(params, assetRepo, balanceRepo, transactor, log)
	nativeSvc := service.NewNativeService(nativeRepo, transactor, log)
	marketSvc := service.NewMarketService(assetRepo, balanceRepo, listingRepo, ledgerSvc, nativeSvc, transactor, log)
	complianceSvc := service.NewComplianceService(params, assetRepo, complianceRepo, stateRepo, transactor, log)
	auditSvc := service.NewAuditService(auditRepo, log)

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		RegistrySvc:    registrySvc,
		LedgerSvc:      ledgerSvc,
		MarketSvc:      marketSvc,
		ComplianceSvc:  complianceSvc,
		NativeSvc:      nativeSvc,
		Heights:        app.heights,
		AccountRepo:    accountRepo,
		EncSvc:         encSvc,
		SigSvc:         sigSvc,
		NonceStore:     nonceStore,
		TokenSvc:       tokenSvc,
		RateLimitStore: rateLimitStore,
		AuditSvc:       auditSvc,
		Logger:         log,
	})

	app.server = httptest.NewServer(router)
	t.Cleanup(app.server.Close)
	return app
}

// newAccount onboards a principal directly through the auth service, keeping
// the HTTP register rate limit free for the tests that target it.
func (app *testApp) newAccount(t *testing.T, name string) account {
	t.Helper()
	resp, err := app.authSvc.Register(t.Context(), ports.RegisterAccountRequest{
		Name:     name,
		Password: testPassword,
	})
	require.NoError(t, err)
	return account{address: resp.Address, accessKey: resp.AccessKey, secretKey: resp.SecretKey}
}

// signedCall performs an HMAC-signed mutating call and returns the response.
func (app *testApp) signedCall(t *testing.T, acct account, method, path string, payload any) *http.Response {
	t.Helper()

	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		require.NoError(t, err)
	}

	timestamp := time.Now().Unix()
	nonce := uuid.NewString()
	canonical := app.sigSvc.BuildCanonicalString(method, path, timestamp, nonce, string(body))
	signature := app.sigSvc.Sign(acct.secretKey, canonical)

	req, err := http.NewRequest(method, app.server.URL+path, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Access-Key", acct.accessKey)
	req.Header.Set("X-Signature", signature)
	req.Header.Set("X-Timestamp", fmt.Sprintf("%d", timestamp))
	req.Header.Set("X-Nonce", nonce)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

// query performs a JWT-authenticated read.
func (app *testApp) query(t *testing.T, acct account, path string) *http.Response {
	t.Helper()
	token, _, err := app.token.Generate(acct.address, acct.accessKey)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, app.server.URL+path, nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeData(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body), "body: %s", raw)
	data, ok := body["data"].(map[string]any)
	require.True(t, ok, "no data object in %s", raw)
	return data
}

func errorCodeOf(t *testing.T, resp *http.Response) uint32 {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	code, ok := body["error_code"].(float64)
	require.True(t, ok, "no error_code in response")
	return uint32(code)
}

// --- Auth over HTTP ---

func TestIntegration_RegisterAndLogin(t *testing.T) {
	app := newTestApp(t)

	regBody, _ := json.Marshal(map[string]string{"name": "alice", "password": testPassword})
	resp, err := http.Post(app.server.URL+"/api/v1/auth/register", "application/json", bytes.NewReader(regBody))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	data := decodeData(t, resp)
	assert.NotEmpty(t, data["access_key"])
	assert.NotEmpty(t, data["secret_key"])
	assert.Contains(t, data["address"], "ldg1")

	loginBody, _ := json.Marshal(map[string]string{"name": "alice", "password": testPassword})
	resp2, err := http.Post(app.server.URL+"/api/v1/auth/login", "application/json", bytes.NewReader(loginBody))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp2.StatusCode)
	assert.NotEmpty(t, decodeData(t, resp2)["token"])
}

func TestIntegration_LoginWrongPassword(t *testing.T) {
	app := newTestApp(t)
	app.newAccount(t, "alice")

	loginBody, _ := json.Marshal(map[string]string{"name": "alice", "password": "wrong-password"})
	resp, err := http.Post(app.server.URL+"/api/v1/auth/login", "application/json", bytes.NewReader(loginBody))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestIntegration_DuplicateName(t *testing.T) {
	app := newTestApp(t)
	app.newAccount(t, "alice")

	regBody, _ := json.Marshal(map[string]string{"name": "alice", "password": testPassword})
	resp, err := http.Post(app.server.URL+"/api/v1/auth/register", "application/json", bytes.NewReader(regBody))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestIntegration_UnsignedCallRejected(t *testing.T) {
	app := newTestApp(t)

	body, _ := json.Marshal(map[string]any{"asset_id": 1, "to": "ldg1bob", "amount": 5})
	resp, err := http.Post(app.server.URL+"/api/v1/transfers", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestIntegration_NonceReplayRejected(t *testing.T) {
	app := newTestApp(t)
	acct := app.newAccount(t, "alice")

	payload := map[string]any{"amount": 100}
	body, _ := json.Marshal(payload)
	timestamp := time.Now().Unix()
	nonce := uuid.NewString()
	canonical := app.sigSvc.BuildCanonicalString(http.MethodPost, "/api/v1/native/deposit", timestamp, nonce, string(body))
	signature := app.sigSvc.Sign(acct.secretKey, canonical)

	send := func() *http.Response {
		req, _ := http.NewRequest(http.MethodPost, app.server.URL+"/api/v1/native/deposit", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Access-Key", acct.accessKey)
		req.Header.Set("X-Signature", signature)
		req.Header.Set("X-Timestamp", fmt.Sprintf("%d", timestamp))
		req.Header.Set("X-Nonce", nonce)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		return resp
	}

	first := send()
	first.Body.Close()
	assert.Equal(t, http.StatusOK, first.StatusCode)

	second := send()
	second.Body.Close()
	assert.Equal(t, http.StatusForbidden, second.StatusCode)
}

// --- Engine flows over HTTP ---

func TestIntegration_AssetLifecycle(t *testing.T) {
	app := newTestApp(t)

	// Owner registers the first asset.
	resp := app.signedCall(t, app.owner, http.MethodPost, "/api/v1/assets", map[string]any{
		"kind":           "carbon-credit",
		"metadata_uri":   "ipfs://QmMeta",
		"initial_supply": 1000,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, float64(1), decodeData(t, resp)["asset_id"])

	// Sequential ids.
	resp = app.signedCall(t, app.owner, http.MethodPost, "/api/v1/assets", map[string]any{
		"kind":           "bond",
		"metadata_uri":   "ipfs://QmBond",
		"initial_supply": 50,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, float64(2), decodeData(t, resp)["asset_id"])

	// A non-owner principal cannot register assets.
	alice := app.newAccount(t, "alice")
	resp = app.signedCall(t, alice, http.MethodPost, "/api/v1/assets", map[string]any{
		"kind":           "sneaky",
		"metadata_uri":   "ipfs://QmNo",
		"initial_supply": 1,
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, uint32(100), errorCodeOf(t, resp))

	// Owner mints more supply to alice.
	resp = app.signedCall(t, app.owner, http.MethodPost, "/api/v1/assets/1/mint", map[string]any{
		"amount":    500,
		"recipient": string(alice.address),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1500), decodeData(t, resp)["total_supply"])

	// Non-owner mint rejected.
	resp = app.signedCall(t, alice, http.MethodPost, "/api/v1/assets/1/mint", map[string]any{
		"amount":    1,
		"recipient": string(alice.address),
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, uint32(100), errorCodeOf(t, resp))

	// Queries see the minted balance.
	resp = app.query(t, alice, fmt.Sprintf("/api/v1/assets/1/balances/%s", alice.address))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(500), decodeData(t, resp)["balance"])

	resp = app.query(t, alice, "/api/v1/assets/1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := decodeData(t, resp)
	assert.Equal(t, "carbon-credit", data["kind"])
	assert.Equal(t, false, data["frozen"])
}

func TestIntegration_TransferFlow(t *testing.T) {
	app := newTestApp(t)
	alice := app.newAccount(t, "alice")

	resp := app.signedCall(t, app.owner, http.MethodPost, "/api/v1/assets", map[string]any{
		"kind": "token", "metadata_uri": "ipfs://t", "initial_supply": 1000,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = app.signedCall(t, app.owner, http.MethodPost, "/api/v1/transfers", map[string]any{
		"asset_id": 1, "to": string(alice.address), "amount": 40,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(960), decodeData(t, resp)["balance"])

	// Overdraw rejected with the stable insufficient-balance code.
	resp = app.signedCall(t, alice, http.MethodPost, "/api/v1/transfers", map[string]any{
		"asset_id": 1, "to": string(app.owner.address), "amount": 9999,
	})
	assert.Equal(t, http.StatusPaymentRequired, resp.StatusCode)
	assert.Equal(t, uint32(103), errorCodeOf(t, resp))

	// Self transfer rejected.
	resp = app.signedCall(t, alice, http.MethodPost, "/api/v1/transfers", map[string]any{
		"asset_id": 1, "to": string(alice.address), "amount": 1,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, uint32(111), errorCodeOf(t, resp))
}

func TestIntegration_MarketplaceSettlement(t *testing.T) {
	app := newTestApp(t)
	buyer := app.newAccount(t, "buyer")

	// Owner registers 1000 units and lists 100 at price 10, expiring at 600.
	resp := app.signedCall(t, app.owner, http.MethodPost, "/api/v1/assets", map[string]any{
		"kind": "carbon-credit", "metadata_uri": "ipfs://m", "initial_supply": 1000,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = app.signedCall(t, app.owner, http.MethodPost, "/api/v1/market/listings", map[string]any{
		"asset_id": 1, "price": 10, "quantity": 100, "expiry": 600,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// Buyer funds a native balance and buys 40, paying 400.
	resp = app.signedCall(t, buyer, http.MethodPost, "/api/v1/native/deposit", map[string]any{"amount": 1000})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = app.signedCall(t, buyer, http.MethodPost, "/api/v1/market/buy", map[string]any{
		"asset_id": 1, "seller": string(app.owner.address), "quantity": 40,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Token legs settled.
	resp = app.query(t, buyer, fmt.Sprintf("/api/v1/assets/1/balances/%s", buyer.address))
	assert.Equal(t, float64(40), decodeData(t, resp)["balance"])
	resp = app.query(t, buyer, fmt.Sprintf("/api/v1/assets/1/balances/%s", app.owner.address))
	assert.Equal(t, float64(960), decodeData(t, resp)["balance"])

	// Payment leg settled.
	resp = app.query(t, buyer, "/api/v1/native/balance")
	assert.Equal(t, float64(600), decodeData(t, resp)["balance"])
	resp = app.query(t, app.owner, "/api/v1/native/balance")
	assert.Equal(t, float64(400), decodeData(t, resp)["balance"])

	// Partial fill leaves the remainder listed.
	resp = app.query(t, buyer, fmt.Sprintf("/api/v1/market/listings/1/%s", app.owner.address))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(60), decodeData(t, resp)["quantity"])

	// Full consumption deletes the listing.
	resp = app.signedCall(t, buyer, http.MethodPost, "/api/v1/market/buy", map[string]any{
		"asset_id": 1, "seller": string(app.owner.address), "quantity": 60,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = app.query(t, buyer, fmt.Sprintf("/api/v1/market/listings/1/%s", app.owner.address))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestIntegration_ExpiredListing(t *testing.T) {
	app := newTestApp(t)
	buyer := app.newAccount(t, "buyer")

	resp := app.signedCall(t, app.owner, http.MethodPost, "/api/v1/assets", map[string]any{
		"kind": "token", "metadata_uri": "ipfs://t", "initial_supply": 100,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = app.signedCall(t, app.owner, http.MethodPost, "/api/v1/market/listings", map[string]any{
		"asset_id": 1, "price": 5, "quantity": 10, "expiry": 150,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = app.signedCall(t, buyer, http.MethodPost, "/api/v1/native/deposit", map[string]any{"amount": 100})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Still live at exactly the expiry height.
	app.heights.set(150)
	resp = app.signedCall(t, buyer, http.MethodPost, "/api/v1/market/buy", map[string]any{
		"asset_id": 1, "seller": string(app.owner.address), "quantity": 1,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// One block later it is expired.
	app.heights.set(151)
	resp = app.signedCall(t, buyer, http.MethodPost, "/api/v1/market/buy", map[string]any{
		"asset_id": 1, "seller": string(app.owner.address), "quantity": 1,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, uint32(109), errorCodeOf(t, resp))
}

func TestIntegration_SellerShortfallRollsBackPayment(t *testing.T) {
	app := newTestApp(t)
	buyer := app.newAccount(t, "buyer")
	sink := app.newAccount(t, "sink")

	resp := app.signedCall(t, app.owner, http.MethodPost, "/api/v1/assets", map[string]any{
		"kind": "token", "metadata_uri": "ipfs://t", "initial_supply": 1000,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = app.signedCall(t, app.owner, http.MethodPost, "/api/v1/market/listings", map[string]any{
		"asset_id": 1, "price": 1, "quantity": 100, "expiry": 600,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// The seller drains almost everything after listing. The listing stays
	// at quantity 100 even though only 50 remain.
	resp = app.signedCall(t, app.owner, http.MethodPost, "/api/v1/transfers", map[string]any{
		"asset_id": 1, "to": string(sink.address), "amount": 950,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = app.signedCall(t, buyer, http.MethodPost, "/api/v1/native/deposit", map[string]any{"amount": 100})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// The buy fails on the token leg after the payment leg already ran, so
	// the whole settlement must roll back.
	resp = app.signedCall(t, buyer, http.MethodPost, "/api/v1/market/buy", map[string]any{
		"asset_id": 1, "seller": string(app.owner.address), "quantity": 60,
	})
	assert.Equal(t, http.StatusPaymentRequired, resp.StatusCode)
	assert.Equal(t, uint32(103), errorCodeOf(t, resp))

	// Buyer keeps the full native balance; no tokens moved.
	resp = app.query(t, buyer, "/api/v1/native/balance")
	assert.Equal(t, float64(100), decodeData(t, resp)["balance"])
	resp = app.query(t, buyer, fmt.Sprintf("/api/v1/assets/1/balances/%s", buyer.address))
	assert.Equal(t, float64(0), decodeData(t, resp)["balance"])
}

func TestIntegration_ComplianceRegistry(t *testing.T) {
	app := newTestApp(t)
	alice := app.newAccount(t, "alice")
	authority := app.newAccount(t, "authority")

	resp := app.signedCall(t, app.owner, http.MethodPost, "/api/v1/assets", map[string]any{
		"kind": "token", "metadata_uri": "ipfs://t", "initial_supply": 100,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// The deploying identity starts as authority and approves alice.
	app.heights.set(320)
	resp = app.signedCall(t, app.owner, http.MethodPost, "/api/v1/compliance/approvals", map[string]any{
		"asset_id": 1, "user": string(alice.address),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = app.query(t, alice, fmt.Sprintf("/api/v1/compliance/approvals/1/%s", alice.address))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := decodeData(t, resp)
	assert.Equal(t, true, data["approved"])
	assert.Equal(t, float64(320), data["approved_at"])

	// Unknown users read as not approved.
	resp = app.query(t, alice, "/api/v1/compliance/approvals/1/ldg1stranger")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, decodeData(t, resp)["approved"])

	// Rotating the authority to the contract address is rejected.
	resp = app.signedCall(t, app.owner, http.MethodPut, "/api/v1/compliance/authority", map[string]any{
		"authority": string(contractAddr),
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, uint32(114), errorCodeOf(t, resp))

	// Rotating to a fresh principal succeeds, after which the old authority
	// can no longer approve.
	resp = app.signedCall(t, app.owner, http.MethodPut, "/api/v1/compliance/authority", map[string]any{
		"authority": string(authority.address),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = app.signedCall(t, app.owner, http.MethodPost, "/api/v1/compliance/approvals", map[string]any{
		"asset_id": 1, "user": "ldg1someoneelse",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, uint32(100), errorCodeOf(t, resp))
}
