package integration

import (
	"context"
	"fmt"
	"sync"

	"tokenized-asset-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ledgerStore is a single in-memory backing store shared by all the repo
// implementations below. Transactions snapshot the store at Begin and
// restore it on Rollback, which mirrors the all-or-nothing behavior the
// postgres transactor gives the services.
type ledgerStore struct {
	mu   sync.Mutex // guards all maps
	txMu sync.Mutex // serializes transactions, like row locks would

	assets     map[uint64]domain.Asset
	balances   map[holderKey]uint64
	listings   map[holderKey]domain.Listing
	compliance map[holderKey]domain.ComplianceRecord
	state      domain.LedgerState
	hasState   bool
	native     map[domain.Principal]uint64
	accounts   map[domain.Principal]domain.Account
	audits     []domain.AuditEntry
}

type holderKey struct {
	assetID   uint64
	principal domain.Principal
}

func newLedgerStore() *ledgerStore {
	return &ledgerStore{
		assets:     make(map[uint64]domain.Asset),
		balances:   make(map[holderKey]uint64),
		listings:   make(map[holderKey]domain.Listing),
		compliance: make(map[holderKey]domain.ComplianceRecord),
		native:     make(map[domain.Principal]uint64),
		accounts:   make(map[domain.Principal]domain.Account),
	}
}

type storeSnapshot struct {
	assets     map[uint64]domain.Asset
	balances   map[holderKey]uint64
	listings   map[holderKey]domain.Listing
	compliance map[holderKey]domain.ComplianceRecord
	state      domain.LedgerState
	hasState   bool
	native     map[domain.Principal]uint64
}

func (s *ledgerStore) snapshot() storeSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := storeSnapshot{
		assets:     make(map[uint64]domain.Asset, len(s.assets)),
		balances:   make(map[holderKey]uint64, len(s.balances)),
		listings:   make(map[holderKey]domain.Listing, len(s.listings)),
		compliance: make(map[holderKey]domain.ComplianceRecord, len(s.compliance)),
		state:      s.state,
		hasState:   s.hasState,
		native:     make(map[domain.Principal]uint64, len(s.native)),
	}
	for k, v := range s.assets {
		snap.assets[k] = v
	}
	for k, v := range s.balances {
		snap.balances[k] = v
	}
	for k, v := range s.listings {
		snap.listings[k] = v
	}
	for k, v := range s.compliance {
		snap.compliance[k] = v
	}
	for k, v := range s.native {
		snap.native[k] = v
	}
	return snap
}

func (s *ledgerStore) restore(snap storeSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assets = snap.assets
	s.balances = snap.balances
	s.listings = snap.listings
	s.compliance = snap.compliance
	s.state = snap.state
	s.hasState = snap.hasState
	s.native = snap.native
}

// --- Transactor ---

type memTransactor struct {
	store *ledgerStore
}

func newMemTransactor(store *ledgerStore) *memTransactor {
	return &memTransactor{store: store}
}

func (t *memTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	t.store.txMu.Lock()
	return &memTx{store: t.store, snap: t.store.snapshot()}, nil
}

// memTx implements pgx.Tx over the in-memory store. Commit keeps the
// current state; Rollback restores the Begin-time snapshot. Rollback after
// Commit is a no-op, matching the deferred-rollback idiom in the services.
type memTx struct {
	store *ledgerStore
	snap  storeSnapshot
	done  bool
}

func (t *memTx) Commit(ctx context.Context) error {
	if !t.done {
		t.done = true
		t.store.txMu.Unlock()
	}
	return nil
}

func (t *memTx) Rollback(ctx context.Context) error {
	if !t.done {
		t.store.restore(t.snap)
		t.done = true
		t.store.txMu.Unlock()
	}
	return nil
}

func (t *memTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *memTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *memTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *memTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *memTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *memTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *memTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *memTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *memTx) Conn() *pgx.Conn { return nil }

// --- Asset repo ---

type memAssetRepo struct{ store *ledgerStore }

func (r *memAssetRepo) Create(ctx context.Context, tx pgx.Tx, asset *domain.Asset) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.assets[asset.ID]; ok {
		return fmt.Errorf("asset %d already exists", asset.ID)
	}
	r.store.assets[asset.ID] = *asset
	return nil
}

func (r *memAssetRepo) GetByID(ctx context.Context, id uint64) (*domain.Asset, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	a, ok := r.store.assets[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r *memAssetRepo) GetByIDTx(ctx context.Context, tx pgx.Tx, id uint64) (*domain.Asset, error) {
	return r.GetByID(ctx, id)
}

func (r *memAssetRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*domain.Asset, error) {
	return r.GetByID(ctx, id)
}

func (r *memAssetRepo) UpdateSupply(ctx context.Context, tx pgx.Tx, id uint64, totalSupply uint64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	a, ok := r.store.assets[id]
	if !ok {
		return fmt.Errorf("asset %d not found", id)
	}
	a.TotalSupply = totalSupply
	r.store.assets[id] = a
	return nil
}

// --- Balance repo ---

type memBalanceRepo struct{ store *ledgerStore }

func (r *memBalanceRepo) Get(ctx context.Context, assetID uint64, holder domain.Principal) (uint64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.store.balances[holderKey{assetID, holder}], nil
}

func (r *memBalanceRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, assetID uint64, holder domain.Principal) (uint64, error) {
	return r.Get(ctx, assetID, holder)
}

func (r *memBalanceRepo) Set(ctx context.Context, tx pgx.Tx, assetID uint64, holder domain.Principal, amount uint64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.balances[holderKey{assetID, holder}] = amount
	return nil
}

// --- Listing repo ---

type memListingRepo struct{ store *ledgerStore }

func (r *memListingRepo) Get(ctx context.Context, assetID uint64, seller domain.Principal) (*domain.Listing, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	l, ok := r.store.listings[holderKey{assetID, seller}]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (r *memListingRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, assetID uint64, seller domain.Principal) (*domain.Listing, error) {
	return r.Get(ctx, assetID, seller)
}

func (r *memListingRepo) Put(ctx context.Context, listing *domain.Listing) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.listings[holderKey{listing.AssetID, listing.Seller}] = *listing
	return nil
}

func (r *memListingRepo) UpdateQuantity(ctx context.Context, tx pgx.Tx, assetID uint64, seller domain.Principal, quantity uint64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	key := holderKey{assetID, seller}
	l, ok := r.store.listings[key]
	if !ok {
		return fmt.Errorf("listing not found")
	}
	l.Quantity = quantity
	r.store.listings[key] = l
	return nil
}

func (r *memListingRepo) Delete(ctx context.Context, tx pgx.Tx, assetID uint64, seller domain.Principal) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.listings, holderKey{assetID, seller})
	return nil
}

// --- Compliance repo ---

type memComplianceRepo struct{ store *ledgerStore }

func (r *memComplianceRepo) Get(ctx context.Context, assetID uint64, user domain.Principal) (*domain.ComplianceRecord, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	rec, ok := r.store.compliance[holderKey{assetID, user}]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (r *memComplianceRepo) Put(ctx context.Context, tx pgx.Tx, record *domain.ComplianceRecord) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.compliance[holderKey{record.AssetID, record.User}] = *record
	return nil
}

// --- State repo ---

type memStateRepo struct{ store *ledgerStore }

func (r *memStateRepo) Init(ctx context.Context, authority domain.Principal) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.hasState {
		return nil
	}
	r.store.state = domain.LedgerState{TotalAssets: 0, Authority: authority}
	r.store.hasState = true
	return nil
}

func (r *memStateRepo) Get(ctx context.Context) (*domain.LedgerState, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if !r.store.hasState {
		return nil, nil
	}
	st := r.store.state
	return &st, nil
}

func (r *memStateRepo) GetForUpdate(ctx context.Context, tx pgx.Tx) (*domain.LedgerState, error) {
	return r.Get(ctx)
}

func (r *memStateRepo) SetTotalAssets(ctx context.Context, tx pgx.Tx, total uint64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.state.TotalAssets = total
	return nil
}

func (r *memStateRepo) SetAuthority(ctx context.Context, tx pgx.Tx, authority domain.Principal) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.state.Authority = authority
	return nil
}

// --- Native balance repo ---

type memNativeRepo struct{ store *ledgerStore }

func (r *memNativeRepo) Get(ctx context.Context, holder domain.Principal) (uint64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.store.native[holder], nil
}

func (r *memNativeRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, holder domain.Principal) (uint64, error) {
	return r.Get(ctx, holder)
}

func (r *memNativeRepo) Set(ctx context.Context, tx pgx.Tx, holder domain.Principal, amount uint64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.native[holder] = amount
	return nil
}

// --- Account repo ---

type memAccountRepo struct{ store *ledgerStore }

func (r *memAccountRepo) Create(ctx context.Context, account *domain.Account) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, a := range r.store.accounts {
		if a.Name == account.Name {
			return fmt.Errorf("account name already exists")
		}
	}
	r.store.accounts[account.Address] = *account
	return nil
}

func (r *memAccountRepo) GetByAddress(ctx context.Context, address domain.Principal) (*domain.Account, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	a, ok := r.store.accounts[address]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r *memAccountRepo) GetByAccessKey(ctx context.Context, accessKey string) (*domain.Account, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, a := range r.store.accounts {
		if a.AccessKey == accessKey {
			acc := a
			return &acc, nil
		}
	}
	return nil, nil
}

func (r *memAccountRepo) GetByName(ctx context.Context, name string) (*domain.Account, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, a := range r.store.accounts {
		if a.Name == name {
			acc := a
			return &acc, nil
		}
	}
	return nil, nil
}

// --- Audit repo ---

type memAuditRepo struct{ store *ledgerStore }

func (r *memAuditRepo) Create(ctx context.Context, entry *domain.AuditEntry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.audits = append(r.store.audits, *entry)
	return nil
}

// --- Height source ---

// stubHeights is a settable height source so tests can advance the chain.
type stubHeights struct {
	mu sync.Mutex
	h  uint64
}

func (s *stubHeights) Current() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.h
}

func (s *stubHeights) set(h uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.h = h
}
