package integration

import (
	"context"
	"fmt"
	"sync"

	"solana-deposit-engine/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// --- In-Memory Wallet Repo ---

type inMemoryWalletRepo struct {
	mu        sync.RWMutex
	wallets   map[domain.UserID]*domain.WalletRecord
	nextIndex uint32
}

func newInMemoryWalletRepo() *inMemoryWalletRepo {
	return &inMemoryWalletRepo{wallets: make(map[domain.UserID]*domain.WalletRecord)}
}

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint}
}

func (r *inMemoryWalletRepo) Create(ctx context.Context, tx pgx.Tx, rec *domain.WalletRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.wallets[rec.UserID]; ok {
		return uniqueViolation("wallets_pkey")
	}
	for _, existing := range r.wallets {
		if existing.DerivationIndex == rec.DerivationIndex {
			return uniqueViolation("wallets_derivation_index_key")
		}
		if existing.Address == rec.Address {
			return uniqueViolation("wallets_address_key")
		}
	}
	cp := *rec
	r.wallets[rec.UserID] = &cp
	return nil
}

func (r *inMemoryWalletRepo) GetByUserID(ctx context.Context, userID domain.UserID) (*domain.WalletRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.wallets[userID]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (r *inMemoryWalletRepo) List(ctx context.Context) ([]domain.WalletRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.WalletRecord, 0, len(r.wallets))
	for idx := uint32(0); idx < r.nextIndex; idx++ {
		for _, rec := range r.wallets {
			if rec.DerivationIndex == idx {
				out = append(out, *rec)
			}
		}
	}
	return out, nil
}

func (r *inMemoryWalletRepo) NextDerivationIndex(ctx context.Context, tx pgx.Tx) (uint32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.nextIndex
	r.nextIndex++
	return idx, nil
}

// --- In-Memory Ledger Repo ---

type inMemoryLedgerRepo struct {
	mu       sync.Mutex
	entries  map[domain.UserID]*domain.LedgerEntry
	rowLocks map[domain.UserID]*sync.Mutex
}

func newInMemoryLedgerRepo() *inMemoryLedgerRepo {
	return &inMemoryLedgerRepo{
		entries:  make(map[domain.UserID]*domain.LedgerEntry),
		rowLocks: make(map[domain.UserID]*sync.Mutex),
	}
}

func (r *inMemoryLedgerRepo) Create(ctx context.Context, tx pgx.Tx, entry *domain.LedgerEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[entry.UserID]; ok {
		return uniqueViolation("ledger_entries_pkey")
	}
	cp := *entry
	r.entries[entry.UserID] = &cp
	return nil
}

func (r *inMemoryLedgerRepo) Get(ctx context.Context, userID domain.UserID) (*domain.LedgerEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[userID]
	if !ok {
		return nil, nil
	}
	cp := *entry
	return &cp, nil
}

// GetForUpdate takes the user's row lock and holds it until the
// transaction ends, mirroring SELECT ... FOR UPDATE. Concurrent
// read-modify-write cycles for the same user serialize here.
func (r *inMemoryLedgerRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, userID domain.UserID) (*domain.LedgerEntry, error) {
	r.mu.Lock()
	lock, ok := r.rowLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		r.rowLocks[userID] = lock
	}
	r.mu.Unlock()

	lock.Lock()
	mt, ok := tx.(*memTx)
	if !ok {
		lock.Unlock()
		return nil, fmt.Errorf("GetForUpdate needs a memTx, got %T", tx)
	}
	mt.hold(lock.Unlock)

	return r.Get(ctx, userID)
}

func (r *inMemoryLedgerRepo) UpdateBalances(ctx context.Context, tx pgx.Tx, userID domain.UserID, cumulative, lastObserved int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[userID]
	if !ok {
		return fmt.Errorf("ledger entry not found for user %d", userID)
	}
	entry.CumulativeDeposits = cumulative
	entry.LastObservedBalance = lastObserved
	return nil
}

func (r *inMemoryLedgerRepo) ClaimWalletNotified(ctx context.Context, userID domain.UserID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[userID]
	if !ok || entry.WalletNotified {
		return false, nil
	}
	entry.WalletNotified = true
	return true, nil
}

func (r *inMemoryLedgerRepo) SetNotifiedCumulative(ctx context.Context, userID domain.UserID, cumulative int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[userID]
	if !ok {
		return fmt.Errorf("ledger entry not found for user %d", userID)
	}
	if entry.LastNotifiedCumulative < cumulative {
		entry.LastNotifiedCumulative = cumulative
	}
	return nil
}

func (r *inMemoryLedgerRepo) List(ctx context.Context) ([]domain.LedgerEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.LedgerEntry, 0, len(r.entries))
	for _, entry := range r.entries {
		out = append(out, *entry)
	}
	return out, nil
}

// --- In-Memory Transactor ---

type inMemoryTransactor struct{}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return &memTx{}, nil
}

// memTx is a pgx.Tx for in-memory testing. Repos register row-lock
// releases via hold; Commit or Rollback runs them once, so locks taken
// inside the transaction stay held until it ends.
type memTx struct {
	mu       sync.Mutex
	releases []func()
	done     bool
}

func (t *memTx) hold(release func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.releases = append(t.releases, release)
}

func (t *memTx) end() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return
	}
	t.done = true
	for _, release := range t.releases {
		release()
	}
}

func (t *memTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *memTx) Commit(ctx context.Context) error          { t.end(); return nil }
func (t *memTx) Rollback(ctx context.Context) error        { t.end(); return nil }
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

// --- Fake chain ---

type fakeChain struct {
	mu       sync.RWMutex
	balances map[string]uint64
}

func newFakeChain() *fakeChain {
	return &fakeChain{balances: make(map[string]uint64)}
}

func (c *fakeChain) setBalance(address string, lamports uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.balances[address] = lamports
}

func (c *fakeChain) GetBalance(ctx context.Context, address string) (uint64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.balances[address], nil
}

// --- Recording notifier ---

type recordedMessage struct {
	UserID domain.UserID // 0 = admin channel
	Text   string
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []recordedMessage
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{}
}

func (n *recordingNotifier) NotifyAdmin(ctx context.Context, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, recordedMessage{Text: text})
	return nil
}

func (n *recordingNotifier) NotifyUser(ctx context.Context, userID domain.UserID, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, recordedMessage{UserID: userID, Text: text})
	return nil
}

func (n *recordingNotifier) adminCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	count := 0
	for _, m := range n.messages {
		if m.UserID == 0 {
			count++
		}
	}
	return count
}

func (n *recordingNotifier) userMessages(userID domain.UserID) []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []string
	for _, m := range n.messages {
		if m.UserID == userID {
			out = append(out, m.Text)
		}
	}
	return out
}
