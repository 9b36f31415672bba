package ports

import (
	"context"
	"time"

	"solana-deposit-engine/internal/core/domain"

	"github.com/shopspring/decimal"
)

// ChainClient reads on-chain state.
type ChainClient interface {
	// GetBalance returns the current balance of the address in lamports.
	GetBalance(ctx context.Context, address string) (uint64, error)
}

// QuoteSource provides asset prices in USD.
type QuoteSource interface {
	GetPrice(ctx context.Context, asset string) (decimal.Decimal, error)
}

// QuoteCache is the Redis-layer price cache.
type QuoteCache interface {
	Get(ctx context.Context, asset string) (decimal.Decimal, bool, error)
	Set(ctx context.Context, asset string, price decimal.Decimal, ttl time.Duration) error
}

// Notifier delivers user-facing and admin-facing messages.
type Notifier interface {
	NotifyAdmin(ctx context.Context, text string) error
	NotifyUser(ctx context.Context, userID domain.UserID, text string) error
}

// --- Service Ports (Business Logic) ---

// WalletService derives and looks up per-user wallets.
type WalletService interface {
	// Derive returns the user's wallet, creating record, ledger entry
	// and derivation index on first contact. Repeat calls return the
	// same wallet.
	Derive(ctx context.Context, userID domain.UserID) (*domain.Wallet, error)
	Get(ctx context.Context, userID domain.UserID) (*domain.WalletRecord, error)
	List(ctx context.Context) ([]domain.WalletRecord, error)
}

// DepositService folds chain observations into the ledger.
type DepositService interface {
	// ApplyDeposit records one observed balance for the user and
	// returns the outcome. The read-compare-write runs in a single
	// transaction under a row lock.
	ApplyDeposit(ctx context.Context, userID domain.UserID, observed uint64) (*domain.DepositOutcome, error)
}

// PolicyService evaluates business rules against ledger state.
type PolicyService interface {
	CheckBuy(ctx context.Context, userID domain.UserID) (*domain.BuyDecision, error)
	CheckWithdrawal(ctx context.Context, userID domain.UserID, amount string) (*domain.WithdrawalDecision, error)
}

// NotificationService dispatches wallet and deposit events.
type NotificationService interface {
	// AnnounceWallet sends the wallet-created event at most once.
	AnnounceWallet(ctx context.Context, rec domain.WalletRecord) error
	// AnnounceDeposits sends any unannounced deposit delta for the
	// user and advances the watermark on success.
	AnnounceDeposits(ctx context.Context, rec domain.WalletRecord) error
}

// SnapshotService provides read-only ledger views for the admin API.
type SnapshotService interface {
	LedgerSnapshot(ctx context.Context) ([]domain.LedgerEntry, error)
	UserSnapshot(ctx context.Context, userID domain.UserID) (*domain.LedgerEntry, error)
	Wallets(ctx context.Context) ([]domain.WalletRecord, error)
}

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(subject string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	Subject string
}

// AuthService authenticates the operator account.
type AuthService interface {
	Login(ctx context.Context, username, password string) (string, time.Time, error) // token, expiry, error
}
