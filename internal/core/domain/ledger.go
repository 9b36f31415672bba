package domain

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// LamportsPerSOL is the native unit scale of the chain.
const LamportsPerSOL = 1_000_000_000

// LedgerEntry is the durable per-user deposit record. All amounts are
// lamports. CumulativeDeposits only ever grows; LastObservedBalance
// tracks the on-chain balance as of the most recent observation and
// may move in either direction.
type LedgerEntry struct {
	UserID                 UserID    `json:"user_id"`
	CumulativeDeposits     int64     `json:"cumulative_deposits"`
	LastObservedBalance    int64     `json:"last_observed_balance"`
	WalletNotified         bool      `json:"wallet_notified"`
	LastNotifiedCumulative int64     `json:"last_notified_cumulative"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// OutcomeKind classifies the result of folding an observation into a
// ledger entry.
type OutcomeKind int

const (
	OutcomeNoChange OutcomeKind = iota
	OutcomeDeposited
	OutcomeDecreased
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeDeposited:
		return "deposited"
	case OutcomeDecreased:
		return "decreased"
	default:
		return "no_change"
	}
}

// DepositOutcome describes what a single observation did to the ledger.
// Delta is positive only for OutcomeDeposited.
type DepositOutcome struct {
	Kind          OutcomeKind
	Delta         int64
	NewCumulative int64
	NewObserved   int64
}

// ApplyObserved folds one observed on-chain balance into a ledger entry.
// A rise over the last observed balance is credited as a deposit of the
// difference; a fall records the new baseline without touching the
// cumulative total, so outflows never erase deposit history. The input
// entry is not mutated.
func ApplyObserved(entry LedgerEntry, observed int64) (LedgerEntry, DepositOutcome) {
	out := DepositOutcome{
		Kind:          OutcomeNoChange,
		NewCumulative: entry.CumulativeDeposits,
		NewObserved:   observed,
	}

	switch {
	case observed > entry.LastObservedBalance:
		out.Kind = OutcomeDeposited
		out.Delta = observed - entry.LastObservedBalance
		out.NewCumulative = entry.CumulativeDeposits + out.Delta
	case observed < entry.LastObservedBalance:
		out.Kind = OutcomeDecreased
	}

	entry.CumulativeDeposits = out.NewCumulative
	entry.LastObservedBalance = observed
	return entry, out
}

// FitsLedger reports whether a raw chain balance fits the signed range
// the ledger stores.
func FitsLedger(balance uint64) bool {
	return balance <= math.MaxInt64
}

// SOL converts a lamport amount to SOL with full precision.
func SOL(lamports int64) decimal.Decimal {
	return decimal.New(lamports, -9)
}

// Lamports converts a SOL amount to lamports, truncating sub-lamport
// precision.
func Lamports(sol decimal.Decimal) int64 {
	return sol.Shift(9).IntPart()
}

// UnnotifiedDelta returns the cumulative deposit amount that has not yet
// been announced to the user. The dispatcher commits the watermark only
// after a successful send, so a crash between apply and send re-surfaces
// the same delta on the next observation.
func (e LedgerEntry) UnnotifiedDelta() int64 {
	if e.CumulativeDeposits <= e.LastNotifiedCumulative {
		return 0
	}
	return e.CumulativeDeposits - e.LastNotifiedCumulative
}
