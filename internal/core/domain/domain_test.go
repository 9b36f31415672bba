package domain

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyObserved_Outcomes(t *testing.T) {
	tests := []struct {
		name           string
		entry          LedgerEntry
		observed       int64
		wantKind       OutcomeKind
		wantDelta      int64
		wantCumulative int64
	}{
		{"first deposit", LedgerEntry{}, 500, OutcomeDeposited, 500, 500},
		{"no change", LedgerEntry{CumulativeDeposits: 500, LastObservedBalance: 500}, 500, OutcomeNoChange, 0, 500},
		{"second deposit", LedgerEntry{CumulativeDeposits: 500, LastObservedBalance: 500}, 800, OutcomeDeposited, 300, 800},
		{"outflow keeps cumulative", LedgerEntry{CumulativeDeposits: 800, LastObservedBalance: 800}, 100, OutcomeDecreased, 0, 800},
		{"deposit after outflow", LedgerEntry{CumulativeDeposits: 800, LastObservedBalance: 100}, 400, OutcomeDeposited, 300, 1100},
		{"zero observed on empty entry", LedgerEntry{}, 0, OutcomeNoChange, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, out := ApplyObserved(tt.entry, tt.observed)
			assert.Equal(t, tt.wantKind, out.Kind)
			assert.Equal(t, tt.wantDelta, out.Delta)
			assert.Equal(t, tt.wantCumulative, out.NewCumulative)
			assert.Equal(t, tt.wantCumulative, got.CumulativeDeposits)
			assert.Equal(t, tt.observed, got.LastObservedBalance)
		})
	}
}

// A sequence of observations [0, 5, 3, 8] holds two deposits (5 and 5)
// split around an outflow. Cumulative must end at 10.
func TestApplyObserved_SequenceAccumulates(t *testing.T) {
	entry := LedgerEntry{}
	for _, observed := range []int64{0, 5, 3, 8} {
		entry, _ = ApplyObserved(entry, observed)
	}
	assert.Equal(t, int64(10), entry.CumulativeDeposits)
	assert.Equal(t, int64(8), entry.LastObservedBalance)
}

func TestApplyObserved_CumulativeNeverDecreases(t *testing.T) {
	entry := LedgerEntry{}
	prev := int64(0)
	for _, observed := range []int64{3, 7, 2, 2, 9, 0, 1} {
		entry, _ = ApplyObserved(entry, observed)
		require.GreaterOrEqual(t, entry.CumulativeDeposits, prev)
		prev = entry.CumulativeDeposits
	}
}

func TestApplyObserved_DoesNotMutateInput(t *testing.T) {
	entry := LedgerEntry{CumulativeDeposits: 10, LastObservedBalance: 10}
	_, _ = ApplyObserved(entry, 25)
	assert.Equal(t, int64(10), entry.CumulativeDeposits)
	assert.Equal(t, int64(10), entry.LastObservedBalance)
}

func TestFitsLedger(t *testing.T) {
	assert.True(t, FitsLedger(0))
	assert.True(t, FitsLedger(math.MaxInt64))
	assert.False(t, FitsLedger(math.MaxInt64+1))
	assert.False(t, FitsLedger(math.MaxUint64))
}

func TestSOLConversion(t *testing.T) {
	assert.Equal(t, "1.5", SOL(1_500_000_000).String())
	assert.Equal(t, "0.000000001", SOL(1).String())
	assert.Equal(t, "0", SOL(0).String())

	assert.Equal(t, int64(1_500_000_000), Lamports(decimal.RequireFromString("1.5")))
	assert.Equal(t, int64(1), Lamports(decimal.RequireFromString("0.0000000019")), "sub-lamport precision truncates")
}

func TestLedgerEntry_UnnotifiedDelta(t *testing.T) {
	tests := []struct {
		name  string
		entry LedgerEntry
		want  int64
	}{
		{"nothing pending", LedgerEntry{CumulativeDeposits: 100, LastNotifiedCumulative: 100}, 0},
		{"pending delta", LedgerEntry{CumulativeDeposits: 150, LastNotifiedCumulative: 100}, 50},
		{"fresh entry", LedgerEntry{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.entry.UnnotifiedDelta())
		})
	}
}

func TestEvaluateBuy(t *testing.T) {
	price := decimal.RequireFromString("100") // 1 SOL = $100
	threshold := decimal.RequireFromString("10")

	tests := []struct {
		name       string
		lamports   int64
		want       bool
		wantReason string
	}{
		{"zero balance", 0, false, "zero_balance"},
		{"below threshold", 50_000_000, false, "below_minimum"}, // 0.05 SOL = $5
		{"exactly at threshold", 100_000_000, true, ""},         // 0.1 SOL = $10
		{"above threshold", 1_000_000_000, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := EvaluateBuy(tt.lamports, price, threshold)
			assert.Equal(t, tt.want, d.Allowed)
			assert.Equal(t, tt.wantReason, d.Reason)
		})
	}
}

func TestEvaluateBuy_ReportsUSDValue(t *testing.T) {
	d := EvaluateBuy(500_000_000, decimal.RequireFromString("42.50"), decimal.RequireFromString("10"))
	assert.True(t, d.Allowed)
	assert.Equal(t, "21.25", d.BalanceUSD.String())
	assert.Equal(t, "0.5", d.BalanceSOL.String())
}

func TestEvaluateWithdrawal(t *testing.T) {
	multiplier := decimal.RequireFromString("2")

	tests := []struct {
		name       string
		lamports   int64
		requested  string
		want       bool
		wantReason string
	}{
		{"meets minimum", 1_000_000_000, "2", true, ""},
		{"exactly at minimum", 1_000_000_000, "2.0", true, ""},
		{"below minimum", 1_000_000_000, "1.5", false, "below_minimum"},
		{"zero amount", 1_000_000_000, "0", false, "invalid_amount"},
		{"negative amount", 1_000_000_000, "-1", false, "invalid_amount"},
		{"zero balance allows any positive amount", 0, "0.001", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := EvaluateWithdrawal(tt.lamports, decimal.RequireFromString(tt.requested), multiplier)
			assert.Equal(t, tt.want, d.Allowed)
			assert.Equal(t, tt.wantReason, d.Reason)
		})
	}
}

func TestEvaluateWithdrawal_MinimumTracksBalance(t *testing.T) {
	d := EvaluateWithdrawal(500_000_000, decimal.RequireFromString("0.1"), decimal.RequireFromString("2"))
	assert.False(t, d.Allowed)
	assert.Equal(t, "1", d.MinimumSOL.String())
}

func TestEventConstructors(t *testing.T) {
	rec := WalletRecord{UserID: 42, Address: "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"}

	created := NewWalletCreatedEvent(rec)
	assert.NotEmpty(t, created.EventID)
	assert.Equal(t, UserID(42), created.UserID)
	assert.Equal(t, rec.Address, created.Address)

	deposit := NewDepositDetectedEvent(rec, 500, 1500)
	assert.NotEmpty(t, deposit.EventID)
	assert.Equal(t, int64(500), deposit.Delta)
	assert.Equal(t, int64(1500), deposit.NewCumulative)
	assert.NotEqual(t, created.EventID, deposit.EventID)
}

func TestWallet_RecordStripsKey(t *testing.T) {
	w := Wallet{UserID: 7, DerivationIndex: 3, Address: "addr", PrivateKey: []byte{1, 2, 3}}
	rec := w.Record()
	assert.Equal(t, UserID(7), rec.UserID)
	assert.Equal(t, uint32(3), rec.DerivationIndex)
	assert.Equal(t, "addr", rec.Address)
}
