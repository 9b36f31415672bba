package domain

import "github.com/shopspring/decimal"

// Rejection reasons carried on disallowed decisions. Front-ends map
// these onto user-facing messages.
const (
	ReasonZeroBalance   = "zero_balance"
	ReasonBelowMinimum  = "below_minimum"
	ReasonInvalidAmount = "invalid_amount"
)

// BuyDecision is the outcome of evaluating the buy rule against a
// ledger snapshot and a SOL/USD price.
type BuyDecision struct {
	Allowed      bool            `json:"allowed"`
	BalanceSOL   decimal.Decimal `json:"balance_sol"`
	BalanceUSD   decimal.Decimal `json:"balance_usd"`
	ThresholdUSD decimal.Decimal `json:"threshold_usd"`
	Reason       string          `json:"reason,omitempty"`
}

// WithdrawalDecision is the outcome of evaluating a withdrawal request.
// MinimumSOL is derived from the current balance, so a user holding
// nothing faces a minimum of zero but still fails the positive-amount
// check.
type WithdrawalDecision struct {
	Allowed      bool            `json:"allowed"`
	RequestedSOL decimal.Decimal `json:"requested_sol"`
	MinimumSOL   decimal.Decimal `json:"minimum_sol"`
	BalanceSOL   decimal.Decimal `json:"balance_sol"`
	Reason       string          `json:"reason,omitempty"`
}

// EvaluateBuy applies the buy rule: the given balance, valued at the
// given price, must meet the USD threshold. The threshold is inclusive.
func EvaluateBuy(balanceLamports int64, priceUSD, thresholdUSD decimal.Decimal) BuyDecision {
	balSOL := SOL(balanceLamports)
	balUSD := balSOL.Mul(priceUSD)

	d := BuyDecision{
		BalanceSOL:   balSOL,
		BalanceUSD:   balUSD,
		ThresholdUSD: thresholdUSD,
	}

	if balanceLamports <= 0 {
		d.Reason = ReasonZeroBalance
		return d
	}
	if balUSD.LessThan(thresholdUSD) {
		d.Reason = ReasonBelowMinimum
		return d
	}

	d.Allowed = true
	return d
}

// EvaluateWithdrawal applies the withdrawal rule: the requested amount
// must be positive and at least multiplier times the current balance.
func EvaluateWithdrawal(balanceLamports int64, requestedSOL, multiplier decimal.Decimal) WithdrawalDecision {
	balSOL := SOL(balanceLamports)
	minSOL := balSOL.Mul(multiplier)

	d := WithdrawalDecision{
		RequestedSOL: requestedSOL,
		MinimumSOL:   minSOL,
		BalanceSOL:   balSOL,
	}

	if requestedSOL.LessThanOrEqual(decimal.Zero) {
		d.Reason = ReasonInvalidAmount
		return d
	}
	if requestedSOL.LessThan(minSOL) {
		d.Reason = ReasonBelowMinimum
		return d
	}

	d.Allowed = true
	return d
}
