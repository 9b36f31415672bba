package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	e := New("POL_001", "No deposits detected for this wallet yet", http.StatusUnprocessableEntity)
	assert.Equal(t, "[POL_001] No deposits detected for this wallet yet", e.Error())
}

func TestAppError_ErrorWithCause(t *testing.T) {
	cause := errors.New("connection refused")
	e := ErrChainUnavailable(cause)
	assert.Contains(t, e.Error(), "CHAIN_001")
	assert.Contains(t, e.Error(), "connection refused")
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	e := ErrQuoteUnavailable(cause)

	assert.ErrorIs(t, e, cause)
	assert.Equal(t, cause, e.Unwrap())
}

func TestAppError_ErrorsAs(t *testing.T) {
	var wrapped error = fmt.Errorf("observing wallet: %w", ErrChainUnavailable(errors.New("rpc down")))

	var appErr *AppError
	require.ErrorAs(t, wrapped, &appErr)
	assert.Equal(t, "CHAIN_001", appErr.Code)
	assert.Equal(t, http.StatusBadGateway, appErr.HTTPStatus)
}

func TestTaxonomyStatuses(t *testing.T) {
	cases := []struct {
		name   string
		err    *AppError
		code   string
		status int
	}{
		{"chain transient", ErrChainUnavailable(nil), "CHAIN_001", http.StatusBadGateway},
		{"quote transient", ErrQuoteUnavailable(nil), "QUOTE_001", http.StatusServiceUnavailable},
		{"derivation collision", ErrDerivationCollision(7), "INV_001", http.StatusInternalServerError},
		{"ledger missing", ErrLedgerMissing(42), "INV_002", http.StatusInternalServerError},
		{"zero balance", ErrZeroBalance(), "POL_001", http.StatusUnprocessableEntity},
		{"below buy minimum", ErrBelowBuyMinimum("10"), "POL_002", http.StatusUnprocessableEntity},
		{"below withdrawal minimum", ErrBelowWithdrawalMinimum("1.0"), "POL_003", http.StatusUnprocessableEntity},
		{"invalid credentials", ErrInvalidCredentials(), "AUTH_001", http.StatusUnauthorized},
		{"rate limited", ErrRateLimitExceeded(), "RATE_001", http.StatusTooManyRequests},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.code, tc.err.Code)
			assert.Equal(t, tc.status, tc.err.HTTPStatus)
		})
	}
}

func TestPolicyMessagesCarrySpecifics(t *testing.T) {
	assert.Contains(t, ErrBelowBuyMinimum("10").Message, "$10")
	assert.Contains(t, ErrBelowWithdrawalMinimum("1.0").Message, "1.0 SOL")
}
