package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Transient infrastructure (CHAIN / QUOTE) ----
// Retried on the next observer cycle; never partial-applies ledger state.

func ErrChainUnavailable(err error) *AppError {
	return Wrap("CHAIN_001", "Chain RPC request failed", http.StatusBadGateway, err)
}

func ErrInvalidAddress(err error) *AppError {
	return Wrap("CHAIN_002", "Invalid wallet address", http.StatusInternalServerError, err)
}

func ErrQuoteUnavailable(err error) *AppError {
	return Wrap("QUOTE_001", "Price quote unavailable", http.StatusServiceUnavailable, err)
}

// ---- Invariant violations (INV) ----
// These halt the affected operation; they are never silently continued past.

func ErrDerivationCollision(index uint32) *AppError {
	return New("INV_001", fmt.Sprintf("Derivation index %d already assigned", index), http.StatusInternalServerError)
}

func ErrLedgerMissing(userID int64) *AppError {
	return New("INV_002", fmt.Sprintf("Ledger entry missing for user %d", userID), http.StatusInternalServerError)
}

func ErrBalanceOverflow(value uint64) *AppError {
	return New("INV_003", fmt.Sprintf("Observed balance %d exceeds ledger range", value), http.StatusInternalServerError)
}

// ---- Policy rejections (POL) ----
// Expected business outcomes, not failures. The message carries the specifics
// the front-end needs to render.

func ErrZeroBalance() *AppError {
	return New("POL_001", "No deposits detected for this wallet yet", http.StatusUnprocessableEntity)
}

func ErrBelowBuyMinimum(thresholdUSD string) *AppError {
	return New("POL_002", fmt.Sprintf("Balance below the $%s buy minimum", thresholdUSD), http.StatusUnprocessableEntity)
}

func ErrBelowWithdrawalMinimum(minimumSOL string) *AppError {
	return New("POL_003", fmt.Sprintf("Requested amount below the %s SOL withdrawal minimum", minimumSOL), http.StatusUnprocessableEntity)
}

func ErrInvalidAmount() *AppError {
	return New("POL_004", "Invalid amount", http.StatusBadRequest)
}

func ErrWalletNotFound() *AppError {
	return New("POL_005", "No wallet exists for this user", http.StatusNotFound)
}

// ---- Authentication (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid credentials", http.StatusUnauthorized)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_002", "Invalid or expired token", http.StatusUnauthorized)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

func ErrSeedInvalid(err error) *AppError {
	return Wrap("SYS_002", "Master seed rejected", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a POL_004-style validation error with a custom message.
func Validation(message string) *AppError {
	return New("POL_004", message, http.StatusBadRequest)
}
