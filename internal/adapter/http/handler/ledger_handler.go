package handler

import (
	"strconv"
	"time"

	"solana-deposit-engine/internal/core/domain"
	"solana-deposit-engine/internal/core/ports"
	"solana-deposit-engine/pkg/apperror"
	"solana-deposit-engine/pkg/response"

	"github.com/gin-gonic/gin"
)

// LedgerHandler exposes read-only ledger and wallet views for operators.
type LedgerHandler struct {
	snapshotSvc ports.SnapshotService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(snapshotSvc ports.SnapshotService) *LedgerHandler {
	return &LedgerHandler{snapshotSvc: snapshotSvc}
}

type ledgerEntryResponse struct {
	UserID                int64     `json:"user_id"`
	CumulativeDeposits    int64     `json:"cumulative_deposits"`
	CumulativeDepositsSOL string    `json:"cumulative_deposits_sol"`
	LastObservedBalance   int64     `json:"last_observed_balance"`
	WalletNotified        bool      `json:"wallet_notified"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

func toLedgerEntryResponse(e domain.LedgerEntry) ledgerEntryResponse {
	return ledgerEntryResponse{
		UserID:                int64(e.UserID),
		CumulativeDeposits:    e.CumulativeDeposits,
		CumulativeDepositsSOL: domain.SOL(e.CumulativeDeposits).String(),
		LastObservedBalance:   e.LastObservedBalance,
		WalletNotified:        e.WalletNotified,
		CreatedAt:             e.CreatedAt,
		UpdatedAt:             e.UpdatedAt,
	}
}

// List handles GET /api/v1/ledger.
func (h *LedgerHandler) List(c *gin.Context) {
	entries, err := h.snapshotSvc.LedgerSnapshot(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]ledgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toLedgerEntryResponse(e))
	}
	response.OK(c, gin.H{"entries": out, "count": len(out)})
}

// Get handles GET /api/v1/ledger/:user_id.
func (h *LedgerHandler) Get(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		response.Error(c, apperror.Validation("user_id must be an integer"))
		return
	}

	entry, err := h.snapshotSvc.UserSnapshot(c.Request.Context(), domain.UserID(userID))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toLedgerEntryResponse(*entry))
}

// Wallets handles GET /api/v1/wallets.
func (h *LedgerHandler) Wallets(c *gin.Context) {
	recs, err := h.snapshotSvc.Wallets(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"wallets": recs, "count": len(recs)})
}
