package service

import (
	"context"
	"errors"
	"testing"

	"solana-deposit-engine/internal/core/domain"
	"solana-deposit-engine/internal/core/ports/mocks"
	"solana-deposit-engine/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestSnapshotService_LedgerSnapshot(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()

	ledgerRepo := mocks.NewMockLedgerRepository(ctrl)
	walletRepo := mocks.NewMockWalletRepository(ctrl)
	svc := NewSnapshotService(ledgerRepo, walletRepo)

	entries := []domain.LedgerEntry{
		{UserID: 1, CumulativeDeposits: 1_000_000_000},
		{UserID: 2, CumulativeDeposits: 0},
	}
	ledgerRepo.EXPECT().List(ctx).Return(entries, nil)

	got, err := svc.LedgerSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, entries, got)
}

func TestSnapshotService_UserSnapshot(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()

	ledgerRepo := mocks.NewMockLedgerRepository(ctrl)
	walletRepo := mocks.NewMockWalletRepository(ctrl)
	svc := NewSnapshotService(ledgerRepo, walletRepo)

	entry := &domain.LedgerEntry{UserID: 42, CumulativeDeposits: 500}
	ledgerRepo.EXPECT().Get(ctx, domain.UserID(42)).Return(entry, nil)

	got, err := svc.UserSnapshot(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, entry, got)
}

func TestSnapshotService_UserSnapshot_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()

	ledgerRepo := mocks.NewMockLedgerRepository(ctrl)
	walletRepo := mocks.NewMockWalletRepository(ctrl)
	svc := NewSnapshotService(ledgerRepo, walletRepo)

	ledgerRepo.EXPECT().Get(ctx, domain.UserID(99)).Return(nil, nil)

	_, err := svc.UserSnapshot(ctx, 99)
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "POL_005", appErr.Code)
}

func TestSnapshotService_Wallets(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()

	ledgerRepo := mocks.NewMockLedgerRepository(ctrl)
	walletRepo := mocks.NewMockWalletRepository(ctrl)
	svc := NewSnapshotService(ledgerRepo, walletRepo)

	recs := []domain.WalletRecord{{UserID: 1, Address: "addr1", DerivationIndex: 0}}
	walletRepo.EXPECT().List(ctx).Return(recs, nil)

	got, err := svc.Wallets(ctx)
	require.NoError(t, err)
	assert.Equal(t, recs, got)
}

func TestSnapshotService_LedgerSnapshot_RepoError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()

	ledgerRepo := mocks.NewMockLedgerRepository(ctrl)
	walletRepo := mocks.NewMockWalletRepository(ctrl)
	svc := NewSnapshotService(ledgerRepo, walletRepo)

	ledgerRepo.EXPECT().List(ctx).Return(nil, errors.New("db down"))

	_, err := svc.LedgerSnapshot(ctx)
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "SYS_001", appErr.Code)
	assert.Equal(t, "Internal database error", appErr.Message)
}
