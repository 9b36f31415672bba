package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"solana-deposit-engine/internal/core/ports/mocks"
	"solana-deposit-engine/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	testOperatorUser = "operator"
	testOperatorHash = "$argon2id$stored-hash"
)

func setupAuthService(t *testing.T) (*AuthServiceImpl, *mocks.MockHashService, *mocks.MockTokenService, *gomock.Controller) {
	ctrl := gomock.NewController(t)
	hashSvc := mocks.NewMockHashService(ctrl)
	tokenSvc := mocks.NewMockTokenService(ctrl)
	svc := NewAuthService(testOperatorUser, testOperatorHash, hashSvc, tokenSvc, zerolog.Nop())
	return svc, hashSvc, tokenSvc, ctrl
}

func TestAuthService_Login_Success(t *testing.T) {
	svc, hashSvc, tokenSvc, ctrl := setupAuthService(t)
	defer ctrl.Finish()
	ctx := context.Background()

	expiry := time.Now().Add(24 * time.Hour)
	hashSvc.EXPECT().Verify("correct-password", testOperatorHash).Return(true, nil)
	tokenSvc.EXPECT().Generate(testOperatorUser).Return("signed.jwt.token", expiry, nil)

	token, expiresAt, err := svc.Login(ctx, testOperatorUser, "correct-password")
	require.NoError(t, err)
	assert.Equal(t, "signed.jwt.token", token)
	assert.Equal(t, expiry, expiresAt)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, hashSvc, _, ctrl := setupAuthService(t)
	defer ctrl.Finish()
	ctx := context.Background()

	hashSvc.EXPECT().Verify("wrong-password", testOperatorHash).Return(false, nil)

	_, _, err := svc.Login(ctx, testOperatorUser, "wrong-password")
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "AUTH_001", appErr.Code)
}

func TestAuthService_Login_WrongUsername(t *testing.T) {
	svc, hashSvc, _, ctrl := setupAuthService(t)
	defer ctrl.Finish()
	ctx := context.Background()

	// The hash is still verified so the timing matches a bad password.
	hashSvc.EXPECT().Verify("correct-password", testOperatorHash).Return(true, nil)

	_, _, err := svc.Login(ctx, "intruder", "correct-password")
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "AUTH_001", appErr.Code)
}

func TestAuthService_Login_HashVerifyError(t *testing.T) {
	svc, hashSvc, _, ctrl := setupAuthService(t)
	defer ctrl.Finish()
	ctx := context.Background()

	hashSvc.EXPECT().Verify("password", testOperatorHash).Return(false, errors.New("invalid hash format"))

	_, _, err := svc.Login(ctx, testOperatorUser, "password")
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "AUTH_001", appErr.Code)
}

func TestAuthService_Login_TokenGenerationFails(t *testing.T) {
	svc, hashSvc, tokenSvc, ctrl := setupAuthService(t)
	defer ctrl.Finish()
	ctx := context.Background()

	hashSvc.EXPECT().Verify("correct-password", testOperatorHash).Return(true, nil)
	tokenSvc.EXPECT().Generate(testOperatorUser).Return("", time.Time{}, errors.New("signing failed"))

	_, _, err := svc.Login(ctx, testOperatorUser, "correct-password")
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "SYS_001", appErr.Code)
}
