package service

import (
	"context"
	"crypto/subtle"
	"time"

	"solana-deposit-engine/internal/core/ports"
	"solana-deposit-engine/pkg/apperror"

	"github.com/rs/zerolog"
)

// AuthServiceImpl implements ports.AuthService for the single operator
// account configured at startup.
type AuthServiceImpl struct {
	username     string
	passwordHash string
	hashSvc      ports.HashService
	tokenSvc     ports.TokenService
	log          zerolog.Logger
}

// NewAuthService creates a new AuthServiceImpl.
func NewAuthService(
	username string,
	passwordHash string,
	hashSvc ports.HashService,
	tokenSvc ports.TokenService,
	log zerolog.Logger,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		username:     username,
		passwordHash: passwordHash,
		hashSvc:      hashSvc,
		tokenSvc:     tokenSvc,
		log:          log,
	}
}

// Login verifies operator credentials and issues a JWT. Username and
// password failures return the same error.
func (s *AuthServiceImpl) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	usernameOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1

	// Always run the hash verification to keep timing uniform.
	passwordOK, err := s.hashSvc.Verify(password, s.passwordHash)
	if err != nil {
		s.log.Warn().Err(err).Msg("Password hash verification failed")
		return "", time.Time{}, apperror.ErrInvalidCredentials()
	}

	if !usernameOK || !passwordOK {
		s.log.Warn().Str("username", username).Msg("Login rejected")
		return "", time.Time{}, apperror.ErrInvalidCredentials()
	}

	token, expiresAt, err := s.tokenSvc.Generate(s.username)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(err)
	}

	s.log.Info().Str("username", username).Msg("Operator logged in")
	return token, expiresAt, nil
}
