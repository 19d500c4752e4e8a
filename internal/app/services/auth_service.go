package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/yigit/allotment/internal/app/models"
	"github.com/yigit/allotment/internal/app/models/dto"
	"github.com/yigit/allotment/internal/pkg/apperrors"
	"github.com/yigit/allotment/internal/pkg/auth"
)

// TokenIssuer signs admin access tokens
type TokenIssuer interface {
	GenerateAccessToken(username string, role models.RoleType) (string, int64, error)
}

// AuthService handles admin authentication
type AuthService interface {
	Login(ctx context.Context, username, password string) (*dto.TokenResponse, error)
}

// authServiceImpl implements AuthService
type authServiceImpl struct {
	verifier auth.CredentialVerifier
	tokens   TokenIssuer
	logger   zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(verifier auth.CredentialVerifier, tokens TokenIssuer, logger zerolog.Logger) AuthService {
	return &authServiceImpl{
		verifier: verifier,
		tokens:   tokens,
		logger:   logger.With().Str("component", "auth_service").Logger(),
	}
}

// Login checks the admin credentials and issues an access token
func (s *authServiceImpl) Login(ctx context.Context, username, password string) (*dto.TokenResponse, error) {
	if !s.verifier.Verify(username, password) {
		s.logger.Warn().Str("username", username).Msg("Rejected admin login")
		return nil, apperrors.ErrInvalidCredentials
	}

	token, expiresIn, err := s.tokens.GenerateAccessToken(username, models.RoleAdmin)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to issue admin token")
		return nil, err
	}

	s.logger.Info().Str("username", username).Msg("Admin logged in")
	return &dto.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresIn,
	}, nil
}
