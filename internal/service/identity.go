package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"secondhand_market/internal/config"
	"secondhand_market/internal/domain"
	apperrors "secondhand_market/pkg/errors"
	"secondhand_market/pkg/logger"
)

// IdentityService resolves a bearer token issued by the identity provider to
// the caller's identity.
type IdentityService interface {
	Authenticate(ctx context.Context, token string) (*domain.Identity, error)
}

// NewIdentityService picks local JWT verification or a remote lookup based on cfg.Mode.
func NewIdentityService(cfg config.AuthConfig, log logger.Logger) IdentityService {
	if cfg.Mode == config.AuthModeRemote {
		return NewIdentityClient(cfg.RemoteURL, cfg.APIKey, cfg.Timeout, log)
	}
	return NewJWTIdentityService(cfg.JWTSecret, cfg.Issuer, cfg.Audience, log)
}

// IdentityClaims are the claims the identity provider puts in its access tokens.
type IdentityClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type jwtIdentityService struct {
	secret   []byte
	issuer   string
	audience string
	log      logger.Logger
}

func NewJWTIdentityService(secret, issuer, audience string, log logger.Logger) IdentityService {
	return &jwtIdentityService{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		log:      log,
	}
}

func (s *jwtIdentityService) Authenticate(ctx context.Context, token string) (*domain.Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperrors.ErrUnauthenticated
	}

	opts := []jwt.ParserOption{jwt.WithExpirationRequired()}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	if s.audience != "" {
		opts = append(opts, jwt.WithAudience(s.audience))
	}

	parsed, err := jwt.ParseWithClaims(token, &IdentityClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		s.log.Debug("Token validation failed", "error", err)
		return nil, apperrors.ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*IdentityClaims)
	if !ok || !parsed.Valid {
		return nil, apperrors.ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		s.log.Debug("Invalid subject in token", "sub", claims.Subject)
		return nil, apperrors.ErrInvalidToken
	}

	return &domain.Identity{UserID: userID, Email: claims.Email}, nil
}
