package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "secondhand_market/pkg/errors"
	"secondhand_market/pkg/logger"
)

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

func signToken(t *testing.T, secret string, claims IdentityClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func validClaims(sub string) IdentityClaims {
	return IdentityClaims{
		Email: "buyer@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			Audience:  jwt.ClaimStrings{"authenticated"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestJWTIdentity(t *testing.T) {
	svc := NewJWTIdentityService(testSecret, "", "authenticated", logger.NewNop())
	ctx := context.Background()
	userID := uuid.New()

	t.Run("valid token", func(t *testing.T) {
		identity, err := svc.Authenticate(ctx, signToken(t, testSecret, validClaims(userID.String())))
		require.NoError(t, err)
		assert.Equal(t, userID, identity.UserID)
		assert.Equal(t, "buyer@example.com", identity.Email)
	})

	t.Run("expired", func(t *testing.T) {
		claims := validClaims(userID.String())
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
		_, err := svc.Authenticate(ctx, signToken(t, testSecret, claims))
		assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
	})

	t.Run("wrong secret", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, signToken(t, "another-secret", validClaims(userID.String())))
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("wrong audience", func(t *testing.T) {
		claims := validClaims(userID.String())
		claims.Audience = jwt.ClaimStrings{"service_role"}
		_, err := svc.Authenticate(ctx, signToken(t, testSecret, claims))
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("subject is not a uuid", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, signToken(t, testSecret, validClaims("user-42")))
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "")
		assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
	})
}

func TestIdentityClient(t *testing.T) {
	userID := uuid.New()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/user", r.URL.Path)
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"` + userID.String() + `","email":"seller@example.com","role":"authenticated"}`))
	}))
	defer server.Close()

	client := NewIdentityClient(server.URL+"/", "anon-key", time.Second, logger.NewNop())

	identity, err := client.Authenticate(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, userID, identity.UserID)
	assert.Equal(t, "seller@example.com", identity.Email)

	_, err = client.Authenticate(context.Background(), "bad")
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}
