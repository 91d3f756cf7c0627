package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"secondhand_market/internal/domain"
	"secondhand_market/internal/service"
	apperrors "secondhand_market/pkg/errors"
	"secondhand_market/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubIdentity struct {
	tokens map[string]uuid.UUID
}

func (s stubIdentity) Authenticate(_ context.Context, token string) (*domain.Identity, error) {
	id, ok := s.tokens[token]
	if !ok {
		return nil, apperrors.ErrInvalidToken
	}
	return &domain.Identity{UserID: id}, nil
}

type stubLimiter struct {
	err error
}

func (s stubLimiter) Allow(context.Context, string, uuid.UUID) error { return s.err }

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer  abc ", "abc", true},
		{"Basic abc", "", false},
		{"Bearer ", "", false},
		{"abc", "", false},
	}
	for _, tt := range tests {
		token, ok := BearerToken(tt.header)
		assert.Equal(t, tt.ok, ok, tt.header)
		assert.Equal(t, tt.token, token, tt.header)
	}
}

func TestRequireAuth(t *testing.T) {
	userID := uuid.New()
	auth := NewAuthMiddleware(stubIdentity{tokens: map[string]uuid.UUID{"good": userID}}, logger.NewNop())

	router := gin.New()
	router.GET("/me", auth.RequireAuth(), func(c *gin.Context) {
		id, ok := GetUserID(c)
		assert.True(t, ok)
		c.String(http.StatusOK, id.String())
	})

	for _, header := range []string{"", "Token good", "Bearer bad"} {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, header)
	}

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer good")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID.String(), w.Body.String())
}

func TestRateLimitRendersTooManyRequests(t *testing.T) {
	userID := uuid.New()
	router := gin.New()
	router.Use(ErrorHandler(logger.NewNop()))
	router.POST("/offers",
		func(c *gin.Context) { c.Set(ctxUserID, userID); c.Next() },
		NewRateLimitMiddleware(stubLimiter{err: service.ErrRateLimited}, logger.NewNop()).Limit(service.ActionCreateOffer),
		func(c *gin.Context) { c.Status(http.StatusCreated) },
	)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/offers", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), service.ErrRateLimited.Error())
}

func TestErrorHandlerLeavesWrittenResponses(t *testing.T) {
	router := gin.New()
	router.Use(ErrorHandler(logger.NewNop()))
	router.GET("/written", func(c *gin.Context) {
		c.JSON(http.StatusAccepted, gin.H{"ok": true})
		_ = c.Error(apperrors.ErrNotFound)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/written", nil))
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
}
