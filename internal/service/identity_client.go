package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"secondhand_market/internal/domain"
	apperrors "secondhand_market/pkg/errors"
	"secondhand_market/pkg/logger"
)

// IdentityClient asks the identity provider who a token belongs to.
type IdentityClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        logger.Logger
}

func NewIdentityClient(baseURL, apiKey string, timeout time.Duration, log logger.Logger) *IdentityClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &IdentityClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// remoteUser is the provider's user object; only the fields used here.
type remoteUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (c *IdentityClient) Authenticate(ctx context.Context, token string) (*domain.Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperrors.ErrUnauthenticated
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("Identity provider request failed", "error", err)
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return nil, apperrors.ErrInvalidToken
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("identity provider returned status %d: %s", resp.StatusCode, string(body))
	}

	var user remoteUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	userID, err := uuid.Parse(user.ID)
	if err != nil {
		c.log.Warn("Identity provider returned invalid user id", "id", user.ID)
		return nil, apperrors.ErrInvalidToken
	}

	return &domain.Identity{UserID: userID, Email: user.Email}, nil
}
