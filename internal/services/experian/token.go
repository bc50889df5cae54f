package experian

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"prospect-lookup/internal/common/logger"

	"github.com/redis/go-redis/v9"
)

const tokenCacheKey = "experian:access_token"

// refreshMargin is how long before expiry a token is considered stale.
const refreshMargin = 60 * time.Second

// TokenResponse holds the response from the vendor's token endpoint.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
	Scope       string `json:"scope"`
}

// TokenSource fetches access tokens with the client-credentials flow and
// caches them in process and, when Redis is available, across instances.
type TokenSource struct {
	tokenURL     string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	redis        *redis.Client
	logger       logger.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewTokenSource(tokenURL, clientID, clientSecret string, rdb *redis.Client, log logger.Logger) *TokenSource {
	return &TokenSource{
		tokenURL:     tokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		redis:        rdb,
		logger:       log.WithFields(map[string]interface{}{"component": "experian-token"}),
	}
}

// Token returns a valid access token, fetching a fresh one only when the
// cached token is missing or within the refresh margin of expiry.
func (t *TokenSource) Token(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.accessToken != "" && t.tokenExpiry.After(time.Now().Add(refreshMargin)) {
		return t.accessToken, nil
	}

	if token, ttl := t.sharedGet(ctx); token != "" {
		t.accessToken = token
		t.tokenExpiry = time.Now().Add(ttl)
		return token, nil
	}

	if err := t.fetch(ctx); err != nil {
		return "", err
	}
	return t.accessToken, nil
}

func (t *TokenSource) fetch(ctx context.Context) error {
	data := url.Values{}
	data.Set("grant_type", "client_credentials")
	data.Set("client_id", t.clientID)
	data.Set("client_secret", t.clientSecret)

	req, err := http.NewRequestWithContext(ctx, "POST", t.tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("token request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var tokenResp TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return fmt.Errorf("failed to decode token response: %w", err)
	}

	ttl := time.Duration(tokenResp.ExpiresIn) * time.Second
	t.accessToken = tokenResp.AccessToken
	t.tokenExpiry = time.Now().Add(ttl)
	t.sharedSet(ctx, tokenResp.AccessToken, ttl)

	return nil
}

// sharedGet reads the cross-instance token cache. Any Redis failure is
// treated as a cache miss.
func (t *TokenSource) sharedGet(ctx context.Context) (string, time.Duration) {
	if t.redis == nil {
		return "", 0
	}
	token, err := t.redis.Get(ctx, tokenCacheKey).Result()
	if err != nil {
		return "", 0
	}
	ttl, err := t.redis.TTL(ctx, tokenCacheKey).Result()
	if err != nil || ttl <= refreshMargin {
		return "", 0
	}
	return token, ttl
}

func (t *TokenSource) sharedSet(ctx context.Context, token string, ttl time.Duration) {
	if t.redis == nil || ttl <= refreshMargin {
		return
	}
	if err := t.redis.Set(ctx, tokenCacheKey, token, ttl-refreshMargin).Err(); err != nil {
		t.logger.Debug("shared token cache set failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
