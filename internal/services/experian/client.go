package experian

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	stderrors "prospect-lookup/internal/common/errors"
	"prospect-lookup/internal/common/logger"
	"prospect-lookup/internal/common/metrics"
	"prospect-lookup/internal/models"
)

const vendorName = "experian"

var (
	ErrVendorCallFailed = errors.New("VENDOR_CALL_FAILED")
	ErrVendorTimeout    = errors.New("VENDOR_CALL_TIMEOUT")
	ErrVendorAuthFailed = errors.New("VENDOR_AUTH_FAILED")
)

// payload mirrors the vendor's lead-search request format.
type payload struct {
	TransDetails map[string]string `json:"LEAD_TRANS_DETAILS"`
	Address      map[string]string `json:"LEAD_ADDRESS"`
}

// Client calls the consumer-data vendor's lead search endpoint. The raw JSON
// response is returned untouched; flattening and categorization happen
// downstream.
type Client struct {
	baseURL    string
	tokens     *TokenSource
	httpClient *http.Client
	logger     logger.Logger
}

func NewClient(baseURL string, tokens *TokenSource, timeout time.Duration, log logger.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		tokens:     tokens,
		httpClient: &http.Client{Timeout: timeout},
		logger:     log.WithFields(map[string]interface{}{"component": "experian-client"}),
	}
}

// Search runs one lead lookup. The state code is upper-cased on the way out;
// everything else is sent as received.
func (c *Client) Search(ctx context.Context, criteria models.SearchCriteria) (json.RawMessage, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		metrics.VendorCalls.WithLabelValues(vendorName, "auth_failed").Inc()
		return nil, fmt.Errorf("%w: %v", ErrVendorAuthFailed, err)
	}

	body, err := json.Marshal(payload{
		TransDetails: map[string]string{
			"FIRST_NAME": criteria.FirstName,
			"LAST_NAME":  criteria.LastName,
		},
		Address: map[string]string{
			"STREET1": criteria.Street1,
			"STREET2": criteria.Street2,
			"CITY":    criteria.City,
			"STATE":   strings.ToUpper(criteria.State),
			"ZIP":     criteria.Zip,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/lead-search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		var netErr net.Error
		if ctx.Err() == context.DeadlineExceeded || (errors.As(err, &netErr) && netErr.Timeout()) {
			metrics.VendorCalls.WithLabelValues(vendorName, "timeout").Inc()
			return nil, ErrVendorTimeout
		}
		metrics.VendorCalls.WithLabelValues(vendorName, "error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrVendorCallFailed, err)
	}
	defer resp.Body.Close()

	c.logger.Info("vendor search completed", map[string]interface{}{
		"status":     resp.StatusCode,
		"durationMs": time.Since(start).Milliseconds(),
	})

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		metrics.VendorCalls.WithLabelValues(vendorName, "auth_failed").Inc()
		return nil, fmt.Errorf("%w: status %d", ErrVendorAuthFailed, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		metrics.VendorCalls.WithLabelValues(vendorName, "error").Inc()
		return nil, fmt.Errorf("%w: status %d: %s", ErrVendorCallFailed, resp.StatusCode, string(snippet))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.VendorCalls.WithLabelValues(vendorName, "error").Inc()
		return nil, fmt.Errorf("%w: read response: %v", ErrVendorCallFailed, err)
	}

	metrics.VendorCalls.WithLabelValues(vendorName, "success").Inc()
	return raw, nil
}

// MapError wraps one of this package's sentinels into the shared error
// taxonomy for the HTTP layer.
func MapError(err error) *stderrors.StandardError {
	switch {
	case errors.Is(err, ErrVendorTimeout):
		return stderrors.NewVendorTimeoutError(vendorName)
	case errors.Is(err, ErrVendorAuthFailed):
		return stderrors.NewVendorAuthFailedError(vendorName, err)
	default:
		return stderrors.NewVendorCallFailedError(vendorName, err)
	}
}
