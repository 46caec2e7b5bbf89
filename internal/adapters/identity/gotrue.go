package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hightechgrafix/htg-shipping-tools/internal/metrics"
	"github.com/hightechgrafix/htg-shipping-tools/internal/models"

	"github.com/sirupsen/logrus"
)

// maxErrorBody bounds how much of an error response is read
const maxErrorBody = 64 << 10

// ClientConfig configures the GoTrue client
type ClientConfig struct {
	BaseURL    string        // Supabase project URL
	ServiceKey string        // service role key
	Timeout    time.Duration // per-request timeout
	RedirectTo string        // optional password reset redirect
}

// Client talks to the Supabase GoTrue REST API
type Client struct {
	baseURL    string
	serviceKey string
	redirectTo string
	http       *http.Client
	logger     *logrus.Logger
}

// NewClient creates a GoTrue client. httpClient may be nil.
func NewClient(cfg ClientConfig, httpClient *http.Client, logger *logrus.Logger) (*Client, error) {
	if cfg.BaseURL == "" || cfg.ServiceKey == "" {
		return nil, ErrMisconfigured
	}
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid identity base URL: %w", err)
	}
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		serviceKey: cfg.ServiceKey,
		redirectTo: cfg.RedirectTo,
		http:       httpClient,
		logger:     logger,
	}, nil
}

// VerifyToken resolves the caller's access token through GET /auth/v1/user
func (c *Client) VerifyToken(ctx context.Context, token string) (*models.Account, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	var account models.Account
	if err := c.do(ctx, "verify_token", http.MethodGet, "/auth/v1/user", nil, token, nil, &account); err != nil {
		return nil, err
	}
	if account.ID == "" {
		return nil, ErrInvalidToken
	}

	return &account, nil
}

// CreateAccount implements AccountAdmin.CreateAccount
func (c *Client) CreateAccount(ctx context.Context, req *models.NewAccountRequest) (*models.Account, error) {
	var account models.Account
	if err := c.do(ctx, "create_account", http.MethodPost, "/auth/v1/admin/users", nil, c.serviceKey, req, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// DeleteAccount implements AccountAdmin.DeleteAccount
func (c *Client) DeleteAccount(ctx context.Context, id string) error {
	path := "/auth/v1/admin/users/" + url.PathEscape(id)
	return c.do(ctx, "delete_account", http.MethodDelete, path, nil, c.serviceKey, nil, nil)
}

// ListAccounts implements AccountAdmin.ListAccounts
func (c *Client) ListAccounts(ctx context.Context, page, perPage int) ([]*models.Account, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("per_page", strconv.Itoa(perPage))

	var response struct {
		Users []*models.Account `json:"users"`
	}
	if err := c.do(ctx, "list_accounts", http.MethodGet, "/auth/v1/admin/users", query, c.serviceKey, nil, &response); err != nil {
		return nil, err
	}

	return response.Users, nil
}

// GetAccount implements AccountAdmin.GetAccount
func (c *Client) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	var account models.Account
	path := "/auth/v1/admin/users/" + url.PathEscape(id)
	if err := c.do(ctx, "get_account", http.MethodGet, path, nil, c.serviceKey, nil, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// SendPasswordReset implements AccountAdmin.SendPasswordReset
func (c *Client) SendPasswordReset(ctx context.Context, email string) error {
	var query url.Values
	if c.redirectTo != "" {
		query = url.Values{}
		query.Set("redirect_to", c.redirectTo)
	}

	body := map[string]string{"email": email}
	return c.do(ctx, "send_password_reset", http.MethodPost, "/auth/v1/recover", query, c.serviceKey, body, nil)
}

// do performs one request. Non-2xx responses become *ProviderError.
func (c *Client) do(ctx context.Context, operation, method, path string, query url.Values, bearer string, in, out interface{}) error {
	start := time.Now()

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", operation, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", operation, err)
	}
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.record(operation, method, path, 0, start, err)
		return fmt.Errorf("identity %s request failed: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		providerErr := decodeProviderError(resp)
		c.record(operation, method, path, resp.StatusCode, start, providerErr)
		return providerErr
	}

	c.record(operation, method, path, resp.StatusCode, start, nil)

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to decode %s response: %w", operation, err)
	}

	return nil
}

func (c *Client) record(operation, method, path string, status int, start time.Time, err error) {
	outcome := "ok"
	fields := logrus.Fields{
		"operation":   operation,
		"method":      method,
		"path":        path,
		"status_code": status,
		"duration":    time.Since(start),
	}

	switch {
	case err == nil:
		c.logger.WithFields(fields).Debug("Identity request completed")
	case IsRejected(err):
		outcome = "rejected"
		c.logger.WithFields(fields).WithError(err).Info("Identity request rejected")
	default:
		outcome = "error"
		c.logger.WithFields(fields).WithError(err).Warn("Identity request failed")
	}

	metrics.IdentityCallsTotal.WithLabelValues(operation, outcome).Inc()
}

// errorBody covers the error shapes GoTrue has used across versions
type errorBody struct {
	ErrorCode        string `json:"error_code"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	ErrorDescription string `json:"error_description"`
	Error            string `json:"error"`
}

func decodeProviderError(resp *http.Response) *ProviderError {
	providerErr := &ProviderError{Status: resp.StatusCode}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var body errorBody
	if err := json.Unmarshal(raw, &body); err == nil {
		providerErr.Code = firstNonEmpty(body.ErrorCode, body.Error)
		providerErr.Message = firstNonEmpty(body.Msg, body.Message, body.ErrorDescription, body.Error)
	}

	if providerErr.Message == "" {
		providerErr.Message = http.StatusText(resp.StatusCode)
	}

	return providerErr
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
