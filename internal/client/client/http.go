package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/vault"
)

// Receipt describes a stored backup and a temporary link to download it.
type Receipt struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type idResponse struct {
	ID string `json:"id"`
}

type HTTPClient struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

var _ vault.Store = (*HTTPClient)(nil)

func NewHTTPClient(baseURL, token string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		token:      token,
	}
}

func (c *HTTPClient) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *HTTPClient) HasToken() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token != ""
}

func (c *HTTPClient) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if t := c.bearer(); t != "" {
		req.Header.Set("Authorization", "Bearer "+t)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= 500 {
			return fmt.Errorf("%w: %s", ErrUnavailable, resp.Status)
		}
		return fmt.Errorf("%w: %s", ErrUnexpectedResponse, resp.Status)
	}

	if resp.StatusCode >= 400 || !env.Success {
		return mapStatus(resp.StatusCode, env.Error)
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}
	return nil
}

func mapStatus(code int, msg string) error {
	switch code {
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", common.ErrorValidation, msg)
	case http.StatusUnauthorized:
		return common.ErrorUnauthenticated
	case http.StatusNotFound:
		if msg == common.ErrorUnauthorized.Error() {
			return common.ErrorUnauthorized
		}
		return common.ErrorNotFound
	case http.StatusConflict:
		return common.ErrorAlreadyExists
	}
	if code >= 500 {
		if msg == "" {
			msg = http.StatusText(code)
		}
		return fmt.Errorf("%w: %s", ErrUnavailable, msg)
	}
	return fmt.Errorf("%w: %d %s", ErrUnexpectedResponse, code, msg)
}

// Ping checks that the server is reachable. It needs no token.
func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil)
}

func (c *HTTPClient) GetSalt(ctx context.Context) (string, error) {
	var out struct {
		Salt string `json:"salt"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/vault/salt", nil, &out); err != nil {
		return "", err
	}
	return out.Salt, nil
}

func (c *HTTPClient) SetSalt(ctx context.Context, salt string) (string, error) {
	var out idResponse
	err := c.do(ctx, http.MethodPut, "/api/v1/vault/salt", map[string]string{"salt": salt}, &out)
	return out.ID, err
}

func (c *HTTPClient) GetVaultKey(ctx context.Context) (*vault.KeyCheck, error) {
	var out vault.KeyCheck
	if err := c.do(ctx, http.MethodGet, "/api/v1/vault/key", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) InitializeVaultKey(ctx context.Context, k vault.KeyCheck) (string, error) {
	var out idResponse
	err := c.do(ctx, http.MethodPut, "/api/v1/vault/key", k, &out)
	return out.ID, err
}

func (c *HTTPClient) ListCredentials(ctx context.Context) ([]vault.Record, error) {
	var out []vault.Record
	if err := c.do(ctx, http.MethodGet, "/api/v1/credentials", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) CreateCredential(ctx context.Context, f vault.RecordFields) (string, error) {
	var out idResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/credentials", f, &out)
	return out.ID, err
}

func (c *HTTPClient) UpdateCredential(ctx context.Context, id string, f vault.RecordFields) (string, error) {
	var out idResponse
	err := c.do(ctx, http.MethodPut, "/api/v1/credentials/"+url.PathEscape(id), f, &out)
	return out.ID, err
}

func (c *HTTPClient) DeleteCredential(ctx context.Context, id string) (string, error) {
	var out idResponse
	err := c.do(ctx, http.MethodDelete, "/api/v1/credentials/"+url.PathEscape(id), nil, &out)
	return out.ID, err
}

// ExportBackup asks the server to snapshot the vault into object storage.
func (c *HTTPClient) ExportBackup(ctx context.Context) (*Receipt, error) {
	var out Receipt
	if err := c.do(ctx, http.MethodPost, "/api/v1/backups", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
