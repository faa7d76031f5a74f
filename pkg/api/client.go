package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is an HTTP client for a BlockTrust trust server. It retries
// transport-level failures; application errors are returned as-is.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	config     clientConfig
}

// ClientOption configures client behavior.
type ClientOption func(*clientConfig)

type clientConfig struct {
	timeout    time.Duration
	maxRetries int
	retryDelay time.Duration
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *clientConfig) {
		c.timeout = timeout
	}
}

// WithMaxRetries sets the maximum number of retry attempts for failed requests.
func WithMaxRetries(maxRetries int) ClientOption {
	return func(c *clientConfig) {
		c.maxRetries = maxRetries
	}
}

// WithRetryDelay sets the delay between retry attempts.
func WithRetryDelay(delay time.Duration) ClientOption {
	return func(c *clientConfig) {
		c.retryDelay = delay
	}
}

// NewClient creates a client for the trust server at baseURL. token may be
// empty for clients that only call the public verification endpoints.
func NewClient(baseURL, token string, opts ...ClientOption) (*Client, error) {
	config := clientConfig{
		timeout:    15 * time.Second,
		maxRetries: 3,
		retryDelay: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(&config)
	}

	if baseURL == "" {
		return nil, fmt.Errorf("server URL is required")
	}

	return &Client{
		httpClient: &http.Client{Timeout: config.timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		config:     config,
	}, nil
}

// SetToken replaces the bearer token used for authenticated calls.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Login exchanges operator credentials for an access token and installs it
// on the client.
func (c *Client) Login(ctx context.Context, username, password string) (*TokenRsp, error) {
	var rsp TokenRsp
	err := c.do(ctx, http.MethodPost, "/auth/token", TokenRequest{Username: username, Password: password}, &rsp)
	if err != nil {
		return nil, err
	}
	c.token = rsp.Token
	return &rsp, nil
}

// CreateEntity onboards an entity with a pending certificate.
func (c *Client) CreateEntity(ctx context.Context, req *CreateEntityRequest) (*CreateEntityRsp, error) {
	var rsp CreateEntityRsp
	if err := c.do(ctx, http.MethodPost, "/entities", req, &rsp); err != nil {
		return nil, err
	}
	return &rsp, nil
}

// GetEntity fetches an entity by ID.
func (c *Client) GetEntity(ctx context.Context, entityID string) (*EntityRsp, error) {
	var rsp EntityRsp
	if err := c.do(ctx, http.MethodGet, "/entities/"+url.PathEscape(entityID), nil, &rsp); err != nil {
		return nil, err
	}
	return &rsp, nil
}

// ActivateCertificate activates a pending certificate and returns its
// identity badge signature.
func (c *Client) ActivateCertificate(ctx context.Context, certID string, req *ActivateCertificateRequest) (*ActivateCertificateRsp, error) {
	var rsp ActivateCertificateRsp
	if err := c.do(ctx, http.MethodPost, "/certificates/"+url.PathEscape(certID)+"/activate", req, &rsp); err != nil {
		return nil, err
	}
	return &rsp, nil
}

// RevokeCertificate revokes a certificate and all of its signatures.
func (c *Client) RevokeCertificate(ctx context.Context, certID, reason string) error {
	return c.do(ctx, http.MethodPost, "/certificates/"+url.PathEscape(certID)+"/revoke", RevokeRequest{Reason: reason}, nil)
}

// Sign signs free-form content under a certificate.
func (c *Client) Sign(ctx context.Context, req *SignRequest) (*SignatureRsp, error) {
	var rsp SignatureRsp
	if err := c.do(ctx, http.MethodPost, "/v2/sign", req, &rsp); err != nil {
		return nil, err
	}
	return &rsp, nil
}

// Issue signs a structured email context.
func (c *Client) Issue(ctx context.Context, req *IssueRequest) (*SignatureRsp, error) {
	var rsp SignatureRsp
	if err := c.do(ctx, http.MethodPost, "/v2/issue", req, &rsp); err != nil {
		return nil, err
	}
	return &rsp, nil
}

// Verify runs the public hash-prefix verification flow.
func (c *Client) Verify(ctx context.Context, jti, hash string) (*VerdictRsp, error) {
	path := "/v2/verify/" + url.PathEscape(jti)
	if hash != "" {
		path += "?h=" + url.QueryEscape(hash)
	}
	var rsp VerdictRsp
	if err := c.do(ctx, http.MethodGet, path, nil, &rsp); err != nil {
		return nil, err
	}
	return &rsp, nil
}

// VerifyContext runs the full-context verification flow.
func (c *Client) VerifyContext(ctx context.Context, req *VerifyContextRequest) (*VerdictRsp, error) {
	var rsp VerdictRsp
	if err := c.do(ctx, http.MethodPost, "/v2/verify", req, &rsp); err != nil {
		return nil, err
	}
	return &rsp, nil
}

// RevokeSignature revokes a single signature.
func (c *Client) RevokeSignature(ctx context.Context, jti string) error {
	return c.do(ctx, http.MethodPost, "/signatures/"+url.PathEscape(jti)+"/revoke", nil, nil)
}

// GetVerificationEvents lists the verification trail of a signature.
func (c *Client) GetVerificationEvents(ctx context.Context, jti string) ([]VerificationEventRsp, error) {
	var rsp []VerificationEventRsp
	if err := c.do(ctx, http.MethodGet, "/signatures/"+url.PathEscape(jti)+"/events", nil, &rsp); err != nil {
		return nil, err
	}
	return rsp, nil
}

func (c *Client) do(ctx context.Context, method, path string, reqBody, rspBody any) error {
	var payload []byte
	if reqBody != nil {
		var err error
		payload, err = json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	var lastErr error
	for i := 0; i < c.config.maxRetries; i++ {
		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			time.Sleep(c.config.retryDelay)
			continue
		}

		err = decodeResponse(resp, rspBody)
		resp.Body.Close()
		return err
	}

	return fmt.Errorf("request failed after %d retries: %w", c.config.maxRetries, lastErr)
}

func decodeResponse(resp *http.Response, rspBody any) error {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		var errRsp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &errRsp) == nil && errRsp.Error != "" {
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, errRsp.Error)
		}
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(respBody))
	}
	if rspBody == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(rspBody); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
