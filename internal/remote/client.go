// Package remote binds the faucet's two transfer operations to a JSON/HTTP
// gateway sitting in front of the faucet service.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ledgerfaucet/internal/identity"
	"ledgerfaucet/internal/logging"
)

// API paths served by the gateway.
const (
	PathTransferLegacy   = "/api/v1/transfer/legacy"
	PathTransferStandard = "/api/v1/transfer/standard"
	PathAccount          = "/api/v1/account"
)

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 1 << 20

// LegacyTransferRequest is the body of PathTransferLegacy.
type LegacyTransferRequest struct {
	To string `json:"to"`
}

// StandardTransferRequest is the body of PathTransferStandard.
type StandardTransferRequest struct {
	Owner string `json:"owner"`
}

// TransferResponse is returned by both transfer paths on success.
type TransferResponse struct {
	Message    string `json:"message,omitempty"`
	BlockIndex uint64 `json:"block_index,omitempty"`
}

// AccountResponse is returned by PathAccount.
type AccountResponse struct {
	AccountIdentifier string `json:"account_identifier"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HTTPClient calls a faucet gateway over HTTP.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient creates a client. A zero timeout leaves requests bounded
// only by the caller's context.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the gateway root.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// TransferLegacy asks the faucet to send tokens on the legacy ledger to a
// principal or hex account identifier, passed through verbatim. It returns
// the faucet's confirmation text, which may be empty.
func (c *HTTPClient) TransferLegacy(ctx context.Context, identifier string) (string, error) {
	var resp TransferResponse
	if err := c.do(ctx, http.MethodPost, PathTransferLegacy, LegacyTransferRequest{To: identifier}, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// TransferStandard asks the faucet to send tokens on the token-standard
// ledger to owner.
func (c *HTTPClient) TransferStandard(ctx context.Context, owner identity.Principal) error {
	var resp TransferResponse
	return c.do(ctx, http.MethodPost, PathTransferStandard, StandardTransferRequest{Owner: owner.String()}, &resp)
}

// AccountIdentifier returns the faucet's own legacy account identifier.
func (c *HTTPClient) AccountIdentifier(ctx context.Context) (string, error) {
	var resp AccountResponse
	if err := c.do(ctx, http.MethodGet, PathAccount, nil, &resp); err != nil {
		return "", err
	}
	if resp.AccountIdentifier == "" {
		return "", fmt.Errorf("%w: empty account identifier", ErrDecode)
	}
	return resp.AccountIdentifier, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	log := logging.Get(logging.CategoryRemote)
	start := time.Now()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log.Debug("%s %s", method, path)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("%s %s failed after %v: %v", method, path, time.Since(start), err)
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", ErrTransport, err)
	}
	log.Debug("%s %s -> %d in %v", method, path, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return rejection(resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return nil
}

func rejection(status int, data []byte) error {
	var er ErrorResponse
	msg := ""
	if err := json.Unmarshal(data, &er); err == nil {
		msg = er.Error
	}
	if msg == "" {
		msg = strings.TrimSpace(string(data))
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &RejectedError{Status: status, Message: msg}
}
