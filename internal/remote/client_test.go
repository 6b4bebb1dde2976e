package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ledgerfaucet/internal/identity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const owner = "rdmx6-jaaaa-aaaah-qcaiq-cai"

func newServer(t *testing.T, h http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewHTTPClient(srv.URL+"/", 5*time.Second)
}

func TestTransferLegacy_Success(t *testing.T) {
	var got LegacyTransferRequest
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, PathTransferLegacy, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(TransferResponse{Message: "Transferred", BlockIndex: 7})
	})

	msg, err := c.TransferLegacy(context.Background(), "  verbatim  ")
	require.NoError(t, err)
	assert.Equal(t, "Transferred", msg)
	assert.Equal(t, "  verbatim  ", got.To)
}

func TestTransferLegacy_EmptyBody(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	msg, err := c.TransferLegacy(context.Background(), owner)
	require.NoError(t, err)
	assert.Empty(t, msg)
}

func TestTransferStandard_SendsPrincipalText(t *testing.T) {
	var got StandardTransferRequest
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathTransferStandard, r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{}`))
	})

	require.NoError(t, c.TransferStandard(context.Background(), identity.MustParse(owner)))
	assert.Equal(t, owner, got.Owner)
}

func TestTransfer_Rejected(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "Invalid identifier format: xyz"})
	})

	_, err := c.TransferLegacy(context.Background(), "xyz")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRejected))
	assert.False(t, errors.Is(err, ErrTransport))

	var rej *RejectedError
	require.True(t, errors.As(err, &rej))
	assert.Equal(t, http.StatusUnprocessableEntity, rej.Status)
	assert.Equal(t, "Invalid identifier format: xyz", rej.Message)
}

func TestTransfer_RejectedPlainText(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "ledger unavailable", http.StatusBadGateway)
	})

	err := c.TransferStandard(context.Background(), identity.MustParse(owner))
	var rej *RejectedError
	require.True(t, errors.As(err, &rej))
	assert.Equal(t, "ledger unavailable", rej.Message)
}

func TestTransfer_DecodeError(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message": 42`))
	})

	_, err := c.TransferLegacy(context.Background(), owner)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDecode))
}

func TestTransfer_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewHTTPClient(url, time.Second)
	_, err := c.TransferLegacy(context.Background(), owner)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransport))
}

func TestTransfer_ContextCanceled(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.TransferLegacy(ctx, owner)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransport))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestAccountIdentifier(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, PathAccount, r.URL.Path)
		_ = json.NewEncoder(w).Encode(AccountResponse{AccountIdentifier: "abcd"})
	})

	id, err := c.AccountIdentifier(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abcd", id)
}

func TestAccountIdentifier_Empty(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := c.AccountIdentifier(context.Background())
	assert.True(t, errors.Is(err, ErrDecode))
}

func TestNewHTTPClient_TrimsSlash(t *testing.T) {
	assert.Equal(t, "http://x", NewHTTPClient("http://x///", 0).BaseURL())
}
