package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flecs-run/edge-core/internal/vault"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestSessionCapture_StoresHeaderOnSuccess(t *testing.T) {
	v := vault.New()
	next := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		rec := httptest.NewRecorder()
		rec.Header().Set("x-session-id", "abc123")
		rec.WriteHeader(http.StatusOK)
		return rec.Result(), nil
	})
	capture := NewSessionCapture(next, v, nil)

	req := httptest.NewRequest(http.MethodGet, "http://example.invalid/", nil)
	resp, err := capture.RoundTrip(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	g := v.Reservation().ReserveSecretPouch().Grab()
	defer g.Release()
	sid, ok := g.Secrets.SessionID()
	require.True(t, ok)
	assert.Equal(t, "abc123", sid.Value)
}

func TestSessionCapture_IgnoresMissingHeader(t *testing.T) {
	v := vault.New()
	next := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		rec := httptest.NewRecorder()
		rec.WriteHeader(http.StatusOK)
		return rec.Result(), nil
	})
	capture := NewSessionCapture(next, v, nil)

	req := httptest.NewRequest(http.MethodGet, "http://example.invalid/", nil)
	_, err := capture.RoundTrip(req)
	require.NoError(t, err)

	g := v.Reservation().ReserveSecretPouch().Grab()
	defer g.Release()
	_, ok := g.Secrets.SessionID()
	assert.False(t, ok)
}
