package middleware

import (
	"net/http"
	"time"

	"github.com/flecs-run/edge-core/internal/model"
	"github.com/flecs-run/edge-core/internal/vault"
	"github.com/flecs-run/edge-core/pkg/logger"
)

// SessionCapture wraps an outbound HTTP transport to the upstream console
// client. Every response is inspected for an x-session-id header; when
// present it is written into the vault's secret pouch under an exclusive
// reservation. A missing or empty header is silently ignored; the
// response is always forwarded unchanged. This component owns no other
// state and retries nothing.
type SessionCapture struct {
	Next  http.RoundTripper
	Vault *vault.Vault
	Log   *logger.Logger
}

// NewSessionCapture wraps next, defaulting to http.DefaultTransport if nil.
func NewSessionCapture(next http.RoundTripper, v *vault.Vault, log *logger.Logger) *SessionCapture {
	if next == nil {
		next = http.DefaultTransport
	}
	return &SessionCapture{Next: next, Vault: v, Log: log}
}

func (s *SessionCapture) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := s.Next.RoundTrip(req)
	if err != nil {
		return resp, err
	}

	raw := resp.Header.Get("x-session-id")
	if raw == "" {
		return resp, nil
	}

	g := s.Vault.Reservation().ReserveSecretPouchMut().Grab()
	defer g.Release()
	g.Secrets.SetSessionID(model.SessionId{Value: raw, CapturedAt: time.Now()})
	return resp, nil
}
