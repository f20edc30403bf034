package httpapi

import (
	"encoding/json"
	"net/http"

	coreerrors "github.com/flecs-run/edge-core/internal/errors"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// writeError maps a CoreError onto its declared HTTP status, falling
// back to 500 for anything else. The wire shape mirrors CoreError itself
// so a client can branch on code without parsing a message string.
func writeError(w http.ResponseWriter, err error) {
	status := coreerrors.HTTPStatus(err)
	ce := coreerrors.As(err)
	if ce == nil {
		writeJSON(w, status, map[string]any{"code": "INTERNAL", "message": err.Error()})
		return
	}
	writeJSON(w, status, map[string]any{
		"code":    ce.Code,
		"message": ce.Message,
		"details": ce.Details,
	})
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
