package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/architeacher/svc-message-relay/internal/infrastructure"
)

const contentTypeJSON = "application/json"

// WriteJSON encodes body with the given status code.
func WriteJSON(w http.ResponseWriter, logger infrastructure.Logger, status int, body any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error().Err(err).Msg("failed to encode response")
	}
}

// Now is the response timestamp.
func Now() time.Time {
	return time.Now().UTC()
}
