package httputil

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/teamline/teamline/internal/logging"
	"go.uber.org/zap"
)

type HTTPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// WriteError logs err through the request logger and writes it as a JSON
// error body.
func WriteError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	logging.FromContext(ctx).Error("request failed", zap.Int("status", status), zap.Error(err))
	WriteJSON(w, status, HTTPError{Code: status, Message: err.Error()})
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
