package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/teamline/teamline/pkg/httputil"
	"go.uber.org/zap"
)

const eventsKeepAlive = 30 * time.Second

// handleEvents streams the caller's upload and schedule events as
// server-sent events until the client disconnects.
func (s *ApiService) handleEvents(w http.ResponseWriter, r *http.Request) {
	userID, _, err := sessionUser(r)
	if err != nil {
		httputil.WriteError(r.Context(), w, http.StatusUnauthorized, err)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		httputil.WriteError(r.Context(), w, http.StatusInternalServerError, errors.New("streaming unsupported"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := s.broadcaster.Subscribe(userID)
	defer s.broadcaster.Unsubscribe(userID, ch)

	keepAlive := time.NewTicker(eventsKeepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case evt, open := <-ch:
			if !open {
				return
			}
			data, err := json.Marshal(evt)
			if err != nil {
				s.log.Error("failed to encode event", zap.String("id", evt.ID), zap.Error(err))
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Type, data)
			flusher.Flush()
		case <-keepAlive.C:
			fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		}
	}
}
