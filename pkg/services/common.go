package services

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/teamline/teamline/internal/auth"
)

var errNoSession = errors.New("no session in request context")

// sessionUser returns the authenticated user's id and session claims.
func sessionUser(r *http.Request) (int64, *auth.Claims, error) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		return 0, nil, errNoSession
	}
	id, err := claims.UserID()
	if err != nil {
		return 0, nil, err
	}
	return id, claims, nil
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
