package server

import (
	"errors"
	"net/http"
	"strings"
)

var errNoSession = errors.New("no valid session")

func sessionFromRequest(r *http.Request, store Store) (userSession, error) {
	auth := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(auth, "Bearer ")
	if !found || token == "" {
		return userSession{}, errNoSession
	}
	return store.UserFromToken(r.Context(), token)
}
