package server

import (
	"net/http"

	"github.com/isitlab/isitgame/internal/progression"
)

// handleNext is the "continue" entry point: where should this user pick up?
func handleNext(store Store, engine *progression.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := sessionFromRequest(r, store)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or missing session token")
			return
		}

		result := engine.ResolveNext(r.Context(), progression.Session{UserID: sess.UserID})
		writeJSON(w, http.StatusOK, progressionInfo(result))
	}
}
