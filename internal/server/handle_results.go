package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type OptionCount struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Votes int    `json:"votes"`
}

// PollResultsResponse is the "previous results" panel data: per-option vote
// counts for a poll.
type PollResultsResponse struct {
	PollID  string        `json:"pollId"`
	Title   string        `json:"title"`
	Total   int           `json:"total"`
	Options []OptionCount `json:"options"`
}

func handlePollResults(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pollID := chi.URLParam(r, "pollID")

		resp, err := store.PollResults(r.Context(), pollID)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "poll not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, resp)
	}
}
