package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/isitlab/isitgame/internal/progression"
	"github.com/isitlab/isitgame/internal/round"
)

// VoteRequest carries the single placement gesture: which word was moved,
// onto which bucket, in which visual column. The server resolves the
// counterpart's bucket; the client never submits a full mapping.
type VoteRequest struct {
	Item   string `json:"item"`   // "left" or "right"
	Bucket string `json:"bucket"` // "IS" or "IT"
	Slot   int    `json:"slot"`   // 0 or 1
}

// AssignmentInfo is the resolved mapping echoed back to the client.
type AssignmentInfo struct {
	IS     string `json:"is"`
	IT     string `json:"it"`
	Chosen string `json:"chosen"`
}

// ProgressionInfo tells the client where to go after a recorded vote. An
// empty next with returnToList means the poll ladder is exhausted (or the
// next-poll lookup degraded); at most one crossing flag is set.
type ProgressionInfo struct {
	Next         string `json:"next,omitempty"`
	ReturnToList bool   `json:"returnToList"`
	CrossedStage *int   `json:"crossedStage,omitempty"`
	CrossedLevel *int   `json:"crossedLevel,omitempty"`
}

type VoteResponse struct {
	Recorded    bool            `json:"recorded"`
	Assignment  AssignmentInfo  `json:"assignment"`
	Progression ProgressionInfo `json:"progression"`
}

func handleVote(store Store, engine *progression.Engine, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := sessionFromRequest(r, store)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "sign in to vote")
			return
		}

		pollID := chi.URLParam(r, "pollID")

		var req VoteRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		content, err := store.PollContent(r.Context(), pollID)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "poll not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		// Rebuild the round server-side and resolve the gesture through the
		// same rule the widget uses: placing one word determines both.
		rnd := round.New(content.LeftWord, content.RightWord, false, false)
		assignment, ok := rnd.Place(round.Key(req.Item), round.Bucket(req.Bucket), req.Slot)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid placement gesture")
			return
		}

		err = engine.Confirm(r.Context(), progression.Session{UserID: sess.UserID}, pollID, assignment)
		switch {
		case errors.Is(err, progression.ErrUnauthenticated):
			writeError(w, http.StatusUnauthorized, "sign in to vote")
			return
		case errors.Is(err, progression.ErrUnresolved):
			writeError(w, http.StatusBadRequest, "assignment incomplete")
			return
		case errors.Is(err, progression.ErrVoteFailed):
			// Retryable: the round stays on screen, nothing advanced.
			writeError(w, http.StatusServiceUnavailable, "vote not recorded, please retry")
			return
		case err != nil:
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		broker.Publish(pollID, SSEEvent{Type: "vote_recorded", PollID: pollID})

		result := engine.ResolveNext(r.Context(), progression.Session{UserID: sess.UserID})

		writeJSON(w, http.StatusOK, VoteResponse{
			Recorded: true,
			Assignment: AssignmentInfo{
				IS:     assignment.IS,
				IT:     assignment.IT,
				Chosen: string(assignment.Chosen),
			},
			Progression: progressionInfo(result),
		})
	}
}

func progressionInfo(res progression.Result) ProgressionInfo {
	return ProgressionInfo{
		Next:         res.Next,
		ReturnToList: res.Next == "",
		CrossedStage: res.CrossedStage,
		CrossedLevel: res.CrossedLevel,
	}
}
