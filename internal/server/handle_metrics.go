package server

import (
	"math"
	"net/http"
)

// MetricsResponse summarizes a user's performance across every poll they
// have voted on. Score is the sum of earned points. DQ is the share of
// polls answered incorrectly; AQ scales earned-over-possible points to 100
// and dampens it by DQ, so a perfect record scores 100 and a perfect point
// haul with every poll wrong scores 50.
type MetricsResponse struct {
	PollsTaken     int     `json:"pollsTaken"`
	PollsIncorrect int     `json:"pollsIncorrect"`
	DQ             float64 `json:"dq"`
	Score          int     `json:"score"`
	AQ             int     `json:"aq"`
}

func handleMetrics(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := sessionFromRequest(r, store)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or missing session token")
			return
		}

		stats, err := store.VoteStats(r.Context(), sess.UserID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, computeMetrics(stats))
	}
}

func computeMetrics(stats []voteStat) MetricsResponse {
	var m MetricsResponse
	var possible int

	for _, st := range stats {
		m.PollsTaken++
		if !st.IsCorrect {
			m.PollsIncorrect++
		}
		m.Score += st.Points
		possible += st.MaxPoints
	}

	if m.PollsTaken > 0 {
		m.DQ = float64(m.PollsIncorrect) / float64(m.PollsTaken)
	}

	if possible > 0 {
		ratio := float64(m.Score) / float64(possible)
		aq := ratio * 100 / (1 + m.DQ)
		if aq > 100 {
			aq = 100
		}
		m.AQ = int(math.Round(aq))
	}
	return m
}
