package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestComputeMetrics(t *testing.T) {
	tests := []struct {
		name  string
		stats []voteStat
		want  MetricsResponse
	}{
		{
			name: "no votes",
			want: MetricsResponse{},
		},
		{
			name: "all correct",
			stats: []voteStat{
				{PollID: "p1", IsCorrect: true, Points: 2, MaxPoints: 2},
				{PollID: "p2", IsCorrect: true, Points: 4, MaxPoints: 4},
			},
			want: MetricsResponse{PollsTaken: 2, Score: 6, AQ: 100},
		},
		{
			name: "half wrong",
			stats: []voteStat{
				{PollID: "p1", IsCorrect: true, Points: 2, MaxPoints: 2},
				{PollID: "p2", IsCorrect: false, Points: 0, MaxPoints: 2},
			},
			// ratio 0.5, dq 0.5: 50 / 1.5 rounds to 33.
			want: MetricsResponse{PollsTaken: 2, PollsIncorrect: 1, DQ: 0.5, Score: 2, AQ: 33},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := computeMetrics(tt.stats)
			if got != tt.want {
				t.Errorf("computeMetrics() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	r := setupRouter(t)
	token := login(t, r)

	// p-honesty's designated side is IS: placing the left word (HONESTY) on
	// IS is correct and worth 2 points at stage 1, level 1.
	vote(t, r, token, "p-honesty", VoteRequest{Item: "left", Bucket: "IS", Slot: 0})
	// p-courage's designated side is IT: choosing IS is wrong.
	vote(t, r, token, "p-courage", VoteRequest{Item: "left", Bucket: "IS", Slot: 0})

	req := httptest.NewRequest(http.MethodGet, "/api/me/metrics", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var m MetricsResponse
	json.NewDecoder(w.Body).Decode(&m)

	if m.PollsTaken != 2 || m.PollsIncorrect != 1 {
		t.Errorf("taken/incorrect = %d/%d, want 2/1", m.PollsTaken, m.PollsIncorrect)
	}
	if m.Score != 2 {
		t.Errorf("score = %d, want 2", m.Score)
	}
	if m.DQ != 0.5 {
		t.Errorf("dq = %v, want 0.5", m.DQ)
	}
	if m.AQ != 33 {
		t.Errorf("aq = %d, want 33", m.AQ)
	}
}

func TestMetricsRequiresSession(t *testing.T) {
	r := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/me/metrics", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}
