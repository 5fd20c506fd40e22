package server

import (
	"errors"
	"math/rand"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/isitlab/isitgame/internal/round"
)

type PollSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Stage int    `json:"stage"`
	Level int    `json:"level"`
	Voted bool   `json:"voted"`
}

// WordInfo is one of the two classifiable words in presentation order.
type WordInfo struct {
	Key  string `json:"key"`
	Word string `json:"word"`
}

// PollViewResponse is everything the client needs to render one round. The
// two flips are coin-flipped once per view and held fixed for the round so
// the layout never shifts mid-round.
type PollViewResponse struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	PromptWord string      `json:"promptWord"`
	Stage      int         `json:"stage"`
	Level      int         `json:"level"`
	Words      [2]WordInfo `json:"words"`
	Buckets    [2]string   `json:"buckets"`
	WordFlip   bool        `json:"wordFlip"`
	SymbolFlip bool        `json:"symbolFlip"`
}

func handlePollList(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// The listing is public; the voted flag is only meaningful with a
		// session.
		var userID string
		if sess, err := sessionFromRequest(r, store); err == nil {
			userID = sess.UserID
		}

		polls, err := store.ListPolls(r.Context(), userID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, polls)
	}
}

func handlePollView(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pollID := chi.URLParam(r, "pollID")

		content, err := store.PollContent(r.Context(), pollID)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "poll not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		rnd := round.New(content.LeftWord, content.RightWord, rand.Intn(2) == 1, rand.Intn(2) == 1)

		resp := PollViewResponse{
			ID:         content.ID,
			Title:      content.Title,
			PromptWord: content.PromptWord,
			Stage:      content.Stage,
			Level:      content.Level,
		}
		wordSlots := rnd.WordSlots()
		bucketSlots := rnd.BucketSlots()
		for i := 0; i < 2; i++ {
			resp.Words[i] = WordInfo{Key: string(wordSlots[i]), Word: rnd.Word(wordSlots[i])}
			resp.Buckets[i] = string(bucketSlots[i])
		}
		resp.WordFlip = wordSlots[0] == round.Right
		resp.SymbolFlip = bucketSlots[0] == round.IT

		writeJSON(w, http.StatusOK, resp)
	}
}
