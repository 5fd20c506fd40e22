package progression

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/isitlab/isitgame/internal/round"
)

type fakeStore struct {
	rules     PollRules
	rulesErr  error
	optionErr error
	upsertErr error

	votes map[string]Vote // keyed by pollID+"/"+userID

	next    NextPoll
	hasNext bool
	nextErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{votes: make(map[string]Vote)}
}

func (f *fakeStore) PollRules(ctx context.Context, pollID string) (PollRules, error) {
	return f.rules, f.rulesErr
}

func (f *fakeStore) OptionID(ctx context.Context, pollID string, label round.Bucket) (string, error) {
	if f.optionErr != nil {
		return "", f.optionErr
	}
	return "opt-" + string(label), nil
}

func (f *fakeStore) UpsertVote(ctx context.Context, v Vote) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.votes[v.PollID+"/"+v.UserID] = v
	return nil
}

func (f *fakeStore) NextPollForUser(ctx context.Context, userID string) (NextPoll, bool, error) {
	return f.next, f.hasNext, f.nextErr
}

func newEngine(store Store) *Engine {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewEngine(store, logger, time.Second)
}

func resolvedAssignment(chosen round.Bucket) round.Assignment {
	r := round.New("HONESTY", "INTEGRITY", false, false)
	a, _ := r.Place(round.Left, chosen, 0)
	return a
}

func TestConfirmRecordsChosenBucket(t *testing.T) {
	store := newFakeStore()
	e := newEngine(store)

	err := e.Confirm(context.Background(), Session{UserID: "u1"}, "p1", resolvedAssignment(round.IS))
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}

	v, ok := store.votes["p1/u1"]
	if !ok {
		t.Fatal("expected a stored vote")
	}
	if v.OptionID != "opt-IS" {
		t.Errorf("option = %q, want opt-IS", v.OptionID)
	}
}

func TestConfirmOverwritesPriorVote(t *testing.T) {
	store := newFakeStore()
	e := newEngine(store)
	sess := Session{UserID: "u1"}

	if err := e.Confirm(context.Background(), sess, "p1", resolvedAssignment(round.IS)); err != nil {
		t.Fatalf("first confirm: %v", err)
	}
	if err := e.Confirm(context.Background(), sess, "p1", resolvedAssignment(round.IT)); err != nil {
		t.Fatalf("second confirm: %v", err)
	}

	if len(store.votes) != 1 {
		t.Fatalf("expected exactly one stored vote, got %d", len(store.votes))
	}
	if got := store.votes["p1/u1"].OptionID; got != "opt-IT" {
		t.Errorf("stored vote = %q, want the latest choice opt-IT", got)
	}
}

func TestConfirmRejectsAnonymous(t *testing.T) {
	e := newEngine(newFakeStore())

	err := e.Confirm(context.Background(), Session{}, "p1", resolvedAssignment(round.IS))
	if !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("err = %v, want ErrUnauthenticated", err)
	}
}

func TestConfirmRejectsUnresolvedAssignment(t *testing.T) {
	e := newEngine(newFakeStore())

	err := e.Confirm(context.Background(), Session{UserID: "u1"}, "p1", round.Assignment{})
	if !errors.Is(err, ErrUnresolved) {
		t.Errorf("err = %v, want ErrUnresolved", err)
	}
}

func TestConfirmScoresAgainstCorrectSide(t *testing.T) {
	store := newFakeStore()
	store.rules = PollRules{CorrectSide: round.IS, Stage: 2, Level: 3}
	e := newEngine(store)

	if err := e.Confirm(context.Background(), Session{UserID: "u1"}, "p1", resolvedAssignment(round.IS)); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	v := store.votes["p1/u1"]
	if !v.IsCorrect {
		t.Error("matching the designated side should be correct")
	}
	if v.Points != 12 {
		t.Errorf("points = %d, want 2*2*3 = 12", v.Points)
	}

	if err := e.Confirm(context.Background(), Session{UserID: "u2"}, "p1", resolvedAssignment(round.IT)); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	v = store.votes["p1/u2"]
	if v.IsCorrect || v.Points != 0 {
		t.Errorf("wrong side should earn nothing, got correct=%v points=%d", v.IsCorrect, v.Points)
	}
}

func TestConfirmUpsertFailureIsRetryable(t *testing.T) {
	store := newFakeStore()
	store.upsertErr = errors.New("connection reset")
	e := newEngine(store)

	err := e.Confirm(context.Background(), Session{UserID: "u1"}, "p1", resolvedAssignment(round.IS))
	if !errors.Is(err, ErrVoteFailed) {
		t.Fatalf("err = %v, want ErrVoteFailed", err)
	}
	if len(store.votes) != 0 {
		t.Error("no vote should be stored on failure")
	}
}

func TestResolveNextStageCrossing(t *testing.T) {
	store := newFakeStore()
	store.next = NextPoll{PollID: "p2", CrossedStage: true, NextStage: 2}
	store.hasNext = true
	e := newEngine(store)

	res := e.ResolveNext(context.Background(), Session{UserID: "u1"})
	if res.Next != "p2" {
		t.Errorf("next = %q, want p2", res.Next)
	}
	if res.CrossedStage == nil || *res.CrossedStage != 2 {
		t.Errorf("crossedStage = %v, want 2", res.CrossedStage)
	}
	if res.CrossedLevel != nil {
		t.Errorf("crossedLevel should be unset, got %v", *res.CrossedLevel)
	}
}

func TestResolveNextStageWinsOverLevel(t *testing.T) {
	store := newFakeStore()
	store.next = NextPoll{
		PollID:       "p2",
		CrossedStage: true, NextStage: 3,
		CrossedLevel: true, NextLevel: 1,
	}
	store.hasNext = true
	e := newEngine(store)

	res := e.ResolveNext(context.Background(), Session{UserID: "u1"})
	if res.CrossedStage == nil || *res.CrossedStage != 3 {
		t.Errorf("crossedStage = %v, want 3", res.CrossedStage)
	}
	if res.CrossedLevel != nil {
		t.Error("stage crossing must suppress the level flag")
	}
}

func TestResolveNextLevelCrossing(t *testing.T) {
	store := newFakeStore()
	store.next = NextPoll{PollID: "p5", CrossedLevel: true, NextLevel: 4}
	store.hasNext = true
	e := newEngine(store)

	res := e.ResolveNext(context.Background(), Session{UserID: "u1"})
	if res.CrossedLevel == nil || *res.CrossedLevel != 4 {
		t.Errorf("crossedLevel = %v, want 4", res.CrossedLevel)
	}
	if res.CrossedStage != nil {
		t.Error("crossedStage should be unset")
	}
}

func TestResolveNextNothingLeftReturnsListing(t *testing.T) {
	store := newFakeStore()
	e := newEngine(store)

	res := e.ResolveNext(context.Background(), Session{UserID: "u1"})
	if res.Next != "" {
		t.Errorf("next = %q, want empty (return to listing)", res.Next)
	}
	if res.CrossedStage != nil || res.CrossedLevel != nil {
		t.Error("no crossing flags expected without a next poll")
	}
}

func TestResolveNextLookupFailureDegradesToListing(t *testing.T) {
	store := newFakeStore()
	store.nextErr = errors.New("timeout")
	e := newEngine(store)

	res := e.ResolveNext(context.Background(), Session{UserID: "u1"})
	if res.Next != "" {
		t.Errorf("next = %q, want empty on lookup failure", res.Next)
	}
}
