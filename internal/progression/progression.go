// Package progression turns a confirmed assignment into a durable vote and
// decides what the user should see next.
package progression

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/isitlab/isitgame/internal/round"
)

var (
	// ErrUnauthenticated is returned when a confirmation arrives without a
	// signed-in user. The caller is expected to redirect to sign-in.
	ErrUnauthenticated = errors.New("confirmation requires a signed-in user")

	// ErrUnresolved is returned when the assignment is not fully resolved.
	ErrUnresolved = errors.New("assignment is not fully resolved")

	// ErrVoteFailed wraps any store failure during confirmation. The vote was
	// not recorded; the caller should keep the user on the current poll so
	// the assignment can be retried as-is.
	ErrVoteFailed = errors.New("vote not recorded")
)

// Session identifies the confirming user. Passed explicitly so Confirm is a
// function of its inputs rather than of ambient auth state.
type Session struct {
	UserID string
}

// PollRules is what the engine needs to score a vote: the poll's designated
// correct side (empty when the poll has none) and its stage/level.
type PollRules struct {
	CorrectSide round.Bucket
	Stage       int
	Level       int
}

// Vote is the durable outcome handed to the store. The store enforces at
// most one row per (poll, user); a resubmission overwrites.
type Vote struct {
	PollID    string
	UserID    string
	OptionID  string
	IsCorrect bool
	Points    int
}

// NextPoll is the next-poll collaborator's answer.
type NextPoll struct {
	PollID       string
	CrossedStage bool
	NextStage    int
	CrossedLevel bool
	NextLevel    int
}

// Store is the persistence collaborator consumed by the engine.
type Store interface {
	PollRules(ctx context.Context, pollID string) (PollRules, error)
	OptionID(ctx context.Context, pollID string, label round.Bucket) (string, error)
	UpsertVote(ctx context.Context, v Vote) error
	NextPollForUser(ctx context.Context, userID string) (NextPoll, bool, error)
}

// Result is the progression outcome after a vote. Next is the poll to show,
// or empty to return the user to the poll listing. At most one of
// CrossedStage/CrossedLevel is set; it carries the new stage or level value.
type Result struct {
	Next         string
	CrossedStage *int
	CrossedLevel *int
}

type Engine struct {
	store   Store
	logger  *slog.Logger
	timeout time.Duration
}

func NewEngine(store Store, logger *slog.Logger, timeout time.Duration) *Engine {
	return &Engine{store: store, logger: logger, timeout: timeout}
}

// Confirm records the assignment as the user's vote for pollID. The option
// persisted is the bucket the moved word landed in. Store failures come back
// wrapped in ErrVoteFailed and leave no partial state: the caller's
// assignment is untouched and no next poll is computed.
func (e *Engine) Confirm(ctx context.Context, sess Session, pollID string, a round.Assignment) error {
	if sess.UserID == "" {
		return ErrUnauthenticated
	}
	if !a.Chosen.Valid() || a.IS == "" || a.IT == "" {
		return ErrUnresolved
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	rules, err := e.store.PollRules(ctx, pollID)
	if err != nil {
		return fmt.Errorf("%w: loading poll: %v", ErrVoteFailed, err)
	}

	optionID, err := e.store.OptionID(ctx, pollID, a.Chosen)
	if err != nil {
		return fmt.Errorf("%w: resolving option: %v", ErrVoteFailed, err)
	}

	v := Vote{
		PollID:   pollID,
		UserID:   sess.UserID,
		OptionID: optionID,
	}
	if rules.CorrectSide.Valid() {
		v.IsCorrect = a.Chosen == rules.CorrectSide
		if v.IsCorrect {
			v.Points = pointsFor(rules.Stage, rules.Level)
		}
	}

	if err := e.store.UpsertVote(ctx, v); err != nil {
		return fmt.Errorf("%w: %v", ErrVoteFailed, err)
	}
	return nil
}

// ResolveNext asks the next-poll collaborator where the user should go.
// A failed or empty lookup degrades to "return to listing": the vote has
// already succeeded, so the user must not be trapped on the current poll.
func (e *Engine) ResolveNext(ctx context.Context, sess Session) Result {
	if sess.UserID == "" {
		return Result{}
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	np, ok, err := e.store.NextPollForUser(ctx, sess.UserID)
	if err != nil {
		e.logger.Warn("next poll lookup failed, returning to listing", "user_id", sess.UserID, "error", err)
		return Result{}
	}
	if !ok || np.PollID == "" {
		return Result{}
	}

	res := Result{Next: np.PollID}
	// A stage change is the larger progression unit; it wins when both flags
	// could apply.
	switch {
	case np.CrossedStage:
		stage := np.NextStage
		res.CrossedStage = &stage
	case np.CrossedLevel:
		level := np.NextLevel
		res.CrossedLevel = &level
	}
	return res
}

func pointsFor(stage, level int) int {
	return 2 * max(1, stage) * max(1, level)
}
