package server

import (
	"context"
	"errors"

	"github.com/isitlab/isitgame/internal/progression"
)

var ErrNotFound = errors.New("not found")

type userSession struct {
	UserID string
	Email  string
}

type pollContent struct {
	ID          string
	Title       string
	PromptWord  string
	Stage       int
	Level       int
	LeftWord    string // word linked to the IS side (canonical order)
	RightWord   string // word linked to the IT side
	CorrectSide string
}

type voteStat struct {
	PollID    string
	IsCorrect bool
	Points    int
	MaxPoints int
}

type Store interface {
	progression.Store

	UserFromToken(ctx context.Context, token string) (userSession, error)
	UserByEmail(ctx context.Context, email string) (userID, passwordHash string, err error)
	CreateSession(ctx context.Context, userID string) (string, error)
	DeleteSession(ctx context.Context, sessionID string) error

	ListPolls(ctx context.Context, userID string) ([]PollSummary, error)
	PollContent(ctx context.Context, pollID string) (pollContent, error)
	PollResults(ctx context.Context, pollID string) (PollResultsResponse, error)
	VoteStats(ctx context.Context, userID string) ([]voteStat, error)
}
