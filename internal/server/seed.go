package server

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

type seedPoll struct {
	id       string
	isWord   string
	itWord   string
	stage    int
	level    int
	position int
	correct  string
}

var demoPolls = []seedPoll{
	{id: "p-honesty", isWord: "HONESTY", itWord: "INTEGRITY", stage: 1, level: 1, position: 0, correct: "IS"},
	{id: "p-courage", isWord: "COURAGE", itWord: "BRAVERY", stage: 1, level: 1, position: 1, correct: "IT"},
	{id: "p-trust", isWord: "TRUST", itWord: "LOYALTY", stage: 1, level: 2, position: 0, correct: "IS"},
	{id: "p-wisdom", isWord: "WISDOM", itWord: "KNOWLEDGE", stage: 2, level: 1, position: 0, correct: ""},
}

// SeedDemo creates the demo user and a small staged poll ladder if the
// database has no users yet. Idempotent: does nothing otherwise.
func (s *SQLiteStore) SeedDemo(ctx context.Context, logger *slog.Logger) error {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return fmt.Errorf("counting users: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("demo1234"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing demo password: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash)
		VALUES ('u-demo', 'demo@isitgame.dev', ?)
	`, string(hash))
	if err != nil {
		return fmt.Errorf("creating demo user: %w", err)
	}

	for _, p := range demoPolls {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO polls (id, title, prompt_word, stage, level, position, status, correct_side)
			VALUES (?, ?, ?, ?, ?, ?, 'published', NULLIF(?, ''))
		`, p.id, p.isWord+" | "+p.itWord, p.isWord, p.stage, p.level, p.position, p.correct)
		if err != nil {
			return fmt.Errorf("creating poll %s: %w", p.id, err)
		}

		_, err = s.db.ExecContext(ctx, `
			INSERT INTO poll_items (poll_id, side, word) VALUES (?, 'IS', ?), (?, 'IT', ?)
		`, p.id, p.isWord, p.id, p.itWord)
		if err != nil {
			return fmt.Errorf("linking items for %s: %w", p.id, err)
		}

		_, err = s.db.ExecContext(ctx, `
			INSERT INTO poll_options (id, poll_id, label)
			VALUES (?, ?, 'IS'), (?, ?, 'IT')
		`, "o-"+p.id+"-is", p.id, "o-"+p.id+"-it", p.id)
		if err != nil {
			return fmt.Errorf("creating options for %s: %w", p.id, err)
		}
	}

	logger.Info("demo user and poll ladder seeded", "polls", len(demoPolls))
	return nil
}
