package server

import (
	"context"
	"database/sql"
	"errors"

	"github.com/isitlab/isitgame/internal/progression"
	"github.com/isitlab/isitgame/internal/round"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) UserFromToken(ctx context.Context, token string) (userSession, error) {
	var sess userSession
	err := s.db.QueryRowContext(ctx, `
		SELECT u.id, u.email
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.id = ?
	`, token).Scan(&sess.UserID, &sess.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return sess, errNoSession
	}
	return sess, err
}

func (s *SQLiteStore) UserByEmail(ctx context.Context, email string) (string, string, error) {
	var userID, passwordHash string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, password_hash FROM users WHERE email = ?
	`, email).Scan(&userID, &passwordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", ErrNotFound
	}
	return userID, passwordHash, err
}

func (s *SQLiteStore) CreateSession(ctx context.Context, userID string) (string, error) {
	var sessionID string
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO sessions (user_id)
		VALUES (?)
		RETURNING id
	`, userID).Scan(&sessionID)
	return sessionID, err
}

func (s *SQLiteStore) DeleteSession(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, sessionID)
	return err
}

func (s *SQLiteStore) ListPolls(ctx context.Context, userID string) ([]PollSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.title, p.stage, p.level,
			EXISTS (SELECT 1 FROM poll_votes v WHERE v.poll_id = p.id AND v.user_id = ?)
		FROM polls p
		WHERE p.status = 'published'
		ORDER BY p.stage, p.level, p.position
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	polls := []PollSummary{}
	for rows.Next() {
		var p PollSummary
		var voted int
		if err := rows.Scan(&p.ID, &p.Title, &p.Stage, &p.Level, &voted); err != nil {
			return nil, err
		}
		p.Voted = voted == 1
		polls = append(polls, p)
	}
	return polls, rows.Err()
}

func (s *SQLiteStore) PollContent(ctx context.Context, pollID string) (pollContent, error) {
	var c pollContent
	var correct sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT p.id, p.title, p.prompt_word, p.stage, p.level, p.correct_side,
			i_is.word, i_it.word
		FROM polls p
		JOIN poll_items i_is ON i_is.poll_id = p.id AND i_is.side = 'IS'
		JOIN poll_items i_it ON i_it.poll_id = p.id AND i_it.side = 'IT'
		WHERE p.id = ? AND p.status = 'published'
	`, pollID).Scan(&c.ID, &c.Title, &c.PromptWord, &c.Stage, &c.Level, &correct, &c.LeftWord, &c.RightWord)
	if errors.Is(err, sql.ErrNoRows) {
		return c, ErrNotFound
	}
	if correct.Valid {
		c.CorrectSide = correct.String
	}
	return c, err
}

func (s *SQLiteStore) PollResults(ctx context.Context, pollID string) (PollResultsResponse, error) {
	var resp PollResultsResponse
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title FROM polls WHERE id = ?
	`, pollID).Scan(&resp.PollID, &resp.Title)
	if errors.Is(err, sql.ErrNoRows) {
		return resp, ErrNotFound
	}
	if err != nil {
		return resp, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT o.id, o.label,
			(SELECT COUNT(*) FROM poll_votes v WHERE v.option_id = o.id)
		FROM poll_options o
		WHERE o.poll_id = ?
		ORDER BY o.label
	`, pollID)
	if err != nil {
		return resp, err
	}
	defer rows.Close()

	resp.Options = []OptionCount{}
	for rows.Next() {
		var oc OptionCount
		if err := rows.Scan(&oc.ID, &oc.Label, &oc.Votes); err != nil {
			return resp, err
		}
		resp.Total += oc.Votes
		resp.Options = append(resp.Options, oc)
	}
	return resp, rows.Err()
}

func (s *SQLiteStore) VoteStats(ctx context.Context, userID string) ([]voteStat, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT v.poll_id, v.is_correct, v.points_earned,
			2 * max(1, p.stage) * max(1, p.level)
		FROM poll_votes v
		JOIN polls p ON p.id = v.poll_id
		WHERE v.user_id = ?
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []voteStat
	for rows.Next() {
		var st voteStat
		var correct int
		if err := rows.Scan(&st.PollID, &correct, &st.Points, &st.MaxPoints); err != nil {
			return nil, err
		}
		st.IsCorrect = correct == 1
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

func (s *SQLiteStore) PollRules(ctx context.Context, pollID string) (progression.PollRules, error) {
	var rules progression.PollRules
	var correct sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT correct_side, stage, level FROM polls WHERE id = ? AND status = 'published'
	`, pollID).Scan(&correct, &rules.Stage, &rules.Level)
	if errors.Is(err, sql.ErrNoRows) {
		return rules, ErrNotFound
	}
	if correct.Valid {
		rules.CorrectSide = round.Bucket(correct.String)
	}
	return rules, err
}

func (s *SQLiteStore) OptionID(ctx context.Context, pollID string, label round.Bucket) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM poll_options WHERE poll_id = ? AND label = ?
	`, pollID, string(label)).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return id, err
}

func (s *SQLiteStore) UpsertVote(ctx context.Context, v progression.Vote) error {
	isCorrect := 0
	if v.IsCorrect {
		isCorrect = 1
	}
	// The (poll_id, user_id) primary key collapses concurrent submissions
	// from the same user into one logical vote; the conflict clause makes a
	// resubmission overwrite the prior choice.
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO poll_votes (poll_id, user_id, option_id, is_correct, points_earned, voted_at)
		VALUES (?, ?, ?, ?, ?, strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
		ON CONFLICT (poll_id, user_id) DO UPDATE SET
			option_id = excluded.option_id,
			is_correct = excluded.is_correct,
			points_earned = excluded.points_earned,
			voted_at = excluded.voted_at
	`, v.PollID, v.UserID, v.OptionID, isCorrect, v.Points)
	return err
}

func (s *SQLiteStore) NextPollForUser(ctx context.Context, userID string) (progression.NextPoll, bool, error) {
	var np progression.NextPoll
	var nextStage, nextLevel int
	err := s.db.QueryRowContext(ctx, `
		SELECT p.id, p.stage, p.level
		FROM polls p
		WHERE p.status = 'published'
			AND NOT EXISTS (SELECT 1 FROM poll_votes v WHERE v.poll_id = p.id AND v.user_id = ?)
		ORDER BY p.stage, p.level, p.position
		LIMIT 1
	`, userID).Scan(&np.PollID, &nextStage, &nextLevel)
	if errors.Is(err, sql.ErrNoRows) {
		return progression.NextPoll{}, false, nil
	}
	if err != nil {
		return progression.NextPoll{}, false, err
	}

	// Boundary flags compare against the user's furthest voted poll. A user
	// with no votes yet is entering, not crossing.
	var lastStage, lastLevel int
	err = s.db.QueryRowContext(ctx, `
		SELECT p.stage, p.level
		FROM poll_votes v
		JOIN polls p ON p.id = v.poll_id
		WHERE v.user_id = ?
		ORDER BY p.stage DESC, p.level DESC, p.position DESC
		LIMIT 1
	`, userID).Scan(&lastStage, &lastLevel)
	if errors.Is(err, sql.ErrNoRows) {
		return np, true, nil
	}
	if err != nil {
		return progression.NextPoll{}, false, err
	}

	if nextStage > lastStage {
		np.CrossedStage = true
		np.NextStage = nextStage
	} else if nextStage == lastStage && nextLevel > lastLevel {
		np.CrossedLevel = true
		np.NextLevel = nextLevel
	}
	return np, true, nil
}
