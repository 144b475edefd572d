package stats

import (
	"context"
	"database/sql"
	"fmt"
)

// GameStats is the aggregate counter row for one user and game type.
// Individual sessions are never persisted.
type GameStats struct {
	GameType string `json:"game_type"`
	Played   int    `json:"played"`
	Won      int    `json:"won"`
}

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// Record bumps the counters for one finished game. Anonymous sessions
// pass an empty userID and are skipped.
func (r *Repo) Record(ctx context.Context, userID string, game string, won bool) error {
	if userID == "" {
		return nil
	}

	wonInc := 0
	if won {
		wonInc = 1
	}
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO game_stats (user_id, game_type, played, won)
		VALUES (?, ?, 1, ?)
		ON CONFLICT(user_id, game_type)
		DO UPDATE SET played = played + 1, won = won + excluded.won
	`, userID, game, wonInc)
	if err != nil {
		return fmt.Errorf("record stats: %w", err)
	}
	return nil
}

func (r *Repo) ForUser(ctx context.Context, userID string) ([]GameStats, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT game_type, played, won
		FROM game_stats
		WHERE user_id = ?
		ORDER BY game_type
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("stats for user: %w", err)
	}
	defer rows.Close()

	var out []GameStats
	for rows.Next() {
		var s GameStats
		if err := rows.Scan(&s.GameType, &s.Played, &s.Won); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("stats rows: %w", err)
	}
	return out, nil
}
