//go:build integration

package testutil

import (
	"context"
	"time"
)

// CleanAll truncates the contest tables and restores the default betting window.
func (env *TestEnv) CleanAll() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, _ = env.Pool.Exec(ctx, `TRUNCATE TABLE
		winner_messages, points_history, bets, match_odds, matches, tournaments, users, event_outbox
		RESTART IDENTITY CASCADE`)
	_, _ = env.Pool.Exec(ctx, `
		UPDATE betting_config
		SET value = CASE key WHEN 'betting_enabled' THEN 'true' ELSE NULL END`)
}
