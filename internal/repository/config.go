package repository

import (
	"context"
	"fmt"
	"strconv"

	"github.com/quiniela/platform/internal/domain"
)

// betting_config keys.
const (
	keyBettingEnabled     = "betting_enabled"
	keyActiveTournamentID = "active_tournament_id"
	keyActiveJornada      = "active_jornada"
)

type configRepo struct{}

// NewConfigRepository returns a pgx-backed ConfigRepository over the
// betting_config key/value table.
func NewConfigRepository() ConfigRepository {
	return &configRepo{}
}

func (r *configRepo) GetWindow(ctx context.Context, db DBTX) (domain.BettingWindow, error) {
	rows, err := db.Query(ctx, `
		SELECT key, value FROM betting_config
		WHERE key IN ($1, $2, $3)`, keyBettingEnabled, keyActiveTournamentID, keyActiveJornada)
	if err != nil {
		return domain.BettingWindow{}, classify("get betting config", err)
	}
	defer rows.Close()

	values := make(map[string]string, 3)
	for rows.Next() {
		var key string
		var value *string
		if err := rows.Scan(&key, &value); err != nil {
			return domain.BettingWindow{}, classify("scan betting config", err)
		}
		if value != nil {
			values[key] = *value
		}
	}
	if err := rows.Err(); err != nil {
		return domain.BettingWindow{}, classify("get betting config", err)
	}

	return parseWindow(values)
}

func (r *configRepo) SaveWindow(ctx context.Context, db DBTX, w domain.BettingWindow) error {
	entries := map[string]*string{
		keyBettingEnabled:     strPtr(strconv.FormatBool(!w.Closed)),
		keyActiveTournamentID: nil,
		keyActiveJornada:      nil,
	}
	if w.TournamentID != nil {
		entries[keyActiveTournamentID] = strPtr(strconv.FormatInt(*w.TournamentID, 10))
	}
	if w.Jornada != nil {
		entries[keyActiveJornada] = strPtr(strconv.Itoa(*w.Jornada))
	}

	for key, value := range entries {
		_, err := db.Exec(ctx, `
			INSERT INTO betting_config (key, value, updated_at) VALUES ($1, $2, now())
			ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
			key, value)
		if err != nil {
			return classify("save betting config", err)
		}
	}
	return nil
}

// parseWindow reads the stored strings. A missing betting_enabled key means open.
func parseWindow(values map[string]string) (domain.BettingWindow, error) {
	var w domain.BettingWindow

	if v, ok := values[keyBettingEnabled]; ok {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return w, fmt.Errorf("parse %s=%q: %w", keyBettingEnabled, v, err)
		}
		w.Closed = !enabled
	}
	if v, ok := values[keyActiveTournamentID]; ok && v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return w, fmt.Errorf("parse %s=%q: %w", keyActiveTournamentID, v, err)
		}
		w.TournamentID = &id
	}
	if v, ok := values[keyActiveJornada]; ok && v != "" {
		j, err := strconv.Atoi(v)
		if err != nil {
			return w, fmt.Errorf("parse %s=%q: %w", keyActiveJornada, v, err)
		}
		w.Jornada = &j
	}
	return w, nil
}

func strPtr(s string) *string { return &s }
