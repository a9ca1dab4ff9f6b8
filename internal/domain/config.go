package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// BettingWindow is the betting configuration in force for a request: whether
// betting is open, and optionally which tournament and jornada it is open for.
// The zero value is an open window with no scope restriction.
type BettingWindow struct {
	Closed       bool   `json:"betting_closed"`
	TournamentID *int64 `json:"active_tournament_id,omitempty"`
	Jornada      *int   `json:"active_jornada,omitempty"`
}

// Admit checks that a match may take bets under this window.
func (w BettingWindow) Admit(m *Match) error {
	if w.Closed {
		return ErrBettingClosed("betting is currently closed")
	}
	if w.TournamentID != nil && *w.TournamentID != m.TournamentID {
		return ErrBettingClosed(fmt.Sprintf("match %d is not in the active tournament", m.ID))
	}
	if w.Jornada != nil && *w.Jornada != m.Jornada {
		return ErrBettingClosed(fmt.Sprintf("match %d is not in the active jornada", m.ID))
	}
	return nil
}

// User is the read model of an account as seen by the contest.
type User struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Role     string    `json:"role"`
	Active   bool      `json:"active"`
	CanBet   bool      `json:"can_bet"`
}

// UserScope lists the jornadas of one tournament where a user has bets.
type UserScope struct {
	TournamentID   int64  `json:"tournament_id"`
	TournamentName string `json:"tournament_name"`
	Jornadas       []int  `json:"jornadas"`
}
