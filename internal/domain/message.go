package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxWinnerMessageLen is the longest message a jornada winner may leave, in characters.
const MaxWinnerMessageLen = 100

// WinnerMessage is the note left by the top scorer of a jornada. There is at
// most one per jornada and it is never edited.
type WinnerMessage struct {
	TournamentID int64     `json:"tournament_id"`
	Jornada      int       `json:"jornada"`
	UserID       uuid.UUID `json:"user_id"`
	Username     string    `json:"username,omitempty"`
	Message      string    `json:"message"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewWinnerMessage trims text and checks it fits.
func NewWinnerMessage(tournamentID int64, jornada int, userID uuid.UUID, text string, now time.Time) (*WinnerMessage, error) {
	if tournamentID <= 0 {
		return nil, ErrValidation("tournament_id is required")
	}
	if jornada <= 0 {
		return nil, ErrValidation("jornada must be positive")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrValidation("message must not be empty")
	}
	if n := utf8.RuneCountInString(text); n > MaxWinnerMessageLen {
		return nil, ErrValidation(fmt.Sprintf("message is %d characters, at most %d allowed", n, MaxWinnerMessageLen))
	}
	return &WinnerMessage{
		TournamentID: tournamentID,
		Jornada:      jornada,
		UserID:       userID,
		Message:      text,
		CreatedAt:    now,
	}, nil
}

// WinnerOf returns the winner of one jornada, if any.
func WinnerOf(winners []JornadaWinner, jornada int) (JornadaWinner, bool) {
	for _, w := range winners {
		if w.Jornada == jornada {
			return w, true
		}
	}
	return JornadaWinner{}, false
}
