package repository

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/quiniela/platform/internal/domain"
)

// BetFilter narrows bet queries. Nil fields are not filtered on.
type BetFilter struct {
	UserID       *uuid.UUID
	MatchID      *int64
	TournamentID *int64
	Jornada      *int
	State        *domain.BetState
	// ActiveUsersOnly drops bets of deactivated accounts.
	ActiveUsersOnly bool
	// Limit caps List results; zero means no cap.
	Limit int
}

// whereBuilder accumulates AND-ed conditions with positional arguments.
type whereBuilder struct {
	clauses []string
	args    []interface{}
}

// add appends a condition whose single %d verb becomes the next $n placeholder.
func (w *whereBuilder) add(cond string, arg interface{}) {
	w.args = append(w.args, arg)
	w.clauses = append(w.clauses, fmt.Sprintf(cond, len(w.args)))
}

func (w *whereBuilder) addRaw(cond string) {
	w.clauses = append(w.clauses, cond)
}

// arg appends an argument without a condition and returns its placeholder.
func (w *whereBuilder) arg(v interface{}) string {
	w.args = append(w.args, v)
	return fmt.Sprintf("$%d", len(w.args))
}

func (w *whereBuilder) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(w.clauses, " AND ")
}

// build renders the filter against bets aliased b and users aliased u.
func (f BetFilter) build() *whereBuilder {
	w := &whereBuilder{}
	if f.UserID != nil {
		w.add("b.user_id = $%d", *f.UserID)
	}
	if f.MatchID != nil {
		w.add("b.match_id = $%d", *f.MatchID)
	}
	if f.TournamentID != nil {
		w.add("b.tournament_id = $%d", *f.TournamentID)
	}
	if f.Jornada != nil {
		w.add("b.jornada = $%d", *f.Jornada)
	}
	if f.State != nil {
		w.add("b.state = $%d", string(*f.State))
	}
	if f.ActiveUsersOnly {
		w.addRaw("u.active")
	}
	return w
}
