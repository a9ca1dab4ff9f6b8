package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/quiniela/platform/internal/domain"
)

// DBTX abstracts pgx.Tx and pgxpool.Pool so repositories work with both.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// Transactor runs a unit of work inside one database transaction. If fn
// returns an error nothing it wrote is kept.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error
}

// RowLock selects the row lock taken by a read.
type RowLock int

const (
	LockNone RowLock = iota
	// LockShare blocks writers of the row until the transaction ends.
	LockShare
	// LockUpdate blocks readers taking locks and writers.
	LockUpdate
)

// MatchRepository reads fixtures owned by the match-management side.
type MatchRepository interface {
	// Get returns a match by ID, or nil if it does not exist.
	Get(ctx context.Context, db DBTX, id int64, lock RowLock) (*domain.Match, error)

	// ListByJornada returns the matches of one fixture date, ordered by kickoff then id.
	ListByJornada(ctx context.Context, db DBTX, tournamentID int64, jornada int) ([]domain.Match, error)

	// ListWithBetCounts is ListByJornada plus per-match bet counts.
	ListWithBetCounts(ctx context.Context, db DBTX, tournamentID int64, jornada int) ([]domain.FixtureMatch, error)

	// ListOpen returns the SCHEDULED matches with a full set of three active odds
	// on which the user has no bet, narrowed to a tournament and jornada when given.
	// Ordered by kickoff then id.
	ListOpen(ctx context.Context, db DBTX, userID uuid.UUID, tournamentID *int64, jornada *int) ([]domain.Match, error)

	// ResetResults clears goals and forces SCHEDULED on every match of a fixture date.
	ResetResults(ctx context.Context, db DBTX, tournamentID int64, jornada int) (int64, error)
}

// TournamentRepository reads tournaments.
type TournamentRepository interface {
	// FindByID returns a tournament, or nil if it does not exist.
	FindByID(ctx context.Context, db DBTX, id int64) (*domain.Tournament, error)
}

// OddsRepository reads and replaces the active odds of a match.
type OddsRepository interface {
	// FindActive returns the active odds for one outcome, or nil.
	FindActive(ctx context.Context, db DBTX, matchID int64, outcome domain.Outcome) (*domain.Odds, error)

	// ListActive returns the active odds of a match in HOME, DRAW, AWAY order.
	ListActive(ctx context.Context, db DBTX, matchID int64) ([]domain.Odds, error)

	// Replace deactivates the current odds of a match and inserts the given set.
	Replace(ctx context.Context, db DBTX, matchID int64, odds []domain.Odds) error
}

// BetRepository is the bet ledger.
type BetRepository interface {
	// Insert creates a bet. A second bet for the same (user, match) returns a Conflict AppError.
	Insert(ctx context.Context, db DBTX, bet *domain.Bet) error

	// Exists reports whether the user already has a bet on the match.
	Exists(ctx context.Context, db DBTX, userID uuid.UUID, matchID int64) (bool, error)

	// ListPendingForUpdate locks and returns the pending bets of a match.
	ListPendingForUpdate(ctx context.Context, db DBTX, matchID int64) ([]domain.Bet, error)

	// UpdateSettlement writes the state and points of a settled bet.
	UpdateSettlement(ctx context.Context, db DBTX, bet *domain.Bet) error

	// ResetByJornada reopens every bet of a fixture date regardless of state.
	ResetByJornada(ctx context.Context, db DBTX, tournamentID int64, jornada int) (int64, error)

	// DeleteForUser removes a user's bets in a tournament, optionally one jornada.
	DeleteForUser(ctx context.Context, db DBTX, userID uuid.UUID, tournamentID int64, jornada *int) (int64, error)

	// List returns bets matching the filter, newest first.
	List(ctx context.Context, db DBTX, filter BetFilter) ([]domain.BetView, error)

	// Tally aggregates bets per user for the filter, ordered by username.
	Tally(ctx context.Context, db DBTX, filter BetFilter) ([]domain.BetTally, error)

	// JornadaScores returns settled points per (jornada, user) in a tournament,
	// ordered by jornada then points descending.
	JornadaScores(ctx context.Context, db DBTX, tournamentID int64) ([]domain.JornadaScore, error)

	// UserScopes lists the tournaments and jornadas where a user has bets.
	UserScopes(ctx context.Context, db DBTX, userID uuid.UUID) ([]domain.UserScope, error)
}

// PointsHistoryRepository is the append-only record of awarded points.
type PointsHistoryRepository interface {
	// Append records the points of one winning settlement.
	Append(ctx context.Context, db DBTX, entry *domain.PointsHistoryEntry) error

	// DeleteByJornada removes the entries of every bet in a fixture date.
	DeleteByJornada(ctx context.Context, db DBTX, tournamentID int64, jornada int) (int64, error)

	// DeleteForUser removes a user's entries in a tournament, optionally one jornada.
	DeleteForUser(ctx context.Context, db DBTX, userID uuid.UUID, tournamentID int64, jornada *int) (int64, error)

	// ListByUser returns a user's entries, newest first.
	ListByUser(ctx context.Context, db DBTX, userID uuid.UUID) ([]domain.PointsHistoryEntry, error)
}

// UserRepository reads accounts owned by the auth service.
type UserRepository interface {
	// FindByID returns a user, or nil if unknown.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.User, error)
}

// ConfigRepository stores the betting window.
type ConfigRepository interface {
	GetWindow(ctx context.Context, db DBTX) (domain.BettingWindow, error)
	SaveWindow(ctx context.Context, db DBTX, w domain.BettingWindow) error
}

// WinnerMessageRepository stores the messages left by jornada winners.
type WinnerMessageRepository interface {
	// Insert stores a message. A second message for the same jornada returns a Conflict AppError.
	Insert(ctx context.Context, db DBTX, msg *domain.WinnerMessage) error

	// ListByTournament returns a tournament's messages ordered by jornada.
	ListByTournament(ctx context.Context, db DBTX, tournamentID int64) ([]domain.WinnerMessage, error)
}

// OutboxRepository provides access to the event_outbox table.
type OutboxRepository interface {
	// Insert writes an outbox event within the caller's transaction.
	Insert(ctx context.Context, db DBTX, draft domain.OutboxDraft) error

	// FetchUnpublished returns up to limit events in insertion order.
	FetchUnpublished(ctx context.Context, db DBTX, limit int) ([]domain.OutboxDraft, error)

	// MarkPublished removes relayed events by sequence id.
	MarkPublished(ctx context.Context, db DBTX, ids []int64) error
}
