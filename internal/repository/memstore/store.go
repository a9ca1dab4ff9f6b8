// Package memstore is an in-memory implementation of the repository
// interfaces. Transactions are serialized and roll back by restoring a
// snapshot, so service tests can observe atomicity without PostgreSQL.
package memstore

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/quiniela/platform/internal/domain"
	"github.com/quiniela/platform/internal/repository"
)

// ErrNoSQL is returned by the DBTX methods of a Store.
var ErrNoSQL = errors.New("memstore: raw SQL is not supported")

type betKey struct {
	userID  uuid.UUID
	matchID int64
}

type state struct {
	users       map[uuid.UUID]domain.User
	tournaments map[int64]domain.Tournament
	matches     map[int64]domain.Match
	odds        map[int64][]domain.Odds
	bets        map[uuid.UUID]domain.Bet
	betKeys     map[betKey]uuid.UUID
	history     map[uuid.UUID]domain.PointsHistoryEntry
	messages    map[messageKey]domain.WinnerMessage
	window      domain.BettingWindow
	outbox      []domain.OutboxDraft
	outboxSeq   int64
}

func newState() state {
	return state{
		users:       make(map[uuid.UUID]domain.User),
		tournaments: make(map[int64]domain.Tournament),
		matches:     make(map[int64]domain.Match),
		odds:        make(map[int64][]domain.Odds),
		bets:        make(map[uuid.UUID]domain.Bet),
		betKeys:     make(map[betKey]uuid.UUID),
		history:     make(map[uuid.UUID]domain.PointsHistoryEntry),
		messages:    make(map[messageKey]domain.WinnerMessage),
	}
}

func (s state) clone() state {
	c := newState()
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.tournaments {
		c.tournaments[k] = v
	}
	for k, v := range s.matches {
		c.matches[k] = v
	}
	for k, v := range s.odds {
		c.odds[k] = append([]domain.Odds(nil), v...)
	}
	for k, v := range s.bets {
		c.bets[k] = v
	}
	for k, v := range s.betKeys {
		c.betKeys[k] = v
	}
	for k, v := range s.history {
		c.history[k] = v
	}
	for k, v := range s.messages {
		c.messages[k] = v
	}
	c.window = s.window
	c.outbox = append([]domain.OutboxDraft(nil), s.outbox...)
	c.outboxSeq = s.outboxSeq
	return c
}

type fault struct {
	skip int
	err  error
}

// Store holds every table in memory.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	data state

	faultMu sync.Mutex
	faults  map[string]*fault
}

// New returns an empty store with an open betting window.
func New() *Store {
	return &Store{data: newState(), faults: make(map[string]*fault)}
}

// FailAfter makes the named repository operation succeed skip more times and
// then return err once.
func (s *Store) FailAfter(op string, skip int, err error) {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	s.faults[op] = &fault{skip: skip, err: err}
}

func (s *Store) fault(op string) error {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	f, ok := s.faults[op]
	if !ok {
		return nil
	}
	if f.skip > 0 {
		f.skip--
		return nil
	}
	delete(s.faults, op)
	return f.err
}

// WithinTx runs fn with exclusive access and restores the previous state if fn fails.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.DBTX) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.data.clone()
	s.mu.RUnlock()

	if err := fn(ctx, s); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// Exec implements repository.DBTX and always fails.
func (s *Store) Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, ErrNoSQL
}

// Query implements repository.DBTX and always fails.
func (s *Store) Query(context.Context, string, ...interface{}) (pgx.Rows, error) {
	return nil, ErrNoSQL
}

// QueryRow implements repository.DBTX and always fails.
func (s *Store) QueryRow(context.Context, string, ...interface{}) pgx.Row {
	return errRow{}
}

type errRow struct{}

func (errRow) Scan(...interface{}) error { return ErrNoSQL }

// Repository accessors.

func (s *Store) Matches() repository.MatchRepository                { return matchRepo{s} }
func (s *Store) Tournaments() repository.TournamentRepository       { return tournamentRepo{s} }
func (s *Store) Odds() repository.OddsRepository                    { return oddsRepo{s} }
func (s *Store) Bets() repository.BetRepository                     { return betRepo{s} }
func (s *Store) PointsHistory() repository.PointsHistoryRepository  { return historyRepo{s} }
func (s *Store) Users() repository.UserRepository                   { return userRepo{s} }
func (s *Store) Config() repository.ConfigRepository                { return configRepo{s} }
func (s *Store) Outbox() repository.OutboxRepository                { return outboxRepo{s} }
func (s *Store) WinnerMessages() repository.WinnerMessageRepository { return winnerMessageRepo{s} }

// Seeding and inspection helpers for tests.

func (s *Store) AddUser(u domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.users[u.ID] = u
}

func (s *Store) AddTournament(t domain.Tournament) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.tournaments[t.ID] = t
}

// AddMatch stores or replaces a match.
func (s *Store) AddMatch(m domain.Match) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.matches[m.ID] = m
}

// SetResult records a score and state for a match, as result entry would.
func (s *Store) SetResult(matchID int64, st domain.MatchState, goalsHome, goalsAway *int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.data.matches[matchID]
	m.State = st
	m.GoalsHome = goalsHome
	m.GoalsAway = goalsAway
	s.data.matches[matchID] = m
}

// Match returns a stored match.
func (s *Store) Match(id int64) (domain.Match, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.data.matches[id]
	return m, ok
}

// AllBets returns every bet ordered by placement time.
func (s *Store) AllBets() []domain.Bet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Bet, 0, len(s.data.bets))
	for _, b := range s.data.bets {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PlacedAt.Equal(out[j].PlacedAt) {
			return out[i].PlacedAt.Before(out[j].PlacedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

// AllHistory returns every points history entry ordered by bet id.
func (s *Store) AllHistory() []domain.PointsHistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.PointsHistoryEntry, 0, len(s.data.history))
	for _, e := range s.data.history {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BetID.String() < out[j].BetID.String() })
	return out
}

// Events returns the unpublished outbox events in insertion order.
func (s *Store) Events() []domain.OutboxDraft {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.OutboxDraft(nil), s.data.outbox...)
}
