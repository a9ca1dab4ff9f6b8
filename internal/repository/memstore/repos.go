package memstore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/quiniela/platform/internal/domain"
	"github.com/quiniela/platform/internal/repository"
	"github.com/shopspring/decimal"
)

type matchRepo struct{ s *Store }

func (r matchRepo) Get(_ context.Context, _ repository.DBTX, id int64, _ repository.RowLock) (*domain.Match, error) {
	if err := r.s.fault("Matches.Get"); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	m, ok := r.s.data.matches[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (r matchRepo) ListByJornada(_ context.Context, _ repository.DBTX, tournamentID int64, jornada int) ([]domain.Match, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.data.fixture(tournamentID, jornada), nil
}

func (r matchRepo) ListWithBetCounts(_ context.Context, _ repository.DBTX, tournamentID int64, jornada int) ([]domain.FixtureMatch, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.FixtureMatch
	for _, m := range r.s.data.fixture(tournamentID, jornada) {
		fm := domain.FixtureMatch{Match: m}
		for _, b := range r.s.data.bets {
			if b.MatchID != m.ID {
				continue
			}
			fm.TotalBets++
			if b.State == domain.BetPending {
				fm.PendingBets++
			}
		}
		out = append(out, fm)
	}
	return out, nil
}

func (r matchRepo) ListOpen(_ context.Context, _ repository.DBTX, userID uuid.UUID, tournamentID *int64, jornada *int) ([]domain.Match, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.Match
	for _, m := range r.s.data.matches {
		if m.State != domain.MatchScheduled {
			continue
		}
		if tournamentID != nil && m.TournamentID != *tournamentID {
			continue
		}
		if jornada != nil && m.Jornada != *jornada {
			continue
		}
		if _, bet := r.s.data.betKeys[betKey{userID: userID, matchID: m.ID}]; bet {
			continue
		}
		priced := make(map[domain.Outcome]bool, 3)
		for _, o := range r.s.data.odds[m.ID] {
			priced[o.Outcome] = true
		}
		if len(priced) != 3 {
			continue
		}
		out = append(out, m)
	}
	sortByKickoff(out)
	return out, nil
}

func (r matchRepo) ResetResults(_ context.Context, _ repository.DBTX, tournamentID int64, jornada int) (int64, error) {
	if err := r.s.fault("Matches.ResetResults"); err != nil {
		return 0, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, m := range r.s.data.fixture(tournamentID, jornada) {
		m.GoalsHome, m.GoalsAway = nil, nil
		m.State = domain.MatchScheduled
		r.s.data.matches[m.ID] = m
		n++
	}
	return n, nil
}

// fixture returns the matches of a jornada ordered by kickoff (unset last) then id.
func (st *state) fixture(tournamentID int64, jornada int) []domain.Match {
	var out []domain.Match
	for _, m := range st.matches {
		if m.TournamentID == tournamentID && m.Jornada == jornada {
			out = append(out, m)
		}
	}
	sortByKickoff(out)
	return out
}

// sortByKickoff orders matches by kickoff (unset last) then id.
func sortByKickoff(out []domain.Match) {
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].KickoffAt, out[j].KickoffAt
		switch {
		case a != nil && b != nil && !a.Equal(*b):
			return a.Before(*b)
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		}
		return out[i].ID < out[j].ID
	})
}

type tournamentRepo struct{ s *Store }

func (r tournamentRepo) FindByID(_ context.Context, _ repository.DBTX, id int64) (*domain.Tournament, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.data.tournaments[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

type oddsRepo struct{ s *Store }

func (r oddsRepo) FindActive(_ context.Context, _ repository.DBTX, matchID int64, outcome domain.Outcome) (*domain.Odds, error) {
	if err := r.s.fault("Odds.FindActive"); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, o := range r.s.data.odds[matchID] {
		if o.Outcome == outcome {
			return &o, nil
		}
	}
	return nil, nil
}

func (r oddsRepo) ListActive(_ context.Context, _ repository.DBTX, matchID int64) ([]domain.Odds, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.Odds
	for _, want := range domain.AllOutcomes() {
		for _, o := range r.s.data.odds[matchID] {
			if o.Outcome == want {
				out = append(out, o)
			}
		}
	}
	return out, nil
}

func (r oddsRepo) Replace(_ context.Context, _ repository.DBTX, matchID int64, odds []domain.Odds) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.matches[matchID]; !ok {
		return domain.ErrValidation(fmt.Sprintf("replace odds: unknown match %d", matchID))
	}
	now := time.Now()
	set := make([]domain.Odds, len(odds))
	for i, o := range odds {
		o.MatchID = matchID
		o.UpdatedAt = now
		set[i] = o
	}
	r.s.data.odds[matchID] = set
	return nil
}

type betRepo struct{ s *Store }

func (r betRepo) Insert(_ context.Context, _ repository.DBTX, bet *domain.Bet) error {
	if err := r.s.fault("Bets.Insert"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.users[bet.UserID]; !ok {
		return domain.ErrValidation("insert bet: unknown reference (bets_user_id_fkey)")
	}
	key := betKey{userID: bet.UserID, matchID: bet.MatchID}
	if _, dup := r.s.data.betKeys[key]; dup {
		return domain.ErrConflict("a bet already exists for this user and match")
	}
	r.s.data.bets[bet.ID] = *bet
	r.s.data.betKeys[key] = bet.ID
	return nil
}

func (r betRepo) Exists(_ context.Context, _ repository.DBTX, userID uuid.UUID, matchID int64) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.data.betKeys[betKey{userID: userID, matchID: matchID}]
	return ok, nil
}

func (r betRepo) ListPendingForUpdate(_ context.Context, _ repository.DBTX, matchID int64) ([]domain.Bet, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.Bet
	for _, b := range r.s.data.bets {
		if b.MatchID == matchID && b.State == domain.BetPending {
			out = append(out, b)
		}
	}
	sortBets(out)
	return out, nil
}

func (r betRepo) UpdateSettlement(_ context.Context, _ repository.DBTX, bet *domain.Bet) error {
	if err := r.s.fault("Bets.UpdateSettlement"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.data.bets[bet.ID]
	if !ok || cur.State != domain.BetPending {
		return domain.ErrInvalidState(fmt.Sprintf("bet %s is no longer pending", bet.ID))
	}
	cur.State = bet.State
	cur.PointsEarned = bet.PointsEarned
	r.s.data.bets[bet.ID] = cur
	return nil
}

func (r betRepo) ResetByJornada(_ context.Context, _ repository.DBTX, tournamentID int64, jornada int) (int64, error) {
	if err := r.s.fault("Bets.ResetByJornada"); err != nil {
		return 0, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inFixture := make(map[int64]bool)
	for _, m := range r.s.data.fixture(tournamentID, jornada) {
		inFixture[m.ID] = true
	}
	var n int64
	for id, b := range r.s.data.bets {
		if inFixture[b.MatchID] {
			b.Reopen()
			r.s.data.bets[id] = b
			n++
		}
	}
	return n, nil
}

func (r betRepo) DeleteForUser(_ context.Context, _ repository.DBTX, userID uuid.UUID, tournamentID int64, jornada *int) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f := repository.BetFilter{UserID: &userID, TournamentID: &tournamentID, Jornada: jornada}
	var n int64
	for id, b := range r.s.data.bets {
		if !r.s.data.matchesFilter(b, f) {
			continue
		}
		delete(r.s.data.bets, id)
		delete(r.s.data.betKeys, betKey{userID: b.UserID, matchID: b.MatchID})
		for hid, e := range r.s.data.history {
			if e.BetID == id {
				delete(r.s.data.history, hid)
			}
		}
		n++
	}
	return n, nil
}

func (r betRepo) List(_ context.Context, _ repository.DBTX, f repository.BetFilter) ([]domain.BetView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.BetView
	for _, b := range r.s.data.bets {
		if !r.s.data.matchesFilter(b, f) {
			continue
		}
		u, okU := r.s.data.users[b.UserID]
		m, okM := r.s.data.matches[b.MatchID]
		if !okU || !okM {
			continue
		}
		out = append(out, domain.BetView{
			Bet:        b,
			Username:   u.Username,
			HomeTeam:   m.HomeTeam,
			AwayTeam:   m.AwayTeam,
			MatchState: m.State,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.PlacedAt.Equal(b.PlacedAt) {
			return a.PlacedAt.After(b.PlacedAt)
		}
		return a.ID.String() < b.ID.String()
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r betRepo) Tally(_ context.Context, _ repository.DBTX, f repository.BetFilter) ([]domain.BetTally, error) {
	if err := r.s.fault("Bets.Tally"); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	byUser := make(map[uuid.UUID]*domain.BetTally)
	for _, b := range r.s.data.bets {
		if !r.s.data.matchesFilter(b, f) {
			continue
		}
		u, ok := r.s.data.users[b.UserID]
		if !ok {
			continue
		}
		t, ok := byUser[u.ID]
		if !ok {
			t = &domain.BetTally{UserID: u.ID, Username: u.Username, Active: u.Active, Points: decimal.Zero}
			byUser[u.ID] = t
		}
		t.Total++
		switch b.State {
		case domain.BetWon:
			t.Won++
			t.Points = t.Points.Add(b.PointsEarned)
		case domain.BetLost:
			t.Lost++
		case domain.BetPending:
			t.Pending++
		}
	}
	out := make([]domain.BetTally, 0, len(byUser))
	for _, t := range byUser {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r betRepo) JornadaScores(_ context.Context, _ repository.DBTX, tournamentID int64) ([]domain.JornadaScore, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	type key struct {
		jornada int
		userID  uuid.UUID
	}
	scores := make(map[key]*domain.JornadaScore)
	for _, b := range r.s.data.bets {
		if b.TournamentID != tournamentID || b.State == domain.BetPending {
			continue
		}
		u, ok := r.s.data.users[b.UserID]
		if !ok || !u.Active {
			continue
		}
		k := key{b.Jornada, u.ID}
		s, ok := scores[k]
		if !ok {
			s = &domain.JornadaScore{Jornada: b.Jornada, UserID: u.ID, Username: u.Username, Points: decimal.Zero}
			scores[k] = s
		}
		s.Points = s.Points.Add(b.PointsEarned)
		if b.State == domain.BetWon {
			s.Won++
		}
	}
	out := make([]domain.JornadaScore, 0, len(scores))
	for _, s := range scores {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Jornada != b.Jornada {
			return a.Jornada < b.Jornada
		}
		if c := a.Points.Cmp(b.Points); c != 0 {
			return c > 0
		}
		return a.Username < b.Username
	})
	return out, nil
}

func (r betRepo) UserScopes(_ context.Context, _ repository.DBTX, userID uuid.UUID) ([]domain.UserScope, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	jornadas := make(map[int64]map[int]bool)
	for _, b := range r.s.data.bets {
		if b.UserID != userID {
			continue
		}
		if jornadas[b.TournamentID] == nil {
			jornadas[b.TournamentID] = make(map[int]bool)
		}
		jornadas[b.TournamentID][b.Jornada] = true
	}
	out := make([]domain.UserScope, 0, len(jornadas))
	for tid, set := range jornadas {
		scope := domain.UserScope{TournamentID: tid, TournamentName: r.s.data.tournaments[tid].Name}
		for j := range set {
			scope.Jornadas = append(scope.Jornadas, j)
		}
		sort.Ints(scope.Jornadas)
		out = append(out, scope)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TournamentID < out[j].TournamentID })
	return out, nil
}

func (st *state) matchesFilter(b domain.Bet, f repository.BetFilter) bool {
	switch {
	case f.UserID != nil && b.UserID != *f.UserID,
		f.MatchID != nil && b.MatchID != *f.MatchID,
		f.TournamentID != nil && b.TournamentID != *f.TournamentID,
		f.Jornada != nil && b.Jornada != *f.Jornada,
		f.State != nil && b.State != *f.State:
		return false
	}
	if f.ActiveUsersOnly && !st.users[b.UserID].Active {
		return false
	}
	return true
}

func sortBets(bets []domain.Bet) {
	sort.Slice(bets, func(i, j int) bool {
		if !bets[i].PlacedAt.Equal(bets[j].PlacedAt) {
			return bets[i].PlacedAt.Before(bets[j].PlacedAt)
		}
		return bets[i].ID.String() < bets[j].ID.String()
	})
}

type historyRepo struct{ s *Store }

func (r historyRepo) Append(_ context.Context, _ repository.DBTX, e *domain.PointsHistoryEntry) error {
	if err := r.s.fault("PointsHistory.Append"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, cur := range r.s.data.history {
		if cur.BetID == e.BetID {
			return domain.ErrConflict("append points history: duplicate value for points_history_bet_id_key")
		}
	}
	r.s.data.history[e.ID] = *e
	return nil
}

func (r historyRepo) DeleteByJornada(_ context.Context, _ repository.DBTX, tournamentID int64, jornada int) (int64, error) {
	if err := r.s.fault("PointsHistory.DeleteByJornada"); err != nil {
		return 0, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inFixture := make(map[int64]bool)
	for _, m := range r.s.data.fixture(tournamentID, jornada) {
		inFixture[m.ID] = true
	}
	var n int64
	for id, e := range r.s.data.history {
		b, ok := r.s.data.bets[e.BetID]
		if ok && inFixture[b.MatchID] {
			delete(r.s.data.history, id)
			n++
		}
	}
	return n, nil
}

func (r historyRepo) DeleteForUser(_ context.Context, _ repository.DBTX, userID uuid.UUID, tournamentID int64, jornada *int) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f := repository.BetFilter{UserID: &userID, TournamentID: &tournamentID, Jornada: jornada}
	var n int64
	for id, e := range r.s.data.history {
		b, ok := r.s.data.bets[e.BetID]
		if ok && r.s.data.matchesFilter(b, f) {
			delete(r.s.data.history, id)
			n++
		}
	}
	return n, nil
}

func (r historyRepo) ListByUser(_ context.Context, _ repository.DBTX, userID uuid.UUID) ([]domain.PointsHistoryEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.PointsHistoryEntry
	for _, e := range r.s.data.history {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

type userRepo struct{ s *Store }

func (r userRepo) FindByID(_ context.Context, _ repository.DBTX, id uuid.UUID) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.data.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

type messageKey struct {
	tournamentID int64
	jornada      int
}

type winnerMessageRepo struct{ s *Store }

func (r winnerMessageRepo) Insert(_ context.Context, _ repository.DBTX, msg *domain.WinnerMessage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.users[msg.UserID]; !ok {
		return domain.ErrValidation("insert winner message: unknown reference (winner_messages_user_id_fkey)")
	}
	key := messageKey{tournamentID: msg.TournamentID, jornada: msg.Jornada}
	if _, dup := r.s.data.messages[key]; dup {
		return domain.ErrConflict("this jornada already has a winner message")
	}
	r.s.data.messages[key] = *msg
	return nil
}

func (r winnerMessageRepo) ListByTournament(_ context.Context, _ repository.DBTX, tournamentID int64) ([]domain.WinnerMessage, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.WinnerMessage
	for k, m := range r.s.data.messages {
		if k.tournamentID != tournamentID {
			continue
		}
		u, ok := r.s.data.users[m.UserID]
		if !ok {
			continue
		}
		m.Username = u.Username
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Jornada < out[j].Jornada })
	return out, nil
}

type configRepo struct{ s *Store }

func (r configRepo) GetWindow(context.Context, repository.DBTX) (domain.BettingWindow, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.data.window, nil
}

func (r configRepo) SaveWindow(_ context.Context, _ repository.DBTX, w domain.BettingWindow) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.data.window = w
	return nil
}

type outboxRepo struct{ s *Store }

func (r outboxRepo) Insert(_ context.Context, _ repository.DBTX, draft domain.OutboxDraft) error {
	if err := r.s.fault("Outbox.Insert"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.data.outboxSeq++
	draft.SeqID = r.s.data.outboxSeq
	r.s.data.outbox = append(r.s.data.outbox, draft)
	return nil
}

func (r outboxRepo) FetchUnpublished(_ context.Context, _ repository.DBTX, limit int) ([]domain.OutboxDraft, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := len(r.s.data.outbox)
	if limit > 0 && limit < n {
		n = limit
	}
	return append([]domain.OutboxDraft(nil), r.s.data.outbox[:n]...), nil
}

func (r outboxRepo) MarkPublished(_ context.Context, _ repository.DBTX, ids []int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	done := make(map[int64]bool, len(ids))
	for _, id := range ids {
		done[id] = true
	}
	kept := r.s.data.outbox[:0]
	for _, d := range r.s.data.outbox {
		if !done[d.SeqID] {
			kept = append(kept, d)
		}
	}
	r.s.data.outbox = kept
	return nil
}
