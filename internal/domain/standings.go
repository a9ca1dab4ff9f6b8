package domain

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BetTally is the per-user aggregate of bets in some scope, before ranking.
type BetTally struct {
	UserID   uuid.UUID
	Username string
	Active   bool
	Total    int
	Won      int
	Lost     int
	Pending  int
	Points   decimal.Decimal
}

// StandingRow is one ranked line of the leaderboard.
type StandingRow struct {
	Position    int             `json:"position"`
	UserID      uuid.UUID       `json:"user_id"`
	Username    string          `json:"username"`
	TotalBets   int             `json:"total_bets"`
	Won         int             `json:"won"`
	Lost        int             `json:"lost"`
	Pending     int             `json:"pending"`
	TotalPoints decimal.Decimal `json:"total_points"`
	AccuracyPct decimal.Decimal `json:"accuracy_pct"`
}

// StandingsQuery scopes a leaderboard.
type StandingsQuery struct {
	TournamentID    int64
	Jornada         *int
	IncludeInactive bool
}

var hundred = decimal.NewFromInt(100)

// Accuracy is 100*won/total rounded to two decimals, or zero without bets.
func Accuracy(won, total int) decimal.Decimal {
	if total == 0 {
		return decimal.Zero
	}
	return hundred.Mul(decimal.NewFromInt(int64(won))).Div(decimal.NewFromInt(int64(total))).Round(2)
}

// RankStandings orders tallies by points, then accuracy, then wins, and assigns
// positions 1..n. Exact ties keep their input order and still get distinct positions.
func RankStandings(tallies []BetTally) []StandingRow {
	rows := make([]StandingRow, len(tallies))
	for i, t := range tallies {
		rows[i] = StandingRow{
			UserID:      t.UserID,
			Username:    t.Username,
			TotalBets:   t.Total,
			Won:         t.Won,
			Lost:        t.Lost,
			Pending:     t.Pending,
			TotalPoints: t.Points,
			AccuracyPct: Accuracy(t.Won, t.Total),
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if c := a.TotalPoints.Cmp(b.TotalPoints); c != 0 {
			return c > 0
		}
		if c := a.AccuracyPct.Cmp(b.AccuracyPct); c != 0 {
			return c > 0
		}
		return a.Won > b.Won
	})

	for i := range rows {
		rows[i].Position = i + 1
	}
	return rows
}

// UserStats is a user's record across every tournament.
type UserStats struct {
	UserID      uuid.UUID       `json:"user_id"`
	TotalBets   int             `json:"total_bets"`
	Won         int             `json:"won"`
	Lost        int             `json:"lost"`
	Pending     int             `json:"pending"`
	TotalPoints decimal.Decimal `json:"total_points"`
	AccuracyPct decimal.Decimal `json:"accuracy_pct"`
}

// NewUserStats converts a tally into stats. A nil tally yields zero stats.
func NewUserStats(userID uuid.UUID, t *BetTally) UserStats {
	stats := UserStats{UserID: userID, TotalPoints: decimal.Zero, AccuracyPct: decimal.Zero}
	if t == nil {
		return stats
	}
	stats.TotalBets = t.Total
	stats.Won = t.Won
	stats.Lost = t.Lost
	stats.Pending = t.Pending
	stats.TotalPoints = t.Points
	stats.AccuracyPct = Accuracy(t.Won, t.Total)
	return stats
}

// UserBetsOverview is one user's bets in a tournament with their tally.
type UserBetsOverview struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	Active   bool      `json:"active"`
	Stats    UserStats `json:"stats"`
	Bets     []BetView `json:"bets"`
}

// JornadaScore is one user's settled points within one jornada.
type JornadaScore struct {
	Jornada  int
	UserID   uuid.UUID
	Username string
	Points   decimal.Decimal
	Won      int
}

// JornadaWinner is the top scorer of a jornada.
type JornadaWinner struct {
	Jornada  int             `json:"jornada"`
	UserID   uuid.UUID       `json:"user_id"`
	Username string          `json:"username"`
	Points   decimal.Decimal `json:"points"`
	Won      int             `json:"won"`
}

// PickJornadaWinners returns the highest scorer of each jornada, ordered by
// jornada. On equal points the score that appears first wins.
func PickJornadaWinners(scores []JornadaScore) []JornadaWinner {
	best := make(map[int]JornadaScore)
	var order []int
	for _, s := range scores {
		cur, ok := best[s.Jornada]
		if !ok {
			order = append(order, s.Jornada)
			best[s.Jornada] = s
			continue
		}
		if s.Points.GreaterThan(cur.Points) {
			best[s.Jornada] = s
		}
	}
	sort.Ints(order)

	winners := make([]JornadaWinner, 0, len(order))
	for _, j := range order {
		s := best[j]
		winners = append(winners, JornadaWinner{
			Jornada:  j,
			UserID:   s.UserID,
			Username: s.Username,
			Points:   s.Points,
			Won:      s.Won,
		})
	}
	return winners
}
