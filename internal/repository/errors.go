package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/quiniela/platform/internal/domain"
)

// SQLSTATE codes the repositories react to.
const (
	sqlStateUniqueViolation      = "23505"
	sqlStateForeignKeyViolation  = "23503"
	sqlStateCheckViolation       = "23514"
	sqlStateNumericOutOfRange    = "22003"
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
	sqlStateLockNotAvailable     = "55P03"
	sqlStateAdminShutdown        = "57P01"
	sqlStateCannotConnectNow     = "57P03"
)

const (
	betUniqueConstraint     = "bets_user_match_key"
	messageUniqueConstraint = "winner_messages_jornada_key"
)

// classify turns a pgx error into the AppError callers branch on. Errors that
// are neither a conflict nor transient are wrapped with op and left internal.
func classify(op string, err error) error {
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == sqlStateUniqueViolation && pgErr.ConstraintName == betUniqueConstraint:
			return domain.ErrConflict("a bet already exists for this user and match")
		case pgErr.Code == sqlStateUniqueViolation && pgErr.ConstraintName == messageUniqueConstraint:
			return domain.ErrConflict("this jornada already has a winner message")
		case pgErr.Code == sqlStateUniqueViolation:
			return domain.ErrConflict(fmt.Sprintf("%s: duplicate value for %s", op, pgErr.ConstraintName))
		case pgErr.Code == sqlStateForeignKeyViolation:
			return domain.ErrValidation(fmt.Sprintf("%s: unknown reference (%s)", op, pgErr.ConstraintName))
		case pgErr.Code == sqlStateCheckViolation:
			return domain.ErrValidation(fmt.Sprintf("%s: value rejected by %s", op, pgErr.ConstraintName))
		case pgErr.Code == sqlStateNumericOutOfRange:
			return domain.ErrValidation(fmt.Sprintf("%s: numeric value out of range", op))
		case pgErr.Code == sqlStateSerializationFailure,
			pgErr.Code == sqlStateDeadlockDetected,
			pgErr.Code == sqlStateLockNotAvailable,
			pgErr.Code == sqlStateAdminShutdown,
			pgErr.Code == sqlStateCannotConnectNow,
			strings.HasPrefix(pgErr.Code, "08"):
			return domain.ErrUnavailable(op, err)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) ||
		errors.Is(err, context.DeadlineExceeded) ||
		pgconn.Timeout(err) ||
		pgconn.SafeToRetry(err) {
		return domain.ErrUnavailable(op, err)
	}

	return fmt.Errorf("%s: %w", op, err)
}

// wrap is classify for errors that may be nil, such as rows.Err().
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return classify(op, err)
}
