package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/quiniela/platform/internal/domain"
)

type userRepo struct{}

// NewUserRepository returns a pgx-backed UserRepository.
func NewUserRepository() UserRepository {
	return &userRepo{}
}

func (r *userRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.User, error) {
	var u domain.User
	err := db.QueryRow(ctx, `
		SELECT id, username, role, active, can_bet
		FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.Username, &u.Role, &u.Active, &u.CanBet)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, classify("get user", err)
	}
	return &u, nil
}
