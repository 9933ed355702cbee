package repository

import (
	"context"

	"github.com/spec-kit/service-marketplace/internal/domain"
)

// UserRepository defines persistence access for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.UserAccount) error
	GetByTelephone(ctx context.Context, telephone string) (*domain.UserAccount, error)
	UpdatePIN(ctx context.Context, id, digest string) error
}

type userRepository struct {
	db DB
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(db DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.UserAccount) error {
	const query = `
        INSERT INTO users (first_name, surname, telephone, pin_digest, is_admin)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		user.FirstName,
		user.Surname,
		user.Telephone,
		user.PINDigest,
		user.IsAdmin,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	return mapPgError(err)
}

func (r *userRepository) GetByTelephone(ctx context.Context, telephone string) (*domain.UserAccount, error) {
	const query = `
        SELECT id, first_name, surname, telephone, pin_digest, is_admin, created_at, updated_at
        FROM users WHERE telephone=$1`

	var user domain.UserAccount
	if err := r.db.QueryRow(ctx, query, telephone).Scan(
		&user.ID,
		&user.FirstName,
		&user.Surname,
		&user.Telephone,
		&user.PINDigest,
		&user.IsAdmin,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, mapPgError(err)
	}
	return &user, nil
}

func (r *userRepository) UpdatePIN(ctx context.Context, id, digest string) error {
	const query = `
        UPDATE users SET pin_digest=$1, updated_at=NOW()
        WHERE id=$2`

	cmd, err := r.db.Exec(ctx, query, digest, id)
	if err != nil {
		return mapPgError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
