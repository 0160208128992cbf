package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tomstradingroom/funnel-server/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

type UserRepository struct {
	db *Connection
}

func NewUserRepository(db *Connection) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

// Upsert inserts a new identity record or merges identity fields into an
// existing one. Email always takes the incoming value; email_status is only
// set on first insert so unsubscribes survive later payment events.
func (r *UserRepository) Upsert(ctx context.Context, user model.User) (model.User, error) {
	query := `INSERT INTO users (whop_user_id, email, username, name, email_status, created_at, updated_at)
			  VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, now(), now())
			  ON CONFLICT (whop_user_id) DO UPDATE SET
			      email      = EXCLUDED.email,
			      username   = EXCLUDED.username,
			      name       = EXCLUDED.name,
			      updated_at = now()
			  RETURNING whop_user_id, email, COALESCE(username, ''), COALESCE(name, ''),
			            email_status, created_at, updated_at, unsubscribed_at`

	status := user.EmailStatus
	if status == "" {
		status = model.EmailStatusActive
	}

	var saved model.User
	err := r.db.QueryRow(ctx, query,
		user.WhopUserID, user.Email, user.Username, user.Name, status,
	).Scan(
		&saved.WhopUserID, &saved.Email, &saved.Username, &saved.Name,
		&saved.EmailStatus, &saved.CreatedAt, &saved.UpdatedAt, &saved.UnsubscribedAt,
	)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to upsert user: %w", err)
	}

	return saved, nil
}

func (r *UserRepository) GetByID(ctx context.Context, whopUserID string) (model.User, error) {
	var user model.User
	query := `SELECT whop_user_id, email, COALESCE(username, ''), COALESCE(name, ''),
			         email_status, created_at, updated_at, unsubscribed_at
			  FROM users WHERE whop_user_id = $1`

	err := r.db.QueryRow(ctx, query, whopUserID).Scan(
		&user.WhopUserID, &user.Email, &user.Username, &user.Name,
		&user.EmailStatus, &user.CreatedAt, &user.UpdatedAt, &user.UnsubscribedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	var user model.User
	query := `SELECT whop_user_id, email, COALESCE(username, ''), COALESCE(name, ''),
			         email_status, created_at, updated_at, unsubscribed_at
			  FROM users WHERE email = $1 LIMIT 1`

	err := r.db.QueryRow(ctx, query, email).Scan(
		&user.WhopUserID, &user.Email, &user.Username, &user.Name,
		&user.EmailStatus, &user.CreatedAt, &user.UpdatedAt, &user.UnsubscribedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// SetEmailStatus updates the subscription status for an email address. The
// unsubscribed_at timestamp is set on the first transition to unsubscribed
// and left untouched afterwards.
func (r *UserRepository) SetEmailStatus(ctx context.Context, email string, status model.EmailStatus) error {
	query := `UPDATE users SET
			      email_status = $2,
			      updated_at = now(),
			      unsubscribed_at = CASE
			          WHEN $2 = 'unsubscribed' AND unsubscribed_at IS NULL THEN now()
			          ELSE unsubscribed_at
			      END
			  WHERE email = $1`

	tag, err := r.db.Exec(ctx, query, email, status)
	if err != nil {
		return fmt.Errorf("failed to set email status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}

	return nil
}

func (r *UserRepository) CountByStatus(ctx context.Context, status model.EmailStatus) (int64, error) {
	var count int64
	query := `SELECT count(*) FROM users WHERE email_status = $1`

	if err := r.db.QueryRow(ctx, query, status).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users by status: %w", err)
	}

	return count, nil
}
