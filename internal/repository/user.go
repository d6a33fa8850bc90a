package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pillpal-backend/internal/models"
)

// UserRepository handles database operations for users
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, external_subject, push_token, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.Exec(ctx, query, user.ID, user.ExternalSubject, user.PushToken, user.CreatedAt)
	if err != nil {
		return translate(err, "user")
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT id, external_subject, push_token, created_at
		FROM users
		WHERE id = $1
	`
	var user models.User
	err := r.db.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.ExternalSubject, &user.PushToken, &user.CreatedAt,
	)
	if err != nil {
		return nil, translate(err, "user")
	}
	return &user, nil
}

// GetBySubject retrieves a user by the subject of their identity provider
func (r *UserRepository) GetBySubject(ctx context.Context, subject string) (*models.User, error) {
	query := `
		SELECT id, external_subject, push_token, created_at
		FROM users
		WHERE external_subject = $1
	`
	var user models.User
	err := r.db.QueryRow(ctx, query, subject).Scan(
		&user.ID, &user.ExternalSubject, &user.PushToken, &user.CreatedAt,
	)
	if err != nil {
		return nil, translate(err, "user")
	}
	return &user, nil
}

// UpdatePushToken updates the push token for a user
func (r *UserRepository) UpdatePushToken(ctx context.Context, userID string, pushToken *string) error {
	query := `UPDATE users SET push_token = $1 WHERE id = $2`
	tag, err := r.db.Exec(ctx, query, pushToken, userID)
	if err != nil {
		return fmt.Errorf("failed to update push token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return translate(pgx.ErrNoRows, "user")
	}
	return nil
}
