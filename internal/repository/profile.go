package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"pillpal-backend/internal/models"
)

// ProfileRepository handles database operations for profiles
type ProfileRepository struct {
	db *pgxpool.Pool
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Get retrieves the profile of a user
func (r *ProfileRepository) Get(ctx context.Context, userID string) (*models.Profile, error) {
	query := `SELECT user_id, name, avatar_url, updated_at FROM profiles WHERE user_id = $1`
	var p models.Profile
	err := r.db.QueryRow(ctx, query, userID).Scan(&p.UserID, &p.Name, &p.AvatarURL, &p.UpdatedAt)
	if err != nil {
		return nil, translate(err, "profile")
	}
	return &p, nil
}

// Upsert creates or replaces the profile of a user
func (r *ProfileRepository) Upsert(ctx context.Context, p *models.Profile) error {
	query := `
		INSERT INTO profiles (user_id, name, avatar_url, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET name = EXCLUDED.name, avatar_url = EXCLUDED.avatar_url, updated_at = EXCLUDED.updated_at
	`
	if _, err := r.db.Exec(ctx, query, p.UserID, p.Name, p.AvatarURL, p.UpdatedAt); err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}
