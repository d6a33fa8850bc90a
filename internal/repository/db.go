package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainerrors "pillpal-backend/internal/errors"
)

const uniqueViolation = "23505"

// Open connects to PostgreSQL, pings it and applies the schema
func Open(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.MaxConnLifetime = 30 * time.Minute

	db, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := db.Ping(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate creates the tables and indexes if they do not exist
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			external_subject TEXT UNIQUE,
			push_token TEXT,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS profiles (
			user_id TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
			name TEXT NOT NULL DEFAULT '',
			avatar_url TEXT,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS medications (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			name TEXT NOT NULL,
			dosage TEXT NOT NULL,
			frequency TEXT NOT NULL CHECK (frequency IN ('once_daily','twice_daily','three_times_daily','weekly','as_needed')),
			time_of_day TEXT NOT NULL,
			instructions TEXT,
			next_dose TIMESTAMPTZ NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			color TEXT NOT NULL DEFAULT '',
			refill_date TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_medications_user_next_dose ON medications(user_id, next_dose)`,
		`CREATE TABLE IF NOT EXISTS adherence_history (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			medication_id TEXT NOT NULL,
			medication_name TEXT NOT NULL,
			status TEXT NOT NULL CHECK (status IN ('taken','missed','skipped')),
			timestamp TIMESTAMPTZ NOT NULL,
			pill_verified BOOLEAN NOT NULL DEFAULT FALSE,
			user_verified BOOLEAN NOT NULL DEFAULT FALSE,
			notes TEXT,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_adherence_user_timestamp ON adherence_history(user_id, timestamp DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_adherence_medication ON adherence_history(medication_id, timestamp DESC)`,
		`CREATE TABLE IF NOT EXISTS notification_preferences (
			user_id TEXT NOT NULL,
			type TEXT NOT NULL,
			enabled BOOLEAN NOT NULL,
			timing INTEGER NOT NULL,
			method TEXT NOT NULL,
			priority TEXT NOT NULL,
			PRIMARY KEY (user_id, type)
		)`,
		`CREATE TABLE IF NOT EXISTS notifications (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			title TEXT NOT NULL,
			message TEXT NOT NULL,
			type TEXT NOT NULL,
			priority TEXT NOT NULL,
			medication_id TEXT,
			timestamp TIMESTAMPTZ NOT NULL,
			read BOOLEAN NOT NULL DEFAULT FALSE,
			action_required BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_user_timestamp ON notifications(user_id, timestamp DESC)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
	}
	return nil
}

// NewPostgresStores builds the PostgreSQL implementation of every store
func NewPostgresStores(db *pgxpool.Pool) Stores {
	return Stores{
		Medications:   NewMedicationRepository(db),
		Adherence:     NewAdherenceRepository(db),
		Users:         NewUserRepository(db),
		Profiles:      NewProfileRepository(db),
		Preferences:   NewPreferenceRepository(db),
		Notifications: NewNotificationRepository(db),
	}
}

// scanner is satisfied by pgx.Row and pgx.Rows
type scanner interface {
	Scan(dest ...any) error
}

// translate maps pgx errors onto domain errors and wraps everything else
func translate(err error, what string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domainerrors.NotFoundf("%s not found", what)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domainerrors.Conflict(what + " already exists")
	}
	return fmt.Errorf("failed to query %s: %w", what, err)
}
