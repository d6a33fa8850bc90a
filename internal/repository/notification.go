package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pillpal-backend/internal/models"
)

// PreferenceRepository handles database operations for notification preferences
type PreferenceRepository struct {
	db *pgxpool.Pool
}

// NewPreferenceRepository creates a new preference repository
func NewPreferenceRepository(db *pgxpool.Pool) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// List returns the stored preferences of a user
func (r *PreferenceRepository) List(ctx context.Context, userID string) ([]models.NotificationPreference, error) {
	query := `SELECT user_id, type, enabled, timing, method, priority
		FROM notification_preferences WHERE user_id = $1 ORDER BY type`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list preferences: %w", err)
	}
	defer rows.Close()

	prefs := []models.NotificationPreference{}
	for rows.Next() {
		var p models.NotificationPreference
		var typ, method, priority string
		if err := rows.Scan(&p.UserID, &typ, &p.Enabled, &p.Timing, &method, &priority); err != nil {
			return nil, fmt.Errorf("failed to scan preference: %w", err)
		}
		p.Type = models.PreferenceType(typ)
		p.Method = models.NotificationMethod(method)
		p.Priority = models.Priority(priority)
		prefs = append(prefs, p)
	}
	return prefs, rows.Err()
}

// Upsert creates or replaces a preference
func (r *PreferenceRepository) Upsert(ctx context.Context, p *models.NotificationPreference) error {
	query := `
		INSERT INTO notification_preferences (user_id, type, enabled, timing, method, priority)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, type) DO UPDATE
		SET enabled = EXCLUDED.enabled, timing = EXCLUDED.timing,
			method = EXCLUDED.method, priority = EXCLUDED.priority
	`
	_, err := r.db.Exec(ctx, query, p.UserID, string(p.Type), p.Enabled, p.Timing, string(p.Method), string(p.Priority))
	if err != nil {
		return fmt.Errorf("failed to upsert preference: %w", err)
	}
	return nil
}

// NotificationRepository handles database operations for the notification inbox
type NotificationRepository struct {
	db *pgxpool.Pool
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts a notification
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, title, message, type, priority, medication_id, timestamp, read, action_required)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.Exec(ctx, query,
		n.ID, n.UserID, n.Title, n.Message, string(n.Type), string(n.Priority),
		n.MedicationID, n.Timestamp, n.Read, n.ActionRequired,
	)
	if err != nil {
		return translate(err, "notification")
	}
	return nil
}

// List returns the newest notifications of a user
func (r *NotificationRepository) List(ctx context.Context, userID string, unreadOnly bool, limit int) ([]models.Notification, error) {
	query := `SELECT id, user_id, title, message, type, priority, medication_id, timestamp, read, action_required
		FROM notifications WHERE user_id = $1`
	args := []any{userID}
	if unreadOnly {
		query += " AND NOT read"
	}
	query += " ORDER BY timestamp DESC"
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	out := []models.Notification{}
	for rows.Next() {
		var n models.Notification
		var typ, priority string
		err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &typ, &priority,
			&n.MedicationID, &n.Timestamp, &n.Read, &n.ActionRequired)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		n.Type = models.NotificationType(typ)
		n.Priority = models.Priority(priority)
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkRead flags a notification as read
func (r *NotificationRepository) MarkRead(ctx context.Context, userID, id string) error {
	tag, err := r.db.Exec(ctx, `UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return translate(pgx.ErrNoRows, "notification")
	}
	return nil
}
