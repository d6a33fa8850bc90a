package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pillpal-backend/internal/models"
)

const adherenceColumns = `id, user_id, medication_id, medication_name, status, timestamp,
	pill_verified, user_verified, notes, created_at`

type adherenceRow struct {
	ID             string
	UserID         string
	MedicationID   string
	MedicationName string
	Status         string
	Timestamp      time.Time
	PillVerified   bool
	UserVerified   bool
	Notes          *string
	CreatedAt      time.Time
}

func (r adherenceRow) toModel() models.AdherenceRecord {
	return models.AdherenceRecord{
		ID:             r.ID,
		UserID:         r.UserID,
		MedicationID:   r.MedicationID,
		MedicationName: r.MedicationName,
		Status:         models.AdherenceStatus(r.Status),
		Timestamp:      r.Timestamp,
		PillVerified:   r.PillVerified,
		UserVerified:   r.UserVerified,
		Notes:          r.Notes,
		CreatedAt:      r.CreatedAt,
	}
}

// AdherenceRepository handles database operations for adherence history
type AdherenceRepository struct {
	db *pgxpool.Pool
}

// NewAdherenceRepository creates a new adherence repository
func NewAdherenceRepository(db *pgxpool.Pool) *AdherenceRepository {
	return &AdherenceRepository{db: db}
}

// List returns the user's records, most recent first
func (r *AdherenceRepository) List(ctx context.Context, userID string, filter models.AdherenceFilter) ([]models.AdherenceRecord, error) {
	query, args := listAdherenceQuery(userID, filter)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list adherence records: %w", err)
	}
	return collectAdherence(rows)
}

// listAdherenceQuery numbers placeholders in the order the filters are appended
func listAdherenceQuery(userID string, filter models.AdherenceFilter) (string, []any) {
	query := `SELECT ` + adherenceColumns + ` FROM adherence_history WHERE user_id = $1`
	args := []any{userID}
	if filter.Since != nil {
		args = append(args, *filter.Since)
		query += fmt.Sprintf(" AND timestamp >= $%d", len(args))
	}
	query += " ORDER BY timestamp DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	return query, args
}

// ListByMedication returns the records of one medication, most recent first
func (r *AdherenceRepository) ListByMedication(ctx context.Context, userID, medicationID string) ([]models.AdherenceRecord, error) {
	query := `SELECT ` + adherenceColumns + ` FROM adherence_history
		WHERE user_id = $1 AND medication_id = $2
		ORDER BY timestamp DESC`
	rows, err := r.db.Query(ctx, query, userID, medicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list adherence records: %w", err)
	}
	return collectAdherence(rows)
}

// Create inserts a new adherence record
func (r *AdherenceRepository) Create(ctx context.Context, rec *models.AdherenceRecord) error {
	query := `
		INSERT INTO adherence_history (` + adherenceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.Exec(ctx, query,
		rec.ID, rec.UserID, rec.MedicationID, rec.MedicationName, string(rec.Status), rec.Timestamp,
		rec.PillVerified, rec.UserVerified, rec.Notes, rec.CreatedAt,
	)
	if err != nil {
		return translate(err, "adherence record")
	}
	return nil
}

func collectAdherence(rows pgx.Rows) ([]models.AdherenceRecord, error) {
	defer rows.Close()

	records := []models.AdherenceRecord{}
	for rows.Next() {
		var row adherenceRow
		err := rows.Scan(
			&row.ID, &row.UserID, &row.MedicationID, &row.MedicationName, &row.Status, &row.Timestamp,
			&row.PillVerified, &row.UserVerified, &row.Notes, &row.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan adherence record: %w", err)
		}
		records = append(records, row.toModel())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate adherence records: %w", err)
	}
	return records, nil
}
