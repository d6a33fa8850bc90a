package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pillpal-backend/internal/models"
)

const medicationColumns = `id, user_id, name, dosage, frequency, time_of_day, instructions,
	next_dose, is_active, color, refill_date, created_at, updated_at`

// medicationRow mirrors the medications table
type medicationRow struct {
	ID           string
	UserID       string
	Name         string
	Dosage       string
	Frequency    string
	TimeOfDay    string
	Instructions *string
	NextDose     time.Time
	IsActive     bool
	Color        string
	RefillDate   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func scanMedication(s scanner) (*models.Medication, error) {
	var row medicationRow
	err := s.Scan(
		&row.ID, &row.UserID, &row.Name, &row.Dosage, &row.Frequency, &row.TimeOfDay, &row.Instructions,
		&row.NextDose, &row.IsActive, &row.Color, &row.RefillDate, &row.CreatedAt, &row.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return row.toModel(), nil
}

func (r medicationRow) toModel() *models.Medication {
	return &models.Medication{
		ID:           r.ID,
		UserID:       r.UserID,
		Name:         r.Name,
		Dosage:       r.Dosage,
		Frequency:    models.Frequency(r.Frequency),
		TimeOfDay:    models.TimeOfDay(r.TimeOfDay),
		Instructions: r.Instructions,
		NextDose:     r.NextDose,
		IsActive:     r.IsActive,
		Color:        r.Color,
		RefillDate:   r.RefillDate,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// MedicationRepository handles database operations for medications
type MedicationRepository struct {
	db *pgxpool.Pool
}

// NewMedicationRepository creates a new medication repository
func NewMedicationRepository(db *pgxpool.Pool) *MedicationRepository {
	return &MedicationRepository{db: db}
}

// List returns the medications of a user ordered by next dose
func (r *MedicationRepository) List(ctx context.Context, userID string) ([]models.Medication, error) {
	query := `SELECT ` + medicationColumns + ` FROM medications WHERE user_id = $1 ORDER BY next_dose ASC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list medications: %w", err)
	}
	return collectMedications(rows)
}

// Get retrieves a medication owned by the user
func (r *MedicationRepository) Get(ctx context.Context, userID, id string) (*models.Medication, error) {
	query := `SELECT ` + medicationColumns + ` FROM medications WHERE id = $1 AND user_id = $2`
	m, err := scanMedication(r.db.QueryRow(ctx, query, id, userID))
	if err != nil {
		return nil, translate(err, "medication")
	}
	return m, nil
}

// Create inserts a new medication
func (r *MedicationRepository) Create(ctx context.Context, m *models.Medication) error {
	query := `
		INSERT INTO medications (` + medicationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.db.Exec(ctx, query,
		m.ID, m.UserID, m.Name, m.Dosage, string(m.Frequency), string(m.TimeOfDay), m.Instructions,
		m.NextDose, m.IsActive, m.Color, m.RefillDate, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return translate(err, "medication")
	}
	return nil
}

// Update applies a partial update and returns the stored medication
func (r *MedicationRepository) Update(ctx context.Context, userID, id string, patch models.MedicationPatch) (*models.Medication, error) {
	var sets []string
	var args []any
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Name != nil {
		set("name", *patch.Name)
	}
	if patch.Dosage != nil {
		set("dosage", *patch.Dosage)
	}
	if patch.Frequency != nil {
		set("frequency", string(*patch.Frequency))
	}
	if patch.TimeOfDay != nil {
		set("time_of_day", string(*patch.TimeOfDay))
	}
	if patch.Instructions != nil {
		set("instructions", *patch.Instructions)
	}
	if patch.NextDose != nil {
		set("next_dose", *patch.NextDose)
	}
	if patch.IsActive != nil {
		set("is_active", *patch.IsActive)
	}
	if patch.Color != nil {
		set("color", *patch.Color)
	}
	if patch.RefillDate != nil {
		set("refill_date", *patch.RefillDate)
	}
	updatedAt := patch.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	set("updated_at", updatedAt)

	args = append(args, id, userID)
	query := fmt.Sprintf(
		`UPDATE medications SET %s WHERE id = $%d AND user_id = $%d RETURNING `+medicationColumns,
		strings.Join(sets, ", "), len(args)-1, len(args),
	)
	m, err := scanMedication(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, translate(err, "medication")
	}
	return m, nil
}

// Delete removes a medication. Its adherence history is kept.
func (r *MedicationRepository) Delete(ctx context.Context, userID, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM medications WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete medication: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return translate(pgx.ErrNoRows, "medication")
	}
	return nil
}

// SetActive toggles whether the medication is active
func (r *MedicationRepository) SetActive(ctx context.Context, userID, id string, active bool) (*models.Medication, error) {
	return r.Update(ctx, userID, id, models.MedicationPatch{IsActive: &active})
}

// ListDue returns active scheduled medications due at or before the given time
func (r *MedicationRepository) ListDue(ctx context.Context, before time.Time) ([]models.Medication, error) {
	query := `SELECT ` + medicationColumns + ` FROM medications
		WHERE is_active AND frequency <> 'as_needed' AND next_dose <= $1
		ORDER BY next_dose ASC`
	rows, err := r.db.Query(ctx, query, before)
	if err != nil {
		return nil, fmt.Errorf("failed to list due medications: %w", err)
	}
	return collectMedications(rows)
}

func collectMedications(rows pgx.Rows) ([]models.Medication, error) {
	defer rows.Close()

	meds := []models.Medication{}
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan medication: %w", err)
		}
		meds = append(meds, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate medications: %w", err)
	}
	return meds, nil
}
