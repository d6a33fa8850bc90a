package models

import "time"

// User represents a user in the system
type User struct {
	ID              string    `json:"id"`
	ExternalSubject *string   `json:"external_subject,omitempty"`
	Token           string    `json:"token,omitempty"`
	PushToken       *string   `json:"push_token,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Profile holds the display details of a user
type Profile struct {
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Medication represents a medication a user takes on a schedule
type Medication struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	Name         string     `json:"name"`
	Dosage       string     `json:"dosage"`
	Frequency    Frequency  `json:"frequency"`
	TimeOfDay    TimeOfDay  `json:"time_of_day"`
	Instructions *string    `json:"instructions,omitempty"`
	NextDose     time.Time  `json:"next_dose"`
	IsActive     bool       `json:"is_active"`
	Color        string     `json:"color"`
	RefillDate   *time.Time `json:"refill_date,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// DisplayName is the denormalized name stored on adherence records, e.g. "Lisinopril 10mg"
func (m *Medication) DisplayName() string {
	if m.Dosage == "" {
		return m.Name
	}
	return m.Name + " " + m.Dosage
}

// MedicationPatch carries the fields of a partial medication update.
// Nil fields are left untouched.
type MedicationPatch struct {
	Name         *string
	Dosage       *string
	Frequency    *Frequency
	TimeOfDay    *TimeOfDay
	Instructions *string
	NextDose     *time.Time
	IsActive     *bool
	Color        *string
	RefillDate   *time.Time
	UpdatedAt    time.Time
}

// Apply applies the patch to m in place
func (p MedicationPatch) Apply(m *Medication) {
	if p.Name != nil {
		m.Name = *p.Name
	}
	if p.Dosage != nil {
		m.Dosage = *p.Dosage
	}
	if p.Frequency != nil {
		m.Frequency = *p.Frequency
	}
	if p.TimeOfDay != nil {
		m.TimeOfDay = *p.TimeOfDay
	}
	if p.Instructions != nil {
		v := *p.Instructions
		m.Instructions = &v
	}
	if p.NextDose != nil {
		m.NextDose = *p.NextDose
	}
	if p.IsActive != nil {
		m.IsActive = *p.IsActive
	}
	if p.Color != nil {
		m.Color = *p.Color
	}
	if p.RefillDate != nil {
		v := *p.RefillDate
		m.RefillDate = &v
	}
	if !p.UpdatedAt.IsZero() {
		m.UpdatedAt = p.UpdatedAt
	}
}

// AdherenceRecord is a single logged dose event. Records are immutable once created.
type AdherenceRecord struct {
	ID             string          `json:"id"`
	UserID         string          `json:"user_id"`
	MedicationID   string          `json:"medication_id"`
	MedicationName string          `json:"medication_name"`
	Status         AdherenceStatus `json:"status"`
	Timestamp      time.Time       `json:"timestamp"`
	PillVerified   bool            `json:"pill_verified"`
	UserVerified   bool            `json:"user_verified"`
	Notes          *string         `json:"notes,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// AdherenceFilter bounds an adherence history query
type AdherenceFilter struct {
	Since *time.Time
	Limit int
}

// NotificationPreference configures one kind of notification for a user
type NotificationPreference struct {
	UserID   string             `json:"user_id"`
	Type     PreferenceType     `json:"type"`
	Enabled  bool               `json:"enabled"`
	Timing   int                `json:"timing"`
	Method   NotificationMethod `json:"method"`
	Priority Priority           `json:"priority"`
}

// Notification is an entry in a user's notification inbox
type Notification struct {
	ID             string           `json:"id"`
	UserID         string           `json:"user_id"`
	Title          string           `json:"title"`
	Message        string           `json:"message"`
	Type           NotificationType `json:"type"`
	Priority       Priority         `json:"priority"`
	MedicationID   *string          `json:"medication_id,omitempty"`
	Timestamp      time.Time        `json:"timestamp"`
	Read           bool             `json:"read"`
	ActionRequired bool             `json:"action_required"`
}
