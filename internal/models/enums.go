package models

import "time"

// Frequency is how often a medication is scheduled
type Frequency string

const (
	FrequencyOnceDaily       Frequency = "once_daily"
	FrequencyTwiceDaily      Frequency = "twice_daily"
	FrequencyThreeTimesDaily Frequency = "three_times_daily"
	FrequencyWeekly          Frequency = "weekly"
	FrequencyAsNeeded        Frequency = "as_needed"
)

// Interval returns the time between two scheduled doses.
// As-needed medications have no schedule and return 0.
func (f Frequency) Interval() time.Duration {
	switch f {
	case FrequencyOnceDaily:
		return 24 * time.Hour
	case FrequencyTwiceDaily:
		return 12 * time.Hour
	case FrequencyThreeTimesDaily:
		return 8 * time.Hour
	case FrequencyWeekly:
		return 7 * 24 * time.Hour
	default:
		return 0
	}
}

// NextAfter returns the first scheduled dose after takenAt, starting from current.
// The schedule always moves forward by at least one interval.
func (f Frequency) NextAfter(current, takenAt time.Time) time.Time {
	interval := f.Interval()
	if interval == 0 {
		return current
	}
	next := current.Add(interval)
	for !next.After(takenAt) {
		next = next.Add(interval)
	}
	return next
}

// TimeOfDay is the user-facing dosing slot of a medication
type TimeOfDay string

const (
	TimeOfDayMorning   TimeOfDay = "morning"
	TimeOfDayNoon      TimeOfDay = "noon"
	TimeOfDayAfternoon TimeOfDay = "afternoon"
	TimeOfDayEvening   TimeOfDay = "evening"
	TimeOfDayBedtime   TimeOfDay = "bedtime"
	TimeOfDayCustom    TimeOfDay = "custom"
)

// AdherenceStatus is the outcome of a dose event
type AdherenceStatus string

const (
	StatusTaken   AdherenceStatus = "taken"
	StatusMissed  AdherenceStatus = "missed"
	StatusSkipped AdherenceStatus = "skipped"
)

// PreferenceType identifies a kind of notification a user can configure
type PreferenceType string

const (
	PreferenceMedicationReminder PreferenceType = "medication_reminder"
	PreferenceAdherenceAlert     PreferenceType = "adherence_alert"
	PreferenceHealthInsight      PreferenceType = "health_insight"
	PreferencePredictiveWarning  PreferenceType = "predictive_warning"
)

// NotificationMethod is the delivery channel for a notification
type NotificationMethod string

const (
	MethodPush  NotificationMethod = "push"
	MethodEmail NotificationMethod = "email"
	MethodSMS   NotificationMethod = "sms"
)

// Priority ranks notifications
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// NotificationType is the kind of an inbox entry
type NotificationType string

const (
	NotificationReminder NotificationType = "reminder"
	NotificationAlert    NotificationType = "alert"
	NotificationInsight  NotificationType = "insight"
	NotificationWarning  NotificationType = "warning"
)

// DefaultPreferences returns the preferences a new user starts with
func DefaultPreferences(userID string) []NotificationPreference {
	return []NotificationPreference{
		{UserID: userID, Type: PreferenceMedicationReminder, Enabled: true, Timing: 15, Method: MethodPush, Priority: PriorityHigh},
		{UserID: userID, Type: PreferenceAdherenceAlert, Enabled: true, Timing: 30, Method: MethodPush, Priority: PriorityMedium},
		{UserID: userID, Type: PreferenceHealthInsight, Enabled: false, Timing: 0, Method: MethodEmail, Priority: PriorityLow},
		{UserID: userID, Type: PreferencePredictiveWarning, Enabled: true, Timing: 60, Method: MethodPush, Priority: PriorityHigh},
	}
}

// PreferenceOf returns the preference of the given type, falling back to the default
func PreferenceOf(prefs []NotificationPreference, userID string, typ PreferenceType) NotificationPreference {
	for _, p := range prefs {
		if p.Type == typ {
			return p
		}
	}
	for _, p := range DefaultPreferences(userID) {
		if p.Type == typ {
			return p
		}
	}
	return NotificationPreference{UserID: userID, Type: typ}
}
