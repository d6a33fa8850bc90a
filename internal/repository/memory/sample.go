package memory

import (
	"time"

	"pillpal-backend/internal/models"
)

func strPtr(s string) *string { return &s }

// SampleData returns the sample medications and adherence history.
// Dates are relative to the UTC day of now: doses were logged over the last two days
// and next doses fall today or tomorrow.
func SampleData(now time.Time) ([]models.Medication, []models.AdherenceRecord) {
	today := now.UTC().Truncate(24 * time.Hour)
	at := func(daysAgo int, hour, minute int) time.Time {
		return today.AddDate(0, 0, -daysAgo).Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
	}
	created := at(30, 0, 0)

	meds := []models.Medication{
		{
			ID: "sample-lisinopril", Name: "Lisinopril", Dosage: "10mg",
			Frequency: models.FrequencyOnceDaily, TimeOfDay: models.TimeOfDayMorning,
			Instructions: strPtr("Take with food in the morning"),
			NextDose:     at(-1, 8, 0), Color: "purple",
		},
		{
			ID: "sample-metformin", Name: "Metformin", Dosage: "500mg",
			Frequency: models.FrequencyTwiceDaily, TimeOfDay: models.TimeOfDayMorning,
			Instructions: strPtr("Take with morning and evening meals"),
			NextDose:     at(-1, 8, 0), Color: "blue",
		},
		{
			ID: "sample-atorvastatin", Name: "Atorvastatin", Dosage: "20mg",
			Frequency: models.FrequencyOnceDaily, TimeOfDay: models.TimeOfDayEvening,
			Instructions: strPtr("Take in the evening"),
			NextDose:     at(0, 20, 0), Color: "green",
		},
		{
			ID: "sample-aspirin", Name: "Aspirin", Dosage: "81mg",
			Frequency: models.FrequencyOnceDaily, TimeOfDay: models.TimeOfDayMorning,
			Instructions: strPtr("Take with food"),
			NextDose:     at(-1, 8, 0), Color: "orange",
		},
	}
	for i := range meds {
		meds[i].UserID = SharedOwner
		meds[i].IsActive = true
		meds[i].CreatedAt = created
		meds[i].UpdatedAt = created
	}

	record := func(id string, med models.Medication, ts time.Time, status models.AdherenceStatus, pill, user bool) models.AdherenceRecord {
		return models.AdherenceRecord{
			ID:             id,
			UserID:         SharedOwner,
			MedicationID:   med.ID,
			MedicationName: med.DisplayName(),
			Status:         status,
			Timestamp:      ts,
			PillVerified:   pill,
			UserVerified:   user,
			CreatedAt:      ts,
		}
	}
	lisinopril, metformin, atorvastatin, aspirin := meds[0], meds[1], meds[2], meds[3]

	records := []models.AdherenceRecord{
		record("sample-101", lisinopril, at(1, 8, 30), models.StatusTaken, true, true),
		record("sample-102", metformin, at(1, 8, 15), models.StatusTaken, true, true),
		record("sample-103", metformin, at(1, 18, 15), models.StatusTaken, true, true),
		record("sample-104", aspirin, at(1, 8, 30), models.StatusTaken, true, true),
		record("sample-105", atorvastatin, at(2, 20, 0), models.StatusMissed, false, false),
		record("sample-106", lisinopril, at(2, 8, 30), models.StatusTaken, true, true),
		record("sample-107", metformin, at(2, 8, 15), models.StatusTaken, true, true),
		record("sample-108", metformin, at(2, 18, 15), models.StatusSkipped, false, true),
	}
	return meds, records
}
