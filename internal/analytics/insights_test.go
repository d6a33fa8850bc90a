package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"pillpal-backend/internal/models"
)

func TestInsights_LowAdherenceAndRisk(t *testing.T) {
	records := history(concat(
		repeat(missed, 7),
		repeat(taken, 3), repeat(missed, 4),
		repeat(taken, 7), repeat(missed, 9),
	)...)
	m := NewEngine(time.UTC).Compute(records)

	assert.Equal(t, 33, m.AdherenceRate)
	assert.Equal(t, 87, m.RiskScore)
	assert.Equal(t, Declining, m.Trend.Direction)
	assert.Len(t, m.Insights, MaxInsights)
	assert.Contains(t, m.Insights[0], "adherence rate is 33%")
	assert.Contains(t, m.Insights[1], "risk score is 87")
	assert.Contains(t, m.Insights[2], "highest success rate")
	assert.Contains(t, m.Insights[3], "declined")
	assert.Contains(t, m.Recommendations, "Enable adherence alerts so missed doses are flagged quickly.")
}

func TestInsights_HighAdherence(t *testing.T) {
	m := NewEngine(time.UTC).Compute(history(repeat(taken, 10)...))

	assert.Equal(t, 100, m.AdherenceRate)
	assert.Contains(t, m.Insights[0], "Great job")
	for _, s := range m.Insights {
		assert.NotContains(t, s, "risk score")
	}
	assert.Empty(t, m.Recommendations)
}

func TestInsights_TrendMessage(t *testing.T) {
	m := Metrics{
		SampleSize:    14,
		AdherenceRate: 80,
		Trend:         Trend{Direction: Declining},
	}
	assert.Equal(t, []string{"Your adherence has declined compared to the previous week."}, Insights(m))
}

func TestRecommendations_WeekendGap(t *testing.T) {
	// Monday 2026-03-09 .. Sunday 2026-03-15
	var records []models.AdherenceRecord
	for d := 9; d <= 13; d++ {
		records = append(records, rec(taken, time.Date(2026, 3, d, 8, 0, 0, 0, time.UTC)))
	}
	records = append(records,
		rec(missed, time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)),
		rec(taken, time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC)),
	)

	m := NewEngine(time.UTC).Compute(records)

	assert.Contains(t, m.Recommendations, "Set a reminder for Saturday morning doses, where you succeed only 0% of the time.")
	assert.Contains(t, m.Recommendations, "Set weekend-specific reminders; weekend adherence is 50 points lower than on weekdays.")
	assert.LessOrEqual(t, len(m.Recommendations), MaxRecommendations)
}
