package analytics

import (
	"fmt"
	"time"

	"pillpal-backend/internal/models"
)

const (
	// MaxInsights caps the insight list shown to the user.
	MaxInsights = 4
	// MaxRecommendations caps the recommendation list.
	MaxRecommendations = 3

	lowAdherenceThreshold  = 70
	highAdherenceThreshold = 90
	riskThreshold          = 30
	weakBucketThreshold    = 70
	weekendGapThreshold    = 10
)

// Insights selects short messages from the computed metrics
func Insights(m Metrics) []string {
	if m.SampleSize == 0 {
		return []string{"Start logging your doses to unlock personalized insights."}
	}

	var out []string
	if m.AdherenceRate < lowAdherenceThreshold {
		out = append(out, fmt.Sprintf("Your adherence rate is %d%%. Setting reminders could help you stay on track.", m.AdherenceRate))
	}
	if m.AdherenceRate >= highAdherenceThreshold {
		out = append(out, fmt.Sprintf("Great job! You have taken %d%% of your logged doses.", m.AdherenceRate))
	}
	if m.RiskScore > riskThreshold {
		out = append(out, fmt.Sprintf("Your risk score is %d. Several recent doses were missed; consider enabling adherence alerts.", m.RiskScore))
	}
	if best, ok := bestPattern(m.Patterns); ok {
		out = append(out, fmt.Sprintf("%s %s doses have your highest success rate at %d%%.", best.DayOfWeek, best.TimeOfDay, best.SuccessRate))
	}
	switch m.Trend.Direction {
	case Improving:
		out = append(out, "Your adherence is improving compared to the previous week.")
	case Declining:
		out = append(out, "Your adherence has declined compared to the previous week.")
	}

	if len(out) > MaxInsights {
		out = out[:MaxInsights]
	}
	return out
}

// Recommendations suggests concrete changes for the weakest spots in the history
func Recommendations(m Metrics, records []models.AdherenceRecord, loc *time.Location) []string {
	var out []string

	if worst, ok := worstPattern(m.Patterns); ok && worst.SuccessRate < weakBucketThreshold {
		out = append(out, fmt.Sprintf("Set a reminder for %s %s doses, where you succeed only %d%% of the time.",
			worst.DayOfWeek, worst.TimeOfDay, worst.SuccessRate))
	}
	if m.RiskScore > riskThreshold {
		out = append(out, "Enable adherence alerts so missed doses are flagged quickly.")
	}
	if weekday, weekend, ok := weekSplit(records, loc); ok && weekday-weekend > weekendGapThreshold {
		out = append(out, fmt.Sprintf("Set weekend-specific reminders; weekend adherence is %d points lower than on weekdays.", weekday-weekend))
	}

	if len(out) > MaxRecommendations {
		out = out[:MaxRecommendations]
	}
	return out
}

// bestPattern picks the bucket with data and the highest success rate,
// preferring larger samples on ties.
func bestPattern(patterns []Pattern) (Pattern, bool) {
	var best Pattern
	found := false
	for _, p := range patterns {
		if p.Total == 0 {
			continue
		}
		if !found || p.SuccessRate > best.SuccessRate || (p.SuccessRate == best.SuccessRate && p.Total > best.Total) {
			best, found = p, true
		}
	}
	return best, found
}

func worstPattern(patterns []Pattern) (Pattern, bool) {
	var worst Pattern
	found := false
	for _, p := range patterns {
		if p.Total == 0 {
			continue
		}
		if !found || p.SuccessRate < worst.SuccessRate || (p.SuccessRate == worst.SuccessRate && p.Total > worst.Total) {
			worst, found = p, true
		}
	}
	return worst, found
}

// weekSplit returns the adherence rates on weekdays and on weekends. ok is
// false unless both halves of the week have records.
func weekSplit(records []models.AdherenceRecord, loc *time.Location) (weekday, weekend int, ok bool) {
	if loc == nil {
		loc = time.UTC
	}
	var wdTaken, wdTotal, weTaken, weTotal int
	for _, r := range records {
		taken := r.Status == models.StatusTaken
		switch r.Timestamp.In(loc).Weekday() {
		case time.Saturday, time.Sunday:
			weTotal++
			if taken {
				weTaken++
			}
		default:
			wdTotal++
			if taken {
				wdTaken++
			}
		}
	}
	if wdTotal == 0 || weTotal == 0 {
		return 0, 0, false
	}
	return percent(wdTaken, wdTotal), percent(weTaken, weTotal), true
}
