// Package analytics derives adherence metrics from a window of dose records.
//
// Everything here is a pure function of its input: no I/O, no shared state,
// and the caller's slice is never modified. Functions other than
// Engine.Compute expect records ordered most recent first.
package analytics

import (
	"math"
	"slices"
	"time"

	"pillpal-backend/internal/models"
)

const (
	// RiskWindow is the number of most recent records the risk score looks at.
	RiskWindow = 30
	// HistoricalMissedThreshold is the missed count above which the history penalty applies.
	HistoricalMissedThreshold = 5
	// HistoricalMissedPenalty is added to the risk score when the whole history has too many misses.
	HistoricalMissedPenalty = 20
	// PredictionWindow is the number of most recent records used to predict adherence.
	PredictionWindow = 7
	// TrendWindow is the size of each of the two windows compared by the trend.
	TrendWindow = 7
	// DefaultPredictedAdherence is reported when there is no history at all.
	DefaultPredictedAdherence = 85
)

// Direction is the movement of adherence between two windows
type Direction string

const (
	Improving Direction = "improving"
	Declining Direction = "declining"
	Stable    Direction = "stable"
)

// Trend compares the latest week of records with the one before it
type Trend struct {
	Direction  Direction `json:"direction"`
	Confidence int       `json:"confidence"`
}

// Metrics is the complete analytics result for a record window
type Metrics struct {
	SampleSize         int       `json:"sample_size"`
	AdherenceRate      int       `json:"adherence_rate"`
	RiskScore          int       `json:"risk_score"`
	PredictedAdherence int       `json:"predicted_adherence"`
	ConsistencyScore   int       `json:"consistency_score"`
	Trend              Trend     `json:"trend"`
	Patterns           []Pattern `json:"patterns"`
	Insights           []string  `json:"insights"`
	Recommendations    []string  `json:"recommendations"`
}

// Engine computes Metrics. The location decides which hour and weekday a
// record timestamp falls in.
type Engine struct {
	loc *time.Location
}

// NewEngine creates an engine bucketing timestamps in loc (UTC when nil)
func NewEngine(loc *time.Location) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{loc: loc}
}

// Compute returns the full metrics for records in any order
func (e *Engine) Compute(records []models.AdherenceRecord) Metrics {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b models.AdherenceRecord) int {
		return b.Timestamp.Compare(a.Timestamp)
	})

	m := Metrics{
		SampleSize:         len(sorted),
		AdherenceRate:      AdherenceRate(sorted),
		RiskScore:          RiskScore(sorted),
		PredictedAdherence: PredictedAdherence(sorted),
		ConsistencyScore:   ConsistencyScore(sorted, e.loc),
		Trend:              TrendOf(sorted),
		Patterns:           Patterns(sorted, e.loc),
	}
	m.Insights = Insights(m)
	m.Recommendations = Recommendations(m, sorted, e.loc)
	return m
}

// AdherenceRate is the rounded percentage of taken records, 0 for no records
func AdherenceRate(records []models.AdherenceRecord) int {
	if len(records) == 0 {
		return 0
	}
	return percent(countStatus(records, models.StatusTaken), len(records))
}

// RiskScore is the missed share of the most recent RiskWindow records, plus
// HistoricalMissedPenalty when the whole input holds more than
// HistoricalMissedThreshold misses, clamped to [0, 100].
func RiskScore(records []models.AdherenceRecord) int {
	if len(records) == 0 {
		return 0
	}
	window := head(records, RiskWindow)
	score := float64(countStatus(window, models.StatusMissed)) / float64(len(window)) * 100
	if countStatus(records, models.StatusMissed) > HistoricalMissedThreshold {
		score += HistoricalMissedPenalty
	}
	return int(math.Round(clamp(score, 0, 100)))
}

// PredictedAdherence projects the taken share of the last PredictionWindow
// records, boosted by 10% on a strong week and cut by 10% on a weak one.
func PredictedAdherence(records []models.AdherenceRecord) int {
	if len(records) == 0 {
		return DefaultPredictedAdherence
	}
	window := head(records, PredictionWindow)
	rate := float64(countStatus(window, models.StatusTaken)) / float64(len(window))

	multiplier := 1.0
	switch {
	case rate > 0.8:
		multiplier = 1.1
	case rate < 0.6:
		multiplier = 0.9
	}
	return int(math.Round(math.Min(100, rate*multiplier*100)))
}

// TrendOf compares taken counts of records 1-7 against records 8-14
func TrendOf(records []models.AdherenceRecord) Trend {
	recent := head(records, TrendWindow)
	var previous []models.AdherenceRecord
	if len(records) > TrendWindow {
		previous = head(records[TrendWindow:], TrendWindow)
	}

	recentTaken := countStatus(recent, models.StatusTaken)
	previousTaken := countStatus(previous, models.StatusTaken)

	direction := Stable
	switch {
	case recentTaken > previousTaken:
		direction = Improving
	case recentTaken < previousTaken:
		direction = Declining
	}

	return Trend{
		Direction:  direction,
		Confidence: min(100, len(records)*2),
	}
}

func countStatus(records []models.AdherenceRecord, status models.AdherenceStatus) int {
	n := 0
	for _, r := range records {
		if r.Status == status {
			n++
		}
	}
	return n
}

func head(records []models.AdherenceRecord, n int) []models.AdherenceRecord {
	if len(records) <= n {
		return records
	}
	return records[:n]
}

func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
