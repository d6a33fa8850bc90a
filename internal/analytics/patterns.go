package analytics

import (
	"time"

	"pillpal-backend/internal/models"
)

// Time-of-day buckets used by pattern analysis
const (
	Morning   = "morning"
	Afternoon = "afternoon"
	Evening   = "evening"
)

var (
	weekOrder   = []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday}
	bucketOrder = []string{Morning, Afternoon, Evening}
)

// Pattern is the dose outcome of one (weekday, time-of-day) bucket
type Pattern struct {
	DayOfWeek      string `json:"day_of_week"`
	TimeOfDay      string `json:"time_of_day"`
	Taken          int    `json:"taken"`
	Total          int    `json:"total"`
	SuccessRate    int    `json:"success_rate"`
	MedicationName string `json:"medication_name,omitempty"`
}

// TimeBucket maps an hour of the day onto morning, afternoon or evening
func TimeBucket(hour int) string {
	switch {
	case hour < 12:
		return Morning
	case hour < 18:
		return Afternoon
	default:
		return Evening
	}
}

type patternKey struct {
	day    time.Weekday
	bucket string
}

type patternAcc struct {
	taken int
	total int
	names map[string]int
}

// Patterns buckets every record and returns the full Monday..Sunday,
// morning..evening grid. Buckets without records report a 0 success rate.
func Patterns(records []models.AdherenceRecord, loc *time.Location) []Pattern {
	if loc == nil {
		loc = time.UTC
	}

	acc := make(map[patternKey]*patternAcc)
	for _, r := range records {
		ts := r.Timestamp.In(loc)
		key := patternKey{day: ts.Weekday(), bucket: TimeBucket(ts.Hour())}
		a, ok := acc[key]
		if !ok {
			a = &patternAcc{names: make(map[string]int)}
			acc[key] = a
		}
		a.total++
		if r.Status == models.StatusTaken {
			a.taken++
		}
		if r.MedicationName != "" {
			a.names[r.MedicationName]++
		}
	}

	out := make([]Pattern, 0, len(weekOrder)*len(bucketOrder))
	for _, day := range weekOrder {
		for _, bucket := range bucketOrder {
			p := Pattern{DayOfWeek: day.String(), TimeOfDay: bucket}
			if a, ok := acc[patternKey{day: day, bucket: bucket}]; ok {
				p.Taken = a.taken
				p.Total = a.total
				p.SuccessRate = percent(a.taken, a.total)
				p.MedicationName = mostFrequent(a.names)
			}
			out = append(out, p)
		}
	}
	return out
}

func mostFrequent(counts map[string]int) string {
	best, bestN := "", 0
	for name, n := range counts {
		if n > bestN || (n == bestN && name < best) {
			best, bestN = name, n
		}
	}
	return best
}

// ConsistencyScore is the share of taken doses logged within one hour of the
// usual hour for that medication. The usual hour is the most common one.
func ConsistencyScore(records []models.AdherenceRecord, loc *time.Location) int {
	if loc == nil {
		loc = time.UTC
	}

	hours := make(map[string][]int)
	for _, r := range records {
		if r.Status != models.StatusTaken {
			continue
		}
		hours[r.MedicationID] = append(hours[r.MedicationID], r.Timestamp.In(loc).Hour())
	}

	within, total := 0, 0
	for _, hs := range hours {
		mode := modalHour(hs)
		for _, h := range hs {
			total++
			if hourDistance(h, mode) <= 1 {
				within++
			}
		}
	}
	return percent(within, total)
}

func modalHour(hours []int) int {
	var counts [24]int
	for _, h := range hours {
		counts[h]++
	}
	mode := 0
	for h := 1; h < 24; h++ {
		if counts[h] > counts[mode] {
			mode = h
		}
	}
	return mode
}

func hourDistance(a, b int) int {
	d := a - b
	if d < 0 {
		d = -d
	}
	return min(d, 24-d)
}
