package models

import "time"

// TimeRange - полуоткрытый интервал [Start, End)
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func NewTimeRange(start, end time.Time) TimeRange {
	return TimeRange{Start: start, End: end}
}

func (r TimeRange) Valid() bool {
	return r.End.After(r.Start)
}

// Overlaps: s1 < e2 && s2 < e1. Соприкасающиеся интервалы не пересекаются.
func (r TimeRange) Overlaps(o TimeRange) bool {
	return r.Start.Before(o.End) && o.Start.Before(r.End)
}

// Contains: Start <= t < End
func (r TimeRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

func (r TimeRange) Duration() time.Duration {
	return r.End.Sub(r.Start)
}
