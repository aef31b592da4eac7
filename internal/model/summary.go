package model

// MaxHighPriorityTitles bounds the high-priority list shown in the digest.
const MaxHighPriorityTitles = 5

// Summary is the aggregate view over all current records. It is recomputed
// from the full record set on each digest request, never persisted.
type Summary struct {
	Total        int              `json:"total"`
	ByCategory   map[Category]int `json:"by_category"`
	ByPriority   map[Priority]int `json:"by_priority"`
	HighPriority []string         `json:"high_priority"`
	Err          string           `json:"error,omitempty"`
}

// NewSummary returns an empty summary with initialized maps.
func NewSummary() Summary {
	return Summary{
		ByCategory: make(map[Category]int),
		ByPriority: make(map[Priority]int),
	}
}

// ErrorSummary marks a summary that could not be computed.
func ErrorSummary(err error) Summary {
	return Summary{Err: err.Error()}
}

// Add folds one record into the summary. High-priority titles are collected
// in iteration order; the display cap is applied by the notifier.
func (s *Summary) Add(r Record) {
	s.Total++
	s.ByCategory[r.Category]++
	s.ByPriority[r.Priority]++
	if r.Priority == PriorityHigh {
		s.HighPriority = append(s.HighPriority, r.Title)
	}
}
