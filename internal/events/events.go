package events

import "time"

type SelectionComputedEvent struct {
	RunID       string  `json:"run_id"`
	CourseID    string  `json:"course_id"`
	Preset      string  `json:"preset"`
	PenaltyBase float64 `json:"penalty_base"`
	TotalCost   float64 `json:"total_cost"`
	CourseCount int     `json:"course_count"`
	DurationMs  int64   `json:"duration_ms"`
}

type PreferenceChangedEvent struct {
	Preset string `json:"preset"`
}

type PenaltyChangedEvent struct {
	PenaltyBase float64 `json:"penalty_base"`
}

type CorpusReloadedEvent struct {
	Courses   int       `json:"courses"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}
