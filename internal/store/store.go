package store

import (
	"context"
)

// Course is one row of the course corpus, including the UW Flow quality
// metrics when the course has any recorded ratings.
type Course struct {
	ID          string `json:"course_id"`
	Name        string `json:"course_name"`
	Department  string `json:"department,omitempty"`
	Level       *int   `json:"course_level,omitempty"`
	Description string `json:"description,omitempty"`

	Liked       *float64 `json:"liked,omitempty"`
	Easy        *float64 `json:"easy,omitempty"`
	Useful      *float64 `json:"useful,omitempty"`
	RatingCount *int     `json:"rating_num,omitempty"`

	Offerings []Offering `json:"offerings,omitempty"`
}

// Metrics extracts the quality-metric snapshot for weight computation.
func (c *Course) Metrics() *CourseMetrics {
	if c == nil {
		return nil
	}
	return &CourseMetrics{
		Liked:       c.Liked,
		Easy:        c.Easy,
		Useful:      c.Useful,
		RatingCount: c.RatingCount,
	}
}

type Offering struct {
	Term string `json:"term"`
}

// CourseMetrics is the per-course quality snapshot consumed by scoring.
// Any of the three sub-metrics may be absent; RatingCount may be absent.
type CourseMetrics struct {
	Liked       *float64 `json:"liked,omitempty"`
	Easy        *float64 `json:"easy,omitempty"`
	Useful      *float64 `json:"useful,omitempty"`
	RatingCount *int     `json:"rating_num,omitempty"`
}

// HasAny reports whether at least one sub-metric is recorded.
func (m *CourseMetrics) HasAny() bool {
	if m == nil {
		return false
	}
	return m.Liked != nil || m.Easy != nil || m.Useful != nil
}

// MetricTriple holds one value per sub-metric, each in [0, 100].
type MetricTriple struct {
	Liked  float64 `json:"liked"`
	Easy   float64 `json:"easy"`
	Useful float64 `json:"useful"`
}

// AggregateMetrics are corpus-wide fallbacks substituted for missing
// per-course data: Median per sub-metric, and the global minimums.
type AggregateMetrics struct {
	Median MetricTriple `json:"median"`
	Min    MetricTriple `json:"min"`
}

// PrereqGroup is one prerequisite group of a course. A group with more
// than one alternative is an OR group; a single-course group is AND.
type PrereqGroup struct {
	Group   int            `json:"group"`
	Type    string         `json:"type"`
	Courses []PrereqCourse `json:"courses"`
}

type PrereqCourse struct {
	CourseID string `json:"course_id"`
	MinGrade *int   `json:"min_grade,omitempty"`
}

// PrereqSource is the stored raw prerequisite text and its parsed logic,
// kept for debugging the upstream parser.
type PrereqSource struct {
	CourseID string                 `json:"course_id"`
	RawText  string                 `json:"raw_text"`
	Logic    map[string]interface{} `json:"logic_json"`
}

type Suggestion struct {
	CourseID   string `json:"course_id"`
	CourseName string `json:"course_name"`
}

type CorpusStats struct {
	Courses      int `json:"courses"`
	RatedCourses int `json:"rated_courses"`
	PrereqEdges  int `json:"prereq_edges"`
	Offerings    int `json:"offerings"`
}

type Store interface {
	GetCourse(ctx context.Context, id string) (*Course, error)
	CourseExists(ctx context.Context, id string) (bool, error)
	ListOfferings(ctx context.Context, id string, limit int) ([]Offering, error)
	SuggestCourses(ctx context.Context, query string, limit int) ([]Suggestion, error)

	GetPrereqGroups(ctx context.Context, id string) ([]PrereqGroup, error)
	GetDependents(ctx context.Context, id string) ([]string, error)
	GetPrereqSource(ctx context.Context, id string) (*PrereqSource, error)

	GetMetricsMap(ctx context.Context, ids []string) (map[string]*CourseMetrics, error)
	GetAggregates(ctx context.Context) (*AggregateMetrics, error)

	GetStats(ctx context.Context) (*CorpusStats, error)

	Ping(ctx context.Context) error
	Close() error
}
