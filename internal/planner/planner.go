// Package planner owns the process-wide selection state (active
// preference, corpus aggregates, penalty base) and orchestrates one plan
// run: store -> tree builder -> selector.
package planner

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/CourseCompass/Compass/internal/events"
	"github.com/CourseCompass/Compass/internal/prereq"
	"github.com/CourseCompass/Compass/internal/scoring"
	"github.com/CourseCompass/Compass/internal/selector"
	"github.com/CourseCompass/Compass/internal/store"
)

type Planner struct {
	store  store.Store
	events events.Client
	logger *slog.Logger

	mu          sync.RWMutex
	presetName  string
	preference  scoring.PreferenceProfile
	aggregates  store.AggregateMetrics
	penaltyBase float64

	prereqDepth int
}

type Options struct {
	DefaultPreset string
	PenaltyBase   float64
	PrereqDepth   int
}

func New(s store.Store, ev events.Client, opts Options, logger *slog.Logger) *Planner {
	preset := opts.DefaultPreset
	if !scoring.KnownPreset(preset) {
		preset = scoring.PresetBalanced
	}
	base := opts.PenaltyBase
	if base < 0 || math.IsNaN(base) {
		base = selector.DefaultPenaltyBase
	}
	depth := opts.PrereqDepth
	if depth <= 0 {
		depth = prereq.DefaultPrereqDepth
	}
	return &Planner{
		store:       s,
		events:      ev,
		logger:      logger,
		presetName:  preset,
		preference:  scoring.ProfileForPreset(preset),
		penaltyBase: base,
		prereqDepth: depth,
	}
}

// RefreshAggregates recomputes the corpus-wide median/min fallbacks from
// the store. Called at startup and whenever the corpus is reloaded.
func (p *Planner) RefreshAggregates(ctx context.Context) error {
	agg, err := p.store.GetAggregates(ctx)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.aggregates = *agg
	p.mu.Unlock()
	p.logger.Info("aggregates refreshed",
		"median_liked", agg.Median.Liked,
		"min_liked", agg.Min.Liked,
	)
	return nil
}

// SetupSubscriptions wires corpus lifecycle events to aggregate refresh.
func (p *Planner) SetupSubscriptions() {
	if p.events == nil {
		return
	}
	err := p.events.Subscribe(events.SubjectCorpusReloaded, func(_ string, data []byte) {
		var evt events.CorpusReloadedEvent
		_ = json.Unmarshal(data, &evt)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := p.RefreshAggregates(ctx); err != nil {
			p.logger.Warn("aggregate refresh after corpus reload failed", "error", err)
			return
		}
		p.logger.Info("corpus reloaded", "courses", evt.Courses)
	})
	if err != nil {
		p.logger.Warn("failed to subscribe to corpus events", "error", err)
	}
}

// SetPreference activates a named preset. Unrecognized names silently
// fall back to balanced. Returns the effective preset name and profile.
func (p *Planner) SetPreference(name string) (string, scoring.PreferenceProfile) {
	effective := name
	if !scoring.KnownPreset(name) {
		effective = scoring.PresetBalanced
	}
	profile := scoring.ProfileForPreset(effective)

	p.mu.Lock()
	p.presetName = effective
	p.preference = profile
	p.mu.Unlock()

	if p.events != nil {
		_ = p.events.Publish(events.SubjectPreferenceChanged, events.PreferenceChangedEvent{Preset: effective})
	}
	return effective, profile
}

// Preference returns the active preset name and profile.
func (p *Planner) Preference() (string, scoring.PreferenceProfile) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.presetName, p.preference
}

// AggregatePatch is a partial aggregate update; absent fields keep their
// current values.
type AggregatePatch struct {
	Median *store.MetricTriple `json:"median,omitempty"`
	Min    *store.MetricTriple `json:"min,omitempty"`
}

// UpdateAggregates merges a patch into the held aggregates.
func (p *Planner) UpdateAggregates(patch AggregatePatch) store.AggregateMetrics {
	p.mu.Lock()
	defer p.mu.Unlock()
	if patch.Median != nil {
		p.aggregates.Median = *patch.Median
	}
	if patch.Min != nil {
		p.aggregates.Min = *patch.Min
	}
	return p.aggregates
}

// Aggregates returns the current corpus-wide fallbacks.
func (p *Planner) Aggregates() store.AggregateMetrics {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.aggregates
}

// SetPenaltyBase updates the first-inclusion penalty at depth 0. Negative
// or non-numeric values are rejected and the previous value kept; zero is
// valid and disables the penalty. Reports whether the update was applied.
func (p *Planner) SetPenaltyBase(v float64) bool {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	p.mu.Lock()
	p.penaltyBase = v
	p.mu.Unlock()

	if p.events != nil {
		_ = p.events.Publish(events.SubjectPenaltyChanged, events.PenaltyChangedEvent{PenaltyBase: v})
	}
	return true
}

// PenaltyBase returns the active penalty base.
func (p *Planner) PenaltyBase() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.penaltyBase
}

// CourseWeight scores a single course under the current preference and
// aggregates, e.g. for display badges.
func (p *Planner) CourseWeight(ctx context.Context, courseID string) (float64, error) {
	metrics, err := p.store.GetMetricsMap(ctx, []string{courseID})
	if err != nil {
		return 0, err
	}
	_, pref, agg, _ := p.snapshot()
	return scoring.ComputeWeight(metrics[courseID], agg, pref), nil
}

// PlanResult is one completed selection run.
type PlanResult struct {
	RunID       uuid.UUID          `json:"run_id"`
	CourseID    string             `json:"course_id"`
	Preset      string             `json:"preset"`
	PenaltyBase float64            `json:"penalty_base"`
	TotalCost   float64            `json:"total_cost"`
	Selected    []string           `json:"selected_keys"`
	Courses     []string           `json:"selected_courses"`
	Weights     map[string]float64 `json:"weights"`
	Tree        *selector.Node     `json:"tree"`
	DurationMs  int64              `json:"duration_ms"`
}

// Plan runs a full selection for the target course: build the tree, load
// metrics for every course in it, snapshot the selection context, and
// select. Returns nil when the course is unknown.
func (p *Planner) Plan(ctx context.Context, courseID string, maxDepth int) (*PlanResult, error) {
	exists, err := p.store.CourseExists(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	start := time.Now()
	if maxDepth <= 0 {
		maxDepth = p.prereqDepth
	}

	tree, err := prereq.BuildTree(ctx, p.store, courseID, maxDepth)
	if err != nil {
		return nil, err
	}

	ids := tree.CourseIDs()
	metrics, err := p.store.GetMetricsMap(ctx, ids)
	if err != nil {
		return nil, err
	}

	presetName, pref, agg, base := p.snapshot()
	sc := selector.Context{
		Preference:  pref,
		Aggregates:  agg,
		Metrics:     metrics,
		PenaltyBase: base,
	}
	result := selector.Select(tree, sc)

	weights := make(map[string]float64, len(ids))
	for _, id := range ids {
		weights[id] = scoring.ComputeWeight(metrics[id], agg, pref)
	}

	plan := &PlanResult{
		RunID:       uuid.New(),
		CourseID:    courseID,
		Preset:      presetName,
		PenaltyBase: base,
		TotalCost:   result.TotalCost,
		Selected:    sortedKeys(result.SelectedKeys),
		Courses:     sortedKeys(result.SelectedCourseIDs),
		Weights:     weights,
		Tree:        tree,
		DurationMs:  time.Since(start).Milliseconds(),
	}

	p.logger.Info("selection computed",
		"run_id", plan.RunID,
		"course", courseID,
		"preset", presetName,
		"cost", plan.TotalCost,
		"courses", len(plan.Courses),
		"duration_ms", plan.DurationMs,
	)

	if p.events != nil {
		_ = p.events.Publish(events.SubjectSelectionComputed(plan.RunID.String()), events.SelectionComputedEvent{
			RunID:       plan.RunID.String(),
			CourseID:    courseID,
			Preset:      presetName,
			PenaltyBase: base,
			TotalCost:   plan.TotalCost,
			CourseCount: len(plan.Courses),
			DurationMs:  plan.DurationMs,
		})
	}

	return plan, nil
}

// snapshot copies the mutable selection state under the read lock so a
// run never observes a mid-flight change.
func (p *Planner) snapshot() (string, scoring.PreferenceProfile, store.AggregateMetrics, float64) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.presetName, p.preference, p.aggregates, p.penaltyBase
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
