package selector

import (
	"math"

	"github.com/CourseCompass/Compass/internal/scoring"
	"github.com/CourseCompass/Compass/internal/store"
)

const (
	// DefaultPenaltyBase is the operative default for the first-time
	// inclusion penalty at the root.
	DefaultPenaltyBase = 0.2

	// costEpsilon is the tolerance under which two candidate costs are
	// considered tied; ties keep the earliest candidate.
	costEpsilon = 1e-6
)

// Context carries everything one selection run reads. It is snapshotted
// by the caller before the run, so concurrent runs never share mutable
// state.
type Context struct {
	Preference  scoring.PreferenceProfile
	Aggregates  store.AggregateMetrics
	Metrics     map[string]*store.CourseMetrics
	PenaltyBase float64
}

// Result is the outcome of selecting a subtree. SelectedKeys identifies
// node occurrences (what a renderer highlights); SelectedCourseIDs is the
// distinct-course identity used for reuse accounting.
type Result struct {
	TotalCost         float64
	SelectedKeys      map[string]bool
	SelectedCourseIDs map[string]bool
}

// DepthPenalty is the extra cost charged the first time a course enters
// the selection, shrinking with distance from the root so that deep
// shared prerequisites stay cheap to reuse.
func DepthPenalty(base float64, depth int) float64 {
	return base / float64(1+depth)
}

// Select walks the AND/OR tree rooted at root and picks the minimum-cost
// satisfying selection. At every OR junction the cheapest branch wins;
// a course already included anywhere earlier in the walk costs nothing
// to include again, so selections converge on shared prerequisites.
func Select(root *Node, sc Context) Result {
	if sc.PenaltyBase < 0 || math.IsNaN(sc.PenaltyBase) {
		sc.PenaltyBase = 0
	}
	out := selectNode(root, sc, 0, map[string]bool{})
	return Result{
		TotalCost:         out.cost,
		SelectedKeys:      out.keys,
		SelectedCourseIDs: out.included,
	}
}

// outcome threads the accumulated state of one recursive call: its cost,
// the display keys it selected, and the course-id set reflecting every
// inclusion made so far in traversal order.
type outcome struct {
	cost     float64
	keys     map[string]bool
	included map[string]bool
}

func selectNode(n *Node, sc Context, depth int, included map[string]bool) outcome {
	if n == nil {
		return outcome{keys: map[string]bool{}, included: included}
	}
	switch n.Kind {
	case KindCourse:
		return selectCourse(n, sc, depth, included)
	case KindOr:
		return selectOr(n, sc, depth, included)
	default:
		// KindAnd, and a defensive default for any unrecognized kind.
		return selectAnd(n, sc, depth, included)
	}
}

func selectCourse(n *Node, sc Context, depth int, included map[string]bool) outcome {
	out := outcome{
		keys:     map[string]bool{n.DisplayKey: true},
		included: included,
	}

	// First inclusion pays the base cost and the depth penalty; any
	// later occurrence of the same course is free.
	if !included[n.CourseID] {
		weight := scoring.ComputeWeight(sc.Metrics[n.CourseID], sc.Aggregates, sc.Preference)
		out.cost = (1 - weight/100) + DepthPenalty(sc.PenaltyBase, depth)
		included[n.CourseID] = true
	}

	// Children are this course's own prerequisites; they are explored
	// even when the course itself was already included.
	for _, ch := range n.Children {
		r := selectNode(ch, sc, depth+1, out.included)
		out.cost += r.cost
		mergeKeys(out.keys, r.keys)
		out.included = r.included
	}
	return out
}

// selectAnd satisfies every child, left to right, each child seeing the
// cumulative inclusions of all prior siblings. Junctions are transparent
// to depth: the penalty tracks prerequisite distance, not how many
// synthetic wrappers the builder emitted.
func selectAnd(n *Node, sc Context, depth int, included map[string]bool) outcome {
	out := outcome{keys: map[string]bool{}, included: included}
	for _, ch := range n.Children {
		r := selectNode(ch, sc, depth, out.included)
		out.cost += r.cost
		mergeKeys(out.keys, r.keys)
		out.included = r.included
	}
	return out
}

// selectOr satisfies exactly one child: the cheapest. Every candidate is
// evaluated against the same incoming set, so candidates never see each
// other's inclusions; only the winner's accumulated state propagates.
// On a tie the earliest candidate wins.
func selectOr(n *Node, sc Context, depth int, included map[string]bool) outcome {
	if len(n.Children) == 0 {
		return outcome{keys: map[string]bool{}, included: included}
	}
	var best outcome
	haveBest := false
	for _, ch := range n.Children {
		r := selectNode(ch, sc, depth, cloneSet(included))
		if !haveBest || r.cost < best.cost-costEpsilon {
			best = r
			haveBest = true
		}
	}
	return best
}

func cloneSet(s map[string]bool) map[string]bool {
	out := make(map[string]bool, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

func mergeKeys(dst, src map[string]bool) {
	for k := range src {
		dst[k] = true
	}
}
