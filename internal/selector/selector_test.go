package selector

import (
	"math"
	"testing"

	"github.com/CourseCompass/Compass/internal/scoring"
	"github.com/CourseCompass/Compass/internal/store"
)

func floatPtr(v float64) *float64 { return &v }

// flatMetrics gives a course identical liked/easy/useful values, so under
// any preset whose weights sum to 1 its weight equals the value and its
// base cost is 1 - value/100.
func flatMetrics(v float64) *store.CourseMetrics {
	return &store.CourseMetrics{Liked: floatPtr(v), Easy: floatPtr(v), Useful: floatPtr(v)}
}

func course(id, key string, children ...*Node) *Node {
	return &Node{Kind: KindCourse, CourseID: id, DisplayKey: key, Children: children}
}

func andNode(key string, children ...*Node) *Node {
	return &Node{Kind: KindAnd, DisplayKey: key, Children: children}
}

func orNode(key string, children ...*Node) *Node {
	return &Node{Kind: KindOr, DisplayKey: key, Children: children}
}

func testContext(base float64, metrics map[string]*store.CourseMetrics) Context {
	return Context{
		Preference:  scoring.ProfileForPreset(scoring.PresetBalanced),
		Aggregates:  store.AggregateMetrics{Median: store.MetricTriple{Liked: 50, Easy: 50, Useful: 50}},
		Metrics:     metrics,
		PenaltyBase: base,
	}
}

func TestDepthPenalty(t *testing.T) {
	if got := DepthPenalty(0.2, 0); got != 0.2 {
		t.Errorf("penalty at root = %f, want base", got)
	}
	prev := DepthPenalty(0.2, 0)
	for d := 1; d < 10; d++ {
		p := DepthPenalty(0.2, d)
		if p >= prev {
			t.Fatalf("penalty not strictly decreasing at depth %d", d)
		}
		prev = p
	}
	for d := 0; d < 5; d++ {
		if DepthPenalty(0, d) != 0 {
			t.Errorf("zero base should disable the penalty at depth %d", d)
		}
	}
}

func TestSelectNilRoot(t *testing.T) {
	r := Select(nil, testContext(0.2, nil))
	if r.TotalCost != 0 || len(r.SelectedKeys) != 0 || len(r.SelectedCourseIDs) != 0 {
		t.Errorf("nil root should be a zero-cost empty result, got %+v", r)
	}
}

func TestSelectSingleCourse(t *testing.T) {
	metrics := map[string]*store.CourseMetrics{"CS135": flatMetrics(80)}
	r := Select(course("CS135", "CS135"), testContext(0.2, metrics))

	want := (1 - 0.8) + 0.2
	if math.Abs(r.TotalCost-want) > 1e-9 {
		t.Errorf("cost = %f, want %f", r.TotalCost, want)
	}
	if !r.SelectedKeys["CS135"] {
		t.Error("expected root key selected")
	}
	if !r.SelectedCourseIDs["CS135"] {
		t.Error("expected course id included")
	}
}

func TestRepeatedCourseChargedOnce(t *testing.T) {
	metrics := map[string]*store.CourseMetrics{"MATH135": flatMetrics(60)}
	// The same course appears as two occurrences under an AND junction.
	root := andNode("root",
		course("MATH135", "a/MATH135"),
		course("MATH135", "b/MATH135"),
	)
	r := Select(root, testContext(0.2, metrics))

	want := (1 - 0.6) + 0.2 // first occurrence only
	if math.Abs(r.TotalCost-want) > 1e-9 {
		t.Errorf("cost = %f, want %f (second occurrence should be free)", r.TotalCost, want)
	}
	if !r.SelectedKeys["a/MATH135"] || !r.SelectedKeys["b/MATH135"] {
		t.Error("both occurrences should still be marked")
	}
	if len(r.SelectedCourseIDs) != 1 {
		t.Errorf("expected 1 distinct course, got %d", len(r.SelectedCourseIDs))
	}
}

func TestRepeatedCourseSubtreeStillExplored(t *testing.T) {
	metrics := map[string]*store.CourseMetrics{
		"X": flatMetrics(90),
		"Y": flatMetrics(50),
	}
	// Second occurrence of X carries a prerequisite Y that the first
	// occurrence did not; Y's cost must still accumulate.
	root := andNode("root",
		course("X", "a/X"),
		course("X", "b/X", course("Y", "b/X/Y")),
	)
	r := Select(root, testContext(0, metrics))

	want := (1 - 0.9) + (1 - 0.5)
	if math.Abs(r.TotalCost-want) > 1e-9 {
		t.Errorf("cost = %f, want %f", r.TotalCost, want)
	}
	if !r.SelectedCourseIDs["Y"] {
		t.Error("repeat occurrence's subtree should still be selected")
	}
}

func TestOrPicksCheapest(t *testing.T) {
	metrics := map[string]*store.CourseMetrics{
		"A": flatMetrics(90),
		"B": flatMetrics(10),
	}
	r := Select(orNode("or", course("A", "or/A"), course("B", "or/B")), testContext(0.2, metrics))

	if !r.SelectedKeys["or/A"] {
		t.Error("expected cheaper branch A selected")
	}
	if r.SelectedKeys["or/B"] {
		t.Error("losing branch B must not be selected")
	}
	if r.SelectedCourseIDs["B"] {
		t.Error("losing branch must not leak into the included set")
	}
}

func TestOrTieBreakKeepsEarliest(t *testing.T) {
	metrics := map[string]*store.CourseMetrics{
		"P": flatMetrics(50), // cost 0.5
		"Q": flatMetrics(70), // cost 0.3
		"R": flatMetrics(70), // cost 0.3, ties with Q
	}
	root := orNode("or",
		course("P", "or/P"),
		course("Q", "or/Q"),
		course("R", "or/R"),
	)
	r := Select(root, testContext(0, metrics))

	if !r.SelectedKeys["or/Q"] {
		t.Error("tie at the minimum should keep the earliest candidate Q")
	}
	if r.SelectedKeys["or/R"] {
		t.Error("later tied candidate R should lose")
	}
}

func TestOrNoChildren(t *testing.T) {
	r := Select(orNode("or"), testContext(0.2, nil))
	if r.TotalCost != 0 || len(r.SelectedKeys) != 0 {
		t.Errorf("empty OR should be a zero-cost empty result, got %+v", r)
	}
}

func TestUnrecognizedKindBehavesLikeAnd(t *testing.T) {
	metrics := map[string]*store.CourseMetrics{
		"A": flatMetrics(80),
		"B": flatMetrics(60),
	}
	root := &Node{Kind: NodeKind(42), DisplayKey: "junction", Children: []*Node{
		course("A", "j/A"),
		course("B", "j/B"),
	}}
	r := Select(root, testContext(0, metrics))

	want := (1 - 0.8) + (1 - 0.6)
	if math.Abs(r.TotalCost-want) > 1e-9 {
		t.Errorf("cost = %f, want sum of all children %f", r.TotalCost, want)
	}
}

func TestNegativePenaltyBaseTreatedAsZero(t *testing.T) {
	metrics := map[string]*store.CourseMetrics{"A": flatMetrics(50)}
	r := Select(course("A", "A"), testContext(-1, metrics))
	if math.Abs(r.TotalCost-0.5) > 1e-9 {
		t.Errorf("cost = %f, want 0.5 with penalty disabled", r.TotalCost)
	}
}

// TestCrossBranchReuseUnderSiblingOrder mirrors the shared-prerequisite
// scenario: R requires one of {A, B} and one of {C, D}, where D's own
// prerequisite is A. Because the first OR group commits A before the
// second group is evaluated, D rides A for free and beats C.
func TestCrossBranchReuseUnderSiblingOrder(t *testing.T) {
	metrics := map[string]*store.CourseMetrics{
		"R": flatMetrics(80),
		"A": flatMetrics(90),
		"B": flatMetrics(10),
		"C": flatMetrics(50),
		"D": flatMetrics(60),
	}
	root := course("R", "R",
		andNode("R/and",
			orNode("R/or-1",
				course("A", "R/or-1/A"),
				course("B", "R/or-1/B"),
			),
			orNode("R/or-2",
				course("C", "R/or-2/C"),
				course("D", "R/or-2/D",
					course("A", "R/or-2/D/A"),
				),
			),
		),
	)
	r := Select(root, testContext(0.2, metrics))

	// R: 0.2 base + 0.2 penalty; A: 0.1 + 0.1; D: 0.4 + 0.1; A under D free.
	want := 0.4 + 0.2 + 0.5
	if math.Abs(r.TotalCost-want) > 1e-9 {
		t.Errorf("cost = %f, want %f", r.TotalCost, want)
	}
	for _, key := range []string{"R", "R/or-1/A", "R/or-2/D", "R/or-2/D/A"} {
		if !r.SelectedKeys[key] {
			t.Errorf("expected key %s selected", key)
		}
	}
	if r.SelectedKeys["R/or-2/C"] || r.SelectedKeys["R/or-1/B"] {
		t.Error("losing branches should not be selected")
	}
	for _, id := range []string{"R", "A", "D"} {
		if !r.SelectedCourseIDs[id] {
			t.Errorf("expected course %s included", id)
		}
	}
	if r.SelectedCourseIDs["C"] || r.SelectedCourseIDs["B"] {
		t.Error("losing courses should not be included")
	}
}

func TestCourseIDs(t *testing.T) {
	root := course("R", "R",
		orNode("R/or",
			course("A", "R/or/A"),
			course("B", "R/or/B", course("A", "R/or/B/A")),
		),
	)
	ids := root.CourseIDs()
	want := []string{"R", "A", "B"}
	if len(ids) != len(want) {
		t.Fatalf("got %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %s, want %s", i, ids[i], want[i])
		}
	}
}
