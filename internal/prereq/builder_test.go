package prereq

import (
	"context"
	"testing"

	"github.com/CourseCompass/Compass/internal/selector"
	"github.com/CourseCompass/Compass/internal/store"
)

type fakeEdges struct {
	groups     map[string][]store.PrereqGroup
	dependents map[string][]string
}

func (f *fakeEdges) GetPrereqGroups(_ context.Context, id string) ([]store.PrereqGroup, error) {
	return f.groups[id], nil
}

func (f *fakeEdges) GetDependents(_ context.Context, id string) ([]string, error) {
	return f.dependents[id], nil
}

func group(n int, courses ...string) store.PrereqGroup {
	g := store.PrereqGroup{Group: n, Type: "AND"}
	for _, c := range courses {
		g.Courses = append(g.Courses, store.PrereqCourse{CourseID: c})
	}
	if len(courses) > 1 {
		g.Type = "OR"
	}
	return g
}

func TestBuildTreeNoPrereqs(t *testing.T) {
	src := &fakeEdges{groups: map[string][]store.PrereqGroup{}}
	tree, err := BuildTree(context.Background(), src, "CS135", 0)
	if err != nil {
		t.Fatal(err)
	}
	if tree.Kind != selector.KindCourse || tree.CourseID != "CS135" || len(tree.Children) != 0 {
		t.Errorf("expected bare course node, got %+v", tree)
	}
}

func TestBuildTreeSingleGroupSingleCourse(t *testing.T) {
	src := &fakeEdges{groups: map[string][]store.PrereqGroup{
		"CS136": {group(1, "CS135")},
	}}
	tree, err := BuildTree(context.Background(), src, "CS136", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(tree.Children) != 1 {
		t.Fatalf("expected 1 child, got %d", len(tree.Children))
	}
	// No junction node for a single-course single-group requirement.
	child := tree.Children[0]
	if child.Kind != selector.KindCourse || child.CourseID != "CS135" {
		t.Errorf("expected direct course child, got %+v", child)
	}
}

func TestBuildTreeOrGroup(t *testing.T) {
	src := &fakeEdges{groups: map[string][]store.PrereqGroup{
		"STAT231": {group(1, "MATH128", "MATH138")},
	}}
	tree, err := BuildTree(context.Background(), src, "STAT231", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(tree.Children) != 1 {
		t.Fatalf("expected 1 child, got %d", len(tree.Children))
	}
	or := tree.Children[0]
	if or.Kind != selector.KindOr {
		t.Fatalf("expected OR junction, got %v", or.Kind)
	}
	if len(or.Children) != 2 {
		t.Errorf("expected 2 alternatives, got %d", len(or.Children))
	}
}

func TestBuildTreeMultipleGroupsGetAndJunction(t *testing.T) {
	src := &fakeEdges{groups: map[string][]store.PrereqGroup{
		"CS240": {
			group(1, "CS136", "CS146"),
			group(2, "MATH239"),
		},
	}}
	tree, err := BuildTree(context.Background(), src, "CS240", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(tree.Children) != 1 {
		t.Fatalf("expected single AND child, got %d children", len(tree.Children))
	}
	and := tree.Children[0]
	if and.Kind != selector.KindAnd {
		t.Fatalf("expected AND junction, got %v", and.Kind)
	}
	if len(and.Children) != 2 {
		t.Fatalf("expected 2 group nodes, got %d", len(and.Children))
	}
	if and.Children[0].Kind != selector.KindOr {
		t.Errorf("first group should be an OR junction")
	}
	if and.Children[1].Kind != selector.KindCourse || and.Children[1].CourseID != "MATH239" {
		t.Errorf("second group should attach its course directly")
	}
}

func TestBuildTreeBreaksCycles(t *testing.T) {
	src := &fakeEdges{groups: map[string][]store.PrereqGroup{
		"A": {group(1, "B")},
		"B": {group(1, "A")},
	}}
	tree, err := BuildTree(context.Background(), src, "A", 0)
	if err != nil {
		t.Fatal(err)
	}
	b := tree.Children[0]
	if b.CourseID != "B" {
		t.Fatalf("expected B child, got %+v", b)
	}
	if len(b.Children) != 1 {
		t.Fatalf("expected A occurrence under B, got %d children", len(b.Children))
	}
	// The repeated A stays a leaf: already expanded on this walk.
	if len(b.Children[0].Children) != 0 {
		t.Error("cycle should terminate in a bare leaf occurrence")
	}
}

func TestBuildTreeDepthCap(t *testing.T) {
	src := &fakeEdges{groups: map[string][]store.PrereqGroup{
		"A": {group(1, "B")},
		"B": {group(1, "C")},
		"C": {group(1, "D")},
	}}
	tree, err := BuildTree(context.Background(), src, "A", 1)
	if err != nil {
		t.Fatal(err)
	}
	b := tree.Children[0]
	if len(b.Children) != 0 {
		t.Error("depth cap should stop expansion below the first level")
	}
}

func TestBuildTreeDisplayKeysUnique(t *testing.T) {
	src := &fakeEdges{groups: map[string][]store.PrereqGroup{
		"R": {group(1, "A", "B"), group(2, "C", "D")},
		"D": {group(1, "A")},
	}}
	tree, err := BuildTree(context.Background(), src, "R", 0)
	if err != nil {
		t.Fatal(err)
	}
	seen := map[string]bool{}
	var walk func(*selector.Node)
	walk = func(n *selector.Node) {
		if seen[n.DisplayKey] {
			t.Errorf("duplicate display key %q", n.DisplayKey)
		}
		seen[n.DisplayKey] = true
		for _, ch := range n.Children {
			walk(ch)
		}
	}
	walk(tree)
	// A appears twice as distinct occurrences with one course id.
	ids := tree.CourseIDs()
	count := 0
	for _, id := range ids {
		if id == "A" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("CourseIDs should deduplicate, got %v", ids)
	}
}

func TestBuildFutureTree(t *testing.T) {
	src := &fakeEdges{dependents: map[string][]string{
		"CS135": {"CS136", "CS145"},
		"CS136": {"CS240", "CS135"}, // back edge
	}}
	tree, err := BuildFutureTree(context.Background(), src, "CS135", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(tree.Children) != 2 {
		t.Fatalf("expected 2 dependents, got %d", len(tree.Children))
	}
	var cs136 *FutureNode
	for _, ch := range tree.Children {
		if ch.CourseID == "CS136" {
			cs136 = ch
		}
	}
	if cs136 == nil {
		t.Fatal("expected CS136 in future tree")
	}
	for _, ch := range cs136.Children {
		if ch.CourseID == "CS135" {
			t.Error("root must not reappear in its own future tree")
		}
	}
}
