// Package prereq builds AND/OR prerequisite trees and forward unlock
// trees from the flat edge records in the store.
package prereq

import (
	"context"
	"fmt"

	"github.com/CourseCompass/Compass/internal/selector"
	"github.com/CourseCompass/Compass/internal/store"
)

const (
	// DefaultPrereqDepth effectively means "expand everything"; cycles
	// are broken by the visited set, not the cap.
	DefaultPrereqDepth = 99

	// DefaultFutureDepth keeps the forward tree shallow; it grows fast.
	DefaultFutureDepth = 2
)

// EdgeSource is the slice of the store the builder reads.
type EdgeSource interface {
	GetPrereqGroups(ctx context.Context, id string) ([]store.PrereqGroup, error)
	GetDependents(ctx context.Context, id string) ([]string, error)
}

// BuildTree expands a course's prerequisite edges into an AND/OR tree
// rooted at rootID.
//
// Junction structure follows group cardinality: a group with more than
// one alternative becomes an OR junction; a course with more than one
// group gets an AND junction over the per-group nodes; a single-course
// single-group requirement attaches the course directly.
//
// A course already expanded on the current walk appears again as a bare
// leaf occurrence, so the delivered tree is always finite even when the
// underlying edges contain cycles. Display keys are path-based and
// unique per occurrence.
func BuildTree(ctx context.Context, src EdgeSource, rootID string, maxDepth int) (*selector.Node, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultPrereqDepth
	}
	b := &treeBuilder{src: src, maxDepth: maxDepth, visited: map[string]bool{}}
	return b.expand(ctx, rootID, nil, 0, rootID)
}

type treeBuilder struct {
	src      EdgeSource
	maxDepth int
	visited  map[string]bool
}

func (b *treeBuilder) expand(ctx context.Context, courseID string, minGrade *int, depth int, key string) (*selector.Node, error) {
	node := &selector.Node{
		Kind:       selector.KindCourse,
		CourseID:   courseID,
		DisplayKey: key,
		MinGrade:   minGrade,
	}
	if depth >= b.maxDepth || b.visited[courseID] {
		return node, nil
	}
	b.visited[courseID] = true

	groups, err := b.src.GetPrereqGroups(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("prereq groups for %s: %w", courseID, err)
	}
	if len(groups) == 0 {
		return node, nil
	}

	groupNodes := make([]*selector.Node, 0, len(groups))
	for _, g := range groups {
		gn, err := b.expandGroup(ctx, g, depth, key)
		if err != nil {
			return nil, err
		}
		groupNodes = append(groupNodes, gn)
	}

	if len(groupNodes) == 1 {
		node.Children = groupNodes
		return node, nil
	}
	node.Children = []*selector.Node{{
		Kind:       selector.KindAnd,
		DisplayKey: key + "/and",
		Children:   groupNodes,
	}}
	return node, nil
}

func (b *treeBuilder) expandGroup(ctx context.Context, g store.PrereqGroup, depth int, parentKey string) (*selector.Node, error) {
	if len(g.Courses) == 1 {
		c := g.Courses[0]
		return b.expand(ctx, c.CourseID, c.MinGrade, depth+1, childKey(parentKey, c.CourseID))
	}

	or := &selector.Node{
		Kind:       selector.KindOr,
		DisplayKey: fmt.Sprintf("%s/or-%d", parentKey, g.Group),
	}
	for _, c := range g.Courses {
		ch, err := b.expand(ctx, c.CourseID, c.MinGrade, depth+1, childKey(or.DisplayKey, c.CourseID))
		if err != nil {
			return nil, err
		}
		or.Children = append(or.Children, ch)
	}
	return or, nil
}

func childKey(parentKey, courseID string) string {
	return parentKey + "/" + courseID
}

// FutureNode is one course in the forward ("what this unlocks") tree.
type FutureNode struct {
	CourseID string        `json:"course_id"`
	Children []*FutureNode `json:"children,omitempty"`
}

// BuildFutureTree expands forward edges from rootID: the courses that
// list it as a prerequisite, and so on up to maxDepth levels out. Each
// course appears at most once across the whole tree.
func BuildFutureTree(ctx context.Context, src EdgeSource, rootID string, maxDepth int) (*FutureNode, error) {
	if maxDepth < 0 {
		maxDepth = DefaultFutureDepth
	}
	visited := map[string]bool{rootID: true}

	var forward func(courseID string, depth int) (*FutureNode, error)
	forward = func(courseID string, depth int) (*FutureNode, error) {
		node := &FutureNode{CourseID: courseID}
		if depth > maxDepth {
			return node, nil
		}
		next, err := src.GetDependents(ctx, courseID)
		if err != nil {
			return nil, fmt.Errorf("dependents of %s: %w", courseID, err)
		}
		for _, cid := range next {
			if visited[cid] {
				continue
			}
			visited[cid] = true
			ch, err := forward(cid, depth+1)
			if err != nil {
				return nil, err
			}
			node.Children = append(node.Children, ch)
		}
		return node, nil
	}

	return forward(rootID, 1)
}
