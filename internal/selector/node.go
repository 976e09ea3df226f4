package selector

import "encoding/json"

// NodeKind discriminates the three variants of the prerequisite logic
// tree. The zero value is a course node.
type NodeKind int

const (
	KindCourse NodeKind = iota
	KindAnd
	KindOr
)

func (k NodeKind) String() string {
	switch k {
	case KindAnd:
		return "and"
	case KindOr:
		return "or"
	default:
		return "course"
	}
}

func (k NodeKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *NodeKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "and":
		*k = KindAnd
	case "or":
		*k = KindOr
	default:
		*k = KindCourse
	}
	return nil
}

// Node is one occurrence in an AND/OR prerequisite tree. A course may
// appear as multiple occurrences under different branches; DisplayKey is
// unique per occurrence while CourseID repeats.
//
// The tree is finite and acyclic as delivered: cycle breaking and depth
// capping are the tree builder's responsibility, not the selector's.
type Node struct {
	Kind       NodeKind `json:"kind"`
	CourseID   string   `json:"course_id,omitempty"`
	DisplayKey string   `json:"key"`
	MinGrade   *int     `json:"min_grade,omitempty"`
	Children   []*Node  `json:"children,omitempty"`
}

// CourseIDs collects the distinct course identifiers appearing anywhere
// in the tree, in first-visit depth-first order.
func (n *Node) CourseIDs() []string {
	var out []string
	seen := map[string]bool{}
	var walk func(*Node)
	walk = func(node *Node) {
		if node == nil {
			return
		}
		if node.Kind == KindCourse && node.CourseID != "" && !seen[node.CourseID] {
			seen[node.CourseID] = true
			out = append(out, node.CourseID)
		}
		for _, ch := range node.Children {
			walk(ch)
		}
	}
	walk(n)
	return out
}
