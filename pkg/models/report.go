package models

// Report is a node in a result tree.
//
// A node carries an optional Value (nil means the node is informational only)
// and an ordered list of children. Fan-out operations attach exactly one child
// per dispatched sub-task, in dispatch order.
type Report struct {
	// Source labels the provider that produced this node, if any.
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
	// Query marks the node as the merge point of a query fan-out.
	Query bool `json:"query,omitempty" yaml:"query,omitempty"`
	// Value is the payload of this node.
	Value any `json:"value,omitempty" yaml:"value,omitempty"`
	// Error is set on error-valued reports.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
	// Children holds sub-reports in insertion order.
	Children []*Report `json:"children,omitempty" yaml:"children,omitempty"`
}

// NewReport returns a report holding value.
func NewReport(value any) *Report {
	return &Report{Value: value}
}

// NewQueryReport returns an empty report that merges query results.
func NewQueryReport() *Report {
	return &Report{Query: true}
}

// EmptyQueryReport returns the canonical empty query result.
// Each call returns a fresh node so callers may mutate it.
func EmptyQueryReport() *Report {
	return &Report{Query: true}
}

// ErrorReport returns an error-valued report.
func ErrorReport(msg string) *Report {
	return &Report{Error: msg}
}

// AddChild appends child. A nil child is stored as an empty report so the
// parent keeps one slot per sub-task.
func (r *Report) AddChild(child *Report) {
	if child == nil {
		child = &Report{}
	}
	r.Children = append(r.Children, child)
}

// IsError reports whether this node carries an error.
func (r *Report) IsError() bool {
	return r != nil && r.Error != ""
}

// IsEmpty reports whether the node has no value, no error and no children.
func (r *Report) IsEmpty() bool {
	return r == nil || (r.Value == nil && r.Error == "" && len(r.Children) == 0)
}

// Len returns the number of direct children.
func (r *Report) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Children)
}

// Walk visits the tree depth-first in pre-order. Returning false from fn
// skips the children of the current node.
func (r *Report) Walk(fn func(depth int, node *Report) bool) {
	r.walk(0, fn)
}

func (r *Report) walk(depth int, fn func(int, *Report) bool) {
	if r == nil {
		return
	}
	if !fn(depth, r) {
		return
	}
	for _, c := range r.Children {
		c.walk(depth+1, fn)
	}
}

// Errors collects the error messages found anywhere in the tree.
func (r *Report) Errors() []string {
	var out []string
	r.Walk(func(_ int, n *Report) bool {
		if n.IsError() {
			out = append(out, n.Error)
		}
		return true
	})
	return out
}
