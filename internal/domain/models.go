package domain

import (
	"strconv"
	"strings"
)

// SeparatorTitle is the title a menu source uses for separator rows
const SeparatorTitle = "-"

// BreadcrumbDelimiter joins ancestor titles in an item's breadcrumb
const BreadcrumbDelimiter = " → "

// Path is the route of child indices from the menu bar root to a node.
// An empty path denotes the root. Indices are raw positions in the source's
// unfiltered child lists, so a path stays valid only for the capture that
// produced it.
type Path []int

// Child returns a new path extended by one index
func (p Path) Child(index int) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = index
	return out
}

// Clone returns an independent copy
func (p Path) Clone() Path {
	if p == nil {
		return nil
	}
	out := make(Path, len(p))
	copy(out, p)
	return out
}

// Equal reports whether both paths name the same route
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// Compare orders paths element-wise, shorter prefix first
func (p Path) Compare(other Path) int {
	for i := 0; i < len(p) && i < len(other); i++ {
		if p[i] != other[i] {
			if p[i] < other[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(p) < len(other):
		return -1
	case len(p) > len(other):
		return 1
	}
	return 0
}

// Key renders the path as a map key / display string, e.g. "1/0/3"
func (p Path) Key() string {
	parts := make([]string, len(p))
	for i, idx := range p {
		parts[i] = strconv.Itoa(idx)
	}
	return strings.Join(parts, "/")
}

func (p Path) String() string {
	return "[" + p.Key() + "]"
}

// MenuNode is one captured menu entry
type MenuNode struct {
	Title    string
	Enabled  bool
	Path     Path
	Children []*MenuNode
}

// IsSeparator reports whether the node is a separator placeholder
func (n *MenuNode) IsSeparator() bool {
	return n.Title == SeparatorTitle
}

// HasSubmenu reports whether the node carries children
func (n *MenuNode) HasSubmenu() bool {
	return len(n.Children) > 0
}

// Item is a flattened, searchable menu entry
type Item struct {
	Title      string
	Breadcrumb string
	Path       Path
	Enabled    bool
	Depth      int  // number of breadcrumb segments
	Submenu    bool // the entry opens a submenu in the target application
}

// Target identifies the application whose menu bar is captured
type Target struct {
	PID  int
	Name string
}

func (t Target) String() string {
	if t.Name == "" {
		return "pid " + strconv.Itoa(t.PID)
	}
	return t.Name + " (pid " + strconv.Itoa(t.PID) + ")"
}

// SessionState is the lifecycle state of one search session
type SessionState int

const (
	StateIdle SessionState = iota
	StateCapturing
	StatePresenting
)

func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCapturing:
		return "capturing"
	case StatePresenting:
		return "presenting"
	default:
		return "unknown"
	}
}
