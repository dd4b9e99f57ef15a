package menu

import (
	"fmt"
	"io"
	"strings"

	"quickmenu/internal/domain"
)

// Walk visits every node below root in pre-order. Returning false from fn
// skips the node's subtree.
func Walk(root *domain.MenuNode, fn func(n *domain.MenuNode, depth int) bool) {
	if root == nil {
		return
	}
	var visit func(nodes []*domain.MenuNode, depth int)
	visit = func(nodes []*domain.MenuNode, depth int) {
		for _, n := range nodes {
			if fn(n, depth) {
				visit(n.Children, depth+1)
			}
		}
	}
	visit(root.Children, 1)
}

// Find returns the captured node stamped with path, or nil
func Find(root *domain.MenuNode, path domain.Path) *domain.MenuNode {
	var found *domain.MenuNode
	Walk(root, func(n *domain.MenuNode, _ int) bool {
		if found != nil {
			return false
		}
		if n.Path.Equal(path) {
			found = n
			return false
		}
		return true
	})
	return found
}

// Count returns the number of titled, non-separator nodes
func Count(root *domain.MenuNode) int {
	count := 0
	Walk(root, func(n *domain.MenuNode, _ int) bool {
		if !n.IsSeparator() && n.Title != "" {
			count++
		}
		return true
	})
	return count
}

// Print writes an indented outline of the tree with each node's path
func Print(w io.Writer, root *domain.MenuNode) error {
	var err error
	Walk(root, func(n *domain.MenuNode, depth int) bool {
		if err != nil {
			return false
		}
		indent := strings.Repeat("  ", depth-1)
		switch {
		case n.IsSeparator():
			_, err = fmt.Fprintf(w, "%s────\n", indent)
		case !n.Enabled:
			_, err = fmt.Fprintf(w, "%s%s %s (disabled)\n", indent, n.Title, n.Path)
		default:
			_, err = fmt.Fprintf(w, "%s%s %s\n", indent, n.Title, n.Path)
		}
		return true
	})
	return err
}
