// Package search flattens a captured menu into searchable items and ranks
// them against a query.
package search

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"

	"quickmenu/internal/domain"
)

// Indexer flattens captured trees. Exclude patterns are globs matched
// case-insensitively against breadcrumbs; a match drops the entry together
// with its submenu.
type Indexer struct {
	excludes []glob.Glob
}

// NewIndexer compiles the exclude patterns
func NewIndexer(excludes []string) (*Indexer, error) {
	ix := &Indexer{}
	for _, pattern := range excludes {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		g, err := glob.Compile(strings.ToLower(pattern))
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
		ix.excludes = append(ix.excludes, g)
	}
	return ix, nil
}

// Build flattens root without exclusions
func Build(root *domain.MenuNode) []domain.Item {
	return (&Indexer{}).Build(root)
}

// Build walks root in pre-order and emits one item per titled entry.
// Entries with submenus are emitted and also descended into.
func (ix *Indexer) Build(root *domain.MenuNode) []domain.Item {
	if root == nil {
		return nil
	}
	var items []domain.Item
	ix.walk(root.Children, nil, &items)
	return items
}

func (ix *Indexer) walk(nodes []*domain.MenuNode, ancestors []string, items *[]domain.Item) {
	for _, n := range nodes {
		if n.IsSeparator() || n.Title == "" {
			continue
		}

		crumbs := make([]string, len(ancestors)+1)
		copy(crumbs, ancestors)
		crumbs[len(ancestors)] = n.Title
		breadcrumb := strings.Join(crumbs, domain.BreadcrumbDelimiter)

		if ix.excluded(breadcrumb) {
			continue
		}

		*items = append(*items, domain.Item{
			Title:      n.Title,
			Breadcrumb: breadcrumb,
			Path:       n.Path.Clone(),
			Enabled:    n.Enabled,
			Depth:      len(crumbs),
			Submenu:    n.HasSubmenu(),
		})
		ix.walk(n.Children, crumbs, items)
	}
}

func (ix *Indexer) excluded(breadcrumb string) bool {
	if len(ix.excludes) == 0 {
		return false
	}
	lower := strings.ToLower(breadcrumb)
	for _, g := range ix.excludes {
		if g.Match(lower) {
			return true
		}
	}
	return false
}
