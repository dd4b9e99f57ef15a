package search

import (
	"sort"
	"strings"
	"unicode/utf8"

	"quickmenu/internal/domain"
)

// Terms normalizes a query into lowercase whitespace-separated terms
func Terms(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

// Search returns the items matching query, best first, at most maxResults of
// them (no limit when maxResults <= 0).
//
// An empty query lists the menu bar's own entries in index order. Otherwise
// an item matches when its breadcrumb contains every term, and matches are
// ordered by: title starts with the whole query, then shorter breadcrumb, then
// breadcrumb compared case-insensitively.
func Search(query string, items []domain.Item, maxResults int) []domain.Item {
	terms := Terms(query)
	if len(terms) == 0 {
		return topLevel(items, maxResults)
	}
	normalized := strings.Join(terms, " ")

	type candidate struct {
		item    domain.Item
		prefix  bool
		length  int
		lowered string
	}

	var matches []candidate
	for _, item := range items {
		lowered := strings.ToLower(item.Breadcrumb)
		if !containsAll(lowered, terms) {
			continue
		}
		matches = append(matches, candidate{
			item:    item,
			prefix:  strings.HasPrefix(strings.ToLower(item.Title), normalized),
			length:  utf8.RuneCountInString(item.Breadcrumb),
			lowered: lowered,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.prefix != b.prefix {
			return a.prefix
		}
		if a.length != b.length {
			return a.length < b.length
		}
		if a.lowered != b.lowered {
			return a.lowered < b.lowered
		}
		if a.item.Breadcrumb != b.item.Breadcrumb {
			return a.item.Breadcrumb < b.item.Breadcrumb
		}
		return a.item.Path.Compare(b.item.Path) < 0
	})

	if maxResults > 0 && len(matches) > maxResults {
		matches = matches[:maxResults]
	}
	out := make([]domain.Item, len(matches))
	for i, m := range matches {
		out[i] = m.item
	}
	return out
}

func topLevel(items []domain.Item, maxResults int) []domain.Item {
	var out []domain.Item
	for _, item := range items {
		if len(item.Path) != 1 {
			continue
		}
		if maxResults > 0 && len(out) == maxResults {
			break
		}
		out = append(out, item)
	}
	return out
}

func containsAll(text string, terms []string) bool {
	for _, term := range terms {
		if !strings.Contains(text, term) {
			return false
		}
	}
	return true
}

// FindBreadcrumb returns the first item whose breadcrumb equals breadcrumb,
// ignoring case and surrounding whitespace
func FindBreadcrumb(items []domain.Item, breadcrumb string) (domain.Item, bool) {
	want := strings.TrimSpace(breadcrumb)
	for _, item := range items {
		if strings.EqualFold(item.Breadcrumb, want) {
			return item, true
		}
	}
	return domain.Item{}, false
}
