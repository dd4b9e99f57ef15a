package views

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
)

// highlightTerms renders text with every occurrence of every term in
// highlight and the rest in normal. Terms are expected in lower case.
func highlightTerms(text string, terms []string, highlight, normal lipgloss.Style) string {
	if text == "" {
		return ""
	}
	runes := []rune(text)
	lower := make([]rune, len(runes))
	for i, r := range runes {
		lower[i] = unicode.ToLower(r)
	}

	marked := make([]bool, len(runes))
	for _, term := range terms {
		t := []rune(term)
		if len(t) == 0 || len(t) > len(lower) {
			continue
		}
		for i := 0; i+len(t) <= len(lower); i++ {
			if string(lower[i:i+len(t)]) == term {
				for j := i; j < i+len(t); j++ {
					marked[j] = true
				}
			}
		}
	}

	var b strings.Builder
	start := 0
	for i := 1; i <= len(runes); i++ {
		if i < len(runes) && marked[i] == marked[start] {
			continue
		}
		style := normal
		if marked[start] {
			style = highlight
		}
		b.WriteString(style.Render(string(runes[start:i])))
		start = i
	}
	return b.String()
}
