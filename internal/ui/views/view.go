package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"quickmenu/internal/domain"
)

// ResultsTop is the screen row of the first result line. The title and the
// query line sit above it, followed by one blank line.
const ResultsTop = 3

// FooterRows are the rows below the results: scroll indicator, status line,
// a blank line and the help line
const FooterRows = 4

// StatusKind selects the status line colour
type StatusKind int

const (
	StatusNone StatusKind = iota
	StatusLoading
	StatusInfo
	StatusDone
	StatusError
)

// ViewState contains all the state needed for rendering
type ViewState struct {
	Width       int
	Height      int
	Session     domain.SessionState
	Target      domain.Target
	Input       string // rendered query field
	Terms       []string
	Results     []domain.Item
	Highlighted int
	WindowStart int
	WindowEnd   int
	Status      string
	StatusKind  StatusKind
	ShowPaths   bool
	Help        string // rendered key help
}

// Renderer handles all view rendering
type Renderer struct {
	styles *Styles
}

// NewRenderer creates a new renderer
func NewRenderer() *Renderer {
	return &Renderer{styles: NewStyles()}
}

// Render produces the complete view
func (r *Renderer) Render(state ViewState) string {
	content := &strings.Builder{}

	title := r.styles.Title.Render("quickmenu")
	if state.Target.PID != 0 || state.Target.Name != "" {
		title += "  " + r.styles.Target.Render(state.Target.String())
	}
	content.WriteString(title)
	content.WriteString("\n")

	switch state.Session {
	case domain.StateIdle:
		content.WriteString("\n")
		if state.Status != "" {
			content.WriteString(r.renderStatus(state))
		} else {
			content.WriteString(r.styles.Dim.Render("Closed. Press the toggle key to search the menu bar."))
		}
		content.WriteString("\n")

	case domain.StateCapturing:
		content.WriteString(state.Input)
		content.WriteString("\n\n")
		content.WriteString(r.styles.StatusLoad.Render("Reading menus..."))
		content.WriteString("\n")
		if state.Status != "" {
			content.WriteString(r.renderStatus(state))
			content.WriteString("\n")
		}

	case domain.StatePresenting:
		content.WriteString(state.Input)
		content.WriteString("\n\n")
		content.WriteString(r.renderResults(state))
		if state.Status != "" {
			content.WriteString(r.renderStatus(state))
			content.WriteString("\n")
		}
	}

	if state.Help != "" {
		content.WriteString("\n")
		content.WriteString(state.Help)
	}

	out := content.String()
	if state.Height > 0 {
		out = lipgloss.NewStyle().MaxHeight(state.Height).Render(out)
	}
	return out
}

func (r *Renderer) renderResults(state ViewState) string {
	if len(state.Results) == 0 {
		return r.styles.Dim.Render("No matching menu items") + "\n"
	}

	start, end := state.WindowStart, state.WindowEnd
	if end <= start || end > len(state.Results) {
		start, end = 0, len(state.Results)
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		b.WriteString(r.RenderItem(state.Results[i], i == state.Highlighted, state.Terms, state.ShowPaths, state.Width))
		b.WriteString("\n")
	}

	if start > 0 || end < len(state.Results) {
		b.WriteString(r.styles.Scroll.Render(fmt.Sprintf("%d-%d of %d", start+1, end, len(state.Results))))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderItem renders one result row
func (r *Renderer) RenderItem(item domain.Item, selected bool, terms []string, showPaths bool, width int) string {
	marker := "  "
	if selected {
		marker = "› "
	}

	ancestors := ""
	if cut := strings.LastIndex(item.Breadcrumb, domain.BreadcrumbDelimiter); cut >= 0 {
		ancestors = item.Breadcrumb[:cut+len(domain.BreadcrumbDelimiter)]
	}
	titlePart := strings.TrimPrefix(item.Breadcrumb, ancestors)

	var line string
	if item.Enabled {
		line = highlightTerms(ancestors, terms, r.styles.Match, r.styles.Ancestors) +
			highlightTerms(titlePart, terms, r.styles.Match, r.styles.Breadcrumb)
	} else {
		line = r.styles.Disabled.Render(item.Breadcrumb)
	}
	if item.Submenu {
		line += r.styles.Submenu.Render(" ▸")
	}
	if showPaths {
		line += " " + r.styles.Path.Render(item.Path.String())
	}

	line = marker + line
	if selected {
		line = r.styles.SelectionBg.Render(line)
	}
	if width > 0 {
		line = lipgloss.NewStyle().MaxWidth(width).Render(line)
	}
	return line
}

func (r *Renderer) renderStatus(state ViewState) string {
	switch state.StatusKind {
	case StatusError:
		return r.styles.StatusError.Render(state.Status)
	case StatusDone:
		return r.styles.StatusDone.Render(state.Status)
	case StatusLoading:
		return r.styles.StatusLoad.Render(state.Status)
	default:
		return r.styles.StatusInfo.Render(state.Status)
	}
}
