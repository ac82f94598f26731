package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ShayCichocki/switchyard/pkg/models"
)

var (
	sourceStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	scoreStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	uriStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	cursorStyle  = lipgloss.NewStyle().Background(lipgloss.Color("236")).Foreground(lipgloss.Color("15"))
	snippetStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("246")).Italic(true)
)

// CollectHits flattens every []SearchResult found in the tree, in tree order.
func CollectHits(r *models.Report) []models.SearchResult {
	var hits []models.SearchResult
	r.Walk(func(_ int, n *models.Report) bool {
		switch v := n.Value.(type) {
		case []models.SearchResult:
			hits = append(hits, v...)
		case models.SearchResult:
			hits = append(hits, v)
		}
		return true
	})
	return hits
}

// RenderReport draws the report tree as indented lines.
func RenderReport(r *models.Report) string {
	if r == nil {
		return dimStyle.Render("(no report)")
	}
	var b strings.Builder
	r.Walk(func(depth int, n *models.Report) bool {
		indent := strings.Repeat("  ", depth)
		b.WriteString(indent)
		b.WriteString(nodeLabel(n))
		b.WriteString("\n")
		if hits, ok := n.Value.([]models.SearchResult); ok {
			for _, h := range hits {
				b.WriteString(indent + "  " + renderHit(h, false) + "\n")
			}
		}
		return true
	})
	return strings.TrimRight(b.String(), "\n")
}

func nodeLabel(n *models.Report) string {
	name := n.Source
	if name == "" {
		if n.Query {
			name = "query"
		} else {
			name = "report"
		}
	}
	label := sourceStyle.Render(name)

	switch {
	case n.IsError():
		return label + " " + errorStyle.Render("error: "+n.Error)
	case n.IsEmpty():
		return label + " " + dimStyle.Render("(no results)")
	}

	switch v := n.Value.(type) {
	case models.IndexStats:
		detail := fmt.Sprintf("%d documents, %d bytes", v.Documents, v.Bytes)
		if v.Skipped > 0 {
			detail += fmt.Sprintf(", %d skipped", v.Skipped)
		}
		return label + " " + detail
	case []models.SearchResult:
		return label + " " + fmt.Sprintf("%d hits", len(v))
	case nil:
		return label + " " + dimStyle.Render(fmt.Sprintf("(%d children)", n.Len()))
	default:
		return label + " " + fmt.Sprint(v)
	}
}

func renderHit(h models.SearchResult, selected bool) string {
	line := scoreStyle.Render(fmt.Sprintf("%7.3f", h.Score)) + "  " + uriStyle.Render(h.URI)
	if h.Source != "" {
		line += " " + dimStyle.Render("["+h.Source+"]")
	}
	if selected {
		line = cursorStyle.Render("▸ ") + line
	}
	if h.Snippet != "" {
		line += "\n" + "           " + snippetStyle.Render(oneLine(h.Snippet))
	}
	return line
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
