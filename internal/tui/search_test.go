package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ShayCichocki/switchyard/internal/task"
	"github.com/ShayCichocki/switchyard/pkg/models"
)

type fakePort struct {
	report  *models.Report
	err     error
	sources []string
	all     int
}

func (p *fakePort) result(name string) *task.Task[*models.Report] {
	if p.err != nil {
		return task.Failed[*models.Report](name, p.err)
	}
	return task.Completed(name, p.report)
}

func (p *fakePort) DispatchQueryMany(sources []string, text string, _ models.QueryParams) *task.Task[*models.Report] {
	p.sources = sources
	return p.result("multiple query -> " + text)
}

func (p *fakePort) DispatchQueryAll(text string, _ models.QueryParams) *task.Task[*models.Report] {
	p.all++
	return p.result("query all -> " + text)
}

func sampleReport() *models.Report {
	root := models.NewQueryReport()
	a := models.NewQueryReport()
	a.Source = "fts"
	a.Value = []models.SearchResult{
		{URI: "file:///a.txt", Score: 2, Snippet: "the [fox]", Source: "fts"},
		{URI: "file:///b.txt", Score: 1, Source: "fts"},
	}
	root.AddChild(a)
	root.AddChild(models.ErrorReport("memory: index unavailable"))
	empty := models.EmptyQueryReport()
	empty.Source = "lucene"
	root.AddChild(empty)
	return root
}

// run feeds msg to the model and follows returned commands until none remain.
func run(t *testing.T, m *Search, msg tea.Msg) {
	t.Helper()
	for i := 0; msg != nil && i < 5; i++ {
		_, cmd := m.Update(msg)
		if cmd == nil {
			return
		}
		msg = cmd()
	}
}

func TestSearch_EnterDispatchesAndShowsHits(t *testing.T) {
	port := &fakePort{report: sampleReport()}
	m := NewSearch(port, []string{"fts", "memory"}, 10)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m.input.SetValue("fox")

	run(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if len(port.sources) != 2 {
		t.Errorf("sources = %v", port.sources)
	}
	if len(m.Hits()) != 2 {
		t.Fatalf("hits = %d, want 2", len(m.Hits()))
	}
	if !strings.Contains(m.Status(), "2 results") || !strings.Contains(m.Status(), "errors") {
		t.Errorf("status = %q", m.Status())
	}
	if !strings.Contains(m.View(), "file:///a.txt") {
		t.Error("view should list the first hit")
	}
}

func TestSearch_NoSourcesQueriesAll(t *testing.T) {
	port := &fakePort{report: models.NewQueryReport()}
	m := NewSearch(port, nil, 10)
	m.input.SetValue("fox")

	run(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if port.all != 1 {
		t.Errorf("DispatchQueryAll calls = %d, want 1", port.all)
	}
	if !strings.Contains(m.Status(), "0 results") {
		t.Errorf("status = %q", m.Status())
	}
}

func TestSearch_FailedQuery(t *testing.T) {
	port := &fakePort{err: errTest}
	m := NewSearch(port, []string{"fts"}, 10)
	m.input.SetValue("fox")

	run(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if !strings.HasPrefix(m.Status(), "Error:") {
		t.Errorf("status = %q", m.Status())
	}
	if len(m.Hits()) != 0 {
		t.Error("hits should be cleared")
	}
}

func TestSearch_CursorWraps(t *testing.T) {
	port := &fakePort{report: sampleReport()}
	m := NewSearch(port, []string{"fts"}, 10)
	m.input.SetValue("fox")
	run(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if m.Cursor() != 1 {
		t.Errorf("cursor after down = %d", m.Cursor())
	}
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if m.Cursor() != 0 {
		t.Errorf("cursor should wrap, got %d", m.Cursor())
	}
	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if m.Cursor() != 1 {
		t.Errorf("cursor after up = %d", m.Cursor())
	}
}

func TestSearch_Quit(t *testing.T) {
	m := NewSearch(&fakePort{}, nil, 10)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("ctrl+c should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c should quit")
	}
}

func TestSearch_ViewBeforeResize(t *testing.T) {
	m := NewSearch(&fakePort{}, nil, 10)
	if m.View() != "Loading..." {
		t.Errorf("View() = %q", m.View())
	}
}
