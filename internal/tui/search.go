package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ShayCichocki/switchyard/internal/task"
	"github.com/ShayCichocki/switchyard/pkg/models"
)

// QueryPort is the TUI-facing subset of the controller.
type QueryPort interface {
	DispatchQueryMany(sources []string, text string, params models.QueryParams) *task.Task[*models.Report]
	DispatchQueryAll(text string, params models.QueryParams) *task.Task[*models.Report]
}

// resultMsg carries a finished query back to the UI goroutine.
type resultMsg struct {
	query  string
	report *models.Report
	err    error
}

// waitForReport blocks on t off the UI goroutine.
func waitForReport(query string, t *task.Task[*models.Report]) tea.Cmd {
	return func() tea.Msg {
		report, err := t.Get()
		return resultMsg{query: query, report: report, err: err}
	}
}

var resultBoxStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("240")).
	Padding(0, 1)

// Search is the Bubble Tea model of the interactive search screen.
type Search struct {
	port    QueryPort
	sources []string
	limit   int

	header   *Header
	footer   *Footer
	input    *InputField
	viewport viewport.Model

	hits      []models.SearchResult
	errs      []string
	cursor    int
	lastQuery string
	busy      bool
	ready     bool
}

// NewSearch creates the search model. Empty sources query every enabled
// query provider.
func NewSearch(port QueryPort, sources []string, limit int) *Search {
	s := &Search{
		port:     port,
		sources:  sources,
		limit:    limit,
		header:   NewHeader(sources),
		footer:   NewFooter(),
		input:    NewInputField(),
		viewport: viewport.New(0, 0),
	}
	s.footer.SetMessage("Type to search.", false)
	return s
}

// Init starts the cursor blink.
func (s *Search) Init() tea.Cmd { return textinput.Blink }

// Update handles key, resize and result messages.
func (s *Search) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.resize(msg.Width, msg.Height)
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "ctrl+d", "esc":
			return s, tea.Quit
		case "down":
			if len(s.hits) > 0 {
				s.cursor = (s.cursor + 1) % len(s.hits)
				s.refresh()
			}
			return s, nil
		case "up":
			if len(s.hits) > 0 {
				s.cursor = (s.cursor - 1 + len(s.hits)) % len(s.hits)
				s.refresh()
			}
			return s, nil
		case "pgup", "pgdown":
			var cmd tea.Cmd
			s.viewport, cmd = s.viewport.Update(msg)
			return s, cmd
		}

	case QuerySubmittedMsg:
		return s, s.submit(msg.Query)

	case resultMsg:
		s.receive(msg)
		return s, nil
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

// submit dispatches the query unless one is already in flight.
func (s *Search) submit(query string) tea.Cmd {
	if s.busy {
		return nil
	}
	s.busy = true
	s.footer.SetBusy(true)
	s.footer.SetMessage(fmt.Sprintf("Searching for %q...", query), false)

	params := models.QueryParams{Limit: s.limit}
	var t *task.Task[*models.Report]
	if len(s.sources) == 0 {
		t = s.port.DispatchQueryAll(query, params)
	} else {
		t = s.port.DispatchQueryMany(s.sources, query, params)
	}
	return waitForReport(query, t)
}

func (s *Search) receive(msg resultMsg) {
	s.busy = false
	s.footer.SetBusy(false)
	s.cursor = 0
	s.lastQuery = msg.query

	if msg.err != nil {
		s.hits, s.errs = nil, nil
		s.footer.SetMessage("Error: "+msg.err.Error(), true)
		s.refresh()
		return
	}

	s.hits = CollectHits(msg.report)
	s.errs = msg.report.Errors()
	status := fmt.Sprintf("%d results for %q", len(s.hits), msg.query)
	if len(s.errs) > 0 {
		status += fmt.Sprintf(" (%d providers reported errors)", len(s.errs))
	}
	s.footer.SetMessage(status, len(s.errs) > 0 && len(s.hits) == 0)
	s.refresh()
}

func (s *Search) resize(width, height int) {
	s.ready = true
	s.header.SetWidth(width)
	s.footer.SetWidth(width)
	s.input.SetWidth(width)

	_, frame := resultBoxStyle.GetFrameSize()
	// header + input box (3) + footer
	reserved := s.header.Height() + 3 + 1
	s.viewport.Width = max(20, width-4)
	s.viewport.Height = max(3, height-reserved-frame)
	s.refresh()
}

func (s *Search) refresh() {
	s.viewport.SetContent(s.renderResults())
}

func (s *Search) renderResults() string {
	if s.lastQuery == "" {
		return dimStyle.Render("No results yet.")
	}
	var b strings.Builder
	for _, e := range s.errs {
		b.WriteString(errorStyle.Render("✗ "+e) + "\n")
	}
	if len(s.hits) == 0 {
		b.WriteString(dimStyle.Render("No matches."))
		return b.String()
	}
	for i, h := range s.hits {
		b.WriteString(renderHit(h, i == s.cursor))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// Hits returns the hits of the last query.
func (s *Search) Hits() []models.SearchResult { return s.hits }

// Cursor returns the selected hit index.
func (s *Search) Cursor() int { return s.cursor }

// Status returns the footer message.
func (s *Search) Status() string { return s.footer.Message() }

// View renders the screen.
func (s *Search) View() string {
	if !s.ready {
		return "Loading..."
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		s.header.View(),
		resultBoxStyle.Render(s.viewport.View()),
		s.input.View(),
		s.footer.View(),
	)
}
