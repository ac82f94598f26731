// Package tui provides the interactive search screen and the report
// renderer shared with the CLI.
//
// The search screen is a Bubble Tea program with a query input, a
// scrollable result viewport and a status footer. Queries are dispatched
// through a [QueryPort], and the returned task is awaited inside a tea.Cmd
// so the UI goroutine never blocks.
//
// Usage:
//
//	model := tui.NewSearch(controller, []string{"fts", "memory"}, 20)
//	program := tea.NewProgram(model, tea.WithAltScreen())
//	_, err := program.Run()
//
// Keys: Enter runs the query, ↑/↓ move between hits, PgUp/PgDn scroll,
// Esc or Ctrl+C quit.
package tui
