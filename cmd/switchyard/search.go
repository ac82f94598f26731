package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/switchyard/internal/tui"
)

var (
	searchSources []string
	searchLimit   int
	searchIndex   []string
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Interactive search",
	Long: `Open a full-screen search prompt.

Type a query and press Enter; results from every source are listed with
their scores. Use up/down to move between hits and Ctrl+C or Esc to quit.

The memory provider starts empty in each process; use --index to load
directories into it (and any other handling indexer) before searching.`,
	Args: cobra.NoArgs,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringArrayVarP(&searchSources, "source", "s", nil, "Query provider to ask (repeatable)")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "Maximum hits per provider")
	searchCmd.Flags().StringArrayVar(&searchIndex, "index", nil, "Index this identifier before starting (repeatable)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	for _, arg := range searchIndex {
		uri, err := parseURIArg(arg)
		if err != nil {
			return err
		}
		if _, err := a.ctrl.DispatchIndexAll(uri).Wait(cmd.Context()); err != nil {
			return fmt.Errorf("index %s: %w", uri, err)
		}
	}

	sources := searchSources
	if len(sources) == 0 {
		sources = a.cfg.Query.Sources
	}

	p := tea.NewProgram(
		tui.NewSearch(a.ctrl, sources, searchLimit),
		tea.WithAltScreen(),
		tea.WithContext(cmd.Context()),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run search: %w", err)
	}
	return nil
}
