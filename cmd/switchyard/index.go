package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/switchyard/internal/task"
	"github.com/ShayCichocki/switchyard/pkg/models"
)

var (
	indexProvider string
	indexJSON     bool
	indexYAML     bool
)

var indexCmd = &cobra.Command{
	Use:   "index <uri>",
	Short: "Index an identifier",
	Long: `Resolve an identifier through storage and hand the streams to indexers.

Without --provider every enabled indexer that handles the identifier runs,
in registration order, and the report has one child per indexer. With
--provider only the named indexer runs.

Bare paths are treated as file:// identifiers.

Examples:
  switchyard index ./docs
  switchyard index --provider fts file:///var/log/app.log`,
	Args: cobra.ExactArgs(1),
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().StringVarP(&indexProvider, "provider", "p", "", "Run only this indexer")
	indexCmd.Flags().BoolVar(&indexJSON, "json", false, "Print the report as JSON")
	indexCmd.Flags().BoolVar(&indexYAML, "yaml", false, "Print the report as YAML")
}

func runIndex(cmd *cobra.Command, args []string) error {
	format, err := pickFormat(indexJSON, indexYAML)
	if err != nil {
		return err
	}
	uri, err := parseURIArg(args[0])
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	var t *task.Task[*models.Report]
	if indexProvider != "" {
		t = a.ctrl.DispatchIndex(indexProvider, uri)
	} else {
		t = a.ctrl.DispatchIndexAll(uri)
	}

	report, err := t.Wait(cmd.Context())
	if err != nil {
		return fmt.Errorf("index %s: %w", uri, err)
	}

	out := cmd.OutOrStdout()
	if err := writeReport(out, report, format); err != nil {
		return err
	}
	if format == formatText {
		reportSummary(out, "Index of "+uri.String(), report)
	}
	return nil
}
