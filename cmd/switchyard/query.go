package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/switchyard/internal/task"
	"github.com/ShayCichocki/switchyard/pkg/models"
)

var (
	querySources []string
	queryFields  []string
	queryLimit   int
	queryOffset  int
	queryPrefix  string
	queryJSON    bool
	queryYAML    bool
)

var queryCmd = &cobra.Command{
	Use:   "query <text>",
	Short: "Query one or more providers",
	Long: `Run a query against the named query providers and print the merged report.

Each source contributes one child to the report, in the order given. Unknown
or disabled sources contribute an empty child. Without --source the
query.sources config is used, and if that is empty every enabled query
provider is asked.

Examples:
  switchyard query "connection pool"
  switchyard query --source fts --source memory --limit 5 retry
  switchyard query --json --prefix file:///src handler`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringArrayVarP(&querySources, "source", "s", nil, "Query provider to ask (repeatable)")
	queryCmd.Flags().StringSliceVar(&queryFields, "field", nil, "Restrict matching to fields, when supported")
	queryCmd.Flags().IntVarP(&queryLimit, "limit", "n", 0, "Maximum hits per provider (default from query.default_limit)")
	queryCmd.Flags().IntVar(&queryOffset, "offset", 0, "Skip the first hits")
	queryCmd.Flags().StringVar(&queryPrefix, "prefix", "", "Only return URIs under this prefix")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "Print the report as JSON")
	queryCmd.Flags().BoolVar(&queryYAML, "yaml", false, "Print the report as YAML")
}

func runQuery(cmd *cobra.Command, args []string) error {
	format, err := pickFormat(queryJSON, queryYAML)
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	text := strings.Join(args, " ")
	params := models.QueryParams{
		Limit:  queryLimit,
		Offset: queryOffset,
		Fields: queryFields,
	}
	if queryPrefix != "" {
		params.Filters = map[string]string{"prefix": queryPrefix}
	}

	sources := querySources
	if len(sources) == 0 {
		sources = a.cfg.Query.Sources
	}

	var t *task.Task[*models.Report]
	if len(sources) == 0 {
		t = a.ctrl.DispatchQueryAll(text, params)
	} else {
		t = a.ctrl.DispatchQueryMany(sources, text, params)
	}

	report, err := t.Wait(cmd.Context())
	if err != nil {
		return fmt.Errorf("query %q: %w", text, err)
	}
	return writeReport(cmd.OutOrStdout(), report, format)
}
