package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var unindexCmd = &cobra.Command{
	Use:   "unindex <uri>",
	Short: "Remove an identifier from every enabled indexer",
	Long: `Ask every enabled indexer to forget an identifier and anything under it.
Indexer errors are logged (see --verbose) and do not stop the others.`,
	Args: cobra.ExactArgs(1),
	RunE: runUnindex,
}

func runUnindex(cmd *cobra.Command, args []string) error {
	uri, err := parseURIArg(args[0])
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	a.ctrl.Unindex(uri)
	printStatus(cmd.OutOrStdout(), "✓", "Unindexed "+uri.String(), color.FgGreen)
	return nil
}
