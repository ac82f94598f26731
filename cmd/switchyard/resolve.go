package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <uri>",
	Short: "List the streams storage returns for an identifier",
	Args:  cobra.ExactArgs(1),
	RunE:  runResolve,
}

func runResolve(cmd *cobra.Command, args []string) error {
	uri, err := parseURIArg(args[0])
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	storage, ok := a.ctrl.StorageFor(uri)
	if !ok {
		printStatus(out, "⚠", fmt.Sprintf("No storage provider handles %s", uri), color.FgYellow)
		return nil
	}

	streams := a.ctrl.Resolve(uri)
	printStatus(out, "✓", fmt.Sprintf("%s: %d streams via %s", uri, len(streams), storage.Name()), color.FgGreen)
	for _, s := range streams {
		fmt.Fprintf(out, "  %10d  %s\n", s.Size(), s.URI())
	}
	return nil
}
