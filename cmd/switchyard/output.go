package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"

	"github.com/fatih/color"
	"go.yaml.in/yaml/v3"

	"github.com/ShayCichocki/switchyard/internal/plugin"
	"github.com/ShayCichocki/switchyard/internal/tui"
	"github.com/ShayCichocki/switchyard/pkg/models"
)

// outputFormat selects how a report is written.
type outputFormat int

const (
	formatText outputFormat = iota
	formatJSON
	formatYAML
)

func pickFormat(asJSON, asYAML bool) (outputFormat, error) {
	switch {
	case asJSON && asYAML:
		return formatText, fmt.Errorf("--json and --yaml are mutually exclusive")
	case asJSON:
		return formatJSON, nil
	case asYAML:
		return formatYAML, nil
	default:
		return formatText, nil
	}
}

// writeReport writes report to w in the chosen format.
func writeReport(w io.Writer, report *models.Report, format outputFormat) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	default:
		_, err := fmt.Fprintln(w, tui.RenderReport(report))
		return err
	}
}

// printStatus prints a status line with color
func printStatus(w io.Writer, symbol, message string, colorAttr color.Attribute) {
	c := color.New(colorAttr)
	fmt.Fprintf(w, "%s %s\n", c.Sprint(symbol), message)
}

// reportSummary prints one status line for a finished report.
func reportSummary(w io.Writer, action string, report *models.Report) {
	if errs := report.Errors(); len(errs) > 0 {
		printStatus(w, "⚠", fmt.Sprintf("%s finished with %d errors", action, len(errs)), color.FgYellow)
		return
	}
	printStatus(w, "✓", action+" finished", color.FgGreen)
}

// parseURIArg parses a CLI identifier argument.
func parseURIArg(arg string) (*url.URL, error) {
	u, err := plugin.ParseURI(arg)
	if err != nil {
		return nil, fmt.Errorf("invalid identifier: %w", err)
	}
	return u, nil
}
