package main

import (
	"fmt"
	"io"
	"net/url"
	"sync"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/switchyard/internal/orchestrator"
	"github.com/ShayCichocki/switchyard/internal/watch"
	"github.com/ShayCichocki/switchyard/pkg/models"
)

var watchInitial bool

var watchCmd = &cobra.Command{
	Use:   "watch <dir>...",
	Short: "Keep indexes in sync with directories",
	Long: `Watch directories recursively and index or unindex files as they change.

Writes are debounced (watch.debounce) and then indexed by every handling
indexer. Removed or renamed paths are unindexed. Press Ctrl+C to stop.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchInitial, "initial", true, "Index each directory before watching")
}

func runWatch(cmd *cobra.Command, args []string) error {
	events := orchestrator.NewEventEmitter(256)
	a, err := newApp(orchestrator.WithEventEmitter(events))
	if err != nil {
		return err
	}
	defer a.Close()

	out := &syncWriter{w: cmd.OutOrStdout()}
	go printProviderEvents(out, events.Events())

	var ignore []string
	if len(a.cfg.Watch.Ignore) > 0 {
		ignore = a.cfg.Watch.Ignore
	}

	w, err := watch.New(a.ctrl, watch.Options{
		Debounce: a.cfg.Watch.Debounce,
		Ignore:   ignore,
		OnIndexed: func(uri *url.URL, report *models.Report, err error) {
			if err != nil {
				printStatus(out, "✗", fmt.Sprintf("%s: %v", uri, err), color.FgRed)
				return
			}
			reportSummary(out, "Index of "+uri.String(), report)
		},
		OnUnindexed: func(uri *url.URL) {
			printStatus(out, "−", "Unindexed "+uri.String(), color.FgYellow)
		},
	})
	if err != nil {
		return err
	}
	defer w.Close()

	for _, dir := range args {
		if err := w.Add(dir); err != nil {
			return err
		}
		if watchInitial {
			uri, err := parseURIArg(dir)
			if err != nil {
				return err
			}
			report, err := a.ctrl.DispatchIndexAll(uri).Wait(cmd.Context())
			if err != nil {
				printStatus(out, "✗", fmt.Sprintf("%s: %v", uri, err), color.FgRed)
				continue
			}
			reportSummary(out, "Initial index of "+uri.String(), report)
		}
	}

	printStatus(out, "●", fmt.Sprintf("Watching %d directories", len(w.WatchList())), color.FgCyan)
	return w.Run(cmd.Context())
}

// printProviderEvents reports per-provider failures until the emitter closes.
func printProviderEvents(out io.Writer, events <-chan orchestrator.Event) {
	for ev := range events {
		if ev.Error == nil {
			continue
		}
		switch ev.Type {
		case orchestrator.EventIndexFinished, orchestrator.EventUnindex:
			printStatus(out, "✗", fmt.Sprintf("%s %s: %s: %v", ev.Type, ev.Provider, ev.URI, ev.Error), color.FgRed)
		}
	}
}

// syncWriter serializes writes from watcher callbacks and the event loop.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
