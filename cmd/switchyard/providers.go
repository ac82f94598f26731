package main

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/switchyard/internal/config"
	"github.com/ShayCichocki/switchyard/pkg/models"
)

var (
	providersKind string
	providersAll  bool
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List registered providers",
	Long: `List providers by kind, in registration order.

By default only enabled providers are shown; --all includes disabled ones.
Use the enable and disable subcommands to persist a toggle in the user
config (providers.disabled).`,
	RunE: runProviders,
}

var providersEnableCmd = &cobra.Command{
	Use:   "enable <kind:name>",
	Short: "Remove a provider from providers.disabled",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return toggleProvider(cmd.OutOrStdout(), args[0], true)
	},
}

var providersDisableCmd = &cobra.Command{
	Use:   "disable <kind:name>",
	Short: "Add a provider to providers.disabled",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return toggleProvider(cmd.OutOrStdout(), args[0], false)
	},
}

func init() {
	providersCmd.Flags().StringVarP(&providersKind, "kind", "k", "", "Only list this kind (storage, indexer, query)")
	providersCmd.Flags().BoolVarP(&providersAll, "all", "a", false, "Include disabled providers")

	providersCmd.AddCommand(providersEnableCmd)
	providersCmd.AddCommand(providersDisableCmd)
}

func runProviders(cmd *cobra.Command, args []string) error {
	kinds := models.Kinds
	if providersKind != "" {
		k, err := models.ParseKind(providersKind)
		if err != nil {
			return err
		}
		kinds = []models.Kind{k}
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	for _, kind := range kinds {
		fmt.Fprintf(out, "%s:\n", color.New(color.Bold).Sprint(kind))
		providers := a.ctrl.ListProviders(kind, !providersAll)
		if len(providers) == 0 {
			fmt.Fprintln(out, "  (none)")
			continue
		}
		for _, p := range providers {
			if p.Enabled() {
				fmt.Fprintf(out, "  %s %s\n", color.GreenString("●"), p.Name())
			} else {
				fmt.Fprintf(out, "  %s %s %s\n", color.RedString("○"), p.Name(), color.HiBlackString("(disabled)"))
			}
		}
	}
	return nil
}

// toggleProvider edits providers.disabled in the user config.
func toggleProvider(out io.Writer, arg string, enable bool) error {
	key, err := config.ParseProviderKey(arg)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	cfg.Providers.Disabled = setDisabled(cfg.Providers.Disabled, key, !enable)
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	if enable {
		printStatus(out, "✓", "Enabled "+key.String(), color.FgGreen)
	} else {
		printStatus(out, "✓", "Disabled "+key.String(), color.FgYellow)
	}
	return nil
}

// setDisabled returns entries with key present or absent. Matching is
// case-insensitive on the normalized kind:name form.
func setDisabled(entries []string, key config.ProviderKey, disabled bool) []string {
	want := strings.ToLower(key.String())
	out := make([]string, 0, len(entries)+1)
	for _, e := range entries {
		k, err := config.ParseProviderKey(e)
		if err == nil && strings.ToLower(k.String()) == want {
			continue
		}
		out = append(out, e)
	}
	if disabled {
		out = append(out, key.String())
	}
	slices.Sort(out)
	return out
}
