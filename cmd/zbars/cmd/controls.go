//go:build zbar_fork

package cmd

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/Nic0w/zbars/zbar"
	"github.com/spf13/cobra"
)

// applyControls sets each video control in name order.
func applyControls(proc *zbar.Processor, controls map[string]int) error {
	for _, name := range slices.Sorted(maps.Keys(controls)) {
		if err := proc.SetControl(name, controls[name]); err != nil {
			return err
		}
		slog.Debug("video control set", "name", name, "value", controls[name])
	}
	return nil
}

var controlsCmd = &cobra.Command{
	Use:   "controls name[=value]...",
	Short: "Read or set video device controls",
	Long: `Open the video device, set every name=value argument, then print the
current value of every named control.

Examples:
  zbars controls brightness contrast
  zbars controls --device /dev/video1 focus_auto=0 focus_absolute=30`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: bindOnRun(processorFlagBindings...),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := validatedConfig()
		if err != nil {
			return err
		}
		var names, pairs []string
		for _, arg := range args {
			name, _, isSet := strings.Cut(arg, "=")
			if isSet {
				pairs = append(pairs, arg)
			}
			names = append(names, strings.TrimSpace(name))
		}
		if err := mergeControls(cfg, pairs); err != nil {
			return err
		}

		proc, err := openProcessor(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = proc.Close() }()

		out := cmd.OutOrStdout()
		for _, name := range names {
			value, err := proc.Control(name)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(out, "%s=%d\n", name, value); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(controlsCmd)
	addProcessorFlags(controlsCmd)
}
