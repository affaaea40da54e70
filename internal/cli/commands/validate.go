package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gpsreplay/gpsreplay/pkg/config"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a configuration file",
		Long: `Validate a gpsreplay configuration file without loading any track.

Checks:
  - YAML syntax
  - Timezone name
  - Column mapping (no empty or duplicate names)
  - Log level and analysis thresholds
  - Webhook URLs and triggers
  - Output directory existence (warning only)`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Validating %s...\n", configPath)

	cfg, err := config.Load(cmd.Context(), configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Fprintf(w, "\nConfiguration valid!\n")
	fmt.Fprintf(w, "  Delimiter:     %q\n", cfg.Delimiter)
	fmt.Fprintf(w, "  Timezone:      %s\n", cfg.Location())
	fmt.Fprintf(w, "  Tick interval: %s\n", cfg.TickInterval)
	fmt.Fprintf(w, "  Log level:     %s\n", cfg.LogLevel)
	fmt.Fprintf(w, "  Max gap:       %s\n", cfg.Analysis.MaxGap)
	fmt.Fprintf(w, "  Max speed:     %g km/h\n", cfg.Analysis.MaxSpeed)

	c := cfg.Columns
	fmt.Fprintf(w, "\nColumns:\n")
	fmt.Fprintf(w, "  lat=%s lon=%s alt=%s speed=%s heading=%s sats=%s\n",
		c.Lat, c.Lon, c.Alt, c.Speed, c.Heading, c.Sats)

	if len(cfg.Webhooks) > 0 {
		fmt.Fprintf(w, "\nWebhooks:\n")
		for i, wh := range cfg.Webhooks {
			name := wh.Name
			if name == "" {
				name = wh.URL
			}
			fmt.Fprintf(w, "  %d. %s [%s]\n", i+1, name, wh.Trigger)
		}
	}

	if cfg.OutputDir != "" {
		if info, err := os.Stat(cfg.OutputDir); err != nil || !info.IsDir() {
			fmt.Fprintf(w, "\nWarning: output_dir %s does not exist\n", cfg.OutputDir)
		} else {
			fmt.Fprintf(w, "\nOutput directory: %s\n", cfg.OutputDir)
		}
	}

	return nil
}
