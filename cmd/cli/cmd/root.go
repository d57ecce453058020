package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sofa-bound/pkg/config"
	"github.com/sofa-bound/pkg/telemetry"
	"github.com/sofa-bound/pkg/utils"
)

var (
	// Global flags
	cfgFile string
	verbose bool

	cfg    *config.Config
	logger utils.Logger

	telemetryShutdown telemetry.ShutdownFunc
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "sofa-bound",
	Short: "Branch-and-bound upper bounds for the moving sofa problem",
	Long: `sofa-bound searches for an upper bound on the area of the moving sofa:
the largest rigid shape that can be rotated around an L-shaped corridor.

The search branches over the parameter space of the sofa's bounding
rectangles at a finite set of rotation angles, computes every candidate
area in exact rational arithmetic, and prunes candidates whose area falls
below a target. Surviving candidates are worked in parallel batches.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}

		level := utils.ParseLogLevel(cfg.Log.Level)
		if verbose {
			level = utils.LevelDebug
		}
		if cfg.Log.File != "" {
			logger, err = utils.NewFileLogger(level, cfg.Log.File)
			if err != nil {
				return err
			}
		} else {
			logger = utils.NewDefaultLogger(level, os.Stdout)
		}

		telemetryShutdown, err = telemetry.Init(cmd.Context(), telemetry.Config{
			Enabled:        cfg.Telemetry.Enabled,
			ServiceVersion: Version,
			Endpoint:       cfg.Telemetry.Endpoint,
			Protocol:       cfg.Telemetry.Protocol,
			Insecure:       cfg.Telemetry.Insecure,
		})
		if err != nil {
			logger.Warn("failed to initialize telemetry: %v", err)
			telemetryShutdown = nil
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if telemetryShutdown != nil {
			if err := telemetryShutdown(cmd.Context()); err != nil {
				logger.Warn("telemetry shutdown failed: %v", err)
			}
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: ./sofa-bound.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.Example = `  # Search with a problem definition on stdin
  sofa-bound search < problem.txt

  # Search a problem file with 8 workers
  sofa-bound search -i problem.txt --workers 8

  # Override the target area from the command line
  sofa-bound search -i problem.txt --target 2469/1000`
}
