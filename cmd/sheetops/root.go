package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sheetops/config"
	"sheetops/internal/logging"
)

// app carries the global flags and the state PersistentPreRunE prepares for
// the sub-commands.
type app struct {
	configPath string
	workbook   string
	output     string
	format     string
	dryRun     bool
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "sheetops",
		Short: "Schedule workbook routines: regions, cycle import, week reports, dates, timesheets",
		Long: `sheetops edits the operations workbook in place.

Each sub-command opens the workbook, runs one routine, saves the workbook
(to --output when given) and prints a summary. Changes made before a failure
are still saved unless --dry-run is set.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", config.DefaultPath, "Configuration file")
	pf.StringVarP(&a.workbook, "workbook", "w", "", "Workbook to edit (or set SHEETOPS_WORKBOOK)")
	pf.StringVarP(&a.output, "output", "o", "", "Save to this file instead of in place")
	pf.StringVarP(&a.format, "format", "f", "text", "Summary format: text, markdown or toon")
	pf.BoolVar(&a.dryRun, "dry-run", false, "Run without saving the workbook")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		newRegionsCmd(a),
		newImportCycleCmd(a),
		newWeekReportCmd(a),
		newStripDatesCmd(a),
		newTimesheetsCmd(a),
		newHighlightCmd(a),
		newInspectCmd(a),
	)
	return root
}

// setup loads the configuration and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.workbook != "" {
		cfg.Workbook = a.workbook
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg

	logger, err := logging.New(logging.Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Verbose: a.verbose,
	})
	if err != nil {
		return err
	}
	a.logger = logger.With(
		zap.String("run_id", uuid.NewString()),
		zap.String("command", cmd.Name()),
	)
	return nil
}
