package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sheetops"
	"sheetops/summary"
)

// routine edits an open workbook and returns the summary to print. A routine
// may return a summary together with an error.
type routine func(ctx context.Context, wb *sheetops.Workbook, logger *zap.Logger) (*summary.Summary, error)

// withWorkbook opens the configured workbook, runs fn and saves the workbook
// when fn changed it, even when fn failed or panicked.
func (a *app) withWorkbook(cmd *cobra.Command, fn routine, opts ...sheetops.Option) error {
	path := a.cfg.Workbook
	if path == "" {
		return errors.New("no workbook given: use --workbook or SHEETOPS_WORKBOOK")
	}
	wb, err := sheetops.Open(path, append([]sheetops.Option{sheetops.WithLogger(a.logger)}, opts...)...)
	if err != nil {
		return err
	}
	defer wb.Close()

	sum, runErr := a.run(cmd.Context(), wb, fn)
	if runErr != nil {
		a.logger.Error("routine failed", zap.Error(runErr))
	}
	saveErr := a.save(wb)

	if sum != nil {
		out, err := sum.Render(a.format)
		if err != nil {
			return errors.Join(runErr, saveErr, fmt.Errorf("render summary: %w", err))
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
	}
	return errors.Join(runErr, saveErr)
}

func (a *app) run(ctx context.Context, wb *sheetops.Workbook, fn routine) (sum *summary.Summary, err error) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("routine panicked", zap.Any("panic", r), zap.Stack("stack"))
			err = fmt.Errorf("unexpected failure: %v", r)
		}
	}()
	if ctx == nil {
		ctx = context.Background()
	}
	return fn(ctx, wb, a.logger)
}

func (a *app) save(wb *sheetops.Workbook) error {
	if !wb.Dirty() {
		return nil
	}
	if a.dryRun {
		a.logger.Info("dry run: changes not saved")
		return nil
	}
	if a.output != "" {
		return wb.SaveAs(a.output)
	}
	return wb.Save()
}
