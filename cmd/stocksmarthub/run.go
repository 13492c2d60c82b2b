package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/stocksmarthub/backend/internal/usecase"
)

var (
	runMax       int
	runReconcile bool
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Find images for products that have none",
	Long: `Loads the product sheet, resolves an image for up to --max products
without one and writes every found image to the sheet and the products table.
The sheet is saved once at the end, after a .backup copy, and only when at
least one image was attached.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		if runReconcile {
			reconciler, err := a.reconciler()
			if err != nil {
				return err
			}
			rec, err := reconciler.Reconcile(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reconciled %d of %d products\n", rec.Healed, rec.Checked)
		}

		orch, err := a.orchestrator()
		if err != nil {
			return err
		}
		report, err := orch.Run(ctx, usecase.RunOptions{MaxProducts: runMax})
		if err != nil {
			return err
		}

		printRunReport(cmd, report)
		if !report.Success() {
			return errors.New("no product image was attached")
		}
		return nil
	},
}

func printRunReport(cmd *cobra.Command, r *usecase.RunReport) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s\n", r.RunID)
	fmt.Fprintf(out, "  candidates:  %d\n", r.Candidates)
	fmt.Fprintf(out, "  skipped:     %d\n", r.DroppedRows)
	fmt.Fprintf(out, "  processed:   %d\n", r.Processed)
	fmt.Fprintf(out, "  attached:    %d\n", r.Succeeded)
	fmt.Fprintf(out, "  no image:    %d\n", r.NoImage)
	fmt.Fprintf(out, "  failed:      %d\n", r.Failed)
	fmt.Fprintf(out, "  cache hits:  %d\n", r.CacheHits)
	fmt.Fprintf(out, "  sheet saved: %t\n", r.Flushed)
	fmt.Fprintf(out, "  duration:    %s\n", r.Duration.Round(time.Millisecond))
}

func init() {
	runCmd.Flags().IntVar(&runMax, "max", 50, "maximum number of products to process (0 for all)")
	runCmd.Flags().BoolVar(&runReconcile, "reconcile", false, "heal database rows from the sheet before the run")
	rootCmd.AddCommand(runCmd)
}
