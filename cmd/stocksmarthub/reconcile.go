package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// reconcileCmd represents the reconcile command
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Copy sheet images into products that have none in the database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		reconciler, err := a.reconciler()
		if err != nil {
			return err
		}
		rep, err := reconciler.Reconcile(ctx)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Checked %d products, healed %d, errors %d\n", rep.Checked, rep.Healed, rep.Errors)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reconcileCmd)
}
