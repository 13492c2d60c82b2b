package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database schema migrations",
	Long: `Creates or upgrades the vendors and products tables for the configured
database driver (sqlite or pgx). Already applied migrations are skipped.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// newApp applies pending migrations before returning
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		fmt.Fprintf(cmd.OutOrStdout(), "Database schema is up to date (%s)\n", a.cfg.Database.Driver)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
