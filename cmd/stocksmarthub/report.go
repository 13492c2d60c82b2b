package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/stocksmarthub/backend/internal/infrastructure/sqlstore"
	"github.com/stocksmarthub/backend/internal/report"
)

var reportHTML bool

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print vendor, product and image coverage statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		summary, err := sqlstore.NewSummaryRepository(a.db).Summary(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if reportHTML {
			page, err := report.HTML(summary, time.Now())
			if err != nil {
				return err
			}
			_, err = out.Write(page)
			return err
		}
		fmt.Fprint(out, report.Markdown(summary, time.Now()))
		return nil
	},
}

func init() {
	reportCmd.Flags().BoolVar(&reportHTML, "html", false, "render the report as an HTML page")
	rootCmd.AddCommand(reportCmd)
}
