package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// resolveCmd represents the resolve command
var resolveCmd = &cobra.Command{
	Use:   "resolve <product name>...",
	Short: "Resolve image references for product names",
	Long: `Looks up each name in the image cache and, on a miss, asks the source
chain. Results are cached but neither the sheet nor the database is changed.

Example: stocksmarthub resolve "TK-481 (Daikin) Compressor Motor"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		resolver, err := a.resolver()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, name := range args {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			res, err := resolver.Resolve(ctx, name)
			if err != nil {
				return err
			}

			ref := "(none)"
			if res.Resolved() {
				ref = *res.Reference
			}
			origin := res.Source
			if res.FromCache {
				origin = "cache"
			}
			fmt.Fprintf(out, "%s\t%s\t%s\n", name, ref, origin)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}
