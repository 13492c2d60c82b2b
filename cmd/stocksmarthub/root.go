package main

import (
	"strings"

	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	logLevel string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "stocksmarthub",
	Short: "Attach product images to the StockSmartHub catalog",
	Long: strings.TrimSpace(`
Finds an image for every catalog product that has none, using a persistent
name cache and an ordered chain of image sources, and writes the result to
both the product sheet and the products table.
`),
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log.level (debug, info, warn, error)")
}
