package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags; empty values leave the environment configuration alone.
	addrFlag     string
	logLevelFlag string
)

var rootCmd = &cobra.Command{
	Use:   "catalogd",
	Short: "Serve product autocomplete, SKU lookup and ranked catalog views",
	Long: `catalogd loads the product catalog into in-memory indexes and serves
autocomplete suggestions, SKU lookups, recently viewed products, related products
and price/rating ordered views over HTTP.

Configuration comes from the environment (see SERVER_ADDRESS, STORE_BACKEND,
EVENTS_SOURCE and friends); flags override it.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&addrFlag, "addr", "", "HTTP listen address (overrides SERVER_ADDRESS)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "debug, info, warn or error (overrides LOG_LEVEL)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
