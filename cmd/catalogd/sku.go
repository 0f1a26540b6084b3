package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"shopwave-catalog/catalog"
)

func init() {
	rootCmd.AddCommand(newSKUCmd())
}

func newSKUCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sku <name> <seq>",
		Short: "Print the SKU generated for a product name",
		Long: `The sku command prints the SKU a new product would get: the first six
uppercase letters and digits of its name, a dash, then the sequence number.

Example:
  catalogd sku "Wireless Mouse" 42     # WIRELE-42`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			seq, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("seq must be an integer: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), catalog.GenerateSKU(args[0], seq))
			return nil
		},
	}
}
