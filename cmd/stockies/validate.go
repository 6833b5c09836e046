package main

import (
	"fmt"

	"github.com/fedetic/stockies/internal/strategy"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [strategy file]",
	Short: "Validate a strategy definition file",
	Long:  "Parse a strategy file, check its rules and parameters, and report problems without running anything.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		strat, err := strategy.Load(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Strategy %q is valid\n", strat.Name)
		fmt.Printf("  Entry: %s\n", strat.EntryRules)
		fmt.Printf("  Exit:  %s\n", strat.ExitRules)
		fmt.Printf("  Sizing: %s (%.2f)\n", strat.PositionSizing.Method, strat.PositionSizing.Value)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
