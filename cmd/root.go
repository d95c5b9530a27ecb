// Package cmd contains all Cobra commands for paiChat.
//
// Design decision: the root command launches the chat TUI directly.
// Warehouse and provider configuration come from the environment and
// ~/.paichat/config.json, not from CLI flags. `paichat serve` exposes
// the same pipeline over HTTP; `paichat ask` runs a single turn.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "paichat",
	Short: "Natural-language questions over a PostgreSQL warehouse",
	Long: `paiChat answers plain-language questions about your data:
  • Generates SQL from the question and the warehouse schema
  • Executes it read-only (writes and DDL are rejected client-side)
  • Replies with an answer, an explanation of the query, and a chart
    when the result shape supports one

Run 'paichat' to start the interactive chat.`,
	// Running with no subcommand launches the TUI.
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := bootstrap(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer app.Close()
		return app.StartTUI()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
