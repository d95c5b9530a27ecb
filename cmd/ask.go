package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Run a single turn and print the transcript",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := bootstrap(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer app.Close()

		question := strings.Join(args, " ")
		reply := app.sessions.HandleMessage(cmd.Context(), "cli", question)

		for _, msg := range reply.Messages {
			fmt.Println(msg.Text)
			if msg.ImagePNG != nil {
				path := chartPath()
				if werr := os.WriteFile(path, msg.ImagePNG, 0o644); werr == nil {
					fmt.Println("Chart saved to", path)
				}
			}
			fmt.Println()
		}
		if sql := reply.Turn.SQL; sql != "" && !reply.Turn.Failed() {
			fmt.Println("SQL:", sql)
		}
		if reply.Turn.Failed() {
			os.Exit(1)
		}
		return nil
	},
}

func chartPath() string {
	return "paichat-chart.png"
}

func init() {
	rootCmd.AddCommand(askCmd)
}
