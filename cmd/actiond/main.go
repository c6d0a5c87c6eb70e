package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/loopwork/actiond/cmd/actiond/commands"
	"github.com/loopwork/actiond/logger"
)

var rootCmd = &cobra.Command{
	Use:   "actiond",
	Short: "actiond - recurring action scheduler daemon",
	Long: `actiond - recurring action scheduler.

actiond runs one-off and recurring jobs (daily, weekly, monthly, or fixed
interval) against configured action commands, with bounded retries,
crash-safe persistence, and an HTTP API for job management.

Available commands:
  serve   - Run the scheduler daemon with the HTTP API
  jobs    - Inspect scheduled jobs
  stats   - Show scheduler statistics
  version - Show version information

Examples:
  actiond serve               # Start the daemon
  actiond jobs ls             # List scheduled jobs
  actiond jobs ls --status failed
  actiond stats               # Show aggregate statistics`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		jsonLogs, _ := cmd.Flags().GetBool("json-logs")
		if err := logger.Initialize(jsonLogs); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			return logger.SetVerbose()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().Bool("json-logs", false, "Emit structured JSON logs")

	rootCmd.AddCommand(commands.ServeCmd)
	rootCmd.AddCommand(commands.JobsCmd)
	rootCmd.AddCommand(commands.StatsCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	defer logger.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
