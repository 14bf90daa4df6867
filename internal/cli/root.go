package cli

import (
	"context"

	"github.com/andy/billing/internal/app"
	"github.com/spf13/cobra"
)

var appInstance *app.App

var rootCmd = &cobra.Command{
	Use:   "billing",
	Short: "Track client work and bill for it",
	Long: `Billing keeps clients and the hours worked for them, and turns them into
per-client, monthly and dashboard reports with Excel and PDF exports.

By default, running billing without arguments launches the interactive TUI.
Use subcommands for CLI operations.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return launchTUI(cmd, args)
	},
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// SetApp sets the app instance for commands to use
func SetApp(a *app.App) {
	appInstance = a
}

func init() {
	rootCmd.AddCommand(clientsCmd)
	rootCmd.AddCommand(tasksCmd)
	rootCmd.AddCommand(reportsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(resetCmd)
}
