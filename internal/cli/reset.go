package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/andy/billing/internal/db"
	"github.com/andy/billing/internal/log"
	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset data in the database",
	Long: `Reset data in the database.

Examples:
  billing reset tasks    # Delete all tasks, keep clients
  billing reset all      # Wipe everything: tasks and clients`,
}

var resetTasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Delete all tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes && !confirmPrompt("This will delete ALL tasks. Continue?") {
			fmt.Println("Cancelled.")
			return nil
		}

		if err := appInstance.DB.Clear(cmd.Context(), db.TableTasks); err != nil {
			return err
		}

		appInstance.Logger.WithComponent(log.ComponentCLI).Info("tasks cleared")
		fmt.Println("All tasks have been deleted.")
		return nil
	},
}

var resetAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Delete ALL data: clients and tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes && !confirmPrompt("This will delete ALL data (clients and tasks). Continue?") {
			fmt.Println("Cancelled.")
			return nil
		}

		// Order matters due to foreign keys
		if err := appInstance.DB.Clear(cmd.Context(), db.TableTasks, db.TableClients); err != nil {
			return err
		}

		appInstance.Logger.WithComponent(log.ComponentCLI).Info("all data cleared")
		fmt.Println("All data has been deleted.")
		return nil
	},
}

func confirmPrompt(message string) bool {
	fmt.Printf("%s [y/N] ", message)
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	return isYes(input)
}

func isYes(input string) bool {
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}

func init() {
	resetCmd.AddCommand(resetTasksCmd)
	resetCmd.AddCommand(resetAllCmd)

	resetCmd.PersistentFlags().BoolP("yes", "y", false, "Skip the confirmation prompt")
}
