package cli

import (
	"fmt"

	"github.com/andy/billing/internal/domain"
	"github.com/andy/billing/internal/format"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Manage work tasks",
	Long:  `List, log, edit, and delete the hours worked for clients.`,
}

var tasksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks, newest first",
	Long: `List tasks, newest first.

An explicit --start/--end range takes precedence over --year/--month.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		filter, err := filterFlags(cmd)
		if err != nil {
			return err
		}

		tasks, err := appInstance.TaskRepo.List(ctx, filter)
		if err != nil {
			return fmt.Errorf("failed to list tasks: %w", err)
		}

		if len(tasks) == 0 {
			fmt.Println("No tasks found")
			return nil
		}

		printHeader("%-5s %-12s %-20s %-36s %8s %14s", "ID", "Date", "Client", "Description", "Hours", "Amount")
		hours, amount := decimal.Zero, decimal.Zero
		for _, t := range tasks {
			clientName := ""
			if t.Client != nil {
				clientName = t.Client.Name
			}
			fmt.Printf("%-5d %-12s %-20s %-36s %8s %14s\n",
				t.ID,
				t.TaskDate.Format(domain.DateLayout),
				format.Truncate(clientName, 20),
				format.Truncate(t.Description, 36),
				t.HoursWorked.StringFixed(2),
				format.Money(t.TotalAmount()),
			)
			hours = hours.Add(t.HoursWorked)
			amount = amount.Add(t.TotalAmount())
		}

		fmt.Println()
		fmt.Println(totalStyle.Render(fmt.Sprintf("Total: %d task(s), %s hours, %s",
			len(tasks), hours.StringFixed(2), format.Money(amount))))
		return nil
	},
}

var tasksAddCmd = &cobra.Command{
	Use:   "add [client] [date] [description]",
	Short: "Log hours worked for a client",
	Long: `Log hours worked for a client.

The client can be given by ID or exact name. The date accepts YYYY-MM-DD,
'today' or 'yesterday'.

Examples:
  billing tasks add "Acme Corp" today "API integration" --hours 2.5
  billing tasks add 3 2024-01-15 "Code review" --hours 1 --link https://example.com/pr/42`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		client, err := resolveClient(ctx, args[0])
		if err != nil {
			return err
		}

		date, err := parseDate(args[1], appInstance.Clock.Now())
		if err != nil {
			return fmt.Errorf("invalid date: %w", err)
		}

		hoursStr, _ := cmd.Flags().GetString("hours")
		hours, err := parseDecimal("hours", hoursStr)
		if err != nil {
			return err
		}

		task := domain.NewWorkTask(client.ID, date, args[2], hours)
		task.CreatedAt = appInstance.Clock.Now()
		task.TaskLink, _ = cmd.Flags().GetString("link")

		if err := appInstance.TaskRepo.Create(ctx, task); err != nil {
			return describeError("create task", err)
		}

		task.Client = client
		printSuccess("Task logged (ID: %d)", task.ID)
		fmt.Printf("  Client: %s\n", client.Name)
		fmt.Printf("  Date:   %s\n", task.TaskDate.Format(format.ShortDate))
		fmt.Printf("  Hours:  %s (%s)\n", task.HoursWorked.StringFixed(2), format.Money(task.TotalAmount()))
		return nil
	},
}

var tasksEditCmd = &cobra.Command{
	Use:   "edit [id]",
	Short: "Edit a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		task, err := appInstance.TaskRepo.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get task: %w", err)
		}

		flags := cmd.Flags()
		if flags.Changed("client") {
			v, _ := flags.GetString("client")
			client, err := resolveClient(ctx, v)
			if err != nil {
				return err
			}
			task.ClientID = client.ID
		}
		if flags.Changed("date") {
			v, _ := flags.GetString("date")
			if task.TaskDate, err = parseDate(v, appInstance.Clock.Now()); err != nil {
				return fmt.Errorf("invalid date: %w", err)
			}
		}
		if flags.Changed("hours") {
			v, _ := flags.GetString("hours")
			if task.HoursWorked, err = parseDecimal("hours", v); err != nil {
				return err
			}
		}
		if flags.Changed("description") {
			task.Description, _ = flags.GetString("description")
		}
		if flags.Changed("link") {
			task.TaskLink, _ = flags.GetString("link")
		}

		if err := appInstance.TaskRepo.Update(ctx, task); err != nil {
			return describeError("update task", err)
		}

		printSuccess("Task %d updated", task.ID)
		return nil
	},
}

var tasksDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		task, err := appInstance.TaskRepo.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get task: %w", err)
		}

		yes, _ := cmd.Flags().GetBool("yes")
		prompt := fmt.Sprintf("Delete task %d (%s, %s)?", task.ID, task.TaskDate.Format(domain.DateLayout), format.Truncate(task.Description, 40))
		if !yes && !confirmPrompt(prompt) {
			fmt.Println("Cancelled.")
			return nil
		}

		if err := appInstance.TaskRepo.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete task: %w", err)
		}

		printSuccess("Task %d deleted", id)
		return nil
	},
}

// filterFlags builds a task filter from --client, --start, --end, --year and --month.
func filterFlags(cmd *cobra.Command) (domain.TaskFilter, error) {
	var filter domain.TaskFilter

	if v, _ := cmd.Flags().GetString("client"); v != "" {
		client, err := resolveClient(cmd.Context(), v)
		if err != nil {
			return filter, err
		}
		filter.ClientID = client.ID
	}

	start, end, err := rangeFlags(cmd)
	if err != nil {
		return filter, err
	}
	filter.Start, filter.End = start, end

	filter.Year, _ = cmd.Flags().GetInt("year")
	filter.Month, _ = cmd.Flags().GetInt("month")
	if filter.Month < 0 || filter.Month > 12 {
		return filter, fmt.Errorf("invalid --month %d: must be between 1 and 12", filter.Month)
	}
	return filter, nil
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("client", "", "Client ID or name")
	addRangeFlags(cmd)
	cmd.Flags().Int("year", 0, "Calendar year")
	cmd.Flags().Int("month", 0, "Month of --year (1-12)")
}

func init() {
	tasksCmd.AddCommand(tasksListCmd)
	tasksCmd.AddCommand(tasksAddCmd)
	tasksCmd.AddCommand(tasksEditCmd)
	tasksCmd.AddCommand(tasksDeleteCmd)

	addFilterFlags(tasksListCmd)

	tasksAddCmd.Flags().String("hours", "", "Hours worked, 0.25 to 24 (required)")
	tasksAddCmd.Flags().String("link", "", "Link to the ticket or pull request")
	tasksAddCmd.MarkFlagRequired("hours")

	tasksEditCmd.Flags().String("client", "", "Move the task to another client (ID or name)")
	tasksEditCmd.Flags().String("date", "", "New task date")
	tasksEditCmd.Flags().String("hours", "", "New hours worked")
	tasksEditCmd.Flags().String("description", "", "New description")
	tasksEditCmd.Flags().String("link", "", "New link; empty clears it")

	tasksDeleteCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
}
