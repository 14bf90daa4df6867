package cli

import (
	"fmt"
	"strings"

	"github.com/andy/billing/internal/domain"
	"github.com/andy/billing/internal/export"
	"github.com/andy/billing/internal/format"
	"github.com/spf13/cobra"
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Show billing reports",
	Long: `Show billing reports.

Examples:
  billing reports clients                      # current month, per client
  billing reports clients --year 2024          # whole year
  billing reports client 3 --start 2024-01-01  # one client's tasks
  billing reports monthly --year 2024
  billing reports dashboard`,
}

var reportsClientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "Hours and income per client",
	Long: `Hours and income per client, highest native income first.

Without any date flags the report covers the current month.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, err := filterFlags(cmd)
		if err != nil {
			return err
		}

		summary, err := appInstance.ReportService.ClientReport(cmd.Context(), filter)
		if err != nil {
			return fmt.Errorf("failed to build report: %w", err)
		}

		if len(summary.Rows) == 0 {
			fmt.Println("No tasks in this period")
			return nil
		}

		printHeader("%-28s %-8s %12s %10s %6s %16s %16s", "Client", "Currency", "Rate", "Hours", "Tasks", "Income", "Income (base)")
		for _, r := range summary.Rows {
			fmt.Printf("%-28s %-8s %12s %10s %6d %16s %16s\n",
				format.Truncate(r.Name, 28),
				r.Currency,
				format.Number(r.HourlyRate),
				r.TotalHours.StringFixed(2),
				r.TaskCount,
				format.Number(r.NativeIncome),
				format.Number(r.BaseIncome),
			)
		}
		fmt.Println()
		fmt.Println(totalStyle.Render(fmt.Sprintf("%-28s %-8s %12s %10s %6d %16s %16s",
			"TOTAL", "", "",
			summary.TotalHours.StringFixed(2),
			summary.TotalTasks,
			format.Number(summary.TotalNativeIncome),
			format.Number(summary.TotalBaseIncome),
		)))
		return nil
	},
}

var reportsClientCmd = &cobra.Command{
	Use:   "client [client]",
	Short: "Every task of one client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		client, err := resolveClient(ctx, args[0])
		if err != nil {
			return err
		}

		start, end, err := rangeFlags(cmd)
		if err != nil {
			return err
		}

		detail, err := appInstance.ReportService.ClientDetail(ctx, client.ID, start, end)
		if err != nil {
			return fmt.Errorf("failed to build report: %w", err)
		}

		c := detail.Client
		fmt.Println(headerStyle.Render(c.Name))
		fmt.Printf("Rate: %s/hr %s | Period: %s\n\n",
			format.Money(c.HourlyRate), c.Currency, export.Period{Start: start, End: end})

		if len(detail.Tasks) == 0 {
			fmt.Println("No tasks in this period")
			return nil
		}

		printHeader("%-12s %-44s %8s %14s", "Date", "Description", "Hours", "Amount")
		for _, t := range detail.Tasks {
			fmt.Printf("%-12s %-44s %8s %14s\n",
				t.TaskDate.Format(domain.DateLayout),
				format.Truncate(t.Description, 44),
				t.HoursWorked.StringFixed(2),
				format.Money(t.TotalAmount()),
			)
		}
		fmt.Println()
		fmt.Println(totalStyle.Render(fmt.Sprintf("%-12s %-44s %8s %14s",
			"TOTAL", "", detail.TotalHours.StringFixed(2), format.Money(detail.TotalAmount))))
		return nil
	},
}

var reportsMonthlyCmd = &cobra.Command{
	Use:   "monthly",
	Short: "Hours and income per month of a year",
	RunE: func(cmd *cobra.Command, args []string) error {
		year, _ := cmd.Flags().GetInt("year")

		monthly, err := appInstance.ReportService.MonthlyBreakdown(cmd.Context(), year)
		if err != nil {
			return fmt.Errorf("failed to build report: %w", err)
		}

		fmt.Println(headerStyle.Render(fmt.Sprintf("Monthly breakdown %d", monthly.Year)))
		if len(monthly.AvailableYears) > 0 {
			years := make([]string, len(monthly.AvailableYears))
			for i, y := range monthly.AvailableYears {
				years[i] = fmt.Sprint(y)
			}
			fmt.Printf("Years with tasks: %s\n", strings.Join(years, ", "))
		}
		fmt.Println()

		if len(monthly.Months) == 0 {
			fmt.Println("No tasks in this year")
			return nil
		}

		printHeader("%-12s %10s %6s %16s", "Month", "Hours", "Tasks", "Income")
		for _, m := range monthly.Months {
			fmt.Printf("%-12s %10s %6d %16s\n",
				m.MonthName, m.TotalHours.StringFixed(2), m.TaskCount, format.Money(m.TotalIncome))
		}
		fmt.Println()
		fmt.Println(totalStyle.Render(fmt.Sprintf("%-12s %10s %6s %16s",
			"TOTAL", monthly.TotalHours.StringFixed(2), "", format.Money(monthly.TotalIncome))))
		return nil
	},
}

var reportsDashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Totals, top clients and recent tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := appInstance.ReportService.Dashboard(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to build dashboard: %w", err)
		}

		fmt.Println(headerStyle.Render("Dashboard"))
		fmt.Printf("Clients:      %d (%d active)\n", d.TotalClients, d.ActiveClients)
		fmt.Printf("Tasks:        %d\n", d.TotalTasks)
		fmt.Printf("Hours:        %s\n", d.TotalHours.StringFixed(2))
		fmt.Printf("Revenue:      %s\n", format.Money(d.TotalRevenue))
		fmt.Printf("Average rate: %s/hr\n\n", format.Money(d.AverageHourlyRate))

		if len(d.TopClients) > 0 {
			printHeader("%-28s %10s %16s", "Top clients", "Hours", "Income")
			for _, r := range d.TopClients {
				fmt.Printf("%-28s %10s %16s\n",
					format.Truncate(r.Name, 28), r.TotalHours.StringFixed(2), format.Money(r.NativeIncome))
			}
			fmt.Println()
		}

		if len(d.RecentTasks) > 0 {
			printHeader("%-12s %-20s %-30s %8s", "Recent", "Client", "Description", "Hours")
			for _, t := range d.RecentTasks {
				fmt.Printf("%-12s %-20s %-30s %8s\n",
					t.TaskDate.Format(domain.DateLayout),
					format.Truncate(t.ClientName, 20),
					format.Truncate(t.Description, 30),
					t.HoursWorked.StringFixed(2),
				)
			}
		}
		return nil
	},
}

func init() {
	reportsCmd.AddCommand(reportsClientsCmd)
	reportsCmd.AddCommand(reportsClientCmd)
	reportsCmd.AddCommand(reportsMonthlyCmd)
	reportsCmd.AddCommand(reportsDashboardCmd)

	addFilterFlags(reportsClientsCmd)
	addRangeFlags(reportsClientCmd)
	reportsMonthlyCmd.Flags().Int("year", 0, "Calendar year (default: current year)")
}
