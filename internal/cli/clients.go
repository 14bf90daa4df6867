package cli

import (
	"fmt"

	"github.com/andy/billing/internal/domain"
	"github.com/andy/billing/internal/format"
	"github.com/spf13/cobra"
)

var clientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "Manage clients",
	Long:  `List, add, edit, and delete clients.`,
}

var clientsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List clients",
	RunE: func(cmd *cobra.Command, args []string) error {
		activeOnly, _ := cmd.Flags().GetBool("active")

		clients, err := appInstance.ClientRepo.List(cmd.Context(), activeOnly)
		if err != nil {
			return fmt.Errorf("failed to list clients: %w", err)
		}

		if len(clients) == 0 {
			fmt.Println("No clients found")
			return nil
		}

		printHeader("%-5s %-30s %-14s %-8s %-28s %-8s", "ID", "Name", "Hourly Rate", "Currency", "Email", "Status")
		for _, c := range clients {
			status := "Active"
			if !c.IsActive {
				status = "Inactive"
			}
			fmt.Printf("%-5d %-30s %-14s %-8s %-28s %-8s\n",
				c.ID,
				format.Truncate(c.Name, 30),
				format.Money(c.HourlyRate),
				c.Currency,
				format.Truncate(c.Email, 28),
				status,
			)
		}

		fmt.Printf("\nTotal: %d client(s)\n", len(clients))
		return nil
	},
}

var clientsAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a new client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rateStr, _ := cmd.Flags().GetString("rate")
		rate, err := parseDecimal("rate", rateStr)
		if err != nil {
			return err
		}

		client := domain.NewClient(args[0], rate)
		client.CreatedAt = appInstance.Clock.Now()
		if err := applyClientFlags(cmd, client); err != nil {
			return err
		}

		if err := appInstance.ClientRepo.Create(cmd.Context(), client); err != nil {
			return describeError("create client", err)
		}

		printSuccess("Client created: %s (ID: %d)", client.Name, client.ID)
		fmt.Printf("  Hourly Rate: %s %s\n", format.Money(client.HourlyRate), client.Currency)
		return nil
	},
}

var clientsEditCmd = &cobra.Command{
	Use:   "edit [id]",
	Short: "Edit an existing client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		client, err := appInstance.ClientRepo.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get client: %w", err)
		}

		if cmd.Flags().Changed("name") {
			client.Name, _ = cmd.Flags().GetString("name")
		}
		if cmd.Flags().Changed("rate") {
			rateStr, _ := cmd.Flags().GetString("rate")
			if client.HourlyRate, err = parseDecimal("rate", rateStr); err != nil {
				return err
			}
		}
		if err := applyClientFlags(cmd, client); err != nil {
			return err
		}

		if err := appInstance.ClientRepo.Update(ctx, client); err != nil {
			return describeError("update client", err)
		}

		printSuccess("Client updated: %s", client.Name)
		return nil
	},
}

var clientsDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a client and all of its tasks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		client, err := appInstance.ClientRepo.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get client: %w", err)
		}

		yes, _ := cmd.Flags().GetBool("yes")
		if !yes && !confirmPrompt(fmt.Sprintf("Delete %s and all of its tasks?", client.Name)) {
			fmt.Println("Cancelled.")
			return nil
		}

		if err := appInstance.ClientRepo.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete client: %w", err)
		}

		printSuccess("Client deleted: %s", client.Name)
		return nil
	},
}

// applyClientFlags copies the optional detail flags that were set onto c.
func applyClientFlags(cmd *cobra.Command, c *domain.Client) error {
	flags := cmd.Flags()
	if flags.Changed("email") {
		c.Email, _ = flags.GetString("email")
	}
	if flags.Changed("phone") {
		c.Phone, _ = flags.GetString("phone")
	}
	if flags.Changed("description") {
		c.Description, _ = flags.GetString("description")
	}
	if flags.Changed("currency") {
		c.Currency, _ = flags.GetString("currency")
	}
	if flags.Changed("conversion-rate") {
		s, _ := flags.GetString("conversion-rate")
		rate, err := parseDecimal("conversion rate", s)
		if err != nil {
			return err
		}
		c.ConversionRate = rate
	}
	if flags.Changed("active") {
		c.IsActive, _ = flags.GetBool("active")
	}
	return nil
}

func addClientDetailFlags(cmd *cobra.Command) {
	cmd.Flags().String("email", "", "Client email")
	cmd.Flags().String("phone", "", "Client phone")
	cmd.Flags().String("description", "", "Notes about the client")
	cmd.Flags().String("currency", domain.DefaultCurrency, "Billing currency (INR, USD, EUR, GBP)")
	cmd.Flags().String("conversion-rate", "1", "Rate to the base currency, applied to USD")
}

func init() {
	clientsCmd.AddCommand(clientsListCmd)
	clientsCmd.AddCommand(clientsAddCmd)
	clientsCmd.AddCommand(clientsEditCmd)
	clientsCmd.AddCommand(clientsDeleteCmd)

	clientsListCmd.Flags().Bool("active", false, "Only list active clients")

	clientsAddCmd.Flags().String("rate", "", "Hourly rate (required)")
	clientsAddCmd.MarkFlagRequired("rate")
	addClientDetailFlags(clientsAddCmd)

	clientsEditCmd.Flags().String("name", "", "New name")
	clientsEditCmd.Flags().String("rate", "", "New hourly rate")
	clientsEditCmd.Flags().Bool("active", true, "Mark the client active or inactive")
	addClientDetailFlags(clientsEditCmd)

	clientsDeleteCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
}
