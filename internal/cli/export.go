package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/andy/billing/internal/export"
	"github.com/andy/billing/internal/log"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export reports as Excel or PDF",
	Long: `Export reports as Excel workbooks or PDF documents.

Examples:
  billing export summary --format pdf --start 2024-01-01 --end 2024-03-31
  billing export client "Acme Corp" --format xlsx --out ~/Reports`,
}

var exportSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Export the per-client summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		f, err := formatFlag(cmd)
		if err != nil {
			return err
		}

		var clientID int64
		if v, _ := cmd.Flags().GetString("client"); v != "" {
			client, err := resolveClient(ctx, v)
			if err != nil {
				return err
			}
			clientID = client.ID
		}

		start, end, err := rangeFlags(cmd)
		if err != nil {
			return err
		}

		file, err := appInstance.ExportService.Summary(ctx, f, clientID, start, end)
		if err != nil {
			return fmt.Errorf("failed to export report: %w", err)
		}
		return writeExport(cmd, file)
	},
}

var exportClientCmd = &cobra.Command{
	Use:   "client [client]",
	Short: "Export one client's task detail",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		f, err := formatFlag(cmd)
		if err != nil {
			return err
		}

		client, err := resolveClient(ctx, args[0])
		if err != nil {
			return err
		}

		start, end, err := rangeFlags(cmd)
		if err != nil {
			return err
		}

		file, err := appInstance.ExportService.ClientDetail(ctx, f, client.ID, start, end)
		if err != nil {
			return fmt.Errorf("failed to export report: %w", err)
		}
		return writeExport(cmd, file)
	},
}

func formatFlag(cmd *cobra.Command) (export.Format, error) {
	v, _ := cmd.Flags().GetString("format")
	return export.ParseFormat(v)
}

// writeExport saves file under --out, creating the directory if needed.
func writeExport(cmd *cobra.Command, file *export.File) error {
	dir, _ := cmd.Flags().GetString("out")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, file.Name)
	if err := os.WriteFile(path, file.Data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	appInstance.Logger.WithComponent(log.ComponentExport).Debug("report written",
		log.FieldFile, path, log.FieldBytes, len(file.Data))
	printSuccess("Exported %s (%d bytes)", path, len(file.Data))
	return nil
}

func addExportFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "f", string(export.FormatXLSX), "Output format: xlsx or pdf")
	cmd.Flags().StringP("out", "o", ".", "Directory to write the file to")
	addRangeFlags(cmd)
}

func init() {
	exportCmd.AddCommand(exportSummaryCmd)
	exportCmd.AddCommand(exportClientCmd)

	addExportFlags(exportSummaryCmd)
	exportSummaryCmd.Flags().String("client", "", "Restrict to one client (ID or name)")
	addExportFlags(exportClientCmd)
}
