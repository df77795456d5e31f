package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"inmofeed/internal/ui"
)

var propertiesCmd = &cobra.Command{
	Use:   "properties",
	Short: "List aggregated property listings",
	RunE:  runProperties,
}

func init() {
	propertiesCmd.Flags().Int("page", 1, "Page number")
	propertiesCmd.Flags().Int("limit", 12, "Properties per page")
	propertiesCmd.Flags().String("format", "json", "Output format: json, table")
	rootCmd.AddCommand(propertiesCmd)
}

func runProperties(cmd *cobra.Command, args []string) error {
	svc, err := buildServices()
	if err != nil {
		return err
	}

	page, _ := cmd.Flags().GetInt("page")
	limit, _ := cmd.Flags().GetInt("limit")
	format, _ := cmd.Flags().GetString("format")

	spin := ui.NewSpinner(os.Stderr)
	spin.Start("Fetching listings from all sources...")
	result, err := svc.agg.GetProperties(context.Background(), page, limit)
	spin.Stop()
	if err != nil {
		return fmt.Errorf("fetch properties: %w", err)
	}

	for _, srcErr := range result.Errors {
		fmt.Fprintf(os.Stderr, "warning: %s: %s\n", srcErr.Source, srcErr.Reason)
	}

	switch format {
	case "table":
		printPropertiesTable(result.Properties)
		fmt.Fprintf(os.Stdout, "\n%d listings (mongodb: %d, woocommerce: %d)\n",
			result.Total, result.Counts["mongodb"], result.Counts["woocommerce"])
	default:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(result)
	}

	return nil
}
