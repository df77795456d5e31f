package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"inmofeed/internal/models"
)

var propertyCmd = &cobra.Command{
	Use:   "property [id]",
	Short: "Get one property by id",
	Long:  "Resolve a single listing. The source is guessed from the id shape (24-hex ObjectID means mongodb) unless --source is given.",
	Args:  cobra.ExactArgs(1),
	RunE:  runProperty,
}

func init() {
	propertyCmd.Flags().String("source", "", "Source backend: mongodb or woocommerce")
	rootCmd.AddCommand(propertyCmd)
}

func runProperty(cmd *cobra.Command, args []string) error {
	svc, err := buildServices()
	if err != nil {
		return err
	}

	id := args[0]
	src, _ := cmd.Flags().GetString("source")

	p, found := svc.agg.GetProperty(context.Background(), id, models.SourceID(src))
	if !found {
		return fmt.Errorf("property %s not found", id)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(p)
}
