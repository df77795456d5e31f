package cmd

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

var postsCmd = &cobra.Command{
	Use:   "posts",
	Short: "List the latest blog posts",
	RunE:  runPosts,
}

func init() {
	postsCmd.Flags().Int("limit", 6, "Number of posts")
	rootCmd.AddCommand(postsCmd)
}

func runPosts(cmd *cobra.Command, args []string) error {
	svc, err := buildServices()
	if err != nil {
		return err
	}

	limit, _ := cmd.Flags().GetInt("limit")

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(svc.posts.LatestPosts(context.Background(), limit))
}
