package cmd

import (
	"github.com/spf13/cobra"

	"inmofeed/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  "Serve the aggregated property feed, blog proxy, and contact relay over HTTP/JSON.",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("port", "", "HTTP port (default from $PORT or 8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	svc, err := buildServices()
	if err != nil {
		return err
	}

	port := cfg.HTTPPort
	if p, _ := cmd.Flags().GetString("port"); p != "" {
		port = p
	}

	srv := server.New(server.Options{
		Aggregator:     svc.agg,
		Posts:          svc.posts,
		Relay:          svc.relay,
		Log:            svc.log,
		AllowedOrigins: cfg.AllowedOrigins,
	})
	return srv.Start(":" + port)
}
