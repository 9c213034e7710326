package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/go-uieval/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the prediction HTTP server",
	Long: `Serve POST /predict, which accepts a multipart "image" upload and returns
the detected boxes as {"boxes": [...]}.

Examples:
  uieval serve
  uieval serve --addr :9000`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8000)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveAddr == "" {
		serveAddr = cfg.Server.Addr
	}

	client, err := newPredictClient()
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Starting prediction server at http://localhost%s\n", serveAddr)
	return server.New(client, logger).Run(cmd.Context(), serveAddr)
}
