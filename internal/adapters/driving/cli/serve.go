package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docindex/internal/adapters/driving/rest"
	"github.com/custodia-labs/docindex/internal/adapters/driving/toolcall"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serve the JSON HTTP API for indexing, search and tool execution.

The listen address defaults to server.http_addr from the config file.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	addr := serveAddr
	if addr == "" {
		addr = settings.Server.HTTPAddr
	}

	server, err := rest.NewServer(rest.Config{
		Services: toolcall.Services{
			Index:     indexService,
			FileIndex: fileIndexService,
			Files:     fileService,
			Query:     queryService,
		},
		Version:         version,
		MaxContentBytes: settings.Files.MaxBytes,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "HTTP API listening on %s\n", addr)
	return server.Run(cmd.Context(), addr)
}
