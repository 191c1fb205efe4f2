// Package cli provides the docindex command line interface built on cobra.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docindex/internal/core/ports/driving"
	"github.com/custodia-labs/docindex/internal/logger"
)

// version is set at build time with -ldflags "-X".
var version = "dev"

// skipServicesAnnotation marks commands that run without the service graph.
const skipServicesAnnotation = "docindex/skip-services"

var (
	verbose   bool
	logFormat string
	configDir string
)

// Services used by commands. They are either injected with SetServices or
// built from configuration before the first command runs.
var (
	indexService     driving.IndexService
	fileIndexService driving.FileIndexService
	fileService      driving.FileService
	queryService     driving.QueryService
	settingsService  driving.SettingsService
)

// current is the composition root built for this process, if any.
var current *app

var rootCmd = &cobra.Command{
	Use:   "docindex",
	Short: "Semantic document index for tool-calling agents",
	Long: `docindex chunks documents, embeds the chunks and stores them in a
vector index so they can be searched by meaning.

The index is exposed to agents through MCP tools and an HTTP API, and
to people through the commands below.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print debug logs to stderr")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", logger.FormatText, "log format (text or json)")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "config directory (default ~/.docindex)")
}

// Services bundles the driving ports commands depend on.
type Services struct {
	Index     driving.IndexService
	FileIndex driving.FileIndexService
	Files     driving.FileService
	Query     driving.QueryService
	Settings  driving.SettingsService
}

// SetServices injects services, bypassing configuration.
func SetServices(s Services) {
	indexService = s.Index
	fileIndexService = s.FileIndex
	fileService = s.Files
	queryService = s.Query
	settingsService = s.Settings
}

func servicesConfigured() bool {
	return indexService != nil && settingsService != nil
}

// setup configures logging and builds the services on first use.
func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if err := logger.SetFormat(logFormat); err != nil {
		return err
	}

	if _, skip := cmd.Annotations[skipServicesAnnotation]; skip || servicesConfigured() {
		return nil
	}

	a, err := newApp(cmd.Context(), configDir)
	if err != nil {
		return err
	}
	current = a
	SetServices(a.services())
	return nil
}

// Execute runs the root command and releases whatever it built.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if current != nil {
		closeErr := current.Close(context.WithoutCancel(ctx))
		current = nil
		if closeErr != nil {
			err = errors.Join(err, fmt.Errorf("shutdown: %w", closeErr))
		}
	}
	return err
}
