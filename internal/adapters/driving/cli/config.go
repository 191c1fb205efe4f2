package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docindex/internal/core/services"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage application settings",
	Long: `View and change settings stored in the config file.

Environment variables (DATA_DIR, PERSIST_DIRECTORY, ALLOWED_DB_PATH,
OPENAI_API_KEY, OLLAMA_HOST, OTEL_EXPORTER_OTLP_ENDPOINT) override the file.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a config key",
	Long: `Set a dot-notation config key, for example:

  docindex config set storage.backend qdrant
  docindex config set pipeline.chunker.chunk_size 800

Run 'docindex config keys' to list every key.`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configKeysCmd = &cobra.Command{
	Use:         "keys",
	Short:       "List settable config keys",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipServicesAnnotation: ""},
	Run: func(cmd *cobra.Command, _ []string) {
		for _, key := range services.SettingKeys() {
			cmd.Println(key)
		}
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configKeysCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Printf("Config file: %s\n", settingsService.ConfigPath())
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	if settings.Embedding.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.Embedding.BaseURL)
	}
	if settings.Embedding.Provider.RequiresAPIKey() {
		if settings.Embedding.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(settings.Embedding.APIKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	cmd.Println()

	cmd.Println("[Storage]")
	cmd.Printf("  Backend: %s\n", settings.Storage.Backend.Description())
	if settings.Storage.Backend.IsDurable() {
		cmd.Printf("  Persist directory: %s\n", settings.Storage.PersistDirectory)
	}
	cmd.Printf("  Collection: %s\n", settings.Storage.Collection)
	cmd.Printf("  Distance: %s\n", settings.Storage.Distance)
	cmd.Println()

	chunker := settings.Pipeline.GetProcessorConfig("chunker")
	cmd.Println("[Pipeline]")
	cmd.Printf("  Processors: %s\n", strings.Join(settings.Pipeline.Processors, ", "))
	cmd.Printf("  Chunk size: %v\n", chunker["chunk_size"])
	cmd.Printf("  Overlap: %v\n", chunker["overlap"])
	cmd.Println()

	cmd.Println("[Files]")
	cmd.Printf("  Data directory: %s\n", settings.Files.DataDir)
	cmd.Printf("  Max bytes: %d\n", settings.Files.MaxBytes)
	cmd.Printf("  Query database: %s\n", settings.Query.DBPath)
	cmd.Println()

	cmd.Println("[Server]")
	cmd.Printf("  HTTP address: %s\n", settings.Server.HTTPAddr)
	if settings.Tracing.OTLPEndpoint != "" {
		cmd.Printf("  OTLP endpoint: %s (sample rate %.2f)\n", settings.Tracing.OTLPEndpoint, settings.Tracing.SampleRate)
	} else {
		cmd.Printf("  Tracing: disabled\n")
	}
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'docindex config set' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key, value := args[0], args[1]
	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	cmd.Printf("Set %s = %s\n", key, value)
	return nil
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
