package driving

import "github.com/custodia-labs/docindex/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings with defaults and
	// environment overrides applied.
	Get() (*domain.AppSettings, error)

	// Set stores a single dot-notation config key.
	Set(key string, value any) error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// Validate checks that the current settings can build an index.
	Validate() error

	// ConfigPath returns where settings are persisted.
	ConfigPath() string
}
