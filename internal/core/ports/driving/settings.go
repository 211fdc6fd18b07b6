package driving

import "github.com/custodia-labs/sercha-rag/internal/core/domain"

// SettingsService loads and updates persisted configuration.
type SettingsService interface {
	// Load returns the validated configuration: defaults overlaid with stored values.
	Load() (domain.Config, error)

	// Set parses, validates and persists a single key.
	Set(key, value string) error

	// Get returns the effective value of key, formatted for display.
	Get(key string) (string, error)

	// Keys returns every settable key in display order.
	Keys() []string

	// Path returns the configuration file location.
	Path() string
}
