package lastfm

import (
	"github.com/artisnova/aria/internal/core/ports/driven"
)

// DefaultBaseURL is the public Last.fm API endpoint.
const DefaultBaseURL = "https://ws.audioscrobbler.com"

// Config holds Last.fm API settings.
type Config struct {
	// APIKey is the Last.fm API key.
	APIKey string

	// BaseURL overrides the public endpoint. Used in tests.
	BaseURL string
}

// ConfigFromStore reads Last.fm settings from the config store.
func ConfigFromStore(store driven.ConfigStore) Config {
	return Config{
		APIKey: store.GetString("connectors.lastfm.api_key"),
	}
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	return c
}
