package discogs

import (
	"github.com/artisnova/aria/internal/core/ports/driven"
)

// DefaultBaseURL is the public Discogs API endpoint.
const DefaultBaseURL = "https://api.discogs.com"

// DefaultUserAgent identifies this client; Discogs rejects anonymous
// user agents.
const DefaultUserAgent = "aria/1.0 +https://github.com/artisnova/aria"

// Config holds Discogs API settings.
type Config struct {
	// Token is a Discogs personal access token.
	Token string

	// BaseURL overrides the public endpoint. Used in tests.
	BaseURL string

	// UserAgent overrides the default client identification.
	UserAgent string
}

// ConfigFromStore reads Discogs settings from the config store.
func ConfigFromStore(store driven.ConfigStore) Config {
	return Config{
		Token: store.GetString("connectors.discogs.token"),
	}
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	return c
}
