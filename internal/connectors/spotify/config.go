package spotify

import (
	"github.com/artisnova/aria/internal/core/ports/driven"
)

// Default endpoints. Overridable for tests.
const (
	DefaultBaseURL     = "https://api.spotify.com"
	DefaultAccountsURL = "https://accounts.spotify.com"
)

// Config holds Spotify API credentials and endpoints.
// Spotify uses the client-credentials OAuth flow: the connector exchanges
// the client ID and secret for a short-lived bearer token.
type Config struct {
	// ClientID is the Spotify application client ID.
	ClientID string

	// ClientSecret is the Spotify application client secret.
	ClientSecret string

	// BaseURL is the Web API root. Defaults to DefaultBaseURL.
	BaseURL string

	// AccountsURL is the token endpoint root. Defaults to DefaultAccountsURL.
	AccountsURL string
}

// ConfigFromStore reads Spotify settings from the config store.
func ConfigFromStore(store driven.ConfigStore) Config {
	return Config{
		ClientID:     store.GetString("connectors.spotify.client_id"),
		ClientSecret: store.GetString("connectors.spotify.client_secret"),
	}
}

// withDefaults fills unset endpoints.
func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.AccountsURL == "" {
		c.AccountsURL = DefaultAccountsURL
	}
	return c
}
