// Package cli implements the aria command-line interface with cobra.
// Commands share one application context: the config store, the storage
// tiers, the connector registry, and the aggregation services, assembled
// in PersistentPreRunE and torn down after the command finishes.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	configfile "github.com/artisnova/aria/internal/adapters/driven/config/file"
	badgerstore "github.com/artisnova/aria/internal/adapters/driven/storage/badger"
	"github.com/artisnova/aria/internal/adapters/driven/storage/memory"
	"github.com/artisnova/aria/internal/adapters/driven/storage/sqlite"
	"github.com/artisnova/aria/internal/connectors/discogs"
	"github.com/artisnova/aria/internal/connectors/itunes"
	"github.com/artisnova/aria/internal/connectors/lastfm"
	"github.com/artisnova/aria/internal/connectors/musicbrainz"
	"github.com/artisnova/aria/internal/connectors/spotify"
	"github.com/artisnova/aria/internal/core/ports/driven"
	"github.com/artisnova/aria/internal/core/services"
	"github.com/artisnova/aria/internal/logger"
)

var (
	flagVerbose   bool
	flagConfigDir string

	app *appContext
)

// appContext holds everything a command needs, built once per invocation.
type appContext struct {
	config      driven.ConfigStore
	store       *sqlite.Store
	cache       *services.TieredCache
	registry    *services.ConnectorRegistry
	metadata    *services.Aggregator
	corrections *services.CorrectionService
}

var rootCmd = &cobra.Command{
	Use:   "aria",
	Short: "Music metadata aggregation and caching engine",
	Long: `Aria aggregates music metadata from multiple online catalogs
(Spotify, MusicBrainz, Discogs, Last.fm, iTunes), merges them by source
reliability, caches the result, and applies user corrections on top.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(flagVerbose)
		// Help and version need no services.
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}
		return initApp()
	},
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		return closeApp()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config", "", "config directory (default ~/.aria)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// initApp assembles the engine: config, storage tiers, connectors,
// services.
func initApp() error {
	configStore, err := configfile.NewConfigStore(flagConfigDir)
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}

	clock := services.SystemClock{}
	memoryStore := memory.NewCacheStore()

	var (
		durable     driven.CacheStore
		sqliteStore *sqlite.Store
		corrStore   driven.CorrectionStore
	)

	// The durable tier defaults to SQLite; badger is the alternative for
	// users who want an LSM store. Corrections always live in SQLite.
	backend := configStore.GetString("storage.backend")
	sqliteStore, err = sqlite.NewStore(configStore.GetString("storage.data_dir"))
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	corrStore = sqliteStore.CorrectionStore()

	if backend == "badger" {
		badgerCache, err := badgerstore.NewCacheStore(badgerstore.Options{
			DataDir: configStore.GetString("storage.badger_dir"),
		})
		if err != nil {
			return fmt.Errorf("opening badger cache: %w", err)
		}
		durable = badgerCache
	} else {
		durable = sqliteStore.CacheStore()
	}

	cache := services.NewTieredCache(memoryStore, durable, clock, services.TieredCacheConfig{
		MemoryTTL:   configStore.GetDuration("cache.memory_ttl"),
		DurableTTL:  configStore.GetDuration("cache.durable_ttl"),
		NegativeTTL: configStore.GetDuration("cache.negative_ttl"),
	})

	registry := services.NewConnectorRegistry(buildConnectors(configStore)...)

	aggregator := services.NewAggregator(registry, cache, corrStore, clock, services.AggregatorConfig{
		ConnectorTimeout: configStore.GetDuration("aggregation.connector_timeout"),
		OverallTimeout:   configStore.GetDuration("aggregation.overall_timeout"),
	})

	app = &appContext{
		config:      configStore,
		store:       sqliteStore,
		cache:       cache,
		registry:    registry,
		metadata:    aggregator,
		corrections: services.NewCorrectionService(corrStore, cache, clock),
	}
	return nil
}

// buildConnectors returns the configured catalog connectors. The open
// catalogs are always on; keyed catalogs join when credentials exist.
func buildConnectors(configStore driven.ConfigStore) []driven.Connector {
	connectors := []driven.Connector{
		musicbrainz.New(musicbrainz.Config{}),
		itunes.New(itunes.Config{}),
	}

	if cfg := spotify.ConfigFromStore(configStore); cfg.ClientID != "" && cfg.ClientSecret != "" {
		connectors = append(connectors, spotify.New(cfg))
	} else {
		logger.Debug("spotify disabled: no client credentials configured")
	}

	if cfg := discogs.ConfigFromStore(configStore); cfg.Token != "" {
		connectors = append(connectors, discogs.New(cfg))
	} else {
		logger.Debug("discogs disabled: no token configured")
	}

	if cfg := lastfm.ConfigFromStore(configStore); cfg.APIKey != "" {
		connectors = append(connectors, lastfm.New(cfg))
	} else {
		logger.Debug("lastfm disabled: no api key configured")
	}

	return connectors
}

func closeApp() error {
	if app == nil {
		return nil
	}
	var firstErr error
	if err := app.registry.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := app.cache.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := app.store.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	app = nil
	return firstErr
}
