package cmd

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ziadkadry99/dirpage/internal/api"
	"github.com/ziadkadry99/dirpage/internal/cache"
	"github.com/ziadkadry99/dirpage/internal/config"
	"github.com/ziadkadry99/dirpage/internal/db"
	"github.com/ziadkadry99/dirpage/internal/loader"
	"github.com/ziadkadry99/dirpage/internal/logging"
	"github.com/ziadkadry99/dirpage/internal/site"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `dirpage init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// buildLogger creates the process logger. --verbose forces debug level.
func buildLogger(cfg *config.Config) (*zap.Logger, error) {
	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	logger, err := logging.New(level, cfg.Log.File)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	return logger, nil
}

// buildCache creates the payload cache selected by cfg. It returns nil when
// caching is disabled.
func buildCache(ctx context.Context, cfg *config.Config, logger *zap.Logger) (cache.Cache, error) {
	switch cfg.Cache.Backend {
	case config.CacheMemory:
		return cache.NewMemory(), nil
	case config.CacheRedis:
		c, err := cache.NewRedis(ctx, cache.RedisConfig{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		return c, nil
	default:
		return nil, nil
	}
}

// buildRenderStore creates the store of rendered listing sets that live
// search sessions read. Redis is shared across instances behind a balancer;
// otherwise the sets stay in process.
func buildRenderStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (cache.Cache, error) {
	if cfg.Cache.Backend != config.CacheRedis {
		return cache.NewMemory(), nil
	}
	c, err := cache.NewRedis(ctx, cache.RedisConfig{
		Addr:     cfg.Cache.RedisAddr,
		Password: cfg.Cache.RedisPassword,
		DB:       cfg.Cache.RedisDB,
		Prefix:   cache.RenderPrefix,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return c, nil
}

// selfAPIPortMismatch reports whether api_base names this host on a port
// other than the one the built-in API listens on.
func selfAPIPortMismatch(cfg *config.Config) bool {
	if !cfg.API.Enabled || cfg.Loader.APIBase == "" {
		return false
	}
	u, err := url.Parse(cfg.Loader.APIBase)
	if err != nil {
		return false
	}
	switch u.Hostname() {
	case "localhost", "127.0.0.1", "::1":
	default:
		return false
	}
	port := u.Port()
	if port == "" {
		port = "80"
		if u.Scheme == "https" {
			port = "443"
		}
	}
	return port != strconv.Itoa(cfg.Server.Port)
}

// buildLoader creates the directory loader from cfg.
func buildLoader(cfg *config.Config, c cache.Cache, logger *zap.Logger) *loader.Loader {
	return loader.New(loader.Options{
		APIBase:  cfg.LoaderAPIBase(),
		Timeout:  cfg.Loader.Timeout,
		Cache:    c,
		CacheTTL: cfg.Loader.CacheTTL,
		Logger:   logger,
	})
}

// collectKeys normalizes the directory keys named on the command line and,
// with stored set, adds every key held by the API database.
func collectKeys(ctx context.Context, cfg *config.Config, args []string, stored bool) ([]string, error) {
	keys := args
	if stored {
		database, err := db.Open(cfg.API.DBPath)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		storedKeys, err := api.NewStore(database).Keys(ctx)
		database.Close()
		if err != nil {
			return nil, err
		}
		keys = append(append([]string(nil), args...), storedKeys...)
	}
	return normalizeKeys(keys)
}

// normalizeKeys lowercases, trims and deduplicates keys, sorted. Keys that
// cannot name a single page directory are rejected.
func normalizeKeys(keys []string) ([]string, error) {
	seen := make(map[string]bool, len(keys))
	var out []string
	for _, k := range keys {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" || seen[k] {
			continue
		}
		if err := site.ValidKey(k); err != nil {
			return nil, err
		}
		seen[k] = true
		out = append(out, k)
	}
	sort.Strings(out)
	return out, nil
}
