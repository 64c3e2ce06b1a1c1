package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment overrides. Nested keys use a double
// underscore: DIRPAGE_LOADER__API_BASE -> loader.api_base.
const EnvPrefix = "DIRPAGE_"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (DIRPAGE_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	// ZeroFields replaces default slices wholesale instead of merging by index.
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
				mapstructure.TextUnmarshallerHookFunc(),
			),
			Result:           cfg,
			TagName:          "koanf",
			WeaklyTypedInput: true,
			ZeroFields:       true,
		},
	}); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// Main-site host labels track the brand unless listed explicitly.
	if !k.Exists("resolver.reserved_hosts") {
		cfg.Resolver.ReservedHosts = ReservedHostsFor(cfg.Site.Brand)
	}

	return cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validStrategies = map[Strategy]bool{
	StrategyPath: true,
	StrategyHost: true,
}

var validRootPolicies = map[RootPolicy]bool{
	RootHomepage: true,
	RootRedirect: true,
}

var validCacheBackends = map[CacheBackend]bool{
	CacheNone:   true,
	CacheMemory: true,
	CacheRedis:  true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if !validStrategies[c.Resolver.Strategy] {
		return fmt.Errorf("invalid resolver.strategy %q: must be one of path, host", c.Resolver.Strategy)
	}
	if c.Resolver.Strategy == StrategyHost && c.Resolver.MinHostLabels < 2 {
		return fmt.Errorf("resolver.min_host_labels must be at least 2 for the host strategy")
	}
	for _, p := range c.Resolver.ReservedHosts {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid resolver.reserved_hosts pattern %q", p)
		}
	}

	if !validRootPolicies[c.Site.RootPolicy] {
		return fmt.Errorf("invalid site.root_policy %q: must be one of homepage, redirect", c.Site.RootPolicy)
	}
	if c.Site.RootPolicy == RootRedirect {
		u, err := url.Parse(c.Site.RedirectURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("site.redirect_url must be an absolute URL when root_policy is redirect")
		}
	}

	if c.Loader.APIBase == "" && !c.API.Enabled {
		return fmt.Errorf("loader.api_base is required when the api is disabled")
	}
	if c.Loader.Timeout < 0 {
		return fmt.Errorf("loader.timeout must be non-negative")
	}
	if c.Loader.CacheTTL < 0 {
		return fmt.Errorf("loader.cache_ttl must be non-negative")
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}

	if c.API.Enabled && c.API.DBPath == "" {
		return fmt.Errorf("api.db_path is required when the api is enabled")
	}

	if !validCacheBackends[c.Cache.Backend] {
		return fmt.Errorf("invalid cache.backend %q: must be one of none, memory, redis", c.Cache.Backend)
	}
	if c.Cache.Backend == CacheRedis && c.Cache.RedisAddr == "" {
		return fmt.Errorf("cache.redis_addr is required for the redis backend")
	}

	if c.Search.Debounce <= 0 {
		return fmt.Errorf("search.debounce must be positive")
	}
	if c.Search.RenderTTL <= 0 {
		return fmt.Errorf("search.render_ttl must be positive")
	}

	return nil
}

// LoaderAPIBase returns the directory API the loader calls: loader.api_base
// when set, otherwise the built-in API on server.port.
func (c *Config) LoaderAPIBase() string {
	if c.Loader.APIBase != "" {
		return c.Loader.APIBase
	}
	return fmt.Sprintf("http://localhost:%d/api", c.Server.Port)
}
