package config

import "time"

// Strategy selects how the directory key is derived from a request.
type Strategy string

const (
	StrategyPath Strategy = "path"
	StrategyHost Strategy = "host"
)

// RootPolicy controls what a request without a directory key receives.
type RootPolicy string

const (
	RootHomepage RootPolicy = "homepage"
	RootRedirect RootPolicy = "redirect"
)

// CacheBackend identifies where live payloads are cached.
type CacheBackend string

const (
	CacheNone   CacheBackend = "none"
	CacheMemory CacheBackend = "memory"
	CacheRedis  CacheBackend = "redis"
)

// Config is the top-level dirpage configuration, corresponding to .dirpage.yml.
type Config struct {
	Site     SiteConfig     `yaml:"site" koanf:"site"`
	Resolver ResolverConfig `yaml:"resolver" koanf:"resolver"`
	Loader   LoaderConfig   `yaml:"loader" koanf:"loader"`
	Server   ServerConfig   `yaml:"server" koanf:"server"`
	API      APIConfig      `yaml:"api" koanf:"api"`
	Cache    CacheConfig    `yaml:"cache" koanf:"cache"`
	Search   SearchConfig   `yaml:"search" koanf:"search"`
	Log      LogConfig      `yaml:"log" koanf:"log"`
}

// SiteConfig holds branding and the no-key behaviour.
type SiteConfig struct {
	Brand               string     `yaml:"brand" koanf:"brand"`
	RootPolicy          RootPolicy `yaml:"root_policy" koanf:"root_policy"`
	RedirectURL         string     `yaml:"redirect_url" koanf:"redirect_url"`
	HomepageTitle       string     `yaml:"homepage_title" koanf:"homepage_title"`
	HomepageDescription string     `yaml:"homepage_description" koanf:"homepage_description"`
	HomepageKeywords    string     `yaml:"homepage_keywords" koanf:"homepage_keywords"`
}

// ResolverConfig selects and tunes the key resolution strategy.
type ResolverConfig struct {
	Strategy      Strategy `yaml:"strategy" koanf:"strategy"`
	ReservedHosts []string `yaml:"reserved_hosts" koanf:"reserved_hosts"`
	MinHostLabels int      `yaml:"min_host_labels" koanf:"min_host_labels"`
}

// LoaderConfig points the loader at the directory API.
type LoaderConfig struct {
	// APIBase is left empty to use this server's own directory API.
	APIBase  string        `yaml:"api_base" koanf:"api_base"`
	Timeout  time.Duration `yaml:"timeout" koanf:"timeout"`
	CacheTTL time.Duration `yaml:"cache_ttl" koanf:"cache_ttl"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port     int  `yaml:"port" koanf:"port"`
	AllowAll bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}

// APIConfig enables the built-in SQLite directory API.
type APIConfig struct {
	Enabled bool   `yaml:"enabled" koanf:"enabled"`
	DBPath  string `yaml:"db_path" koanf:"db_path"`
}

// CacheConfig holds payload cache settings.
type CacheConfig struct {
	Backend       CacheBackend `yaml:"backend" koanf:"backend"`
	RedisAddr     string       `yaml:"redis_addr" koanf:"redis_addr"`
	RedisPassword string       `yaml:"redis_password" koanf:"redis_password"`
	RedisDB       int          `yaml:"redis_db" koanf:"redis_db"`
}

// SearchConfig tunes live search.
type SearchConfig struct {
	Debounce time.Duration `yaml:"debounce" koanf:"debounce"`
	// RenderTTL is how long a rendered listing set stays available to the
	// live search socket of the page that rendered it.
	RenderTTL time.Duration `yaml:"render_ttl" koanf:"render_ttl"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level string `yaml:"level" koanf:"level"`
	File  string `yaml:"file" koanf:"file"`
}
