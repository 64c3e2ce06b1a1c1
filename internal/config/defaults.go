package config

import (
	"strings"
	"time"
	"unicode"
)

// defaultBrand names the site until the wizard or config sets a brand.
const defaultBrand = "Offren Directories"

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			Brand:               defaultBrand,
			RootPolicy:          RootHomepage,
			RedirectURL:         "https://simpledirectree.com",
			HomepageTitle:       defaultBrand + " - Local Business Directory",
			HomepageDescription: "Find and compare local services in your area",
			HomepageKeywords:    "local services, directory, business listings",
		},
		Resolver: ResolverConfig{
			Strategy:      StrategyPath,
			ReservedHosts: ReservedHostsFor(defaultBrand),
			MinHostLabels: 3,
		},
		Loader: LoaderConfig{
			Timeout:  10 * time.Second,
			CacheTTL: 5 * time.Minute,
		},
		Server: ServerConfig{
			Port: 8080,
		},
		API: APIConfig{
			Enabled: true,
			DBPath:  "data/dirpage.db",
		},
		Cache: CacheConfig{
			Backend: CacheMemory,
		},
		Search: SearchConfig{
			Debounce:  300 * time.Millisecond,
			RenderTTL: 30 * time.Minute,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ReservedHostsFor returns the main-site host labels for brand: the fixed
// aliases plus the brand's first word and full name as host labels.
func ReservedHostsFor(brand string) []string {
	hosts := []string{"www", "app"}
	seen := map[string]bool{"www": true, "app": true}
	words := strings.Fields(brand)
	if len(words) == 0 {
		return hosts
	}
	for _, label := range []string{hostLabel(words[:1]), hostLabel(words)} {
		if label != "" && !seen[label] {
			seen[label] = true
			hosts = append(hosts, label)
		}
	}
	return hosts
}

// hostLabel joins words into a lowercase DNS label, dropping characters a
// label cannot carry.
func hostLabel(words []string) string {
	var parts []string
	for _, w := range words {
		var b strings.Builder
		for _, r := range strings.ToLower(w) {
			if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
				b.WriteRune(r)
			}
		}
		if b.Len() > 0 {
			parts = append(parts, b.String())
		}
	}
	return strings.Join(parts, "-")
}
