// Package resolver derives the directory key from a request's navigation
// context. Exactly one strategy is active per process.
package resolver

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ziadkadry99/dirpage/internal/config"
)

// Navigation is the part of a request a Resolver looks at. Path is the
// decoded URL path.
type Navigation struct {
	Host string
	Path string
}

// FromRequest extracts the navigation context of r.
func FromRequest(r *http.Request) Navigation {
	return Navigation{Host: r.Host, Path: r.URL.Path}
}

// Resolver maps a navigation context to a directory key. ok is false when the
// context addresses the main site.
type Resolver interface {
	Resolve(nav Navigation) (key string, ok bool)
}

// New returns the resolver selected by cfg.
func New(cfg config.ResolverConfig) (Resolver, error) {
	switch cfg.Strategy {
	case config.StrategyPath:
		return PathResolver{}, nil
	case config.StrategyHost:
		for _, p := range cfg.ReservedHosts {
			if !doublestar.ValidatePattern(p) {
				return nil, fmt.Errorf("invalid reserved host pattern %q", p)
			}
		}
		return HostResolver{Reserved: cfg.ReservedHosts, MinLabels: cfg.MinHostLabels}, nil
	default:
		return nil, fmt.Errorf("unknown resolver strategy %q", cfg.Strategy)
	}
}

// PathResolver uses the first non-empty path segment as the key.
type PathResolver struct{}

func (PathResolver) Resolve(nav Navigation) (string, bool) {
	for _, seg := range strings.Split(nav.Path, "/") {
		if key := normalize(seg); key != "" {
			return key, true
		}
	}
	return "", false
}

// HostResolver uses the first hostname label as the key unless the label is
// a reserved main-site alias or the host has too few labels to carry a
// subdomain.
type HostResolver struct {
	Reserved  []string // doublestar patterns matched against the first label
	MinLabels int
}

func (h HostResolver) Resolve(nav Navigation) (string, bool) {
	host := nav.Host
	if hostOnly, _, err := net.SplitHostPort(host); err == nil {
		host = hostOnly
	}
	host = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(host)), ".")
	if host == "" || net.ParseIP(strings.Trim(host, "[]")) != nil {
		return "", false
	}

	labels := strings.Split(host, ".")
	if len(labels) < h.MinLabels {
		return "", false
	}

	key := normalize(labels[0])
	if key == "" || h.reserved(key) {
		return "", false
	}
	return key, true
}

func (h HostResolver) reserved(label string) bool {
	for _, pattern := range h.Reserved {
		if ok, err := doublestar.Match(strings.ToLower(pattern), label); err == nil && ok {
			return true
		}
	}
	return false
}

// normalize is idempotent: normalize(normalize(s)) == normalize(s).
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
