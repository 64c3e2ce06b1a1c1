package resolver

import (
	"net/http/httptest"
	"testing"

	"github.com/ziadkadry99/dirpage/internal/config"
)

func TestPathResolver(t *testing.T) {
	tests := []struct {
		path   string
		want   string
		wantOK bool
	}{
		{"/plumbing-services", "plumbing-services", true},
		{"/plumbing-services/", "plumbing-services", true},
		{"//HVAC/extra/segments", "hvac", true},
		{"/", "", false},
		{"", "", false},
		{"///", "", false},
	}
	r := PathResolver{}
	for _, tt := range tests {
		got, ok := r.Resolve(Navigation{Path: tt.path})
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Resolve(%q) = %q, %v; want %q, %v", tt.path, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestHostResolver(t *testing.T) {
	r := HostResolver{Reserved: []string{"www", "app", "offren", "preview-*"}, MinLabels: 3}
	tests := []struct {
		host   string
		want   string
		wantOK bool
	}{
		{"plumbing.offren.com", "plumbing", true},
		{"Plumbing.Offren.com:8443", "plumbing", true},
		{"roofers.offren.com.", "roofers", true},
		{"www.offren.com", "", false},
		{"app.offren.com", "", false},
		{"preview-42.offren.com", "", false},
		{"offren.com", "", false},
		{"localhost:8080", "", false},
		{"10.0.0.12", "", false},
		{"[::1]:8080", "", false},
	}
	for _, tt := range tests {
		got, ok := r.Resolve(Navigation{Host: tt.host})
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Resolve(%q) = %q, %v; want %q, %v", tt.host, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	keys := []string{"Plumbing-Services", " hvac ", "DOG_WALKERS", "café"}

	path := PathResolver{}
	host := HostResolver{MinLabels: 3}
	for _, raw := range keys {
		first, ok := path.Resolve(Navigation{Path: "/" + raw})
		if !ok {
			t.Fatalf("path: no key for %q", raw)
		}
		again, _ := path.Resolve(Navigation{Path: "/" + first})
		if again != first {
			t.Errorf("path: re-resolving %q gave %q", first, again)
		}

		hostFirst, ok := host.Resolve(Navigation{Host: first + ".example.com"})
		if !ok || hostFirst != first {
			t.Errorf("host: resolving %q gave %q, %v", first, hostFirst, ok)
		}
	}
}

func TestNewSelectsStrategy(t *testing.T) {
	cfg := config.DefaultConfig().Resolver

	r, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := r.(PathResolver); !ok {
		t.Errorf("expected PathResolver, got %T", r)
	}

	cfg.Strategy = config.StrategyHost
	r, err = New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := r.(HostResolver); !ok {
		t.Errorf("expected HostResolver, got %T", r)
	}

	cfg.Strategy = "query"
	if _, err := New(cfg); err == nil {
		t.Error("expected error for unknown strategy")
	}
}

func TestFromRequest(t *testing.T) {
	req := httptest.NewRequest("GET", "http://plumbing.example.com/dog%20walkers?q=x", nil)
	nav := FromRequest(req)
	if nav.Host != "plumbing.example.com" {
		t.Errorf("host: got %q", nav.Host)
	}
	if nav.Path != "/dog walkers" {
		t.Errorf("path: got %q", nav.Path)
	}
}
