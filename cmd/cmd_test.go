package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ziadkadry99/dirpage/internal/config"
)

func TestNormalizeKeys(t *testing.T) {
	got, err := normalizeKeys([]string{" Plumbing", "bakeries", "plumbing", "", "  "})
	if err != nil {
		t.Fatalf("normalizeKeys: %v", err)
	}
	if diff := cmp.Diff([]string{"bakeries", "plumbing"}, got); diff != "" {
		t.Errorf("keys (-want +got):\n%s", diff)
	}
}

func TestNormalizeKeysRejectsPaths(t *testing.T) {
	for _, key := range []string{"../x", "a/b", `a\b`, ".."} {
		if _, err := normalizeKeys([]string{"plumbing", key}); err == nil {
			t.Errorf("normalizeKeys accepted %q", key)
		}
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("DIRPAGE_TEST_ONLY=from-file\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DIRPAGE_TEST_ONLY", "")
	os.Unsetenv("DIRPAGE_TEST_ONLY")

	if err := loadEnvFile(path); err != nil {
		t.Fatalf("loadEnvFile: %v", err)
	}
	if got := os.Getenv("DIRPAGE_TEST_ONLY"); got != "from-file" {
		t.Errorf("env: got %q", got)
	}

	if err := loadEnvFile(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("missing file should be ignored: %v", err)
	}
}

func TestVersionString(t *testing.T) {
	oldVersion, oldCommit := Version, Commit
	t.Cleanup(func() { Version, Commit = oldVersion, oldCommit })

	Version, Commit = "1.2.0", "abc123"
	got := versionString()
	if !strings.HasPrefix(got, "dirpage 1.2.0 (abc123) go") {
		t.Errorf("versionString: got %q", got)
	}
}

func TestSelfAPIPortMismatch(t *testing.T) {
	tests := []struct {
		name    string
		apiBase string
		enabled bool
		want    bool
	}{
		{"derived from port", "", true, false},
		{"same local port", "http://localhost:9090/api", true, false},
		{"other local port", "http://localhost:8080/api", true, true},
		{"loopback default port", "http://127.0.0.1/api", true, true},
		{"remote api", "https://api.example.com", true, false},
		{"api disabled", "http://localhost:8080/api", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Server.Port = 9090
			cfg.Loader.APIBase = tt.apiBase
			cfg.API.Enabled = tt.enabled
			if got := selfAPIPortMismatch(cfg); got != tt.want {
				t.Errorf("selfAPIPortMismatch(%q) = %v, want %v", tt.apiBase, got, tt.want)
			}
		})
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := map[string]bool{"serve": true, "render": true, "resolve": true, "prefetch": true, "seed": true, "init": true, "version": true, "site": true}
	for _, c := range rootCmd.Commands() {
		delete(want, c.Name())
	}
	for name := range want {
		t.Errorf("command %s not registered", name)
	}
}
