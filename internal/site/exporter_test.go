package site

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"

	"github.com/ziadkadry99/dirpage/internal/loader"
	"github.com/ziadkadry99/dirpage/internal/mock"
	"github.com/ziadkadry99/dirpage/internal/render"
)

var fixedNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

// mockLoader serves fixture payloads and fails for keys in fail.
type mockLoader struct {
	fail map[string]bool
}

func (m mockLoader) Load(_ context.Context, key string) (loader.Result, error) {
	if m.fail[key] {
		return loader.Result{}, errors.New("cancelled")
	}
	return loader.Result{Payload: mock.For(key, fixedNow), Source: loader.SourceMock}, nil
}

func TestExport(t *testing.T) {
	out := t.TempDir()
	e := &Exporter{
		Loader:      mockLoader{},
		OutputDir:   out,
		BaseURL:     "https://static.example.com/dirs/",
		Homepage:    render.HomepageContent{Title: "Offren Directories"},
		Concurrency: 2,
		Now:         func() time.Time { return fixedNow },
	}

	pages, err := e.Export(context.Background(), []string{"plumbing", "bakeries"})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	want := []Page{
		{Key: "plumbing", Path: "plumbing/index.html", Source: loader.SourceMock, Listings: 5},
		{Key: "bakeries", Path: "bakeries/index.html", Source: loader.SourceMock, Listings: 5},
	}
	if diff := cmp.Diff(want, pages); diff != "" {
		t.Errorf("pages (-want +got):\n%s", diff)
	}

	f, err := os.Open(filepath.Join(out, "plumbing", "index.html"))
	if err != nil {
		t.Fatalf("open page: %v", err)
	}
	defer f.Close()
	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if n := doc.Find(".listing").Length(); n != 5 {
		t.Errorf("cards: got %d, want 5", n)
	}
	if got, _ := doc.Find("#og-url").Attr("content"); got != "https://static.example.com/dirs/plumbing/" {
		t.Errorf("og:url: got %q", got)
	}

	if _, err := os.Stat(filepath.Join(out, "index.html")); err != nil {
		t.Errorf("homepage not written: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(out, "directories.json"))
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	var manifest []Page
	if err := json.Unmarshal(data, &manifest); err != nil {
		t.Fatalf("decode manifest: %v", err)
	}
	if diff := cmp.Diff(want, manifest); diff != "" {
		t.Errorf("manifest (-want +got):\n%s", diff)
	}
}

func TestExportStopsOnFailure(t *testing.T) {
	e := &Exporter{
		Loader:    mockLoader{fail: map[string]bool{"broken": true}},
		OutputDir: t.TempDir(),
	}
	if _, err := e.Export(context.Background(), []string{"plumbing", "broken"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestPageURL(t *testing.T) {
	tests := []struct{ base, path, want string }{
		{"https://x.com", "a/", "https://x.com/a/"},
		{"https://x.com/dirs/", "a/", "https://x.com/dirs/a/"},
		{"", "a/", "/a/"},
		{"https://x.com/", "", "https://x.com/"},
	}
	for _, tt := range tests {
		if got := pageURL(tt.base, tt.path); got != tt.want {
			t.Errorf("pageURL(%q, %q) = %q, want %q", tt.base, tt.path, got, tt.want)
		}
	}
}

func TestExportRejectsTraversalKeys(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, "site")
	e := &Exporter{Loader: mockLoader{}, OutputDir: out, Now: func() time.Time { return fixedNow }}

	if _, err := e.Export(context.Background(), []string{"../escaped"}); err == nil {
		t.Fatal("expected an error for a traversal key")
	}
	if _, err := os.Stat(filepath.Join(root, "escaped")); !os.IsNotExist(err) {
		t.Errorf("page written outside the output directory: %v", err)
	}
}

func TestValidKey(t *testing.T) {
	for _, key := range []string{"plumbing", "dog-groomers", "a.b"} {
		if err := ValidKey(key); err != nil {
			t.Errorf("ValidKey(%q): %v", key, err)
		}
	}
	for _, key := range []string{"", ".", "..", "../x", "a/b", `a\b`} {
		if err := ValidKey(key); err == nil {
			t.Errorf("ValidKey(%q) accepted", key)
		}
	}
}
