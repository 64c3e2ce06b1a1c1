// Package site exports rendered directory pages as a static site.
package site

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ziadkadry99/dirpage/internal/loader"
	"github.com/ziadkadry99/dirpage/internal/render"
	"github.com/ziadkadry99/dirpage/internal/view"
)

// PayloadLoader loads directory payloads. *loader.Loader satisfies it.
type PayloadLoader interface {
	Load(ctx context.Context, key string) (loader.Result, error)
}

// Exporter writes one index.html per directory under OutputDir, plus a
// homepage at the root.
type Exporter struct {
	Loader      PayloadLoader
	OutputDir   string
	BaseURL     string // public URL the export is served from
	Homepage    render.HomepageContent
	Concurrency int
	Now         func() time.Time
}

// Page describes one exported directory page.
type Page struct {
	Key      string        `json:"key"`
	Path     string        `json:"path"`
	Source   loader.Source `json:"source"`
	Listings int           `json:"listings"`
}

// Export renders every key and writes the site. Pages are returned in the
// order of keys. Export stops at the first failure.
func (e *Exporter) Export(ctx context.Context, keys []string) ([]Page, error) {
	if err := os.MkdirAll(e.OutputDir, 0o755); err != nil {
		return nil, err
	}

	pages := make([]Page, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	if e.Concurrency > 0 {
		g.SetLimit(e.Concurrency)
	}
	for i, key := range keys {
		i, key := i, key
		g.Go(func() error {
			page, err := e.exportDirectory(gctx, key)
			if err != nil {
				return fmt.Errorf("exporting %s: %w", key, err)
			}
			pages[i] = page
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := e.exportHomepage(); err != nil {
		return nil, fmt.Errorf("exporting homepage: %w", err)
	}
	if err := writeManifest(pages, filepath.Join(e.OutputDir, "directories.json")); err != nil {
		return nil, fmt.Errorf("writing manifest: %w", err)
	}
	return pages, nil
}

// ValidKey reports whether key can name a page directory inside the output
// directory.
func ValidKey(key string) error {
	if key == "" || key == "." || strings.Contains(key, "..") || strings.ContainsAny(key, "/\\\x00") {
		return fmt.Errorf("invalid directory key %q", key)
	}
	return nil
}

func (e *Exporter) exportDirectory(ctx context.Context, key string) (Page, error) {
	if err := ValidKey(key); err != nil {
		return Page{}, err
	}
	res, err := e.Loader.Load(ctx, key)
	if err != nil {
		return Page{}, err
	}

	doc := view.NewDocument()
	if err := e.renderer(doc, key+"/").Render(res.Payload); err != nil {
		return Page{}, err
	}

	rel := filepath.ToSlash(filepath.Join(key, "index.html"))
	if err := writePage(doc, filepath.Join(e.OutputDir, filepath.FromSlash(rel))); err != nil {
		return Page{}, err
	}
	return Page{Key: key, Path: rel, Source: res.Source, Listings: len(res.Payload.Listings)}, nil
}

func (e *Exporter) exportHomepage() error {
	doc := view.NewDocument()
	if err := e.renderer(doc, "").Homepage(e.Homepage); err != nil {
		return err
	}
	return writePage(doc, filepath.Join(e.OutputDir, "index.html"))
}

func (e *Exporter) renderer(doc *view.Document, path string) *render.Renderer {
	var opts []render.Option
	if e.Now != nil {
		opts = append(opts, render.WithNow(e.Now))
	}
	return render.New(doc, pageURL(e.BaseURL, path), opts...)
}

// pageURL joins base and path, keeping the base's trailing slash semantics.
func pageURL(base, path string) string {
	u, err := url.Parse(base)
	if err != nil || base == "" {
		return "/" + path
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/" + path
	return u.String()
}

// writePage serializes doc before creating the file so a failed render
// leaves no partial page behind.
func writePage(doc *view.Document, outPath string) error {
	var buf bytes.Buffer
	if err := doc.Render(&buf); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(outPath, buf.Bytes(), 0o644)
}

func writeManifest(pages []Page, path string) error {
	data, err := json.MarshalIndent(pages, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
