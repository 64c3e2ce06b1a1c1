// Package render projects a directory payload onto a view.Sink and tracks the
// page state that results.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"

	"github.com/ziadkadry99/dirpage/internal/directory"
	"github.com/ziadkadry99/dirpage/internal/search"
	"github.com/ziadkadry99/dirpage/internal/view"
)

// State is the page state.
type State int

const (
	Loading State = iota
	Content
	Error
	NoResults
	Homepage
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Content:
		return "content"
	case Error:
		return "error"
	case NoResults:
		return "no-results"
	case Homepage:
		return "homepage"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// HomepageContent is the metadata shown when no directory is addressed.
type HomepageContent struct {
	Title       string
	Description string
	Keywords    string
}

// Renderer writes pages onto a sink. It is used for a single page and is not
// safe for concurrent use.
type Renderer struct {
	sink     view.Sink
	pageURL  string
	now      func() time.Time
	md       goldmark.Markdown
	state    State
	listings []directory.Listing
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithNow sets the clock used for the footer's relative time.
func WithNow(now func() time.Time) Option {
	return func(r *Renderer) { r.now = now }
}

// New returns a Renderer in the Loading state. pageURL is the canonical URL
// of the page, used for Open Graph and structured data.
func New(sink view.Sink, pageURL string, opts ...Option) *Renderer {
	r := &Renderer{
		sink:    sink,
		pageURL: pageURL,
		now:     time.Now,
		// Raw HTML in descriptions is omitted; goldmark only passes it through
		// with html.WithUnsafe.
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				highlighting.NewHighlighting(highlighting.WithStyle("github")),
			),
		),
		state: Loading,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// State returns the current page state.
func (r *Renderer) State() State { return r.state }

// Listings returns the listing set of the last successful render.
func (r *Renderer) Listings() []directory.Listing { return r.listings }

// Render projects p onto the sink. On error the state is left unchanged.
func (r *Renderer) Render(p *directory.Payload) error {
	if err := r.renderMeta(p.Meta.Title, p.Meta.Description, p.Meta.Keywords); err != nil {
		return err
	}
	sd, err := structuredData(p.Meta.Title, p.Meta.Description, r.pageURL, p.Config.NiceName)
	if err != nil {
		return err
	}
	if err := r.sink.SetText(view.StructuredData, sd); err != nil {
		return err
	}
	if err := r.renderHeader(p); err != nil {
		return err
	}
	if err := r.renderFooter(p); err != nil {
		return err
	}

	if len(p.Listings) == 0 {
		if err := r.sink.SetHTML(view.Listings, ""); err != nil {
			return err
		}
		if err := r.sink.SetVisible(view.NoResults, true); err != nil {
			return err
		}
		if err := r.show(view.Content); err != nil {
			return err
		}
		r.listings = nil
		r.state = NoResults
		return nil
	}

	cards, err := renderCards(p.Listings)
	if err != nil {
		return fmt.Errorf("rendering listing cards: %w", err)
	}
	if err := r.sink.SetHTML(view.Listings, cards); err != nil {
		return err
	}
	if err := r.sink.SetVisible(view.NoResults, false); err != nil {
		return err
	}
	if err := r.sink.SetText(view.ResultsCount, search.CountText(len(p.Listings), len(p.Listings))); err != nil {
		return err
	}
	if err := r.show(view.Content); err != nil {
		return err
	}
	r.listings = p.Listings
	r.state = Content
	return nil
}

// Homepage renders the main-site landing state.
func (r *Renderer) Homepage(h HomepageContent) error {
	if err := r.renderMeta(h.Title, h.Description, h.Keywords); err != nil {
		return err
	}
	if err := r.show(view.Homepage); err != nil {
		return err
	}
	r.state = Homepage
	return nil
}

// Fail enters the Error state with message.
func (r *Renderer) Fail(message string) error {
	if err := r.sink.SetText(view.ErrorMessage, message); err != nil {
		return err
	}
	if err := r.show(view.Error); err != nil {
		return err
	}
	r.state = Error
	return nil
}

func (r *Renderer) renderMeta(title, description, keywords string) error {
	if err := r.sink.SetText(view.PageTitle, title); err != nil {
		return err
	}
	attrs := []struct{ id, value string }{
		{view.PageDescription, description},
		{view.PageKeywords, keywords},
		{view.OGTitle, title},
		{view.OGDescription, description},
		{view.OGURL, r.pageURL},
	}
	for _, a := range attrs {
		if err := r.sink.SetAttribute(a.id, "content", a.value); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) renderHeader(p *directory.Payload) error {
	name := p.Config.NiceName
	if err := r.sink.SetText(view.DirectoryTitle, name); err != nil {
		return err
	}
	if err := r.sink.SetText(view.DirectoryDesc, fmt.Sprintf("Find and compare %s in your area", strings.ToLower(name))); err != nil {
		return err
	}
	if err := r.sink.SetText(view.DirectoryStats, fmt.Sprintf("📊 %d listings", len(p.Listings))); err != nil {
		return err
	}

	var about bytes.Buffer
	if p.Description != "" {
		if err := r.md.Convert([]byte(p.Description), &about); err != nil {
			return fmt.Errorf("rendering description: %w", err)
		}
	}
	return r.sink.SetHTML(view.DirectoryAbout, template.HTML(about.String()))
}

func (r *Renderer) renderFooter(p *directory.Payload) error {
	text := ""
	if t, ok := p.UpdatedAt(); ok {
		text = "Updated " + FormatRelative(t, r.now())
	}
	return r.sink.SetText(view.FooterUpdated, text)
}

// show makes target the only visible top-level state container.
func (r *Renderer) show(target string) error {
	for _, id := range []string{view.Loading, view.Error, view.Content, view.Homepage} {
		if err := r.sink.SetVisible(id, id == target); err != nil {
			return err
		}
	}
	return nil
}

type webPage struct {
	Context     string        `json:"@context"`
	Type        string        `json:"@type"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	URL         string        `json:"url"`
	About       localBusiness `json:"about"`
}

type localBusiness struct {
	Type string `json:"@type"`
	Name string `json:"name"`
}

// structuredData returns the schema.org WebPage block for a directory page.
// json.Marshal escapes <, > and &, so the result is safe inside a script
// element.
func structuredData(title, description, url, niceName string) (string, error) {
	b, err := json.MarshalIndent(webPage{
		Context:     "https://schema.org",
		Type:        "WebPage",
		Name:        title,
		Description: description,
		URL:         url,
		About:       localBusiness{Type: "LocalBusiness", Name: niceName},
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding structured data: %w", err)
	}
	return string(b), nil
}
