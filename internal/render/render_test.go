package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/ziadkadry99/dirpage/internal/directory"
	"github.com/ziadkadry99/dirpage/internal/mock"
	"github.com/ziadkadry99/dirpage/internal/view"
)

var fixedNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func renderPage(t *testing.T, p *directory.Payload) (*Renderer, *view.Document, *goquery.Document) {
	t.Helper()
	doc := view.NewDocument()
	r := New(doc, "https://example.com/plumbing", WithNow(func() time.Time { return fixedNow }))
	if err := r.Render(p); err != nil {
		t.Fatalf("Render: %v", err)
	}
	var buf bytes.Buffer
	if err := doc.Render(&buf); err != nil {
		t.Fatalf("Document.Render: %v", err)
	}
	page, err := goquery.NewDocumentFromReader(&buf)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return r, doc, page
}

func TestRenderCards(t *testing.T) {
	p := mock.For("plumbing", fixedNow)
	p.Listings[2].Name = `<script>alert("x")</script>`
	p.Listings[3].Name = ""

	r, doc, page := renderPage(t, p)

	if r.State() != Content {
		t.Fatalf("state: got %v, want content", r.State())
	}
	cards := page.Find("#listings .listing")
	if cards.Length() != len(p.Listings) {
		t.Fatalf("cards: got %d, want %d", cards.Length(), len(p.Listings))
	}
	names := page.Find(".listing-name")
	for _, want := range []string{"Sample Business 1", `<script>alert("x")</script>`, UnknownName} {
		n := names.FilterFunction(func(_ int, s *goquery.Selection) bool { return s.Text() == want }).Length()
		if n != 1 {
			t.Errorf("name %q appears %d times", want, n)
		}
	}
	if page.Find("#listings script").Length() != 0 {
		t.Error("listing name was not escaped")
	}

	if got := doc.Text(view.ResultsCount); got != "Showing all 5 listings" {
		t.Errorf("results count: got %q", got)
	}
	if got := doc.Text(view.DirectoryStats); got != "📊 5 listings" {
		t.Errorf("stats: got %q", got)
	}
	if got := doc.Text(view.DirectoryDesc); got != "Find and compare plumbing in your area" {
		t.Errorf("description: got %q", got)
	}
	if got := doc.Text(view.FooterUpdated); got != "Updated today" {
		t.Errorf("footer: got %q", got)
	}
	if doc.Visible(view.Loading) || !doc.Visible(view.Content) || doc.Visible(view.NoResults) {
		t.Error("unexpected visibility after content render")
	}

	first := page.Find("#" + view.CardID(0))
	if got, _ := first.Attr("data-search"); !strings.Contains(got, "sample business 1") || !strings.Contains(got, "local area") {
		t.Errorf("data-search: got %q", got)
	}
	if got, _ := first.Find(".btn-secondary").Attr("href"); got != "tel:5551234567" {
		t.Errorf("tel link: got %q", got)
	}
	if !strings.Contains(first.Find(".listing-rating").Text(), "⭐ 4.5") {
		t.Errorf("rating: got %q", first.Find(".listing-rating").Text())
	}
}

func TestRenderEmptyListings(t *testing.T) {
	p := mock.For("bakeries", fixedNow)
	p.Listings = []directory.Listing{}

	r, doc, page := renderPage(t, p)

	if r.State() != NoResults {
		t.Fatalf("state: got %v, want no-results", r.State())
	}
	if n := page.Find("#listings").Children().Length(); n != 0 {
		t.Errorf("listings container has %d children", n)
	}
	if !doc.Visible(view.NoResults) || !doc.Visible(view.Content) {
		t.Error("no-results and content should be visible")
	}
	if len(r.Listings()) != 0 {
		t.Errorf("Listings: got %d", len(r.Listings()))
	}
}

func TestRenderMetadata(t *testing.T) {
	p := mock.For("dog-groomers", fixedNow)
	_, doc, page := renderPage(t, p)

	if got := page.Find("title").Text(); got != "Dog Groomers Directory" {
		t.Errorf("title: got %q", got)
	}
	if got, _ := page.Find("#og-url").Attr("content"); got != "https://example.com/plumbing" {
		t.Errorf("og:url: got %q", got)
	}
	if got := doc.Attr(view.Content, "data-key"); got != "" {
		t.Errorf("data-key is the server's to set, got %q", got)
	}

	sd := doc.Text(view.StructuredData)
	if !strings.Contains(sd, "\n  \"@type\": \"WebPage\"") {
		t.Errorf("structured data not indented by two spaces:\n%s", sd)
	}
	var decoded struct {
		Type  string `json:"@type"`
		About struct {
			Type string `json:"@type"`
			Name string `json:"name"`
		} `json:"about"`
	}
	if err := json.Unmarshal([]byte(sd), &decoded); err != nil {
		t.Fatalf("structured data: %v", err)
	}
	if decoded.Type != "WebPage" || decoded.About.Type != "LocalBusiness" || decoded.About.Name != "Dog Groomers" {
		t.Errorf("structured data: %+v", decoded)
	}
}

func TestRenderAboutMarkdown(t *testing.T) {
	p := mock.For("plumbing", fixedNow)
	p.Description = "Trusted **local** plumbers. <script>bad()</script>"
	_, _, page := renderPage(t, p)

	about := page.Find("#directory-about")
	if about.Find("strong").Text() != "local" {
		t.Errorf("markdown not rendered: %q", about.Text())
	}
	if about.Find("script").Length() != 0 {
		t.Error("raw HTML passed through")
	}
}

func TestRenderMissingTarget(t *testing.T) {
	doc := view.NewDocumentWith([]string{view.PageTitle, view.PageDescription})
	r := New(doc, "https://example.com/x")

	err := r.Render(mock.For("x", fixedNow))
	var missing *view.RenderTargetMissingError
	if !errors.As(err, &missing) {
		t.Fatalf("expected RenderTargetMissingError, got %v", err)
	}
	if r.State() != Loading {
		t.Errorf("state changed to %v", r.State())
	}
}

func TestHomepageAndFail(t *testing.T) {
	doc := view.NewDocument()
	r := New(doc, "https://example.com/")

	if err := r.Homepage(HomepageContent{Title: "Offren", Description: "Local services"}); err != nil {
		t.Fatalf("Homepage: %v", err)
	}
	if r.State() != Homepage || !doc.Visible(view.Homepage) || doc.Visible(view.Loading) {
		t.Error("homepage state not applied")
	}

	if err := r.Fail("boom"); err != nil {
		t.Fatalf("Fail: %v", err)
	}
	if r.State() != Error || !doc.Visible(view.Error) || doc.Visible(view.Homepage) {
		t.Error("error state not applied")
	}
	if got := doc.Text(view.ErrorMessage); got != "boom" {
		t.Errorf("error message: got %q", got)
	}
}

func TestFormatRelative(t *testing.T) {
	tests := []struct {
		daysAgo int
		want    string
	}{
		{0, "today"},
		{1, "yesterday"},
		{3, "3 days ago"},
		{10, "1 weeks ago"},
		{29, "4 weeks ago"},
		{40, "2/2/2026"},
		{-2, "today"},
	}
	for _, tt := range tests {
		got := FormatRelative(fixedNow.AddDate(0, 0, -tt.daysAgo), fixedNow)
		if got != tt.want {
			t.Errorf("%d days ago: got %q, want %q", tt.daysAgo, got, tt.want)
		}
	}
}

func TestTelURL(t *testing.T) {
	tests := map[string]string{
		"(555) 123-4567":  "tel:5551234567",
		"+1 555 123 4567": "tel:+15551234567",
		"555+1":           "tel:5551",
	}
	for in, want := range tests {
		if got := string(telURL(in)); got != want {
			t.Errorf("telURL(%q): got %q, want %q", in, got, want)
		}
	}
}
