package view

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func TestNewDocumentStartsLoading(t *testing.T) {
	d := NewDocument()
	if !d.Visible(Loading) {
		t.Error("loading should be visible initially")
	}
	for _, id := range []string{Error, Content, Homepage, NoResults} {
		if d.Visible(id) {
			t.Errorf("%s should be hidden initially", id)
		}
	}
}

func TestMissingTarget(t *testing.T) {
	d := NewDocumentWith([]string{PageTitle})

	writes := map[string]func() error{
		"SetText":      func() error { return d.SetText("nope", "x") },
		"SetAttribute": func() error { return d.SetAttribute("nope", "content", "x") },
		"SetVisible":   func() error { return d.SetVisible("nope", true) },
		"SetHTML":      func() error { return d.SetHTML("nope", "<p>x</p>") },
	}
	for name, write := range writes {
		err := write()
		var missing *RenderTargetMissingError
		if !errors.As(err, &missing) || missing.ID != "nope" {
			t.Errorf("%s: expected RenderTargetMissingError for nope, got %v", name, err)
		}
	}
}

func TestSetHTMLMountsNestedIDs(t *testing.T) {
	d := NewDocument()
	if err := d.SetHTML(Listings, `<div class="listing" id="listing-0">a</div><div class="listing" id="listing-1">b</div>`); err != nil {
		t.Fatalf("SetHTML: %v", err)
	}
	if !d.Has("listing-0") || !d.Has("listing-1") {
		t.Fatal("nested ids not mounted")
	}

	if err := d.SetVisible("listing-1", false); err != nil {
		t.Fatalf("SetVisible: %v", err)
	}
	html, err := d.HTML(Listings)
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(html)))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, hidden := doc.Find("#listing-0").Attr("hidden"); hidden {
		t.Error("listing-0 should stay visible")
	}
	if _, hidden := doc.Find("#listing-1").Attr("hidden"); !hidden {
		t.Error("listing-1 should be hidden")
	}

	// Replacing the content unmounts the old children.
	if err := d.SetHTML(Listings, ""); err != nil {
		t.Fatalf("SetHTML: %v", err)
	}
	if d.Has("listing-0") {
		t.Error("listing-0 still mounted after clearing")
	}
}

func TestRenderEscapesAndPlacesValues(t *testing.T) {
	d := NewDocument()
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	must(d.SetText(PageTitle, `Plumbing <Directory>`))
	must(d.SetAttribute(PageDescription, "content", `Pipes & "drains"`))
	must(d.SetText(StructuredData, `{"@type": "WebPage"}`))
	must(d.SetVisible(Loading, false))
	must(d.SetVisible(Content, true))

	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "<title id=\"page-title\">Plumbing &lt;Directory&gt;</title>") {
		t.Errorf("title not escaped:\n%s", out)
	}
	if !strings.Contains(out, `{"@type": "WebPage"}`) {
		t.Errorf("structured data not emitted verbatim")
	}

	doc, err := goquery.NewDocumentFromReader(&buf)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got, _ := doc.Find("#page-description").Attr("content"); got != `Pipes & "drains"` {
		t.Errorf("description content: got %q", got)
	}
	if _, hidden := doc.Find("#loading").Attr("hidden"); !hidden {
		t.Error("loading should render hidden")
	}
	if _, hidden := doc.Find("#content").Attr("hidden"); hidden {
		t.Error("content should render visible")
	}
}

func TestTemplateCarriesEveryMountPoint(t *testing.T) {
	var buf bytes.Buffer
	if err := NewDocument().Render(&buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	doc, err := goquery.NewDocumentFromReader(&buf)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	for _, id := range MountPoints {
		if n := doc.Find("#" + id).Length(); n != 1 {
			t.Errorf("mount point %s appears %d times", id, n)
		}
	}
}
