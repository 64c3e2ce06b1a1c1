package view

import (
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

type element struct {
	text    string
	hasText bool
	html    template.HTML
	hasHTML bool
	attrs   map[string]string
	hidden  bool

	// parent is set for elements discovered inside another element's HTML;
	// their state is applied to the fragment when it is serialized.
	parent string
	dirty  bool
}

// Document is an in-memory Sink over the directory page template. Writes are
// recorded per mount point and serialized by Render.
type Document struct {
	elements map[string]*element
}

// initiallyHidden are the mount points hidden before any render.
var initiallyHidden = map[string]bool{
	Error:     true,
	Content:   true,
	Homepage:  true,
	NoResults: true,
}

// NewDocument returns a Document with every page mount point in its initial
// (Loading) state.
func NewDocument() *Document {
	return NewDocumentWith(MountPoints)
}

// NewDocumentWith returns a Document exposing only the given mount points.
func NewDocumentWith(ids []string) *Document {
	d := &Document{elements: make(map[string]*element, len(ids))}
	for _, id := range ids {
		d.elements[id] = &element{attrs: map[string]string{}, hidden: initiallyHidden[id]}
	}
	return d
}

func (d *Document) lookup(id string) (*element, error) {
	el, ok := d.elements[id]
	if !ok {
		return nil, &RenderTargetMissingError{ID: id}
	}
	return el, nil
}

func (d *Document) touch(el *element) {
	if el.parent != "" {
		el.dirty = true
	}
}

func (d *Document) SetText(id, text string) error {
	el, err := d.lookup(id)
	if err != nil {
		return err
	}
	el.text, el.hasText = text, true
	d.touch(el)
	return nil
}

func (d *Document) SetAttribute(id, name, value string) error {
	el, err := d.lookup(id)
	if err != nil {
		return err
	}
	el.attrs[name] = value
	d.touch(el)
	return nil
}

func (d *Document) SetVisible(id string, visible bool) error {
	el, err := d.lookup(id)
	if err != nil {
		return err
	}
	el.hidden = !visible
	d.touch(el)
	return nil
}

// SetHTML replaces the content of id. Elements carrying an id attribute
// inside html become addressable mount points until the next SetHTML on id.
func (d *Document) SetHTML(id string, html template.HTML) error {
	el, err := d.lookup(id)
	if err != nil {
		return err
	}

	for childID, child := range d.elements {
		if child.parent == id {
			delete(d.elements, childID)
		}
	}
	el.html, el.hasHTML = html, true

	if html == "" {
		return nil
	}
	frag, err := goquery.NewDocumentFromReader(strings.NewReader(string(html)))
	if err != nil {
		return fmt.Errorf("parsing html for %s: %w", id, err)
	}
	frag.Find("[id]").Each(func(_ int, s *goquery.Selection) {
		childID, _ := s.Attr("id")
		if _, exists := d.elements[childID]; exists || childID == "" {
			return
		}
		_, hidden := s.Attr("hidden")
		d.elements[childID] = &element{attrs: map[string]string{}, hidden: hidden, parent: id}
	})
	return nil
}

// Has reports whether id is currently mounted.
func (d *Document) Has(id string) bool {
	_, ok := d.elements[id]
	return ok
}

// Text returns the text last written to id.
func (d *Document) Text(id string) string {
	if el, ok := d.elements[id]; ok {
		return el.text
	}
	return ""
}

// Attr returns the attribute last written to id.
func (d *Document) Attr(id, name string) string {
	if el, ok := d.elements[id]; ok {
		return el.attrs[name]
	}
	return ""
}

// Visible reports whether id is mounted and not hidden.
func (d *Document) Visible(id string) bool {
	el, ok := d.elements[id]
	return ok && !el.hidden
}

// HTML returns the content of id with the recorded state of its nested
// elements applied.
func (d *Document) HTML(id string) (template.HTML, error) {
	el, ok := d.elements[id]
	if !ok {
		return "", &RenderTargetMissingError{ID: id}
	}

	var dirty []string
	for childID, child := range d.elements {
		if child.parent == id && child.dirty {
			dirty = append(dirty, childID)
		}
	}
	if len(dirty) == 0 {
		return el.html, nil
	}

	frag, err := goquery.NewDocumentFromReader(strings.NewReader(string(el.html)))
	if err != nil {
		return "", fmt.Errorf("parsing html for %s: %w", id, err)
	}
	for _, childID := range dirty {
		child := d.elements[childID]
		sel := frag.Find("[id]").FilterFunction(func(_ int, s *goquery.Selection) bool {
			v, _ := s.Attr("id")
			return v == childID
		})
		if child.hasText {
			sel.SetText(child.text)
		}
		for name, value := range child.attrs {
			sel.SetAttr(name, value)
		}
		if child.hidden {
			sel.SetAttr("hidden", "")
		} else {
			sel.RemoveAttr("hidden")
		}
	}

	out, err := frag.Find("body").Html()
	if err != nil {
		return "", fmt.Errorf("serializing html for %s: %w", id, err)
	}
	return template.HTML(out), nil
}

// Render writes the full HTML page.
func (d *Document) Render(w io.Writer) error {
	tmpl, err := pageTemplate.Clone()
	if err != nil {
		return err
	}
	tmpl.Funcs(d.funcs())
	return tmpl.Execute(w, nil)
}

func (d *Document) funcs() template.FuncMap {
	return template.FuncMap{
		"text":   d.Text,
		"attr":   d.Attr,
		"hidden": func(id string) bool { return !d.Visible(id) },
		"inner":  d.HTML,
		// Structured data is produced by json.Marshal, which escapes <, > and &.
		"json": func(id string) template.JS { return template.JS(d.Text(id)) },
	}
}
