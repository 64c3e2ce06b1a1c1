// Package view defines the mount-point sink the renderer writes to and the
// Document sink that turns those writes into an HTML page.
package view

import (
	"fmt"
	"html/template"
	"strconv"
)

// Mount point ids of the directory page.
const (
	Loading         = "loading"
	Error           = "error"
	ErrorMessage    = "error-message"
	Content         = "content"
	Homepage        = "homepage"
	PageTitle       = "page-title"
	PageDescription = "page-description"
	PageKeywords    = "page-keywords"
	OGTitle         = "og-title"
	OGDescription   = "og-description"
	OGURL           = "og-url"
	StructuredData  = "structured-data"
	DirectoryTitle  = "directory-title"
	DirectoryDesc   = "directory-description"
	DirectoryStats  = "directory-stats"
	DirectoryAbout  = "directory-about"
	Listings        = "listings"
	Search          = "search"
	ResultsCount    = "results-count"
	NoResults       = "no-results"
	FooterUpdated   = "footer-updated"
)

// MountPoints lists every mount point the page template provides.
var MountPoints = []string{
	Loading, Error, ErrorMessage, Content, Homepage,
	PageTitle, PageDescription, PageKeywords,
	OGTitle, OGDescription, OGURL, StructuredData,
	DirectoryTitle, DirectoryDesc, DirectoryStats, DirectoryAbout,
	Listings, Search, ResultsCount, NoResults, FooterUpdated,
}

// CardID returns the mount point id of the listing card at index i.
func CardID(i int) string {
	return "listing-" + strconv.Itoa(i)
}

// Sink is the capability set render logic uses to update a page. Every
// method fails with *RenderTargetMissingError when id is not mounted.
type Sink interface {
	SetText(id, text string) error
	SetAttribute(id, name, value string) error
	SetVisible(id string, visible bool) error
	SetHTML(id string, html template.HTML) error
}

// RenderTargetMissingError reports a write to a mount point the page does
// not have. It indicates an integration defect, not a data problem.
type RenderTargetMissingError struct {
	ID string
}

func (e *RenderTargetMissingError) Error() string {
	return fmt.Sprintf("render target %q not found", e.ID)
}
