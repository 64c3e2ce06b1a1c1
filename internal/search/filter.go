// Package search filters a rendered listing set by free text and debounces
// the filter against rapid input.
package search

import (
	"fmt"
	"strings"

	"github.com/RoaringBitmap/roaring"

	"github.com/ziadkadry99/dirpage/internal/directory"
	"github.com/ziadkadry99/dirpage/internal/view"
)

// Index holds the precomputed search blob of each listing, by card index.
type Index struct {
	blobs []string
}

// NewIndex builds the index for listings in render order.
func NewIndex(listings []directory.Listing) *Index {
	blobs := make([]string, len(listings))
	for i, l := range listings {
		blobs[i] = l.SearchText()
	}
	return &Index{blobs: blobs}
}

// Len returns the number of indexed listings.
func (ix *Index) Len() int { return len(ix.blobs) }

// Result is the outcome of one filter pass.
type Result struct {
	Term      string
	Visible   *roaring.Bitmap
	Showing   int
	Total     int
	NoResults bool
}

// Filter matches the trimmed, lowercased term as a substring of each blob.
// An empty term matches everything.
func (ix *Index) Filter(term string) Result {
	term = strings.ToLower(strings.TrimSpace(term))

	visible := roaring.New()
	for i, blob := range ix.blobs {
		if term == "" || strings.Contains(blob, term) {
			visible.Add(uint32(i))
		}
	}

	showing := int(visible.GetCardinality())
	return Result{
		Term:      term,
		Visible:   visible,
		Showing:   showing,
		Total:     len(ix.blobs),
		NoResults: showing == 0 && term != "",
	}
}

// Indices returns the visible card indices in ascending order.
func (r Result) Indices() []int {
	out := make([]int, 0, r.Showing)
	it := r.Visible.Iterator()
	for it.HasNext() {
		out = append(out, int(it.Next()))
	}
	return out
}

// CountText returns the results-count line for r.
func (r Result) CountText() string {
	return CountText(r.Showing, r.Total)
}

// CountText formats the results-count line.
func CountText(showing, total int) string {
	if showing == total {
		return fmt.Sprintf("Showing all %d listings", total)
	}
	return fmt.Sprintf("Showing %d of %d listings", showing, total)
}

// Apply projects r onto sink: card visibility, results count, and the
// no-results indicator. Cards stay mounted when nothing matches; the listing
// container is dimmed instead.
func Apply(sink view.Sink, r Result) error {
	for i := 0; i < r.Total; i++ {
		if err := sink.SetVisible(view.CardID(i), r.Visible.Contains(uint32(i))); err != nil {
			return err
		}
	}
	if err := sink.SetText(view.ResultsCount, r.CountText()); err != nil {
		return err
	}
	if err := sink.SetVisible(view.NoResults, r.NoResults); err != nil {
		return err
	}
	state := ""
	if r.NoResults {
		state = "dimmed"
	}
	return sink.SetAttribute(view.Listings, "data-state", state)
}
