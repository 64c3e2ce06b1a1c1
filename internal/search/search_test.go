package search

import (
	"html/template"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/ziadkadry99/dirpage/internal/directory"
	"github.com/ziadkadry99/dirpage/internal/view"
)

func sampleListings() []directory.Listing {
	return []directory.Listing{
		{ID: 1, Name: "Joe's Plumbing", Location: "Downtown", Services: []string{"Drains", "Pipes"}},
		{ID: 2, Name: "Bright Electric", Location: "Suburb", Services: []string{"Wiring"}},
		{ID: 3, Name: "City Heating", Location: "Downtown"},
	}
}

func TestFilter(t *testing.T) {
	ix := NewIndex(sampleListings())

	tests := []struct {
		term      string
		want      []int
		noResults bool
		count     string
	}{
		{"", []int{0, 1, 2}, false, "Showing all 3 listings"},
		{"   ", []int{0, 1, 2}, false, "Showing all 3 listings"},
		{"plum", []int{0}, false, "Showing 1 of 3 listings"},
		{"DOWNTOWN", []int{0, 2}, false, "Showing 2 of 3 listings"},
		{"wiring", []int{1}, false, "Showing 1 of 3 listings"},
		{"zzz", []int{}, true, "Showing 0 of 3 listings"},
	}
	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			r := ix.Filter(tt.term)
			if diff := cmp.Diff(tt.want, r.Indices()); diff != "" {
				t.Errorf("visible (-want +got):\n%s", diff)
			}
			if r.NoResults != tt.noResults {
				t.Errorf("NoResults: got %v, want %v", r.NoResults, tt.noResults)
			}
			if got := r.CountText(); got != tt.count {
				t.Errorf("CountText: got %q, want %q", got, tt.count)
			}
		})
	}
}

func TestFilterEmptyIndex(t *testing.T) {
	r := NewIndex(nil).Filter("")
	if r.Total != 0 || r.Showing != 0 || r.NoResults {
		t.Errorf("unexpected result for empty index: %+v", r)
	}
}

func TestApply(t *testing.T) {
	listings := sampleListings()
	doc := view.NewDocument()
	var cards string
	for i := range listings {
		cards += `<div class="listing" id="` + view.CardID(i) + `"></div>`
	}
	if err := doc.SetHTML(view.Listings, template.HTML(cards)); err != nil {
		t.Fatalf("SetHTML: %v", err)
	}

	ix := NewIndex(listings)
	if err := Apply(doc, ix.Filter("heating")); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if doc.Visible(view.CardID(0)) || doc.Visible(view.CardID(1)) || !doc.Visible(view.CardID(2)) {
		t.Error("only card 2 should be visible")
	}
	if got := doc.Text(view.ResultsCount); got != "Showing 1 of 3 listings" {
		t.Errorf("results count: got %q", got)
	}
	if doc.Visible(view.NoResults) {
		t.Error("no-results should be hidden")
	}

	if err := Apply(doc, ix.Filter("nothing matches")); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !doc.Visible(view.NoResults) {
		t.Error("no-results should be visible")
	}
	if got := doc.Attr(view.Listings, "data-state"); got != "dimmed" {
		t.Errorf("listings state: got %q, want dimmed", got)
	}
	for i := range listings {
		if !doc.Has(view.CardID(i)) {
			t.Errorf("card %d unmounted on empty match", i)
		}
	}
}

func TestApplyMissingTarget(t *testing.T) {
	doc := view.NewDocumentWith([]string{view.ResultsCount})
	err := Apply(doc, NewIndex(sampleListings()).Filter(""))
	if _, ok := err.(*view.RenderTargetMissingError); !ok {
		t.Fatalf("expected RenderTargetMissingError, got %v", err)
	}
}

// fakeScheduler records scheduled functions and fires them on demand.
type fakeScheduler struct {
	mu    sync.Mutex
	fns   []func()
	stops int
}

type fakeTimer struct {
	s *fakeScheduler
}

func (t fakeTimer) Stop() bool {
	t.s.mu.Lock()
	t.s.stops++
	t.s.mu.Unlock()
	return true
}

func (s *fakeScheduler) schedule(_ time.Duration, fn func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fns = append(s.fns, fn)
	return fakeTimer{s: s}
}

func (s *fakeScheduler) fireAll() {
	s.mu.Lock()
	fns := s.fns
	s.fns = nil
	s.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func TestDebouncerRunsOnlyLastTrigger(t *testing.T) {
	s := &fakeScheduler{}
	d := newDebouncer(time.Second, s.schedule)

	var ran []string
	for _, term := range []string{"p", "pl", "plu", "plum"} {
		term := term
		d.Trigger(func() { ran = append(ran, term) })
	}
	// Fire every scheduled callback, including superseded ones whose timers
	// could not be stopped in time.
	s.fireAll()

	if diff := cmp.Diff([]string{"plum"}, ran); diff != "" {
		t.Errorf("runs (-want +got):\n%s", diff)
	}
	if s.stops != 3 {
		t.Errorf("stops: got %d, want 3", s.stops)
	}
}

func TestDebouncerStop(t *testing.T) {
	s := &fakeScheduler{}
	d := newDebouncer(time.Second, s.schedule)

	ran := false
	d.Trigger(func() { ran = true })
	d.Stop()
	d.Trigger(func() { ran = true })
	s.fireAll()

	if ran {
		t.Error("no run expected after Stop")
	}
}

func TestDebouncerRealTimer(t *testing.T) {
	defer goleak.VerifyNone(t)

	d := NewDebouncer(10 * time.Millisecond)
	done := make(chan string, 4)
	for _, term := range []string{"a", "ab", "abc"} {
		term := term
		d.Trigger(func() { done <- term })
	}

	select {
	case got := <-done:
		if got != "abc" {
			t.Errorf("ran %q, want abc", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("debounced function never ran")
	}
	d.Stop()

	select {
	case got := <-done:
		t.Errorf("unexpected extra run %q", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestNewDebouncerDefaultWindow(t *testing.T) {
	if d := NewDebouncer(0); d.window != DefaultDebounce {
		t.Errorf("window: got %v, want %v", d.window, DefaultDebounce)
	}
}
