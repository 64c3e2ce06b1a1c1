package directory

import (
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Payload is the directory document returned by the directory API (or the mock
// generator). It is treated as immutable once decoded.
type Payload struct {
	Slug          string    `json:"slug"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Listings      []Listing `json:"listings"`
	LastUpdated   Timestamp `json:"lastUpdated,omitzero"`
	TotalListings int       `json:"totalListings"`
	Config        Config    `json:"config"`
	Meta          Meta      `json:"meta"`
}

// Config holds presentation settings for a directory.
type Config struct {
	NiceName string `json:"niceName"`
}

// Meta holds page metadata for a directory.
type Meta struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Keywords    string    `json:"keywords"`
	LastUpdated Timestamp `json:"lastUpdated,omitzero"`
	LastFetched Timestamp `json:"lastFetched,omitzero"`
}

// Listing is one business record. Only Name is expected to be set; every
// other field is optional and rendered independently.
type Listing struct {
	ID           int      `json:"id"`
	Name         string   `json:"name"`
	Location     string   `json:"location,omitempty"`
	Phone        string   `json:"phone,omitempty"`
	Rating       *float64 `json:"rating,omitempty"`
	Reviews      *int     `json:"reviews,omitempty"`
	PriceRange   string   `json:"price_range,omitempty"`
	Availability string   `json:"availability,omitempty"`
	Website      string   `json:"website,omitempty"`
	Services     []string `json:"services,omitempty"`
}

// UpdatedAt returns the timestamp the footer should report, preferring the
// top-level lastUpdated over the meta fields. ok is false when none is set.
func (p *Payload) UpdatedAt() (t time.Time, ok bool) {
	switch {
	case !p.LastUpdated.IsZero():
		return p.LastUpdated.Time, true
	case !p.Meta.LastUpdated.IsZero():
		return p.Meta.LastUpdated.Time, true
	case !p.Meta.LastFetched.IsZero():
		return p.Meta.LastFetched.Time, true
	}
	return time.Time{}, false
}

// Normalize fills presentation fields an upstream payload may leave empty.
// key is used when the payload carries no slug.
func (p *Payload) Normalize(key string) {
	if p.Slug == "" {
		p.Slug = key
	}
	if p.Config.NiceName == "" {
		p.Config.NiceName = Humanize(p.Slug)
	}
	if p.Title == "" {
		p.Title = p.Config.NiceName + " Directory"
	}
	if p.Meta.Title == "" {
		p.Meta.Title = p.Title
	}
	if p.Meta.Description == "" {
		p.Meta.Description = p.Description
	}
	if p.TotalListings == 0 {
		p.TotalListings = len(p.Listings)
	}
}

// SearchText returns the lowercase concatenation of every value the listing
// carries, in field order. Absent optional fields contribute nothing.
func (l Listing) SearchText() string {
	parts := []string{strconv.Itoa(l.ID)}
	for _, s := range []string{l.Name, l.Location, l.Phone} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	if l.Rating != nil {
		parts = append(parts, strconv.FormatFloat(*l.Rating, 'f', -1, 64))
	}
	if l.Reviews != nil {
		parts = append(parts, strconv.Itoa(*l.Reviews))
	}
	for _, s := range []string{l.PriceRange, l.Availability, l.Website} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	if len(l.Services) > 0 {
		parts = append(parts, strings.Join(l.Services, ","))
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// Humanize turns a slug like "plumbing-services" into "Plumbing Services".
func Humanize(slug string) string {
	words := strings.FieldsFunc(slug, func(r rune) bool {
		return r == '-' || r == '_' || r == ' '
	})
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
