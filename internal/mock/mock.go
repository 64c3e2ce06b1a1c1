// Package mock builds the fixture directory served when the directory API is
// unavailable or misbehaving.
package mock

import (
	"fmt"
	"strings"
	"time"

	"github.com/ziadkadry99/dirpage/internal/directory"
)

func ptr[T any](v T) *T { return &v }

// fixtureListings returns a fresh copy of the fixture listing set.
func fixtureListings() []directory.Listing {
	return []directory.Listing{
		{ID: 1, Name: "Sample Business 1", Location: "Local Area", Phone: "(555) 123-4567", Rating: ptr(4.5), Reviews: ptr(23)},
		{ID: 2, Name: "Sample Business 2", Location: "Nearby", Phone: "(555) 987-6543", Rating: ptr(4.2), Reviews: ptr(15)},
		{ID: 3, Name: "Sample Business 3", Location: "Downtown", Phone: "(555) 456-7890", Rating: ptr(4.8), Reviews: ptr(67)},
		{ID: 4, Name: "Sample Business 4", Location: "Suburb", Phone: "(555) 321-0987", Rating: ptr(4.1), Reviews: ptr(12)},
		{ID: 5, Name: "Sample Business 5", Location: "City Center", Phone: "(555) 654-3210", Rating: ptr(4.6), Reviews: ptr(34)},
	}
}

// For returns the fixture payload for key, stamped with now. The result is
// deterministic for a given key and now.
func For(key string, now time.Time) *directory.Payload {
	listings := fixtureListings()
	niceName := directory.Humanize(key)
	spaced := strings.ReplaceAll(key, "-", " ")
	title := niceName + " Directory"
	description := fmt.Sprintf("Find and compare the best %s in your local area.", spaced)

	return &directory.Payload{
		Slug:          key,
		Title:         title,
		Description:   description,
		Listings:      listings,
		LastUpdated:   directory.NewTimestamp(now.UTC()),
		TotalListings: len(listings),
		Config:        directory.Config{NiceName: niceName},
		Meta: directory.Meta{
			Title:       title,
			Description: description,
			Keywords:    key + ", local services, directory",
		},
	}
}
