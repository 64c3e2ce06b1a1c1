// Package api serves directory payloads from SQLite in the shape the loader
// consumes.
package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ziadkadry99/dirpage/internal/db"
	"github.com/ziadkadry99/dirpage/internal/directory"
)

// Store manages persistence of directory payloads.
type Store struct {
	db *db.DB
}

// NewStore creates a new directory store.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Put stores p under key, replacing any previous payload and its listings.
func (s *Store) Put(ctx context.Context, key string, p *directory.Payload) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO directories (slug, title, description, nice_name, meta_title, meta_description, meta_keywords,
		   last_updated, meta_last_updated, meta_last_fetched, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(slug) DO UPDATE SET
		   title = excluded.title,
		   description = excluded.description,
		   nice_name = excluded.nice_name,
		   meta_title = excluded.meta_title,
		   meta_description = excluded.meta_description,
		   meta_keywords = excluded.meta_keywords,
		   last_updated = excluded.last_updated,
		   meta_last_updated = excluded.meta_last_updated,
		   meta_last_fetched = excluded.meta_last_fetched,
		   updated_at = excluded.updated_at`,
		key, p.Title, p.Description, p.Config.NiceName, p.Meta.Title, p.Meta.Description, p.Meta.Keywords,
		nullTime(p.LastUpdated), nullTime(p.Meta.LastUpdated), nullTime(p.Meta.LastFetched), now, now,
	)
	if err != nil {
		return fmt.Errorf("upserting directory: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM listings WHERE directory_slug = ?`, key); err != nil {
		return fmt.Errorf("clearing listings: %w", err)
	}

	for i, l := range p.Listings {
		services, err := json.Marshal(l.Services)
		if err != nil {
			return fmt.Errorf("encoding services: %w", err)
		}
		if l.Services == nil {
			services = []byte("[]")
		}
		var rating sql.NullFloat64
		if l.Rating != nil {
			rating = sql.NullFloat64{Float64: *l.Rating, Valid: true}
		}
		var reviews sql.NullInt64
		if l.Reviews != nil {
			reviews = sql.NullInt64{Int64: int64(*l.Reviews), Valid: true}
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO listings (directory_slug, position, listing_id, name, location, phone, rating, reviews, price_range, availability, website, services)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			key, i, l.ID, l.Name, l.Location, l.Phone, rating, reviews, l.PriceRange, l.Availability, l.Website, string(services),
		)
		if err != nil {
			return fmt.Errorf("inserting listing %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// Get returns the payload stored under key, or nil if there is none.
func (s *Store) Get(ctx context.Context, key string) (*directory.Payload, error) {
	p := directory.Payload{Slug: key}
	var lastUpdated, metaUpdated, metaFetched sql.NullTime

	err := s.db.QueryRowContext(ctx,
		`SELECT title, description, nice_name, meta_title, meta_description, meta_keywords,
		   last_updated, meta_last_updated, meta_last_fetched
		 FROM directories WHERE slug = ?`, key,
	).Scan(&p.Title, &p.Description, &p.Config.NiceName, &p.Meta.Title, &p.Meta.Description, &p.Meta.Keywords,
		&lastUpdated, &metaUpdated, &metaFetched)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting directory: %w", err)
	}
	p.LastUpdated = fromNullTime(lastUpdated)
	p.Meta.LastUpdated = fromNullTime(metaUpdated)
	p.Meta.LastFetched = fromNullTime(metaFetched)

	rows, err := s.db.QueryContext(ctx,
		`SELECT listing_id, name, location, phone, rating, reviews, price_range, availability, website, services
		 FROM listings WHERE directory_slug = ? ORDER BY position`, key,
	)
	if err != nil {
		return nil, fmt.Errorf("listing listings: %w", err)
	}
	defer rows.Close()

	p.Listings = []directory.Listing{}
	for rows.Next() {
		var l directory.Listing
		var rating sql.NullFloat64
		var reviews sql.NullInt64
		var services string
		if err := rows.Scan(&l.ID, &l.Name, &l.Location, &l.Phone, &rating, &reviews, &l.PriceRange, &l.Availability, &l.Website, &services); err != nil {
			return nil, fmt.Errorf("scanning listing: %w", err)
		}
		if rating.Valid {
			v := rating.Float64
			l.Rating = &v
		}
		if reviews.Valid {
			v := int(reviews.Int64)
			l.Reviews = &v
		}
		if err := json.Unmarshal([]byte(services), &l.Services); err != nil {
			return nil, fmt.Errorf("decoding services: %w", err)
		}
		if len(l.Services) == 0 {
			l.Services = nil
		}
		p.Listings = append(p.Listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating listings: %w", err)
	}

	p.TotalListings = len(p.Listings)
	return &p, nil
}

// Keys returns every stored directory key in alphabetical order.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT slug FROM directories ORDER BY slug`)
	if err != nil {
		return nil, fmt.Errorf("listing directories: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scanning directory: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Delete removes the payload stored under key. It reports whether one existed.
func (s *Store) Delete(ctx context.Context, key string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM directories WHERE slug = ?`, key)
	if err != nil {
		return false, fmt.Errorf("deleting directory: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func nullTime(t directory.Timestamp) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func fromNullTime(t sql.NullTime) directory.Timestamp {
	if !t.Valid {
		return directory.Timestamp{}
	}
	return directory.NewTimestamp(t.Time.UTC())
}
