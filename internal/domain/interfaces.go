package domain

import (
	"context"
	"time"
)

// ManifestClient provides network access to the remote catalog manifest.
type ManifestClient interface {
	// Version fetches the current version descriptor (playlists.json).
	Version(ctx context.Context) (PlaylistVersion, error)

	// Playlist fetches a single playlist document by absolute URL.
	Playlist(ctx context.Context, url string) (Playlist, error)
}

// CatalogStore handles the persistent local catalog (bbolt).
// Entries are bulk-replaced on sync, never individually mutated.
type CatalogStore interface {
	// ReplaceEntries atomically swaps the full entry set and upserts the
	// version metadata. Readers never observe the store mid-replacement.
	ReplaceEntries(entries []Entry, version string, now time.Time) error

	// Metadata returns the bookkeeping row for a logical cache key.
	Metadata(key string) (CacheMetadata, bool)

	// === Paged reads (each returns entries plus the filter's total count) ===
	EntriesPage(limit, offset int) ([]Entry, int, error)
	EntriesByCategory(category string, limit, offset int) ([]Entry, int, error)
	SearchByTitle(query string, limit, offset int) ([]Entry, int, error)
	EntriesFiltered(genre, country, year string, limit, offset int) ([]Entry, int, error)

	// === Facets and rankings ===
	UniqueGenres() ([]string, error)
	UniqueCountries() ([]string, error)
	UniqueYears() ([]string, error)
	TopRated(n int) ([]Entry, error)

	// Count returns the total number of cached entries.
	Count() (int, error)

	Close() error
}
