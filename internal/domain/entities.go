package domain

import (
	"strings"
	"time"
)

// PlaylistVersion is the remote manifest descriptor: a monotonically
// increasing version number plus the playlist document URLs that make up
// the catalog at that version. Immutable once fetched.
type PlaylistVersion struct {
	Version   int      `json:"version"`
	Playlists []string `json:"playlists"`
}

// Playlist is one fetched playlist document.
type Playlist struct {
	Categories []Category `json:"categories"`
}

// Category groups entries under a top-level section ("Movies", "Live TV", ...).
type Category struct {
	MainCategory string  `json:"mainCategory"`
	Entries      []Entry `json:"entries"`
}

// Entry is one playable catalog item. Identity is ID; duplicates across
// playlist documents are collapsed to the first occurrence during sync.
type Entry struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	SubCategory string   `json:"subCategory"`
	Genre       string   `json:"genre"`
	Country     string   `json:"country"`
	Year        int      `json:"year"`
	Rating      float64  `json:"rating"`
	Description string   `json:"description"`
	Poster      string   `json:"poster"`
	Duration    string   `json:"duration"`
	Servers     []Server `json:"servers"`

	// MainCategory is stamped from the parent Category during merge.
	// It is not part of the wire format.
	MainCategory string `json:"-"`
}

// Server is an alternate playback source for an Entry. The list order is
// caller-supplied and preserved; a server's index is its array position.
type Server struct {
	Name         string `json:"name"`
	URL          string `json:"url"`
	License      string `json:"license"`
	DRMProtected bool   `json:"isDrmProtected"`
}

// CacheMetadata is one row of the cache bookkeeping table, keyed by a
// logical cache key.
type CacheMetadata struct {
	Key         string    `json:"key"`
	LastUpdated time.Time `json:"lastUpdated"`
	DataVersion string    `json:"dataVersion"`
}

// Page is one page of a paginated catalog read.
type Page struct {
	Entries    []Entry
	HasMore    bool
	TotalCount int
}

// PlaybackState is the transient state threaded across a playback handoff:
// enough for the receiving screen to resume where the sender left off.
type PlaybackState struct {
	URL           string
	Position      time.Duration
	Playing       bool
	ServerIndex   int
	DRMRobustness string
	Servers       []Server
}

// Cache bookkeeping keys.
const (
	CacheKeyPlaylist        = "playlist_data"
	CacheKeyPlaylistVersion = "playlist_version"
)

// CacheTTL is how long a completed sync stays valid.
const CacheTTL = 24 * time.Hour

// DefaultPageSize is the page size used when a caller passes 0.
const DefaultPageSize = 20

// FacetValid reports whether a projected facet value is a real value rather
// than an upstream "absent" sentinel ("", "null", "0"). Heterogeneous
// playlist sources emit all three for missing data.
func FacetValid(v string) bool {
	v = strings.TrimSpace(v)
	if v == "" || v == "0" {
		return false
	}
	return !strings.EqualFold(v, "null")
}
