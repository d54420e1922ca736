package catalog

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/MovieAddict88/M3U-fix/internal/domain"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// Repository orchestrates manifest client + store operations: versioned
// sync, atomic catalog replacement, and the paged read API.
type Repository struct {
	client domain.ManifestClient
	store  domain.CatalogStore
	logger *slog.Logger
	now    func() time.Time
}

// NewRepository creates a new catalog repository.
func NewRepository(client domain.ManifestClient, store domain.CatalogStore, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		client: client,
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// CheckForUpdates fetches the remote version descriptor and compares it to
// the locally stored version. The second return is true iff the remote
// version is strictly newer.
func (r *Repository) CheckForUpdates(ctx context.Context) (domain.PlaylistVersion, bool, error) {
	remote, err := r.client.Version(ctx)
	if err != nil {
		r.logger.Error("failed to fetch playlist version", "error", err)
		return domain.PlaylistVersion{}, false, err
	}

	local := r.localVersion()
	if remote.Version > local {
		r.logger.Info("update available", "remote", remote.Version, "local", local)
		return remote, true, nil
	}

	r.logger.Debug("no new version found, using cached data", "version", local)
	return remote, false, nil
}

// DownloadPlaylists fetches every playlist document in the version
// descriptor concurrently, merges the results, and atomically replaces the
// local catalog. Individual fetch failures are tolerated as long as at
// least one document succeeds; only a total failure is an error. Returns
// the number of entries stored.
func (r *Repository) DownloadPlaylists(ctx context.Context, version domain.PlaylistVersion) (int, error) {
	playlists := make([]domain.Playlist, len(version.Playlists))
	fetched := make([]bool, len(version.Playlists))

	var mu sync.Mutex
	failed := 0

	g, gctx := errgroup.WithContext(ctx)
	for i, url := range version.Playlists {
		i, url := i, url
		g.Go(func() error {
			playlist, err := r.client.Playlist(gctx, url)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				r.logger.Error("failed to fetch playlist", "url", url, "error", err)
				failed++
				return nil // partial failure is tolerated
			}
			playlists[i] = playlist
			fetched[i] = true
			return nil
		})
	}
	// Fetch failures are swallowed above, so Wait never returns an error.
	_ = g.Wait()

	if failed == len(version.Playlists) {
		r.logger.Error("all playlist downloads failed", "count", failed)
		return 0, domain.ErrServerUnreachable
	}
	if failed > 0 {
		r.logger.Warn("some playlists failed to download, proceeding with partial data", "failed", failed)
	}

	entries := mergeEntries(playlists, fetched)

	if err := r.store.ReplaceEntries(entries, strconv.Itoa(version.Version), r.now()); err != nil {
		r.logger.Error("failed to cache playlist data", "error", err)
		return 0, err
	}

	r.logger.Info("catalog synced", "entries", len(entries), "version", version.Version)
	return len(entries), nil
}

// Sync checks for a newer remote version and downloads it if available.
// With no update pending it is a no-op: the cache is assumed fresh and
// pagination serves from it directly.
func (r *Repository) Sync(ctx context.Context) error {
	version, available, err := r.CheckForUpdates(ctx)
	if err != nil {
		return err
	}
	if !available {
		return nil
	}
	_, err = r.DownloadPlaylists(ctx, version)
	return err
}

// ForceRefresh re-runs the version check and download, for pull-to-refresh.
func (r *Repository) ForceRefresh(ctx context.Context) error {
	r.logger.Debug("force refreshing catalog")
	return r.Sync(ctx)
}

// EnsureDataAvailable makes sure a usable catalog exists locally. With a
// valid cached version it performs zero network requests; otherwise it runs
// a full sync to populate the cache.
func (r *Repository) EnsureDataAvailable(ctx context.Context) error {
	if meta, ok := r.store.Metadata(domain.CacheKeyPlaylistVersion); ok && r.cacheValid(meta.LastUpdated) {
		r.logger.Debug("cache is available and valid, ready for pagination")
		return nil
	}
	r.logger.Debug("no valid cache, fetching data to populate cache")
	return r.Sync(ctx)
}

// HasValidCache reports whether a fresh sync exists, so a caller can decide
// whether to prompt before downloading.
func (r *Repository) HasValidCache() bool {
	meta, ok := r.store.Metadata(domain.CacheKeyPlaylist)
	return ok && r.cacheValid(meta.LastUpdated)
}

// cacheValid reports whether a sync completed within the TTL.
func (r *Repository) cacheValid(lastUpdated time.Time) bool {
	return r.now().Sub(lastUpdated) < domain.CacheTTL
}

// localVersion parses the stored data version, -1 when absent or garbled.
func (r *Repository) localVersion() int {
	meta, ok := r.store.Metadata(domain.CacheKeyPlaylistVersion)
	if !ok {
		return -1
	}
	v, err := strconv.Atoi(meta.DataVersion)
	if err != nil {
		return -1
	}
	return v
}

// mergeEntries flattens the fetched playlists in manifest order, stamps
// each entry with its parent category, and keeps the first occurrence of
// every ID.
func mergeEntries(playlists []domain.Playlist, fetched []bool) []domain.Entry {
	var merged []domain.Entry
	for i, playlist := range playlists {
		if !fetched[i] {
			continue
		}
		for _, category := range playlist.Categories {
			for _, entry := range category.Entries {
				entry.MainCategory = category.MainCategory
				merged = append(merged, entry)
			}
		}
	}
	return lo.UniqBy(merged, func(e domain.Entry) int { return e.ID })
}
