package manifest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/MovieAddict88/M3U-fix/internal/domain"
	"github.com/goccy/go-json"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "Mozilla/5.0 (Android) CineCraze/1.0"
	versionPath    = "playlists.json"
)

// Client fetches the version descriptor and playlist documents from the
// remote manifest endpoint. Implements domain.ManifestClient.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new manifest API client
func NewClient(baseURL string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
}

// Version fetches the current playlist version descriptor
func (c *Client) Version(ctx context.Context) (domain.PlaylistVersion, error) {
	var version domain.PlaylistVersion
	if err := c.get(ctx, c.baseURL+"/"+versionPath, &version); err != nil {
		return domain.PlaylistVersion{}, err
	}
	c.logger.Debug("fetched playlist version", "version", version.Version, "playlists", len(version.Playlists))
	return version, nil
}

// Playlist fetches a single playlist document by absolute URL
func (c *Client) Playlist(ctx context.Context, url string) (domain.Playlist, error) {
	var playlist domain.Playlist
	if err := c.get(ctx, url, &playlist); err != nil {
		return domain.Playlist{}, err
	}
	c.logger.Debug("fetched playlist", "url", url, "categories", len(playlist.Categories))
	return playlist, nil
}

// get performs a GET request and decodes the JSON body into dest
func (c *Client) get(ctx context.Context, url string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug("manifest request", "url", url)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("manifest request failed", "url", url, "error", err)
		return fmt.Errorf("%w: %v", domain.ErrServerUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("manifest request error", "url", url, "status", resp.StatusCode)
		return fmt.Errorf("%w: unexpected status %d", domain.ErrServerUnreachable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrServerUnreachable, err)
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrBadManifest, err)
	}

	return nil
}
