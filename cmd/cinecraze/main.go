package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/MovieAddict88/M3U-fix/internal/catalog"
	"github.com/MovieAddict88/M3U-fix/internal/config"
	"github.com/MovieAddict88/M3U-fix/internal/domain"
	"github.com/MovieAddict88/M3U-fix/internal/log"
	"github.com/MovieAddict88/M3U-fix/internal/manifest"
	"github.com/MovieAddict88/M3U-fix/internal/store"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	var (
		showVersion bool
		refresh     bool
		check       bool
		clearCache  bool
		facets      bool
		count       bool
		search      string
		category    string
		genre       string
		country     string
		year        string
		page        int
		top         int
	)

	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.BoolVar(&refresh, "refresh", false, "force a full catalog refresh")
	flag.BoolVar(&check, "check", false, "check for catalog updates without downloading")
	flag.BoolVar(&clearCache, "clear-cache", false, "delete the local catalog cache")
	flag.BoolVar(&facets, "facets", false, "list available genres, countries and years")
	flag.BoolVar(&count, "count", false, "print the number of cached entries")
	flag.StringVar(&search, "search", "", "fuzzy title search")
	flag.StringVar(&category, "category", "", "filter by main category")
	flag.StringVar(&genre, "genre", "", "filter by genre")
	flag.StringVar(&country, "country", "", "filter by country")
	flag.StringVar(&year, "year", "", "filter by release year")
	flag.IntVar(&page, "page", 0, "page number (zero-based)")
	flag.IntVar(&top, "top", 0, "show the N top rated entries")
	flag.Parse()

	if showVersion {
		fmt.Printf("cinecraze %s\n", Version)
		return
	}

	if err := run(options{
		refresh:    refresh,
		check:      check,
		clearCache: clearCache,
		facets:     facets,
		count:      count,
		search:     search,
		category:   category,
		genre:      genre,
		country:    country,
		year:       year,
		page:       page,
		top:        top,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	refresh    bool
	check      bool
	clearCache bool
	facets     bool
	count      bool
	search     string
	category   string
	genre      string
	country    string
	year       string
	page       int
	top        int
}

func run(opts options) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger, err := log.Setup(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.Null()
	}
	slog.SetDefault(logger)

	logger.Info("starting cinecraze", "version", Version)

	if opts.clearCache {
		if err := config.ClearCache(cfg); err != nil {
			return err
		}
		fmt.Println("Cache cleared.")
		return nil
	}

	// Check if configured
	if !cfg.IsConfigured() {
		return runSetupFlow(cfg, logger)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client := manifest.NewClient(cfg.Catalog.ManifestURL, logger)

	st, err := store.Open(cfg.Catalog.CacheDir)
	if err != nil {
		return fmt.Errorf("failed to open catalog store: %w", err)
	}
	defer st.Close()

	repo := catalog.NewRepository(client, st, logger)

	if opts.check {
		return runCheck(ctx, repo)
	}

	if opts.refresh {
		fmt.Println("Refreshing catalog...")
		if err := repo.ForceRefresh(ctx); err != nil {
			return fmt.Errorf("refresh failed: %w", err)
		}
	} else if err := repo.EnsureDataAvailable(ctx); err != nil {
		// No network is survivable as long as a cached catalog exists.
		if !repo.HasValidCache() {
			return fmt.Errorf("no cached catalog and sync failed: %w", err)
		}
		logger.Warn("sync failed, serving cached catalog", "error", err)
		fmt.Println("Note: could not reach the catalog server, showing cached data.")
	}

	switch {
	case opts.count:
		n, err := repo.Count()
		if err != nil {
			return err
		}
		fmt.Printf("%d entries cached\n", n)
		return nil

	case opts.facets:
		return printFacets(repo)

	case opts.top > 0:
		entries, err := repo.TopRated(opts.top)
		if err != nil {
			return err
		}
		fmt.Printf("Top %d by rating:\n", len(entries))
		printEntries(entries)
		return nil

	case opts.search != "":
		result, err := repo.SearchPage(opts.search, opts.page, cfg.Catalog.PageSize)
		if err != nil {
			return err
		}
		printPage(result, opts.page)
		return nil

	case opts.genre != "" || opts.country != "" || opts.year != "":
		result, err := repo.FilteredPage(opts.genre, opts.country, opts.year, opts.page, cfg.Catalog.PageSize)
		if err != nil {
			return err
		}
		printPage(result, opts.page)
		return nil

	case opts.category != "":
		result, err := repo.PageByCategory(opts.category, opts.page, cfg.Catalog.PageSize)
		if err != nil {
			return err
		}
		printPage(result, opts.page)
		return nil

	default:
		result, err := repo.Page(opts.page, cfg.Catalog.PageSize)
		if err != nil {
			return err
		}
		printPage(result, opts.page)
		return nil
	}
}

// runCheck reports whether the remote catalog is newer than the cache
// without downloading anything.
func runCheck(ctx context.Context, repo *catalog.Repository) error {
	version, updated, err := repo.CheckForUpdates(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrServerUnreachable) {
			return fmt.Errorf("could not reach the catalog server: %w", err)
		}
		return err
	}
	if updated {
		fmt.Printf("Update available: version %d (%d playlists). Run with -refresh to download.\n",
			version.Version, len(version.Playlists))
	} else {
		fmt.Println("Catalog is up to date.")
	}
	return nil
}

func printPage(p domain.Page, page int) {
	if p.TotalCount == 0 {
		fmt.Println("No entries found.")
		return
	}
	fmt.Printf("Page %d: %d of %d entries\n", page, len(p.Entries), p.TotalCount)
	printEntries(p.Entries)
	if p.HasMore {
		fmt.Printf("More available: rerun with -page %d\n", page+1)
	}
}

func printEntries(entries []domain.Entry) {
	for _, e := range entries {
		year := ""
		if e.Year > 0 {
			year = fmt.Sprintf(" (%d)", e.Year)
		}
		fmt.Printf("  [%d] %s%s - %s", e.ID, e.Title, year, e.MainCategory)
		if e.Rating > 0 {
			fmt.Printf(" ★%.1f", e.Rating)
		}
		fmt.Printf(" - %d server(s)\n", len(e.Servers))
	}
}

func printFacets(repo *catalog.Repository) error {
	genres, err := repo.UniqueGenres()
	if err != nil {
		return err
	}
	countries, err := repo.UniqueCountries()
	if err != nil {
		return err
	}
	years, err := repo.UniqueYears()
	if err != nil {
		return err
	}
	fmt.Printf("Genres:    %s\n", strings.Join(genres, ", "))
	fmt.Printf("Countries: %s\n", strings.Join(countries, ", "))
	fmt.Printf("Years:     %s\n", strings.Join(years, ", "))
	return nil
}

// runSetupFlow handles the initial setup when no manifest URL is configured
func runSetupFlow(cfg *config.Config, logger *slog.Logger) error {
	fmt.Println()
	fmt.Println("Welcome to CineCraze!")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)

	// Loop until we get a reachable manifest URL
	for {
		fmt.Print("Enter the catalog base URL (e.g., https://example.github.io/catalog): ")
		input, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		url := strings.TrimSpace(input)

		if url == "" {
			fmt.Println("URL cannot be empty. Please try again.")
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		client := manifest.NewClient(url, logger)
		version, err := client.Version(ctx)
		cancel()
		if err != nil {
			fmt.Printf("✗ Could not fetch the catalog manifest: %v\n", err)
			fmt.Println("Please check the URL and try again.")
			fmt.Println()
			continue
		}

		fmt.Printf("✓ Found catalog version %d with %d playlist(s)\n", version.Version, len(version.Playlists))
		cfg.Catalog.ManifestURL = url
		break
	}

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println("✓ Configuration saved!")
	fmt.Println()
	fmt.Println("Run cinecraze again to browse the catalog.")

	return nil
}
