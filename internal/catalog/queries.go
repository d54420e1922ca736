package catalog

import (
	"github.com/MovieAddict88/M3U-fix/internal/domain"
)

// Page returns one page of the full catalog.
func (r *Repository) Page(page, pageSize int) (domain.Page, error) {
	limit, offset := pageWindow(page, &pageSize)
	entries, total, err := r.store.EntriesPage(limit, offset)
	return r.page(entries, total, offset, pageSize, err)
}

// PageByCategory returns one page of entries in a main category.
func (r *Repository) PageByCategory(category string, page, pageSize int) (domain.Page, error) {
	limit, offset := pageWindow(page, &pageSize)
	entries, total, err := r.store.EntriesByCategory(category, limit, offset)
	return r.page(entries, total, offset, pageSize, err)
}

// SearchPage returns one page of entries whose title matches the query.
func (r *Repository) SearchPage(query string, page, pageSize int) (domain.Page, error) {
	limit, offset := pageWindow(page, &pageSize)
	entries, total, err := r.store.SearchByTitle(query, limit, offset)
	return r.page(entries, total, offset, pageSize, err)
}

// FilteredPage returns one page of entries matching the genre, country, and
// year filters. Empty or blank filter values are normalized to "no filter".
func (r *Repository) FilteredPage(genre, country, year string, page, pageSize int) (domain.Page, error) {
	limit, offset := pageWindow(page, &pageSize)
	entries, total, err := r.store.EntriesFiltered(genre, country, year, limit, offset)
	return r.page(entries, total, offset, pageSize, err)
}

// UniqueGenres returns the distinct genre facet values.
func (r *Repository) UniqueGenres() ([]string, error) { return r.store.UniqueGenres() }

// UniqueCountries returns the distinct country facet values.
func (r *Repository) UniqueCountries() ([]string, error) { return r.store.UniqueCountries() }

// UniqueYears returns the distinct year facet values.
func (r *Repository) UniqueYears() ([]string, error) { return r.store.UniqueYears() }

// TopRated returns the n highest-rated entries.
func (r *Repository) TopRated(n int) ([]domain.Entry, error) { return r.store.TopRated(n) }

// Count returns the total number of cached entries.
func (r *Repository) Count() (int, error) { return r.store.Count() }

// EntriesByCategory returns every entry in a main category.
func (r *Repository) EntriesByCategory(category string) ([]domain.Entry, error) {
	entries, _, err := r.store.EntriesByCategory(category, -1, 0)
	return entries, err
}

// SearchByTitle returns every entry whose title matches the query.
func (r *Repository) SearchByTitle(query string) ([]domain.Entry, error) {
	entries, _, err := r.store.SearchByTitle(query, -1, 0)
	return entries, err
}

// AllEntries returns the entire cached catalog.
func (r *Repository) AllEntries() ([]domain.Entry, error) {
	entries, _, err := r.store.EntriesPage(-1, 0)
	return entries, err
}

// pageWindow normalizes the page size and computes the scan window.
func pageWindow(page int, pageSize *int) (limit, offset int) {
	if *pageSize <= 0 {
		*pageSize = domain.DefaultPageSize
	}
	if page < 0 {
		page = 0
	}
	return *pageSize, page * *pageSize
}

// page assembles a Page result, logging read failures at the boundary.
func (r *Repository) page(entries []domain.Entry, total, offset, pageSize int, err error) (domain.Page, error) {
	if err != nil {
		r.logger.Error("failed to load page", "error", err)
		return domain.Page{}, err
	}
	return domain.Page{
		Entries:    entries,
		HasMore:    offset+pageSize < total,
		TotalCount: total,
	}, nil
}
