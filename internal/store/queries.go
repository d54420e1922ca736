package store

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/MovieAddict88/M3U-fix/internal/domain"
	"github.com/lithammer/fuzzysearch/fuzzy"
	bolt "go.etcd.io/bbolt"
)

// EntriesPage returns one page of the full catalog in ID order.
func (s *CatalogStore) EntriesPage(limit, offset int) ([]domain.Entry, int, error) {
	return s.pageScan(func(domain.Entry) bool { return true }, limit, offset)
}

// EntriesByCategory returns one page of entries whose main category matches.
func (s *CatalogStore) EntriesByCategory(category string, limit, offset int) ([]domain.Entry, int, error) {
	return s.pageScan(func(e domain.Entry) bool {
		return strings.EqualFold(e.MainCategory, category)
	}, limit, offset)
}

// SearchByTitle returns one page of entries whose title fuzzily matches the
// query (normalized, case-folded). An empty query matches everything.
func (s *CatalogStore) SearchByTitle(query string, limit, offset int) ([]domain.Entry, int, error) {
	query = strings.TrimSpace(query)
	return s.pageScan(func(e domain.Entry) bool {
		if query == "" {
			return true
		}
		return fuzzy.MatchNormalizedFold(query, e.Title)
	}, limit, offset)
}

// EntriesFiltered returns one page of entries matching the given genre,
// country, and year. Empty filter values mean "no filter" on that column.
func (s *CatalogStore) EntriesFiltered(genre, country, year string, limit, offset int) ([]domain.Entry, int, error) {
	return s.pageScan(func(e domain.Entry) bool {
		if genre != "" && !strings.EqualFold(e.Genre, genre) {
			return false
		}
		if country != "" && !strings.EqualFold(e.Country, country) {
			return false
		}
		if year != "" && strconv.Itoa(e.Year) != year {
			return false
		}
		return true
	}, limit, offset)
}

// UniqueGenres returns the distinct genre facet values, sorted.
func (s *CatalogStore) UniqueGenres() ([]string, error) {
	return s.distinct(func(e domain.Entry) string { return e.Genre })
}

// UniqueCountries returns the distinct country facet values, sorted.
func (s *CatalogStore) UniqueCountries() ([]string, error) {
	return s.distinct(func(e domain.Entry) string { return e.Country })
}

// UniqueYears returns the distinct year facet values, sorted.
func (s *CatalogStore) UniqueYears() ([]string, error) {
	return s.distinct(func(e domain.Entry) string { return strconv.Itoa(e.Year) })
}

// TopRated returns the n highest-rated entries, best first.
func (s *CatalogStore) TopRated(n int) ([]domain.Entry, error) {
	all, _, err := s.pageScan(func(domain.Entry) bool { return true }, -1, 0)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Rating > all[j].Rating
	})

	if n > 0 && n < len(all) {
		all = all[:n]
	}
	return all, nil
}

// pageScan walks the entries bucket applying filter, returning the window
// [offset, offset+limit) of matches plus the total match count. A negative
// limit returns all matches.
func (s *CatalogStore) pageScan(filter func(domain.Entry) bool, limit, offset int) ([]domain.Entry, int, error) {
	var (
		entries []domain.Entry
		total   int
	)

	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketEntries).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			entry, err := unmarshalEntry(v)
			if err != nil {
				return err
			}
			if !filter(entry) {
				continue
			}
			if total >= offset && (limit < 0 || len(entries) < limit) {
				entries = append(entries, entry)
			}
			total++
		}
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", domain.ErrCache, err)
	}

	return entries, total, nil
}

// distinct collects the distinct projection values across all entries,
// dropping "absent" sentinels, sorted ascending.
func (s *CatalogStore) distinct(project func(domain.Entry) string) ([]string, error) {
	seen := make(map[string]struct{})

	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketEntries).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			entry, err := unmarshalEntry(v)
			if err != nil {
				return err
			}
			value := strings.TrimSpace(project(entry))
			if !domain.FacetValid(value) {
				continue
			}
			seen[value] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCache, err)
	}

	values := make([]string, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	sort.Strings(values)
	return values, nil
}
