package catalog

import (
	"sort"
	"strings"

	"github.com/Skotchmaster/storefront/internal/models"
)

const (
	SortName      = "name"
	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
	SortRating    = "rating"
	SortNewest    = "newest"

	AllCategories = "all"
)

type Filter struct {
	Search   string
	Category string
	Sort     string
}

// Browse returns the products matching f in the requested order. Unknown
// sort keys fall back to name order.
func (s *Store) Browse(f Filter) []models.Product {
	term := strings.ToLower(strings.TrimSpace(f.Search))
	category := strings.TrimSpace(f.Category)
	if category == AllCategories {
		category = ""
	}

	s.mu.Lock()
	out := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		if term != "" &&
			!strings.Contains(strings.ToLower(p.Name), term) &&
			!strings.Contains(strings.ToLower(p.Description), term) {
			continue
		}
		if category != "" && p.Category != category {
			continue
		}
		out = append(out, p.Clone())
	}
	s.mu.Unlock()

	sort.SliceStable(out, less(out, f.Sort))
	return out
}

func less(ps []models.Product, key string) func(i, j int) bool {
	switch key {
	case SortPriceLow:
		return func(i, j int) bool { return ps[i].Price < ps[j].Price }
	case SortPriceHigh:
		return func(i, j int) bool { return ps[i].Price > ps[j].Price }
	case SortRating:
		return func(i, j int) bool { return ps[i].Rating > ps[j].Rating }
	case SortNewest:
		// createdAt is YYYY-MM-DD, so string order is date order.
		return func(i, j int) bool { return ps[i].CreatedAt > ps[j].CreatedAt }
	default:
		return func(i, j int) bool {
			a, b := strings.ToLower(ps[i].Name), strings.ToLower(ps[j].Name)
			if a != b {
				return a < b
			}
			return ps[i].Name < ps[j].Name
		}
	}
}
