package domain

import (
	"fmt"
	"strings"
)

// Category is an independently cacheable slice of game or news data.
type Category string

// Available categories.
const (
	CategoryPopular          Category = "popular"
	CategoryRecentlyReleased Category = "recently-released"
	CategoryComingSoon       Category = "coming-soon"
	CategoryMostAnticipated  Category = "most-anticipated"
	CategorySearch           Category = "search"
	CategoryNews             Category = "news"
)

// GameCategories lists the browsable game categories (search excluded).
var GameCategories = []Category{
	CategoryPopular,
	CategoryRecentlyReleased,
	CategoryComingSoon,
	CategoryMostAnticipated,
}

// IsValid returns true if the category is recognised.
func (c Category) IsValid() bool {
	switch c {
	case CategoryPopular, CategoryRecentlyReleased, CategoryComingSoon,
		CategoryMostAnticipated, CategorySearch, CategoryNews:
		return true
	default:
		return false
	}
}

// IsGameCategory returns true for categories backed by the games API.
func (c Category) IsGameCategory() bool {
	return c.IsValid() && c != CategoryNews
}

// String returns the string representation.
func (c Category) String() string {
	return string(c)
}

// ParseCategory resolves a category name, accepting a few short aliases.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "popular":
		return CategoryPopular, nil
	case "recent", "recently-released", "recently_released":
		return CategoryRecentlyReleased, nil
	case "coming-soon", "coming_soon", "upcoming":
		return CategoryComingSoon, nil
	case "anticipated", "most-anticipated", "most_anticipated":
		return CategoryMostAnticipated, nil
	case "search":
		return CategorySearch, nil
	case "news":
		return CategoryNews, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedCategory, s)
}

// DefaultPageSize is the page size used when a caller passes none.
const DefaultPageSize = 20

// MaxPageSize is the largest page the games API accepts.
const MaxPageSize = 500

// Page is a pagination window.
type Page struct {
	Offset int
	Limit  int
}

// Normalize clamps a page to valid bounds.
func (p Page) Normalize() Page {
	if p.Offset < 0 {
		p.Offset = 0
	}
	if p.Limit <= 0 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	return p
}

// RefreshKey identifies a cacheable query shape for the refresh throttler.
// It is only ever used as a map key.
type RefreshKey string

// KeyFor builds the refresh key of a category pagination window.
func KeyFor(category Category, page Page) RefreshKey {
	return RefreshKey(fmt.Sprintf("%s:offset=%d:limit=%d", category, page.Offset, page.Limit))
}

// SearchKey builds the refresh key of a search results window. The query is
// quoted so no query text can spell out another window's key.
func SearchKey(query string, page Page) RefreshKey {
	q := strings.ToLower(strings.TrimSpace(query))
	return RefreshKey(fmt.Sprintf("%s:query=%q:offset=%d:limit=%d", CategorySearch, q, page.Offset, page.Limit))
}

// ThrottleRecord is the last successful refresh of a key.
type ThrottleRecord struct {
	Key                       RefreshKey
	LastRefreshedAtUnixMillis int64
}
