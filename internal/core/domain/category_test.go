package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyFor(t *testing.T) {
	key := KeyFor(CategoryPopular, Page{Offset: 0, Limit: 20})
	assert.Equal(t, RefreshKey("popular:offset=0:limit=20"), key)
}

func TestKeyFor_WindowsAreDistinct(t *testing.T) {
	first := KeyFor(CategoryComingSoon, Page{Offset: 0, Limit: 20})
	second := KeyFor(CategoryComingSoon, Page{Offset: 20, Limit: 20})
	assert.NotEqual(t, first, second)
}

func TestSearchKey_NormalisesQuery(t *testing.T) {
	a := SearchKey("  Zelda ", Page{Limit: 10})
	b := SearchKey("zelda", Page{Limit: 10})
	assert.Equal(t, a, b)
	assert.Equal(t, RefreshKey(`search:query="zelda":offset=0:limit=10`), a)
}

func TestSearchKey_QueriesWithKeySyntaxStayDistinct(t *testing.T) {
	windows := []struct {
		query string
		page  Page
	}{
		{"a", Page{Offset: 0, Limit: 20}},
		{"a:offset=0:limit=20", Page{Offset: 0, Limit: 20}},
		{"a:offset=0:limit=20", Page{Offset: 5, Limit: 20}},
		{`a":offset=0:limit=20`, Page{Offset: 0, Limit: 20}},
		{`a" query="b`, Page{Offset: 0, Limit: 20}},
		{"b", Page{Offset: 0, Limit: 20}},
	}

	seen := make(map[RefreshKey]int)
	for i, w := range windows {
		key := SearchKey(w.query, w.page)
		if prev, ok := seen[key]; ok {
			t.Fatalf("windows %d and %d share key %s", prev, i, key)
		}
		seen[key] = i
		assert.NotEqual(t, KeyFor(CategorySearch, w.page), key)
	}
}

func TestPage_Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   Page
		want Page
	}{
		{"zero uses default limit", Page{}, Page{Offset: 0, Limit: DefaultPageSize}},
		{"negative offset clamped", Page{Offset: -5, Limit: 10}, Page{Offset: 0, Limit: 10}},
		{"limit capped", Page{Offset: 3, Limit: 10_000}, Page{Offset: 3, Limit: MaxPageSize}},
		{"valid unchanged", Page{Offset: 40, Limit: 20}, Page{Offset: 40, Limit: 20}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalize())
		})
	}
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in   string
		want Category
	}{
		{"popular", CategoryPopular},
		{"recent", CategoryRecentlyReleased},
		{"Coming-Soon", CategoryComingSoon},
		{"upcoming", CategoryComingSoon},
		{"anticipated", CategoryMostAnticipated},
		{"news", CategoryNews},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCategory(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseCategory("unknown")
	assert.ErrorIs(t, err, ErrUnsupportedCategory)
}

func TestCategory_IsGameCategory(t *testing.T) {
	for _, c := range GameCategories {
		assert.True(t, c.IsGameCategory(), c)
	}
	assert.True(t, CategorySearch.IsGameCategory())
	assert.False(t, CategoryNews.IsGameCategory())
	assert.False(t, Category("bogus").IsGameCategory())
}
