package domain

import "time"

// Game is a game as stored locally and shown to callers.
type Game struct {
	// ID is the games API identifier.
	ID int64
	// Name is the display title.
	Name string
	// Summary is a short description.
	Summary string
	// Storyline is a longer plot description, often empty.
	Storyline string
	// TotalRating is the combined critic and user rating (0-100), nil when unrated.
	TotalRating *float64
	// TotalRatingCount is the number of ratings behind TotalRating.
	TotalRatingCount int
	// Hypes is the number of follows before release.
	Hypes int
	// ReleaseDate is the first release date, nil when unknown.
	ReleaseDate *time.Time
	// CoverImageID is the image id used to build cover URLs.
	CoverImageID string
	// Genres, Platforms, Developers and Publishers are display names.
	Genres     []string
	Platforms  []string
	Developers []string
	Publishers []string
	// URL is the games API website link.
	URL string
	// UpdatedAt is when this row was last written locally.
	UpdatedAt time.Time
}

// CoverURL returns the cover image URL in the given size ("cover_big", "t_thumb", ...).
func (g *Game) CoverURL(size string) string {
	if g.CoverImageID == "" {
		return ""
	}
	if size == "" {
		size = "cover_big"
	}
	return "https://images.igdb.com/igdb/image/upload/t_" + size + "/" + g.CoverImageID + ".jpg"
}

// IsReleasedAt reports whether the game was released at or before now.
func (g *Game) IsReleasedAt(now time.Time) bool {
	return g.ReleaseDate != nil && !g.ReleaseDate.After(now)
}

// GameQuery selects a local window of games.
type GameQuery struct {
	Category Category
	Page     Page
	// Text is the search text, used only with CategorySearch.
	Text string
}

// RecentlyReleasedWindow is how far back "recently released" reaches.
const RecentlyReleasedWindow = 30 * 24 * time.Hour

// PopularMinRatingCount keeps games with a handful of ratings out of "popular".
const PopularMinRatingCount = 20

// Article is a news article.
type Article struct {
	ID          int64
	Title       string
	Lede        string
	ImageURL    string
	URL         string
	PublishedAt time.Time
	UpdatedAt   time.Time
}

// Update is one emission of a category stream: either a snapshot of the local
// view or an auxiliary error from a refresh attempt.
type Update[T any] struct {
	Items []T
	Err   error
}

// IsError returns true for side-channel error emissions.
func (u Update[T]) IsError() bool {
	return u.Err != nil
}
