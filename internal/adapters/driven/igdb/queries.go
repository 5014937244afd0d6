package igdb

import (
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/gamefeed-cli/internal/core/domain"
)

// gameFields is the projection every games query requests.
const gameFields = "fields name,summary,storyline,url,total_rating,total_rating_count,hypes," +
	"first_release_date,cover.image_id,genres.name,platforms.abbreviation,platforms.name," +
	"involved_companies.company.name,involved_companies.developer,involved_companies.publisher;"

// excludeAdult filters IGDB's "erotic" theme.
const excludeAdult = "themes != (42)"

// categoryQuery builds the Apicalypse body for a browsable category window.
// The filters mirror the local store's windows so a refresh fills exactly
// what the local view shows.
func categoryQuery(category domain.Category, page domain.Page, now time.Time) (string, error) {
	nowSec := now.Unix()

	var where, sort string
	switch category {
	case domain.CategoryPopular:
		where = fmt.Sprintf("total_rating != null & total_rating_count >= %d", domain.PopularMinRatingCount)
		sort = "total_rating desc"
	case domain.CategoryRecentlyReleased:
		from := now.Add(-domain.RecentlyReleasedWindow).Unix()
		where = fmt.Sprintf("first_release_date > %d & first_release_date <= %d", from, nowSec)
		sort = "first_release_date desc"
	case domain.CategoryComingSoon:
		where = fmt.Sprintf("first_release_date > %d", nowSec)
		sort = "first_release_date asc"
	case domain.CategoryMostAnticipated:
		where = fmt.Sprintf("first_release_date > %d & hypes > 0", nowSec)
		sort = "hypes desc"
	default:
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedCategory, category)
	}

	return fmt.Sprintf("%s where %s & %s; sort %s; limit %d; offset %d;",
		gameFields, where, excludeAdult, sort, page.Limit, page.Offset), nil
}

// searchQuery builds a full-text search body. IGDB does not allow sort with search.
func searchQuery(text string, page domain.Page) string {
	return fmt.Sprintf(`%s search "%s"; where %s; limit %d; offset %d;`,
		gameFields, escape(text), excludeAdult, page.Limit, page.Offset)
}

func idQuery(id int64) string {
	return fmt.Sprintf("%s where id = %d; limit 1;", gameFields, id)
}

func escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}
