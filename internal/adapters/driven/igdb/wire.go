package igdb

import (
	"time"

	"github.com/custodia-labs/gamefeed-cli/internal/core/domain"
)

type wireGame struct {
	ID               int64    `json:"id"`
	Name             string   `json:"name"`
	Summary          string   `json:"summary"`
	Storyline        string   `json:"storyline"`
	URL              string   `json:"url"`
	TotalRating      *float64 `json:"total_rating"`
	TotalRatingCount int      `json:"total_rating_count"`
	Hypes            int      `json:"hypes"`
	FirstReleaseDate *int64   `json:"first_release_date"`
	Cover            *struct {
		ImageID string `json:"image_id"`
	} `json:"cover"`
	Genres []struct {
		Name string `json:"name"`
	} `json:"genres"`
	Platforms []struct {
		Abbreviation string `json:"abbreviation"`
		Name         string `json:"name"`
	} `json:"platforms"`
	InvolvedCompanies []struct {
		Company struct {
			Name string `json:"name"`
		} `json:"company"`
		Developer bool `json:"developer"`
		Publisher bool `json:"publisher"`
	} `json:"involved_companies"`
}

func (w *wireGame) toDomain() domain.Game {
	g := domain.Game{
		ID:               w.ID,
		Name:             w.Name,
		Summary:          w.Summary,
		Storyline:        w.Storyline,
		URL:              w.URL,
		TotalRating:      w.TotalRating,
		TotalRatingCount: w.TotalRatingCount,
		Hypes:            w.Hypes,
	}
	if w.FirstReleaseDate != nil {
		release := time.Unix(*w.FirstReleaseDate, 0).UTC()
		g.ReleaseDate = &release
	}
	if w.Cover != nil {
		g.CoverImageID = w.Cover.ImageID
	}
	for _, genre := range w.Genres {
		g.Genres = append(g.Genres, genre.Name)
	}
	for _, p := range w.Platforms {
		name := p.Abbreviation
		if name == "" {
			name = p.Name
		}
		if name != "" {
			g.Platforms = append(g.Platforms, name)
		}
	}
	for _, ic := range w.InvolvedCompanies {
		if ic.Developer {
			g.Developers = append(g.Developers, ic.Company.Name)
		}
		if ic.Publisher {
			g.Publishers = append(g.Publishers, ic.Company.Name)
		}
	}
	return g
}

func toDomain(wire []wireGame) []domain.Game {
	games := make([]domain.Game, 0, len(wire))
	for i := range wire {
		games = append(games, wire[i].toDomain())
	}
	return games
}
