// Package tmdb provides a client for The Movie Database API.
package tmdb

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultImageBaseURL is TMDB's public image host.
const DefaultImageBaseURL = "https://image.tmdb.org/t/p/"

// record is a decoded response body that can reject itself.
type record interface {
	validate() error
}

// Movie represents TMDB movie metadata.
// List endpoints fill GenreIDs; the detail endpoint fills Genres.
type Movie struct {
	ID               int64   `json:"id"`
	IMDBID           string  `json:"imdb_id,omitempty"` // e.g., "tt1375666"
	Title            string  `json:"title"`
	OriginalTitle    string  `json:"original_title,omitempty"`
	OriginalLanguage string  `json:"original_language,omitempty"`
	Overview         string  `json:"overview"`
	Tagline          string  `json:"tagline,omitempty"`
	Homepage         string  `json:"homepage,omitempty"`
	ReleaseDate      string  `json:"release_date"` // "2010-07-15"
	PosterPath       string  `json:"poster_path"`  // "/abc123.jpg"
	BackdropPath     string  `json:"backdrop_path"`
	Popularity       float64 `json:"popularity"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	Runtime          int     `json:"runtime,omitempty"` // minutes
	Genres           []Genre `json:"genres,omitempty"`
	GenreIDs         []int   `json:"genre_ids,omitempty"`
}

// Genre represents a movie genre.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// MoviePage is one page of a list endpoint (popular, upcoming).
type MoviePage struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

// Review is a user review of a movie. Reviews are never modified once created.
type Review struct {
	ID        string    `json:"id"`
	MovieID   int64     `json:"movie_id"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	Rating    float64   `json:"rating"`
	URL       string    `json:"url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ReviewPage is one page of reviews for a movie.
type ReviewPage struct {
	MovieID      int64    `json:"id"`
	Page         int      `json:"page"`
	Results      []Review `json:"results"`
	TotalPages   int      `json:"total_pages"`
	TotalResults int      `json:"total_results"`
}

// wire format of /3/movie/{id}/reviews entries
type reviewResult struct {
	ID            string `json:"id"`
	Author        string `json:"author"`
	Content       string `json:"content"`
	URL           string `json:"url"`
	CreatedAt     string `json:"created_at"`
	AuthorDetails struct {
		Rating *float64 `json:"rating"`
	} `json:"author_details"`
}

type genreList struct {
	Genres []Genre `json:"genres"`
}

type reviewPageResult struct {
	ID           int64          `json:"id"`
	Page         int            `json:"page"`
	Results      []reviewResult `json:"results"`
	TotalPages   int            `json:"total_pages"`
	TotalResults int            `json:"total_results"`
}

func (p reviewPageResult) toReviewPage() *ReviewPage {
	out := &ReviewPage{
		MovieID:      p.ID,
		Page:         p.Page,
		Results:      make([]Review, 0, len(p.Results)),
		TotalPages:   p.TotalPages,
		TotalResults: p.TotalResults,
	}
	for _, r := range p.Results {
		review := Review{
			ID:      r.ID,
			MovieID: p.ID,
			Author:  r.Author,
			Content: r.Content,
			URL:     r.URL,
		}
		if r.AuthorDetails.Rating != nil {
			review.Rating = *r.AuthorDetails.Rating
		}
		if t, err := time.Parse(time.RFC3339, r.CreatedAt); err == nil {
			review.CreatedAt = t
		}
		out.Results = append(out.Results, review)
	}
	return out
}

func (m *Movie) validate() error {
	if m.ID == 0 {
		return errors.New("movie record has no id")
	}
	return nil
}

// A missing results key decodes to nil; an empty list does not.
func (p *MoviePage) validate() error {
	if p.Results == nil {
		return errors.New("no results list")
	}
	for i := range p.Results {
		if err := p.Results[i].validate(); err != nil {
			return fmt.Errorf("result %d: %w", i, err)
		}
	}
	return nil
}

func (p *reviewPageResult) validate() error {
	if p.Results == nil {
		return errors.New("no results list")
	}
	for i, r := range p.Results {
		if r.ID == "" {
			return fmt.Errorf("result %d: review record has no id", i)
		}
	}
	return nil
}

func (g *genreList) validate() error {
	if g.Genres == nil {
		return errors.New("no genres list")
	}
	return nil
}

// MovieID returns the TMDB id. The value receiver lets plain Movie values
// satisfy favorites.Movie.
func (m Movie) MovieID() int64 { return m.ID }

// Year extracts the year from ReleaseDate.
func (m *Movie) Year() int {
	if len(m.ReleaseDate) < 4 {
		return 0
	}
	year, err := strconv.Atoi(m.ReleaseDate[:4])
	if err != nil {
		return 0
	}
	return year
}

// ImageURL joins an image host, a size and an image path such as
// Movie.PosterPath. Size can be: w92, w154, w185, w342, w500, w780, original.
// An empty path yields "" and an empty base falls back to DefaultImageBaseURL.
func ImageURL(base, size, path string) string {
	if path == "" {
		return ""
	}
	if base == "" {
		base = DefaultImageBaseURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + size + path
}

// HasGenre reports whether the movie is tagged with the given genre id.
func (m *Movie) HasGenre(id int) bool {
	for _, g := range m.GenreIDs {
		if g == id {
			return true
		}
	}
	for _, g := range m.Genres {
		if g.ID == id {
			return true
		}
	}
	return false
}
