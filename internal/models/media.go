package models

import "strings"

// MediaType discriminates which metadata a video file is attached to
type MediaType int

const (
	MediaTypeMovie MediaType = 0
	MediaTypeTV    MediaType = 1
)

// String returns the lower-case name used in logs and CLI output
func (m MediaType) String() string {
	switch m {
	case MediaTypeMovie:
		return "movie"
	case MediaTypeTV:
		return "tv"
	default:
		return "unknown"
	}
}

// Movie represents movie metadata as served by the media server
type Movie struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	ReleaseDate string   `json:"release_date"`
	Genres      []string `json:"genres"`
	Watched     bool     `json:"watched"`
	PosterPath  string   `json:"poster_path,omitempty"`
}

// Year returns the year part of the release date, or "" when unknown
func (m Movie) Year() string {
	year, _, _ := strings.Cut(m.ReleaseDate, "-")
	return year
}

// TvShow represents a TV show as listed by the media server
type TvShow struct {
	ID         int      `json:"id"`
	Title      string   `json:"title"`
	Genres     []string `json:"genres"`
	PosterPath string   `json:"poster_path,omitempty"`
}

// TvEpisode is the episode projection embedded in a tagged video file
type TvEpisode struct {
	ID            int      `json:"id"`
	Title         string   `json:"title"`
	SeasonNumber  int      `json:"season_number"`
	EpisodeNumber int      `json:"episode_number"`
	Genres        []string `json:"genres,omitempty"`
}

// Person represents a cast or crew member
type Person struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Collection is a user-defined group of movies and shows
type Collection struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Creator     string `json:"creator"`
}

// Video represents a raw video file. At most one of Movie and Tv is set.
type Video struct {
	ID        int        `json:"id"`
	Path      string     `json:"path"`
	MediaType MediaType  `json:"media_type"`
	Movie     *Movie     `json:"Movie,omitempty"`
	Tv        *TvEpisode `json:"Tv,omitempty"`
}

// EpisodeTag is a video annotated by the TV search workflow with its derived
// season/episode and the chosen show id. -1 means unassigned.
type EpisodeTag struct {
	Video   Video `json:"video"`
	Season  int   `json:"season"`
	Episode int   `json:"episode"`
	ShowID  int   `json:"show_id"`
}

// Assignable reports whether the tag carries a complete episode assignment
func (t EpisodeTag) Assignable() bool {
	return t.Season >= 0 && t.Episode >= 0 && t.ShowID > 0
}

// RecentCollection is one entry of the recently used collections list
type RecentCollection struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
