package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/glefebvre/mediadesk/internal/models"
)

// Unassigned marks a season or episode that could not be derived
const Unassigned = -1

// seasonEpisodePattern matches the last S<digits>E<digits> marker in a path
var seasonEpisodePattern = regexp.MustCompile(`(?i)^.*s(\d+)e(\d+)`)

// SeasonEpisode derives the season and episode numbers from a video path.
// Paths without an S<digits>E<digits> marker yield (-1, -1).
func SeasonEpisode(path string) (season, episode int) {
	m := seasonEpisodePattern.FindStringSubmatch(path)
	if m == nil {
		return Unassigned, Unassigned
	}

	s, err := strconv.Atoi(m[1])
	if err != nil {
		return Unassigned, Unassigned
	}
	e, err := strconv.Atoi(m[2])
	if err != nil {
		return Unassigned, Unassigned
	}
	return s, e
}

// TagEpisodes annotates every video with its derived season/episode.
// Unmatched videos are kept with -1/-1.
func TagEpisodes(videos []models.Video) []models.EpisodeTag {
	tags := make([]models.EpisodeTag, 0, len(videos))
	for _, v := range videos {
		season, episode := SeasonEpisode(v.Path)
		tags = append(tags, models.EpisodeTag{
			Video:   v,
			Season:  season,
			Episode: episode,
		})
	}
	return tags
}

// MediaTypeFromPath guesses whether an untagged file is an episode
func MediaTypeFromPath(path string) models.MediaType {
	if s, _ := SeasonEpisode(path); s != Unassigned {
		return models.MediaTypeTV
	}
	return models.MediaTypeMovie
}

// FileName returns the last segment of a slash-separated path
func FileName(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}

// Info renders the metadata a file is attached to: "<show>SxxEyy" for
// episodes, "<title> <year>" for movies, "" for untagged files.
func Info(v models.Video) string {
	switch {
	case v.Tv != nil:
		return fmt.Sprintf("%sS%02dE%02d", v.Tv.Title, v.Tv.SeasonNumber, v.Tv.EpisodeNumber)
	case v.Movie != nil:
		return v.Movie.Title + " " + v.Movie.Year()
	}
	return ""
}

// InfoLink returns the relative view path of the metadata a file is
// attached to, or "" for untagged files.
func InfoLink(v models.Video) string {
	switch {
	case v.Tv != nil:
		return fmt.Sprintf("tv/%d/season/%d/episode/%d", v.Tv.ID, v.Tv.SeasonNumber, v.Tv.EpisodeNumber)
	case v.Movie != nil:
		return fmt.Sprintf("movie/%d", v.Movie.ID)
	}
	return ""
}
