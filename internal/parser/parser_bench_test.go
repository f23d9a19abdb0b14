package parser

import (
	"fmt"
	"testing"

	"github.com/glefebvre/mediadesk/internal/models"
)

func BenchmarkSeasonEpisode(b *testing.B) {
	paths := []string{
		"/srv/media/tv/Some Show/Season 03/Some.Show.S03E14.1080p.WEB.mkv",
		"/srv/media/movies/A Long Movie Title (2004)/A.Long.Movie.Title.2004.mkv",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		SeasonEpisode(paths[i%len(paths)])
	}
}

func BenchmarkTagEpisodes(b *testing.B) {
	videos := make([]models.Video, 500)
	for i := range videos {
		videos[i] = models.Video{ID: i, Path: fmt.Sprintf("/tv/Show/Show.S%02dE%02d.mkv", i/20, i%20)}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		TagEpisodes(videos)
	}
}
