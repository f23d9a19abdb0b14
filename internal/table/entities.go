package table

import (
	"cmp"
	"context"
	"strings"

	"github.com/glefebvre/mediadesk/internal/models"
	"github.com/glefebvre/mediadesk/internal/parser"
)

// Source lists the entities shown by the tables. *mediaserver.Client
// satisfies it.
type Source interface {
	ListMovies(ctx context.Context) ([]models.Movie, error)
	ListTV(ctx context.Context) ([]models.TvShow, error)
	ListPeople(ctx context.Context) ([]models.Person, error)
	ListCollections(ctx context.Context, restrict int) ([]models.Collection, error)
	ListVideos(ctx context.Context) ([]models.Video, error)
}

// text compares case-insensitively, falling back to byte order for ties
func text(a, b string) int {
	if c := strings.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

func boolean(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	}
	return 1
}

// Movies is the movie table: label title, facet genres
func Movies(src Source, opts Options) *Controller[models.Movie] {
	return New(Definition[models.Movie]{
		Name:   "movies",
		Fetch:  src.ListMovies,
		Label:  func(m models.Movie) string { return m.Title },
		Facets: func(m models.Movie) []string { return m.Genres },
		SortKeys: map[string]Less[models.Movie]{
			"title":        func(a, b models.Movie) int { return text(a.Title, b.Title) },
			"release_date": func(a, b models.Movie) int { return strings.Compare(a.ReleaseDate, b.ReleaseDate) },
			"watched":      func(a, b models.Movie) int { return boolean(a.Watched, b.Watched) },
			"id":           func(a, b models.Movie) int { return cmp.Compare(a.ID, b.ID) },
		},
		DefaultSort: "title",
	}, opts)
}

// Shows is the TV table: label title, facet genres
func Shows(src Source, opts Options) *Controller[models.TvShow] {
	return New(Definition[models.TvShow]{
		Name:   "tv",
		Fetch:  src.ListTV,
		Label:  func(s models.TvShow) string { return s.Title },
		Facets: func(s models.TvShow) []string { return s.Genres },
		SortKeys: map[string]Less[models.TvShow]{
			"title": func(a, b models.TvShow) int { return text(a.Title, b.Title) },
			"id":    func(a, b models.TvShow) int { return cmp.Compare(a.ID, b.ID) },
		},
		DefaultSort: "title",
	}, opts)
}

// People is the person table: label name, no facet
func People(src Source, opts Options) *Controller[models.Person] {
	return New(Definition[models.Person]{
		Name:  "people",
		Fetch: src.ListPeople,
		Label: func(p models.Person) string { return p.Name },
		SortKeys: map[string]Less[models.Person]{
			"name": func(a, b models.Person) int { return text(a.Name, b.Name) },
			"id":   func(a, b models.Person) int { return cmp.Compare(a.ID, b.ID) },
		},
		DefaultSort: "name",
	}, opts)
}

// Collections is the collection table: label name, facet creator
func Collections(src Source, opts Options) *Controller[models.Collection] {
	return New(Definition[models.Collection]{
		Name: "collections",
		Fetch: func(ctx context.Context) ([]models.Collection, error) {
			return src.ListCollections(ctx, 0)
		},
		Label: func(c models.Collection) string { return c.Name },
		Facets: func(c models.Collection) []string {
			return []string{c.Creator}
		},
		SortKeys: map[string]Less[models.Collection]{
			"name":    func(a, b models.Collection) int { return text(a.Name, b.Name) },
			"creator": func(a, b models.Collection) int { return text(a.Creator, b.Creator) },
			"id":      func(a, b models.Collection) int { return cmp.Compare(a.ID, b.ID) },
		},
		DefaultSort: "name",
	}, opts)
}

// Files is the video file table: label path, no facet, larger page floor
func Files(src Source, opts Options) *Controller[models.Video] {
	if opts.PageFloor <= 0 {
		opts.PageFloor = DefaultFilePageFloor
	}
	return New(Definition[models.Video]{
		Name:  "files",
		Fetch: src.ListVideos,
		Label: func(v models.Video) string { return v.Path },
		SortKeys: map[string]Less[models.Video]{
			"path":       func(a, b models.Video) int { return text(a.Path, b.Path) },
			"media_type": func(a, b models.Video) int { return cmp.Compare(a.MediaType, b.MediaType) },
			"id":         func(a, b models.Video) int { return cmp.Compare(a.ID, b.ID) },
		},
		DefaultSort: "path",
	}, opts)
}

// FileRow is the display projection of a video file
type FileRow struct {
	ID        int              `json:"id"`
	Path      string           `json:"path"`
	Name      string           `json:"name"`
	MediaType models.MediaType `json:"media_type"`
	Info      string           `json:"info"`
	InfoLink  string           `json:"info_link"`
}

// FileRows projects video files for display
func FileRows(videos []models.Video) []FileRow {
	rows := make([]FileRow, len(videos))
	for i, v := range videos {
		rows[i] = FileRow{
			ID:        v.ID,
			Path:      v.Path,
			Name:      parser.FileName(v.Path),
			MediaType: v.MediaType,
			Info:      parser.Info(v),
			InfoLink:  parser.InfoLink(v),
		}
	}
	return rows
}
