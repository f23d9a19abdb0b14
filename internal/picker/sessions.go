package picker

import (
	"context"
	"slices"
	"strings"

	apperrors "github.com/glefebvre/mediadesk/internal/errors"
	"github.com/glefebvre/mediadesk/internal/filter"
	"github.com/glefebvre/mediadesk/internal/logger"
	"github.com/glefebvre/mediadesk/internal/models"
	"github.com/glefebvre/mediadesk/internal/parser"
	"github.com/glefebvre/mediadesk/internal/prefs"
)

// MovieSearch picks the movie a video file belongs to
type MovieSearch struct {
	src      Source
	video    models.Video
	results  []models.Movie
	selected int
}

// NewMovieSearch opens a movie search for video
func NewMovieSearch(src Source, video models.Video) *MovieSearch {
	return &MovieSearch{src: src, video: video, results: []models.Movie{}}
}

// Video returns the file being assigned
func (s *MovieSearch) Video() models.Video { return s.video }

// Results returns the candidates of the last search
func (s *MovieSearch) Results() []models.Movie { return s.results }

// Search queries the server. An empty query is a no-op.
func (s *MovieSearch) Search(ctx context.Context, text string) ([]models.Movie, error) {
	if strings.TrimSpace(text) == "" {
		return s.results, nil
	}
	movies, err := s.src.SearchMovies(ctx, text)
	if err != nil {
		return s.results, err
	}
	s.results = movies
	return movies, nil
}

// Select marks a candidate; 0 clears the selection
func (s *MovieSearch) Select(movieID int) {
	s.selected = movieID
}

// Confirm closes the session with the selected movie id
func (s *MovieSearch) Confirm() Outcome[int] {
	if s.selected <= 0 {
		return Cancelled[int](ReasonNothingSelected)
	}
	return Confirmed(s.selected)
}

// Cancel closes the session without a choice
func (s *MovieSearch) Cancel() Outcome[int] {
	return Cancelled[int](ReasonCancel)
}

// TVSearch picks one show for a batch of episode files. Season and episode
// are derived from each path when the session opens.
type TVSearch struct {
	src      Source
	tags     []models.EpisodeTag
	results  []models.TvShow
	selected int
}

// NewTVSearch opens a TV search; files whose path carries no SxxEyy are
// kept with season and episode -1.
func NewTVSearch(src Source, videos []models.Video) *TVSearch {
	return &TVSearch{
		src:     src,
		tags:    parser.TagEpisodes(videos),
		results: []models.TvShow{},
	}
}

// Tags returns the files with their derived season and episode
func (s *TVSearch) Tags() []models.EpisodeTag { return slices.Clone(s.tags) }

// Results returns the candidates of the last search
func (s *TVSearch) Results() []models.TvShow { return s.results }

// Search queries the server. An empty query is a no-op.
func (s *TVSearch) Search(ctx context.Context, text string) ([]models.TvShow, error) {
	if strings.TrimSpace(text) == "" {
		return s.results, nil
	}
	shows, err := s.src.SearchTV(ctx, text)
	if err != nil {
		return s.results, err
	}
	s.results = shows
	return shows, nil
}

// Select marks the show; 0 clears the selection
func (s *TVSearch) Select(showID int) {
	s.selected = showID
}

// Confirm closes the session with a copy of the files tagged with the show
func (s *TVSearch) Confirm() Outcome[[]models.EpisodeTag] {
	if s.selected <= 0 {
		return Cancelled[[]models.EpisodeTag](ReasonNothingSelected)
	}
	out := slices.Clone(s.tags)
	for i := range out {
		out[i].ShowID = s.selected
	}
	return Confirmed(out)
}

// Cancel closes the session without a choice
func (s *TVSearch) Cancel() Outcome[[]models.EpisodeTag] {
	return Cancelled[[]models.EpisodeTag](ReasonCancel)
}

// CollectionPicker chooses the collection an entity is added to. Confirmed
// choices are remembered in the recent collections list.
type CollectionPicker struct {
	src    Source
	recent *prefs.RecentCollections
	logger *logger.Logger

	collections []models.Collection
	local       []models.RecentCollection
	search      string
	id          int
	name        string
}

// NewCollectionPicker creates a picker; recent may be nil
func NewCollectionPicker(src Source, recent *prefs.RecentCollections, log *logger.Logger) *CollectionPicker {
	if log == nil {
		log = logger.AppLogger()
	}
	return &CollectionPicker{
		src:         src,
		recent:      recent,
		logger:      log,
		collections: []models.Collection{},
		local:       []models.RecentCollection{},
	}
}

// Open loads the restricted collection list and the recent entries. When
// the server list cannot be fetched the picker still opens with the recent
// entries only; the error is returned only when ctx is done.
func (p *CollectionPicker) Open(ctx context.Context) error {
	if p.recent != nil {
		p.local = p.recent.Load(ctx)
	}
	collections, err := p.src.ListCollections(ctx, 1)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		p.logger.WithFields(map[string]interface{}{
			"recent": len(p.local),
		}).ErrorContext(ctx, "failed to list collections", err)
		p.collections = []models.Collection{}
		return nil
	}
	p.collections = collections
	return nil
}

// Recent returns the recently used collections, most recent last
func (p *CollectionPicker) Recent() []models.RecentCollection { return p.local }

// Filter sets the name filter
func (p *CollectionPicker) Filter(text string) {
	p.search = text
}

// Visible returns the collections whose name matches the filter
func (p *CollectionPicker) Visible() []models.Collection {
	out := make([]models.Collection, 0, len(p.collections))
	for _, c := range p.collections {
		if filter.Contains(c.Name, p.search) {
			out = append(out, c)
		}
	}
	return out
}

// Select records the chosen collection
func (p *CollectionPicker) Select(id int, name string) {
	p.id, p.name = id, name
}

// SelectID selects by id, taking the name from the loaded or recent lists
func (p *CollectionPicker) SelectID(id int) {
	p.id, p.name = id, ""
	for _, c := range p.collections {
		if c.ID == id {
			p.name = c.Name
			return
		}
	}
	for _, c := range p.local {
		if c.ID == id {
			p.name = c.Name
			return
		}
	}
}

// Confirm closes the session with the selected collection id. Failing to
// remember the choice is logged and does not cancel it.
func (p *CollectionPicker) Confirm(ctx context.Context) Outcome[int] {
	if p.id <= 0 || p.name == "" {
		return Cancelled[int](ReasonNothingSelected)
	}
	if p.recent != nil {
		local, err := p.recent.Remember(ctx, p.id, p.name)
		if err != nil {
			p.logger.WithFields(map[string]interface{}{
				"collection_id": p.id,
			}).ErrorContext(ctx, "failed to remember collection", err)
		} else {
			p.local = local
		}
	}
	return Confirmed(p.id)
}

// Cancel closes the session without a choice
func (p *CollectionPicker) Cancel() Outcome[int] {
	return Cancelled[int](ReasonCancel)
}

// CollectionForm creates a new collection
type CollectionForm struct {
	src Source
}

// NewCollectionForm opens the creation form
func NewCollectionForm(src Source) *CollectionForm {
	return &CollectionForm{src: src}
}

// Submit creates the collection. Invalid input and server failures are
// errors, not cancellations.
func (f *CollectionForm) Submit(ctx context.Context, name, description string) (Outcome[models.NewCollection], error) {
	in := models.NewCollection{Name: strings.TrimSpace(name), Description: description}
	if in.Name == "" {
		return Outcome[models.NewCollection]{}, apperrors.ValidationError("collection name is required").
			WithContext("field", "name")
	}
	if err := f.src.CreateCollection(ctx, in); err != nil {
		return Outcome[models.NewCollection]{}, err
	}
	return Confirmed(in), nil
}

// Cancel closes the form without creating anything
func (f *CollectionForm) Cancel() Outcome[models.NewCollection] {
	return Cancelled[models.NewCollection](ReasonCancel)
}
