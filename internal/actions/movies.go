package actions

import (
	"context"

	"github.com/glefebvre/mediadesk/internal/bulk"
	"github.com/glefebvre/mediadesk/internal/models"
	"github.com/glefebvre/mediadesk/internal/picker"
)

const (
	WatchedIconFull  = "/rsc/see-full.png"
	WatchedIconEmpty = "/rsc/see-empty.png"
)

// WatchedIcon returns the icon for a watched state
func WatchedIcon(watched bool) string {
	if watched {
		return WatchedIconFull
	}
	return WatchedIconEmpty
}

// Movies handles the actions of a movie page
type Movies struct {
	deps Deps
}

// NewMovies creates the movie action controller
func NewMovies(d Deps) *Movies {
	return &Movies{deps: d.withDefaults()}
}

// SetWatched persists the watched flag of a movie
func (m *Movies) SetWatched(ctx context.Context, movieID int, watched bool) error {
	fields := map[string]interface{}{"movie_id": movieID, "watched": watched}
	if err := m.deps.Client.SetWatched(ctx, movieID, watched); err != nil {
		m.deps.Logger.WithFields(fields).ErrorContext(ctx, "failed to set watched", err)
		return err
	}
	m.deps.Logger.WithFields(fields).InfoContext(ctx, "watched updated")
	return nil
}

// EditMovie picks one movie for the first video and attaches every given
// video to it
func (m *Movies) EditMovie(ctx context.Context, videos []models.Video) (bulk.Result, error) {
	if len(videos) == 0 {
		return bulk.Result{}, nil
	}
	videoIDs := make([]int, len(videos))
	for i, v := range videos {
		videoIDs[i] = v.ID
	}
	out, err := m.deps.Picker.PickMovie(ctx, videos[0])
	if err != nil {
		return bulk.Result{}, err
	}
	movieID, ok := out.Value()
	if !ok {
		return skipAll(videoIDs, out.Reason()), nil
	}

	a := models.MovieAssignment{MovieID: movieID}
	return m.deps.Runner.Run(ctx, videoIDs, func(ctx context.Context, videoID int) error {
		return m.deps.Client.UpdateVideo(ctx, videoID, a)
	}), nil
}

// AddToCollection adds a movie to a picked collection
func (m *Movies) AddToCollection(ctx context.Context, movieID int) (picker.Outcome[int], error) {
	return addToCollection(ctx, m.deps, models.MovieMembership(movieID), map[string]interface{}{
		"movie_id": movieID,
	})
}

// Shows handles the actions of a TV show page
type Shows struct {
	deps Deps
}

// NewShows creates the TV action controller
func NewShows(d Deps) *Shows {
	return &Shows{deps: d.withDefaults()}
}

// AddToCollection adds a show to a picked collection
func (s *Shows) AddToCollection(ctx context.Context, tvID int) (picker.Outcome[int], error) {
	return addToCollection(ctx, s.deps, models.ShowMembership(tvID), map[string]interface{}{
		"tv_id": tvID,
	})
}

// Collections handles the actions of the collection table
type Collections struct {
	deps Deps
}

// NewCollections creates the collection action controller
func NewCollections(d Deps) *Collections {
	return &Collections{deps: d.withDefaults()}
}

// Create runs the creation form
func (c *Collections) Create(ctx context.Context) (picker.Outcome[models.NewCollection], error) {
	out, err := c.deps.Picker.CreateCollection(ctx)
	if err != nil {
		c.deps.Logger.ErrorContext(ctx, "failed to create collection", err)
		return out, err
	}
	if in, ok := out.Value(); ok {
		c.deps.Logger.WithFields(map[string]interface{}{"name": in.Name}).InfoContext(ctx, "collection created")
	}
	return out, nil
}
