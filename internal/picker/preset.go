package picker

import (
	"context"

	"github.com/glefebvre/mediadesk/internal/logger"
	"github.com/glefebvre/mediadesk/internal/models"
	"github.com/glefebvre/mediadesk/internal/prefs"
)

// Preset is a Picker whose choices were made up front, e.g. by the browser
// front end of the view server. It still runs the real sessions so episode
// tagging and recent collection bookkeeping behave the same.
type Preset struct {
	src    Source
	recent *prefs.RecentCollections
	logger *logger.Logger

	// Movies maps a video id to the chosen movie id
	Movies       map[int]int
	ShowID       int
	CollectionID int
	Collection   models.NewCollection
}

// NewPreset creates an empty preset; set the choices before use
func NewPreset(src Source, recent *prefs.RecentCollections, log *logger.Logger) *Preset {
	if log == nil {
		log = logger.AppLogger()
	}
	return &Preset{src: src, recent: recent, logger: log, Movies: map[int]int{}}
}

func (p *Preset) PickMovie(_ context.Context, video models.Video) (Outcome[int], error) {
	s := NewMovieSearch(p.src, video)
	s.Select(p.Movies[video.ID])
	return s.Confirm(), nil
}

func (p *Preset) PickTV(_ context.Context, videos []models.Video) (Outcome[[]models.EpisodeTag], error) {
	s := NewTVSearch(p.src, videos)
	s.Select(p.ShowID)
	return s.Confirm(), nil
}

func (p *Preset) PickCollection(ctx context.Context) (Outcome[int], error) {
	c := NewCollectionPicker(p.src, p.recent, p.logger)
	if err := c.Open(ctx); err != nil {
		return Outcome[int]{}, err
	}
	c.SelectID(p.CollectionID)
	return c.Confirm(ctx), nil
}

func (p *Preset) CreateCollection(ctx context.Context) (Outcome[models.NewCollection], error) {
	return NewCollectionForm(p.src).Submit(ctx, p.Collection.Name, p.Collection.Description)
}
