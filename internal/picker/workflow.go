package picker

import (
	"context"
	"errors"
	"fmt"

	"github.com/glefebvre/mediadesk/internal/logger"
	"github.com/glefebvre/mediadesk/internal/models"
	"github.com/glefebvre/mediadesk/internal/parser"
	"github.com/glefebvre/mediadesk/internal/prefs"
)

// ErrAborted is returned by a Prompter when the user dismisses a prompt
var ErrAborted = errors.New("prompt aborted")

// Choice is one option offered by a Prompter
type Choice struct {
	ID    int
	Label string
}

// Prompter is the interactive surface the workflow drives: the terminal in
// the CLI, a script in tests.
type Prompter interface {
	// Input reads a line of text
	Input(ctx context.Context, label string) (string, error)
	// Choose returns the id of the chosen option, or 0 for none
	Choose(ctx context.Context, title string, choices []Choice) (int, error)
	// Confirm asks a yes/no question
	Confirm(ctx context.Context, question string) (bool, error)
}

// Picker is what the action controllers need from a picker host
type Picker interface {
	PickMovie(ctx context.Context, video models.Video) (Outcome[int], error)
	PickTV(ctx context.Context, videos []models.Video) (Outcome[[]models.EpisodeTag], error)
	PickCollection(ctx context.Context) (Outcome[int], error)
	CreateCollection(ctx context.Context) (Outcome[models.NewCollection], error)
}

// Workflow runs picker sessions through a Prompter
type Workflow struct {
	src      Source
	prompter Prompter
	recent   *prefs.RecentCollections
	logger   *logger.Logger
}

// NewWorkflow binds a source, a prompter and the recent collections cache
func NewWorkflow(src Source, prompter Prompter, recent *prefs.RecentCollections, log *logger.Logger) *Workflow {
	if log == nil {
		log = logger.AppLogger()
	}
	return &Workflow{src: src, prompter: prompter, recent: recent, logger: log}
}

// movieSearchLabel names the file being assigned, or its id when the path
// is not known
func movieSearchLabel(video models.Video) string {
	if name := parser.FileName(video.Path); name != "" {
		return "Search movie for " + name
	}
	return fmt.Sprintf("Search movie for video %d", video.ID)
}

// PickMovie searches until the user picks a movie, gives up with an empty
// query, or aborts.
func (w *Workflow) PickMovie(ctx context.Context, video models.Video) (Outcome[int], error) {
	s := NewMovieSearch(w.src, video)
	label := movieSearchLabel(video)

	for {
		query, err := w.prompter.Input(ctx, label)
		if errors.Is(err, ErrAborted) {
			return s.Cancel(), nil
		}
		if err != nil {
			return Outcome[int]{}, err
		}
		if query == "" {
			return s.Confirm(), nil
		}

		movies, err := s.Search(ctx, query)
		if err != nil {
			return Outcome[int]{}, err
		}
		if len(movies) == 0 {
			continue
		}

		choices := make([]Choice, len(movies))
		for i, m := range movies {
			choices[i] = Choice{ID: m.ID, Label: movieLabel(m)}
		}
		id, err := w.prompter.Choose(ctx, "Movies matching "+query, choices)
		if errors.Is(err, ErrAborted) {
			return s.Cancel(), nil
		}
		if err != nil {
			return Outcome[int]{}, err
		}
		s.Select(id)
		return s.Confirm(), nil
	}
}

// PickTV runs one show search for the whole batch
func (w *Workflow) PickTV(ctx context.Context, videos []models.Video) (Outcome[[]models.EpisodeTag], error) {
	s := NewTVSearch(w.src, videos)

	for {
		query, err := w.prompter.Input(ctx, fmt.Sprintf("Search show for %d file(s)", len(videos)))
		if errors.Is(err, ErrAborted) {
			return s.Cancel(), nil
		}
		if err != nil {
			return Outcome[[]models.EpisodeTag]{}, err
		}
		if query == "" {
			return s.Confirm(), nil
		}

		shows, err := s.Search(ctx, query)
		if err != nil {
			return Outcome[[]models.EpisodeTag]{}, err
		}
		if len(shows) == 0 {
			continue
		}

		choices := make([]Choice, len(shows))
		for i, show := range shows {
			choices[i] = Choice{ID: show.ID, Label: show.Title}
		}
		id, err := w.prompter.Choose(ctx, "Shows matching "+query, choices)
		if errors.Is(err, ErrAborted) {
			return s.Cancel(), nil
		}
		if err != nil {
			return Outcome[[]models.EpisodeTag]{}, err
		}
		s.Select(id)
		return s.Confirm(), nil
	}
}

// PickCollection offers the recent collections first, then the collections
// matching a filter.
func (w *Workflow) PickCollection(ctx context.Context) (Outcome[int], error) {
	p := NewCollectionPicker(w.src, w.recent, w.logger)
	if err := p.Open(ctx); err != nil {
		return Outcome[int]{}, err
	}

	text, err := w.prompter.Input(ctx, "Filter collections")
	if errors.Is(err, ErrAborted) {
		return p.Cancel(), nil
	}
	if err != nil {
		return Outcome[int]{}, err
	}
	p.Filter(text)

	choices := CollectionChoices(p.Recent(), p.Visible())
	id, err := w.prompter.Choose(ctx, "Collections", choices)
	if errors.Is(err, ErrAborted) {
		return p.Cancel(), nil
	}
	if err != nil {
		return Outcome[int]{}, err
	}
	p.SelectID(id)
	return p.Confirm(ctx), nil
}

// CreateCollection prompts for a name and a description
func (w *Workflow) CreateCollection(ctx context.Context) (Outcome[models.NewCollection], error) {
	f := NewCollectionForm(w.src)

	name, err := w.prompter.Input(ctx, "Collection name")
	if errors.Is(err, ErrAborted) {
		return f.Cancel(), nil
	}
	if err != nil {
		return Outcome[models.NewCollection]{}, err
	}
	description, err := w.prompter.Input(ctx, "Description")
	if errors.Is(err, ErrAborted) {
		return f.Cancel(), nil
	}
	if err != nil {
		return Outcome[models.NewCollection]{}, err
	}
	return f.Submit(ctx, name, description)
}

// CollectionChoices lists recent collections (most recent first) followed by
// the other visible collections.
func CollectionChoices(recent []models.RecentCollection, visible []models.Collection) []Choice {
	seen := make(map[int]bool, len(recent))
	choices := make([]Choice, 0, len(recent)+len(visible))
	for i := len(recent) - 1; i >= 0; i-- {
		r := recent[i]
		seen[r.ID] = true
		choices = append(choices, Choice{ID: r.ID, Label: r.Name + " (recent)"})
	}
	for _, c := range visible {
		if seen[c.ID] {
			continue
		}
		choices = append(choices, Choice{ID: c.ID, Label: c.Name})
	}
	return choices
}

func movieLabel(m models.Movie) string {
	if y := m.Year(); y != "" {
		return m.Title + " (" + y + ")"
	}
	return m.Title
}
