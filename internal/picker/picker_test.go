package picker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/glefebvre/mediadesk/internal/errors"
	"github.com/glefebvre/mediadesk/internal/logger"
	"github.com/glefebvre/mediadesk/internal/models"
	"github.com/glefebvre/mediadesk/internal/prefs"
	testutil "github.com/glefebvre/mediadesk/internal/testing"
)

type fakeSource struct {
	movies      []models.Movie
	shows       []models.TvShow
	collections []models.Collection
	err         error

	movieQueries []string
	tvQueries    []string
	restricts    []int
	created      []models.NewCollection
}

func (f *fakeSource) SearchMovies(_ context.Context, q string) ([]models.Movie, error) {
	f.movieQueries = append(f.movieQueries, q)
	return f.movies, f.err
}

func (f *fakeSource) SearchTV(_ context.Context, q string) ([]models.TvShow, error) {
	f.tvQueries = append(f.tvQueries, q)
	return f.shows, f.err
}

func (f *fakeSource) ListCollections(_ context.Context, restrict int) ([]models.Collection, error) {
	f.restricts = append(f.restricts, restrict)
	return f.collections, f.err
}

func (f *fakeSource) CreateCollection(_ context.Context, in models.NewCollection) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, in)
	return nil
}

// script answers prompts in order
type script struct {
	inputs   []string
	choices  []int
	confirms []bool
	abortAt  string
	labels   []string
}

func (s *script) Input(_ context.Context, label string) (string, error) {
	s.labels = append(s.labels, label)
	if s.abortAt == "input" || len(s.inputs) == 0 {
		return "", ErrAborted
	}
	v := s.inputs[0]
	s.inputs = s.inputs[1:]
	return v, nil
}

func (s *script) Choose(_ context.Context, _ string, _ []Choice) (int, error) {
	if s.abortAt == "choose" || len(s.choices) == 0 {
		return 0, ErrAborted
	}
	v := s.choices[0]
	s.choices = s.choices[1:]
	return v, nil
}

func (s *script) Confirm(context.Context, string) (bool, error) {
	if len(s.confirms) == 0 {
		return false, ErrAborted
	}
	v := s.confirms[0]
	s.confirms = s.confirms[1:]
	return v, nil
}

func TestOutcome(t *testing.T) {
	ok := Confirmed(7)
	v, confirmed := ok.Value()
	assert.True(t, ok.OK())
	assert.True(t, confirmed)
	assert.Equal(t, 7, v)
	assert.Empty(t, ok.Reason())
	assert.Equal(t, "confirmed", ok.String())

	no := Cancelled[int](ReasonCancel)
	assert.False(t, no.OK())
	assert.Equal(t, "cancel", no.Reason())
	assert.Equal(t, "cancelled: cancel", no.String())
}

func TestMovieSearch(t *testing.T) {
	src := &fakeSource{movies: []models.Movie{{ID: 4, Title: "Heat"}}}
	s := NewMovieSearch(src, models.Video{ID: 1, Path: "/m/heat.mkv"})

	got, err := s.Search(context.Background(), "  ")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, src.movieQueries, "empty query is a no-op")

	got, err = s.Search(context.Background(), "heat")
	require.NoError(t, err)
	assert.Len(t, got, 1)

	assert.Equal(t, ReasonNothingSelected, s.Confirm().Reason())
	s.Select(4)
	id, ok := s.Confirm().Value()
	assert.True(t, ok)
	assert.Equal(t, 4, id)
	assert.Equal(t, ReasonCancel, s.Cancel().Reason())
}

func TestMovieSearch_ErrorKeepsPreviousResults(t *testing.T) {
	src := &fakeSource{movies: []models.Movie{{ID: 4}}}
	s := NewMovieSearch(src, models.Video{})
	_, err := s.Search(context.Background(), "heat")
	require.NoError(t, err)

	src.err = errors.New("down")
	_, err = s.Search(context.Background(), "other")
	require.Error(t, err)
	assert.Len(t, s.Results(), 1)
}

func TestTVSearch_TagsAndConfirm(t *testing.T) {
	src := &fakeSource{shows: []models.TvShow{{ID: 9, Title: "Dark"}}}
	videos := []models.Video{
		{ID: 1, Path: "/tv/Dark.S01E02.mkv"},
		{ID: 2, Path: "/tv/Dark - special.mkv"},
	}
	s := NewTVSearch(src, videos)

	tags := s.Tags()
	require.Len(t, tags, 2)
	assert.Equal(t, 1, tags[0].Season)
	assert.Equal(t, 2, tags[0].Episode)
	assert.Equal(t, -1, tags[1].Season)
	assert.Equal(t, -1, tags[1].Episode)

	assert.Equal(t, ReasonNothingSelected, s.Confirm().Reason())

	s.Select(9)
	out, ok := s.Confirm().Value()
	require.True(t, ok)
	require.Len(t, out, 2)
	for _, tag := range out {
		assert.Equal(t, 9, tag.ShowID)
	}
	assert.Equal(t, 0, s.Tags()[0].ShowID, "confirm returns a copy")
}

func TestCollectionPicker(t *testing.T) {
	db := testutil.TestDB(t)
	recent := prefs.NewRecentCollections(db, logger.Discard())
	src := &fakeSource{collections: []models.Collection{
		{ID: 1, Name: "Noël"},
		{ID: 2, Name: "Westerns"},
	}}
	ctx := context.Background()

	p := NewCollectionPicker(src, recent, logger.Discard())
	require.NoError(t, p.Open(ctx))
	assert.Equal(t, []int{1}, src.restricts)
	assert.Empty(t, p.Recent())

	p.Filter("NOEL")
	require.Len(t, p.Visible(), 1)
	assert.Equal(t, "Noël", p.Visible()[0].Name)

	assert.Equal(t, ReasonNothingSelected, p.Confirm(ctx).Reason())
	p.Select(1, "")
	assert.Equal(t, ReasonNothingSelected, p.Confirm(ctx).Reason())
	assert.Empty(t, recent.Load(ctx), "a rejected outcome is not remembered")

	p.SelectID(1)
	id, ok := p.Confirm(ctx).Value()
	require.True(t, ok)
	assert.Equal(t, 1, id)
	assert.Equal(t, []models.RecentCollection{{ID: 1, Name: "Noël"}}, recent.Load(ctx))
}

func TestCollectionPicker_OpenFailureKeepsRecent(t *testing.T) {
	db := testutil.TestDB(t)
	recent := prefs.NewRecentCollections(db, logger.Discard())
	ctx := context.Background()
	_, err := recent.Remember(ctx, 4, "Westerns")
	require.NoError(t, err)

	src := &fakeSource{err: apperrors.ExternalServiceError("mediaserver", "down", nil)}
	p := NewCollectionPicker(src, recent, logger.Discard())
	require.NoError(t, p.Open(ctx))
	assert.NotNil(t, p.Visible())
	assert.Empty(t, p.Visible())
	assert.Equal(t, []models.RecentCollection{{ID: 4, Name: "Westerns"}}, p.Recent())

	p.SelectID(4)
	id, ok := p.Confirm(ctx).Value()
	require.True(t, ok)
	assert.Equal(t, 4, id)
}

func TestCollectionPicker_OpenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := &fakeSource{err: context.Canceled}
	p := NewCollectionPicker(src, nil, logger.Discard())
	assert.ErrorIs(t, p.Open(ctx), context.Canceled)
}

func TestCollectionForm(t *testing.T) {
	src := &fakeSource{}
	f := NewCollectionForm(src)
	ctx := context.Background()

	_, err := f.Submit(ctx, "   ", "x")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidationError(err))
	assert.Empty(t, src.created)

	out, err := f.Submit(ctx, " Westerns ", "Old west")
	require.NoError(t, err)
	v, ok := out.Value()
	require.True(t, ok)
	assert.Equal(t, models.NewCollection{Name: "Westerns", Description: "Old west"}, v)
	assert.Equal(t, []models.NewCollection{v}, src.created)

	src.err = errors.New("500")
	_, err = f.Submit(ctx, "Other", "")
	assert.Error(t, err, "server failure is an error, not a cancellation")

	assert.Equal(t, ReasonCancel, f.Cancel().Reason())
}

func TestWithSearchCache(t *testing.T) {
	src := &fakeSource{
		movies: []models.Movie{{ID: 1}},
		shows:  []models.TvShow{{ID: 2}},
	}
	cached := WithSearchCache(src, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := cached.SearchMovies(ctx, "heat")
		require.NoError(t, err)
		_, err = cached.SearchTV(ctx, "heat")
		require.NoError(t, err)
	}
	_, err := cached.SearchMovies(ctx, "alien")
	require.NoError(t, err)

	assert.Equal(t, []string{"heat", "alien"}, src.movieQueries)
	assert.Equal(t, []string{"heat"}, src.tvQueries)

	assert.Same(t, src, WithSearchCache(src, 0).(*fakeSource))
}

func TestWithSearchCache_DoesNotCacheFailures(t *testing.T) {
	src := &fakeSource{err: errors.New("down")}
	cached := WithSearchCache(src, time.Minute)

	_, err := cached.SearchMovies(context.Background(), "heat")
	require.Error(t, err)
	src.err = nil
	src.movies = []models.Movie{{ID: 1}}
	got, err := cached.SearchMovies(context.Background(), "heat")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestWorkflow_PickMovie(t *testing.T) {
	src := &fakeSource{movies: []models.Movie{{ID: 4, Title: "Heat", ReleaseDate: "1995-12-15"}}}
	w := NewWorkflow(src, &script{inputs: []string{"heat"}, choices: []int{4}}, nil, logger.Discard())

	out, err := w.PickMovie(context.Background(), models.Video{ID: 1, Path: "/m/heat.mkv"})
	require.NoError(t, err)
	id, ok := out.Value()
	assert.True(t, ok)
	assert.Equal(t, 4, id)
}

func TestWorkflow_PickMovieLabel(t *testing.T) {
	tests := []struct {
		name  string
		video models.Video
		want  string
	}{
		{"path known", models.Video{ID: 1, Path: "/m/Heat (1995).mkv"}, "Search movie for Heat (1995).mkv"},
		{"path unknown", models.Video{ID: 7}, "Search movie for video 7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prompts := &script{abortAt: "input"}
			w := NewWorkflow(&fakeSource{}, prompts, nil, logger.Discard())
			_, err := w.PickMovie(context.Background(), tt.video)
			require.NoError(t, err)
			assert.Equal(t, []string{tt.want}, prompts.labels)
		})
	}
}

func TestWorkflow_PickMovieCancelAndNothing(t *testing.T) {
	src := &fakeSource{}
	w := NewWorkflow(src, &script{abortAt: "input"}, nil, logger.Discard())
	out, err := w.PickMovie(context.Background(), models.Video{})
	require.NoError(t, err)
	assert.Equal(t, ReasonCancel, out.Reason())

	w = NewWorkflow(src, &script{inputs: []string{""}}, nil, logger.Discard())
	out, err = w.PickMovie(context.Background(), models.Video{})
	require.NoError(t, err)
	assert.Equal(t, ReasonNothingSelected, out.Reason())

	src.movies = []models.Movie{{ID: 3}}
	w = NewWorkflow(src, &script{inputs: []string{"x"}, choices: []int{0}}, nil, logger.Discard())
	out, err = w.PickMovie(context.Background(), models.Video{})
	require.NoError(t, err)
	assert.Equal(t, ReasonNothingSelected, out.Reason())
}

func TestWorkflow_PickMovieSearchError(t *testing.T) {
	src := &fakeSource{err: errors.New("down")}
	w := NewWorkflow(src, &script{inputs: []string{"heat"}}, nil, logger.Discard())
	_, err := w.PickMovie(context.Background(), models.Video{})
	assert.Error(t, err)
}

func TestWorkflow_PickTVRetriesEmptyResults(t *testing.T) {
	src := &fakeSource{}
	p := &script{inputs: []string{"drk", "dark"}, choices: []int{9}}
	w := NewWorkflow(src, p, nil, logger.Discard())

	// the first search returns nothing, the second finds the show
	calls := 0
	w.src = &sequencedTV{fakeSource: src, answers: [][]models.TvShow{{}, {{ID: 9, Title: "Dark"}}}, calls: &calls}

	out, err := w.PickTV(context.Background(), []models.Video{{ID: 1, Path: "Dark.s02e05.mkv"}})
	require.NoError(t, err)
	tags, ok := out.Value()
	require.True(t, ok)
	assert.Equal(t, 2, calls)
	assert.Equal(t, models.EpisodeTag{Video: models.Video{ID: 1, Path: "Dark.s02e05.mkv"}, Season: 2, Episode: 5, ShowID: 9}, tags[0])
}

type sequencedTV struct {
	*fakeSource
	answers [][]models.TvShow
	calls   *int
}

func (s *sequencedTV) SearchTV(_ context.Context, _ string) ([]models.TvShow, error) {
	a := s.answers[*s.calls]
	*s.calls++
	return a, nil
}

func TestWorkflow_PickCollection(t *testing.T) {
	db := testutil.TestDB(t)
	recent := prefs.NewRecentCollections(db, logger.Discard())
	ctx := context.Background()
	_, err := recent.Remember(ctx, 2, "Westerns")
	require.NoError(t, err)

	src := &fakeSource{collections: []models.Collection{{ID: 1, Name: "Noël"}, {ID: 2, Name: "Westerns"}}}
	w := NewWorkflow(src, &script{inputs: []string{""}, choices: []int{1}}, recent, logger.Discard())

	out, err := w.PickCollection(ctx)
	require.NoError(t, err)
	id, ok := out.Value()
	require.True(t, ok)
	assert.Equal(t, 1, id)
	assert.Equal(t, []models.RecentCollection{{ID: 2, Name: "Westerns"}, {ID: 1, Name: "Noël"}}, recent.Load(ctx))

	w = NewWorkflow(src, &script{inputs: []string{""}, abortAt: "choose"}, recent, logger.Discard())
	out, err = w.PickCollection(ctx)
	require.NoError(t, err)
	assert.Equal(t, ReasonCancel, out.Reason())
}

func TestWorkflow_CreateCollection(t *testing.T) {
	src := &fakeSource{}
	w := NewWorkflow(src, &script{inputs: []string{"Westerns", "Old west"}}, nil, logger.Discard())
	out, err := w.CreateCollection(context.Background())
	require.NoError(t, err)
	assert.True(t, out.OK())
	require.Len(t, src.created, 1)

	w = NewWorkflow(src, &script{abortAt: "input"}, nil, logger.Discard())
	out, err = w.CreateCollection(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ReasonCancel, out.Reason())
	assert.Len(t, src.created, 1)
}

func TestCollectionChoices(t *testing.T) {
	choices := CollectionChoices(
		[]models.RecentCollection{{ID: 1, Name: "A"}, {ID: 3, Name: "C"}},
		[]models.Collection{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}, {ID: 3, Name: "C"}},
	)
	assert.Equal(t, []Choice{
		{ID: 3, Label: "C (recent)"},
		{ID: 1, Label: "A (recent)"},
		{ID: 2, Label: "B"},
	}, choices)
}

func TestPreset(t *testing.T) {
	src := &fakeSource{collections: []models.Collection{{ID: 5, Name: "Five"}}}
	p := NewPreset(src, nil, logger.Discard())
	p.Movies[1] = 40
	p.ShowID = 9
	p.CollectionID = 5
	ctx := context.Background()

	out, err := p.PickMovie(ctx, models.Video{ID: 1})
	require.NoError(t, err)
	assert.True(t, out.OK())

	out, err = p.PickMovie(ctx, models.Video{ID: 2})
	require.NoError(t, err)
	assert.Equal(t, ReasonNothingSelected, out.Reason())

	tv, err := p.PickTV(ctx, []models.Video{{ID: 1, Path: "x.S01E01.mkv"}})
	require.NoError(t, err)
	tags, _ := tv.Value()
	assert.Equal(t, 9, tags[0].ShowID)

	c, err := p.PickCollection(ctx)
	require.NoError(t, err)
	id, _ := c.Value()
	assert.Equal(t, 5, id)

	p.CollectionID = 99
	c, err = p.PickCollection(ctx)
	require.NoError(t, err)
	assert.Equal(t, ReasonNothingSelected, c.Reason())
}
