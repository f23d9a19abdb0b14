package actions

import (
	"context"

	"github.com/glefebvre/mediadesk/internal/bulk"
	apperrors "github.com/glefebvre/mediadesk/internal/errors"
	"github.com/glefebvre/mediadesk/internal/models"
	"github.com/glefebvre/mediadesk/internal/picker"
)

// ReasonIncompleteEpisode marks files without a usable season, episode or show
const ReasonIncompleteEpisode = "season or episode unknown"

// Files handles the actions of the video file table
type Files struct {
	deps Deps
}

// NewFiles creates the file action controller
func NewFiles(d Deps) *Files {
	return &Files{deps: d.withDefaults()}
}

// Delete removes every file after one confirmation. A refusal skips them all.
func (f *Files) Delete(ctx context.Context, ids []int, confirm Confirmer) (bulk.Result, error) {
	if len(ids) == 0 {
		return bulk.Result{}, nil
	}
	ok, err := confirm.Confirm(ctx, "Delete the selected files?")
	if err != nil {
		return bulk.Result{}, err
	}
	if !ok {
		return skipAll(ids, picker.ReasonCancel), nil
	}
	return f.deps.Runner.Run(ctx, ids, f.deps.Client.DeleteVideo), nil
}

// Homogeneous returns the media type shared by every video, or a
// validation error when the selection mixes movies and episodes.
func Homogeneous(videos []models.Video) (models.MediaType, error) {
	if len(videos) == 0 {
		return 0, apperrors.ValidationError("empty selection")
	}
	kind := videos[0].MediaType
	for _, v := range videos[1:] {
		if v.MediaType != kind {
			return 0, apperrors.ValidationError("selection incompatible").
				WithContext("video_id", v.ID).
				WithContext("media_type", v.MediaType.String()).
				WithContext("expected", kind.String())
		}
	}
	return kind, nil
}

// Edit reassigns the metadata of a homogeneous selection. Movies get one
// search per file; episodes get a single show search for the batch and
// files without a season and episode are skipped.
func (f *Files) Edit(ctx context.Context, videos []models.Video) (bulk.Result, error) {
	if len(videos) == 0 {
		return bulk.Result{}, nil
	}
	kind, err := Homogeneous(videos)
	if err != nil {
		return bulk.Result{}, err
	}

	switch kind {
	case models.MediaTypeMovie:
		return f.editMovies(ctx, videos)
	case models.MediaTypeTV:
		return f.editEpisodes(ctx, videos)
	}
	return bulk.Result{}, apperrors.ValidationError("unsupported media type").
		WithContext("media_type", int(kind))
}

func (f *Files) editMovies(ctx context.Context, videos []models.Video) (bulk.Result, error) {
	type pick struct {
		videoID int
		movieID int
	}

	var picks []pick
	var res bulk.Result
	for _, v := range videos {
		out, err := f.deps.Picker.PickMovie(ctx, v)
		if err != nil {
			res.Failed = append(res.Failed, bulk.Failure{ID: v.ID, Err: err})
			continue
		}
		movieID, ok := out.Value()
		if !ok {
			res.Skipped = append(res.Skipped, bulk.Skip{ID: v.ID, Reason: out.Reason()})
			continue
		}
		picks = append(picks, pick{videoID: v.ID, movieID: movieID})
	}

	sent := bulk.Each(ctx, f.deps.Runner, picks,
		func(p pick) int { return p.videoID },
		func(ctx context.Context, p pick) error {
			return f.deps.Client.AssignMovie(ctx, p.videoID, models.MovieAssignment{MovieID: p.movieID})
		})
	return res.Merge(sent), nil
}

func (f *Files) editEpisodes(ctx context.Context, videos []models.Video) (bulk.Result, error) {
	out, err := f.deps.Picker.PickTV(ctx, videos)
	if err != nil {
		return bulk.Result{}, err
	}
	tags, ok := out.Value()
	if !ok {
		ids := make([]int, len(videos))
		for i, v := range videos {
			ids[i] = v.ID
		}
		return skipAll(ids, out.Reason()), nil
	}

	return bulk.Each(ctx, f.deps.Runner, tags,
		func(t models.EpisodeTag) int { return t.Video.ID },
		func(ctx context.Context, t models.EpisodeTag) error {
			if !t.Assignable() {
				return bulk.Skipped(ReasonIncompleteEpisode)
			}
			return f.deps.Client.AssignEpisode(ctx, t.Video.ID, models.EpisodeAssignment{
				TvID:          t.ShowID,
				SeasonNumber:  t.Season,
				EpisodeNumber: t.Episode,
			})
		}), nil
}
