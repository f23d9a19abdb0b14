package actions

import (
	"context"

	"github.com/glefebvre/mediadesk/internal/bulk"
	"github.com/glefebvre/mediadesk/internal/logger"
	"github.com/glefebvre/mediadesk/internal/models"
	"github.com/glefebvre/mediadesk/internal/picker"
)

// Client is the mutation half of the media server API.
// *mediaserver.Client satisfies it.
type Client interface {
	SetWatched(ctx context.Context, movieID int, watched bool) error
	UpdateVideo(ctx context.Context, videoID int, a models.MovieAssignment) error
	AssignMovie(ctx context.Context, videoID int, a models.MovieAssignment) error
	AssignEpisode(ctx context.Context, videoID int, a models.EpisodeAssignment) error
	DeleteVideo(ctx context.Context, videoID int) error
	AddToCollection(ctx context.Context, collectionID int, m models.CollectionMembership) error
}

// Confirmer asks the user before a destructive action
type Confirmer interface {
	Confirm(ctx context.Context, question string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer
type ConfirmFunc func(ctx context.Context, question string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, question string) (bool, error) {
	return f(ctx, question)
}

// Approved is a Confirmer that always agrees, for hosts where the user
// already confirmed (--yes, or the browser dialog).
var Approved Confirmer = ConfirmFunc(func(context.Context, string) (bool, error) { return true, nil })

// Deps are shared by every action controller
type Deps struct {
	Client Client
	Picker picker.Picker
	Runner *bulk.Runner
	Logger *logger.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = logger.AppLogger()
	}
	if d.Runner == nil {
		d.Runner = bulk.NewRunner(0, d.Logger)
	}
	return d
}

// skipAll reports every id as skipped for reason
func skipAll(ids []int, reason string) bulk.Result {
	var res bulk.Result
	for _, id := range ids {
		res.Skipped = append(res.Skipped, bulk.Skip{ID: id, Reason: reason})
	}
	return res
}

// addToCollection runs the collection picker then the membership mutation
func addToCollection(ctx context.Context, d Deps, m models.CollectionMembership, fields map[string]interface{}) (picker.Outcome[int], error) {
	out, err := d.Picker.PickCollection(ctx)
	if err != nil {
		return out, err
	}
	collectionID, ok := out.Value()
	if !ok {
		d.Logger.WithFields(fields).DebugContext(ctx, "add to collection cancelled: "+out.Reason())
		return out, nil
	}

	fields["collection_id"] = collectionID
	if err := d.Client.AddToCollection(ctx, collectionID, m); err != nil {
		d.Logger.WithFields(fields).ErrorContext(ctx, "failed to add to collection", err)
		return out, err
	}
	d.Logger.WithFields(fields).InfoContext(ctx, "added to collection")
	return out, nil
}
