package mediaserver

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/glefebvre/mediadesk/internal/models"
)

// SearchMovies returns candidate movies for a free-text query
func (c *Client) SearchMovies(ctx context.Context, query string) ([]models.Movie, error) {
	var resp models.SearchResults[models.Movie]
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/api/moviesearch",
		query:  url.Values{"query": {query}},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return nonNil(resp.Results), nil
}

// SearchTV returns candidate TV shows for a free-text query
func (c *Client) SearchTV(ctx context.Context, query string) ([]models.TvShow, error) {
	var resp models.SearchResults[models.TvShow]
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/api/tvsearch",
		query:  url.Values{"query": {query}},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return nonNil(resp.Results), nil
}

// ListCollections lists collections. A positive restrict asks the server for
// the restricted listing used by the collection picker.
func (c *Client) ListCollections(ctx context.Context, restrict int) ([]models.Collection, error) {
	r := request{method: http.MethodGet, path: "/api/collection"}
	if restrict > 0 {
		r.query = url.Values{"restrict": {strconv.Itoa(restrict)}}
	}
	var out []models.Collection
	if err := c.do(ctx, r, &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

// CreateCollection creates a collection. The request is never retried.
func (c *Client) CreateCollection(ctx context.Context, in models.NewCollection) error {
	if err := Validate(in); err != nil {
		return err
	}
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   "/api/collection",
		body:   in,
	}, nil)
}

// AddToCollection associates one movie or show with a collection
func (c *Client) AddToCollection(ctx context.Context, collectionID int, m models.CollectionMembership) error {
	if err := Validate(m); err != nil {
		return err
	}
	return c.do(ctx, request{
		method: http.MethodPut,
		path:   fmt.Sprintf("/api/collection/%d", collectionID),
		body:   m,
	}, nil)
}

// ListMovies lists every movie
func (c *Client) ListMovies(ctx context.Context) ([]models.Movie, error) {
	return list[models.Movie](ctx, c, "/api/movie")
}

// ListTV lists every TV show
func (c *Client) ListTV(ctx context.Context) ([]models.TvShow, error) {
	return list[models.TvShow](ctx, c, "/api/tv")
}

// ListPeople lists every person
func (c *Client) ListPeople(ctx context.Context) ([]models.Person, error) {
	return list[models.Person](ctx, c, "/api/person")
}

// ListVideos lists every video file
func (c *Client) ListVideos(ctx context.Context) ([]models.Video, error) {
	return list[models.Video](ctx, c, "/api/video")
}

// UpdateVideo points a video file at a movie (row-level "edit movie")
func (c *Client) UpdateVideo(ctx context.Context, videoID int, a models.MovieAssignment) error {
	if err := Validate(a); err != nil {
		return err
	}
	return c.do(ctx, request{
		method: http.MethodPut,
		path:   fmt.Sprintf("/api/video/%d", videoID),
		body:   a,
	}, nil)
}

// SetWatched updates the watched flag of a movie
func (c *Client) SetWatched(ctx context.Context, movieID int, watched bool) error {
	return c.do(ctx, request{
		method: http.MethodPut,
		path:   fmt.Sprintf("/api/movie/%d", movieID),
		body:   models.WatchedUpdate{Watched: watched},
	}, nil)
}

// AssignMovie reassigns a video file to a movie
func (c *Client) AssignMovie(ctx context.Context, videoID int, a models.MovieAssignment) error {
	return c.editMedia(ctx, videoID, a)
}

// AssignEpisode reassigns a video file to a TV episode
func (c *Client) AssignEpisode(ctx context.Context, videoID int, a models.EpisodeAssignment) error {
	return c.editMedia(ctx, videoID, a)
}

func (c *Client) editMedia(ctx context.Context, videoID int, body interface{}) error {
	if err := Validate(body); err != nil {
		return err
	}
	return c.do(ctx, request{
		method: http.MethodPut,
		path:   fmt.Sprintf("/api/video/%d/edit_media", videoID),
		body:   body,
	}, nil)
}

// DeleteVideo removes a video file
func (c *Client) DeleteVideo(ctx context.Context, videoID int) error {
	return c.do(ctx, request{
		method: http.MethodDelete,
		path:   fmt.Sprintf("/api/video/%d", videoID),
	}, nil)
}

func list[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	var out []T
	if err := c.do(ctx, request{method: http.MethodGet, path: path}, &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

// nonNil turns a JSON null into an empty list
func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
