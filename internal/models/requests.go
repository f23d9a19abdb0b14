package models

// SearchResults wraps the candidates returned by the search endpoints
type SearchResults[T any] struct {
	Results []T `json:"results"`
}

// WatchedUpdate is the body of PUT /api/movie/{id}
type WatchedUpdate struct {
	Watched bool `json:"watched"`
}

// MovieAssignment attaches a video file to a movie
type MovieAssignment struct {
	MovieID int `json:"movie_id" validate:"gt=0"`
}

// EpisodeAssignment attaches a video file to a TV episode
type EpisodeAssignment struct {
	TvID          int `json:"tv_id" validate:"gt=0"`
	SeasonNumber  int `json:"season_number" validate:"gte=0"`
	EpisodeNumber int `json:"episode_number" validate:"gte=0"`
}

// CollectionMembership associates one movie or one show with a collection
type CollectionMembership struct {
	MovieID *int `json:"movie_id,omitempty" validate:"required_without=TvID,excluded_with=TvID"`
	TvID    *int `json:"tv_id,omitempty" validate:"required_without=MovieID"`
}

// MovieMembership builds a membership request for a movie
func MovieMembership(movieID int) CollectionMembership {
	return CollectionMembership{MovieID: &movieID}
}

// ShowMembership builds a membership request for a TV show
func ShowMembership(tvID int) CollectionMembership {
	return CollectionMembership{TvID: &tvID}
}

// NewCollection is the body of POST /api/collection
type NewCollection struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"max=4096"`
}
