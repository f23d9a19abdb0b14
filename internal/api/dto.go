package api

import (
	"github.com/glefebvre/mediadesk/internal/bulk"
	"github.com/glefebvre/mediadesk/internal/models"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string                 `json:"error"`
	Message   string                 `json:"message"`
	Context   map[string]interface{} `json:"context,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// TableStateRequest changes the filters and order of a table. Absent fields
// are left unchanged.
type TableStateRequest struct {
	Search *string `json:"search,omitempty"`
	Facet  *string `json:"facet,omitempty"`
	Order  *string `json:"order,omitempty"`
}

// SortRequest sorts a table by a field, toggling on repeat
type SortRequest struct {
	Field string `json:"field" binding:"required"`
}

// ScrollRequest reports the browser scroll position
type ScrollRequest struct {
	ScrollY        int `json:"scroll_y" binding:"gte=0"`
	ViewportHeight int `json:"viewport_height" binding:"gte=0"`
	DocumentHeight int `json:"document_height" binding:"gte=0"`
}

// ScrollResponse tells the browser whether more rows are available
type ScrollResponse struct {
	Grew     bool `json:"grew"`
	PageSize int  `json:"page_size"`
}

// TableResponse is a table snapshot plus the pending scroll reset
type TableResponse struct {
	Name        string      `json:"name"`
	Rows        interface{} `json:"rows"`
	Total       int         `json:"total"`
	Matches     int         `json:"matches"`
	PageSize    int         `json:"page_size"`
	HasMore     bool        `json:"has_more"`
	Search      string      `json:"search"`
	Facet       string      `json:"facet"`
	Facets      []string    `json:"facets"`
	Order       string      `json:"order"`
	ScrollToTop bool        `json:"scroll_to_top"`
}

// WatchedRequest is the body of the watched toggle
type WatchedRequest struct {
	Watched *bool `json:"watched" binding:"required"`
}

// WatchedResponse returns the icon matching the new state
type WatchedResponse struct {
	Watched bool   `json:"watched"`
	Icon    string `json:"icon"`
}

// EditMovieRequest attaches videos to one movie
type EditMovieRequest struct {
	VideoIDs []int `json:"video_ids" binding:"required,min=1,dive,gt=0"`
	MovieID  int   `json:"movie_id"`
}

// CollectionChoiceRequest adds an entity to a collection
type CollectionChoiceRequest struct {
	CollectionID int `json:"collection_id"`
}

// OutcomeResponse reports a picker outcome
type OutcomeResponse struct {
	Confirmed bool        `json:"confirmed"`
	Reason    string      `json:"reason,omitempty"`
	Value     interface{} `json:"value,omitempty"`
}

// DeleteFilesRequest deletes files already confirmed by the browser
type DeleteFilesRequest struct {
	IDs []int `json:"ids" binding:"required,min=1,dive,gt=0"`
}

// EditFilesRequest reassigns metadata. Movies maps a video id to the chosen
// movie id; ShowID applies to an episode batch.
type EditFilesRequest struct {
	VideoIDs []int       `json:"video_ids" binding:"required,min=1,dive,gt=0"`
	Movies   map[int]int `json:"movies,omitempty"`
	ShowID   int         `json:"show_id,omitempty"`
}

// CreateCollectionRequest creates a collection
type CreateCollectionRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// PickerResponse feeds the collection picker dialog
type PickerResponse struct {
	Recent      []models.RecentCollection `json:"recent"`
	Collections []models.Collection       `json:"collections"`
}

// FailureResponse is one failed item of a batch
type FailureResponse struct {
	ID    int    `json:"id"`
	Error string `json:"error"`
}

// ResultResponse is the aggregated outcome of a batch
type ResultResponse struct {
	Succeeded []int             `json:"succeeded"`
	Failed    []FailureResponse `json:"failed"`
	Skipped   []bulk.Skip       `json:"skipped"`
}

func newResultResponse(r bulk.Result) ResultResponse {
	resp := ResultResponse{
		Succeeded: r.Succeeded,
		Failed:    make([]FailureResponse, 0, len(r.Failed)),
		Skipped:   r.Skipped,
	}
	if resp.Succeeded == nil {
		resp.Succeeded = []int{}
	}
	if resp.Skipped == nil {
		resp.Skipped = []bulk.Skip{}
	}
	for _, f := range r.Failed {
		resp.Failed = append(resp.Failed, FailureResponse{ID: f.ID, Error: f.Err.Error()})
	}
	return resp
}
