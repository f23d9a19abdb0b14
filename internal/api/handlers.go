package api

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/glefebvre/mediadesk/internal/actions"
	"github.com/glefebvre/mediadesk/internal/circuitbreaker"
	"github.com/glefebvre/mediadesk/internal/database"
	apperrors "github.com/glefebvre/mediadesk/internal/errors"
	"github.com/glefebvre/mediadesk/internal/models"
	"github.com/glefebvre/mediadesk/internal/picker"
)

func statusFor(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.CodeValidation, apperrors.CodeInvalidInput:
		return http.StatusBadRequest
	case apperrors.CodeNotFound:
		return http.StatusNotFound
	case apperrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case apperrors.CodeExternalService, apperrors.CodeServiceUnavailable,
		apperrors.CodeRateLimited, apperrors.CodeMalformedData:
		return http.StatusBadGateway
	case apperrors.CodeServiceTimeout:
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, err error) {
	code := apperrors.GetErrorCode(err)
	resp := ErrorResponse{
		Error:     string(code),
		Message:   err.Error(),
		RequestID: c.GetString("request_id"),
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		resp.Message = appErr.Message
		resp.Context = appErr.Context
	}
	c.JSON(statusFor(code), resp)
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:     string(apperrors.CodeValidation),
		Message:   err.Error(),
		RequestID: c.GetString("request_id"),
	})
}

func outcomeResponse[T any](o picker.Outcome[T]) OutcomeResponse {
	v, ok := o.Value()
	if !ok {
		return OutcomeResponse{Reason: o.Reason()}
	}
	return OutcomeResponse{Confirmed: true, Value: v}
}

func pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		respondError(c, apperrors.ValidationError("invalid id").WithContext("id", c.Param("id")))
		return 0, false
	}
	return id, true
}

func (s *Server) preset() *picker.Preset {
	return picker.NewPreset(s.deps.Search, s.deps.Recent, s.logger)
}

func (s *Server) actionDeps(p picker.Picker) actions.Deps {
	return actions.Deps{
		Client: s.deps.Client,
		Picker: p,
		Runner: s.deps.Runner,
		Logger: s.logger,
	}
}

// breakerReporter is implemented by clients that sit behind a circuit breaker
type breakerReporter interface {
	Breaker() (circuitbreaker.State, uint)
}

func (s *Server) healthCheck(c *gin.Context) {
	if s.deps.DB != nil {
		if err := database.HealthCheck(s.deps.DB); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}
	}

	resp := gin.H{"status": "healthy"}
	if b, ok := s.deps.Client.(breakerReporter); ok {
		state, failures := b.Breaker()
		resp["media_server"] = gin.H{"circuit": state.String(), "failures": failures}
		if state != circuitbreaker.StateClosed {
			resp["status"] = "degraded"
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) searchMovies(c *gin.Context) {
	ms := picker.NewMovieSearch(s.deps.Search, models.Video{})
	movies, err := ms.Search(c.Request.Context(), c.Query("query"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.SearchResults[models.Movie]{Results: movies})
}

func (s *Server) searchTV(c *gin.Context) {
	ts := picker.NewTVSearch(s.deps.Search, nil)
	shows, err := ts.Search(c.Request.Context(), c.Query("query"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.SearchResults[models.TvShow]{Results: shows})
}

func (s *Server) collectionPicker(c *gin.Context) {
	p := picker.NewCollectionPicker(s.deps.Search, s.deps.Recent, s.logger)
	if err := p.Open(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	p.Filter(c.Query("filter"))
	c.JSON(http.StatusOK, PickerResponse{Recent: p.Recent(), Collections: p.Visible()})
}

func (s *Server) recentCollections(c *gin.Context) {
	recent := []models.RecentCollection{}
	if s.deps.Recent != nil {
		recent = s.deps.Recent.Load(c.Request.Context())
	}
	c.JSON(http.StatusOK, recent)
}

func (s *Server) createCollection(c *gin.Context) {
	var req CreateCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	p := s.preset()
	p.Collection = models.NewCollection{Name: req.Name, Description: req.Description}

	out, err := actions.NewCollections(s.actionDeps(p)).Create(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, outcomeResponse(out))
}

func (s *Server) setWatched(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req WatchedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := actions.NewMovies(s.actionDeps(nil)).SetWatched(c.Request.Context(), id, *req.Watched); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, WatchedResponse{Watched: *req.Watched, Icon: actions.WatchedIcon(*req.Watched)})
}

func (s *Server) editMovie(c *gin.Context) {
	var req EditMovieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	p := s.preset()
	p.Movies[req.VideoIDs[0]] = req.MovieID

	res, err := actions.NewMovies(s.actionDeps(p)).EditMovie(c.Request.Context(), s.knownFiles(req.VideoIDs))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newResultResponse(res))
}

func (s *Server) addMovieToCollection(c *gin.Context) {
	s.addToCollection(c, func(a *actions.Deps, id int) (picker.Outcome[int], error) {
		return actions.NewMovies(*a).AddToCollection(c.Request.Context(), id)
	})
}

func (s *Server) addShowToCollection(c *gin.Context) {
	s.addToCollection(c, func(a *actions.Deps, id int) (picker.Outcome[int], error) {
		return actions.NewShows(*a).AddToCollection(c.Request.Context(), id)
	})
}

func (s *Server) addToCollection(c *gin.Context, run func(*actions.Deps, int) (picker.Outcome[int], error)) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req CollectionChoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	p := s.preset()
	p.CollectionID = req.CollectionID

	deps := s.actionDeps(p)
	out, err := run(&deps, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcomeResponse(out))
}

func (s *Server) deleteFiles(c *gin.Context) {
	var req DeleteFilesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	res, err := actions.NewFiles(s.actionDeps(nil)).Delete(c.Request.Context(), req.IDs, actions.Approved)
	if err != nil {
		respondError(c, err)
		return
	}
	// deleted rows leave the loaded table; there is no re-fetch
	if len(res.Succeeded) > 0 {
		s.tables.Files.RemoveFunc(func(v models.Video) bool {
			return slices.Contains(res.Succeeded, v.ID)
		})
	}
	c.JSON(http.StatusOK, newResultResponse(res))
}

func (s *Server) editFiles(c *gin.Context) {
	var req EditFilesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	videos, err := s.selectedFiles(req.VideoIDs)
	if err != nil {
		respondError(c, err)
		return
	}

	p := s.preset()
	for videoID, movieID := range req.Movies {
		p.Movies[videoID] = movieID
	}
	p.ShowID = req.ShowID

	res, err := actions.NewFiles(s.actionDeps(p)).Edit(c.Request.Context(), videos)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newResultResponse(res))
}

// knownFiles resolves ids against the loaded file table, keeping the bare
// id for files the table has not loaded
func (s *Server) knownFiles(ids []int) []models.Video {
	byID := make(map[int]models.Video)
	for _, v := range s.tables.Files.Items() {
		byID[v.ID] = v
	}
	out := make([]models.Video, len(ids))
	for i, id := range ids {
		v, ok := byID[id]
		if !ok {
			v = models.Video{ID: id}
		}
		out[i] = v
	}
	return out
}

// selectedFiles resolves ids against the loaded file table
func (s *Server) selectedFiles(ids []int) ([]models.Video, error) {
	byID := make(map[int]models.Video)
	for _, v := range s.tables.Files.Items() {
		byID[v.ID] = v
	}
	videos := make([]models.Video, 0, len(ids))
	for _, id := range ids {
		v, ok := byID[id]
		if !ok {
			return nil, apperrors.NotFoundError("video", fmt.Sprint(id))
		}
		videos = append(videos, v)
	}
	return videos, nil
}
