package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/glefebvre/mediadesk/internal/actions"
	"github.com/glefebvre/mediadesk/internal/bulk"
	"github.com/glefebvre/mediadesk/internal/logger"
	"github.com/glefebvre/mediadesk/internal/models"
	"github.com/glefebvre/mediadesk/internal/picker"
	"github.com/glefebvre/mediadesk/internal/prefs"
	"github.com/glefebvre/mediadesk/internal/table"
)

// MediaServer is the media server API used by the view server.
// *mediaserver.Client satisfies it.
type MediaServer interface {
	table.Source
	picker.Source
	actions.Client
}

// Config holds view server settings
type Config struct {
	Port           int
	AllowedOrigins []string
	Table          table.Options
	FilePageFloor  int
}

// Deps are the collaborators of the view server
type Deps struct {
	Client MediaServer
	// Search answers the picker searches, usually a cached wrapper of Client
	Search picker.Source
	DB     *gorm.DB
	Recent *prefs.RecentCollections
	Runner *bulk.Runner
	Logger *logger.Logger
}

// Tables are the table controllers of the server. There is one set per
// server, not per browser session: every client sees the same search, facet,
// sort and page size, and a change made by one client is what the next
// snapshot returns to all of them. A scroll-to-top reset is reported once,
// to whichever client polls the table first. Run one front end per server.
type Tables struct {
	Movies      *table.Controller[models.Movie]
	Shows       *table.Controller[models.TvShow]
	People      *table.Controller[models.Person]
	Collections *table.Controller[models.Collection]
	Files       *table.Controller[models.Video]
}

// Server represents the view server
type Server struct {
	router *gin.Engine
	http   *http.Server
	cfg    Config
	deps   Deps
	logger *logger.Logger
	tables Tables
}

// scrollFlag is the Viewport of a browser table: a reset is remembered and
// handed to the next snapshot, whichever client asks for it.
type scrollFlag struct {
	pending atomic.Bool
}

func (f *scrollFlag) ScrollToTop() { f.pending.Store(true) }

func (f *scrollFlag) take() bool { return f.pending.Swap(false) }

// NewServer creates a new view server instance
func NewServer(cfg Config, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = logger.AppLogger()
	}
	if deps.Search == nil {
		deps.Search = deps.Client
	}
	if deps.Runner == nil {
		deps.Runner = bulk.NewRunner(0, deps.Logger)
	}

	router := gin.New()
	router.Use(
		requestIDMiddleware(),
		loggingMiddleware(deps.Logger),
		errorHandlerMiddleware(deps.Logger),
		corsMiddleware(cfg.AllowedOrigins),
	)

	s := &Server{
		router: router,
		cfg:    cfg,
		deps:   deps,
		logger: deps.Logger,
	}

	s.setupRoutes()

	return s
}

// Handler returns the HTTP handler, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// Tables returns the table controllers
func (s *Server) Tables() Tables {
	return s.tables
}

// Run starts the view server on the configured port. It returns nil once
// Shutdown has been called.
func (s *Server) Run() error {
	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.WithFields(map[string]interface{}{"port": s.cfg.Port}).Info("view server listening")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func (s *Server) tableOptions(floor int) (table.Options, *scrollFlag) {
	flag := &scrollFlag{}
	opts := s.cfg.Table
	opts.Viewport = flag
	opts.Logger = s.logger
	if floor > 0 {
		opts.PageFloor = floor
	}
	return opts, flag
}

func (s *Server) setupRoutes() {
	// Health check endpoint
	s.router.GET("/health", s.healthCheck)

	v1 := s.router.Group("/view/v1")

	// Tables
	movieOpts, movieFlag := s.tableOptions(0)
	s.tables.Movies = table.Movies(s.deps.Client, movieOpts)
	registerTable(v1.Group("/tables/movies"), s.tables.Movies, movieFlag, identity[models.Movie])

	showOpts, showFlag := s.tableOptions(0)
	s.tables.Shows = table.Shows(s.deps.Client, showOpts)
	registerTable(v1.Group("/tables/tv"), s.tables.Shows, showFlag, identity[models.TvShow])

	peopleOpts, peopleFlag := s.tableOptions(0)
	s.tables.People = table.People(s.deps.Client, peopleOpts)
	registerTable(v1.Group("/tables/people"), s.tables.People, peopleFlag, identity[models.Person])

	collOpts, collFlag := s.tableOptions(0)
	s.tables.Collections = table.Collections(s.deps.Client, collOpts)
	registerTable(v1.Group("/tables/collections"), s.tables.Collections, collFlag, identity[models.Collection])

	fileOpts, fileFlag := s.tableOptions(s.cfg.FilePageFloor)
	if s.cfg.FilePageFloor <= 0 {
		fileOpts.PageFloor = 0
	}
	s.tables.Files = table.Files(s.deps.Client, fileOpts)
	registerTable(v1.Group("/tables/files"), s.tables.Files, fileFlag, table.FileRows)

	// Search-and-select
	v1.GET("/search/movies", s.searchMovies)
	v1.GET("/search/tv", s.searchTV)
	v1.GET("/collections/picker", s.collectionPicker)
	v1.GET("/collections/recent", s.recentCollections)
	v1.POST("/collections", s.createCollection)

	// Actions
	v1.PUT("/movies/:id/watched", s.setWatched)
	v1.POST("/movies/edit", s.editMovie)
	v1.POST("/movies/:id/collection", s.addMovieToCollection)
	v1.POST("/tv/:id/collection", s.addShowToCollection)
	v1.POST("/files/delete", s.deleteFiles)
	v1.POST("/files/edit", s.editFiles)
}
