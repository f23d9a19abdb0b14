package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/glefebvre/mediadesk/internal/actions"
	"github.com/glefebvre/mediadesk/internal/bulk"
	"github.com/glefebvre/mediadesk/internal/config"
	"github.com/glefebvre/mediadesk/internal/database"
	apperrors "github.com/glefebvre/mediadesk/internal/errors"
	"github.com/glefebvre/mediadesk/internal/logger"
	"github.com/glefebvre/mediadesk/internal/mediaserver"
	"github.com/glefebvre/mediadesk/internal/picker"
	"github.com/glefebvre/mediadesk/internal/prefs"
	"github.com/glefebvre/mediadesk/internal/retry"
	"github.com/glefebvre/mediadesk/internal/table"
	"github.com/glefebvre/mediadesk/internal/terminal"
)

// app holds the collaborators shared by the commands
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	client   *mediaserver.Client
	search   picker.Source
	db       *gorm.DB
	recent   *prefs.RecentCollections
	runner   *bulk.Runner
	prompter *terminal.Prompter
}

// newApp connects the media server client and the preference store. The
// caller must call close.
func newApp() (*app, error) {
	cfg := config.Get()
	log := logger.AppLogger()

	retryCfg := retry.DefaultConfig().WithAttempts(cfg.Server.RetryAttempts)
	client := mediaserver.New(mediaserver.Config{
		BaseURL:     cfg.APIRoot(),
		Timeout:     time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		RetryConfig: &retryCfg,
		Logger:      log,
	})

	db, err := database.Open(cfg.Store, logger.StoreLogger(), cfg.GetStoreLogLevel())
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:      cfg,
		log:      log,
		client:   client,
		search:   picker.WithSearchCache(client, time.Duration(cfg.Search.CacheTTLSeconds)*time.Second),
		db:       db,
		recent:   prefs.NewRecentCollections(db, log),
		runner:   bulk.NewRunner(cfg.Bulk.Concurrency, log).WithProgress(progress(os.Stderr)),
		prompter: terminal.NewPrompter(os.Stdin, os.Stdout),
	}, nil
}

func (a *app) close() {
	if err := database.Close(a.db); err != nil {
		a.log.Error("failed to close preference store", err)
	}
}

// actions wires the action controllers to the terminal workflow
func (a *app) actionDeps() actions.Deps {
	return actions.Deps{
		Client: a.client,
		Picker: picker.NewWorkflow(a.search, a.prompter, a.recent, a.log),
		Runner: a.runner,
		Logger: a.log,
	}
}

func (a *app) tableOptions() table.Options {
	return table.Options{
		PageFloor:       a.cfg.Table.PageFloor,
		PageIncrement:   a.cfg.Table.PageIncrement,
		ScrollThreshold: a.cfg.Table.ScrollThreshold,
		Logger:          a.log,
	}
}

// progress redraws "n/total" on one stderr line while a batch runs
func progress(w io.Writer) func(completed, total int) {
	return func(completed, total int) {
		if total < 2 {
			return
		}
		fmt.Fprintf(w, "\r%d/%d", completed, total)
		if completed == total {
			fmt.Fprintln(w)
		}
	}
}

func parseIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	for _, arg := range args {
		id, err := strconv.Atoi(arg)
		if err != nil || id <= 0 {
			return nil, apperrors.ValidationError(fmt.Sprintf("invalid id %q", arg))
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// printResult writes one line per item and returns the joined failures
func printResult(w io.Writer, res bulk.Result) error {
	for _, id := range res.Succeeded {
		fmt.Fprintf(w, "ok       %d\n", id)
	}
	for _, f := range res.Failed {
		fmt.Fprintf(w, "failed   %d: %v\n", f.ID, f.Err)
	}
	for _, s := range res.Skipped {
		fmt.Fprintf(w, "skipped  %d: %s\n", s.ID, s.Reason)
	}
	fmt.Fprintf(w, "%d succeeded, %d failed, %d skipped\n", len(res.Succeeded), len(res.Failed), len(res.Skipped))
	return res.Err()
}

func printOutcome[T any](w io.Writer, what string, out picker.Outcome[T]) {
	if v, ok := out.Value(); ok {
		fmt.Fprintf(w, "%s: %v\n", what, v)
		return
	}
	fmt.Fprintf(w, "%s cancelled (%s)\n", what, out.Reason())
}
