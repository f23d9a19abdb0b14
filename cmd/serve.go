package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/glefebvre/mediadesk/internal/api"
	"github.com/glefebvre/mediadesk/internal/database"
	"github.com/glefebvre/mediadesk/internal/shutdown"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the table and action controllers to the browser front end",
	Long: `Start the view server. It exposes the entity tables, the search workflows,
the recent collections and the editing actions as JSON under /view/v1.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		timeout, _ := cmd.Flags().GetDuration("shutdown-timeout")

		a, err := newApp()
		if err != nil {
			return err
		}

		srv := api.NewServer(api.Config{
			Port:           a.cfg.View.Port,
			AllowedOrigins: a.cfg.View.AllowedOrigins,
			Table:          a.tableOptions(),
			FilePageFloor:  a.cfg.Table.FilePageFloor,
		}, api.Deps{
			Client: a.client,
			Search: a.search,
			DB:     a.db,
			Recent: a.recent,
			Runner: a.runner,
			Logger: a.log,
		})

		handler := shutdown.New(timeout, a.log)
		handler.Register("preference store", func(context.Context) error {
			return database.Close(a.db)
		})
		handler.Register("view server", srv.Shutdown)

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		runErr := make(chan error, 1)
		go func() {
			err := srv.Run()
			if err != nil && !handler.IsShuttingDown() {
				a.log.Error("view server stopped", err)
			}
			runErr <- err
			cancel()
		}()

		if err := handler.Wait(ctx); err != nil {
			return err
		}
		select {
		case err := <-runErr:
			return err
		case <-time.After(timeout):
			return nil
		}
	},
}

func init() {
	serveCmd.Flags().Duration("shutdown-timeout", 10*time.Second, "time allowed for in-flight requests on shutdown")
}
