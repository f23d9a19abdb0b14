package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/glefebvre/mediadesk/internal/models"
	"github.com/glefebvre/mediadesk/internal/parser"
	"github.com/glefebvre/mediadesk/internal/table"
	"github.com/glefebvre/mediadesk/internal/terminal"
)

// tableKind binds a table specialisation to its one-line rendering
type tableKind[T any] struct {
	build  func(table.Source, table.Options) *table.Controller[T]
	render func(T) string
	// floor overrides the configured page floor when positive
	floor func(a *app) int
}

func listCommand[T any](kind tableKind[T]) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List entries with optional search, facet and sort",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			search, _ := cmd.Flags().GetString("search")
			facet, _ := cmd.Flags().GetString("facet")
			order, _ := cmd.Flags().GetString("sort")
			interactive, _ := cmd.Flags().GetBool("interactive")

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			opts := a.tableOptions()
			if kind.floor != nil {
				opts.PageFloor = kind.floor(a)
			}

			var pager *terminal.Pager[T]
			if interactive {
				rows, cols := terminal.Size(os.Stdout)
				pager = terminal.NewPager(os.Stdin, os.Stdout, rows, cols, kind.render)
				opts.Viewport = pager
				// one terminal line is one row
				opts.ScrollThreshold = 1
			}

			ctrl := kind.build(a.client, opts)
			if err := ctrl.Load(cmd.Context()); err != nil {
				return err
			}
			if order != "" {
				if err := ctrl.SetOrder(order); err != nil {
					return err
				}
			}
			ctrl.SetSearch(search)
			ctrl.SetFacet(facet)

			if pager != nil {
				return pager.Run(cmd.Context(), ctrl)
			}

			out := cmd.OutOrStdout()
			for _, item := range ctrl.Visible() {
				fmt.Fprintln(out, kind.render(item))
			}
			fmt.Fprintf(out, "(%d of %d, order %s)\n", len(ctrl.Visible()), ctrl.Matches(), ctrl.OrderValue())
			if ctrl.HasFacet() && facet == "" {
				fmt.Fprintf(out, "facets: %s\n", strings.Join(ctrl.Facets(), ", "))
			}
			return nil
		},
	}

	cmd.Flags().String("search", "", "diacritic-insensitive text filter")
	cmd.Flags().String("facet", "", "exact facet filter (genre, creator)")
	cmd.Flags().String("sort", "", "sort field, prefix with - for descending")
	cmd.Flags().BoolP("interactive", "i", false, "page through the list in the terminal")

	return cmd
}

func renderMovie(m models.Movie) string {
	seen := " "
	if m.Watched {
		seen = "*"
	}
	return fmt.Sprintf("%6d %s %s (%s) %s", m.ID, seen, m.Title, m.Year(), strings.Join(m.Genres, ", "))
}

func renderShow(s models.TvShow) string {
	return fmt.Sprintf("%6d %s %s", s.ID, s.Title, strings.Join(s.Genres, ", "))
}

func renderPerson(p models.Person) string {
	return fmt.Sprintf("%6d %s", p.ID, p.Name)
}

func renderCollection(c models.Collection) string {
	if c.Creator == "" {
		return fmt.Sprintf("%6d %s", c.ID, c.Name)
	}
	return fmt.Sprintf("%6d %s [%s]", c.ID, c.Name, c.Creator)
}

func renderVideo(v models.Video) string {
	info := parser.Info(v)
	if info == "" {
		info = "-"
	}
	return fmt.Sprintf("%6d %-5s %s  %s", v.ID, v.MediaType, parser.FileName(v.Path), info)
}

var (
	movieKind      = tableKind[models.Movie]{build: table.Movies, render: renderMovie}
	showKind       = tableKind[models.TvShow]{build: table.Shows, render: renderShow}
	personKind     = tableKind[models.Person]{build: table.People, render: renderPerson}
	collectionKind = tableKind[models.Collection]{build: table.Collections, render: renderCollection}
	videoKind      = tableKind[models.Video]{
		build:  table.Files,
		render: renderVideo,
		floor:  func(a *app) int { return a.cfg.Table.FilePageFloor },
	}
)
