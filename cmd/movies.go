package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glefebvre/mediadesk/internal/actions"
)

var moviesCmd = &cobra.Command{
	Use:   "movies",
	Short: "List and edit movies",
}

var tvCmd = &cobra.Command{
	Use:   "tv",
	Short: "List TV shows and add them to collections",
}

var peopleCmd = &cobra.Command{
	Use:   "people",
	Short: "List people",
}

var movieWatchedCmd = &cobra.Command{
	Use:   "watched <movie-id>",
	Short: "Mark a movie as watched, or unwatched with --off",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		off, _ := cmd.Flags().GetBool("off")
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if err := actions.NewMovies(a.actionDeps()).SetWatched(cmd.Context(), ids[0], !off); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "movie %d: %s\n", ids[0], actions.WatchedIcon(!off))
		return nil
	},
}

var movieCollectionCmd = &cobra.Command{
	Use:   "add-to-collection <movie-id>",
	Short: "Pick a collection and add the movie to it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		out, err := actions.NewMovies(a.actionDeps()).AddToCollection(cmd.Context(), ids[0])
		if err != nil {
			return err
		}
		printOutcome(cmd.OutOrStdout(), "collection", out)
		return nil
	},
}

var movieEditCmd = &cobra.Command{
	Use:   "edit <video-id>...",
	Short: "Search a movie once and attach it to every given video file",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		videos, err := selectVideos(cmd.Context(), a, ids)
		if err != nil {
			return err
		}

		res, err := actions.NewMovies(a.actionDeps()).EditMovie(cmd.Context(), videos)
		if err != nil {
			return err
		}
		return printResult(cmd.OutOrStdout(), res)
	},
}

var showCollectionCmd = &cobra.Command{
	Use:   "add-to-collection <tv-id>",
	Short: "Pick a collection and add the show to it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		out, err := actions.NewShows(a.actionDeps()).AddToCollection(cmd.Context(), ids[0])
		if err != nil {
			return err
		}
		printOutcome(cmd.OutOrStdout(), "collection", out)
		return nil
	},
}

func init() {
	movieWatchedCmd.Flags().Bool("off", false, "mark as not watched")

	moviesCmd.AddCommand(listCommand(movieKind), movieWatchedCmd, movieCollectionCmd, movieEditCmd)
	tvCmd.AddCommand(listCommand(showKind), showCollectionCmd)
	peopleCmd.AddCommand(listCommand(personKind))
}
