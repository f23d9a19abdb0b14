package main

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/glefebvre/mediadesk/internal/actions"
	apperrors "github.com/glefebvre/mediadesk/internal/errors"
	"github.com/glefebvre/mediadesk/internal/models"
)

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "List, delete and reassign video files",
}

var filesDeleteCmd = &cobra.Command{
	Use:   "delete <video-id>...",
	Short: "Delete video files after confirmation",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		var confirm actions.Confirmer = a.prompter
		if yes {
			confirm = actions.Approved
		}

		res, err := actions.NewFiles(a.actionDeps()).Delete(cmd.Context(), ids, confirm)
		if err != nil {
			return err
		}
		return printResult(cmd.OutOrStdout(), res)
	},
}

var filesEditCmd = &cobra.Command{
	Use:   "edit <video-id>...",
	Short: "Reassign the movie or episode of video files",
	Long: `Reassign metadata of a selection of video files. Movie files are searched one
by one. TV files share one show search, season and episode come from the file
names; files whose season or episode cannot be derived are skipped.

The selection must contain a single media type.`,
	Args: cobra.MinimumNArgs(1),
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

		res, err := actions.NewFiles(a.actionDeps()).Edit(cmd.Context(), videos)
		if err != nil {
			return err
		}
		return printResult(cmd.OutOrStdout(), res)
	},
}

// selectVideos resolves ids against the video list, keeping the given order
func selectVideos(ctx context.Context, a *app, ids []int) ([]models.Video, error) {
	all, err := a.client.ListVideos(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[int]models.Video, len(all))
	for _, v := range all {
		byID[v.ID] = v
	}

	selected := make([]models.Video, 0, len(ids))
	for _, id := range ids {
		v, ok := byID[id]
		if !ok {
			return nil, apperrors.NotFoundError("video", strconv.Itoa(id))
		}
		selected = append(selected, v)
	}
	return selected, nil
}

func init() {
	filesDeleteCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")

	filesCmd.AddCommand(listCommand(videoKind), filesDeleteCmd, filesEditCmd)
}
