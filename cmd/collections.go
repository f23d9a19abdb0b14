package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glefebvre/mediadesk/internal/actions"
	"github.com/glefebvre/mediadesk/internal/models"
	"github.com/glefebvre/mediadesk/internal/picker"
)

var collectionsCmd = &cobra.Command{
	Use:   "collections",
	Short: "List and create collections",
}

var collectionsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a collection, prompting for the name when --name is omitted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		description, _ := cmd.Flags().GetString("description")

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		var out picker.Outcome[models.NewCollection]
		if name != "" {
			out, err = picker.NewCollectionForm(a.search).Submit(cmd.Context(), name, description)
		} else {
			out, err = actions.NewCollections(a.actionDeps()).Create(cmd.Context())
		}
		if err != nil {
			return err
		}

		if c, ok := out.Value(); ok {
			fmt.Fprintf(cmd.OutOrStdout(), "collection %q created\n", c.Name)
			return nil
		}
		printOutcome(cmd.OutOrStdout(), "collection", out)
		return nil
	},
}

var collectionsRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "Show the recently used collections, most recent first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		recent := a.recent.Load(cmd.Context())
		if len(recent) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no recent collection")
			return nil
		}
		for i := len(recent) - 1; i >= 0; i-- {
			fmt.Fprintf(cmd.OutOrStdout(), "%6d %s\n", recent[i].ID, recent[i].Name)
		}
		return nil
	},
}

func init() {
	collectionsCreateCmd.Flags().String("name", "", "collection name")
	collectionsCreateCmd.Flags().String("description", "", "collection description")

	collectionsCmd.AddCommand(listCommand(collectionKind), collectionsCreateCmd, collectionsRecentCmd)
}
