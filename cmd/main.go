package main

import (
	"fmt"
	"os"

	"github.com/glefebvre/mediadesk/internal/config"
	apperrors "github.com/glefebvre/mediadesk/internal/errors"
	"github.com/glefebvre/mediadesk/internal/logger"
	"github.com/spf13/cobra"
)

const version = "v0.1.0"

var rootCmd = &cobra.Command{
	Use:   "mediadesk",
	Short: "mediadesk browses and edits a personal media server library",
	Long: `mediadesk lists the movies, shows, people, collections and video files of a
media server, and runs the editing workflows: watched flag, file deletion,
metadata reassignment and collections.

The same controllers are served as JSON to the browser front end by "mediadesk serve".`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of mediadesk",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("mediadesk " + version)
	},
}

var configFile string

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is ./config.yml)")
	cobra.OnInitialize(initConfig)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(moviesCmd, tvCmd, peopleCmd, collectionsCmd, filesCmd)
	rootCmd.AddCommand(serveCmd)
}

func initConfig() {
	// Skip config loading for version command
	if len(os.Args) > 1 && os.Args[1] == "version" {
		return
	}

	if err := config.LoadFile(configFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	cfg := config.Get()
	logger.InitializeLoggersWithFormat(cfg.GetAppLogLevel(), cfg.GetStoreLogLevel(), cfg.Logging.Format)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode is 2 for bad input (ids, names, mixed selections) and 1 otherwise
func exitCode(err error) int {
	if apperrors.IsValidationError(err) {
		return 2
	}
	return 1
}
