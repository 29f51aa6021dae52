package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/scopogger/healthypdf/version"
)

var (
	cfgFile  string
	homeDir  string
	password string
	verbose  bool
)

var rootCmd = &cobra.Command{
	Use:   "healthypdf",
	Short: "PDF viewer core with background rendering and page editing",
	Long: `healthypdf is the rendering and editing core of a PDF viewer: a
bounded-memory page cache, a viewport-driven render scheduler with
cancellable background workers, and a page edit model that supports
delete, reorder and rotate without touching the source file until save.

The command line exposes the pipeline directly:
  - info    - inspect a document's pages
  - render  - rasterize pages to PNG through the worker pool
  - save    - apply edits and write a new document
  - init    - create the home directory and default config`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.healthypdf/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "healthypdf home directory (default: ~/.healthypdf)",
	)
	rootCmd.PersistentFlags().StringVar(
		&password, "password", "", "password for encrypted documents",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false, "enable debug logging",
	)

	rootCmd.AddCommand(versionCmd)
}

// newLogger builds the command logger honoring --verbose.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}
