package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/philipparndt/meshclean/version"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "meshclean",
	Short: "Removes loose support structures from 3D print meshes",
	Long: `meshclean splits a triangle mesh into its connected components and keeps
exactly one, dropping the support structures, brims and debris that slicers
leave attached as separate shells. It reads and writes STL, PLY and OBJ
files, plain or gzipped, from local directories or S3-compatible storage.`,
	Version: version.GetFullVersion(),
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log per-file component details")
}

// newLogger builds the logger the commands thread through the pipeline.
// The default level hides per-file chatter; -v or MESHCLEAN_LOG_LEVEL
// lower it.
func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if raw := os.Getenv("MESHCLEAN_LOG_LEVEL"); raw != "" {
		var parsed slog.Level
		if err := parsed.UnmarshalText([]byte(raw)); err == nil {
			level = parsed
		}
	}
	if verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func main() {
	// A .env beside the process feeds MESHCLEAN_S3_* and
	// MESHCLEAN_LOG_LEVEL in farm deployments.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
