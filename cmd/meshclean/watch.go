package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/philipparndt/meshclean/internal/batch"
	"github.com/philipparndt/meshclean/pkg/watcher"
)

var flagDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Clean meshes as they land in a directory",
	Long: `Watch cleans the files already in the input directory, then keeps running
and cleans new or updated files as they appear, for example a slicer export
folder. Watching needs a local input directory.`,
	Args: cobra.NoArgs,
	Run:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	addPipelineFlags(watchCmd)
	watchCmd.Flags().DurationVar(&flagDebounce, "debounce", 2*time.Second, "settle time before a changed file is processed")
}

func runWatch(cmd *cobra.Command, args []string) {
	if strings.HasPrefix(flagInput, "s3://") {
		fmt.Fprintln(os.Stderr, "Error: watch mode needs a local input directory")
		os.Exit(1)
	}
	if !strings.HasPrefix(flagOutput, "s3://") {
		inAbs, err1 := filepath.Abs(flagInput)
		outAbs, err2 := filepath.Abs(flagOutput)
		if err1 == nil && err2 == nil && inAbs == outAbs {
			// Writing outputs into the watched directory would retrigger
			// the watcher forever.
			fmt.Fprintln(os.Stderr, "Error: watch mode needs distinct input and output directories")
			os.Exit(1)
		}
	}

	runner, err := buildRunner()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	dw, err := watcher.NewDirWatcher(flagDebounce, newLogger())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := batch.Watch(ctx, runner, dw, flagInput); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
