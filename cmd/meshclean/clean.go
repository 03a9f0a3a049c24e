package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/philipparndt/meshclean/internal/batch"
	"github.com/philipparndt/meshclean/internal/store"
	"github.com/philipparndt/meshclean/pkg/cleaner"
	"github.com/philipparndt/meshclean/pkg/mesh"
	"github.com/philipparndt/meshclean/pkg/meshio"
)

var (
	flagInput     string
	flagOutput    string
	flagMethod    string
	flagFormats   []string
	flagAdjacency string
	flagJobs      int
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Batch-clean every mesh in a directory or bucket",
	Long: `Clean reads every matching mesh file from the input location, keeps one
connected component per mesh and writes it to the output location under the
same name. Inputs are never modified. The exit code is 0 only when at least
one file matched and every file succeeded.`,
	Args: cobra.NoArgs,
	Run:  runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	addPipelineFlags(cleanCmd)
}

// addPipelineFlags binds the flags shared by clean and watch
func addPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&flagInput, "input", "i", "", "input directory or s3://bucket/prefix")
	cmd.Flags().StringVarP(&flagOutput, "output", "o", "", "output directory or s3://bucket/prefix")
	cmd.Flags().StringVarP(&flagMethod, "method", "m", "first", "component to keep: first or ratio")
	cmd.Flags().StringSliceVarP(&flagFormats, "formats", "f", []string{"stl"},
		"file extensions to process ("+strings.Join(meshio.Names(), ", ")+")")
	cmd.Flags().StringVar(&flagAdjacency, "adjacency", "edge", "faces connect when sharing an edge or a vertex")
	cmd.Flags().IntVarP(&flagJobs, "jobs", "j", 1, "number of files processed in parallel")

	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")
}

// buildRunner turns the pipeline flags into a batch runner
func buildRunner() (*batch.Runner, error) {
	method, err := cleaner.ParseMethod(flagMethod)
	if err != nil {
		return nil, err
	}
	adjacency, err := mesh.ParseAdjacency(flagAdjacency)
	if err != nil {
		return nil, err
	}

	input, err := store.FromSpec(flagInput)
	if err != nil {
		return nil, fmt.Errorf("input: %w", err)
	}
	output, err := store.FromSpec(flagOutput)
	if err != nil {
		return nil, fmt.Errorf("output: %w", err)
	}

	return batch.NewRunner(input, output,
		batch.WithExtensions(flagFormats),
		batch.WithMethod(method),
		batch.WithAdjacency(adjacency),
		batch.WithJobs(flagJobs),
		batch.WithLogger(newLogger()),
		batch.WithProgress(os.Stderr),
	), nil
}

func runClean(cmd *cobra.Command, args []string) {
	runner, err := buildRunner()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := runner.Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(summary.Results) == 0 {
		fmt.Fprintf(os.Stderr, "Error: no files matching %s in %s\n",
			strings.Join(flagFormats, ","), flagInput)
		os.Exit(1)
	}
	if !summary.Ok() {
		fmt.Fprintf(os.Stderr, "%d of %d files failed\n",
			summary.Failed, len(summary.Results))
		os.Exit(1)
	}
}
