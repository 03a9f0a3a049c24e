package batch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/philipparndt/meshclean/internal/progress"
	"github.com/philipparndt/meshclean/internal/store"
	"github.com/philipparndt/meshclean/pkg/cleaner"
	"github.com/philipparndt/meshclean/pkg/mesh"
	"github.com/philipparndt/meshclean/pkg/meshio"
)

// Runner drives the clean pipeline over a set of mesh files.
type Runner struct {
	input      store.FileSet
	output     store.FileSet
	extensions map[string]bool
	method     cleaner.Method
	adjacency  mesh.Adjacency
	jobs       int
	logger     *slog.Logger
	progressTo io.Writer
}

// Option configures a Runner
type Option func(*Runner)

// WithExtensions sets the file extensions the runner picks up. Entries are
// normalized by trimming dots and spaces and lowering case.
func WithExtensions(exts []string) Option {
	return func(r *Runner) {
		if set := normalizeExtensions(exts); len(set) > 0 {
			r.extensions = set
		}
	}
}

// WithMethod sets the component selection method
func WithMethod(m cleaner.Method) Option {
	return func(r *Runner) {
		r.method = m
	}
}

// WithAdjacency sets the rule connecting faces into components
func WithAdjacency(a mesh.Adjacency) Option {
	return func(r *Runner) {
		r.adjacency = a
	}
}

// WithJobs sets how many files are processed concurrently. Values below two
// keep the run strictly sequential.
func WithJobs(n int) Option {
	return func(r *Runner) {
		r.jobs = n
	}
}

// WithLogger sets the logger the runner and pipeline log through
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithProgress makes the runner print processed/total counts to w
func WithProgress(w io.Writer) Option {
	return func(r *Runner) {
		r.progressTo = w
	}
}

// NewRunner creates a runner reading meshes from input and writing cleaned
// meshes to output under the same names.
func NewRunner(input, output store.FileSet, opts ...Option) *Runner {
	r := &Runner{
		input:      input,
		output:     output,
		extensions: normalizeExtensions([]string{"stl"}),
		method:     cleaner.First,
		adjacency:  mesh.ShareEdge,
		jobs:       1,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func normalizeExtensions(exts []string) map[string]bool {
	set := make(map[string]bool, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.Trim(ext, ". "))
		if ext != "" {
			set[ext] = true
		}
	}
	return set
}

func extensionList(set map[string]bool) string {
	exts := make([]string, 0, len(set))
	for ext := range set {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return strings.Join(exts, ",")
}

// Matches reports whether the file name carries one of the runner's
// extensions, looking through a trailing .gz.
func (r *Runner) Matches(name string) bool {
	lower := strings.TrimSuffix(strings.ToLower(name), ".gz")
	return r.extensions[strings.TrimPrefix(path.Ext(lower), ".")]
}

// FileResult records the outcome for one input file.
type FileResult struct {
	Name       string
	Components int
	Chosen     int
	FellBack   bool
	Err        error
}

// Summary tallies one batch run.
type Summary struct {
	// Processed counts the files that were cleaned and written.
	Processed int
	// Failed counts the files that errored at any pipeline stage.
	Failed int
	// Results holds one entry per matching input file, in input order.
	Results []FileResult
}

// Ok reports whether at least one file was found and every file succeeded
func (s Summary) Ok() bool {
	return s.Processed > 0 && s.Failed == 0
}

// Run enumerates the matching input files and pushes each one through
// decode, clean and encode. Failures are recorded per file and never stop
// the batch; only input enumeration can abort the run.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	names, err := r.input.List(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("list input: %w", err)
	}

	var matching []string
	for _, name := range names {
		if r.Matches(name) {
			matching = append(matching, name)
		}
	}
	if len(matching) == 0 {
		r.logger.Warn("no matching files", "extensions", extensionList(r.extensions))
		return Summary{}, nil
	}

	results := make([]FileResult, len(matching))
	reporter := r.reporter(len(matching))

	if r.jobs <= 1 {
		for i, name := range matching {
			results[i] = r.RunOne(ctx, name)
			reporter.Step()
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(r.jobs)
		for i, name := range matching {
			i, name := i, name
			g.Go(func() error {
				results[i] = r.RunOne(gctx, name)
				reporter.Step()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return Summary{}, err
		}
	}

	return summarize(results), nil
}

// RunOne processes one named input file through the pipeline and writes the
// kept component to the output set under the same name.
func (r *Runner) RunOne(ctx context.Context, name string) FileResult {
	res := FileResult{Name: name}
	if res.Err = r.cleanFile(ctx, name, &res); res.Err != nil {
		r.logger.Error("file failed", "file", name, "error", res.Err)
	}
	return res
}

func (r *Runner) cleanFile(ctx context.Context, name string, res *FileResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	in, err := r.input.Open(ctx, name)
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	m, err := meshio.DecodeFrom(in, name)
	in.Close()
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}

	cleaned, err := cleaner.Clean(m,
		cleaner.WithMethod(r.method),
		cleaner.WithAdjacency(r.adjacency),
		cleaner.WithLogger(r.logger.With("file", name)),
	)
	if err != nil {
		return fmt.Errorf("clean %s: %w", name, err)
	}
	res.Components = cleaned.ComponentCount
	res.Chosen = cleaned.ChosenIndex
	res.FellBack = cleaned.FellBack

	// Encode to memory first so a codec failure never creates an output.
	var buf bytes.Buffer
	if err := meshio.EncodeTo(&buf, cleaned.Kept, name); err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}

	out, err := r.output.Create(ctx, name)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := out.Write(buf.Bytes()); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}

	r.logger.Info("cleaned",
		"file", name,
		"method", r.method.String(),
		"components", res.Components,
		"chosen", res.Chosen,
		"faces_in", m.FaceCount(),
		"faces_out", cleaned.Kept.FaceCount())
	return nil
}

func (r *Runner) reporter(total int) *progress.Reporter {
	if r.progressTo == nil {
		return nil
	}
	return progress.NewReporter(r.progressTo, total, 5)
}

func summarize(results []FileResult) Summary {
	s := Summary{Results: results}
	for _, res := range results {
		if res.Err != nil {
			s.Failed++
		} else {
			s.Processed++
		}
	}
	return s
}
