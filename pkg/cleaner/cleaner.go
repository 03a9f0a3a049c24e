package cleaner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/philipparndt/meshclean/pkg/mesh"
)

// ErrEmptyMesh is returned when a mesh has no faces to form components from.
var ErrEmptyMesh = errors.New("mesh has no faces")

type options struct {
	method    Method
	adjacency mesh.Adjacency
	logger    *slog.Logger
}

// Option configures a cleaning run.
type Option func(*options)

// WithMethod selects the component selection policy (default First)
func WithMethod(m Method) Option {
	return func(o *options) {
		o.method = m
	}
}

// WithAdjacency selects the connectivity rule (default mesh.ShareEdge)
func WithAdjacency(a mesh.Adjacency) Option {
	return func(o *options) {
		o.adjacency = a
	}
}

// WithLogger routes cleaning diagnostics to the given logger
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Result describes one cleaning run.
type Result struct {
	// Kept is the retained component as a standalone mesh.
	Kept *mesh.Mesh
	// ChosenIndex is the position of the kept component in discovery order.
	ChosenIndex int
	// ComponentCount is the number of connected components found.
	ComponentCount int
	// Scores holds the per-component metrics when the method required
	// scoring, aligned with discovery order; nil otherwise.
	Scores []mesh.ScoreRecord
	// FellBack reports that the ratio policy found no component with a
	// usable volume and kept the first component instead.
	FellBack bool
}

// Clean partitions the mesh into connected components, applies the selection
// policy and returns the winning component as a standalone mesh. A mesh that
// is already a single connected component is passed through unchanged. A
// mesh with zero faces cannot form a component and returns ErrEmptyMesh.
func Clean(m *mesh.Mesh, opts ...Option) (*Result, error) {
	o := options{
		method:    First,
		adjacency: mesh.ShareEdge,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&o)
	}

	policy, ok := policies[o.method]
	if !ok {
		return nil, fmt.Errorf("%w: method(%d)", ErrUnknownMethod, int(o.method))
	}
	if len(m.Faces) == 0 {
		return nil, ErrEmptyMesh
	}

	components := m.Split(o.adjacency)
	result := &Result{ComponentCount: len(components)}

	if o.logger.Enabled(context.Background(), slog.LevelDebug) {
		if !mesh.VerifyPartition(m, components) {
			o.logger.Warn("components do not partition the mesh faces",
				"name", m.Name,
				"components", len(components))
		}
	}

	if o.method.NeedsScores() {
		result.Scores = mesh.ScoreAll(components)
	}

	if len(components) == 1 {
		// Nothing to separate; hand back the input untouched.
		result.Kept = m
		o.logger.Debug("mesh is a single component",
			"name", m.Name,
			"faces", m.FaceCount())
		return result, nil
	}

	selection := policy(components, result.Scores)
	result.ChosenIndex = selection.Index
	result.FellBack = selection.FellBack
	result.Kept = components[selection.Index].Mesh

	if selection.FellBack {
		o.logger.Warn("no component has a usable volume, keeping the first",
			"name", m.Name,
			"components", len(components))
	}

	o.logger.Debug("kept component",
		"name", m.Name,
		"method", o.method.String(),
		"components", len(components),
		"chosen", selection.Index,
		"faces", result.Kept.FaceCount())
	if result.Scores != nil {
		score := result.Scores[selection.Index]
		o.logger.Debug("chosen component score",
			"name", m.Name,
			"area", score.SurfaceArea,
			"volume", score.Volume,
			"defined", score.Defined)
	}

	return result, nil
}
