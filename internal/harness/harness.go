package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"reflect"

	"github.com/shaunharker/conley-morse-database/internal/atlas"
	"github.com/shaunharker/conley-morse-database/internal/compiler"
	"github.com/shaunharker/conley-morse-database/internal/model"
	"github.com/shaunharker/conley-morse-database/internal/store"
	"github.com/shaunharker/conley-morse-database/internal/testutil"
)

// Harness runs scenarios against the atlas builder.
type Harness struct {
	logger *slog.Logger
}

// HarnessOption configures a Harness.
type HarnessOption func(*Harness)

// WithLogger sets the logger passed to the atlas builder.
// Default: a logger that discards everything.
func WithLogger(l *slog.Logger) HarnessOption {
	return func(h *Harness) {
		h.logger = l
	}
}

// New returns a Harness.
func New(opts ...HarnessOption) *Harness {
	h := &Harness{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run executes a scenario with a default Harness.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	return New().Run(ctx, scenario)
}

// Run executes a test scenario and returns the result.
//
// Execution flow:
//  1. Load and compile the model
//  2. Build the atlas with the scenario's options
//  3. Persist the atlas to a fresh in-memory store and read it back
//  4. Check the expectations
//
// An expected build failure is a passing outcome. The returned error is
// reserved for problems with the scenario itself (unreadable model,
// store failure).
func (h *Harness) Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	spec, err := compiler.LoadFile(scenario.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to load model: %w", err)
	}

	ordering := atlas.FirstFastest
	if scenario.Options.Ordering != "" {
		ordering, err = atlas.ParseOrdering(scenario.Options.Ordering)
		if err != nil {
			return nil, fmt.Errorf("options.ordering: %w", err)
		}
	}

	result := NewResult()

	a, buildErr := atlas.Build(ctx, spec,
		atlas.WithWorkers(scenario.Options.Workers),
		atlas.WithOrdering(ordering),
		atlas.WithLogger(h.logger),
	)
	if buildErr != nil {
		if ctx.Err() != nil {
			return nil, buildErr
		}
		result.BuildError = buildErr
		result.ErrorCode = string(atlas.CodeOf(buildErr))
		for _, msg := range checkError(scenario.Expect, result) {
			result.AddError(msg)
		}
		return result, nil
	}
	result.Atlas = a

	if err := h.checkPersistence(ctx, spec, a, result); err != nil {
		return nil, err
	}

	for _, msg := range checkAtlas(scenario.Expect, a) {
		result.AddError(msg)
	}

	h.logger.Info("scenario completed",
		"scenario", scenario.Name,
		"regions", len(a.Regions),
		"pass", result.Pass,
	)
	return result, nil
}

// checkPersistence writes a to an in-memory store and verifies the stored
// copy reads back identical.
func (h *Harness) checkPersistence(ctx context.Context, spec *model.Spec, a *atlas.Atlas, result *Result) error {
	st, err := store.Open(":memory:", store.WithIDGenerator(testutil.NewSequentialIDGenerator("scenario")))
	if err != nil {
		return fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	rec, err := st.WriteAtlas(ctx, spec, a)
	if err != nil {
		return fmt.Errorf("failed to store atlas: %w", err)
	}
	result.ModelHash = rec.ModelHash

	stored, _, err := st.ReadAtlas(ctx, rec.ID)
	if err != nil {
		return fmt.Errorf("failed to read atlas back: %w", err)
	}
	if !reflect.DeepEqual(a, stored) {
		result.AddError("stored atlas differs from the built atlas")
	}
	return nil
}
