package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shaunharker/conley-morse-database/internal/atlas"
	"github.com/shaunharker/conley-morse-database/internal/model"
	"github.com/shaunharker/conley-morse-database/internal/render"
	"github.com/shaunharker/conley-morse-database/internal/store"
)

// BuildOptions holds flags for the build command.
type BuildOptions struct {
	*RootOptions
	Output   string // atlas output file; stdout when empty
	Emit     string // "xml" | "json"
	Workers  int
	Ordering string
	Database string // optional SQLite database to persist into
}

// BuildResult is the summary printed when the atlas goes to a file.
type BuildResult struct {
	Model     string `json:"model"`
	Hash      string `json:"hash,omitempty"`
	Dimension int    `json:"dimension"`
	Regions   int    `json:"regions"`
	Ordering  string `json:"ordering"`
	Output    string `json:"output,omitempty"`
	AtlasID   string `json:"atlas_id,omitempty"`
	Seq       int64  `json:"seq,omitempty"`
}

// NewBuildCommand creates the build command.
func NewBuildCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BuildOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "build <model>",
		Short: "Build and render the atlas of a model",
		Long: `Build the atlas of a model and render it as XML or JSON.

Without -o the rendered atlas is written to stdout. With -o it is written
to the file and a summary is printed instead. With --db the atlas is also
stored in a SQLite database (created if it doesn't exist).

Exit codes:
  0 - Atlas built
  1 - The model is invalid or a region signature is unresolved
  2 - Command error (unreadable model, bad flags, database errors)

Examples:
  cmdb-atlas build model.cue
  cmdb-atlas build model.yaml -o atlas.xml --workers 8
  cmdb-atlas build model.cue --emit json --ordering last-fastest
  cmdb-atlas build model.cue -o atlas.xml --db atlases.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path (default stdout)")
	cmd.Flags().StringVar(&opts.Emit, "emit", "xml", "atlas rendering (xml|json)")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "resolver goroutines (0 = GOMAXPROCS)")
	cmd.Flags().StringVar(&opts.Ordering, "ordering", "first-fastest", "region order (first-fastest|last-fastest)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database to store the atlas in")

	return cmd
}

func runBuild(opts *BuildOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	emit, err := render.ParseFormat(opts.Emit)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidOption, err.Error(), nil)
	}
	ordering, err := atlas.ParseOrdering(opts.Ordering)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidOption, err.Error(), nil)
	}
	if opts.Workers < 0 {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidOption, "--workers must be non-negative", nil)
	}

	spec, err := loadOrFail(formatter, path)
	if err != nil {
		return err
	}

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Debug("building atlas", "model", spec.Name, "workers", opts.Workers, "ordering", ordering.String())
	a, err := atlas.Build(ctx, spec,
		atlas.WithWorkers(opts.Workers),
		atlas.WithOrdering(ordering),
		atlas.WithLogger(logger),
	)
	if err != nil {
		if ctx.Err() != nil {
			return WrapExitError(ExitCommandError, "build interrupted", err)
		}
		return outputAtlasError(formatter, err)
	}

	hash, err := model.Hash(spec)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("hashing model: %v", err), nil)
	}

	result := BuildResult{
		Model:     spec.Name,
		Hash:      hash,
		Dimension: a.Dimension(),
		Regions:   len(a.Regions),
		Ordering:  ordering.String(),
		Output:    opts.Output,
	}

	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeStoreFailed, fmt.Sprintf("opening database: %v", err), nil)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing database", "error", closeErr)
			}
		}()

		rec, err := st.WriteAtlas(ctx, spec, a)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeStoreFailed, fmt.Sprintf("storing atlas: %v", err), nil)
		}
		result.AtlasID, result.Seq = rec.ID, rec.Seq
		logger.Info("atlas stored", "id", rec.ID, "seq", rec.Seq, "db", opts.Database)
	}

	var buf bytes.Buffer
	if err := render.Write(&buf, a, emit); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("rendering atlas: %v", err), nil)
	}

	if opts.Output == "" {
		_, err := cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}

	if err := os.WriteFile(opts.Output, buf.Bytes(), 0644); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
	}
	return outputBuildSuccess(formatter, result)
}

// outputBuildSuccess prints the build summary.
func outputBuildSuccess(formatter *OutputFormatter, r BuildResult) error {
	if formatter.Format == "json" {
		return formatter.Success(r)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ Built atlas of %s: %d variable(s), %d region(s), %s\n", r.Model, r.Dimension, r.Regions, r.Ordering)
	fmt.Fprintf(w, "Wrote atlas to %s\n", r.Output)
	if r.AtlasID != "" {
		fmt.Fprintf(w, "Stored atlas %s (seq %d)\n", r.AtlasID, r.Seq)
	}
	return nil
}
