package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shaunharker/conley-morse-database/internal/atlas"
	"github.com/shaunharker/conley-morse-database/internal/compiler"
	"github.com/shaunharker/conley-morse-database/internal/model"
	"github.com/shaunharker/conley-morse-database/internal/render"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // canonical model output path
}

// CompileSummary describes the interaction structure of a model.
type CompileSummary struct {
	Model     string                  `json:"model"`
	Hash      string                  `json:"hash"`
	Dimension int                     `json:"dimension"`
	Regions   int                     `json:"regions"`
	Variables []VariableSummary       `json:"variables"`
	Feedback  []compiler.FeedbackLoop `json:"feedback"`
}

// VariableSummary describes one axis of the phase space.
type VariableSummary struct {
	Name       string    `json:"name"`
	Sources    []string  `json:"sources"`
	UpperBound float64   `json:"upper_bound"`
	Thresholds []float64 `json:"thresholds"` // distinct outgoing thresholds, ascending
	Intervals  int       `json:"intervals"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <model>",
		Short: "Compile a model and summarize its interaction structure",
		Long: `Compile a model and print its interaction structure: the sources of
every variable, the thresholds that partition every axis, the phase-space
upper bounds, the region count and the model hash.

With -o the canonical JSON encoding of the model (the input of the model
hash) is written to a file.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write canonical model JSON to this file")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	spec, err := loadOrFail(formatter, path)
	if err != nil {
		return err
	}
	if errs := compiler.Validate(spec); len(errs) > 0 {
		return outputValidationErrors(formatter, errs)
	}

	summary, err := Summarize(spec)
	if err != nil {
		return outputAtlasError(formatter, err)
	}

	if opts.Output != "" {
		data, err := model.Canonical(spec)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("encoding model: %v", err), nil)
		}
		if err := os.WriteFile(opts.Output, data, 0644); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
		}
		formatter.VerboseLog("Wrote canonical model to %s", opts.Output)
	}

	return outputCompileSuccess(formatter, summary, opts.Output)
}

// Summarize computes the interaction summary of a valid model.
// Errors are atlas errors.
func Summarize(spec *model.Spec) (*CompileSummary, error) {
	in, err := atlas.BuildInteraction(spec)
	if err != nil {
		return nil, err
	}
	upper, err := atlas.UpperBounds(spec)
	if err != nil {
		return nil, err
	}
	domain, err := atlas.NewDomain(in.Thresholds, in.Names, upper, atlas.FirstFastest)
	if err != nil {
		return nil, err
	}
	hash, err := model.Hash(spec)
	if err != nil {
		return nil, err
	}

	summary := &CompileSummary{
		Model:     spec.Name,
		Hash:      hash,
		Dimension: len(in.Names),
		Regions:   domain.Count(),
		Variables: make([]VariableSummary, len(in.Names)),
		Feedback:  compiler.AnalyzeFeedback(spec),
	}
	for j, name := range in.Names {
		sources := make([]string, len(in.Sources[j]))
		for k, i := range in.Sources[j] {
			sources[k] = in.Names[i]
		}
		p := domain.Partitions[j]
		thresholds := p.Thresholds()
		if thresholds == nil {
			thresholds = []float64{}
		}
		summary.Variables[j] = VariableSummary{
			Name:       name,
			Sources:    sources,
			UpperBound: upper[j],
			Thresholds: thresholds,
			Intervals:  len(p),
		}
	}
	return summary, nil
}

// outputCompileSuccess outputs the compile summary.
func outputCompileSuccess(formatter *OutputFormatter, s *CompileSummary, outputFile string) error {
	if formatter.Format == "json" {
		return formatter.Success(s)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ Compiled model %s: %d variable(s), %d region(s)\n\n", s.Model, s.Dimension, s.Regions)

	fmt.Fprintln(w, "Variables:")
	for _, v := range s.Variables {
		sources := "none"
		if len(v.Sources) > 0 {
			sources = strings.Join(v.Sources, ", ")
		}
		fmt.Fprintf(w, "  %s: sources [%s], upper %s, thresholds [%s], %d interval(s)\n",
			v.Name, sources, render.FormatFloat(v.UpperBound), render.Vector(v.Thresholds), v.Intervals)
	}
	fmt.Fprintln(w)

	if len(s.Feedback) > 0 {
		fmt.Fprintln(w, "Feedback:")
		for _, loop := range s.Feedback {
			fmt.Fprintf(w, "  %s\n", loop.Message)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Hash: %s\n", s.Hash)
	if outputFile != "" {
		fmt.Fprintf(w, "Wrote canonical model to %s\n", outputFile)
	}
	return nil
}

// outputAtlasError reports an atlas error. Model defects exit with 1;
// anything else is a command error.
func outputAtlasError(formatter *OutputFormatter, err error) error {
	code := atlas.CodeOf(err)
	if code == "" {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}
	return formatter.Fail(ExitFailure, string(code), err.Error(), nil)
}
