package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shaunharker/conley-morse-database/internal/compiler"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid     bool                       `json:"valid"`
	Model     string                     `json:"model,omitempty"`
	Variables int                        `json:"variables,omitempty"`
	Errors    []compiler.ValidationError `json:"errors,omitempty"`
	Feedback  []compiler.FeedbackLoop    `json:"feedback,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <model>",
		Short: "Validate a model without building its atlas",
		Long: `Validate a model file (.cue, .yaml, .yml) or CUE package directory.

Checks the model against the schema, then checks every rule the atlas
builder enforces: declared sources, positive thresholds below the
source's upper bound, negative decay, and an interaction map entry for
every signature. Feedback loops are reported for information.

Exit codes:
  0 - Model valid
  1 - Validation findings
  2 - Model could not be loaded`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	spec, err := loadOrFail(formatter, path)
	if err != nil {
		return err
	}

	if errs := compiler.Validate(spec); len(errs) > 0 {
		return outputValidationErrors(formatter, errs)
	}

	result := ValidationResult{
		Valid:     true,
		Model:     spec.Name,
		Variables: len(spec.Variables),
		Feedback:  compiler.AnalyzeFeedback(spec),
	}
	return outputValidateSuccess(formatter, result)
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Model %s valid (%d variable(s))\n", result.Model, result.Variables)
	for _, loop := range result.Feedback {
		fmt.Fprintf(formatter.Writer, "  ℹ %s\n", loop.Message)
	}
	return nil
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []compiler.ValidationError) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data: ValidationResult{
				Valid:  false,
				Errors: errs,
			},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}
		if err := formatter.Encode(response); err != nil {
			return err
		}
		// Validation failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, err := range errs {
		fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n", err.Code, err.Field, err.Message)
	}

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
