package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue/token"

	"github.com/shaunharker/conley-morse-database/internal/compiler"
	"github.com/shaunharker/conley-morse-database/internal/model"
)

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric       = "E001" // Generic/unknown error
	ErrCodeUnsupported   = "E002" // Unsupported model file type
	ErrCodeNoModel       = "E003" // No model found in the input
	ErrCodeParseFailed   = "E004" // YAML or CUE syntax error
	ErrCodeNotFound      = "E005" // Path not found
	ErrCodeSchemaFailed  = "E006" // Model does not satisfy the schema
	ErrCodeWriteFailed   = "E007" // File write error
	ErrCodeStoreFailed   = "E008" // Atlas store error
	ErrCodeInvalidOption = "E009" // Invalid flag value
)

// LoadError represents an error that occurred during model loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Details returns position details for CLI responses, or nil.
func (e *LoadError) Details() any {
	if !e.Pos.IsValid() {
		return nil
	}
	return map[string]any{
		"file":   e.Pos.Filename(),
		"line":   e.Pos.Line(),
		"column": e.Pos.Column(),
	}
}

// LoadModel reads and compiles a model file or CUE package directory.
// Every failure is a *LoadError.
func LoadModel(path string) (*model.Spec, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("model not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing model: %v", err)}
	}
	if !info.IsDir() {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".cue", ".yaml", ".yml":
		default:
			return nil, &LoadError{
				Code:    ErrCodeUnsupported,
				Message: fmt.Sprintf("unsupported model file %s: want .cue, .yaml or .yml", path),
			}
		}
	}

	spec, err := compiler.LoadFile(path)
	if err != nil {
		return nil, convertCompileError(err)
	}
	return spec, nil
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: fmt.Sprintf("%s: %s", compileErr.Field, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{Code: ErrCodeParseFailed, Message: err.Error()}
}

// MapFieldToErrorCode maps a compiler error field to an error code.
func MapFieldToErrorCode(field string) string {
	switch field {
	case "model":
		return ErrCodeNoModel
	case "cue":
		return ErrCodeParseFailed
	default:
		return ErrCodeSchemaFailed
	}
}

// loadOrFail loads a model, reporting a load failure through f.
func loadOrFail(f *OutputFormatter, path string) (*model.Spec, error) {
	spec, err := LoadModel(path)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			return nil, f.Fail(ExitCommandError, loadErr.Code, loadErr.Message, loadErr.Details())
		}
		return nil, f.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}
	f.VerboseLog("Loaded model %q (%d variable(s)) from %s", spec.Name, len(spec.Variables), path)
	return spec, nil
}
