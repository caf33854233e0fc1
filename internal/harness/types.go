package harness

import "github.com/shaunharker/conley-morse-database/internal/atlas"

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success. True if every expectation matched.
	Pass bool `json:"pass"`

	// Errors contains expectation failures. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Atlas is the built atlas; nil when the build failed.
	Atlas *atlas.Atlas `json:"-"`

	// BuildError is the build failure, if any.
	BuildError error `json:"-"`

	// ErrorCode is the atlas error code of BuildError.
	ErrorCode string `json:"error_code,omitempty"`

	// ModelHash is the content hash of the compiled model.
	ModelHash string `json:"model_hash,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds an expectation failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
