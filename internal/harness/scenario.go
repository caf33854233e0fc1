package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/shaunharker/conley-morse-database/internal/atlas"
)

// Scenario defines an atlas conformance scenario.
// A scenario builds the atlas of one model and checks the result against
// expected region counts, bounds and sigma intervals, or an expected error.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Model is the path to a .cue, .yaml or .yml model file, or a CUE
	// package directory. Relative paths are resolved against the
	// scenario file location.
	Model string `yaml:"model"`

	// Options configures the build.
	Options Options `yaml:"options,omitempty"`

	// Expect holds the checks applied to the build result.
	Expect Expectation `yaml:"expect"`

	// Golden enables comparison of the rendered XML against
	// golden/<name>.golden next to the scenario file.
	Golden bool `yaml:"golden,omitempty"`
}

// Options mirrors the atlas build options.
type Options struct {
	// Workers bounds resolver goroutines; 0 selects GOMAXPROCS.
	Workers int `yaml:"workers,omitempty"`

	// Ordering is "first-fastest" (default) or "last-fastest".
	Ordering string `yaml:"ordering,omitempty"`
}

// Expectation lists the checks for a scenario. Zero-valued fields are not
// checked.
type Expectation struct {
	// Error is the expected atlas error code (e.g. UNRESOLVED_SIGNATURE).
	// When set the build must fail and no other check applies.
	Error string `yaml:"error,omitempty"`

	// Dimension is the expected number of variables.
	Dimension int `yaml:"dimension,omitempty"`

	// Regions is the expected number of boxes.
	Regions int `yaml:"regions,omitempty"`

	// Upper is the expected phase-space upper bound per variable.
	Upper []float64 `yaml:"upper,omitempty"`

	// Boxes checks individual regions by index.
	Boxes []BoxExpectation `yaml:"boxes,omitempty"`
}

// BoxExpectation checks one region. Empty vectors are not checked.
type BoxExpectation struct {
	Index      int       `yaml:"index"`
	Lower      []float64 `yaml:"lower,omitempty"`
	Upper      []float64 `yaml:"upper,omitempty"`
	SigmaLower []float64 `yaml:"sigma_lower,omitempty"`
	SigmaUpper []float64 `yaml:"sigma_upper,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// The model path is resolved relative to the scenario file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving the model path relative to basePath.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict decoding catches typos like "expects:" vs "expect:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Model != "" && !filepath.IsAbs(scenario.Model) && basePath != "" {
		scenario.Model = filepath.Join(basePath, scenario.Model)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Model == "" {
		return fmt.Errorf("model is required")
	}
	if _, err := os.Stat(s.Model); os.IsNotExist(err) {
		return fmt.Errorf("model file not found: %s", s.Model)
	}

	if s.Options.Workers < 0 {
		return fmt.Errorf("options.workers must be non-negative")
	}
	if s.Options.Ordering != "" {
		if _, err := atlas.ParseOrdering(s.Options.Ordering); err != nil {
			return fmt.Errorf("options.ordering: %w", err)
		}
	}

	return validateExpectation(&s.Expect, s.Golden)
}

var knownErrorCodes = map[string]bool{
	string(atlas.ErrCodeUnknownVariable):     true,
	string(atlas.ErrCodeUnresolvedSignature): true,
	string(atlas.ErrCodeInvalidBounds):       true,
	string(atlas.ErrCodeInvalidModel):        true,
}

func validateExpectation(e *Expectation, golden bool) error {
	if e.Error != "" {
		if !knownErrorCodes[e.Error] {
			return fmt.Errorf("expect.error: unknown error code %q", e.Error)
		}
		if e.Dimension != 0 || e.Regions != 0 || len(e.Upper) != 0 || len(e.Boxes) != 0 {
			return fmt.Errorf("expect.error cannot be combined with other expectations")
		}
		if golden {
			return fmt.Errorf("golden requires a successful build; remove expect.error")
		}
		return nil
	}

	if e.Dimension < 0 {
		return fmt.Errorf("expect.dimension must be non-negative")
	}
	if e.Regions < 0 {
		return fmt.Errorf("expect.regions must be non-negative")
	}

	for i, b := range e.Boxes {
		if b.Index < 0 {
			return fmt.Errorf("expect.boxes[%d]: index must be non-negative", i)
		}
		if e.Regions > 0 && b.Index >= e.Regions {
			return fmt.Errorf("expect.boxes[%d]: index %d out of range for %d regions", i, b.Index, e.Regions)
		}
		if len(b.Lower) == 0 && len(b.Upper) == 0 && len(b.SigmaLower) == 0 && len(b.SigmaUpper) == 0 {
			return fmt.Errorf("expect.boxes[%d]: at least one of lower, upper, sigma_lower, sigma_upper is required", i)
		}
	}

	return nil
}
