package model

// DefaultSafetyFactor scales derived upper bounds so that every reachable
// trajectory value stays inside the enumerated phase space.
const DefaultSafetyFactor = 1.1

// Spec represents a compiled model description.
type Spec struct {
	Name string `json:"name"`

	// SafetyFactor multiplies derived upper bounds (default 1.1).
	SafetyFactor float64 `json:"safety_factor"`

	// Delta widens every sigma interval by ±Delta/2 (default 0).
	Delta float64 `json:"delta"`

	Variables []Variable `json:"variables"`
}

// Variable is one axis of the phase space.
type Variable struct {
	Name       string  `json:"name"`
	Production float64 `json:"production"`
	Decay      Range   `json:"decay"`

	// UpperBound overrides the derived phase-space bound when set.
	UpperBound *float64 `json:"upper_bound,omitempty"`

	// Sources lists the variables this one reacts to, in signature bit order.
	Sources []Source `json:"sources"`

	// Map assigns amplitude bounds to every source signature.
	Map []MapEntry `json:"map"`
}

// Range is a closed numeric interval.
type Range struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Source is a single dependency edge: the owning variable switches when
// Name crosses Threshold.
type Source struct {
	Name      string  `json:"name"`
	Threshold float64 `json:"threshold"`
}

// MapEntry pairs a binary pattern (one bit per source) with amplitude bounds.
type MapEntry struct {
	Pattern []int   `json:"pattern"`
	Lower   float64 `json:"lower"`
	Upper   float64 `json:"upper"`
}

// Dimension returns the number of variables.
func (s *Spec) Dimension() int {
	return len(s.Variables)
}

// Names returns variable names in declaration order.
func (s *Spec) Names() []string {
	names := make([]string, len(s.Variables))
	for i, v := range s.Variables {
		names[i] = v.Name
	}
	return names
}

// Lookup returns the index of the named variable.
func (s *Spec) Lookup(name string) (int, bool) {
	for i, v := range s.Variables {
		if v.Name == name {
			return i, true
		}
	}
	return -1, false
}

// EffectiveSafetyFactor returns SafetyFactor, or DefaultSafetyFactor when unset.
func (s *Spec) EffectiveSafetyFactor() float64 {
	if s.SafetyFactor == 0 {
		return DefaultSafetyFactor
	}
	return s.SafetyFactor
}

// Float returns a pointer to f. Handy for UpperBound literals.
func Float(f float64) *float64 {
	return &f
}
