package testutil

import "github.com/shaunharker/conley-morse-database/internal/model"

// DefaultDecay is the decay interval used by the fixture models.
var DefaultDecay = model.Range{Lower: -1.5, Upper: -0.5}

// SingleVariable returns a one-variable model with no dependencies.
// Its only map entry has the empty pattern and zero amplitude.
func SingleVariable(production, upper float64) *model.Spec {
	return &model.Spec{
		Name: "single",
		Variables: []model.Variable{
			{
				Name:       "x",
				Production: production,
				Decay:      DefaultDecay,
				UpperBound: model.Float(upper),
				Map:        []model.MapEntry{{Pattern: []int{}, Lower: 0, Upper: 0}},
			},
		},
	}
}

// SelfLoopPair returns the two-variable model where A represses or
// activates itself at threshold 5 (upper bound 10) and B is independent
// (upper bound 3).
//
// A: (0) -> [1, 2], (1) -> [3, 5], production 0.5.
// B: () -> [0, 0], production 0.25.
func SelfLoopPair() *model.Spec {
	return &model.Spec{
		Name: "self-loop-pair",
		Variables: []model.Variable{
			{
				Name:       "A",
				Production: 0.5,
				Decay:      DefaultDecay,
				UpperBound: model.Float(10),
				Sources:    []model.Source{{Name: "A", Threshold: 5}},
				Map: []model.MapEntry{
					{Pattern: []int{0}, Lower: 1, Upper: 2},
					{Pattern: []int{1}, Lower: 3, Upper: 5},
				},
			},
			{
				Name:       "B",
				Production: 0.25,
				Decay:      DefaultDecay,
				UpperBound: model.Float(3),
				Map:        []model.MapEntry{{Pattern: []int{}, Lower: 0, Upper: 0}},
			},
		},
	}
}

// FourNode returns the four-variable switching network of the reference
// atlas generator with phase space [0,30]×[0,200]×[0,30]×[0,30].
//
//	x1 <- x2 (k1=4):            off 20, on 0
//	x2 <- x1 (k21=5), x4 (k22=10): a21 and a22 add up
//	x3 <- x1 (k3=4):            off 0, on 20
//	x4 <- x3 (k4=4):            off 0, on 20
//
// Axis x1 has two thresholds (4, 5) and the others one each: 24 regions.
func FourNode(a21, a22 float64) *model.Spec {
	step := func(off, on float64) []model.MapEntry {
		return []model.MapEntry{
			{Pattern: []int{0}, Lower: off, Upper: off},
			{Pattern: []int{1}, Lower: on, Upper: on},
		}
	}
	return &model.Spec{
		Name: "four-node",
		Variables: []model.Variable{
			{
				Name:       "x1",
				Decay:      DefaultDecay,
				UpperBound: model.Float(30),
				Sources:    []model.Source{{Name: "x2", Threshold: 4}},
				Map:        step(20, 0),
			},
			{
				Name:       "x2",
				Decay:      DefaultDecay,
				UpperBound: model.Float(200),
				Sources: []model.Source{
					{Name: "x1", Threshold: 5},
					{Name: "x4", Threshold: 10},
				},
				Map: []model.MapEntry{
					{Pattern: []int{0, 0}, Lower: 0, Upper: 0},
					{Pattern: []int{1, 0}, Lower: a21, Upper: a21},
					{Pattern: []int{0, 1}, Lower: a22, Upper: a22},
					{Pattern: []int{1, 1}, Lower: a21 + a22, Upper: a21 + a22},
				},
			},
			{
				Name:       "x3",
				Decay:      DefaultDecay,
				UpperBound: model.Float(30),
				Sources:    []model.Source{{Name: "x1", Threshold: 4}},
				Map:        step(0, 20),
			},
			{
				Name:       "x4",
				Decay:      DefaultDecay,
				UpperBound: model.Float(30),
				Sources:    []model.Source{{Name: "x3", Threshold: 4}},
				Map:        step(0, 20),
			},
		},
	}
}

// Toggle returns a mutual-repression switch with derived upper bounds:
// u represses v and v represses u, both at threshold 2.
func Toggle() *model.Spec {
	repress := []model.MapEntry{
		{Pattern: []int{0}, Lower: 2, Upper: 3},
		{Pattern: []int{1}, Lower: 0, Upper: 0.5},
	}
	return &model.Spec{
		Name: "toggle",
		Variables: []model.Variable{
			{
				Name:    "u",
				Decay:   DefaultDecay,
				Sources: []model.Source{{Name: "v", Threshold: 2}},
				Map:     repress,
			},
			{
				Name:    "v",
				Decay:   DefaultDecay,
				Sources: []model.Source{{Name: "u", Threshold: 2}},
				Map:     repress,
			},
		},
	}
}
