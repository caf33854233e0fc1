package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/shaunharker/conley-morse-database/internal/atlas"
)

// JSONDocument is the JSON rendering of an atlas.
type JSONDocument struct {
	Dimension  int         `json:"dimension"`
	Names      []string    `json:"names"`
	Ordering   string      `json:"ordering"`
	PhaseSpace JSONPair    `json:"phasespace"`
	Gamma      JSONPair    `json:"gamma"`
	Thresholds [][]float64 `json:"thresholds"`
	Boxes      []JSONBox   `json:"boxes"`
}

// JSONPair is a lower/upper vector pair.
type JSONPair struct {
	Lower []float64 `json:"lower"`
	Upper []float64 `json:"upper"`
}

// JSONBox is one region with its sigma bounds.
type JSONBox struct {
	Index  int      `json:"index"`
	Bounds JSONPair `json:"bounds"`
	Sigma  JSONPair `json:"sigma"`
}

// NewJSONDocument converts an atlas into its JSON document.
func NewJSONDocument(a *atlas.Atlas) *JSONDocument {
	arr := a.Arrays()
	doc := &JSONDocument{
		Dimension:  a.Dimension(),
		Names:      a.Names,
		Ordering:   a.Ordering.String(),
		PhaseSpace: JSONPair{Lower: arr.LowerBounds, Upper: arr.UpperBounds},
		Gamma:      JSONPair{Lower: arr.LowerDecay, Upper: arr.UpperDecay},
		Thresholds: make([][]float64, len(a.Partitions)),
		Boxes:      make([]JSONBox, len(a.Regions)),
	}
	for j, p := range a.Partitions {
		doc.Thresholds[j] = p.Thresholds()
	}
	for r, region := range a.Regions {
		doc.Boxes[r] = JSONBox{
			Index:  region.Index,
			Bounds: JSONPair{Lower: region.Bounds.Lower(), Upper: region.Bounds.Upper()},
			Sigma:  JSONPair{Lower: arr.LowerSigmas[r], Upper: arr.UpperSigmas[r]},
		}
	}
	return doc
}

// WriteJSON writes a as an indented JSON document.
func WriteJSON(w io.Writer, a *atlas.Atlas) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewJSONDocument(a)); err != nil {
		return fmt.Errorf("render json: %w", err)
	}
	return nil
}
