package render

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/shaunharker/conley-morse-database/internal/atlas"
)

// Document is the XML atlas document.
type Document struct {
	XMLName    xml.Name   `xml:"atlas"`
	Dimension  int        `xml:"dimension"`
	PhaseSpace PhaseSpace `xml:"phasespace"`
	Gamma      Pair       `xml:"gamma"`
	Boxes      []Box      `xml:"listboxes>box"`
}

// PhaseSpace wraps the phase-space bounds.
type PhaseSpace struct {
	Bounds Pair `xml:"bounds"`
}

// Pair is a lower/upper vector pair.
type Pair struct {
	Lower Vector `xml:"lower"`
	Upper Vector `xml:"upper"`
}

// Box is one region with its sigma bounds.
type Box struct {
	Bounds Pair `xml:"bounds"`
	Sigma  Pair `xml:"sigma"`
}

// NewDocument converts an atlas into its XML document.
func NewDocument(a *atlas.Atlas) *Document {
	arr := a.Arrays()
	doc := &Document{
		Dimension: a.Dimension(),
		PhaseSpace: PhaseSpace{Bounds: Pair{
			Lower: arr.LowerBounds,
			Upper: arr.UpperBounds,
		}},
		Gamma: Pair{Lower: arr.LowerDecay, Upper: arr.UpperDecay},
		Boxes: make([]Box, len(a.Regions)),
	}
	for r, region := range a.Regions {
		doc.Boxes[r] = Box{
			Bounds: Pair{Lower: region.Bounds.Lower(), Upper: region.Bounds.Upper()},
			Sigma:  Pair{Lower: arr.LowerSigmas[r], Upper: arr.UpperSigmas[r]},
		}
	}
	return doc
}

// WriteXML writes a as an XML atlas document.
func WriteXML(w io.Writer, a *atlas.Atlas) error {
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(NewDocument(a)); err != nil {
		return fmt.Errorf("render xml: %w", err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("render xml: %w", err)
	}
	return nil
}

// DecodeXML reads an XML atlas document and checks that every vector has
// Dimension entries.
func DecodeXML(r io.Reader) (*Document, error) {
	var doc Document
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode xml: %w", err)
	}
	if err := doc.check(); err != nil {
		return nil, fmt.Errorf("decode xml: %w", err)
	}
	return &doc, nil
}

func (d *Document) check() error {
	if d.Dimension <= 0 {
		return fmt.Errorf("dimension %d must be positive", d.Dimension)
	}
	if err := d.PhaseSpace.Bounds.check("phasespace.bounds", d.Dimension); err != nil {
		return err
	}
	if err := d.Gamma.check("gamma", d.Dimension); err != nil {
		return err
	}
	for i, b := range d.Boxes {
		if err := b.Bounds.check(fmt.Sprintf("box %d: bounds", i), d.Dimension); err != nil {
			return err
		}
		if err := b.Sigma.check(fmt.Sprintf("box %d: sigma", i), d.Dimension); err != nil {
			return err
		}
	}
	return nil
}

func (p Pair) check(name string, dim int) error {
	if len(p.Lower) != dim {
		return fmt.Errorf("%s.lower has %d entries, want %d", name, len(p.Lower), dim)
	}
	if len(p.Upper) != dim {
		return fmt.Errorf("%s.upper has %d entries, want %d", name, len(p.Upper), dim)
	}
	return nil
}
