package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/shaunharker/conley-morse-database/internal/atlas"
)

// Format selects an atlas rendering.
type Format string

const (
	FormatXML  Format = "xml"
	FormatJSON Format = "json"
)

// ParseFormat parses "xml" or "json".
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatXML, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("invalid emit format %q: must be xml or json", s)
	}
}

// Write renders a in format f.
func Write(w io.Writer, a *atlas.Atlas, f Format) error {
	switch f {
	case FormatXML:
		return WriteXML(w, a)
	case FormatJSON:
		return WriteJSON(w, a)
	default:
		return fmt.Errorf("render: unsupported format %q", f)
	}
}
