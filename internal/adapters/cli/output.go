package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Output formats
const (
	FormatText = "text"
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Writer renders command results as text or as a structured document
type Writer struct {
	format string
	out    io.Writer
}

// NewWriter creates a Writer; unknown formats are an error
func NewWriter(format string, out io.Writer) (*Writer, error) {
	switch format {
	case FormatText, FormatYAML, FormatJSON:
		return &Writer{format: format, out: out}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (use text, yaml or json)", format)
	}
}

// Structured reports whether results are written as documents
func (w *Writer) Structured() bool { return w.format != FormatText }

// Write serializes v in the structured format
func (w *Writer) Write(v interface{}) error {
	switch w.format {
	case FormatJSON:
		encoder := json.NewEncoder(w.out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(v)
	case FormatYAML:
		encoder := yaml.NewEncoder(w.out)
		encoder.SetIndent(2)
		if err := encoder.Encode(v); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return encoder.Close()
	default:
		return fmt.Errorf("%s output has no document form", w.format)
	}
}

// Printf writes text output
func (w *Writer) Printf(format string, args ...interface{}) {
	fmt.Fprintf(w.out, format, args...)
}

// Println writes a text line
func (w *Writer) Println(args ...interface{}) {
	fmt.Fprintln(w.out, args...)
}

// Out is the underlying writer
func (w *Writer) Out() io.Writer { return w.out }
