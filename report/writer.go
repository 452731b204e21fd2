// Package report renders a graded audit for people and tools.
package report

import (
	"io"

	"github.com/use-agent/lpaudit/models"
)

// Writer renders an audit to its configured destination.
type Writer interface {
	// Write outputs the audit. Returns the number of bytes written and any
	// error encountered.
	Write(audit *models.Audit) (int, error)
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// Format names accepted by New.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// New returns the writer for format, defaulting to text.
func New(format string, output io.Writer) Writer {
	switch format {
	case FormatJSON:
		return NewJSONWriter(output, WithPrettyPrint())
	case FormatMarkdown:
		return NewMarkdownWriter(output)
	default:
		return NewTextWriter(output)
	}
}
