package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/use-agent/lpaudit/grading"
	"github.com/use-agent/lpaudit/models"
)

// none is printed for values a pass never observed.
const none = "None"

// TextWriter outputs the human-readable terminal summary.
type TextWriter struct {
	baseWriter

	// scorecard appends the weighted score and per-check findings.
	scorecard bool
}

// TextWriterOption configures a TextWriter.
type TextWriterOption func(*TextWriter)

// WithScorecard appends the weighted scorecard after the grades.
func WithScorecard(show bool) TextWriterOption {
	return func(w *TextWriter) {
		w.scorecard = show
	}
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer, opts ...TextWriterOption) *TextWriter {
	w := &TextWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the audit summary.
func (w *TextWriter) Write(audit *models.Audit) (int, error) {
	var sb strings.Builder
	r := audit.Report

	sb.WriteString("Landing Page Quality Analysis\n")
	sb.WriteString(strings.Repeat("=", 50) + "\n")
	fmt.Fprintf(&sb, "\nURL: %s\n", r.URL)

	sb.WriteString("\nPerformance:\n")
	fmt.Fprintf(&sb, "  LCP: %s (%s)\n", msOrNone(r.Performance.LCPMs), LCPStatus(r.Performance.LCPMs))
	fmt.Fprintf(&sb, "  CLS: %s (%s)\n", clsOrNone(r.Performance.CLS), CLSStatus(r.Performance.CLS))
	fmt.Fprintf(&sb, "  TTFB: %s\n", msOrNone(r.Performance.TTFBMs))

	sb.WriteString("\nContent:\n")
	title := none
	if r.Content.Title != nil {
		title = *r.Content.Title
	}
	fmt.Fprintf(&sb, "  Title: %s\n", title)
	fmt.Fprintf(&sb, "  H1: %s\n", strOr(r.Content.H1, "MISSING"))
	fmt.Fprintf(&sb, "  Words: %d\n", r.Content.WordCount)

	sb.WriteString("\nConversion Elements:\n")
	fmt.Fprintf(&sb, "  CTA Above Fold: %s\n", yn(r.Conversion.CTAAboveFold))
	form := "N"
	if r.Conversion.FormPresent {
		form = fmt.Sprintf("Y (%d fields)", r.Conversion.FormFields)
	}
	fmt.Fprintf(&sb, "  Form: %s\n", form)
	fmt.Fprintf(&sb, "  Phone: %s\n", yn(r.Conversion.PhoneNumber))
	fmt.Fprintf(&sb, "  Chat: %s\n", yn(r.Conversion.ChatWidget))
	if len(r.Conversion.TrackingTags) > 0 {
		fmt.Fprintf(&sb, "  Tracking: %s\n", strings.Join(r.Conversion.TrackingTags, ", "))
	}

	schema := strings.Join(r.Schema.TypesFound, ", ")
	if schema == "" {
		schema = none
	}
	fmt.Fprintf(&sb, "\nSchema: %s\n", schema)

	sb.WriteString("\nAudit Grades:\n")
	for _, key := range grading.CheckOrder {
		if status, ok := audit.Grades[key]; ok {
			fmt.Fprintf(&sb, "  [%s] %s\n", status, key)
		}
	}

	if w.scorecard && audit.Scorecard != nil {
		sc := audit.Scorecard
		fmt.Fprintf(&sb, "\nScore: %.1f/100 (%s - %s)\n", sc.Score, sc.Grade, sc.Label)
		for _, c := range sc.Checks {
			if c.Recommendation == "" {
				continue
			}
			fmt.Fprintf(&sb, "  - %s: %s\n", c.Name, c.Recommendation)
		}
	}

	if r.Error != nil {
		fmt.Fprintf(&sb, "\nError: %s\n", *r.Error)
	}

	return io.WriteString(w.output, sb.String())
}

// LCPStatus labels an LCP reading: GOOD under 2500ms, SLOW otherwise, N/A
// when unmeasured.
func LCPStatus(lcp *int) string {
	switch {
	case lcp == nil || *lcp == 0:
		return "N/A"
	case *lcp < grading.LCPGoodMs:
		return "GOOD"
	default:
		return "SLOW"
	}
}

// CLSStatus labels a CLS reading: GOOD under 0.1, POOR otherwise, N/A when
// unmeasured.
func CLSStatus(cls *float64) string {
	switch {
	case cls == nil:
		return "N/A"
	case *cls < 0.1:
		return "GOOD"
	default:
		return "POOR"
	}
}

func msOrNone(v *int) string {
	if v == nil {
		return none
	}
	return strconv.Itoa(*v) + "ms"
}

func clsOrNone(v *float64) string {
	if v == nil {
		return none
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func strOr(v *string, fallback string) string {
	if v == nil || *v == "" {
		return fallback
	}
	return *v
}

func yn(b bool) string {
	if b {
		return "Y"
	}
	return "N"
}
