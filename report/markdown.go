package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/use-agent/lpaudit/grading"
	"github.com/use-agent/lpaudit/models"
)

// MarkdownWriter outputs the audit as a Markdown document suitable for
// pasting into a ticket or pull request.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the audit in Markdown format.
func (w *MarkdownWriter) Write(audit *models.Audit) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, audit)
	w.writeScore(md, audit)
	w.writeChecks(md, audit)
	w.writeFacts(md, audit.Report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, audit *models.Audit) {
	r := audit.Report
	md.H1("Landing Page Quality Analysis")
	md.PlainText("")

	rows := [][]string{
		{"URL", "`" + r.URL + "`"},
	}
	if r.FinalURL != "" && r.FinalURL != r.URL {
		rows = append(rows, []string{"Final URL", "`" + r.FinalURL + "`"})
	}
	rows = append(rows, []string{"Status", statusText(r)})

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

func statusText(r *models.Report) string {
	if r.Error != nil {
		return "❌ Error - " + *r.Error
	}
	return "✅ Complete"
}

func (w *MarkdownWriter) writeScore(md *markdown.Markdown, audit *models.Audit) {
	sc := audit.Scorecard
	if sc == nil {
		return
	}

	md.H2("Score")
	md.PlainText("")
	md.PlainTextf("**%.1f / 100**, grade **%s** (%s)", sc.Score, sc.Grade, sc.Label)
	md.PlainText("")

	switch sc.Grade {
	case "F", "D":
		md.Cautionf("This page is likely costing ad spend. %d check(s) need attention.", failing(sc))
	case "C":
		md.Warningf("%d check(s) are holding this page back.", failing(sc))
	case "B":
		md.Note("Solid page with room to improve.")
	default:
		md.Tip("This landing page meets the audit bar.")
	}
	md.PlainText("")
}

func failing(sc *models.Scorecard) int {
	n := 0
	for _, c := range sc.Checks {
		if c.Status == models.StatusFail || c.Status == models.StatusWarning {
			n++
		}
	}
	return n
}

func (w *MarkdownWriter) writeChecks(md *markdown.Markdown, audit *models.Audit) {
	md.H2("Audit Grades")
	md.PlainText("")

	if audit.Scorecard == nil {
		items := make([]string, 0, len(audit.Grades))
		for _, key := range grading.CheckOrder {
			if status, ok := audit.Grades[key]; ok {
				items = append(items, fmt.Sprintf("[%s] %s", status, key))
			}
		}
		md.BulletList(items...)
		md.PlainText("")
		return
	}

	rows := make([][]string, len(audit.Scorecard.Checks))
	for i, c := range audit.Scorecard.Checks {
		rec := c.Recommendation
		if rec == "" {
			rec = "-"
		}
		rows[i] = []string{
			statusIcon(c.Status) + " " + string(c.Status),
			"`" + c.ID + "`",
			string(c.Severity),
			c.Finding,
			rec,
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Status", "Check", "Severity", "Finding", "Recommendation"},
		Rows:   rows,
	})
	md.PlainText("")
}

func statusIcon(s models.Status) string {
	switch s {
	case models.StatusPass:
		return "✅"
	case models.StatusWarning:
		return "⚠️"
	case models.StatusFail:
		return "❌"
	default:
		return "➖"
	}
}

func (w *MarkdownWriter) writeFacts(md *markdown.Markdown, r *models.Report) {
	md.H2("Performance")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value", "Status"},
		Rows: [][]string{
			{"LCP (mobile)", msOrNone(r.Performance.LCPMs), LCPStatus(r.Performance.LCPMs)},
			{"CLS", clsOrNone(r.Performance.CLS), CLSStatus(r.Performance.CLS)},
			{"TTFB", msOrNone(r.Performance.TTFBMs), "-"},
			{"DOMContentLoaded", msOrNone(r.Performance.DOMContentLoadedMs), "-"},
		},
	})
	md.PlainText("")

	md.H2("Content")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Element", "Value"},
		Rows: [][]string{
			{"Title", strOr(r.Content.Title, none)},
			{"H1", strOr(r.Content.H1, "MISSING")},
			{"Meta description", strOr(r.Content.MetaDescription, none)},
			{"Words", strconv.Itoa(r.Content.WordCount)},
			{"Main content words", strconv.Itoa(r.Content.MainTextWords)},
		},
	})
	md.PlainText("")

	md.H2("Conversion & Trust")
	md.PlainText("")
	form := "N"
	if r.Conversion.FormPresent {
		form = fmt.Sprintf("Y (%d fields)", r.Conversion.FormFields)
	}
	md.BulletList(
		"CTA above fold: "+yn(r.Conversion.CTAAboveFold),
		"Form: "+form,
		"Phone: "+yn(r.Conversion.PhoneNumber),
		"Chat: "+yn(r.Conversion.ChatWidget),
		"Testimonials: "+yn(r.Trust.Testimonials),
		"Trust badges: "+yn(r.Trust.TrustBadges),
		"Review schema: "+yn(r.Trust.ReviewsSchema),
	)
	md.PlainText("")

	if len(r.Conversion.TrackingTags) > 0 {
		md.H2("Tracking")
		md.PlainText("")
		md.BulletList(r.Conversion.TrackingTags...)
		md.PlainText("")
	}

	md.H2("Mobile")
	md.PlainText("")
	distance := none
	if r.Mobile.DOMDistance != nil {
		distance = strconv.Itoa(*r.Mobile.DOMDistance)
	}
	md.BulletList(
		"Viewport meta: "+yn(r.Mobile.ViewportMeta),
		"Horizontal scroll: "+yn(r.Mobile.HorizontalScroll),
		"Readable font: "+yn(r.Mobile.FontReadable),
		"Desktop/mobile DOM distance: "+distance,
	)
	md.PlainText("")

	md.H2("Schema")
	md.PlainText("")
	if len(r.Schema.TypesFound) == 0 {
		md.PlainText("No structured data found.")
	} else {
		md.BulletList(r.Schema.TypesFound...)
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by lpaudit*")
}
