package grading

import (
	"fmt"
	"math"
	"strings"

	"github.com/use-agent/lpaudit/models"
)

var statusPoints = map[models.Status]float64{
	models.StatusPass:    1.0,
	models.StatusWarning: 0.5,
	models.StatusFail:    0,
}

var severityMultiplier = map[models.Severity]float64{
	models.SeverityCritical: 5.0,
	models.SeverityHigh:     3.0,
	models.SeverityMedium:   1.5,
	models.SeverityLow:      0.5,
}

type checkDef struct {
	name           string
	category       string
	severity       models.Severity
	finding        func(*models.Report, models.Status) string
	recommendation string
}

var checkDefs = map[string]checkDef{
	KeyMobileSpeed: {
		name:     "Mobile page speed (LCP)",
		category: "Performance",
		severity: models.SeverityHigh,
		finding: func(r *models.Report, s models.Status) string {
			if s == models.StatusNA {
				return "Largest Contentful Paint was not measured on mobile."
			}
			return fmt.Sprintf("Mobile LCP is %dms (good < %dms, poor >= %dms).", *r.Performance.LCPMs, LCPGoodMs, LCPPoorMs)
		},
		recommendation: "Compress and preload the hero image, defer non-critical scripts, and serve from a CDN.",
	},
	KeyRelevance: {
		name:     "Headline relevance (H1)",
		category: "Relevance",
		severity: models.SeverityHigh,
		finding: func(r *models.Report, s models.Status) string {
			if s == models.StatusPass {
				return fmt.Sprintf("H1 present: %q.", *r.Content.H1)
			}
			return "No non-empty H1 heading found."
		},
		recommendation: "Add a single H1 that repeats the ad's core promise and keyword.",
	},
	KeySchema: {
		name:     "Structured data",
		category: "Structured Data",
		severity: models.SeverityMedium,
		finding: func(r *models.Report, _ models.Status) string {
			if len(r.Schema.TypesFound) == 0 {
				return "No JSON-LD schema types found."
			}
			return "Schema types found: " + strings.Join(r.Schema.TypesFound, ", ") + "."
		},
		recommendation: "Add Product, Service or FAQPage JSON-LD markup describing the offer.",
	},
	KeyCTAAboveFold: {
		name:     "Call to action above the fold",
		category: "Conversion",
		severity: models.SeverityHigh,
		finding: func(_ *models.Report, s models.Status) string {
			if s == models.StatusPass {
				return "A call-to-action is visible in the first 1080px."
			}
			return "No call-to-action found in the first 1080px."
		},
		recommendation: "Place a primary call-to-action button in the first screen on desktop.",
	},
	KeyMobileResponsive: {
		name:     "Mobile responsive layout",
		category: "Mobile",
		severity: models.SeverityCritical,
		finding: func(r *models.Report, _ models.Status) string {
			var issues []string
			if !r.Mobile.ViewportMeta {
				issues = append(issues, "missing viewport meta tag")
			}
			if r.Mobile.HorizontalScroll {
				issues = append(issues, "content overflows horizontally at 375px")
			}
			if len(issues) == 0 {
				return "Viewport meta present and no horizontal scroll at 375px."
			}
			return "Layout problems: " + strings.Join(issues, "; ") + "."
		},
		recommendation: "Add <meta name=\"viewport\" content=\"width=device-width, initial-scale=1\"> and constrain wide elements.",
	},
	KeyFormFriction: {
		name:     "Form friction",
		category: "Conversion",
		severity: models.SeverityMedium,
		finding: func(r *models.Report, s models.Status) string {
			if s == models.StatusNA {
				return "No form on the page."
			}
			return fmt.Sprintf("Form has %d visible input fields.", r.Conversion.FormFields)
		},
		recommendation: "Cut the form to five fields or fewer; ask for the rest after conversion.",
	},
}

// Evaluate builds the weighted scorecard from a report and its grades.
// Checks absent from grades are reported as N/A and excluded from the score.
func Evaluate(r *models.Report, grades models.Grades) *models.Scorecard {
	sc := &models.Scorecard{Checks: make([]models.Check, 0, len(CheckOrder))}

	var earned, possible float64
	for _, key := range CheckOrder {
		def := checkDefs[key]
		status, ok := grades[key]
		if !ok {
			status = models.StatusNA
		}

		c := models.Check{
			ID:       key,
			Name:     def.name,
			Category: def.category,
			Severity: def.severity,
			Status:   status,
			Finding:  def.finding(r, status),
		}
		if status == models.StatusWarning || status == models.StatusFail {
			c.Recommendation = def.recommendation
		}
		sc.Checks = append(sc.Checks, c)

		if status == models.StatusNA {
			continue
		}
		mult := severityMultiplier[def.severity]
		earned += statusPoints[status] * mult
		possible += mult
	}

	if possible > 0 {
		sc.Score = math.Round(earned/possible*1000) / 10
	}
	sc.Grade, sc.Label = Letter(sc.Score)
	return sc
}

// Letter maps a 0-100 score to a letter grade and its label.
func Letter(score float64) (string, string) {
	switch {
	case score >= 90:
		return "A", "Excellent"
	case score >= 75:
		return "B", "Good"
	case score >= 60:
		return "C", "Needs Improvement"
	case score >= 40:
		return "D", "Poor"
	default:
		return "F", "Critical"
	}
}
