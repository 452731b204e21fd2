// Package grading applies the audit thresholds to an extracted report.
// Every function here is pure: the same report always yields the same grades.
package grading

import "github.com/use-agent/lpaudit/models"

// Check keys, in presentation order.
const (
	KeyMobileSpeed      = "G59_mobile_speed"
	KeyRelevance        = "G60_relevance"
	KeySchema           = "G61_schema"
	KeyCTAAboveFold     = "cta_above_fold"
	KeyMobileResponsive = "mobile_responsive"
	KeyFormFriction     = "form_friction"
)

// CheckOrder lists every check key in the order reports present them.
var CheckOrder = []string{
	KeyMobileSpeed,
	KeyRelevance,
	KeySchema,
	KeyCTAAboveFold,
	KeyMobileResponsive,
	KeyFormFriction,
}

// Thresholds. Comparisons against LCP are strict, so exactly 2500ms is a
// WARNING and exactly 4000ms a FAIL.
const (
	LCPGoodMs = 2500
	LCPPoorMs = 4000

	FormFieldsPass = 5
	FormFieldsWarn = 8
)

// Grade derives the grade map from a report. G59_mobile_speed is present
// only when LCP was measured and non-zero; form_friction only when the page
// has a form.
func Grade(r *models.Report) models.Grades {
	g := models.Grades{}

	if lcp := r.Performance.LCPMs; lcp != nil && *lcp != 0 {
		switch {
		case *lcp < LCPGoodMs:
			g[KeyMobileSpeed] = models.StatusPass
		case *lcp < LCPPoorMs:
			g[KeyMobileSpeed] = models.StatusWarning
		default:
			g[KeyMobileSpeed] = models.StatusFail
		}
	}

	g[KeyRelevance] = passIf(r.Content.H1 != nil && *r.Content.H1 != "")
	g[KeySchema] = passIf(r.Schema.ProductSchema || r.Schema.FAQSchema || r.Schema.ServiceSchema)
	g[KeyCTAAboveFold] = passIf(r.Conversion.CTAAboveFold)
	g[KeyMobileResponsive] = passIf(r.Mobile.ViewportMeta && !r.Mobile.HorizontalScroll)

	if r.Conversion.FormPresent {
		switch fields := r.Conversion.FormFields; {
		case fields <= FormFieldsPass:
			g[KeyFormFriction] = models.StatusPass
		case fields <= FormFieldsWarn:
			g[KeyFormFriction] = models.StatusWarning
		default:
			g[KeyFormFriction] = models.StatusFail
		}
	}

	return g
}

// NewAudit pairs a report with its grades and scorecard.
func NewAudit(r *models.Report) *models.Audit {
	grades := Grade(r)
	return &models.Audit{
		Report:    r,
		Grades:    grades,
		Scorecard: Evaluate(r, grades),
	}
}

func passIf(ok bool) models.Status {
	if ok {
		return models.StatusPass
	}
	return models.StatusFail
}
