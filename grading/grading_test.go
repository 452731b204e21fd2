package grading

import (
	"reflect"
	"testing"

	"github.com/use-agent/lpaudit/models"
)

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

// goodReport returns a report that passes every always-present check.
func goodReport() *models.Report {
	r := models.NewReport("https://example.com")
	r.Content.H1 = strPtr("Same-day plumbing")
	r.Schema.ServiceSchema = true
	r.Conversion.CTAAboveFold = true
	r.Mobile.ViewportMeta = true
	return r
}

func TestGrade_MobileSpeed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		lcp    *int
		want   models.Status
		absent bool
	}{
		{name: "not measured", lcp: nil, absent: true},
		{name: "zero treated as unmeasured", lcp: intPtr(0), absent: true},
		{name: "fast", lcp: intPtr(1200), want: models.StatusPass},
		{name: "just under good", lcp: intPtr(2499), want: models.StatusPass},
		{name: "exactly 2500 is not pass", lcp: intPtr(2500), want: models.StatusWarning},
		{name: "just under poor", lcp: intPtr(3999), want: models.StatusWarning},
		{name: "exactly 4000 fails", lcp: intPtr(4000), want: models.StatusFail},
		{name: "slow", lcp: intPtr(9000), want: models.StatusFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := goodReport()
			r.Performance.LCPMs = tt.lcp
			got, ok := Grade(r)[KeyMobileSpeed]
			if tt.absent {
				if ok {
					t.Errorf("expected %s to be absent, got %s", KeyMobileSpeed, got)
				}
				return
			}
			if got != tt.want {
				t.Errorf("%s = %s, want %s", KeyMobileSpeed, got, tt.want)
			}
		})
	}
}

func TestGrade_Relevance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		h1   *string
		want models.Status
	}{
		{"missing", nil, models.StatusFail},
		{"empty", strPtr(""), models.StatusFail},
		{"present", strPtr("Buy shoes"), models.StatusPass},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := goodReport()
			r.Content.H1 = tt.h1
			if got := Grade(r)[KeyRelevance]; got != tt.want {
				t.Errorf("%s = %s, want %s", KeyRelevance, got, tt.want)
			}
		})
	}
}

func TestGrade_MissingH1FailsRegardlessOfOtherFields(t *testing.T) {
	t.Parallel()

	r := goodReport()
	r.Content.H1 = nil
	r.Content.Title = strPtr("Great title")
	r.Content.MetaDescription = strPtr("Great description")
	r.Content.WordCount = 2000
	r.Schema.ProductSchema = true
	r.Schema.FAQSchema = true

	if got := Grade(r)[KeyRelevance]; got != models.StatusFail {
		t.Errorf("%s = %s, want FAIL", KeyRelevance, got)
	}
}

func TestGrade_Schema(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*models.Report)
		want   models.Status
	}{
		{"no types", func(r *models.Report) { r.Schema = models.Schema{TypesFound: []string{}} }, models.StatusFail},
		{"only organization", func(r *models.Report) {
			r.Schema = models.Schema{TypesFound: []string{"Organization"}}
		}, models.StatusFail},
		{"product", func(r *models.Report) { r.Schema = models.Schema{ProductSchema: true} }, models.StatusPass},
		{"faq", func(r *models.Report) { r.Schema = models.Schema{FAQSchema: true} }, models.StatusPass},
		{"service", func(r *models.Report) { r.Schema = models.Schema{ServiceSchema: true} }, models.StatusPass},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := goodReport()
			tt.mutate(r)
			if got := Grade(r)[KeySchema]; got != tt.want {
				t.Errorf("%s = %s, want %s", KeySchema, got, tt.want)
			}
		})
	}
}

func TestGrade_MobileResponsive(t *testing.T) {
	t.Parallel()

	tests := []struct {
		viewport, scroll bool
		want             models.Status
	}{
		{true, false, models.StatusPass},
		{true, true, models.StatusFail},
		{false, false, models.StatusFail},
		{false, true, models.StatusFail},
	}
	for _, tt := range tests {
		r := goodReport()
		r.Mobile.ViewportMeta = tt.viewport
		r.Mobile.HorizontalScroll = tt.scroll
		if got := Grade(r)[KeyMobileResponsive]; got != tt.want {
			t.Errorf("viewport=%v scroll=%v: got %s, want %s", tt.viewport, tt.scroll, got, tt.want)
		}
	}
}

func TestGrade_FormFriction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		present bool
		fields  int
		want    models.Status
		absent  bool
	}{
		{name: "no form", present: false, absent: true},
		{name: "empty form", present: true, fields: 0, want: models.StatusPass},
		{name: "five fields", present: true, fields: 5, want: models.StatusPass},
		{name: "six fields", present: true, fields: 6, want: models.StatusWarning},
		{name: "eight fields", present: true, fields: 8, want: models.StatusWarning},
		{name: "nine fields", present: true, fields: 9, want: models.StatusFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := goodReport()
			r.Conversion.FormPresent = tt.present
			r.Conversion.FormFields = tt.fields
			got, ok := Grade(r)[KeyFormFriction]
			if tt.absent {
				if ok {
					t.Errorf("expected %s to be absent, got %s", KeyFormFriction, got)
				}
				return
			}
			if got != tt.want {
				t.Errorf("%s = %s, want %s", KeyFormFriction, got, tt.want)
			}
		})
	}
}

func TestGrade_Deterministic(t *testing.T) {
	t.Parallel()

	r := goodReport()
	r.Performance.LCPMs = intPtr(3100)
	r.Conversion.FormPresent = true
	r.Conversion.FormFields = 7

	first := Grade(r)
	for i := 0; i < 10; i++ {
		if got := Grade(r); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d: grades changed: %v vs %v", i, got, first)
		}
	}
}

func TestGrade_DefaultReport(t *testing.T) {
	t.Parallel()

	got := Grade(models.NewReport("https://example.com"))
	want := models.Grades{
		KeyRelevance:        models.StatusFail,
		KeySchema:           models.StatusFail,
		KeyCTAAboveFold:     models.StatusFail,
		KeyMobileResponsive: models.StatusFail,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Grade(default) = %v, want %v", got, want)
	}
}
