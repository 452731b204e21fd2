package models

// Report holds every fact extracted from one landing page. Pointer fields
// are nil until a pass observes a value; they encode as JSON null.
type Report struct {
	URL         string      `json:"url"`
	FinalURL    string      `json:"final_url,omitempty"`
	Performance Performance `json:"performance"`
	Content     Content     `json:"content"`
	Conversion  Conversion  `json:"conversion"`
	Trust       Trust       `json:"trust"`
	Mobile      Mobile      `json:"mobile"`
	Schema      Schema      `json:"schema"`
	Error       *string     `json:"error"`
}

// Performance carries navigation timing and Web Vitals, in milliseconds
// except CLS which is unitless.
type Performance struct {
	LCPMs              *int     `json:"lcp_ms"`
	CLS                *float64 `json:"cls"`
	TTFBMs             *int     `json:"ttfb_ms"`
	DOMContentLoadedMs *int     `json:"dom_content_loaded_ms"`
}

type Content struct {
	Title           *string `json:"title"`
	H1              *string `json:"h1"`
	MetaDescription *string `json:"meta_description"`
	WordCount       int     `json:"word_count"`

	// MainTextWords counts words in the readability-extracted main content.
	MainTextWords int `json:"main_text_words"`
}

type Conversion struct {
	CTAAboveFold bool `json:"cta_above_fold"`
	FormPresent  bool `json:"form_present"`
	FormFields   int  `json:"form_fields"`
	PhoneNumber  bool `json:"phone_number"`
	ChatWidget   bool `json:"chat_widget"`

	// TrackingTags lists ad and analytics vendors the page loaded.
	TrackingTags []string `json:"tracking_tags"`
}

type Trust struct {
	Testimonials  bool `json:"testimonials"`
	TrustBadges   bool `json:"trust_badges"`
	ReviewsSchema bool `json:"reviews_schema"`
}

type Mobile struct {
	ViewportMeta     bool `json:"viewport_meta"`
	HorizontalScroll bool `json:"horizontal_scroll"`
	FontReadable     bool `json:"font_readable"`

	// DOMDistance is the SimHash distance between the desktop and mobile
	// tag structure. Nil when either pass did not produce HTML.
	DOMDistance *int `json:"dom_distance"`
}

type Schema struct {
	TypesFound    []string `json:"types_found"`
	ProductSchema bool     `json:"product_schema"`
	FAQSchema     bool     `json:"faq_schema"`
	ServiceSchema bool     `json:"service_schema"`
}

// NewReport returns a report with every field at its documented default.
func NewReport(url string) *Report {
	return &Report{
		URL: url,
		Conversion: Conversion{
			TrackingTags: []string{},
		},
		Mobile: Mobile{
			FontReadable: true,
		},
		Schema: Schema{
			TypesFound: []string{},
		},
	}
}

// Fail records msg as the report error. The first failure wins.
func (r *Report) Fail(msg string) {
	if r.Error == nil {
		r.Error = &msg
	}
}

// Audit is a report together with its derived grades. It encodes as the
// report's fields plus a "grades" object.
type Audit struct {
	*Report
	Grades    Grades     `json:"grades"`
	Scorecard *Scorecard `json:"scorecard,omitempty"`
}
