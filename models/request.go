package models

// AnalyzeRequest is the payload for POST /api/v1/analyze.
type AnalyzeRequest struct {
	// URL is the landing page to audit. Required.
	URL string `json:"url" binding:"required,url"`

	// TimeoutMs bounds each browser pass. Default: 30000. Max: 120000.
	TimeoutMs int `json:"timeout_ms,omitempty" binding:"omitempty,min=1000,max=120000"`

	// Stealth enables anti-bot-detection evasions.
	Stealth bool `json:"stealth,omitempty"`

	// MaxAge serves a cached report younger than this many milliseconds.
	MaxAge int `json:"max_age,omitempty" binding:"omitempty,min=0"`

	// WebhookURL receives the finished audit as an audit.completed event.
	WebhookURL    string `json:"webhook_url,omitempty" binding:"omitempty,url"`
	WebhookSecret string `json:"webhook_secret,omitempty"`
}

// Defaults applies default values to unset fields.
func (r *AnalyzeRequest) Defaults() {
	if r.TimeoutMs == 0 {
		r.TimeoutMs = 30000
	}
}

// FetchRequest is the payload for POST /api/v1/fetch.
type FetchRequest struct {
	URL string `json:"url" binding:"required"`

	// Timeout is in seconds. Default: 30.
	Timeout int `json:"timeout,omitempty" binding:"omitempty,min=1,max=120"`

	// FollowRedirects defaults to true.
	FollowRedirects *bool `json:"follow_redirects,omitempty"`

	// MaxRedirects defaults to 5.
	MaxRedirects int `json:"max_redirects,omitempty" binding:"omitempty,min=1,max=20"`

	// Format is "html" (default), "markdown" or "text".
	Format string `json:"format,omitempty" binding:"omitempty,oneof=html markdown text"`

	// CSSSelector narrows the body before conversion.
	CSSSelector string `json:"css_selector,omitempty"`
}

// Defaults applies default values to unset fields.
func (r *FetchRequest) Defaults() {
	if r.Timeout == 0 {
		r.Timeout = 30
	}
	if r.FollowRedirects == nil {
		t := true
		r.FollowRedirects = &t
	}
	if r.MaxRedirects == 0 {
		r.MaxRedirects = 5
	}
	if r.Format == "" {
		r.Format = "html"
	}
}

// ScreenshotRequest is the payload for POST /api/v1/screenshot.
type ScreenshotRequest struct {
	URL       string `json:"url" binding:"required,url"`
	Viewport  string `json:"viewport,omitempty"`
	FullPage  bool   `json:"full_page,omitempty"`
	TimeoutMs int    `json:"timeout_ms,omitempty" binding:"omitempty,min=1000,max=120000"`
}

// Defaults applies default values to unset fields.
func (r *ScreenshotRequest) Defaults() {
	if r.Viewport == "" {
		r.Viewport = "desktop"
	}
	if r.TimeoutMs == 0 {
		r.TimeoutMs = 30000
	}
}
