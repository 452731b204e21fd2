package models

// FetchResult is the outcome of a plain HTTP fetch.
type FetchResult struct {
	URL           string            `json:"url"`
	StatusCode    int               `json:"status_code"`
	Content       string            `json:"content"`
	Headers       map[string]string `json:"headers"`
	RedirectChain []string          `json:"redirect_chain"`
	Error         *string           `json:"error"`

	// NeedsBrowser is set when the body looks like a script-rendered shell.
	NeedsBrowser bool `json:"needs_browser,omitempty"`
}

// ScreenshotResult is the outcome of one viewport capture.
type ScreenshotResult struct {
	URL      string  `json:"url"`
	Output   string  `json:"output"`
	Viewport string  `json:"viewport"`
	Success  bool    `json:"success"`
	Error    *string `json:"error"`
}
