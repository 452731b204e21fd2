package config

import "errors"

// Validation errors returned by Config.Validate, Rules.Validate and the CLI
// flag checks. Callers match them with errors.Is.
var (
	// ErrInvalidTimeout is returned when a timeout is zero or negative.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxPages is returned when the browser context cap is not positive.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be positive")

	// ErrInvalidMaxRedirects is returned when the redirect limit is negative.
	ErrInvalidMaxRedirects = errors.New("invalid max redirects: must be non-negative")

	ErrInvalidPort = errors.New("invalid port")

	ErrInvalidLogFormat = errors.New("invalid log format: must be text or json")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidViewport is returned for a viewport name outside the preset list.
	ErrInvalidViewport = errors.New("invalid viewport")

	// ErrInvalidFormat is returned for a fetch output format other than
	// html, markdown or text.
	ErrInvalidFormat = errors.New("invalid format: must be html, markdown or text")

	// ErrRulesNotFound is returned when an explicitly requested rules file
	// does not exist.
	ErrRulesNotFound = errors.New("rules file not found")

	// ErrInvalidSelector is returned when a rules file carries a CSS
	// selector that cannot be parsed.
	ErrInvalidSelector = errors.New("invalid selector in rules")
)
