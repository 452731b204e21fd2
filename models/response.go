package models

// AnalyzeResponse is the response for POST /api/v1/analyze.
type AnalyzeResponse struct {
	Success bool   `json:"success"`
	Audit   *Audit `json:"audit,omitempty"`

	// CacheStatus is "hit", "miss", or empty when caching was not requested.
	CacheStatus string `json:"cache_status,omitempty"`

	Timing TimingInfo   `json:"timing"`
	Error  *ErrorDetail `json:"error,omitempty"`
}

// FetchResponse is the response for POST /api/v1/fetch.
type FetchResponse struct {
	Success bool         `json:"success"`
	Result  *FetchResult `json:"result,omitempty"`
	Timing  TimingInfo   `json:"timing"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// ErrorResponse is written by middleware and handlers that fail before
// any result exists.
type ErrorResponse struct {
	Success bool         `json:"success"`
	Error   *ErrorDetail `json:"error"`
}

// TimingInfo breaks down the time spent in each phase.
type TimingInfo struct {
	TotalMs int64 `json:"total_ms"`

	// AnalyzeMs is the time spent driving the browser.
	AnalyzeMs int64 `json:"analyze_ms,omitempty"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status       string    `json:"status"` // "healthy", "degraded" or "saturated"
	Uptime       string    `json:"uptime"`
	PoolStats    PoolStats `json:"pool_stats"`
	CachedAudits int       `json:"cached_audits"`
	Version      string    `json:"version"`
}

// PoolStats reports the state of the browser context pool.
type PoolStats struct {
	MaxContexts    int `json:"max_contexts"`
	ActiveContexts int `json:"active_contexts"`
}
