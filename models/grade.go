package models

// Status is the outcome of a single check.
type Status string

const (
	StatusPass    Status = "PASS"
	StatusWarning Status = "WARNING"
	StatusFail    Status = "FAIL"
	StatusNA      Status = "N/A"
)

// Grades maps a check key to its status. Checks that do not apply are absent.
type Grades map[string]Status

// Severity weights a check in the overall score.
type Severity string

const (
	SeverityCritical Severity = "Critical"
	SeverityHigh     Severity = "High"
	SeverityMedium   Severity = "Medium"
	SeverityLow      Severity = "Low"
)

// Check is one scored line of the scorecard.
type Check struct {
	ID             string   `json:"id"`
	Name           string   `json:"check"`
	Category       string   `json:"category"`
	Severity       Severity `json:"severity"`
	Status         Status   `json:"status"`
	Finding        string   `json:"finding"`
	Recommendation string   `json:"recommendation,omitempty"`
}

// Scorecard is the weighted summary of all checks.
type Scorecard struct {
	Score  float64 `json:"score"`
	Grade  string  `json:"grade"`
	Label  string  `json:"label"`
	Checks []Check `json:"checks"`
}
