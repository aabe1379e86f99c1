// Package quality scores generated highlights and social posts against
// structural rules.
package quality

import "fmt"

// DefaultThreshold is the minimum score for an acceptable result.
const DefaultThreshold = 60.0

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Issue is one rule violation.
type Issue struct {
	Type      string  `json:"type"`
	Severity  string  `json:"severity"`
	Details   string  `json:"details"`
	Index     *int    `json:"index,omitempty"`
	Deduction float64 `json:"deduction"`
}

// Report is the outcome of a validation.
type Report struct {
	Score        float64 `json:"score"`
	IsAcceptable bool    `json:"is_acceptable"`
	Issues       []Issue `json:"issues"`
}

// HasErrors reports whether any issue has error severity.
func (r *Report) HasErrors() bool {
	for _, i := range r.Issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Messages returns the issue details in order.
func (r *Report) Messages() []string {
	out := make([]string, len(r.Issues))
	for i, issue := range r.Issues {
		out[i] = issue.Details
	}
	return out
}

type scorer struct {
	score  float64
	issues []Issue
}

func newScorer() *scorer {
	return &scorer{score: 100, issues: []Issue{}}
}

func (s *scorer) deduct(issueType, severity string, points float64, index *int, format string, args ...any) {
	s.score -= points
	s.issues = append(s.issues, Issue{
		Type:      issueType,
		Severity:  severity,
		Details:   fmt.Sprintf(format, args...),
		Index:     index,
		Deduction: points,
	})
}

// report clamps the score at 0. Error-severity issues make a report
// unacceptable regardless of score.
func (s *scorer) report(threshold float64) *Report {
	r := &Report{Score: max(s.score, 0), Issues: s.issues}
	r.IsAcceptable = r.Score >= threshold && !r.HasErrors()
	return r
}

func intPtr(i int) *int {
	return &i
}
