package models

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrScoreOutOfRange = errors.New("score out of range: must be within 0..100")
	ErrDuplicateIssue  = errors.New("duplicate issue id")
)

// Scores holds the per-category scores shown on the dashboard.
type Scores struct {
	Security        int `json:"security"`
	Performance     int `json:"performance"`
	CodeQuality     int `json:"codeQuality"`
	LaunchChecklist int `json:"launchChecklist"`
}

type Checklist struct {
	Completed []string `json:"completed"`
	Pending   []string `json:"pending"`
}

// ScanResult is the output of a simulated scan. It only ever lives in a
// visitor's view state and is replaced wholesale by the next scan.
type ScanResult struct {
	ProjectName  string    `json:"projectName"`
	LastScanned  time.Time `json:"lastScanned"`
	OverallScore int       `json:"overallScore"`
	Scores       Scores    `json:"scores"`
	Issues       []Issue   `json:"issues"`
	Checklist    Checklist `json:"checklist"`
}

// Validate checks score ranges and issue id uniqueness.
func (r *ScanResult) Validate() error {
	checks := []struct {
		name  string
		value int
	}{
		{"overallScore", r.OverallScore},
		{"security", r.Scores.Security},
		{"performance", r.Scores.Performance},
		{"codeQuality", r.Scores.CodeQuality},
		{"launchChecklist", r.Scores.LaunchChecklist},
	}
	for _, c := range checks {
		if c.value < 0 || c.value > 100 {
			return fmt.Errorf("%s=%d: %w", c.name, c.value, ErrScoreOutOfRange)
		}
	}

	seen := make(map[string]struct{}, len(r.Issues))
	for _, issue := range r.Issues {
		if _, ok := seen[issue.ID]; ok {
			return fmt.Errorf("%s: %w", issue.ID, ErrDuplicateIssue)
		}
		seen[issue.ID] = struct{}{}
	}
	return nil
}

// FindIssue returns the issue with the given id.
func (r *ScanResult) FindIssue(id string) (Issue, bool) {
	for _, issue := range r.Issues {
		if issue.ID == id {
			return issue, true
		}
	}
	return Issue{}, false
}
