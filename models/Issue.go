package models

import "strconv"

type IssueType string

const (
	IssueSecurity    IssueType = "security"
	IssuePerformance IssueType = "performance"
	IssueQuality     IssueType = "quality"
	IssueLaunch      IssueType = "launch"
)

// IssueTypes lists the categories in dashboard tab order.
var IssueTypes = []IssueType{IssueSecurity, IssuePerformance, IssueQuality, IssueLaunch}

type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

type Issue struct {
	ID          string    `json:"id"`
	Type        IssueType `json:"type"`
	Severity    Severity  `json:"severity"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	File        string    `json:"file"`
	Line        int       `json:"line"`
	Fixable     bool      `json:"fixable"`
}

// Location renders the issue position as file:line.
func (i Issue) Location() string {
	return i.File + ":" + strconv.Itoa(i.Line)
}
