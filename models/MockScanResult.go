package models

import "time"

// MockScanResult returns the fixed demo result. Only the timestamp varies
// between calls; the files that were "scanned" never influence it.
func MockScanResult(now time.Time) ScanResult {
	return ScanResult{
		ProjectName:  "my-ai-app",
		LastScanned:  now,
		OverallScore: 89,
		Scores: Scores{
			Security:        94,
			Performance:     87,
			CodeQuality:     91,
			LaunchChecklist: 70,
		},
		Issues: []Issue{
			{
				ID:          "1",
				Type:        IssueSecurity,
				Severity:    SeverityHigh,
				Title:       "Exposed API Key",
				Description: "API key found in config.js line 23",
				File:        "config.js",
				Line:        23,
				Fixable:     true,
			},
			{
				ID:          "2",
				Type:        IssueSecurity,
				Severity:    SeverityMedium,
				Title:       "SQL Injection Risk",
				Description: "Potential SQL injection vulnerability in auth.js line 45",
				File:        "auth.js",
				Line:        45,
				Fixable:     true,
			},
			{
				ID:          "3",
				Type:        IssueLaunch,
				Severity:    SeverityMedium,
				Title:       "Missing Rate Limiting",
				Description: "API endpoints lack rate limiting protection",
				File:        "api/routes.js",
				Line:        12,
				Fixable:     false,
			},
		},
		Checklist: Checklist{
			Completed: []string{"Payment Integration", "User Analytics"},
			Pending:   []string{"Rate Limiting", "Terms of Service", "Privacy Policy"},
		},
	}
}
