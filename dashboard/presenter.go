// Package dashboard turns a ScanResult into the data the dashboard page
// renders. Nothing here mutates the result.
package dashboard

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"fixxer/models"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	ErrIssueNotFound = errors.New("issue not found")
	ErrNotFixable    = errors.New("issue has no automatic fix")
)

// Band is the color band a score falls into.
type Band string

const (
	BandGood    Band = "good"
	BandWarning Band = "warning"
	BandBad     Band = "bad"
)

// BandFor maps a score to its band: 90 and up is good, 70 and up a warning.
func BandFor(score int) Band {
	switch {
	case score >= 90:
		return BandGood
	case score >= 70:
		return BandWarning
	default:
		return BandBad
	}
}

func (b Band) TextClass() string {
	switch b {
	case BandGood:
		return "text-green-600"
	case BandWarning:
		return "text-yellow-600"
	default:
		return "text-red-600"
	}
}

func (b Band) BgClass() string {
	switch b {
	case BandGood:
		return "bg-green-100"
	case BandWarning:
		return "bg-yellow-100"
	default:
		return "bg-red-100"
	}
}

// Chart colors per score category.
const (
	ColorSecurity        = "#ef4444"
	ColorPerformance     = "#f59e0b"
	ColorCodeQuality     = "#3b82f6"
	ColorLaunchChecklist = "#8b5cf6"
)

var severityClasses = map[models.Severity]string{
	models.SeverityHigh:   "text-red-600 bg-red-50 border-red-200",
	models.SeverityMedium: "text-yellow-600 bg-yellow-50 border-yellow-200",
	models.SeverityLow:    "text-blue-600 bg-blue-50 border-blue-200",
}

const suggestedFix = "Move API key to environment variables and use process.env.API_KEY"

// criticalLimit is how many issues the overview lists.
const criticalLimit = 3

type ScoreCard struct {
	Name  string
	Value int
	Color string
	Band  Band
}

type Tab struct {
	ID     string
	Name   string
	Count  int
	Counts bool
	Active bool
}

type IssueRow struct {
	models.Issue
	Expanded      bool
	SeverityClass string
	SuggestedFix  string
}

type SecurityPanel struct {
	Score  int
	Band   Band
	Issues []IssueRow
}

type Placeholder struct {
	Title string
	Body  string
}

type Page struct {
	ProjectName  string
	LastScanned  time.Time
	OverallScore int
	OverallBand  Band

	Tabs     []Tab
	Selected string

	Cards     []ScoreCard
	Chart     string
	Critical  []IssueRow
	Checklist models.Checklist

	Security    *SecurityPanel
	Placeholder *Placeholder
}

// GroupByType buckets issues by category, keeping their order.
func GroupByType(issues []models.Issue) map[models.IssueType][]models.Issue {
	groups := make(map[models.IssueType][]models.Issue, len(models.IssueTypes))
	for _, t := range models.IssueTypes {
		groups[t] = []models.Issue{}
	}
	for _, issue := range issues {
		groups[issue.Type] = append(groups[issue.Type], issue)
	}
	return groups
}

// Cards returns the four score cards in display order.
func Cards(s models.Scores) []ScoreCard {
	cards := []ScoreCard{
		{Name: "Security", Value: s.Security, Color: ColorSecurity},
		{Name: "Performance", Value: s.Performance, Color: ColorPerformance},
		{Name: "Code Quality", Value: s.CodeQuality, Color: ColorCodeQuality},
		{Name: "Launch Ready", Value: s.LaunchChecklist, Color: ColorLaunchChecklist},
	}
	for i := range cards {
		cards[i].Band = BandFor(cards[i].Value)
	}
	return cards
}

// ChartGradient renders the score breakdown as a CSS conic gradient whose
// slices are proportional to each card's value.
func ChartGradient(cards []ScoreCard) string {
	total := 0
	for _, c := range cards {
		total += c.Value
	}
	if total == 0 {
		return "conic-gradient(#e5e7eb 0% 100%)"
	}

	parts := make([]string, 0, len(cards))
	start := 0.0
	for i, c := range cards {
		end := start + float64(c.Value)/float64(total)*100
		if i == len(cards)-1 {
			end = 100
		}
		parts = append(parts, fmt.Sprintf("%s %s%% %s%%", c.Color, pct(start), pct(end)))
		start = end
	}
	return "conic-gradient(" + strings.Join(parts, ", ") + ")"
}

func pct(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// Present builds the page model for the selected tab.
func Present(result *models.ScanResult, state State) Page {
	groups := GroupByType(result.Issues)
	cards := Cards(result.Scores)
	selected := state.ActiveTab()

	page := Page{
		ProjectName:  result.ProjectName,
		LastScanned:  result.LastScanned,
		OverallScore: result.OverallScore,
		OverallBand:  BandFor(result.OverallScore),
		Selected:     selected,
		Cards:        cards,
		Chart:        ChartGradient(cards),
		Checklist:    result.Checklist,
	}

	for _, def := range tabDefs {
		tab := Tab{ID: def.id, Name: def.name, Active: def.id == selected}
		if def.issueType != "" {
			tab.Count = len(groups[def.issueType])
			tab.Counts = tab.Count > 0
		}
		page.Tabs = append(page.Tabs, tab)
	}

	limit := min(criticalLimit, len(result.Issues))
	for _, issue := range result.Issues[:limit] {
		page.Critical = append(page.Critical, row(issue, state))
	}

	switch selected {
	case TabOverview:
	case TabSecurity:
		panel := &SecurityPanel{
			Score:  result.Scores.Security,
			Band:   BandFor(result.Scores.Security),
			Issues: []IssueRow{},
		}
		for _, issue := range groups[models.IssueSecurity] {
			panel.Issues = append(panel.Issues, row(issue, state))
		}
		page.Security = panel
	default:
		page.Placeholder = &Placeholder{
			Title: cases.Title(language.English).String(selected) + " Analysis",
			Body:  "Detailed " + selected + " analysis will be displayed here.",
		}
	}
	return page
}

func row(issue models.Issue, state State) IssueRow {
	r := IssueRow{
		Issue:         issue,
		Expanded:      state.IsExpanded(issue.ID),
		SeverityClass: severityClasses[issue.Severity],
	}
	if issue.Fixable {
		r.SuggestedFix = suggestedFix
	}
	return r
}

// FixMessage explains what an automatic fix would do. The full product
// would apply the change; the demo only describes it.
func FixMessage(result *models.ScanResult, id string) (string, error) {
	issue, ok := result.FindIssue(id)
	if !ok {
		return "", fmt.Errorf("%s: %w", id, ErrIssueNotFound)
	}
	if !issue.Fixable {
		return "", fmt.Errorf("%s: %w", id, ErrNotFixable)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🔧 Applying fix for %q...\n\n", issue.Title)
	b.WriteString("This would automatically:\n")
	fmt.Fprintf(&b, "• Update %s at line %d\n", issue.File, issue.Line)
	b.WriteString("• Apply security best practices\n")
	b.WriteString("• Generate a commit with the fix\n\n")
	b.WriteString("In the full version, this fix would be applied instantly!")
	return b.String(), nil
}
