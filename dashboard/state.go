package dashboard

import "fixxer/models"

const (
	TabOverview    = "overview"
	TabSecurity    = "security"
	TabPerformance = "performance"
	TabQuality     = "quality"
	TabLaunch      = "launch"
)

var tabDefs = []struct {
	id        string
	name      string
	issueType models.IssueType
}{
	{TabOverview, "Overview", ""},
	{TabSecurity, "Security", models.IssueSecurity},
	{TabPerformance, "Performance", models.IssuePerformance},
	{TabQuality, "Code Quality", models.IssueQuality},
	{TabLaunch, "Launch Checklist", models.IssueLaunch},
}

// State is the dashboard's local UI state: the open tab and at most one
// expanded issue.
type State struct {
	Tab      string `json:"tab,omitempty"`
	Expanded string `json:"expanded,omitempty"`
}

// ValidTab reports whether id names a dashboard tab.
func ValidTab(id string) bool {
	for _, def := range tabDefs {
		if def.id == id {
			return true
		}
	}
	return false
}

func (s State) ActiveTab() string {
	if ValidTab(s.Tab) {
		return s.Tab
	}
	return TabOverview
}

// SelectTab switches tabs; unknown ids fall back to the overview.
func (s *State) SelectTab(id string) {
	if !ValidTab(id) {
		id = TabOverview
	}
	s.Tab = id
}

// Toggle expands id, or collapses it when it is already expanded.
func (s *State) Toggle(id string) {
	if s.Expanded == id {
		s.Expanded = ""
		return
	}
	s.Expanded = id
}

func (s State) IsExpanded(id string) bool {
	return id != "" && s.Expanded == id
}
