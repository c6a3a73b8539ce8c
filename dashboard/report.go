package dashboard

import (
	"io"
	"strconv"

	"fixxer/models"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// WriteMarkdown writes a downloadable report of result to w.
func WriteMarkdown(w io.Writer, result *models.ScanResult) error {
	md := markdown.NewMarkdown(w)

	md.H1(result.ProjectName + " scan report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Project", "`" + result.ProjectName + "`"},
			{"Last Scanned", result.LastScanned.Format("2006-01-02 15:04:05 MST")},
			{"Overall Score", strconv.Itoa(result.OverallScore) + "/100"},
			{"Status", statusText(result.OverallScore)},
		},
	})
	md.PlainText("")

	cards := Cards(result.Scores)
	md.H2("Scores")
	md.PlainText("")
	rows := make([][]string, 0, len(cards))
	for _, c := range cards {
		rows = append(rows, []string{c.Name, strconv.Itoa(c.Value) + "/100", string(c.Band)})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Category", "Score", "Rating"},
		Rows:   rows,
	})
	md.PlainText("")

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Score Breakdown"),
		piechart.WithShowData(true),
	)
	for _, c := range cards {
		chart.LabelAndIntValue(c.Name, uint64(c.Value))
	}
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")

	writeIssues(md, result)
	writeChecklist(md, result.Checklist)

	return md.Build()
}

func statusText(score int) string {
	switch BandFor(score) {
	case BandGood:
		return "✅ Production Ready"
	case BandWarning:
		return "⚠️ Needs Attention"
	default:
		return "❌ Not Ready"
	}
}

func writeIssues(md *markdown.Markdown, result *models.ScanResult) {
	md.H2("Issues")
	md.PlainText("")

	if len(result.Issues) == 0 {
		md.Tip("No issues found.")
		md.PlainText("")
		return
	}

	high := 0
	rows := make([][]string, 0, len(result.Issues))
	for _, issue := range result.Issues {
		if issue.Severity == models.SeverityHigh {
			high++
		}
		fixable := "no"
		if issue.Fixable {
			fixable = "yes"
		}
		rows = append(rows, []string{
			issue.ID,
			string(issue.Type),
			string(issue.Severity),
			issue.Title,
			"`" + issue.Location() + "`",
			fixable,
		})
	}
	if high > 0 {
		md.Warningf("%d high severity issue(s) should be fixed before launch.", high)
		md.PlainText("")
	}
	md.Table(markdown.TableSet{
		Header: []string{"ID", "Type", "Severity", "Title", "Location", "Fixable"},
		Rows:   rows,
	})
	md.PlainText("")
}

func writeChecklist(md *markdown.Markdown, checklist models.Checklist) {
	md.H2("Launch Checklist")
	md.PlainText("")

	items := make([]string, 0, len(checklist.Completed)+len(checklist.Pending))
	for _, item := range checklist.Completed {
		items = append(items, "✅ "+item)
	}
	for _, item := range checklist.Pending {
		items = append(items, "⏳ "+item)
	}
	if len(items) == 0 {
		md.PlainText("Nothing to check.")
		return
	}
	md.BulletList(items...)
}
