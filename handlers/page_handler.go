package handlers

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"fixxer/checkout"
	"fixxer/content"
	"fixxer/dashboard"
	"fixxer/pricing"
	"fixxer/session"
	"fixxer/upload"
	"fixxer/view"

	"github.com/gin-gonic/gin"
)

type homeData struct {
	Layout
	Cards    []pricing.Card
	Billing  pricing.Period
	OpenFAQ  int
	Files    []upload.File
	Rejected []upload.Rejection
}

type dashboardData struct {
	Layout
	Page dashboard.Page
}

type successData struct {
	Layout
	SessionID string
}

// PageHandler serves the marketing page, the dashboard and the view API.
type PageHandler struct {
	Site           *content.Site
	Sessions       session.Store
	Checkout       *checkout.Service
	PublishableKey string
	Logger         *slog.Logger
}

func NewPageHandler(d Deps) *PageHandler {
	return &PageHandler{
		Site:           d.Site,
		Sessions:       d.Sessions,
		Checkout:       d.Checkout,
		PublishableKey: d.PublishableKey,
		Logger:         d.Logger,
	}
}

func (h *PageHandler) layout() Layout {
	return Layout{Site: h.Site, PublishableKey: h.PublishableKey}
}

// Home renders the marketing page. ?billing= switches the pricing period
// and ?faq= opens one answer (-1 closes them all).
func (h *PageHandler) Home(c *gin.Context) {
	sess := currentSession(c)
	if sess.Router.Current() == view.Dashboard {
		seeOther(c, "/dashboard")
		return
	}
	if sess.Scanning() {
		seeOther(c, "/scan/"+sess.JobID)
		return
	}

	changed := false
	if raw, ok := c.GetQuery("billing"); ok {
		if p, err := pricing.ParsePeriod(raw); err == nil {
			sess.Billing = p
			changed = true
		}
	}
	if raw, ok := c.GetQuery("faq"); ok {
		if n, err := strconv.Atoi(raw); err == nil && n >= -1 && n < len(h.Site.FAQs) {
			sess.OpenFAQ = n
			changed = true
		}
	}
	if changed {
		if err := saveSession(c, h.Sessions, sess, h.Logger); err != nil {
			showAlert(c, h.layout(), http.StatusInternalServerError, msgInternal, "/")
			return
		}
	}

	billing := sess.Billing
	if billing == "" {
		billing = pricing.Monthly
	}
	c.HTML(http.StatusOK, "home.html", homeData{
		Layout:   h.layout(),
		Cards:    pricing.Cards(h.Site.Plans, billing),
		Billing:  billing,
		OpenFAQ:  sess.OpenFAQ,
		Files:    sess.Files,
		Rejected: sess.Rejected,
	})
}

// Notice shows the informational messages behind the demo and contact buttons.
func (h *PageHandler) Notice(c *gin.Context) {
	topic := strings.ToLower(c.Param("topic"))

	var message string
	switch topic {
	case "demo":
		message = h.Site.Hero.DemoMessage
	case "enterprise":
		message = h.Site.Enterprise.ContactMessage
	case "schedule":
		message = h.Site.Enterprise.DemoMessage
	default:
		if plan, err := h.Site.Plan(topic); err == nil {
			message = plan.ContactMessage
		}
	}
	if message == "" {
		showAlert(c, h.layout(), http.StatusNotFound, "Page not found.", "/")
		return
	}
	showAlert(c, h.layout(), http.StatusOK, message, "/#pricing")
}

// Dashboard renders the scan result held by the session.
func (h *PageHandler) Dashboard(c *gin.Context) {
	sess := currentSession(c)
	result := sess.Router.Result()
	if sess.Router.Current() != view.Dashboard || result == nil {
		seeOther(c, "/")
		return
	}

	changed := false
	if tab, ok := c.GetQuery("tab"); ok {
		sess.Dashboard.SelectTab(tab)
		changed = true
	}
	if id, ok := c.GetQuery("expand"); ok {
		if _, found := result.FindIssue(id); found || id == "" {
			sess.Dashboard.Expanded = id
			changed = true
		}
	}
	if changed {
		if err := saveSession(c, h.Sessions, sess, h.Logger); err != nil {
			showAlert(c, h.layout(), http.StatusInternalServerError, msgInternal, "/")
			return
		}
	}

	layout := h.layout()
	layout.OnDashboard = true
	c.HTML(http.StatusOK, "dashboard.html", dashboardData{
		Layout: layout,
		Page:   dashboard.Present(result, sess.Dashboard),
	})
}

// ToggleIssue expands or collapses one issue.
func (h *PageHandler) ToggleIssue(c *gin.Context) {
	sess := currentSession(c)
	result := sess.Router.Result()
	if result == nil {
		seeOther(c, "/")
		return
	}

	id := c.Param("id")
	if _, ok := result.FindIssue(id); !ok {
		showAlert(c, h.layout(), http.StatusNotFound, "Issue not found.", "/dashboard")
		return
	}

	sess.Dashboard.Toggle(id)
	if err := saveSession(c, h.Sessions, sess, h.Logger); err != nil {
		showAlert(c, h.layout(), http.StatusInternalServerError, msgInternal, "/dashboard")
		return
	}
	seeOther(c, "/dashboard")
}

// FixIssue explains what fixing the issue would do. The result is left as is.
func (h *PageHandler) FixIssue(c *gin.Context) {
	sess := currentSession(c)
	result := sess.Router.Result()
	if result == nil {
		seeOther(c, "/")
		return
	}

	message, err := dashboard.FixMessage(result, c.Param("id"))
	switch {
	case errors.Is(err, dashboard.ErrIssueNotFound):
		showAlert(c, h.layout(), http.StatusNotFound, "Issue not found.", "/dashboard")
	case errors.Is(err, dashboard.ErrNotFixable):
		showAlert(c, h.layout(), http.StatusUnprocessableEntity, "This issue can't be fixed automatically.", "/dashboard")
	case err != nil:
		showAlert(c, h.layout(), http.StatusInternalServerError, msgInternal, "/dashboard")
	default:
		h.Logger.Info("fix requested", "issue", c.Param("id"))
		showAlert(c, h.layout(), http.StatusOK, message, "/dashboard")
	}
}

// Report downloads the current result as Markdown.
func (h *PageHandler) Report(c *gin.Context) {
	result := currentSession(c).Router.Result()
	if result == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No scan result"})
		return
	}

	var buf bytes.Buffer
	if err := dashboard.WriteMarkdown(&buf, result); err != nil {
		h.Logger.Error("failed to build report", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report: " + err.Error()})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+result.ProjectName+`-report.md"`)
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", buf.Bytes())
}

// Back leaves the dashboard and drops the result.
func (h *PageHandler) Back(c *gin.Context) {
	sess := currentSession(c)
	sess.Back()
	if err := saveSession(c, h.Sessions, sess, h.Logger); err != nil {
		showAlert(c, h.layout(), http.StatusInternalServerError, msgInternal, "/")
		return
	}
	seeOther(c, "/")
}

// Success is where the payment provider sends the visitor after paying.
func (h *PageHandler) Success(c *gin.Context) {
	sessionID := c.Query("session_id")
	if err := h.Checkout.Complete(c.Request.Context(), sessionID); err != nil {
		h.Logger.Warn("failed to mark checkout completed", "session_id", sessionID, "error", err)
	}

	c.HTML(http.StatusOK, "success.html", successData{
		Layout:    h.layout(),
		SessionID: sessionID,
	})
}

func viewBody(sess *session.Session) gin.H {
	return gin.H{
		"view":   sess.Router.Current(),
		"result": sess.Router.Result(),
	}
}

// View reports the current view and result.
func (h *PageHandler) View(c *gin.Context) {
	c.JSON(http.StatusOK, viewBody(currentSession(c)))
}

// ViewBack is the JSON form of Back.
func (h *PageHandler) ViewBack(c *gin.Context) {
	sess := currentSession(c)
	sess.Back()
	if err := saveSession(c, h.Sessions, sess, h.Logger); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save session: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, viewBody(sess))
}
