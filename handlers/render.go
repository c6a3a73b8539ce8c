package handlers

import (
	"log/slog"
	"net/http"

	"fixxer/content"
	"fixxer/session"

	"github.com/gin-gonic/gin"
)

const msgInternal = "An error occurred. Please try again."

// Layout is the data every page template shares.
type Layout struct {
	Site           *content.Site
	PublishableKey string
	Refresh        int
	OnDashboard    bool
}

type alertData struct {
	Layout
	Message string
	Return  string
}

// showAlert renders a blocking message with a single way back.
func showAlert(c *gin.Context, layout Layout, status int, message, ret string) {
	c.HTML(status, "alert.html", alertData{
		Layout:  layout,
		Message: message,
		Return:  ret,
	})
}

func saveSession(c *gin.Context, store session.Store, sess *session.Session, logger *slog.Logger) error {
	if err := store.Save(c.Request.Context(), sess); err != nil {
		logger.Error("failed to save session", "error", err)
		return err
	}
	return nil
}

func seeOther(c *gin.Context, location string) {
	c.Redirect(http.StatusSeeOther, location)
}
