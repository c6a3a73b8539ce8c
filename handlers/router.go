package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"fixxer/checkout"
	"fixxer/content"
	"fixxer/events"
	"fixxer/scan"
	"fixxer/session"
	"fixxer/web"

	"github.com/gin-gonic/gin"
)

// Deps is everything the HTTP layer needs.
type Deps struct {
	Site           *content.Site
	Sessions       session.Store
	SessionTTL     time.Duration
	SecureCookies  bool
	Simulator      *scan.Simulator
	Jobs           *scan.Registry
	Checkout       *checkout.Service
	Events         events.Publisher
	PublishableKey string
	Logger         *slog.Logger
}

// NewRouter builds the gin engine with every page and API route.
func NewRouter(d Deps) (*gin.Engine, error) {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Events == nil {
		d.Events = events.Nop{}
	}

	tmpl, err := web.Templates()
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(d.Logger))
	router.SetHTMLTemplate(tmpl)
	router.MaxMultipartMemory = 8 << 20

	// Serve static files (CSS)
	router.StaticFS("/assets", web.Assets())

	health := NewHealthHandler("fixxer", healthChecks(d)...)
	router.GET("/healthz", health.Check)

	pages := NewPageHandler(d)
	scans := NewScanHandler(d)
	checkouts := NewCheckoutHandler(d)

	site := router.Group("/", withSession(d.Sessions, d.SessionTTL, d.SecureCookies, d.Logger))

	// Pages
	site.GET("/", pages.Home)
	site.GET("/notice/:topic", pages.Notice)
	site.POST("/back", pages.Back)
	site.GET("/dashboard", pages.Dashboard)
	site.POST("/dashboard/toggle/:id", pages.ToggleIssue)
	site.POST("/dashboard/fix/:id", pages.FixIssue)
	site.GET("/dashboard/report.md", pages.Report)
	site.GET("/success", pages.Success)

	site.POST("/upload", scans.Upload)
	site.POST("/upload/:id/remove", scans.RemoveFile)
	site.POST("/scan", scans.StartScan)
	site.GET("/scan/:id", scans.Progress)

	site.POST("/checkout", checkouts.Checkout)

	// JSON API
	api := site.Group("/api")
	api.GET("/view", pages.View)
	api.POST("/view/back", pages.ViewBack)
	api.POST("/scan", scans.StartScanJSON)
	api.GET("/scan/:id", scans.ScanStatus)
	api.POST("/checkout", checkouts.CheckoutJSON)
	api.GET("/prices", checkouts.Prices)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	return router, nil
}
