package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"fixxer/session"

	"github.com/gin-gonic/gin"
)

const sessionKey = "fixxer.session"

// withSession loads the visitor's session, or starts a new one, and
// refreshes the cookie. Handlers save the session themselves before they
// respond.
func withSession(store session.Store, ttl time.Duration, secure bool, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var sess *session.Session
		if id, err := c.Cookie(session.CookieName); err == nil && id != "" {
			loaded, err := store.Get(c.Request.Context(), id)
			switch {
			case err == nil:
				sess = loaded
			case errors.Is(err, session.ErrCorrupt):
				logger.Warn("discarding corrupt session", "error", err)
				if err := store.Delete(c.Request.Context(), id); err != nil {
					logger.Warn("failed to delete session", "error", err)
				}
			case !errors.Is(err, session.ErrNotFound):
				logger.Warn("failed to load session", "error", err)
			}
		}
		if sess == nil {
			sess = session.New()
		}

		c.Set(sessionKey, sess)
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(session.CookieName, sess.ID, int(ttl.Seconds()), "/", "", secure, true)
		c.Next()
	}
}

func currentSession(c *gin.Context) *session.Session {
	if v, ok := c.Get(sessionKey); ok {
		if sess, ok := v.(*session.Session); ok {
			return sess
		}
	}
	return session.New()
}

// requestLogger logs one line per request. Query strings are left out
// since they can carry checkout session ids.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		switch {
		case status >= http.StatusInternalServerError:
			level = slog.LevelError
		case status >= http.StatusBadRequest:
			level = slog.LevelWarn
		}

		logger.Log(c.Request.Context(), level, "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration", time.Since(start),
			"client_ip", c.ClientIP(),
		)
	}
}
