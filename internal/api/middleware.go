package api

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"reportgen/internal/models"
)

const requestIDContextKey = "request_id"

// RequestID tags every request with an id and logs its outcome. An inbound
// X-Request-ID is honored so upstream proxies can correlate.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDContextKey, id)
		c.Header("X-Request-ID", id)

		start := time.Now()
		c.Next()
		log.Printf("[%s] %s %s -> %d (%s)",
			id, c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start).Round(time.Millisecond))
	}
}

// Recovery converts a handler panic into a logged error and a generic
// failure notice on the upload form. It must sit after the session
// middleware so the notice can be queued.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, err any) {
		id, _ := RequestIDFromContext(c)
		log.Printf("[%s] panic recovered on %s %s: %v", id, c.Request.Method, c.Request.URL.Path, err)
		sess := sessions.Default(c)
		flash(sess, models.NoticeError, "An unexpected error occurred while processing the request. Please try again.")
		if saveErr := sess.Save(); saveErr != nil {
			log.Printf("save session: %v", saveErr)
		}
		c.Redirect(http.StatusSeeOther, "/")
		c.Abort()
	})
}

// RequestIDFromContext retrieves the id set by the RequestID middleware.
func RequestIDFromContext(c *gin.Context) (string, bool) {
	val, ok := c.Get(requestIDContextKey)
	if !ok {
		return "", false
	}
	id, ok := val.(string)
	return id, ok
}

// rateLimit caps uploads per client IP using a fixed one-minute window in
// redis. Without a limiter, and on redis failure, uploads pass through.
func (h *Handler) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.limiter == nil {
			c.Next()
			return
		}
		key := fmt.Sprintf("%s:%s", h.cfg.RateLimitKeyPrefix, c.ClientIP())
		count, err := h.limiter.CountInWindow(c.Request.Context(), key, time.Minute)
		if err != nil {
			log.Printf("rate limit check: %v", err)
			c.Next()
			return
		}
		if count > int64(h.cfg.UploadsPerMinute) {
			h.flashAndRedirect(c, models.NoticeWarning, "Too many uploads. Please wait a minute and try again.")
			c.Abort()
			return
		}
		c.Next()
	}
}

// flashSeparator splits the level from the message inside a flash payload.
// A single queue keeps notices in the order they were raised.
const flashSeparator = "|"

// flash queues one notice for the next rendered page.
func flash(sess sessions.Session, level models.NoticeLevel, message string) {
	sess.AddFlash(string(level) + flashSeparator + message)
}

// flashAndRedirect queues the notice and sends the browser back to the
// upload form.
func (h *Handler) flashAndRedirect(c *gin.Context, level models.NoticeLevel, message string) {
	sess := sessions.Default(c)
	flash(sess, level, message)
	if err := sess.Save(); err != nil {
		log.Printf("save session: %v", err)
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// collectFlashes drains all queued notices in the order they were raised.
func collectFlashes(sess sessions.Session) []models.Notice {
	var notices []models.Notice
	for _, raw := range sess.Flashes() {
		payload, ok := raw.(string)
		if !ok {
			continue
		}
		level, msg, found := strings.Cut(payload, flashSeparator)
		if !found {
			continue
		}
		notices = append(notices, models.Notice{Level: models.NoticeLevel(level), Message: msg})
	}
	return notices
}
