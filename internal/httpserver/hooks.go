package httpserver

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

const maxHookBody = 1 << 20

// sendAuthEmail is the identity provider's email hook. Failures answer 401 in the
// {"error":{"http_code","message"}} shape the provider expects.
func (h *handlers) sendAuthEmail(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "not allowed"})
		return
	}
	if h.deps.Hooks == nil || h.deps.Mailer == nil {
		hookError(c, http.StatusServiceUnavailable, "email hook not configured")
		return
	}
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxHookBody))
	if err != nil {
		hookError(c, http.StatusUnauthorized, "read body: "+err.Error())
		return
	}
	email, err := h.deps.Hooks.ParseHook(c.Request.Header, body)
	if err != nil {
		h.logger.Printf("http: auth email hook rejected: %v", err)
		hookError(c, http.StatusUnauthorized, err.Error())
		return
	}
	if err := h.deps.Mailer.SendAuthEmail(c.Request.Context(), email); err != nil {
		h.logger.Printf("http: auth email hook send failed action=%s: %v", email.Action, err)
		hookError(c, http.StatusUnauthorized, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func hookError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": gin.H{"http_code": status, "message": msg}})
}
