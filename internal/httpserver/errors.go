package httpserver

import (
	"errors"
	"net/http"

	"figurinha-studio/internal/domain"
	identitysvc "figurinha-studio/internal/service/identity"
	"figurinha-studio/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// writeError maps service errors onto status codes. Unknown errors are logged and hidden.
func (h *handlers) writeError(c *gin.Context, op string, err error) {
	status, msg := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Printf("http: %s failed: %v", op, err)
		msg = "internal error"
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func statusFor(err error) (int, string) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Msg
	case errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidPhone),
		errors.Is(err, identitysvc.ErrInvalidToken),
		errors.Is(err, storage.ErrUnsupportedType),
		errors.Is(err, storage.ErrUnknownBucket),
		errors.Is(err, storage.ErrInvalidName),
		errors.Is(err, storage.ErrEmptyFile):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, storage.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, err.Error()
	case errors.Is(err, identitysvc.ErrInvalidCredentials):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, identitysvc.ErrEmailNotConfirmed):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, domain.ErrEmptyCart):
		return http.StatusConflict, err.Error()
	default:
		return http.StatusInternalServerError, err.Error()
	}
}

// idParam reads a uuid path parameter. Anything else cannot name a row, so it is a 404.
func idParam(c *gin.Context, name string) (string, bool) {
	return parseID(c, c.Param(name))
}

// parseID answers 404 for ids that cannot name a row, the same way for path and body ids.
func parseID(c *gin.Context, raw string) (string, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found"})
		return "", false
	}
	return id.String(), true
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return false
	}
	return true
}
