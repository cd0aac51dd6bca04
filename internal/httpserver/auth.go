package httpserver

import (
	"net/http"

	identitysvc "figurinha-studio/internal/service/identity"
	"github.com/gin-gonic/gin"
)

type tokenRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type confirmRequest struct {
	Token string `json:"token" binding:"required"`
}

type recoverRequest struct {
	Email      string `json:"email" binding:"required"`
	RedirectTo string `json:"redirectTo"`
}

type resetRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *handlers) signup(c *gin.Context) {
	var in identitysvc.SignupInput
	if !bindJSON(c, &in) {
		return
	}
	profile, err := h.deps.IdentitySvc.Signup(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, "signup", err)
		return
	}
	c.JSON(http.StatusCreated, profile)
}

func (h *handlers) token(c *gin.Context) {
	var req tokenRequest
	if !bindJSON(c, &req) {
		return
	}
	session, err := h.deps.IdentitySvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, "login", err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *handlers) confirm(c *gin.Context) {
	var req confirmRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.deps.IdentitySvc.ConfirmEmail(c.Request.Context(), req.Token); err != nil {
		h.writeError(c, "confirm email", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"confirmed": true})
}

// recoverPassword answers 202 whether or not the account exists.
func (h *handlers) recoverPassword(c *gin.Context) {
	var req recoverRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.deps.IdentitySvc.RequestRecovery(c.Request.Context(), req.Email, req.RedirectTo); err != nil {
		h.writeError(c, "request recovery", err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"sent": true})
}

func (h *handlers) resetPassword(c *gin.Context) {
	var req resetRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.deps.IdentitySvc.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		h.writeError(c, "reset password", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reset": true})
}

func (h *handlers) me(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *handlers) resendConfirmation(c *gin.Context) {
	var req recoverRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.deps.IdentitySvc.ResendConfirmation(c.Request.Context(), req.Email, req.RedirectTo); err != nil {
		h.writeError(c, "resend confirmation", err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"sent": true})
}
