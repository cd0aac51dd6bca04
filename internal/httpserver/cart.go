package httpserver

import (
	"net/http"

	"figurinha-studio/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type cartResponse struct {
	UserID     string            `json:"userId"`
	Items      []domain.CartLine `json:"items"`
	TotalItems int               `json:"totalItems"`
	TotalPrice decimal.Decimal   `json:"totalPrice"`
}

func toCartResponse(cart *domain.Cart) cartResponse {
	lines := cart.Lines
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return cartResponse{
		UserID:     cart.UserID,
		Items:      lines,
		TotalItems: cart.TotalItems(),
		TotalPrice: cart.TotalPrice(),
	}
}

type addCartItemRequest struct {
	PackID string `json:"packId" binding:"required"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

func (h *handlers) getCart(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}
	cart, err := h.deps.CartSvc.Get(c.Request.Context(), profile.ID)
	if err != nil {
		h.writeError(c, "get cart", err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(cart))
}

func (h *handlers) addCartItem(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}
	var req addCartItemRequest
	if !bindJSON(c, &req) {
		return
	}
	packID, ok := parseID(c, req.PackID)
	if !ok {
		return
	}
	cart, err := h.deps.CartSvc.Add(c.Request.Context(), profile.ID, packID)
	if err != nil {
		h.writeError(c, "add to cart", err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(cart))
}

func (h *handlers) updateCartItem(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}
	packID, ok := idParam(c, "packId")
	if !ok {
		return
	}
	var req updateCartItemRequest
	if !bindJSON(c, &req) {
		return
	}
	cart, err := h.deps.CartSvc.UpdateQuantity(c.Request.Context(), profile.ID, packID, req.Quantity)
	if err != nil {
		h.writeError(c, "update cart quantity", err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(cart))
}

func (h *handlers) removeCartItem(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}
	packID, ok := idParam(c, "packId")
	if !ok {
		return
	}
	cart, err := h.deps.CartSvc.Remove(c.Request.Context(), profile.ID, packID)
	if err != nil {
		h.writeError(c, "remove from cart", err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(cart))
}

func (h *handlers) clearCart(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}
	cart, err := h.deps.CartSvc.Clear(c.Request.Context(), profile.ID)
	if err != nil {
		h.writeError(c, "clear cart", err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(cart))
}
