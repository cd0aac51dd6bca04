package httpserver

import (
	"net/http"

	ordersvc "figurinha-studio/internal/service/order"
	"github.com/gin-gonic/gin"
)

type approveRequest struct {
	PaymentLink string `json:"paymentLink"`
}

type whatsappRequest struct {
	Phone        string `json:"phone"`
	Confirmation string `json:"confirmation"`
}

func listResponse(views []ordersvc.View) gin.H {
	if views == nil {
		views = []ordersvc.View{}
	}
	return gin.H{"results": views, "count": len(views)}
}

func (h *handlers) checkout(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}
	var in ordersvc.CheckoutInput
	if !bindJSON(c, &in) {
		return
	}
	order, err := h.deps.OrderSvc.Checkout(c.Request.Context(), profile.ID, in)
	if err != nil {
		h.writeError(c, "checkout", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"order": order, "statusLabel": order.StatusLabel()})
}

func (h *handlers) myOrders(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}
	views, err := h.deps.OrderSvc.ListMine(c.Request.Context(), profile.ID)
	if err != nil {
		h.writeError(c, "list orders", err)
		return
	}
	c.JSON(http.StatusOK, listResponse(views))
}

func (h *handlers) requestWhatsApp(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req whatsappRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.deps.OrderSvc.RequestDelivery(c.Request.Context(), profile.ID, orderID, req.Phone, req.Confirmation); err != nil {
		h.writeError(c, "request whatsapp delivery", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requested": true})
}

// download redirects to the pack archive of a paid order item.
func (h *handlers) download(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := idParam(c, "itemId")
	if !ok {
		return
	}
	url, err := h.deps.OrderSvc.Download(c.Request.Context(), profile.ID, orderID, itemID)
	if err != nil {
		h.writeError(c, "download", err)
		return
	}
	c.Redirect(http.StatusFound, url)
}

func (h *handlers) stats(c *gin.Context) {
	stats, err := h.deps.OrderSvc.Stats(c.Request.Context())
	if err != nil {
		h.writeError(c, "stats", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *handlers) allOrders(c *gin.Context) {
	views, err := h.deps.OrderSvc.ListAll(c.Request.Context())
	if err != nil {
		h.writeError(c, "list all orders", err)
		return
	}
	c.JSON(http.StatusOK, listResponse(views))
}

func (h *handlers) reconcile(c *gin.Context) {
	views, err := h.deps.OrderSvc.Reconcile(c.Request.Context())
	if err != nil {
		h.writeError(c, "reconcile", err)
		return
	}
	c.JSON(http.StatusOK, listResponse(views))
}

func (h *handlers) approve(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req approveRequest
	if !bindJSON(c, &req) {
		return
	}
	order, err := h.deps.OrderSvc.Approve(c.Request.Context(), profile.ID, orderID, req.PaymentLink)
	if err != nil {
		h.writeError(c, "approve order", err)
		return
	}
	h.logger.Printf("http: order approved id=%s by=%s", order.ID, profile.ID)
	c.JSON(http.StatusOK, gin.H{"order": order, "statusLabel": order.StatusLabel()})
}

func (h *handlers) markPaid(c *gin.Context) {
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}
	order, err := h.deps.OrderSvc.MarkPaid(c.Request.Context(), orderID)
	if err != nil {
		h.writeError(c, "mark paid", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order, "statusLabel": order.StatusLabel()})
}
