package httpserver

import (
	"net/http"

	"figurinha-studio/internal/domain"
	categorysvc "figurinha-studio/internal/service/category"
	packsvc "figurinha-studio/internal/service/pack"
	"github.com/gin-gonic/gin"
)

// adminPack shows the fields hidden from the public catalog.
type adminPack struct {
	domain.Pack
	StickerFilesURL string `json:"stickerFilesUrl,omitempty"`
	PaymentLink     string `json:"paymentLink,omitempty"`
}

func toAdminPack(p domain.Pack) adminPack {
	out := adminPack{Pack: p}
	if p.StickerFilesURL != nil {
		out.StickerFilesURL = *p.StickerFilesURL
	}
	if p.PaymentLink != nil {
		out.PaymentLink = *p.PaymentLink
	}
	return out
}

func (h *handlers) listPacks(c *gin.Context) {
	packs, err := h.deps.PackSvc.List(c.Request.Context(), c.Query("category"))
	if err != nil {
		h.writeError(c, "list packs", err)
		return
	}
	if packs == nil {
		packs = []domain.Pack{}
	}
	c.JSON(http.StatusOK, gin.H{"results": packs, "count": len(packs)})
}

func (h *handlers) getPack(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	pack, err := h.deps.PackSvc.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, "get pack", err)
		return
	}
	c.JSON(http.StatusOK, pack)
}

func (h *handlers) listCategories(c *gin.Context) {
	counts, err := h.deps.CategorySvc.ListWithCounts(c.Request.Context())
	if err != nil {
		h.writeError(c, "list categories", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": counts})
}

func (h *handlers) adminPacks(c *gin.Context) {
	packs, err := h.deps.PackSvc.List(c.Request.Context(), c.Query("category"))
	if err != nil {
		h.writeError(c, "list packs", err)
		return
	}
	out := make([]adminPack, 0, len(packs))
	for _, p := range packs {
		out = append(out, toAdminPack(p))
	}
	c.JSON(http.StatusOK, gin.H{"results": out, "count": len(out)})
}

func (h *handlers) createPack(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}
	var in packsvc.Input
	if !bindJSON(c, &in) {
		return
	}
	pack, err := h.deps.PackSvc.Create(c.Request.Context(), profile.ID, in)
	if err != nil {
		h.writeError(c, "create pack", err)
		return
	}
	h.logger.Printf("http: pack created id=%s by=%s", pack.ID, profile.ID)
	c.JSON(http.StatusCreated, toAdminPack(*pack))
}

func (h *handlers) updatePack(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var in packsvc.Input
	if !bindJSON(c, &in) {
		return
	}
	pack, err := h.deps.PackSvc.Update(c.Request.Context(), id, in)
	if err != nil {
		h.writeError(c, "update pack", err)
		return
	}
	c.JSON(http.StatusOK, toAdminPack(*pack))
}

func (h *handlers) deletePack(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.deps.PackSvc.Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, "delete pack", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) adminCategories(c *gin.Context) {
	cats, err := h.deps.CategorySvc.List(c.Request.Context())
	if err != nil {
		h.writeError(c, "list categories", err)
		return
	}
	if cats == nil {
		cats = []domain.Category{}
	}
	c.JSON(http.StatusOK, gin.H{"results": cats})
}

func (h *handlers) createCategory(c *gin.Context) {
	var in categorysvc.Input
	if !bindJSON(c, &in) {
		return
	}
	cat, err := h.deps.CategorySvc.Create(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, "create category", err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}

func (h *handlers) updateCategory(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var in categorysvc.Input
	if !bindJSON(c, &in) {
		return
	}
	cat, err := h.deps.CategorySvc.Update(c.Request.Context(), id, in)
	if err != nil {
		h.writeError(c, "update category", err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (h *handlers) deleteCategory(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.deps.CategorySvc.Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, "delete category", err)
		return
	}
	c.Status(http.StatusNoContent)
}
