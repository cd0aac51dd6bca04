package httpserver

import (
	"context"
	"io"
	"net/http"

	"figurinha-studio/internal/storage"
	"github.com/gin-gonic/gin"
)

type saveFunc func(ctx context.Context, filename string, r io.Reader) (storage.Object, error)

func (h *handlers) uploadImage(c *gin.Context) {
	if h.deps.Storage == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "storage not configured"})
		return
	}
	h.upload(c, "upload image", h.deps.Storage.SaveImage)
}

func (h *handlers) uploadArchive(c *gin.Context) {
	if h.deps.Storage == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "storage not configured"})
		return
	}
	h.upload(c, "upload archive", h.deps.Storage.SaveArchive)
}

// upload stores the multipart "file" field and answers with the object URL.
func (h *handlers) upload(c *gin.Context, op string, save saveFunc) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.writeError(c, op, err)
		return
	}
	defer f.Close()

	obj, err := save(c.Request.Context(), fh.Filename, f)
	if err != nil {
		h.writeError(c, op, err)
		return
	}
	h.logger.Printf("http: stored bucket=%s name=%s size=%d", obj.Bucket, obj.Name, obj.Size)
	c.JSON(http.StatusCreated, obj)
}

func (h *handlers) deleteUpload(c *gin.Context) {
	if h.deps.Storage == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "storage not configured"})
		return
	}
	bucket, name := c.Param("bucket"), c.Param("name")
	if err := h.deps.Storage.Delete(c.Request.Context(), bucket, name); err != nil {
		h.writeError(c, "delete upload", err)
		return
	}
	h.logger.Printf("http: deleted bucket=%s name=%s", bucket, name)
	c.Status(http.StatusNoContent)
}
