package upload

import (
	"bytes"
	"encoding/base64"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JUP-iter/vidaryproject/internal/pkg/response"
	"github.com/JUP-iter/vidaryproject/internal/storage"
)

type PresignRequest struct {
	FileName string `json:"file_name" binding:"required"`
}

type DirectUploadRequest struct {
	FileName    string `json:"file_name" binding:"required"`
	ContentType string `json:"content_type"`
	Data        string `json:"data" binding:"required"` // base64
}

// Presign issues a browser-postable upload form so the client can push
// bytes to storage without routing them through this server.
func (h *Handler) Presign(c *gin.Context) {
	var req PresignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "file_name is required")
		return
	}

	post, err := h.store.PresignPost(c.Request.Context(), storage.ObjectKey(req.FileName))
	if err != nil {
		log.Printf("upload: presign failed: %v", err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to issue upload URL")
		return
	}

	response.Success(c, http.StatusOK, post)
}

// Direct accepts a small base64 payload and stores it server-side. Large
// files should use the streaming endpoint or a presigned POST instead.
func (h *Handler) Direct(c *gin.Context) {
	var req DirectUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "file_name and data are required")
		return
	}

	content, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "data is not valid base64")
		return
	}
	if len(content) == 0 || len(content) > storage.MaxUploadSize {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "file must be between 1 byte and 120 MB")
		return
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	obj, err := h.store.Put(c.Request.Context(), storage.ObjectKey(req.FileName), bytes.NewReader(content), int64(len(content)), contentType)
	if err != nil {
		log.Printf("upload: direct put failed: %v", err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Upload failed")
		return
	}

	response.Success(c, http.StatusOK, obj)
}

// RegisterAPIRoutes mounts the storage procedures under the protected group.
func RegisterAPIRoutes(r *gin.RouterGroup, h *Handler) {
	s := r.Group("/storage")
	{
		s.POST("/presign", h.Presign)
		s.POST("/upload", h.Direct)
	}
}
