package share

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/JUP-iter/vidaryproject/internal/domain/detection"
	"github.com/JUP-iter/vidaryproject/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type CreateRequest struct {
	ResultID int64 `json:"result_id" binding:"required"`
	TTLHours int   `json:"ttl_hours"`
}

func (h *Handler) Create(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "result_id is required")
		return
	}

	link, err := h.service.Create(c.Request.Context(), userID, req.ResultID, time.Duration(req.TTLHours)*time.Hour)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, link)
}

func (h *Handler) ListMy(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	links, err := h.service.ListByUser(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, links)
}

func (h *Handler) Stats(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	link, err := h.service.Stats(c.Request.Context(), userID, c.Param("token"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"token":          link.Token,
		"views":          link.Views,
		"last_viewed_at": link.LastViewedAt,
		"expires_at":     link.ExpiresAt,
		"created_at":     link.CreatedAt,
	})
}

// PublicView serves a shared result to anyone holding the token.
func (h *Handler) PublicView(c *gin.Context) {
	link, result, err := h.service.View(c.Request.Context(), c.Param("token"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"token":              link.Token,
		"views":              link.Views,
		"file_name":          result.FileName,
		"media_class":        result.MediaClass,
		"verdict":            result.Verdict,
		"confidence":         result.Confidence.StringFixed(4),
		"detected_generator": result.DetectedGenerator,
		"created_at":         result.CreatedAt,
	})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrLinkNotFound), errors.Is(err, detection.ErrResultNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Share link not found")
	case errors.Is(err, ErrLinkExpired):
		response.Error(c, http.StatusGone, "LINK_EXPIRED", "This share link has expired")
	case errors.Is(err, ErrNotOwner):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "You do not own this result")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Share operation failed")
	}
}
