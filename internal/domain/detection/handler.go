package detection

import (
	"encoding/base64"
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/JUP-iter/vidaryproject/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) AnalyzeImage(c *gin.Context) { h.analyzeMedia(c, MediaImage) }
func (h *Handler) AnalyzeAudio(c *gin.Context) { h.analyzeMedia(c, MediaAudio) }
func (h *Handler) AnalyzeVideo(c *gin.Context) { h.analyzeMedia(c, MediaVideo) }

func (h *Handler) analyzeMedia(c *gin.Context, class MediaClass) {
	userID := mustUserID(c)
	if userID == 0 {
		return
	}

	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if req.Data == "" && req.FileURL == "" {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Either data or file_url is required")
		return
	}

	in := AnalyzeInput{
		FileName:    req.FileName,
		ContentType: req.ContentType,
		SourceURL:   req.FileURL,
		AudioMode:   AudioMode(req.AudioMode),
	}
	if req.Data != "" {
		content, err := base64.StdEncoding.DecodeString(req.Data)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "data is not valid base64")
			return
		}
		in.Content = content
	}

	h.runAnalysis(c, userID, class, in)
}

func (h *Handler) AnalyzeText(c *gin.Context) {
	userID := mustUserID(c)
	if userID == 0 {
		return
	}

	var req AnalyzeTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "text is required")
		return
	}

	h.runAnalysis(c, userID, MediaText, AnalyzeInput{
		Content: []byte(req.Text),
	})
}

func (h *Handler) runAnalysis(c *gin.Context, userID int64, class MediaClass, in AnalyzeInput) {
	analysis, err := h.service.Analyze(c.Request.Context(), userID, class, in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toResultResponse(analysis.Result, analysis.FileURL, analysis.CacheHit))
}

func (h *Handler) CheckDuplicate(c *gin.Context) {
	userID := mustUserID(c)
	if userID == 0 {
		return
	}

	var req CheckDuplicateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	var content []byte
	switch {
	case req.Text != "":
		content = []byte(req.Text)
	case req.Data != "":
		decoded, err := base64.StdEncoding.DecodeString(req.Data)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "data is not valid base64")
			return
		}
		content = decoded
	default:
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Either data or text is required")
		return
	}

	cached, hit := h.service.CheckDuplicate(c.Request.Context(), userID, content)
	data := gin.H{"duplicate": hit}
	if hit {
		data["result_id"] = cached.ID
	}
	response.Success(c, http.StatusOK, data)
}

func (h *Handler) GetResult(c *gin.Context) {
	userID := mustUserID(c)
	if userID == 0 {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid result ID")
		return
	}

	result, err := h.service.GetResult(c.Request.Context(), userID, id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	fileURL := h.service.FileURL(c.Request.Context(), result)
	response.Success(c, http.StatusOK, toResultResponse(result, fileURL, false))
}

func (h *Handler) History(c *gin.Context) {
	userID := mustUserID(c)
	if userID == 0 {
		return
	}

	filter, err := filterFromQuery(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	results, err := h.service.History(c.Request.Context(), userID, filter)
	if err != nil {
		h.writeError(c, err)
		return
	}

	items := make([]ResultResponse, 0, len(results))
	for _, r := range results {
		items = append(items, toResultResponse(r, "", false))
	}
	response.Success(c, http.StatusOK, items)
}

func (h *Handler) Export(c *gin.Context) {
	userID := mustUserID(c)
	if userID == 0 {
		return
	}

	filter, err := filterFromQuery(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	results, err := h.service.History(c.Request.Context(), userID, filter)
	if err != nil {
		h.writeError(c, err)
		return
	}

	if c.DefaultQuery("format", "json") == "csv" {
		h.exportCSV(c, results)
		return
	}

	items := make([]ResultResponse, 0, len(results))
	for _, r := range results {
		items = append(items, toResultResponse(r, "", false))
	}
	response.Success(c, http.StatusOK, items)
}

func (h *Handler) exportCSV(c *gin.Context, results []*Result) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="detection-results.csv"`)

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"id", "file_name", "media_class", "verdict", "confidence", "detected_generator", "size_bytes", "processing_ms", "duplicate", "created_at"})
	for _, r := range results {
		generator := ""
		if r.DetectedGenerator != nil {
			generator = *r.DetectedGenerator
		}
		_ = w.Write([]string{
			strconv.FormatInt(r.ID, 10),
			r.FileName,
			string(r.MediaClass),
			string(r.Verdict),
			r.Confidence.StringFixed(4),
			generator,
			strconv.FormatInt(r.SizeBytes, 10),
			strconv.FormatInt(r.ProcessingMS, 10),
			strconv.FormatBool(r.Duplicate),
			r.CreatedAt.Format(time.RFC3339),
		})
	}
	w.Flush()
	// Writes are buffered; a dropped client connection only surfaces here.
	if err := w.Error(); err != nil {
		log.Printf("detection: csv export write failed: %v", err)
	}
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var vErr *ValidationError
	switch {
	case errors.As(err, &vErr):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", vErr.Message)
	case errors.Is(err, ErrPlanRestricted):
		response.Error(c, http.StatusForbidden, "PLAN_UPGRADE_REQUIRED", "This media type is not included in the current plan. Please upgrade to continue.")
	case errors.Is(err, ErrResultNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Detection result not found")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Detection failed, please try again")
	}
}

func filterFromQuery(c *gin.Context) (HistoryFilter, error) {
	f := HistoryFilter{
		MediaClass: MediaClass(c.Query("media")),
		Verdict:    Verdict(c.Query("verdict")),
	}

	if raw := c.Query("since"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return f, fmt.Errorf("invalid since timestamp %q", raw)
		}
		f.Since = t
	}
	if raw := c.Query("until"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return f, fmt.Errorf("invalid until timestamp %q", raw)
		}
		f.Until = t
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return f, fmt.Errorf("invalid limit %q", raw)
		}
		f.Limit = n
	}
	return f, nil
}

func mustUserID(c *gin.Context) int64 {
	id := c.GetInt64("user_id")
	if id == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
	}
	return id
}
