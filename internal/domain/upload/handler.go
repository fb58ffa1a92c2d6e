package upload

import (
	"bytes"
	"errors"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"

	"github.com/JUP-iter/vidaryproject/internal/storage"
)

// sniffSize is how much of the stream is read ahead when the declared
// content type is missing or generic. The prefix is stitched back in front
// of the remaining stream, so nothing is lost.
const sniffSize = 3072

// Handler streams a multipart upload straight into object storage. The
// incoming part reader is connected directly to the storage writer, so
// memory stays bounded to buffer-sized chunks regardless of file size.
type Handler struct {
	store storage.Store
}

func NewHandler(store storage.Store) *Handler {
	return &Handler{store: store}
}

// Handle serves /api/upload for every method: OPTIONS answers the CORS
// preflight, POST uploads, anything else is rejected.
func (h *Handler) Handle(c *gin.Context) {
	h.writeCORS(c)

	switch c.Request.Method {
	case http.MethodOptions:
		c.Status(http.StatusNoContent)
	case http.MethodPost:
		h.upload(c)
	default:
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	}
}

func (h *Handler) upload(c *gin.Context) {
	mr, err := c.Request.MultipartReader()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart request", "message": err.Error()})
		return
	}

	part, err := nextFilePart(mr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file field"})
		return
	}
	defer part.Close()

	contentType := part.Header.Get("Content-Type")
	var body io.Reader = part

	if contentType == "" || contentType == "application/octet-stream" {
		head := make([]byte, sniffSize)
		n, rerr := io.ReadFull(part, head)
		if rerr != nil && !errors.Is(rerr, io.ErrUnexpectedEOF) && !errors.Is(rerr, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read file", "message": rerr.Error()})
			return
		}
		head = head[:n]
		contentType = mimetype.Detect(head).String()
		body = io.MultiReader(bytes.NewReader(head), part)
	}

	key := storage.ObjectKey(part.FileName())

	obj, err := h.store.Put(c.Request.Context(), key, body, -1, contentType)
	if err != nil {
		log.Printf("upload: put %s failed: %v", key, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"fileUrl": obj.URL})
}

// nextFilePart scans parts until the first "file" field.
func nextFilePart(mr *multipart.Reader) (*multipart.Part, error) {
	for {
		part, err := mr.NextPart()
		if err != nil {
			return nil, err
		}
		if part.FormName() == "file" {
			return part, nil
		}
		_ = part.Close()
	}
}

func (h *Handler) writeCORS(c *gin.Context) {
	header := c.Writer.Header()
	header.Set("Access-Control-Allow-Origin", "*")
	header.Set("Access-Control-Allow-Methods", strings.Join([]string{http.MethodPost, http.MethodOptions}, ", "))
	header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
}
