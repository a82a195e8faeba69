package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"pdfdigest/internal/service"
)

// ConvertHandler handles document conversion and table extraction endpoints.
type ConvertHandler struct {
	convertService service.ConvertService
}

// NewConvertHandler creates a new ConvertHandler.
func NewConvertHandler(convertService service.ConvertService) *ConvertHandler {
	return &ConvertHandler{convertService: convertService}
}

// Convert handles POST /api/v1/convert
func (h *ConvertHandler) Convert(c *gin.Context) {
	input, ok := h.readUpload(c)
	if !ok {
		return
	}

	result, err := h.convertService.Convert(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, result)
}

// ExtractTables handles POST /api/v1/tables/extract
func (h *ConvertHandler) ExtractTables(c *gin.Context) {
	input, ok := h.readUpload(c)
	if !ok {
		return
	}

	input.Format = c.PostForm("format")
	if persistStr := c.PostForm("persist"); persistStr != "" {
		persist, err := strconv.ParseBool(persistStr)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_PERSIST", "persist must be a boolean")
			return
		}
		input.Persist = persist
	}

	result, err := h.convertService.ExtractTables(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, result)
}

// readUpload reads the multipart file field plus the common form fields.
// Returns ok=false after writing an error response.
func (h *ConvertHandler) readUpload(c *gin.Context) (service.ConvertInput, bool) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return service.ConvertInput{}, false
	}
	defer func() { _ = file.Close() }()

	fileBytes, err := io.ReadAll(file)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "UNREADABLE_FILE", "could not read uploaded file")
		return service.ConvertInput{}, false
	}

	return service.ConvertInput{
		FileBytes:   fileBytes,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Processor:   c.PostForm("processor"),
	}, true
}
