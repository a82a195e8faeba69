package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"pdfdigest/internal/cache"
	"pdfdigest/internal/domain"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code       string             `json:"code"`
	Message    string             `json:"message"`
	Violations []domain.Violation `json:"violations,omitempty"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	var convErr *domain.ConversionError
	var malformedErr *domain.MalformedExtractionError
	var schemaErr *domain.SchemaValidationError

	switch {
	case errors.Is(err, domain.ErrEmptyFile):
		return http.StatusBadRequest, "EMPTY_FILE", "uploaded file is empty"
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size"
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "unsupported file type; allowed: pdf"
	case errors.Is(err, domain.ErrNotPDF):
		return http.StatusBadRequest, "NOT_PDF", "file is not a valid PDF document"
	case errors.Is(err, domain.ErrUnknownProcessor):
		return http.StatusBadRequest, "UNKNOWN_PROCESSOR", "unknown processor; allowed: docling, agno"
	case errors.Is(err, domain.ErrUnsupportedFormat):
		return http.StatusBadRequest, "UNSUPPORTED_FORMAT", "unsupported export format; allowed: json, csv, xlsx, html"
	case errors.Is(err, domain.ErrMissingAPIKey):
		return http.StatusServiceUnavailable, "PROCESSOR_UNAVAILABLE", "extraction processor is not configured"
	case errors.As(err, &schemaErr):
		return http.StatusUnprocessableEntity, "SCHEMA_VALIDATION_FAILED", schemaErr.Error()
	case errors.As(err, &malformedErr):
		return http.StatusBadGateway, "MALFORMED_EXTRACTION", "extraction agent returned unusable output"
	case errors.As(err, &convErr):
		return http.StatusBadGateway, "CONVERSION_FAILED", convErr.Error()
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
// Cache-layer wrappers are unwrapped first so the underlying failure drives
// the mapping. Schema violations are included in the error body so one
// response reports every failed field.
func HandleError(c *gin.Context, err error) {
	var computeErr *cache.ComputeError
	if errors.As(err, &computeErr) {
		err = computeErr.Err
	}

	status, code, msg := MapDomainError(err)
	if status >= 500 {
		requestID, _ := c.Get("request_id")
		log.Printf("[%v] internal error: %v", requestID, err)
	}

	resp := APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	}
	var schemaErr *domain.SchemaValidationError
	if errors.As(err, &schemaErr) {
		resp.Error.Violations = schemaErr.Violations
	}
	c.JSON(status, resp)
}
