package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/quizbank/admin-service/internal/services"
	"github.com/quizbank/admin-service/internal/utils"
	"github.com/quizbank/admin-service/internal/validator"
)

// BaseHandler provides shared helpers for all HTTP handlers
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// ErrorResponse is the error body every endpoint returns
type ErrorResponse struct {
	Code    string      `json:"code,omitempty"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// SuccessResponse wraps successful responses that carry a message
type SuccessResponse struct {
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// LogRequest logs handler activity with the request-scoped logger
func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.GetLogger(c).Info(msg, args...)
}

// parseObjectIDParam extracts and validates a hex object id path parameter.
// On failure it writes the 400 response and returns an empty string.
func (h *BaseHandler) parseObjectIDParam(c *gin.Context, name string) string {
	id := c.Param(name)
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "invalid_id",
			Message: "Invalid document id",
			Details: name + " must be a 24-character hex string",
		})
		return ""
	}
	return id
}

// handleServiceError maps service-layer errors to HTTP status codes
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	var duplicateErr *services.DuplicateNameError
	var uploadErr *services.AssetUploadError

	switch {
	case errors.As(err, &validationErrs):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "validation_failed",
			Message: "Request validation failed",
			Details: validationErrs,
		})
	case errors.As(err, &duplicateErr):
		c.JSON(http.StatusConflict, ErrorResponse{
			Code:    "duplicate_name",
			Message: duplicateErr.Error(),
		})
	case errors.As(err, &uploadErr):
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Code:    "asset_upload_failed",
			Message: uploadErr.Error(),
		})
	case errors.Is(err, services.ErrQuizNotFound),
		errors.Is(err, services.ErrExamNotFound),
		errors.Is(err, services.ErrChapterNotFound),
		errors.Is(err, services.ErrClassNotFound),
		errors.Is(err, services.ErrSubjectNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Code:    "not_found",
			Message: err.Error(),
		})
	case errors.Is(err, services.ErrInvalidID):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "invalid_id",
			Message: "Invalid document id",
		})
	case errors.Is(err, services.ErrStoreUnavailable):
		utils.GetLogger(c).Error("store unavailable", "error", err)
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Code:    "store_unavailable",
			Message: "Backend store unavailable",
		})
	default:
		utils.GetLogger(c).Error("unhandled service error", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "internal_error",
			Message: "Internal server error",
		})
	}
}
