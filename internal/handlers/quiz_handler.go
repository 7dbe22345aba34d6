package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/quizbank/admin-service/internal/models"
	"github.com/quizbank/admin-service/internal/repositories"
	"github.com/quizbank/admin-service/internal/services"
	"github.com/quizbank/admin-service/internal/utils"
	"github.com/quizbank/admin-service/internal/validator"
)

type QuizHandler struct {
	BaseHandler
	quizService   services.QuizService
	exportService services.ExportService
	validator     *validator.Validator
}

func NewQuizHandler(
	quizService services.QuizService,
	exportService services.ExportService,
	validator *validator.Validator,
	logger utils.Logger,
) *QuizHandler {
	return &QuizHandler{
		BaseHandler:   NewBaseHandler(logger),
		quizService:   quizService,
		exportService: exportService,
		validator:     validator,
	}
}

// CreateQuiz creates a new quiz
// @Summary Create quiz
// @Description Creates a quiz in Draft status, uploading any inline images
// @Tags quizzes
// @Accept json
// @Produce json
// @Success 201 {object} services.CreateQuizResult
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /quizzes [post]
func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	var payload services.QuizPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "invalid_payload",
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Creating quiz", "title", payload.Title)

	result, err := h.quizService.Create(c.Request.Context(), &payload)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// GetQuiz retrieves a quiz by ID
// @Summary Get quiz
// @Tags quizzes
// @Produce json
// @Param id path string true "Quiz ID"
// @Success 200 {object} services.QuizResponse
// @Failure 404 {object} ErrorResponse
// @Router /quizzes/{id} [get]
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	id := h.parseObjectIDParam(c, "id")
	if id == "" {
		return
	}

	quiz, err := h.quizService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, quiz)
}

// UpdateQuiz replaces a quiz or, for a {status}-only body, flips its status
// @Summary Update quiz
// @Tags quizzes
// @Accept json
// @Produce json
// @Param id path string true "Quiz ID"
// @Success 200 {object} services.QuizResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /quizzes/{id} [put]
func (h *QuizHandler) UpdateQuiz(c *gin.Context) {
	id := h.parseObjectIDParam(c, "id")
	if id == "" {
		return
	}

	var payload services.QuizPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "invalid_payload",
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Updating quiz", "quiz_id", id, "status_only", payload.StatusOnly())

	quiz, err := h.quizService.Update(c.Request.Context(), id, &payload)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, quiz)
}

// DeleteQuiz deletes a quiz and schedules cleanup of its assets and backlinks
// @Summary Delete quiz
// @Tags quizzes
// @Produce json
// @Param id path string true "Quiz ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /quizzes/{id} [delete]
func (h *QuizHandler) DeleteQuiz(c *gin.Context) {
	id := h.parseObjectIDParam(c, "id")
	if id == "" {
		return
	}

	h.LogRequest(c, "Deleting quiz", "quiz_id", id)

	if err := h.quizService.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Quiz deleted"})
}

// ListQuizzes lists quizzes with optional status/testType filters
// @Summary List quizzes
// @Tags quizzes
// @Produce json
// @Param status query string false "Filter by status"
// @Param testType query string false "Filter by test type"
// @Param page query int false "Page number (default 1)"
// @Param size query int false "Page size (default 20)"
// @Success 200 {object} services.QuizListResponse
// @Failure 400 {object} ErrorResponse
// @Router /quizzes [get]
func (h *QuizHandler) ListQuizzes(c *gin.Context) {
	var query validator.ListQuizzesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "invalid_query",
			Message: "Invalid query parameters",
			Details: err.Error(),
		})
		return
	}
	if errs := h.validator.Validate(&query); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "validation_failed",
			Message: "Request validation failed",
			Details: errs,
		})
		return
	}

	if query.Page < 1 {
		query.Page = 1
	}
	if query.Size < 1 {
		query.Size = 20
	}

	filters := repositories.QuizFilters{
		Limit:  query.Size,
		Offset: (query.Page - 1) * query.Size,
	}
	if query.Status != "" {
		status := models.QuizStatus(query.Status)
		filters.Status = &status
	}
	if query.TestType != "" {
		testType := models.TestType(query.TestType)
		filters.TestType = &testType
	}

	list, err := h.quizService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// ExportQuizzes streams the quiz bank as an xlsx workbook
// @Summary Export quizzes
// @Tags quizzes
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Failure 503 {object} ErrorResponse
// @Router /quizzes/export [get]
func (h *QuizHandler) ExportQuizzes(c *gin.Context) {
	h.LogRequest(c, "Exporting quiz bank")

	file, err := h.exportService.ExportQuizzes(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("quiz-bank-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := file.Write(c.Writer); err != nil {
		utils.GetLogger(c).Error("export write failed", "error", err)
	}
}
