package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quizbank/admin-service/internal/models"
	"github.com/quizbank/admin-service/internal/services"
	"github.com/quizbank/admin-service/internal/utils"
	"github.com/quizbank/admin-service/internal/validator"
)

// TaxonomyHandler serves the four flat named collections through one set of
// handlers; the kind is fixed per route group at registration time.
type TaxonomyHandler struct {
	BaseHandler
	taxonomyService services.TaxonomyService
	validator       *validator.Validator
}

func NewTaxonomyHandler(
	taxonomyService services.TaxonomyService,
	validator *validator.Validator,
	logger utils.Logger,
) *TaxonomyHandler {
	return &TaxonomyHandler{
		BaseHandler:     NewBaseHandler(logger),
		taxonomyService: taxonomyService,
		validator:       validator,
	}
}

// Create creates a named entity
// @Summary Create taxonomy entry
// @Tags taxonomy
// @Accept json
// @Produce json
// @Success 201 {object} services.TaxonomyResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
func (h *TaxonomyHandler) Create(kind models.TaxonomyKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req validator.CreateTaxonomyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Code:    "invalid_payload",
				Message: "Invalid request payload",
				Details: err.Error(),
			})
			return
		}
		if errs := h.validator.Validate(&req); len(errs) > 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Code:    "validation_failed",
				Message: "Request validation failed",
				Details: errs,
			})
			return
		}

		h.LogRequest(c, "Creating taxonomy entry", "kind", string(kind), "name", req.Name)

		entity, err := h.taxonomyService.Create(c.Request.Context(), kind, req.Name)
		if err != nil {
			h.handleServiceError(c, err)
			return
		}

		c.JSON(http.StatusCreated, entity)
	}
}

// Get retrieves a named entity by id
func (h *TaxonomyHandler) Get(kind models.TaxonomyKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := h.parseObjectIDParam(c, "id")
		if id == "" {
			return
		}

		entity, err := h.taxonomyService.GetByID(c.Request.Context(), kind, id)
		if err != nil {
			h.handleServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, entity)
	}
}

// List lists all entities of the kind
func (h *TaxonomyHandler) List(kind models.TaxonomyKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		entities, err := h.taxonomyService.List(c.Request.Context(), kind)
		if err != nil {
			h.handleServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, entities)
	}
}

// Rename renames a named entity
func (h *TaxonomyHandler) Rename(kind models.TaxonomyKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := h.parseObjectIDParam(c, "id")
		if id == "" {
			return
		}

		var req validator.RenameTaxonomyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Code:    "invalid_payload",
				Message: "Invalid request payload",
				Details: err.Error(),
			})
			return
		}
		if errs := h.validator.Validate(&req); len(errs) > 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Code:    "validation_failed",
				Message: "Request validation failed",
				Details: errs,
			})
			return
		}

		h.LogRequest(c, "Renaming taxonomy entry", "kind", string(kind), "id", id, "name", req.Name)

		entity, err := h.taxonomyService.Rename(c.Request.Context(), kind, id, req.Name)
		if err != nil {
			h.handleServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, entity)
	}
}

// Delete deletes a named entity
func (h *TaxonomyHandler) Delete(kind models.TaxonomyKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := h.parseObjectIDParam(c, "id")
		if id == "" {
			return
		}

		h.LogRequest(c, "Deleting taxonomy entry", "kind", string(kind), "id", id)

		if err := h.taxonomyService.Delete(c.Request.Context(), kind, id); err != nil {
			h.handleServiceError(c, err)
			return
		}

		c.JSON(http.StatusOK, SuccessResponse{Message: string(kind) + " deleted"})
	}
}
