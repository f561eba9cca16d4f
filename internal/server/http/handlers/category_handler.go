package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/storefront/internal/server/http/dto"
)

// CategoryHandler serves product categories.
type CategoryHandler struct {
	facade CategoryFacade
	logger *slog.Logger
}

// NewCategoryHandler constructs CategoryHandler.
func NewCategoryHandler(facade CategoryFacade, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{facade: facade, logger: logger}
}

// List handles GET /api/categories, which only shows active categories.
func (h *CategoryHandler) List(c *gin.Context) {
	active := true
	h.list(c, &active)
}

// ListAll handles GET /api/admin/categories.
func (h *CategoryHandler) ListAll(c *gin.Context) {
	h.list(c, nil)
}

func (h *CategoryHandler) list(c *gin.Context, active *bool) {
	categories, err := h.facade.Categories(c.Request.Context(), active)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "", toCategoryResponses(categories))
}

// Get handles GET /api/categories/:id; the id may also be a slug.
func (h *CategoryHandler) Get(c *gin.Context) {
	category, err := h.facade.Category(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "", toCategoryResponse(category))
}

// Create handles POST /api/admin/categories.
func (h *CategoryHandler) Create(c *gin.Context) {
	var req dto.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	category, err := h.facade.CreateCategory(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusCreated, "category created successfully", toCategoryResponse(category))
}

// Update handles PUT /api/admin/categories/:id.
func (h *CategoryHandler) Update(c *gin.Context) {
	var req dto.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	category, err := h.facade.UpdateCategory(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "category updated successfully", toCategoryResponse(category))
}

// Delete handles DELETE /api/admin/categories/:id.
func (h *CategoryHandler) Delete(c *gin.Context) {
	if err := h.facade.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "category deleted successfully", nil)
}
